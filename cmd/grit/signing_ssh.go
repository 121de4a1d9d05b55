package main

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/odvcencio/grit/pkg/repo"
)

const (
	tagSignaturePrefix = "sshsig-v1"
	armorBegin         = "-----BEGIN SSH SIGNATURE-----"
	armorEnd           = "-----END SSH SIGNATURE-----"
	armorLineWidth     = 76
)

func newSSHTagSigner(keyPath string) (repo.TagSigner, string, error) {
	resolvedPath, err := resolveSigningKeyPath(keyPath)
	if err != nil {
		return nil, "", err
	}

	raw, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("read signing key %q: %w", resolvedPath, err)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parse signing key %q: %w", resolvedPath, err)
	}
	return sshTagSigner(signer), resolvedPath, nil
}

// sshTagSigner signs payloads with signer. The armored block carries the
// signature format, the public key and the signature blob.
func sshTagSigner(signer ssh.Signer) repo.TagSigner {
	pubB64 := base64.StdEncoding.EncodeToString(signer.PublicKey().Marshal())
	return func(payload []byte) (string, error) {
		sig, err := signer.Sign(rand.Reader, payload)
		if err != nil {
			return "", err
		}
		sigB64 := base64.StdEncoding.EncodeToString(sig.Blob)
		inner := fmt.Sprintf("%s:%s:%s:%s", tagSignaturePrefix, sig.Format, pubB64, sigB64)
		return armor([]byte(inner)), nil
	}
}

// sshTagVerifier checks signatures made by sshTagSigner. With allowed
// set, only signatures from that public key are accepted.
func sshTagVerifier(allowed ssh.PublicKey) repo.TagVerifier {
	return func(payload []byte, signature string) error {
		inner, err := dearmor(signature)
		if err != nil {
			return err
		}
		parts := strings.Split(string(inner), ":")
		if len(parts) != 4 || parts[0] != tagSignaturePrefix {
			return fmt.Errorf("unrecognized signature encoding")
		}
		pubRaw, err := base64.StdEncoding.DecodeString(parts[2])
		if err != nil {
			return fmt.Errorf("decode public key: %w", err)
		}
		pub, err := ssh.ParsePublicKey(pubRaw)
		if err != nil {
			return fmt.Errorf("parse public key: %w", err)
		}
		if allowed != nil && !bytes.Equal(allowed.Marshal(), pub.Marshal()) {
			return fmt.Errorf("signed by %s, not the allowed key", ssh.FingerprintSHA256(pub))
		}
		blob, err := base64.StdEncoding.DecodeString(parts[3])
		if err != nil {
			return fmt.Errorf("decode signature: %w", err)
		}
		return pub.Verify(payload, &ssh.Signature{Format: parts[1], Blob: blob})
	}
}

func loadAllowedKey(path string) (ssh.PublicKey, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	expanded, err := expandUserPath(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read public key %q: %w", expanded, err)
	}
	pub, _, _, _, err := ssh.ParseAuthorizedKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parse public key %q: %w", expanded, err)
	}
	return pub, nil
}

func armor(data []byte) string {
	enc := base64.StdEncoding.EncodeToString(data)
	var b strings.Builder
	b.WriteString(armorBegin + "\n")
	for len(enc) > armorLineWidth {
		b.WriteString(enc[:armorLineWidth] + "\n")
		enc = enc[armorLineWidth:]
	}
	b.WriteString(enc + "\n")
	b.WriteString(armorEnd + "\n")
	return b.String()
}

func dearmor(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	body, ok := strings.CutPrefix(s, armorBegin)
	if !ok {
		return nil, fmt.Errorf("missing %s", armorBegin)
	}
	body, ok = strings.CutSuffix(body, armorEnd)
	if !ok {
		return nil, fmt.Errorf("missing %s", armorEnd)
	}
	body = strings.Join(strings.Fields(body), "")
	return base64.StdEncoding.DecodeString(body)
}

func resolveSigningKeyPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		return expandUserPath(path)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	candidates := []string{
		filepath.Join(home, ".ssh", "id_ed25519"),
		filepath.Join(home, ".ssh", "id_ecdsa"),
		filepath.Join(home, ".ssh", "id_rsa"),
	}
	for _, candidate := range candidates {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no default SSH private key found in ~/.ssh (id_ed25519, id_ecdsa, id_rsa)")
}

func expandUserPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}
