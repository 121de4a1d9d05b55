package repo

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/odvcencio/grit/pkg/object"
)

const tagsPrefix = "refs/tags/"

// TagSigner signs the canonical tag payload and returns an armored
// signature block to append to the tag message.
type TagSigner func(payload []byte) (string, error)

// TagVerifier checks an armored signature against the payload it covers.
type TagVerifier func(payload []byte, signature string) error

// AnnotatedTagOptions describes a tag for CreateAnnotatedTag.
type AnnotatedTagOptions struct {
	Name    string
	Target  object.Hash
	Tagger  Signature
	Message string
	Force   bool
	Signer  TagSigner // optional
}

// CreateTag creates or updates a lightweight tag ref under refs/tags/.
func (r *Repo) CreateTag(name string, target object.Hash, force bool) error {
	name = strings.TrimSpace(name)
	if err := validateRefName(name); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	if !r.Store.Has(target) {
		return fmt.Errorf("create tag: target %s: %w", target, object.ErrNotFound)
	}
	if err := r.ensureTagAbsent(name, force); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	if err := r.UpdateRef(tagsPrefix+name, target); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// CreateAnnotatedTag writes a tag object pointing at opts.Target and a ref
// under refs/tags/ pointing at the tag object. With a signer, the armored
// signature over the unsigned tag is appended to the message.
func (r *Repo) CreateAnnotatedTag(opts AnnotatedTagOptions) (object.Hash, error) {
	name := strings.TrimSpace(opts.Name)
	if err := validateRefName(name); err != nil {
		return "", fmt.Errorf("create annotated tag: %w", err)
	}
	message := strings.TrimSpace(opts.Message)
	if message == "" {
		return "", fmt.Errorf("create annotated tag: message is required")
	}
	if strings.TrimSpace(opts.Tagger.Name) == "" {
		return "", fmt.Errorf("create annotated tag: tagger is required")
	}

	target, err := r.Store.Read(opts.Target)
	if err != nil {
		return "", fmt.Errorf("create annotated tag: read target %s: %w", opts.Target, err)
	}
	if err := r.ensureTagAbsent(name, opts.Force); err != nil {
		return "", fmt.Errorf("create annotated tag: %w", err)
	}

	var tag object.Tag
	tag.KVL.Add("object", string(opts.Target))
	tag.KVL.Add("type", string(target.Type()))
	tag.KVL.Add("tag", name)
	tag.KVL.Add("tagger", opts.Tagger.String())
	tag.KVL.SetMessage(message + "\n")

	if opts.Signer != nil {
		sig, err := opts.Signer(tag.KVL.Marshal())
		if err != nil {
			return "", fmt.Errorf("create annotated tag: sign: %w", err)
		}
		if !strings.HasSuffix(sig, "\n") {
			sig += "\n"
		}
		tag.KVL.SetMessage(tag.KVL.Message + sig)
	}

	tagHash, err := r.Store.Write(&tag)
	if err != nil {
		return "", fmt.Errorf("create annotated tag: write tag object: %w", err)
	}
	if err := r.UpdateRef(tagsPrefix+name, tagHash); err != nil {
		return "", fmt.Errorf("create annotated tag: %w", err)
	}
	r.logger.Debug("tag created", zap.String("tag", name), zap.String("object", string(tagHash)), zap.Bool("signed", opts.Signer != nil))
	return tagHash, nil
}

// DeleteTag removes a tag ref from refs/tags/. The tag object, if any,
// stays in the store.
func (r *Repo) DeleteTag(name string) error {
	name = strings.TrimSpace(name)
	if err := validateRefName(name); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if err := r.DeleteRef(tagsPrefix + name); err != nil {
		return fmt.Errorf("delete tag %q: %w", name, err)
	}
	return nil
}

// ResolveTag resolves a tag name under refs/tags/ to the id the ref holds,
// which is a tag object for annotated tags.
func (r *Repo) ResolveTag(name string) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if err := validateRefName(name); err != nil {
		return "", fmt.Errorf("resolve tag: %w", err)
	}
	return r.ResolveRef(tagsPrefix + name)
}

// ListTags returns every tag ref sorted by name.
func (r *Repo) ListTags() ([]Ref, error) {
	refs, err := r.ListRefs("refs/tags")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return refs, nil
}

// VerifyTag reads the annotated tag name and checks its signature with
// verify. Unsigned tags and lightweight tags fail with ErrBadSignature.
func (r *Repo) VerifyTag(name string, verify TagVerifier) (*object.Tag, error) {
	h, err := r.ResolveTag(name)
	if err != nil {
		return nil, fmt.Errorf("verify tag: %w", err)
	}
	tag, err := r.Store.ReadTag(h)
	if err != nil {
		return nil, fmt.Errorf("verify tag %q: %w", name, err)
	}
	payload, sig, ok := SplitTagSignature(tag)
	if !ok {
		return tag, fmt.Errorf("verify tag %q: %w: tag is not signed", name, ErrBadSignature)
	}
	if err := verify(payload, sig); err != nil {
		return tag, fmt.Errorf("verify tag %q: %w: %w", name, ErrBadSignature, err)
	}
	return tag, nil
}

// SplitTagSignature separates the armored signature at the end of a tag
// message from the payload it signs.
func SplitTagSignature(tag *object.Tag) (payload []byte, signature string, ok bool) {
	msg := tag.KVL.Message
	idx := strings.LastIndex(msg, "\n-----BEGIN ")
	switch {
	case idx >= 0:
		idx++
	case strings.HasPrefix(msg, "-----BEGIN "):
		idx = 0
	default:
		return nil, "", false
	}

	unsigned := object.KVL{Fields: tag.KVL.Fields}
	unsigned.SetMessage(msg[:idx])
	return unsigned.Marshal(), msg[idx:], true
}

func (r *Repo) ensureTagAbsent(name string, force bool) error {
	if force {
		return nil
	}
	exists, err := r.refExists(tagsPrefix + name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("tag %q already exists", name)
	}
	return nil
}

func validateRefName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRefName)
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") ||
		strings.HasSuffix(name, ".lock") || strings.HasPrefix(name, "-") {
		return fmt.Errorf("%w: %q", ErrInvalidRefName, name)
	}
	if strings.Contains(name, "..") || strings.Contains(name, "//") {
		return fmt.Errorf("%w: %q", ErrInvalidRefName, name)
	}
	if strings.ContainsAny(name, " \t\n\r~^:?*[\\") {
		return fmt.Errorf("%w: %q", ErrInvalidRefName, name)
	}
	return nil
}
