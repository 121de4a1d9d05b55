package object

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// DecodeLeaf reads one "mode path\0<20 raw bytes>" leaf from r. Any read
// that runs out of input mid-leaf fails with ErrTruncatedLeaf.
func DecodeLeaf(r *bufio.Reader) (Leaf, error) {
	mode, err := r.ReadString(' ')
	if err != nil {
		return Leaf{}, truncated("mode", err)
	}
	mode = mode[:len(mode)-1]
	kind, err := parseLeafMode(mode)
	if err != nil {
		return Leaf{}, err
	}

	path, err := r.ReadBytes(0)
	if err != nil {
		return Leaf{}, truncated("path", err)
	}
	path = path[:len(path)-1]
	if !utf8.Valid(path) {
		return Leaf{}, fmt.Errorf("tree leaf path %q: %w", path, ErrInvalidUTF8)
	}

	var raw [HashSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return Leaf{}, truncated("hash", err)
	}

	return Leaf{
		Kind: kind,
		Mode: mode,
		Path: string(path),
		Hash: hashFromRaw(raw[:]),
	}, nil
}

func truncated(field string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s", ErrTruncatedLeaf, field)
	}
	return err
}

// EncodeLeaf appends the binary form of leaf to buf.
func EncodeLeaf(buf *bytes.Buffer, leaf Leaf) error {
	raw, err := rawHash(leaf.Hash)
	if err != nil {
		return fmt.Errorf("encode leaf %q: %w", leaf.Path, err)
	}
	mode := leaf.Mode
	if mode == "" {
		mode = canonicalMode(leaf.Kind)
		if mode == "" {
			return fmt.Errorf("encode leaf %q: %w: kind %v", leaf.Path, ErrInvalidFileMode, leaf.Kind)
		}
	}
	buf.WriteString(mode)
	buf.WriteByte(' ')
	buf.WriteString(leaf.Path)
	buf.WriteByte(0)
	buf.Write(raw)
	return nil
}

// MarshalTree serializes the leaves in their stored order.
func MarshalTree(t *Tree) ([]byte, error) {
	var buf bytes.Buffer
	for _, leaf := range t.Leaves {
		if err := EncodeLeaf(&buf, leaf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalTree decodes leaves until the input is exhausted exactly at a
// leaf boundary. Input that ends inside a leaf is an error.
func UnmarshalTree(data []byte) (*Tree, error) {
	r := bufio.NewReader(bytes.NewReader(data))
	t := &Tree{}
	for {
		if _, err := r.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				return t, nil
			}
			return nil, err
		}
		leaf, err := DecodeLeaf(r)
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: leaf %d: %w", len(t.Leaves), err)
		}
		t.Leaves = append(t.Leaves, leaf)
	}
}

// parseLeafMode maps a mode token to its leaf kind. Five-digit modes such
// as "40000" are left-padded to six digits; the first two digits select the
// kind.
func parseLeafMode(mode string) (LeafKind, error) {
	padded := mode
	if len(padded) == 5 {
		padded = "0" + padded
	}
	if len(padded) != 6 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFileMode, mode)
	}
	for i := 0; i < len(padded); i++ {
		if padded[i] < '0' || padded[i] > '7' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFileMode, mode)
		}
	}
	switch padded[:2] {
	case "04":
		return LeafTree, nil
	case "10":
		return LeafRegularFile, nil
	case "12":
		return LeafSymlink, nil
	case "16":
		return LeafSubmodule, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFileMode, mode)
	}
}

func canonicalMode(kind LeafKind) string {
	switch kind {
	case LeafTree:
		return ModeTree
	case LeafRegularFile:
		return ModeFile
	case LeafSymlink:
		return ModeSymlink
	case LeafSubmodule:
		return ModeSubmodule
	default:
		return ""
	}
}
