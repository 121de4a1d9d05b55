package object

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
// The whole payload is buffered in memory.
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) *Blob {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}
}

// ---------------------------------------------------------------------------
// Commit and Tag
// ---------------------------------------------------------------------------

// MarshalCommit serializes a commit's key-value list.
func MarshalCommit(c *Commit) []byte {
	return c.KVL.Marshal()
}

// UnmarshalCommit parses a commit body.
func UnmarshalCommit(data []byte) (*Commit, error) {
	kvl, err := ParseKVL(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal commit: %w", err)
	}
	return &Commit{KVL: kvl}, nil
}

// MarshalTag serializes a tag's key-value list.
func MarshalTag(t *Tag) []byte {
	return t.KVL.Marshal()
}

// UnmarshalTag parses a tag body.
func UnmarshalTag(data []byte) (*Tag, error) {
	kvl, err := ParseKVL(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal tag: %w", err)
	}
	return &Tag{KVL: kvl}, nil
}

// ---------------------------------------------------------------------------
// Object envelope
// ---------------------------------------------------------------------------

// MarshalBody encodes the body of obj by kind.
func MarshalBody(obj Object) ([]byte, error) {
	switch o := obj.(type) {
	case *Blob:
		return MarshalBlob(o), nil
	case *Tree:
		return MarshalTree(o)
	case *Commit:
		return MarshalCommit(o), nil
	case *Tag:
		return MarshalTag(o), nil
	default:
		return nil, fmt.Errorf("marshal body: %w: unknown object %T", ErrInternal, obj)
	}
}

// UnmarshalBody decodes a body according to the header type. The body
// length must equal the header size.
func UnmarshalBody(h Header, body []byte) (Object, error) {
	if len(body) != h.Size {
		return nil, fmt.Errorf("%w: header=%d actual=%d", ErrMismatchedObjectSize, h.Size, len(body))
	}
	switch h.Type {
	case TypeBlob:
		return UnmarshalBlob(body), nil
	case TypeTree:
		return UnmarshalTree(body)
	case TypeCommit:
		return UnmarshalCommit(body)
	case TypeTag:
		return UnmarshalTag(body)
	default:
		return nil, fmt.Errorf("unmarshal body: %w: %q", ErrInvalidObjectType, h.Type)
	}
}

// Parse decodes a bare body of the given type, as read from a file that
// has no header.
func Parse(objType ObjectType, body []byte) (Object, error) {
	return UnmarshalBody(Header{Type: objType, Size: len(body)}, body)
}

// Encode returns the full "type size\0body" encoding of obj.
func Encode(obj Object) ([]byte, error) {
	body, err := MarshalBody(obj)
	if err != nil {
		return nil, err
	}
	header := EncodeHeader(obj.Type(), len(body))
	return append(header, body...), nil
}

// Decode parses a full "type size\0body" encoding.
func Decode(raw []byte) (Object, error) {
	r := bufio.NewReader(bytes.NewReader(raw))
	h, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return UnmarshalBody(h, body)
}
