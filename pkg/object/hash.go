package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// HashSize is the length in bytes of a raw object id.
const HashSize = sha1.Size

// HashBytes computes the SHA-1 of data and returns it as a lowercase
// hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha1.Sum(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the id of an object body: the SHA-1 of the envelope
// "type len\0content".
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha1.New()
	h.Write(EncodeHeader(objType, len(data)))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// ObjectHash returns the id obj is stored under.
func ObjectHash(obj Object) (Hash, error) {
	raw, err := Encode(obj)
	if err != nil {
		return "", err
	}
	return HashBytes(raw), nil
}

// Valid reports whether h is a full 40-character lowercase hex id.
func (h Hash) Valid() bool {
	if len(h) != 2*HashSize {
		return false
	}
	for i := 0; i < len(h); i++ {
		if !isLowerHex(h[i]) {
			return false
		}
	}
	return true
}

// ParseHash validates s as a full object id.
func ParseHash(s string) (Hash, error) {
	h := Hash(s)
	if !h.Valid() {
		return "", fmt.Errorf("parse hash %q: malformed object id", s)
	}
	return h, nil
}

// hashFromRaw hex-encodes a raw 20-byte id.
func hashFromRaw(raw []byte) Hash {
	return Hash(hex.EncodeToString(raw))
}

// rawHash decodes h into its 20 raw bytes.
func rawHash(h Hash) ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("malformed object id %q", h)
	}
	return hex.DecodeString(string(h))
}

func isLowerHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f')
}
