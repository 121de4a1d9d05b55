package object

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Header is the "type size\0" prefix shared by every encoded object.
type Header struct {
	Type ObjectType
	Size int
}

// EncodeHeader returns "type size\0".
func EncodeHeader(objType ObjectType, size int) []byte {
	return fmt.Appendf(nil, "%s %d\x00", objType, size)
}

// DecodeHeader reads a header from r, leaving r positioned at the first
// body byte.
func DecodeHeader(r *bufio.Reader) (Header, error) {
	typ, err := r.ReadString(' ')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Header{}, fmt.Errorf("%w: missing type delimiter", ErrInvalidObjectType)
		}
		return Header{}, err
	}
	objType, err := ParseObjectType(typ[:len(typ)-1])
	if err != nil {
		return Header{}, err
	}

	size, err := r.ReadString(0)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Header{}, fmt.Errorf("%w: missing size terminator", ErrInvalidObjectSize)
		}
		return Header{}, err
	}
	n, err := strconv.ParseUint(size[:len(size)-1], 10, 63)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %q", ErrInvalidObjectSize, size[:len(size)-1])
	}
	return Header{Type: objType, Size: int(n)}, nil
}
