package object

import "errors"

// Codec errors.
var (
	ErrInvalidObjectType    = errors.New("invalid object type")
	ErrInvalidObjectSize    = errors.New("invalid object size")
	ErrMismatchedObjectSize = errors.New("object size does not match header")
	ErrKeyDelimiterNotFound = errors.New("key/value delimiter not found")
	ErrInvalidFileMode      = errors.New("invalid file mode")
	ErrInvalidUTF8          = errors.New("invalid utf-8")
	ErrTruncatedLeaf        = errors.New("tree leaf truncated")
)

// Store errors.
var (
	ErrNotFound       = errors.New("object not found")
	ErrCorrupt        = errors.New("object corrupt")
	ErrAmbiguousHash  = errors.New("ambiguous object id")
	ErrUnexpectedType = errors.New("unexpected object type")
)

// ErrInternal marks a state that should be unreachable, such as an Object
// implementation the codec does not know about.
var ErrInternal = errors.New("internal invariant violated")
