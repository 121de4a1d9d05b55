package repo

import "errors"

// Reference errors.
var (
	ErrRefNotFile     = errors.New("ref is not a file")
	ErrRefCycle       = errors.New("ref cycle")
	ErrInvalidRefName = errors.New("invalid ref name")
	ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")
)

// Repository errors.
var (
	ErrNotRepository            = errors.New("not a git repository")
	ErrUnsupportedFormatVersion = errors.New("unsupported repository format version")
	ErrInvalidConfig            = errors.New("invalid config")
)

// Checkout errors.
var (
	ErrDestinationNotEmpty     = errors.New("destination is not empty")
	ErrDestinationNotDirectory = errors.New("destination is not a directory")
	ErrUnsafePath              = errors.New("unsafe tree entry path")
)

// ErrBadSignature is returned when a signed tag does not verify.
var ErrBadSignature = errors.New("bad signature")
