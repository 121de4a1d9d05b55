package object

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// minPrefixLen is the shortest abbreviated id FindPrefix accepts.
const minPrefixLen = 4

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123...
//
// Objects are zlib-compressed "type len\0content" envelopes keyed by the
// SHA-1 of the uncompressed envelope.
type Store struct {
	root   string
	logger *zap.Logger
}

// NewStore creates a Store rooted at the metadata directory root. The
// objects/ subdirectory is created lazily on first write. A nil logger
// disables logging.
func NewStore(root string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{root: root, logger: logger}
}

// Path returns the filesystem path for a given hash.
func (s *Store) Path(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if !h.Valid() {
		return false
	}
	_, err := os.Stat(s.Path(h))
	return err == nil
}

// Write stores an object and returns its content hash. Writing an object
// that already exists is a no-op. New objects are written to a temp file in
// the shard directory and renamed into place, so concurrent writers of the
// same object never observe a partial file.
func (s *Store) Write(obj Object) (Hash, error) {
	raw, err := Encode(obj)
	if err != nil {
		return "", fmt.Errorf("object write: %w", err)
	}
	h := HashBytes(raw)

	// Fast path: already exists.
	if s.Has(h) {
		s.logger.Debug("object exists", zap.String("hash", string(h)), zap.String("type", string(obj.Type())))
		return h, nil
	}

	compressed, err := Compress(raw)
	if err != nil {
		return "", fmt.Errorf("object write %s: %w", h, err)
	}

	dir := filepath.Dir(s.Path(h))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}
	if err := writeAtomic(dir, s.Path(h), compressed); err != nil {
		return "", fmt.Errorf("object write %s: %w", h, err)
	}

	s.logger.Debug("object written",
		zap.String("hash", string(h)),
		zap.String("type", string(obj.Type())),
		zap.Int("size", len(raw)),
	)
	return h, nil
}

func writeAtomic(dir, dest string, data []byte) (retErr error) {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("tmpfile: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if retErr != nil {
			retErr = multierr.Append(retErr, os.Remove(tmpName))
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return multierr.Append(fmt.Errorf("write: %w", err), tmp.Close())
	}
	if err := tmp.Chmod(0o444); err != nil {
		return multierr.Append(fmt.Errorf("chmod: %w", err), tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Read retrieves and decodes an object. A hash that was never written
// fails with ErrNotFound; an object that exists but cannot be inflated or
// decoded fails with ErrCorrupt.
func (s *Store) Read(h Hash) (Object, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("object read %q: %w: malformed object id", h, ErrNotFound)
	}
	data, err := os.ReadFile(s.Path(h))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
		}
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}

	raw, err := Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w: %w", h, ErrCorrupt, err)
	}
	obj, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w: %w", h, ErrCorrupt, err)
	}
	return obj, nil
}

// FindPrefix resolves an abbreviated hex id to the single stored object
// it names.
func (s *Store) FindPrefix(prefix string) (Hash, error) {
	prefix = strings.ToLower(prefix)
	if len(prefix) < minPrefixLen || len(prefix) > 2*HashSize {
		return "", fmt.Errorf("find %q: %w", prefix, ErrNotFound)
	}
	for i := 0; i < len(prefix); i++ {
		if !isLowerHex(prefix[i]) {
			return "", fmt.Errorf("find %q: %w", prefix, ErrNotFound)
		}
	}

	entries, err := os.ReadDir(filepath.Join(s.root, "objects", prefix[:2]))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("find %q: %w", prefix, ErrNotFound)
		}
		return "", fmt.Errorf("find %q: %w", prefix, err)
	}

	var matches []Hash
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix[2:]) {
			continue
		}
		h := Hash(prefix[:2] + e.Name())
		if h.Valid() {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("find %q: %w", prefix, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("find %q: %w (%d candidates)", prefix, ErrAmbiguousHash, len(matches))
	}
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// ReadBlob reads an object and requires it to be a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	return readAs[*Blob](s, h, TypeBlob)
}

// ReadTree reads an object and requires it to be a Tree.
func (s *Store) ReadTree(h Hash) (*Tree, error) {
	return readAs[*Tree](s, h, TypeTree)
}

// ReadCommit reads an object and requires it to be a Commit.
func (s *Store) ReadCommit(h Hash) (*Commit, error) {
	return readAs[*Commit](s, h, TypeCommit)
}

// ReadTag reads an object and requires it to be a Tag.
func (s *Store) ReadTag(h Hash) (*Tag, error) {
	return readAs[*Tag](s, h, TypeTag)
}

func readAs[T Object](s *Store, h Hash, want ObjectType) (T, error) {
	var zero T
	obj, err := s.Read(h)
	if err != nil {
		return zero, err
	}
	typed, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("object %s: %w: got %q, want %q", h, ErrUnexpectedType, obj.Type(), want)
	}
	return typed, nil
}
