package object

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), zaptest.NewLogger(t))
}

func TestStoreWriteRead(t *testing.T) {
	s := tempStore(t)
	for _, obj := range sampleObjects(t) {
		h, err := s.Write(obj)
		require.NoError(t, err)
		assert.True(t, h.Valid())

		got, err := s.Read(h)
		require.NoError(t, err)
		assert.Equal(t, obj, got)

		// Re-encoding what was read gives the same id.
		again, err := ObjectHash(got)
		require.NoError(t, err)
		assert.Equal(t, h, again)
	}
}

func TestStoreReadBackIsByteIdentical(t *testing.T) {
	s := tempStore(t)
	data := []byte("line one\nline two\x00\xff")
	h, err := s.Write(&Blob{Data: data})
	require.NoError(t, err)

	blob, err := s.ReadBlob(h)
	require.NoError(t, err)
	assert.Equal(t, data, blob.Data)
}

func TestStoreHas(t *testing.T) {
	s := tempStore(t)
	h, err := s.Write(&Blob{Data: []byte("exists")})
	require.NoError(t, err)

	assert.True(t, s.Has(h))
	assert.False(t, s.Has(Hash("0000000000000000000000000000000000000000")))
	assert.False(t, s.Has(Hash("nope")))
}

func TestStoreFanoutLayout(t *testing.T) {
	s := tempStore(t)
	h, err := s.Write(&Blob{Data: []byte("fanout test")})
	require.NoError(t, err)

	objPath := filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
	assert.Equal(t, objPath, s.Path(h))
	assert.FileExists(t, objPath)
	assert.Len(t, filepath.Base(objPath), 38)
}

func TestStorePathIsPureFunctionOfHash(t *testing.T) {
	a := NewStore("/repo/.git", nil)
	b := NewStore("/repo/.git", nil)
	h := HashObject(TypeBlob, []byte("x"))
	assert.Equal(t, a.Path(h), b.Path(h))
	assert.Equal(t, filepath.Join("/repo/.git", "objects", string(h[:2]), string(h[2:])), a.Path(h))
}

func TestStoreDuplicateWriteIsNoop(t *testing.T) {
	s := tempStore(t)
	blob := &Blob{Data: []byte("duplicate")}
	h1, err := s.Write(blob)
	require.NoError(t, err)
	info1, err := os.Stat(s.Path(h1))
	require.NoError(t, err)

	h2, err := s.Write(blob)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	info2, err := os.Stat(s.Path(h2))
	require.NoError(t, err)
	assert.Equal(t, info1.ModTime(), info2.ModTime())
}

func TestStoreConcurrentWritersSameHash(t *testing.T) {
	s := tempStore(t)
	blob := &Blob{Data: []byte("contended object")}

	var g errgroup.Group
	hashes := make([]Hash, 16)
	for i := range hashes {
		g.Go(func() error {
			h, err := s.Write(blob)
			hashes[i] = h
			return err
		})
	}
	require.NoError(t, g.Wait())
	for _, h := range hashes {
		assert.Equal(t, hashes[0], h)
	}

	got, err := s.ReadBlob(hashes[0])
	require.NoError(t, err)
	assert.Equal(t, blob.Data, got.Data)

	// No temp files left behind in the shard.
	entries, err := os.ReadDir(filepath.Dir(s.Path(hashes[0])))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStoreReadNotFound(t *testing.T) {
	s := tempStore(t)
	_, err := s.Read(Hash("0123456789abcdef0123456789abcdef01234567"))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.Read(Hash("zz"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreReadCorrupt(t *testing.T) {
	s := tempStore(t)
	h := Hash("0123456789abcdef0123456789abcdef01234567")
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path(h)), 0o755))

	// Not zlib at all.
	require.NoError(t, os.WriteFile(s.Path(h), []byte("garbage"), 0o644))
	_, err := s.Read(h)
	require.ErrorIs(t, err, ErrCorrupt)
	assert.NotErrorIs(t, err, ErrNotFound)

	// Valid zlib around an invalid envelope keeps the codec cause.
	compressed, err := Compress([]byte("blob 99\x00tiny"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.Path(h), compressed, 0o644))
	_, err = s.Read(h)
	require.ErrorIs(t, err, ErrCorrupt)
	require.ErrorIs(t, err, ErrMismatchedObjectSize)
}

func TestStoreTypedReadMismatch(t *testing.T) {
	s := tempStore(t)
	h, err := s.Write(&Blob{Data: []byte("not a tree")})
	require.NoError(t, err)

	_, err = s.ReadTree(h)
	require.ErrorIs(t, err, ErrUnexpectedType)
	_, err = s.ReadCommit(h)
	require.ErrorIs(t, err, ErrUnexpectedType)
}

func TestStoreFindPrefix(t *testing.T) {
	s := tempStore(t)
	h, err := s.Write(&Blob{Data: []byte("hello\n")})
	require.NoError(t, err)

	got, err := s.FindPrefix(string(h[:7]))
	require.NoError(t, err)
	assert.Equal(t, h, got)

	got, err = s.FindPrefix(string(h))
	require.NoError(t, err)
	assert.Equal(t, h, got)

	_, err = s.FindPrefix(string(h[:3]))
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindPrefix("ffffffff")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreFindPrefixAmbiguous(t *testing.T) {
	s := tempStore(t)
	dir := filepath.Join(s.root, "objects", "ab")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{"cd000000000000000000000000000000000001", "cd000000000000000000000000000000000002"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	_, err := s.FindPrefix("abcd00")
	require.ErrorIs(t, err, ErrAmbiguousHash)
}
