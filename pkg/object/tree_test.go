package object

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hashA = Hash("ce013625030ba8dba906f756967f9e9ca394464a")
	hashB = Hash("4b825dc642cb6eb9a060e54bf8d69288fbee4904")
)

func TestLeafRoundTripEachKind(t *testing.T) {
	tests := []struct {
		name string
		leaf Leaf
	}{
		{name: "tree", leaf: Leaf{Kind: LeafTree, Mode: "40000", Path: "dir", Hash: hashB}},
		{name: "file", leaf: Leaf{Kind: LeafRegularFile, Mode: "100644", Path: "a.txt", Hash: hashA}},
		{name: "executable", leaf: Leaf{Kind: LeafRegularFile, Mode: "100755", Path: "run.sh", Hash: hashA}},
		{name: "symlink", leaf: Leaf{Kind: LeafSymlink, Mode: "120000", Path: "link", Hash: hashA}},
		{name: "submodule", leaf: Leaf{Kind: LeafSubmodule, Mode: "160000", Path: "vendor/lib", Hash: hashB}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, EncodeLeaf(&buf, tt.leaf))

			got, err := DecodeLeaf(bufio.NewReader(bytes.NewReader(buf.Bytes())))
			require.NoError(t, err)
			assert.Equal(t, tt.leaf, got)
		})
	}
}

func TestEncodeLeafCanonicalMode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeLeaf(&buf, Leaf{Kind: LeafTree, Path: "src", Hash: hashB}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("40000 src\x00")))
	assert.Equal(t, len("40000 src\x00")+HashSize, buf.Len())
}

func TestTreeRoundTrip(t *testing.T) {
	tree := &Tree{Leaves: []Leaf{
		{Kind: LeafRegularFile, Mode: ModeFile, Path: "a.txt", Hash: hashA},
		{Kind: LeafTree, Mode: ModeTree, Path: "dir", Hash: hashB},
		{Kind: LeafSymlink, Mode: ModeSymlink, Path: "link", Hash: hashA},
	}}
	data, err := MarshalTree(tree)
	require.NoError(t, err)

	got, err := UnmarshalTree(data)
	require.NoError(t, err)
	if diff := cmp.Diff(tree, got); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalEmptyTree(t *testing.T) {
	tree, err := UnmarshalTree(nil)
	require.NoError(t, err)
	assert.Empty(t, tree.Leaves)
}

func TestUnmarshalTreeTruncated(t *testing.T) {
	tree := &Tree{Leaves: []Leaf{
		{Kind: LeafRegularFile, Path: "a.txt", Hash: hashA},
		{Kind: LeafRegularFile, Path: "b.txt", Hash: hashB},
	}}
	data, err := MarshalTree(tree)
	require.NoError(t, err)

	// Every cut that is not a leaf boundary must be reported as corruption.
	first := len("100644 a.txt\x00") + HashSize
	for _, cut := range []int{1, 6, 10, first - 1, first + 3, len(data) - 1} {
		_, err := UnmarshalTree(data[:cut])
		require.ErrorIs(t, err, ErrTruncatedLeaf, "cut at %d", cut)
	}

	// A cut at a leaf boundary is a shorter valid tree.
	short, err := UnmarshalTree(data[:first])
	require.NoError(t, err)
	require.Len(t, short.Leaves, 1)
	assert.Equal(t, "a.txt", short.Leaves[0].Path)
}

func TestDecodeLeafInvalidMode(t *testing.T) {
	for _, mode := range []string{"999999", "20000", "abc", "1006440"} {
		raw := append([]byte(mode+" x\x00"), make([]byte, HashSize)...)
		_, err := DecodeLeaf(bufio.NewReader(bytes.NewReader(raw)))
		require.ErrorIs(t, err, ErrInvalidFileMode, "mode %q", mode)
	}
}

func TestDecodeLeafInvalidUTF8(t *testing.T) {
	raw := append([]byte("100644 \xff\xfe\x00"), make([]byte, HashSize)...)
	_, err := DecodeLeaf(bufio.NewReader(bytes.NewReader(raw)))
	require.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestEncodeLeafRejectsMalformedHash(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeLeaf(&buf, Leaf{Kind: LeafRegularFile, Path: "a", Hash: "xyz"})
	require.Error(t, err)
}
