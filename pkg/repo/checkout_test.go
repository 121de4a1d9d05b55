package repo

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/grit/pkg/object"
)

// listFiles returns every non-directory path below dir, slash-separated.
func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(out)
	return out
}

func TestCheckoutScenario(t *testing.T) {
	r := newTestRepo(t)
	tree := scenarioTree(t, r)
	commit := writeCommit(t, r, tree, "snapshot")
	dest := t.TempDir()

	res, err := r.Checkout(commit, dest)
	require.NoError(t, err)
	assert.Equal(t, tree, res.Tree)
	assert.Equal(t, 2, res.Files)
	assert.Equal(t, 1, res.Dirs)

	assert.Equal(t, []string{"a.txt", "dir/b.txt"}, listFiles(t, dest))
	a, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(a))
	b, err := os.ReadFile(filepath.Join(dest, "dir", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "world", string(b))
}

func TestCheckoutIntoNonEmptyDirFails(t *testing.T) {
	r := newTestRepo(t)
	tree := scenarioTree(t, r)
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "keep.txt"), []byte("mine"), 0o644))

	_, err := r.Checkout(tree, dest)
	require.ErrorIs(t, err, ErrDestinationNotEmpty)

	assert.Equal(t, []string{"keep.txt"}, listFiles(t, dest))
	data, err := os.ReadFile(filepath.Join(dest, "keep.txt"))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
}

func TestCheckoutIntoFileFails(t *testing.T) {
	r := newTestRepo(t)
	tree := scenarioTree(t, r)
	dest := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(dest, nil, 0o644))

	_, err := r.Checkout(tree, dest)
	require.ErrorIs(t, err, ErrDestinationNotDirectory)
}

func TestCheckoutCreatesMissingDestination(t *testing.T) {
	r := newTestRepo(t)
	tree := scenarioTree(t, r)
	dest := filepath.Join(t.TempDir(), "new", "place")

	_, err := r.Checkout(tree, dest)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "dir/b.txt"}, listFiles(t, dest))
}

func TestCheckoutModesSymlinksAndSubmodules(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks and exec bits")
	}
	r := newTestRepo(t)
	script := writeBlob(t, r, "#!/bin/sh\necho hi\n")
	target := writeBlob(t, r, "a.txt")
	sub := object.Hash("4b825dc642cb6eb9a060e54bf8d69288fbee4904")
	tree := writeTree(t, r,
		fileLeaf("a.txt", writeBlob(t, r, "hello")),
		object.Leaf{Kind: object.LeafSymlink, Mode: object.ModeSymlink, Path: "link", Hash: target},
		object.Leaf{Kind: object.LeafRegularFile, Mode: object.ModeExecutable, Path: "run.sh", Hash: script},
		object.Leaf{Kind: object.LeafSubmodule, Mode: object.ModeSubmodule, Path: "vendor", Hash: sub},
	)
	dest := t.TempDir()

	res, err := r.Checkout(tree, dest)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Files)
	assert.Equal(t, 1, res.Symlinks)
	assert.Equal(t, []SubmoduleRef{{Path: "vendor", Hash: sub}}, res.Submodules)

	link, err := os.Readlink(filepath.Join(dest, "link"))
	require.NoError(t, err)
	assert.Equal(t, "a.txt", link)

	info, err := os.Stat(filepath.Join(dest, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	info, err = os.Stat(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	_, err = os.Lstat(filepath.Join(dest, "vendor"))
	assert.True(t, os.IsNotExist(err), "submodule must not be materialized")
}

func TestCheckoutThroughAnnotatedTag(t *testing.T) {
	r := newTestRepo(t)
	tree := scenarioTree(t, r)
	commit := writeCommit(t, r, tree, "tagged")
	tag, err := r.CreateAnnotatedTag(AnnotatedTagOptions{Name: "v1", Target: commit, Tagger: testSig, Message: "release"})
	require.NoError(t, err)

	res, err := r.Checkout(tag, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, tree, res.Tree)
}

func TestCheckoutRejectsUnsafeLeafNames(t *testing.T) {
	r := newTestRepo(t)
	blob := writeBlob(t, r, "pwned")
	for _, name := range []string{"..", ".", ".git", "a/b"} {
		t.Run(name, func(t *testing.T) {
			tree := writeTree(t, r, fileLeaf(name, blob))
			dest := t.TempDir()
			_, err := r.Checkout(tree, dest)
			require.ErrorIs(t, err, ErrUnsafePath)
			assert.Empty(t, listFiles(t, dest))
		})
	}
}

func TestCheckoutBlobFails(t *testing.T) {
	r := newTestRepo(t)
	blob := writeBlob(t, r, "just bytes")
	_, err := r.Checkout(blob, t.TempDir())
	require.ErrorIs(t, err, object.ErrUnexpectedType)
}
