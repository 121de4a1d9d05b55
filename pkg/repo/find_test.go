package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/grit/pkg/object"
)

func TestFindObject(t *testing.T) {
	r := newTestRepo(t)
	tree := scenarioTree(t, r)
	commit := writeCommit(t, r, tree, "init")
	require.NoError(t, r.UpdateRef("refs/heads/master", commit))
	tag, err := r.CreateAnnotatedTag(AnnotatedTagOptions{Name: "v1", Target: commit, Tagger: testSig, Message: "one"})
	require.NoError(t, err)
	require.NoError(t, r.UpdateRef("refs/remotes/origin/master", commit))

	tests := []struct {
		name string
		want object.Hash
	}{
		{"HEAD", commit},
		{string(commit), commit},
		{string(commit[:8]), commit},
		{"master", commit},
		{"refs/heads/master", commit},
		{"heads/master", commit},
		{"v1", tag},
		{"origin/master", commit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.FindObject(tt.name, "", false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindObjectPeels(t *testing.T) {
	r := newTestRepo(t)
	tree := scenarioTree(t, r)
	commit := writeCommit(t, r, tree, "init")
	_, err := r.CreateAnnotatedTag(AnnotatedTagOptions{Name: "v1", Target: commit, Tagger: testSig, Message: "one"})
	require.NoError(t, err)

	got, err := r.FindObject("v1", object.TypeCommit, true)
	require.NoError(t, err)
	assert.Equal(t, commit, got)

	got, err = r.FindObject("v1", object.TypeTree, true)
	require.NoError(t, err)
	assert.Equal(t, tree, got)

	_, err = r.FindObject("v1", object.TypeCommit, false)
	require.ErrorIs(t, err, object.ErrUnexpectedType)

	_, err = r.FindObject(string(commit), object.TypeBlob, true)
	require.ErrorIs(t, err, object.ErrUnexpectedType)
}

func TestFindObjectNotFound(t *testing.T) {
	r := newTestRepo(t)
	for _, name := range []string{"nope", "deadbeef", "HEAD"} {
		_, err := r.FindObject(name, "", false)
		require.Error(t, err, name)
	}
	_, err := r.FindObject("nope", "", false)
	require.ErrorIs(t, err, object.ErrNotFound)
}

func TestFindObjectTagShadowsBranch(t *testing.T) {
	r := newTestRepo(t)
	tree := scenarioTree(t, r)
	c1 := writeCommit(t, r, tree, "one")
	c2 := writeCommit(t, r, tree, "two", c1)
	require.NoError(t, r.UpdateRef("refs/heads/dup", c1))
	require.NoError(t, r.CreateTag("dup", c2, false))

	// Tags shadow branches of the same name.
	got, err := r.FindObject("dup", "", false)
	require.NoError(t, err)
	assert.Equal(t, c2, got)
}

func TestFindObjectTreePath(t *testing.T) {
	r := newTestRepo(t)
	tree := scenarioTree(t, r)
	commit := writeCommit(t, r, tree, "init")
	require.NoError(t, r.UpdateRef("refs/heads/master", commit))

	world := writeBlob(t, r, "world")
	sub := writeTree(t, r, fileLeaf("b.txt", world))

	tests := []struct {
		name string
		want object.Hash
	}{
		{"HEAD:dir/b.txt", world},
		{"master:dir", sub},
		{"master:dir/", sub},
		{"HEAD:", tree},
		{":a.txt", writeBlob(t, r, "hello")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.FindObject(tt.name, "", false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := r.FindObject("HEAD:missing", "", false)
	require.ErrorIs(t, err, object.ErrNotFound)
	_, err = r.FindObject("HEAD:a.txt/x", "", false)
	require.ErrorIs(t, err, object.ErrUnexpectedType)

	got, err := r.FindObject("HEAD:dir/b.txt", object.TypeBlob, false)
	require.NoError(t, err)
	assert.Equal(t, world, got)
}

func TestLookupPath(t *testing.T) {
	r := newTestRepo(t)
	tree := scenarioTree(t, r)

	leaf, err := r.LookupPath(tree, "dir/b.txt")
	require.NoError(t, err)
	assert.Equal(t, object.LeafRegularFile, leaf.Kind)
	assert.Equal(t, "b.txt", leaf.Path)

	leaf, err = r.LookupPath(tree, "/dir")
	require.NoError(t, err)
	assert.Equal(t, object.LeafTree, leaf.Kind)

	_, err = r.LookupPath(tree, "")
	require.Error(t, err)
}
