package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/odvcencio/grit/pkg/object"
)

var testSig = Signature{Name: "Test Author", Email: "test@example.com", When: time.Unix(1700000000, 0).UTC()}

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir(), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return r
}

func writeBlob(t *testing.T, r *Repo, data string) object.Hash {
	t.Helper()
	h, err := r.Store.Write(&object.Blob{Data: []byte(data)})
	require.NoError(t, err)
	return h
}

func writeTree(t *testing.T, r *Repo, leaves ...object.Leaf) object.Hash {
	t.Helper()
	h, err := r.Store.Write(&object.Tree{Leaves: leaves})
	require.NoError(t, err)
	return h
}

func writeCommit(t *testing.T, r *Repo, tree object.Hash, msg string, parents ...object.Hash) object.Hash {
	t.Helper()
	h, err := r.CommitTree(CommitOptions{Tree: tree, Parents: parents, Author: testSig, Message: msg})
	require.NoError(t, err)
	return h
}

func fileLeaf(name string, h object.Hash) object.Leaf {
	return object.Leaf{Kind: object.LeafRegularFile, Mode: object.ModeFile, Path: name, Hash: h}
}

func treeLeaf(name string, h object.Hash) object.Leaf {
	return object.Leaf{Kind: object.LeafTree, Mode: object.ModeTree, Path: name, Hash: h}
}

// scenarioTree writes a.txt -> "hello" and dir/b.txt -> "world".
func scenarioTree(t *testing.T, r *Repo) object.Hash {
	t.Helper()
	sub := writeTree(t, r, fileLeaf("b.txt", writeBlob(t, r, "world")))
	return writeTree(t, r,
		fileLeaf("a.txt", writeBlob(t, r, "hello")),
		treeLeaf("dir", sub),
	)
}
