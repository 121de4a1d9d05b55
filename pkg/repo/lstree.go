package repo

import (
	"fmt"
	"iter"
	"path"

	"github.com/odvcencio/grit/pkg/object"
)

// TreeEntry is one leaf yielded by LsTree. Path is slash-separated and
// includes the walk prefix.
type TreeEntry struct {
	Kind object.LeafKind
	Mode string
	Hash object.Hash
	Path string
}

// DisplayMode returns the mode zero-padded to six digits, as git prints it.
func (e TreeEntry) DisplayMode() string {
	if len(e.Mode) < 6 {
		return "000000"[:6-len(e.Mode)] + e.Mode
	}
	return e.Mode
}

func (e TreeEntry) String() string {
	return fmt.Sprintf("%s %s %s\t%s", e.DisplayMode(), e.Kind.ObjectType(), e.Hash, e.Path)
}

type treeFrame struct {
	leaves []object.Leaf
	prefix string
}

// LsTree lists the leaves of tree in stored order. With recursive set,
// subtrees are descended into in place of being listed; every listed path
// is prefixed with prefix.
func (r *Repo) LsTree(tree object.Hash, recursive bool, prefix string) iter.Seq2[TreeEntry, error] {
	return func(yield func(TreeEntry, error) bool) {
		root, err := r.Store.ReadTree(tree)
		if err != nil {
			yield(TreeEntry{}, fmt.Errorf("ls-tree: %w", err))
			return
		}

		stack := []*treeFrame{{leaves: root.Leaves, prefix: prefix}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if len(top.leaves) == 0 {
				stack = stack[:len(stack)-1]
				continue
			}
			leaf := top.leaves[0]
			top.leaves = top.leaves[1:]
			full := path.Join(top.prefix, leaf.Path)

			if recursive && leaf.Kind == object.LeafTree {
				sub, err := r.Store.ReadTree(leaf.Hash)
				if err != nil {
					yield(TreeEntry{}, fmt.Errorf("ls-tree %s: %w", full, err))
					return
				}
				stack = append(stack, &treeFrame{leaves: sub.Leaves, prefix: full})
				continue
			}

			entry := TreeEntry{Kind: leaf.Kind, Mode: leaf.Mode, Hash: leaf.Hash, Path: full}
			if !yield(entry, nil) {
				return
			}
		}
	}
}
