package repo

import (
	"fmt"
	"path"
	"strings"

	"github.com/odvcencio/grit/pkg/object"
)

// LookupPath returns the leaf reached by walking the slash-separated relPath
// down from the tree rootTree. Every component but the last must name a
// subtree.
func (r *Repo) LookupPath(rootTree object.Hash, relPath string) (object.Leaf, error) {
	relPath = strings.Trim(path.Clean("/"+relPath), "/")
	if relPath == "" {
		return object.Leaf{}, fmt.Errorf("lookup path: empty path")
	}

	parts := strings.Split(relPath, "/")
	current := rootTree
	for i, part := range parts {
		tree, err := r.Store.ReadTree(current)
		if err != nil {
			return object.Leaf{}, fmt.Errorf("lookup path %q: %w", relPath, err)
		}

		var (
			entry object.Leaf
			found bool
		)
		for _, leaf := range tree.Leaves {
			if leaf.Path == part {
				entry, found = leaf, true
				break
			}
		}
		if !found {
			return object.Leaf{}, fmt.Errorf("lookup path %q: %w", relPath, object.ErrNotFound)
		}
		if i == len(parts)-1 {
			return entry, nil
		}
		if entry.Kind != object.LeafTree {
			return object.Leaf{}, fmt.Errorf("lookup path %q: %s is not a directory: %w", relPath, part, object.ErrUnexpectedType)
		}
		current = entry.Hash
	}
	return object.Leaf{}, fmt.Errorf("lookup path %q: %w", relPath, object.ErrNotFound)
}

// resolveTreePath resolves "<rev>:<path>". An empty path names the tree of
// rev itself.
func (r *Repo) resolveTreePath(rev, relPath string) (object.Hash, error) {
	if rev == "" {
		rev = "HEAD"
	}
	h, err := r.resolveName(rev)
	if err != nil {
		return "", err
	}
	tree, err := r.peel(h, object.TypeTree, true)
	if err != nil {
		return "", err
	}
	if strings.Trim(relPath, "/") == "" {
		return tree, nil
	}
	leaf, err := r.LookupPath(tree, relPath)
	if err != nil {
		return "", fmt.Errorf("find object %s:%s: %w", rev, relPath, err)
	}
	return leaf.Hash, nil
}
