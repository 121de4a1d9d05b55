package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/odvcencio/grit/pkg/object"
)

// SubmoduleRef is a submodule leaf seen during checkout. Its commit lives
// in another repository and is not materialized.
type SubmoduleRef struct {
	Path string
	Hash object.Hash
}

// CheckoutResult summarizes a checkout.
type CheckoutResult struct {
	Tree       object.Hash
	Files      int
	Dirs       int
	Symlinks   int
	Submodules []SubmoduleRef
}

type checkoutItem struct {
	tree object.Hash
	dir  string // destination directory on disk
	rel  string // slash path relative to the checkout root
}

// Checkout materializes target into dest. target may be a tree, a commit
// (its root tree is used) or an annotated tag of either. dest must be
// missing, or an empty directory.
func (r *Repo) Checkout(target object.Hash, dest string) (*CheckoutResult, error) {
	treeHash, err := r.peel(target, object.TypeTree, true)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if err := prepareDestination(dest); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	res := &CheckoutResult{Tree: treeHash}
	stack := []checkoutItem{{tree: treeHash, dir: dest}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		tree, err := r.Store.ReadTree(item.tree)
		if err != nil {
			return res, fmt.Errorf("checkout %s: %w", displayPath(item.rel), err)
		}
		for _, leaf := range tree.Leaves {
			if !safeLeafName(leaf.Path) {
				return res, fmt.Errorf("checkout: %w: %q in %s", ErrUnsafePath, leaf.Path, displayPath(item.rel))
			}
			rel := path.Join(item.rel, leaf.Path)
			abs := filepath.Join(item.dir, leaf.Path)

			switch leaf.Kind {
			case object.LeafTree:
				if err := os.Mkdir(abs, 0o755); err != nil {
					return res, fmt.Errorf("checkout: mkdir %s: %w", rel, err)
				}
				res.Dirs++
				stack = append(stack, checkoutItem{tree: leaf.Hash, dir: abs, rel: rel})
			case object.LeafRegularFile:
				blob, err := r.Store.ReadBlob(leaf.Hash)
				if err != nil {
					return res, fmt.Errorf("checkout %s: %w", rel, err)
				}
				if err := writeNewFile(abs, blob.Data, filePermFromMode(leaf.Mode)); err != nil {
					return res, fmt.Errorf("checkout: write %s: %w", rel, err)
				}
				res.Files++
			case object.LeafSymlink:
				blob, err := r.Store.ReadBlob(leaf.Hash)
				if err != nil {
					return res, fmt.Errorf("checkout %s: %w", rel, err)
				}
				if err := os.Symlink(string(blob.Data), abs); err != nil {
					return res, fmt.Errorf("checkout: symlink %s: %w", rel, err)
				}
				res.Symlinks++
			case object.LeafSubmodule:
				res.Submodules = append(res.Submodules, SubmoduleRef{Path: rel, Hash: leaf.Hash})
			default:
				return res, fmt.Errorf("checkout %s: %w: leaf kind %v", rel, object.ErrInternal, leaf.Kind)
			}
			r.logger.Debug("checkout entry", zap.String("path", rel), zap.Stringer("kind", leaf.Kind))
		}
	}
	return res, nil
}

// prepareDestination creates dest if missing and rejects files and
// non-empty directories.
func prepareDestination(dest string) error {
	info, err := os.Stat(dest)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dest, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("stat %s: %w", dest, err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s", ErrDestinationNotDirectory, dest)
	}

	empty, err := dirEmpty(dest)
	if err != nil {
		return fmt.Errorf("read %s: %w", dest, err)
	}
	if !empty {
		return fmt.Errorf("%w: %s", ErrDestinationNotEmpty, dest)
	}
	return nil
}

// safeLeafName reports whether a tree leaf name is a single path segment.
func safeLeafName(name string) bool {
	switch name {
	case "", ".", "..", ".git":
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '/' || name[i] == '\\' || name[i] == 0 {
			return false
		}
	}
	return true
}

func writeNewFile(name string, data []byte, perm os.FileMode) (retErr error) {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	defer func() {
		retErr = multierr.Append(retErr, f.Close())
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	// The umask may have cleared bits from perm.
	return f.Chmod(perm)
}

func displayPath(rel string) string {
	if rel == "" {
		return "/"
	}
	return rel
}
