package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/grit/pkg/object"
)

type snapshotFrame struct {
	dir     string
	name    string
	pending []os.DirEntry
	leaves  []object.Leaf
}

// WriteTree snapshots the directory dir into tree and blob objects and
// returns the root tree id. .git directories are skipped, as are empty
// subdirectories, which git cannot represent. Executable bits are
// recorded only when core.filemode is set.
func (r *Repo) WriteTree(dir string) (object.Hash, error) {
	trackExec := r.Config != nil && r.Config.Core.FileMode

	root, err := newSnapshotFrame(dir, "")
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	stack := []*snapshotFrame{root}
	for {
		top := stack[len(stack)-1]
		if len(top.pending) == 0 {
			stack = stack[:len(stack)-1]
			if len(stack) > 0 && len(top.leaves) == 0 {
				continue
			}
			sortLeaves(top.leaves)
			h, err := r.Store.Write(&object.Tree{Leaves: top.leaves})
			if err != nil {
				return "", fmt.Errorf("write tree %s: %w", top.dir, err)
			}
			if len(stack) == 0 {
				return h, nil
			}
			parent := stack[len(stack)-1]
			parent.leaves = append(parent.leaves, object.Leaf{Kind: object.LeafTree, Mode: object.ModeTree, Path: top.name, Hash: h})
			continue
		}

		e := top.pending[0]
		top.pending = top.pending[1:]
		if e.Name() == ".git" {
			continue
		}
		abs := filepath.Join(top.dir, e.Name())

		if e.IsDir() {
			sub, err := newSnapshotFrame(abs, e.Name())
			if err != nil {
				return "", fmt.Errorf("write tree: %w", err)
			}
			stack = append(stack, sub)
			continue
		}

		leaf, ok, err := r.snapshotFile(abs, trackExec)
		if err != nil {
			return "", fmt.Errorf("write tree: %w", err)
		}
		if ok {
			top.leaves = append(top.leaves, leaf)
		}
	}
}

func newSnapshotFrame(dir, name string) (*snapshotFrame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	return &snapshotFrame{dir: dir, name: name, pending: entries}, nil
}

// snapshotFile stores a regular file or symlink as a blob. Other file
// types are skipped.
func (r *Repo) snapshotFile(abs string, trackExec bool) (object.Leaf, bool, error) {
	info, err := os.Lstat(abs)
	if err != nil {
		return object.Leaf{}, false, err
	}

	var data []byte
	kind := object.LeafRegularFile
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(abs)
		if err != nil {
			return object.Leaf{}, false, err
		}
		data = []byte(filepath.ToSlash(target))
		kind = object.LeafSymlink
	case info.Mode().IsRegular():
		data, err = os.ReadFile(abs)
		if err != nil {
			return object.Leaf{}, false, err
		}
	default:
		return object.Leaf{}, false, nil
	}

	h, err := r.Store.Write(&object.Blob{Data: data})
	if err != nil {
		return object.Leaf{}, false, fmt.Errorf("%s: %w", abs, err)
	}
	return object.Leaf{Kind: kind, Mode: modeFromFileInfo(info, trackExec), Path: info.Name(), Hash: h}, true, nil
}

// sortLeaves orders leaves the way git does: by name, with tree names
// compared as if they ended in "/".
func sortLeaves(leaves []object.Leaf) {
	key := func(l object.Leaf) string {
		if l.Kind == object.LeafTree {
			return l.Path + "/"
		}
		return l.Path
	}
	sort.Slice(leaves, func(i, j int) bool { return key(leaves[i]) < key(leaves[j]) })
}

// HashFile hashes the contents of the file at path as an object of type
// objType, storing it when write is set. Non-blob content must decode as
// that type.
func (r *Repo) HashFile(path string, objType object.ObjectType, write bool) (object.Hash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	obj, err := object.Parse(objType, data)
	if err != nil {
		return "", fmt.Errorf("hash file %s: %w", path, err)
	}
	if !write {
		return object.ObjectHash(obj)
	}
	return r.Store.Write(obj)
}
