package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/odvcencio/grit/pkg/object"
)

// FindObject resolves name to an object id. name may be HEAD, a full or
// abbreviated id, a ref path under .git/, or a tag, branch or remote
// branch short name. "<rev>:<path>" names the object at path inside the
// tree of rev. When want is non-empty and follow is set, annotated
// tags are peeled to their target and commits to their tree until an
// object of type want is reached.
func (r *Repo) FindObject(name string, want object.ObjectType, follow bool) (object.Hash, error) {
	var (
		h   object.Hash
		err error
	)
	if rev, relPath, ok := strings.Cut(name, ":"); ok {
		h, err = r.resolveTreePath(strings.TrimSpace(rev), relPath)
	} else {
		h, err = r.resolveName(name)
	}
	if err != nil {
		return "", err
	}
	if want == "" {
		return h, nil
	}
	return r.peel(h, want, follow)
}

func (r *Repo) resolveName(name string) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("find object: empty name")
	}
	if name == "HEAD" {
		h, err := r.ResolveRef("HEAD")
		if err != nil {
			return "", fmt.Errorf("find object %q: %w", name, err)
		}
		return h, nil
	}

	if h := object.Hash(strings.ToLower(name)); h.Valid() && r.Store.Has(h) {
		return h, nil
	}

	var candidates []object.Hash
	if isHexString(name) {
		h, err := r.Store.FindPrefix(name)
		switch {
		case err == nil:
			candidates = append(candidates, h)
		case errors.Is(err, object.ErrAmbiguousHash):
			return "", fmt.Errorf("find object: %w", err)
		}
	}
	refs := []string{"refs/" + name, "refs/tags/" + name, "refs/heads/" + name, "refs/remotes/" + name}
	if strings.HasPrefix(name, "refs/") {
		refs = append([]string{name}, refs...)
	}
	for _, ref := range refs {
		h, err := r.ResolveRef(ref)
		if err == nil {
			candidates = appendUnique(candidates, h)
			break
		}
		if !errors.Is(err, ErrRefNotFile) && !errors.Is(err, ErrInvalidRefName) {
			return "", fmt.Errorf("find object %q: %w", name, err)
		}
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("find object %q: %w", name, object.ErrNotFound)
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("find object %q: %w: matches %s and %s", name, object.ErrAmbiguousHash, candidates[0], candidates[1])
	}
}

// peel follows tags and commits from h toward an object of type want.
func (r *Repo) peel(h object.Hash, want object.ObjectType, follow bool) (object.Hash, error) {
	for {
		obj, err := r.Store.Read(h)
		if err != nil {
			return "", fmt.Errorf("find object: %w", err)
		}
		if obj.Type() == want {
			return h, nil
		}
		if !follow {
			return "", fmt.Errorf("find object %s: %w: got %q, want %q", h, object.ErrUnexpectedType, obj.Type(), want)
		}

		switch o := obj.(type) {
		case *object.Tag:
			h = o.Object()
		case *object.Commit:
			if want != object.TypeTree {
				return "", fmt.Errorf("find object %s: %w: cannot peel commit to %q", h, object.ErrUnexpectedType, want)
			}
			h = o.TreeHash()
		default:
			return "", fmt.Errorf("find object %s: %w: got %q, want %q", h, object.ErrUnexpectedType, obj.Type(), want)
		}
	}
}

func isHexString(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9') && !('a' <= c && c <= 'f') && !('A' <= c && c <= 'F') {
			return false
		}
	}
	return s != ""
}

func appendUnique(hs []object.Hash, h object.Hash) []object.Hash {
	for _, x := range hs {
		if x == h {
			return hs
		}
	}
	return append(hs, h)
}

// refExists reports whether the ref file name exists, without following it.
func (r *Repo) refExists(name string) (bool, error) {
	_, err := r.readRef(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
