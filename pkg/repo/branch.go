package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/grit/pkg/object"
)

const headsPrefix = "refs/heads/"

// CreateBranch creates refs/heads/<name> pointing at target. The branch
// must not exist yet.
func (r *Repo) CreateBranch(name string, target object.Hash) error {
	if err := validateRefName(name); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	if _, err := r.Store.ReadCommit(target); err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	if err := r.UpdateRef(headsPrefix+name, target, ""); err != nil {
		if errors.Is(err, ErrRefCASMismatch) {
			return fmt.Errorf("create branch: branch %q already exists", name)
		}
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// DeleteBranch removes refs/heads/<name>. The branch HEAD points at cannot
// be deleted.
func (r *Repo) DeleteBranch(name string) error {
	if err := validateRefName(name); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if current == name {
		return fmt.Errorf("delete branch: cannot delete current branch %q", name)
	}
	if err := r.DeleteRef(headsPrefix + name); err != nil {
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	return nil
}

// ListBranches returns every branch ref sorted by name.
func (r *Repo) ListBranches() ([]Ref, error) {
	refs, err := r.ListRefs("refs/heads")
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return refs, nil
}

// CurrentBranch returns the branch HEAD points at, e.g. "master", or "" when
// HEAD is detached.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	if name, ok := strings.CutPrefix(head, headsPrefix); ok {
		return name, nil
	}
	return "", nil
}
