package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/odvcencio/grit/pkg/object"
)

// MaxRefDepth is the number of symbolic indirections ResolveRef follows
// before giving up.
const MaxRefDepth = 10

const (
	symbolicPrefix    = "ref: "
	refLockFile       = "grit-refs.lock"
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// Ref is a resolved reference. Path is slash-separated and relative to the
// .git/ directory, e.g. "refs/heads/master".
type Ref struct {
	Hash object.Hash
	Path string
}

func (r Ref) String() string {
	return string(r.Hash) + " " + r.Path
}

// ResolveRef resolves the ref file at name, relative to .git/, to an
// object id. Symbolic refs ("ref: <path>") are followed up to MaxRefDepth
// times; revisiting a ref or exceeding the depth fails with ErrRefCycle.
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	seen := make(map[string]bool)
	cur := name
	for hops := 0; hops <= MaxRefDepth; hops++ {
		if seen[cur] {
			return "", fmt.Errorf("resolve ref %q: %w at %q", name, ErrRefCycle, cur)
		}
		seen[cur] = true

		content, err := r.readRef(cur)
		if err != nil {
			return "", fmt.Errorf("resolve ref %q: %w", name, err)
		}
		target, ok := strings.CutPrefix(content, symbolicPrefix)
		if !ok {
			return object.Hash(content), nil
		}
		cur = strings.TrimSpace(target)
	}
	return "", fmt.Errorf("resolve ref %q: %w: deeper than %d", name, ErrRefCycle, MaxRefDepth)
}

// readRef returns the trimmed content of a single ref file.
func (r *Repo) readRef(name string) (string, error) {
	p, err := r.refPath(name)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(p)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRefNotFile, name, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrRefNotFile, name)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return strings.TrimRight(string(data), " \t\r\n"), nil
}

// refPath maps a slash-separated ref name to its file, refusing names that
// would leave .git/ or that are not already clean, so "refs/heads/../../x"
// never reaches a file outside the ref's own namespace.
func (r *Repo) refPath(name string) (string, error) {
	local := filepath.FromSlash(name)
	if name == "" || path.Clean(name) != name || !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRefName, name)
	}
	return filepath.Join(r.GitDir, local), nil
}

// Head returns the ref HEAD points at, or the detached object id.
func (r *Repo) Head() (string, error) {
	content, err := r.readRef("HEAD")
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	if target, ok := strings.CutPrefix(content, symbolicPrefix); ok {
		return strings.TrimSpace(target), nil
	}
	return content, nil
}

// ListRefs resolves every ref file below dir (relative to .git/, e.g.
// "refs" or "refs/tags"). A missing directory yields no refs. Results are
// sorted by path.
func (r *Repo) ListRefs(dir string) ([]Ref, error) {
	root, err := r.refPath(dir)
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}

	var refs []Ref
	stack := []string{path.Clean(dir)}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(filepath.Join(r.GitDir, filepath.FromSlash(cur)))
		if err != nil {
			if cur == path.Clean(dir) && errors.Is(err, fs.ErrNotExist) {
				return nil, nil
			}
			return nil, fmt.Errorf("list refs %s: %w", root, err)
		}
		for _, e := range entries {
			name := path.Join(cur, e.Name())
			if e.IsDir() {
				stack = append(stack, name)
				continue
			}
			if strings.HasSuffix(e.Name(), ".lock") || strings.HasPrefix(e.Name(), ".tmp-") {
				continue
			}
			h, err := r.ResolveRef(name)
			if err != nil {
				return nil, fmt.Errorf("list refs: %w", err)
			}
			refs = append(refs, Ref{Hash: h, Path: name})
		}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs, nil
}

// UpdateRef points the ref file name at h, creating parent directories as
// needed. When expectedOld is given, the update only happens if the ref
// currently holds that id ("" meaning the ref must not exist yet).
//
// Writers serialize on an advisory lock in .git/ and replace the ref file
// by rename, so readers never see a partial write.
func (r *Repo) UpdateRef(name string, h object.Hash, expectedOld ...object.Hash) error {
	if !h.Valid() {
		return fmt.Errorf("update ref %q: malformed object id %q", name, h)
	}
	return r.writeRef(name, string(h)+"\n", expectedOld)
}

// SetSymbolicRef makes name a symbolic ref to target, e.g. HEAD to
// refs/heads/master.
func (r *Repo) SetSymbolicRef(name, target string) error {
	if _, err := r.refPath(target); err != nil {
		return fmt.Errorf("set symbolic ref %q: %w", name, err)
	}
	return r.writeRef(name, symbolicPrefix+target+"\n", nil)
}

// DeleteRef removes the ref file name.
func (r *Repo) DeleteRef(name string) error {
	p, err := r.refPath(name)
	if err != nil {
		return fmt.Errorf("delete ref: %w", err)
	}
	return r.withRefLock(func() error {
		if err := os.Remove(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("delete ref %q: %w: %w", name, ErrRefNotFile, err)
			}
			return fmt.Errorf("delete ref %q: %w", name, err)
		}
		r.logger.Debug("ref deleted", zap.String("ref", name))
		return nil
	})
}

func (r *Repo) writeRef(name, content string, expectedOld []object.Hash) error {
	if len(expectedOld) > 1 {
		return fmt.Errorf("update ref %q: expected at most one old hash", name)
	}
	p, err := r.refPath(name)
	if err != nil {
		return fmt.Errorf("update ref: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	return r.withRefLock(func() error {
		if len(expectedOld) == 1 {
			old, err := r.currentRef(name)
			if err != nil {
				return fmt.Errorf("update ref %q: read old hash: %w", name, err)
			}
			if old != expectedOld[0] {
				return fmt.Errorf("update ref %q: %w (expected %s, found %s)", name, ErrRefCASMismatch, expectedOld[0], old)
			}
		}
		if err := writeFileAtomic(p, []byte(content), 0o644); err != nil {
			return fmt.Errorf("update ref %q: %w", name, err)
		}
		r.logger.Debug("ref updated", zap.String("ref", name), zap.String("value", strings.TrimSpace(content)))
		return nil
	})
}

// currentRef reads the direct value of a ref, "" if it does not exist.
func (r *Repo) currentRef(name string) (object.Hash, error) {
	content, err := r.readRef(name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return object.Hash(content), nil
}

func (r *Repo) withRefLock(fn func() error) (retErr error) {
	lock := flock.New(filepath.Join(r.GitDir, refLockFile))
	ctx, cancel := context.WithTimeout(context.Background(), refLockWaitLimit)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, refLockRetryDelay)
	if err != nil {
		return fmt.Errorf("ref lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("ref lock: timeout waiting for %s", lock.Path())
	}
	defer func() {
		retErr = multierr.Append(retErr, lock.Unlock())
	}()
	return fn()
}
