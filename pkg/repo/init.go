package repo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

const (
	defaultDescription = "Unnamed repository; edit this file 'description' to name the repository.\n"
	defaultHead        = "ref: refs/heads/master\n"
)

// Init creates a new repository with its worktree at path. The worktree is
// created if missing. An existing .git/ directory is accepted only when it
// is empty.
//
// Layout written:
//
//	.git/branches/
//	.git/objects/
//	.git/refs/heads/
//	.git/refs/tags/
//	.git/description
//	.git/HEAD
//	.git/config
func Init(path string, opts ...Option) (*Repo, error) {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("init %s: %w", path, ErrDestinationNotDirectory)
	}
	gitDir := filepath.Join(path, ".git")

	if info, err := os.Stat(gitDir); err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("init %s: %w", gitDir, ErrDestinationNotDirectory)
		}
		empty, err := dirEmpty(gitDir)
		if err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
		if !empty {
			return nil, fmt.Errorf("init %s: %w", gitDir, ErrDestinationNotEmpty)
		}
	}

	dirs := []string{
		filepath.Join(gitDir, "branches"),
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "heads"),
		filepath.Join(gitDir, "refs", "tags"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	files := []struct {
		name string
		data []byte
	}{
		{"description", []byte(defaultDescription)},
		{"HEAD", []byte(defaultHead)},
		{"config", DefaultConfig().Marshal()},
	}
	for _, f := range files {
		if err := writeFileAtomic(filepath.Join(gitDir, f.name), f.data, 0o644); err != nil {
			return nil, fmt.Errorf("init: write %s: %w", f.name, err)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	r := newRepo(abs, filepath.Join(abs, ".git"), DefaultConfig(), opts)
	r.logger.Debug("repository initialized")
	return r, nil
}

// Open opens the repository whose worktree is exactly path. The config is
// read and its format version checked.
func Open(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}
	gitDir := filepath.Join(abs, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("open %s: %w", abs, ErrNotRepository)
	}

	cfg, err := ReadConfig(filepath.Join(gitDir, "config"))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", abs, err)
	}
	if !cfg.FormatVersionSupported() {
		return nil, fmt.Errorf("open %s: %w: %d", abs, ErrUnsupportedFormatVersion, cfg.Core.RepositoryFormatVersion)
	}
	return newRepo(abs, gitDir, cfg, opts), nil
}

// Find searches upward from start for a directory containing .git/ and
// opens it.
func Find(start string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("find repository: abs path: %w", err)
	}

	cur := abs
	for {
		info, err := os.Stat(filepath.Join(cur, ".git"))
		if err == nil && info.IsDir() {
			return Open(cur, opts...)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("find repository from %s: %w (or any parent up to /)", abs, ErrNotRepository)
		}
		cur = parent
	}
}

func dirEmpty(dir string) (_ bool, retErr error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer func() {
		retErr = multierr.Append(retErr, f.Close())
	}()
	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) (retErr error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("tmpfile: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if retErr != nil {
			retErr = multierr.Append(retErr, os.Remove(tmpName))
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return multierr.Append(fmt.Errorf("write: %w", err), tmp.Close())
	}
	if err := tmp.Chmod(perm); err != nil {
		return multierr.Append(fmt.Errorf("chmod: %w", err), tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
