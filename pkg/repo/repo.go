package repo

import (
	"go.uber.org/zap"

	"github.com/odvcencio/grit/pkg/object"
)

// Repo represents an opened git repository.
type Repo struct {
	RootDir string        // working tree root
	GitDir  string        // .git/ directory
	Store   *object.Store // content-addressed object store
	Config  *Config

	logger *zap.Logger
}

// Option configures a Repo at Init or Open time.
type Option func(*Repo)

// WithLogger sets the logger used by the repository and its object store.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Repo) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func newRepo(rootDir, gitDir string, cfg *Config, opts []Option) *Repo {
	r := &Repo{
		RootDir: rootDir,
		GitDir:  gitDir,
		Config:  cfg,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Store = object.NewStore(gitDir, r.logger.Named("store"))
	return r
}

// Logger returns the repository logger.
func (r *Repo) Logger() *zap.Logger {
	return r.logger
}
