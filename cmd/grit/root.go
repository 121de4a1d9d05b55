package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/odvcencio/grit/pkg/repo"
)

// globalOptions holds flags shared by every verb.
type globalOptions struct {
	dir     string
	verbose bool
	logger  *zap.Logger
}

func (o *globalOptions) bindFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&o.dir, "dir", "C", ".", "run as if started in this directory")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log debug output to stderr")
}

func (o *globalOptions) initLogger() error {
	if !o.verbose {
		o.logger = zap.NewNop()
		return nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	o.logger = logger
	return nil
}

// openRepo finds the repository containing the working directory.
func (o *globalOptions) openRepo() (*repo.Repo, error) {
	return repo.Find(o.dir, repo.WithLogger(o.logger))
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{logger: zap.NewNop()}
	root := &cobra.Command{
		Use:           "grit",
		Short:         "A minimal git-compatible object store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}
	opts.bindFlags(root.PersistentFlags())

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(opts))
	root.AddCommand(newCatFileCmd(opts))
	root.AddCommand(newHashObjectCmd(opts))
	root.AddCommand(newLogCmd(opts))
	root.AddCommand(newLsTreeCmd(opts))
	root.AddCommand(newCheckoutCmd(opts))
	root.AddCommand(newShowRefCmd(opts))
	root.AddCommand(newTagCmd(opts))
	root.AddCommand(newVerifyTagCmd(opts))
	root.AddCommand(newCommitTreeCmd(opts))
	root.AddCommand(newWriteTreeCmd(opts))
	root.AddCommand(newRevParseCmd(opts))
	root.AddCommand(newBranchCmd(opts))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "grit 0.1.0-dev")
		},
	}
}
