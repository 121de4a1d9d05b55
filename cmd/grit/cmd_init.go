package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odvcencio/grit/pkg/repo"
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.dir
			if len(args) > 0 {
				path = filepath.Join(opts.dir, args[0])
				if filepath.IsAbs(args[0]) {
					path = args[0]
				}
			}

			r, err := repo.Init(path, repo.WithLogger(opts.logger))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty Git repository in %s%c\n", r.GitDir, filepath.Separator)
			return nil
		},
	}
}
