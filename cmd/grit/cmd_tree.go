package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odvcencio/grit/pkg/object"
)

func newLsTreeCmd(opts *globalOptions) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls-tree [-r] <tree-ish>",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo()
			if err != nil {
				return err
			}
			h, err := r.FindObject(args[0], object.TypeTree, true)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for entry, err := range r.LsTree(h, recursive, "") {
				if err != nil {
					return err
				}
				fmt.Fprintln(out, entry)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees")
	return cmd
}

func newCheckoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <commit> <path>",
		Short: "Materialize a commit or tree into an empty directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo()
			if err != nil {
				return err
			}
			h, err := r.FindObject(args[0], "", false)
			if err != nil {
				return err
			}

			dest := args[1]
			if !filepath.IsAbs(dest) {
				dest = filepath.Join(opts.dir, dest)
			}
			res, err := r.Checkout(h, dest)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "checked out tree %s: %d files, %d directories, %d symlinks\n", res.Tree, res.Files, res.Dirs, res.Symlinks)
			for _, sm := range res.Submodules {
				fmt.Fprintf(out, "submodule %s at %s not checked out\n", sm.Path, sm.Hash)
			}
			return nil
		},
	}
}

func newWriteTreeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree [dir]",
		Short: "Store a directory as tree and blob objects",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo()
			if err != nil {
				return err
			}
			dir := r.RootDir
			if len(args) > 0 {
				dir = args[0]
				if !filepath.IsAbs(dir) {
					dir = filepath.Join(opts.dir, dir)
				}
			}
			h, err := r.WriteTree(dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
