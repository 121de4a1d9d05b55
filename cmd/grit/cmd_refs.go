package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/grit/pkg/object"
)

func newShowRefCmd(opts *globalOptions) *cobra.Command {
	var heads, tags bool

	cmd := &cobra.Command{
		Use:   "show-ref",
		Short: "List references and the ids they resolve to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo()
			if err != nil {
				return err
			}

			var dirs []string
			switch {
			case heads || tags:
				if heads {
					dirs = append(dirs, "refs/heads")
				}
				if tags {
					dirs = append(dirs, "refs/tags")
				}
			default:
				dirs = []string{"refs"}
			}

			out := cmd.OutOrStdout()
			for _, dir := range dirs {
				refs, err := r.ListRefs(dir)
				if err != nil {
					return err
				}
				for _, ref := range refs {
					fmt.Fprintln(out, ref)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&heads, "heads", false, "only show branches")
	cmd.Flags().BoolVar(&tags, "tags", false, "only show tags")
	return cmd
}

func newBranchCmd(opts *globalOptions) *cobra.Command {
	var deleteBranch string

	cmd := &cobra.Command{
		Use:   "branch [name] [start]",
		Short: "List, create, or delete branches",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo()
			if err != nil {
				return err
			}

			if strings.TrimSpace(deleteBranch) != "" {
				if len(args) > 0 {
					return fmt.Errorf("branch --delete does not accept positional args")
				}
				return r.DeleteBranch(deleteBranch)
			}

			if len(args) == 0 {
				current, err := r.CurrentBranch()
				if err != nil {
					return err
				}
				branches, err := r.ListBranches()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, b := range branches {
					name := strings.TrimPrefix(b.Path, "refs/heads/")
					marker := " "
					if name == current {
						marker = "*"
					}
					fmt.Fprintf(out, "%s %s\n", marker, name)
				}
				return nil
			}

			start := "HEAD"
			if len(args) == 2 {
				start = args[1]
			}
			target, err := r.FindObject(start, object.TypeCommit, true)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", start, err)
			}
			return r.CreateBranch(args[0], target)
		},
	}

	cmd.Flags().StringVarP(&deleteBranch, "delete", "d", "", "delete the named branch")
	return cmd
}
