package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/odvcencio/grit/pkg/repo"
)

func newCommitTreeCmd(opts *globalOptions) *cobra.Command {
	var parents []string
	var message string
	var author string

	cmd := &cobra.Command{
		Use:   "commit-tree <tree> [-p <parent>]... -m <message>",
		Short: "Create a commit object for a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo()
			if err != nil {
				return err
			}
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			tree, err := r.FindObject(args[0], object.TypeTree, true)
			if err != nil {
				return err
			}
			var parentHashes []object.Hash
			for _, p := range parents {
				h, err := r.FindObject(p, object.TypeCommit, true)
				if err != nil {
					return fmt.Errorf("parent %s: %w", p, err)
				}
				parentHashes = append(parentHashes, h)
			}

			now := time.Now()
			who, err := resolveIdentity(author, "AUTHOR", now)
			if err != nil {
				return err
			}
			committer, err := resolveIdentity(author, "COMMITTER", now)
			if err != nil {
				return err
			}

			h, err := r.CommitTree(repo.CommitOptions{
				Tree:      tree,
				Parents:   parentHashes,
				Author:    who,
				Committer: committer,
				Message:   message,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&parents, "parent", "p", nil, "parent commit (repeat for merges)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", "author identity as \"Name <email>\"")
	return cmd
}
