package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/odvcencio/grit/pkg/repo"
)

func newLogCmd(opts *globalOptions) *cobra.Command {
	var limit int
	var oneline bool

	cmd := &cobra.Command{
		Use:   "log [commit]",
		Short: "Show commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo()
			if err != nil {
				return err
			}

			start := "HEAD"
			if len(args) > 0 {
				start = args[0]
			}
			h, err := r.FindObject(start, object.TypeCommit, true)
			if err != nil {
				return fmt.Errorf("cannot resolve %s: %w", start, err)
			}

			out := cmd.OutOrStdout()
			for entry, err := range r.Log(h, limit) {
				if err != nil {
					return err
				}
				if oneline {
					fmt.Fprintf(out, "%s %s\n", shortHash(entry.Hash), firstLine(entry.Commit.Message()))
					continue
				}
				printLogEntry(out, entry)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "max-count", "n", 5, "number of commits to show")
	cmd.Flags().BoolVar(&oneline, "oneline", false, "show each commit on one line")
	return cmd
}

// shortHash abbreviates h to 8 characters. Parent values come straight
// from the commit body and may be shorter.
func shortHash(h object.Hash) string {
	if len(h) <= 8 {
		return string(h)
	}
	return string(h[:8])
}

func printLogEntry(out io.Writer, entry repo.LogEntry) {
	c := entry.Commit
	fmt.Fprintf(out, "commit %s\n", entry.Hash)
	if parents := c.Parents(); len(parents) > 1 {
		short := make([]string, len(parents))
		for i, p := range parents {
			short[i] = shortHash(p)
		}
		fmt.Fprintf(out, "Merge: %s\n", strings.Join(short, " "))
	}
	fmt.Fprintf(out, "Author: %s\n", c.Author())
	fmt.Fprintf(out, "Tree:   %s\n", c.TreeHash())
	fmt.Fprintln(out)
	for _, line := range strings.Split(strings.TrimRight(c.Message(), "\n"), "\n") {
		fmt.Fprintf(out, "    %s\n", line)
	}
	fmt.Fprintln(out)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
