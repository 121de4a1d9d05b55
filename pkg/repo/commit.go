package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/grit/pkg/object"
)

// Signature identifies the author, committer or tagger of an object.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// String renders the signature as git stores it:
// "Name <email> 1700000000 +0000".
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When.Unix(), formatTimezoneOffset(s.When))
}

// CommitOptions describes a commit for CommitTree.
type CommitOptions struct {
	Tree      object.Hash
	Parents   []object.Hash
	Author    Signature
	Committer Signature // defaults to Author
	Message   string
}

// CommitTree writes a commit object for an existing tree. Each parent must
// be a stored commit; several parents make a merge commit. HEAD is not
// moved.
func (r *Repo) CommitTree(opts CommitOptions) (object.Hash, error) {
	if _, err := r.Store.ReadTree(opts.Tree); err != nil {
		return "", fmt.Errorf("commit tree: %w", err)
	}
	for _, p := range opts.Parents {
		if _, err := r.Store.ReadCommit(p); err != nil {
			return "", fmt.Errorf("commit tree: parent: %w", err)
		}
	}
	if strings.TrimSpace(opts.Author.Name) == "" {
		return "", fmt.Errorf("commit tree: author is required")
	}
	committer := opts.Committer
	if committer.Name == "" {
		committer = opts.Author
	}

	message := opts.Message
	if message != "" && !strings.HasSuffix(message, "\n") {
		message += "\n"
	}

	var c object.Commit
	c.KVL.Add("tree", string(opts.Tree))
	for _, p := range opts.Parents {
		c.KVL.Add("parent", string(p))
	}
	c.KVL.Add("author", opts.Author.String())
	c.KVL.Add("committer", committer.String())
	c.KVL.SetMessage(message)

	h, err := r.Store.Write(&c)
	if err != nil {
		return "", fmt.Errorf("commit tree: %w", err)
	}
	return h, nil
}

func formatTimezoneOffset(t time.Time) string {
	_, offset := t.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	hours := offset / 3600
	minutes := (offset % 3600) / 60
	return fmt.Sprintf("%s%02d%02d", sign, hours, minutes)
}
