package repo

import (
	"fmt"
	"iter"

	"github.com/odvcencio/grit/pkg/object"
)

// LogEntry is one commit yielded by Log.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.Commit
}

// Log walks history from start along first parents, yielding at most limit
// commits. The walk ends at a root commit or at an id that is not a
// commit. Read failures are yielded once and end the walk.
func (r *Repo) Log(start object.Hash, limit int) iter.Seq2[LogEntry, error] {
	return func(yield func(LogEntry, error) bool) {
		cur := start
		for n := 0; n < limit && cur != ""; n++ {
			obj, err := r.Store.Read(cur)
			if err != nil {
				yield(LogEntry{}, fmt.Errorf("log: %w", err))
				return
			}
			c, ok := obj.(*object.Commit)
			if !ok {
				return
			}
			if !yield(LogEntry{Hash: cur, Commit: c}, nil) {
				return
			}

			parents := c.Parents()
			if len(parents) == 0 {
				return
			}
			cur = parents[0]
		}
	}
}
