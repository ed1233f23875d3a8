// Package comments selects the highest-value replies of a thread,
// dropping boilerplate and bot responses.
package comments

import (
	"context"
	"strings"

	"github.com/carclinic/pipeline/models"
)

// DefaultMax is the number of replies retained per thread.
const DefaultMax = 3

// ReplyTree is the source client's reply accessor. ResolveMore expands
// collapsed placeholder nodes; implementations guarantee it expands at
// most one round.
type ReplyTree interface {
	Replies() []models.Reply
	ResolveMore(ctx context.Context) error
}

// Filter retains up to Max replies per thread, excluding any whose body
// contains a denylisted phrase. Denylist matching is a case-sensitive
// substring check.
type Filter struct {
	Max      int
	Denylist []string
}

func NewFilter(max int, denylist []string) *Filter {
	if max <= 0 {
		max = DefaultMax
	}
	return &Filter{Max: max, Denylist: denylist}
}

// SelectTop walks the reply tree in source order and returns the first
// Max qualifying replies. Denylist hits increment counters'
// comments-skipped tally. An empty result is not an error.
//
// ResolveMore failures are swallowed: the replies already present are
// still usable.
func (f *Filter) SelectTop(ctx context.Context, tree ReplyTree, counters *models.Counters) []models.Reply {
	_ = tree.ResolveMore(ctx)

	var selected []models.Reply
	for _, reply := range tree.Replies() {
		if len(selected) >= f.Max {
			break
		}
		if f.denied(reply.Body) {
			if counters != nil {
				counters.CommentsSkipped.Add(1)
			}
			continue
		}
		selected = append(selected, reply)
	}
	return selected
}

func (f *Filter) denied(body string) bool {
	for _, phrase := range f.Denylist {
		if strings.Contains(body, phrase) {
			return true
		}
	}
	return false
}
