package reddit

import (
	"context"

	"github.com/carclinic/pipeline/models"
)

// CommentTree holds a post's top-level comments in source order plus
// any unresolved "load more" stubs.
type CommentTree struct {
	client   *Client
	linkID   string
	comments []Comment
	moreIDs  []string
	resolved bool
}

// Replies converts the fetched comments into the pipeline's Reply
// shape, preferring the HTML body when the plain one is empty.
func (t *CommentTree) Replies() []models.Reply {
	replies := make([]models.Reply, 0, len(t.comments))
	for _, cm := range t.comments {
		body := cm.Body
		if body == "" && cm.BodyHTML != "" {
			body = htmlToText(cm.BodyHTML)
		}
		replies = append(replies, models.Reply{
			Author: cm.Author,
			Score:  cm.Score,
			Body:   body,
		})
	}
	return replies
}

// ResolveMore expands collapsed comment stubs exactly once. A second
// call is a no-op, keeping the fetch cost bounded.
func (t *CommentTree) ResolveMore(ctx context.Context) error {
	if t.resolved || len(t.moreIDs) == 0 {
		t.resolved = true
		return nil
	}
	t.resolved = true

	extra, err := t.client.moreChildren(ctx, t.linkID, t.moreIDs)
	if err != nil {
		return err
	}
	t.comments = append(t.comments, extra...)
	t.moreIDs = nil
	return nil
}
