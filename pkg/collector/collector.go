// Package collector walks the configured communities newest-first,
// applies the time-window, engagement and reply filters, and
// accumulates qualifying threads into an in-memory batch.
package collector

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/carclinic/pipeline/models"
	"github.com/carclinic/pipeline/pkg/comments"
	"github.com/carclinic/pipeline/pkg/linkpost"
	"github.com/carclinic/pipeline/pkg/reddit"
)

// Source is the listing/comment contract the collector consumes. The
// Reddit client satisfies it through a thin adapter; tests substitute a
// fake.
type Source interface {
	Listing(ctx context.Context, community, after string, limit int) ([]reddit.Post, string, error)
	CommentTree(ctx context.Context, post reddit.Post) (comments.ReplyTree, error)
}

// LanguageFilter is satisfied by language.Filter. Nil disables it.
type LanguageFilter interface {
	Accept(text string) bool
}

type Collector struct {
	source  Source
	filter  *comments.Filter
	limiter *rate.Limiter
	logger  *slog.Logger

	// Optional enrichments.
	language LanguageFilter
	links    *linkpost.Resolver

	workers int
}

type Options struct {
	Workers  int
	Language LanguageFilter
	Links    *linkpost.Resolver
}

// New builds a collector. The limiter is shared across all community
// workers so the aggregate request rate respects upstream limits.
func New(source Source, filter *comments.Filter, limiter *rate.Limiter, logger *slog.Logger, opts Options) *Collector {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Collector{
		source:   source,
		filter:   filter,
		limiter:  limiter,
		logger:   logger,
		language: opts.Language,
		links:    opts.Links,
		workers:  workers,
	}
}

// Collect gathers qualifying threads from every community inside the
// window, up to maxPer per community. Communities are processed by a
// bounded worker pool; the returned batch preserves no cross-community
// order. On cancellation the partially collected batch is returned so
// completed work can still be flushed.
func (c *Collector) Collect(ctx context.Context, communities []string, window models.Window, maxPer, pageSize int) ([]models.Thread, *models.Counters) {
	counters := &models.Counters{}

	jobs := make(chan string, len(communities))
	results := make(chan []models.Thread, len(communities))

	var wg sync.WaitGroup
	for w := 1; w <= c.workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for community := range jobs {
				threads := c.collectCommunity(ctx, id, community, window, maxPer, pageSize, counters)
				results <- threads
			}
		}(w)
	}

	for _, community := range communities {
		jobs <- community
	}
	close(jobs)

	wg.Wait()
	close(results)

	var batch []models.Thread
	for threads := range results {
		batch = append(batch, threads...)
	}
	return batch, counters
}

// collectCommunity paginates one community until maxPer threads are
// retained, the listing ends, or the context is cancelled. A single bad
// thread never aborts the loop.
func (c *Collector) collectCommunity(ctx context.Context, workerID int, community string, window models.Window, maxPer, pageSize int, counters *models.Counters) []models.Thread {
	logger := c.logger.With("worker_id", workerID, "community", community)
	logger.Info("starting community")

	var retained []models.Thread
	after := ""

	for len(retained) < maxPer {
		if err := c.limiter.Wait(ctx); err != nil {
			logger.Info("collection cancelled", "retained", len(retained))
			return retained
		}

		posts, next, err := c.source.Listing(ctx, community, after, pageSize)
		if err != nil {
			logger.Error("listing page failed, abandoning community", "error", err)
			return retained
		}

		for _, post := range posts {
			if len(retained) >= maxPer {
				break
			}
			if ctx.Err() != nil {
				return retained
			}

			counters.TotalFetched.Add(1)

			if !window.Contains(int64(post.CreatedUTC)) {
				counters.FilteredByTime.Add(1)
				continue
			}
			if post.NumComments == 0 {
				counters.FilteredByComments.Add(1)
				continue
			}
			if c.language != nil && !c.language.Accept(post.Title+" "+post.SelfText) {
				counters.FilteredByLanguage.Add(1)
				continue
			}

			thread, ok := c.buildThread(ctx, logger, community, post, counters)
			if !ok {
				continue
			}

			retained = append(retained, thread)
			counters.ValidStored.Add(1)
			if len(retained)%10 == 0 {
				logger.Info("collection progress", "retained", len(retained), "max", maxPer)
			}
		}

		if next == "" {
			logger.Info("end of listing", "retained", len(retained), "max", maxPer)
			break
		}
		after = next
	}

	logger.Info("community done", "retained", len(retained))
	return retained
}

// buildThread fetches and filters a post's replies. A thread with zero
// retained replies carries no signal and is dropped.
func (c *Collector) buildThread(ctx context.Context, logger *slog.Logger, community string, post reddit.Post, counters *models.Counters) (models.Thread, bool) {
	if err := c.limiter.Wait(ctx); err != nil {
		return models.Thread{}, false
	}

	tree, err := c.source.CommentTree(ctx, post)
	if err != nil {
		logger.Warn("failed to fetch replies, skipping thread", "post_id", post.ID, "error", err)
		return models.Thread{}, false
	}

	replies := c.filter.SelectTop(ctx, tree, counters)
	if len(replies) == 0 {
		return models.Thread{}, false
	}

	body := post.SelfText
	if body == "" && c.links != nil && !post.IsSelf && post.URL != "" {
		resolved, err := c.links.Resolve(ctx, post.URL)
		if err != nil {
			logger.Warn("failed to resolve link post", "post_id", post.ID, "error", err)
		} else {
			body = resolved
		}
	}

	return models.Thread{
		ID:          post.ID,
		Title:       post.Title,
		Body:        body,
		Score:       post.Score,
		CreatedUTC:  int64(post.CreatedUTC),
		NumComments: post.NumComments,
		Community:   community,
		Replies:     replies,
	}, true
}
