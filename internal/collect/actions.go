// Package collect wires the collection stage: the forum client, the
// comment filter, the shared rate limiter, and the dataset merge.
package collect

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/carclinic/pipeline/internal/common"
	"github.com/carclinic/pipeline/models"
	"github.com/carclinic/pipeline/pkg/collector"
	"github.com/carclinic/pipeline/pkg/comments"
	"github.com/carclinic/pipeline/pkg/dataset"
	"github.com/carclinic/pipeline/pkg/db"
	"github.com/carclinic/pipeline/pkg/fetcher"
	"github.com/carclinic/pipeline/pkg/language"
	"github.com/carclinic/pipeline/pkg/linkpost"
	"github.com/carclinic/pipeline/pkg/reddit"
	"github.com/carclinic/pipeline/pkg/summary"
)

// redditSource adapts the Reddit client to the collector's Source
// contract.
type redditSource struct {
	client *reddit.Client
}

func (s redditSource) Listing(ctx context.Context, community, after string, limit int) ([]reddit.Post, string, error) {
	return s.client.Listing(ctx, community, after, limit)
}

func (s redditSource) CommentTree(ctx context.Context, post reddit.Post) (comments.ReplyTree, error) {
	tree, err := s.client.CommentTree(ctx, post)
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// CollectAction is the `collect` command: gather yesterday's threads
// and merge them into the day's raw dataset.
func CollectAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	day, err := common.ResolveDay(c.String("day"))
	if err != nil {
		return err
	}

	return Execute(c.Context, logger, cfg, day)
}

// Execute runs the collection stage for one day, recording the run in
// the history store and writing a per-run summary.
func Execute(ctx context.Context, logger *slog.Logger, cfg *models.Config, day time.Time) error {
	start := time.Now()
	dayStr := common.FormatDay(day)
	logger.Info("starting collection", "day", dayStr, "communities", len(cfg.Communities))

	history, err := db.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer history.Close()

	runID, err := history.StartRun(dayStr, "collect")
	if err != nil {
		return err
	}

	batch, counters, err := collect(ctx, logger, cfg, day)
	snapshot := counters.Snapshot()
	if err != nil {
		_ = history.FinishRun(runID, db.StatusFailed, runTotals(snapshot), err.Error())
		return err
	}

	rawPath := dataset.RawPath(cfg.DataDir, day)
	rows := 0
	if len(batch) == 0 {
		logger.Info("no threads collected", "day", dayStr)
	} else {
		rows, err = dataset.MergeAndSave(batch, rawPath)
		if err != nil {
			_ = history.FinishRun(runID, db.StatusFailed, runTotals(snapshot), err.Error())
			return fmt.Errorf("failed to save raw dataset: %w", err)
		}
		logger.Info("raw dataset saved", "path", rawPath, "rows", rows)
	}

	if err := history.FinishRun(runID, db.StatusOK, runTotals(snapshot), ""); err != nil {
		logger.Warn("failed to record run", "error", err)
	}

	summaryPath, err := summary.Write(cfg.DataDir, summary.Summary{
		Day:       dayStr,
		Stage:     "collect",
		StartedAt: start.UTC(),
		Elapsed:   time.Since(start).Round(time.Second).String(),
		Counters: map[string]int64{
			"total_posts_fetched":     snapshot.TotalFetched,
			"posts_filtered_time":     snapshot.FilteredByTime,
			"posts_filtered_comments": snapshot.FilteredByComments,
			"posts_filtered_language": snapshot.FilteredByLanguage,
			"comments_skipped":        snapshot.CommentsSkipped,
			"valid_posts_stored":      snapshot.ValidStored,
			"rows_after_merge":        int64(rows),
		},
		Outputs: []string{rawPath},
	})
	if err != nil {
		logger.Warn("failed to write summary", "error", err)
	} else {
		logger.Info("summary written", "path", summaryPath)
	}

	logger.Info("collection finished",
		"day", dayStr,
		"total_posts_fetched", snapshot.TotalFetched,
		"posts_filtered_time", snapshot.FilteredByTime,
		"posts_filtered_comments", snapshot.FilteredByComments,
		"posts_filtered_language", snapshot.FilteredByLanguage,
		"comments_skipped", snapshot.CommentsSkipped,
		"valid_posts_stored", snapshot.ValidStored,
		"elapsed", time.Since(start).Round(time.Second).String())
	return nil
}

// collect assembles the collector from config and runs it.
func collect(ctx context.Context, logger *slog.Logger, cfg *models.Config, day time.Time) ([]models.Thread, *models.Counters, error) {
	srcTimeout, err := cfg.SourceTimeout()
	if err != nil {
		return nil, &models.Counters{}, fmt.Errorf("invalid source timeout: %w", err)
	}

	creds := reddit.CredentialsFromEnv()
	client := reddit.NewClient(cfg.Source.BaseURL, srcTimeout, creds, logger)

	opts := collector.Options{Workers: cfg.Workers}
	if cfg.Language != "" {
		langFilter, err := language.NewFilter(cfg.Language)
		if err != nil {
			return nil, &models.Counters{}, err
		}
		opts.Language = langFilter
	}
	if cfg.ResolveLinkPosts {
		opts.Links = linkpost.NewResolver(fetcher.NewFetcher(srcTimeout, creds.UserAgent))
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.Source.RequestsPerMinute/60.0), cfg.Source.Burst)
	filter := comments.NewFilter(comments.DefaultMax, cfg.Denylist)
	col := collector.New(redditSource{client: client}, filter, limiter, logger, opts)

	window := common.DayWindow(day)
	batch, counters := col.Collect(ctx, cfg.Communities, window, cfg.MaxPostsPerCommunity, cfg.PageSize)
	return batch, counters, nil
}

func runTotals(s models.CounterSnapshot) db.RunTotals {
	return db.RunTotals{
		Total:   s.TotalFetched,
		Stored:  s.ValidStored,
		Skipped: s.FilteredByTime + s.FilteredByComments + s.FilteredByLanguage,
	}
}
