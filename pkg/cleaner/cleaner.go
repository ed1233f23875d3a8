// Package cleaner runs the per-row LLM cleaning loop: load the day's
// raw dataset, prompt the gateway once per usable row, validate the
// structured response, and persist the cleaned dataset plus a failure
// log. Idempotent per day.
package cleaner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carclinic/pipeline/models"
	"github.com/carclinic/pipeline/pkg/dataset"
	"github.com/carclinic/pipeline/pkg/gateway"
)

// Gateway is the synchronous text-in/text-out contract the cleaner
// depends on. The gateway package's client satisfies it; tests use a
// fake.
type Gateway interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Stats summarizes one cleaning run. Skipped aggregates pre-filtered
// rows, failures, and negatives: everything that reached neither the
// cleaned dataset nor (for pre-filtered rows) the gateway.
type Stats struct {
	TotalRows int
	Cleaned   int
	Skipped   int
	Negatives int
	Failures  int
	Elapsed   time.Duration

	// AlreadyDone marks the idempotent no-op: the day's cleaned
	// dataset existed before this run.
	AlreadyDone bool

	// NoInput marks the missing-raw-file early return.
	NoInput bool
}

type Cleaner struct {
	gw      Gateway
	logger  *slog.Logger
	dataDir string
	timeout time.Duration
	workers int
}

func New(gw Gateway, logger *slog.Logger, dataDir string, timeout time.Duration, workers int) *Cleaner {
	if workers <= 0 {
		workers = 1
	}
	return &Cleaner{
		gw:      gw,
		logger:  logger,
		dataDir: dataDir,
		timeout: timeout,
		workers: workers,
	}
}

type rowJob struct {
	index int
	row   dataset.RawRow
}

type rowResult struct {
	index   int
	outcome models.RowOutcome
}

// Clean processes the given day's raw dataset. Missing input and an
// already-present cleaned dataset are clean early returns, not errors;
// only resource-level failures (unreadable input, unwritable output)
// return a non-nil error.
func (c *Cleaner) Clean(ctx context.Context, day time.Time) (Stats, error) {
	start := time.Now()
	stats := Stats{}

	rawPath := dataset.RawPath(c.dataDir, day)
	cleanedPath := dataset.CleanedPath(c.dataDir, day)

	if !dataset.Exists(rawPath) {
		c.logger.Warn("raw dataset not found, skipping cleaning", "path", rawPath)
		stats.NoInput = true
		return stats, nil
	}
	if dataset.Exists(cleanedPath) {
		c.logger.Info("cleaned dataset already present, skipping", "path", cleanedPath)
		stats.AlreadyDone = true
		return stats, nil
	}

	rows, err := dataset.LoadRaw(rawPath)
	if err != nil {
		return stats, fmt.Errorf("failed to load raw dataset: %w", err)
	}
	stats.TotalRows = len(rows)
	c.logger.Info("loaded raw dataset", "path", rawPath, "rows", len(rows))

	// Pre-filter before dispatch: rows with no usable text never reach
	// the gateway and never appear in the failure log.
	var usable []rowJob
	for _, row := range rows {
		if strings.TrimSpace(row.Title) == "" && strings.TrimSpace(row.Body) == "" {
			stats.Skipped++
			continue
		}
		usable = append(usable, rowJob{index: row.Index, row: row})
	}

	outcomes := c.processRows(ctx, usable)

	var records []models.CleanedRecord
	var failures []models.RowFailure
	for _, res := range outcomes {
		switch {
		case res.outcome.Record != nil:
			records = append(records, *res.outcome.Record)
			stats.Cleaned++
		case res.outcome.Failure != nil:
			failures = append(failures, *res.outcome.Failure)
			stats.Failures++
			stats.Skipped++
		case res.outcome.Negative:
			stats.Negatives++
			stats.Skipped++
		}
	}

	if err := dataset.WriteCleaned(records, cleanedPath); err != nil {
		// The cleaned write failing is the more fundamental error;
		// surface it before any failure-log bookkeeping.
		return stats, err
	}

	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool { return failures[i].Row < failures[j].Row })
		logPath := dataset.FailureLogPath(cleanedPath)
		if err := dataset.WriteFailureLog(failures, logPath); err != nil {
			return stats, err
		}
		c.logger.Warn("failure log written", "path", logPath, "entries", len(failures))
	}

	stats.Elapsed = time.Since(start)
	c.logger.Info("cleaning completed",
		"total_rows", stats.TotalRows,
		"cleaned", stats.Cleaned,
		"skipped", stats.Skipped,
		"negatives", stats.Negatives,
		"failures", stats.Failures,
		"elapsed", stats.Elapsed.Round(time.Millisecond).String())
	return stats, nil
}

// processRows fans usable rows across a bounded worker pool and
// aggregates outcomes in raw-row order. On cancellation, undispatched
// rows are dropped while completed outcomes are kept for flushing.
func (c *Cleaner) processRows(ctx context.Context, jobs []rowJob) []rowResult {
	jobCh := make(chan rowJob)
	resultCh := make(chan rowResult, len(jobs))

	var wg sync.WaitGroup
	for w := 1; w <= c.workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for job := range jobCh {
				resultCh <- rowResult{index: job.index, outcome: c.cleanRow(ctx, id, job)}
			}
		}(w)
	}

dispatch:
	for _, job := range jobs {
		select {
		case <-ctx.Done():
			c.logger.Info("cleaning cancelled, flushing completed rows")
			break dispatch
		case jobCh <- job:
		}
	}
	close(jobCh)
	wg.Wait()
	close(resultCh)

	results := make([]rowResult, 0, len(jobs))
	for res := range resultCh {
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })
	return results
}

// cleanRow handles one row end to end: prompt construction, the bounded
// gateway call, and response validation. Every failure mode maps to an
// explicit outcome; nothing escapes as a panic or run-level error.
func (c *Cleaner) cleanRow(ctx context.Context, workerID int, job rowJob) models.RowOutcome {
	entries := ParseComments(job.row.TopComments)
	prompt := BuildPrompt(job.row.Title, job.row.Body, entries)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := c.gw.Complete(callCtx, prompt)
	if err != nil {
		kind := models.FailureGatewayError
		if gateway.IsTimeout(err) {
			kind = models.FailureGatewayTimeout
		}
		c.logger.Error("gateway call failed", "worker_id", workerID, "row", job.index, "kind", kind, "error", err)
		return models.RowOutcome{Failure: &models.RowFailure{
			Row:    job.index,
			Kind:   kind,
			Detail: err.Error(),
		}}
	}

	record, negative, err := ParseResponse(response, job.row.ID)
	if err != nil {
		c.logger.Error("response rejected", "worker_id", workerID, "row", job.index, "error", err)
		return models.RowOutcome{Failure: &models.RowFailure{
			Row:    job.index,
			Kind:   models.FailureParseError,
			Detail: fmt.Sprintf("%s; raw response: %s", err, response),
		}}
	}
	if negative {
		return models.RowOutcome{Negative: true}
	}
	return models.RowOutcome{Record: record}
}
