// Package clean wires the cleaning stage: the gateway client and the
// per-row cleaning orchestrator.
package clean

import (
	"context"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/carclinic/pipeline/internal/common"
	"github.com/carclinic/pipeline/models"
	"github.com/carclinic/pipeline/pkg/cleaner"
	"github.com/carclinic/pipeline/pkg/dataset"
	"github.com/carclinic/pipeline/pkg/db"
	"github.com/carclinic/pipeline/pkg/gateway"
	"github.com/carclinic/pipeline/pkg/summary"
)

// CleanAction is the `clean` command: run the day's raw dataset
// through the language model and persist the cleaned dataset.
func CleanAction(c *cli.Context) error {
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

// Execute runs the cleaning stage for one day, recording the run in
// the history store and writing a per-run summary.
func Execute(ctx context.Context, logger *slog.Logger, cfg *models.Config, day time.Time) error {
	start := time.Now()
	dayStr := common.FormatDay(day)

	timeout, err := cfg.GatewayTimeout()
	if err != nil {
		return err
	}

	history, err := db.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer history.Close()

	runID, err := history.StartRun(dayStr, "clean")
	if err != nil {
		return err
	}

	gw := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Model)
	cl := cleaner.New(gw, logger, cfg.DataDir, timeout, cfg.Gateway.Workers)

	stats, err := cl.Clean(ctx, day)
	totals := db.RunTotals{
		Total:    int64(stats.TotalRows),
		Stored:   int64(stats.Cleaned),
		Skipped:  int64(stats.Skipped),
		Failures: int64(stats.Failures),
	}
	if err != nil {
		_ = history.FinishRun(runID, db.StatusFailed, totals, err.Error())
		return err
	}

	status := db.StatusOK
	note := ""
	switch {
	case stats.AlreadyDone:
		status = db.StatusSkipped
		note = "cleaned dataset already present"
	case stats.NoInput:
		status = db.StatusSkipped
		note = "no raw dataset for day"
	}
	if err := history.FinishRun(runID, status, totals, note); err != nil {
		logger.Warn("failed to record run", "error", err)
	}

	if stats.AlreadyDone || stats.NoInput {
		return nil
	}

	summaryPath, err := summary.Write(cfg.DataDir, summary.Summary{
		Day:       dayStr,
		Stage:     "clean",
		StartedAt: start.UTC(),
		Elapsed:   stats.Elapsed.Round(time.Second).String(),
		Counters: map[string]int64{
			"total_rows": int64(stats.TotalRows),
			"cleaned":    int64(stats.Cleaned),
			"skipped":    int64(stats.Skipped),
			"negatives":  int64(stats.Negatives),
			"failures":   int64(stats.Failures),
		},
		Outputs: []string{dataset.CleanedPath(cfg.DataDir, day)},
	})
	if err != nil {
		logger.Warn("failed to write summary", "error", err)
	} else {
		logger.Info("summary written", "path", summaryPath)
	}
	return nil
}
