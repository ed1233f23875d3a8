// Package run sequences the full pipeline for one day and exposes the
// run-history listing.
package run

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/carclinic/pipeline/internal/clean"
	"github.com/carclinic/pipeline/internal/collect"
	"github.com/carclinic/pipeline/internal/common"
	"github.com/carclinic/pipeline/pkg/db"
)

// RunAction is the `run` command: collect then clean for one day,
// yesterday UTC by default. No rollback between stages; a raw dataset
// persisted by a successful collect stays valid even if cleaning fails.
func RunAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	day, err := common.ResolveDay(c.String("day"))
	if err != nil {
		return err
	}

	if err := collect.Execute(c.Context, logger, cfg, day); err != nil {
		return fmt.Errorf("collect stage failed: %w", err)
	}
	if err := clean.Execute(c.Context, logger, cfg, day); err != nil {
		return fmt.Errorf("clean stage failed: %w", err)
	}
	return nil
}

// StatusAction is the `status` command: list recent stage runs from
// the history store.
func StatusAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}

	history, err := db.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer history.Close()

	runs, err := history.RecentRuns(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tDAY\tSTAGE\tSTATUS\tTOTAL\tSTORED\tSKIPPED\tFAILURES\tSTARTED")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.RunID, r.Day, r.Stage, r.Status, r.Total, r.Stored, r.Skipped, r.Failures,
			r.StartedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
