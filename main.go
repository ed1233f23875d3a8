// carclinic is a two-stage daily batch pipeline: collect car-repair
// discussion threads from configured communities into a per-day raw
// dataset, then extract structured problem/solution pairs from each
// row through a language model.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/carclinic/pipeline/internal/clean"
	"github.com/carclinic/pipeline/internal/collect"
	"github.com/carclinic/pipeline/internal/run"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := newApp()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	commonFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Value: "config.yaml",
			Usage: "path to the YAML config file",
		},
		&cli.StringFlag{
			Name:  "day",
			Usage: "day to process as YYYY-MM-DD (default: yesterday UTC)",
		},
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "override the configured data directory",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "log errors only",
		},
	}

	return &cli.App{
		Name:  "carclinic",
		Usage: "collect car-repair forum threads and extract structured problem/solution pairs",
		Commands: []*cli.Command{
			{
				Name:   "collect",
				Usage:  "fetch qualifying threads and merge them into the day's raw dataset",
				Action: collect.CollectAction,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "override the configured community worker count",
					},
				}, commonFlags...),
			},
			{
				Name:   "clean",
				Usage:  "extract problem/solution pairs from the day's raw dataset",
				Action: clean.CleanAction,
				Flags:  commonFlags,
			},
			{
				Name:   "run",
				Usage:  "collect then clean for one day",
				Action: run.RunAction,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "override the configured community worker count",
					},
				}, commonFlags...),
			},
			{
				Name:   "status",
				Usage:  "list recent pipeline runs",
				Action: run.StatusAction,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "number of runs to show",
					},
				}, commonFlags...),
			},
		},
	}
}
