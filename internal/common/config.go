package common

import (
	"github.com/carclinic/pipeline/models"
	"github.com/urfave/cli/v2"
)

// LoadConfig reads the YAML config named by --config and applies CLI
// flag overrides on top.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	return cfg, nil
}
