package cli

import (
	"context"
	"fmt"

	"github.com/hedamo/transparency/pkg/config"
	urfave "github.com/urfave/cli/v3"
)

const flagReset = "reset"

func configCmd() *urfave.Command {
	return &urfave.Command{
		Name:   "config",
		Usage:  "Print the effective configuration",
		Action: cmdConfig,
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  flagReset,
				Usage: "Overwrite the config file with defaults",
			},
		},
	}
}

type configView struct {
	Dir     string         `json:"dir" yaml:"dir"`
	Listen  string         `json:"listen" yaml:"listen"`
	Config  *config.Config `json:"config" yaml:"config"`
	Version string         `json:"version" yaml:"version"`
}

func cmdConfig(_ context.Context, cmd *urfave.Command) error {
	cfg := getConfig(cmd)

	if cmd.Bool(flagReset) {
		cfg.Config = config.Default()
		if err := config.Save(cfg.Dir, cfg.Config); err != nil {
			return fmt.Errorf("resetting config: %w", err)
		}
	}

	return encode(cmd, &configView{
		Dir:     cfg.Dir,
		Listen:  serverAddress(cfg.Config),
		Config:  cfg.Config,
		Version: version,
	})
}
