package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hedamo/transparency/pkg/config"
	"github.com/hedamo/transparency/pkg/logging"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "transparency"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"

	flagDebug     = "debug"
	flagConfigDir = "config-dir"
	flagFormat    = "format"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Dir    string
	Debug  bool
	Format string
	Config *config.Config
}

func (a *appConfig) logLevel() string {
	if a.Debug {
		return "debug"
	}
	return a.Config.Log.Level
}

func getConfig(cmd *urfave.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.Command {
	return &urfave.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Usage:                 "Transparency scoring and question generation for product supply chains",
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Writer:                os.Stdout,
		ErrWriter:             os.Stderr,
		Reader:                os.Stdin,
		Metadata:              map[string]any{},
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  flagDebug,
				Usage: "Prints verbose logs (optional, default: false)",
			},
			&urfave.StringFlag{
				Name:  flagConfigDir,
				Usage: "Directory holding config.yaml and stored tokens (default: ~/.transparency)",
			},
			&urfave.StringFlag{
				Name:  flagFormat,
				Usage: "Output format [json, yaml]",
				Value: formatJSON,
			},
		},
		Commands: []*urfave.Command{
			serverCmd(),
			scoreCmd(),
			questionsCmd(),
			reportCmd(),
			authCmd(),
			configCmd(),
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return ctx, err
			}
			logging.SetDefaultCLILogger(cfg.logLevel())
			cmd.Metadata[appConfigKey] = cfg
			return ctx, nil
		},
	}
}

func loadConfig(cmd *urfave.Command) (*appConfig, error) {
	dir := cmd.String(flagConfigDir)
	if dir == "" {
		d, created, err := config.GetOrCreateHomeDir(appName)
		if err != nil {
			return nil, fmt.Errorf("getting config dir: %w", err)
		}
		if created {
			slog.Debug("created config dir", "path", d)
		}
		dir = d
	}

	c, err := config.ReadOrCreate(dir)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	f := cmd.String(flagFormat)
	switch f {
	case formatJSON:
	case formatYAML, "yml":
		f = formatYAML
	default:
		return nil, fmt.Errorf("unsupported output format: %s", f)
	}

	return &appConfig{
		Dir:    dir,
		Debug:  cmd.Bool(flagDebug),
		Format: f,
		Config: c,
	}, nil
}

func encode(cmd *urfave.Command, v any) error {
	return encodeTo(cmd.Root().Writer, getConfig(cmd).Format, v)
}

func encodeTo(w io.Writer, format string, v any) error {
	if format == formatYAML {
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

var errMissingInput = errors.New("missing input")
