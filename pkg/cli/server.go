package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/hedamo/transparency/pkg/api"
	"github.com/hedamo/transparency/pkg/auth"
	"github.com/hedamo/transparency/pkg/config"
	"github.com/hedamo/transparency/pkg/logging"
	"github.com/hedamo/transparency/pkg/question"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagPort        = "port"
	flagAddress     = "address"
	flagProvider    = "provider"
	flagModel       = "model"
	flagHFToken     = "hf-token"
	flagGeminiToken = "gemini-token"
)

func serverCmd() *urfave.Command {
	return &urfave.Command{
		Name:    "server",
		Aliases: []string{"serve"},
		Usage:   "Start the HTTP API",
		Action:  cmdStartServer,
		Flags: append([]urfave.Flag{
			&urfave.IntFlag{
				Name:    flagPort,
				Usage:   "Port on which the server will listen (default: config server.port)",
				Sources: urfave.EnvVars("PORT"),
			},
			&urfave.StringFlag{
				Name:  flagAddress,
				Usage: "Interface on which the server will listen (default: config server.address)",
			},
		}, generatorFlags()...),
	}
}

// generatorFlags are shared by the commands that generate questions.
func generatorFlags() []urfave.Flag {
	return []urfave.Flag{
		&urfave.StringFlag{
			Name:  flagProvider,
			Usage: "Question provider [template, huggingface, gemini] (default: config inference.provider)",
		},
		&urfave.StringFlag{
			Name:  flagModel,
			Usage: "Model used by the question provider (default: provider default)",
		},
		&urfave.StringFlag{
			Name:    flagHFToken,
			Usage:   "Hugging Face API token (default: stored token)",
			Sources: urfave.EnvVars("HUGGINGFACE_API_KEY"),
		},
		&urfave.StringFlag{
			Name:    flagGeminiToken,
			Usage:   "Gemini API key (default: stored token)",
			Sources: urfave.EnvVars("GEMINI_API_KEY"),
		},
	}
}

func cmdStartServer(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(cmd)
	c := cfg.Config

	address := c.Server.Address
	if cmd.IsSet(flagAddress) {
		address = cmd.String(flagAddress)
	}
	port := c.Server.Port
	if cmd.IsSet(flagPort) {
		port = cmd.Int(flagPort)
	}

	gen, model, err := newGenerator(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return api.Serve(ctx, api.Options{
		Address:        net.JoinHostPort(address, strconv.Itoa(port)),
		Generator:      gen,
		Model:          model,
		Version:        version,
		AllowedOrigins: c.Server.AllowedOrigins,
		MaxConcurrent:  c.Server.MaxConcurrent,
		Logger:         logging.NewServerLogger(os.Stderr, cfg.logLevel()),
	})
}

// newGenerator builds the question generator from config, letting the
// command flags override it. It also returns the model name for reporting.
func newGenerator(ctx context.Context, cmd *urfave.Command, cfg *appConfig) (question.Generator, string, error) {
	inf := cfg.Config.Inference
	if cmd.IsSet(flagProvider) {
		inf.Provider = cmd.String(flagProvider)
	}
	if cmd.IsSet(flagModel) {
		inf.Model = cmd.String(flagModel)
	}

	gen, err := question.New(ctx, question.Options{
		Provider:    inf.Provider,
		URL:         inf.URL,
		Model:       inf.Model,
		Token:       resolveToken(cmd, cfg, inf.Provider),
		Timeout:     inf.Timeout,
		Concurrency: inf.Concurrency,
	})
	if err != nil {
		return nil, "", fmt.Errorf("creating question generator: %w", err)
	}

	model := question.ProviderTemplate
	if mg, ok := gen.(*question.ModelGenerator); ok && mg.Model != nil {
		model = mg.Model.Name()
	}
	slog.Debug("question generator", "provider", inf.Provider, "model", model)

	return gen, model, nil
}

func resolveToken(cmd *urfave.Command, cfg *appConfig, provider string) string {
	switch provider {
	case question.ProviderHuggingFace:
		return tokenStore(cfg, provider).Resolve(cmd.String(flagHFToken))
	case question.ProviderGemini:
		return tokenStore(cfg, provider).Resolve(cmd.String(flagGeminiToken))
	default:
		return ""
	}
}

func tokenStore(cfg *appConfig, provider string) *auth.Store {
	return auth.NewStore(cfg.Dir, provider+"_token")
}

// serverAddress returns the configured listen address.
func serverAddress(c *config.Config) string {
	return net.JoinHostPort(c.Server.Address, strconv.Itoa(c.Server.Port))
}
