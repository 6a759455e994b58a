package question

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Supported generator providers.
const (
	ProviderTemplate    = "template"
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
)

// Providers lists the accepted provider names.
var Providers = []string{ProviderTemplate, ProviderHuggingFace, ProviderGemini}

// Options selects and configures a Generator.
type Options struct {
	Provider    string
	URL         string
	Model       string
	Token       string
	Timeout     time.Duration
	Concurrency int
}

// New returns the Generator for opts.Provider. The template provider
// needs no token or network access. A model provider that cannot be
// constructed degrades to templates, only unknown providers are an error.
func New(ctx context.Context, opts Options) (Generator, error) {
	switch opts.Provider {
	case ProviderTemplate, "":
		return TemplateGenerator{}, nil
	case ProviderHuggingFace:
		m := NewHuggingFace(ctx, opts.URL, opts.Model, opts.Token, opts.Timeout)
		return NewModelGenerator(m, opts.Timeout, opts.Concurrency), nil
	case ProviderGemini:
		m, err := NewGemini(ctx, opts.Token, opts.Model)
		if err != nil {
			slog.Warn("gemini unavailable, using templates", "error", err)
			return TemplateGenerator{}, nil
		}
		return NewModelGenerator(m, opts.Timeout, opts.Concurrency), nil
	default:
		return nil, fmt.Errorf("unknown question provider: %s", opts.Provider)
	}
}
