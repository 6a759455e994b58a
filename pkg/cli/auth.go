package cli

import (
	"bufio"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hedamo/transparency/pkg/question"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagToken  = "token"
	flagDelete = "delete"
)

var tokenProviders = []string{question.ProviderHuggingFace, question.ProviderGemini}

func authCmd() *urfave.Command {
	return &urfave.Command{
		Name:            "auth",
		HideHelpCommand: true,
		Usage:           "Store the API token used by a question provider",
		Action:          cmdAuth,
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:  flagProvider,
				Usage: "Provider the token is for [huggingface, gemini]",
				Value: question.ProviderHuggingFace,
			},
			&urfave.StringFlag{
				Name:  flagToken,
				Usage: "Token to store (prompted for when not set)",
			},
			&urfave.BoolFlag{
				Name:  flagDelete,
				Usage: "Remove the stored token",
			},
		},
	}
}

func cmdAuth(_ context.Context, cmd *urfave.Command) error {
	provider := cmd.String(flagProvider)
	if !slices.Contains(tokenProviders, provider) {
		return fmt.Errorf("unsupported token provider: %s, expected one of [%s]",
			provider, strings.Join(tokenProviders, ", "))
	}

	store := tokenStore(getConfig(cmd), provider)
	w := cmd.Root().Writer

	if cmd.Bool(flagDelete) {
		if err := store.Delete(); err != nil {
			return fmt.Errorf("deleting token: %w", err)
		}
		fmt.Fprintf(w, "Removed %s token\n", provider)
		return nil
	}

	token := cmd.String(flagToken)
	if token == "" {
		fmt.Fprintf(w, "Paste your %s token and hit enter:\n>", provider)
		line, err := bufio.NewReader(cmd.Root().Reader).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading user input: %w", err)
		}
		token = strings.TrimSpace(line)
	}

	if err := store.Save(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Fprintf(w, "Saved %s token\n", provider)
	return nil
}
