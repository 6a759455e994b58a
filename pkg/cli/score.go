package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hedamo/transparency/pkg/score"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	stdinPath = "-"
	flagFile  = "file"
)

func scoreCmd() *urfave.Command {
	return &urfave.Command{
		Name:   "score",
		Usage:  "Score the transparency of question/answer pairs",
		Action: cmdScore,
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:     flagFile,
				Aliases:  []string{"f"},
				Usage:    "Path to a JSON or YAML list of question/answer pairs, '-' for stdin",
				Required: true,
			},
		},
	}
}

func cmdScore(_ context.Context, cmd *urfave.Command) error {
	path := cmd.String(flagFile)
	b, err := readInput(cmd.Root().Reader, path)
	if err != nil {
		return err
	}

	pairs, err := parsePairs(path, b)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	slog.Debug("scoring", "file", path, "pairs", len(pairs))

	return encode(cmd, score.Score(pairs))
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "" {
		return nil, errMissingInput
	}
	if path == stdinPath {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return b, nil
}

// parsePairs decodes JSON, or YAML when the file extension says so or the
// content is not valid JSON.
func parsePairs(path string, b []byte) ([]score.QAPair, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" && json.Valid(b) {
		return score.ParsePairs(b)
	}

	var items []any
	if err := yaml.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", score.ErrNotAList, err)
	}

	maps := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			maps = append(maps, m)
		}
	}
	return score.PairsFromMaps(maps), nil
}
