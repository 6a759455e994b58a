package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hedamo/transparency/pkg/report"
	"github.com/hedamo/transparency/pkg/score"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagProduct  = "product"
	flagBrand    = "brand"
	flagCategory = "category"
	flagOut      = "out"

	reportFileMode = 0o644
)

func reportCmd() *urfave.Command {
	return &urfave.Command{
		Name:   "report",
		Usage:  "Render a product transparency report as PDF",
		Action: cmdReport,
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:     flagProduct,
				Aliases:  []string{"p"},
				Usage:    "Product name",
				Required: true,
			},
			&urfave.StringFlag{
				Name:  flagBrand,
				Usage: "Product brand",
			},
			&urfave.StringFlag{
				Name:  flagCategory,
				Usage: "Product category",
			},
			&urfave.StringFlag{
				Name:    flagFile,
				Aliases: []string{"f"},
				Usage:   "Path to a JSON or YAML list of question/answer pairs to score, '-' for stdin",
			},
			&urfave.StringFlag{
				Name:    flagOut,
				Aliases: []string{"o"},
				Usage:   "Output file, '-' for stdout (default: <product>-report.pdf)",
			},
		},
	}
}

func cmdReport(_ context.Context, cmd *urfave.Command) error {
	doc := &report.Document{
		Product: report.Product{
			Name:     cmd.String(flagProduct),
			Brand:    cmd.String(flagBrand),
			Category: cmd.String(flagCategory),
		},
		GeneratedAt: time.Now().UTC(),
	}

	if path := cmd.String(flagFile); path != "" {
		b, err := readInput(cmd.Root().Reader, path)
		if err != nil {
			return err
		}
		pairs, err := parsePairs(path, b)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		if len(pairs) > 0 {
			doc.Score = score.Score(pairs)
		}
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, doc); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	out := cmd.String(flagOut)
	if out == "" {
		out = report.FileName(doc.Product.Name)
	}
	if out == stdinPath {
		if _, err := buf.WriteTo(cmd.Root().Writer); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(out, buf.Bytes(), reportFileMode); err != nil {
		return fmt.Errorf("writing report %s: %w", out, err)
	}
	slog.Info("report written", "file", out, "bytes", buf.Len())
	return nil
}
