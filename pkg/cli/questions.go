package cli

import (
	"context"
	"fmt"

	"github.com/hedamo/transparency/pkg/question"
	"github.com/hedamo/transparency/pkg/score"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagProduct     = "product"
	flagCategory    = "category"
	flagDescription = "description"
	flagCount       = "count"
	flagAnswers     = "answers"
)

func questionsCmd() *urfave.Command {
	return &urfave.Command{
		Name:    "questions",
		Aliases: []string{"q"},
		Usage:   "Generate follow-up questions for a product",
		Action:  cmdQuestions,
		Flags: append([]urfave.Flag{
			&urfave.StringFlag{
				Name:  flagProduct,
				Usage: "Product name",
			},
			&urfave.StringFlag{
				Name:  flagCategory,
				Usage: "Product category",
			},
			&urfave.StringFlag{
				Name:  flagDescription,
				Usage: "Product description",
			},
			&urfave.IntFlag{
				Name:    flagCount,
				Aliases: []string{"n"},
				Usage:   "Number of questions to generate [1-5]",
				Value:   question.DefaultCount,
			},
			&urfave.StringFlag{
				Name:  flagAnswers,
				Usage: "Path to previous question/answer pairs (JSON or YAML), '-' for stdin",
			},
		}, generatorFlags()...),
	}
}

// scoredSet adds the score of the previous answers to a question set.
type scoredSet struct {
	Questions []*question.Question `json:"questions" yaml:"questions"`
	Reasoning string               `json:"reasoning" yaml:"reasoning"`
	Score     *score.Report        `json:"score" yaml:"score"`
}

func cmdQuestions(ctx context.Context, cmd *urfave.Command) error {
	pc := &question.ProductContext{
		ProductName: cmd.String(flagProduct),
		Category:    cmd.String(flagCategory),
		Description: cmd.String(flagDescription),
	}

	if path := cmd.String(flagAnswers); path != "" {
		b, err := readInput(cmd.Root().Reader, path)
		if err != nil {
			return err
		}
		prev, err := parsePairs(path, b)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		pc.PreviousAnswers = prev
	}

	gen, _, err := newGenerator(ctx, cmd, getConfig(cmd))
	if err != nil {
		return err
	}

	set, err := gen.Generate(ctx, pc, cmd.Int(flagCount))
	if err != nil {
		return fmt.Errorf("generating questions: %w", err)
	}

	if len(pc.PreviousAnswers) > 0 {
		return encode(cmd, &scoredSet{
			Questions: set.Questions,
			Reasoning: set.Reasoning,
			Score:     score.Score(pc.PreviousAnswers),
		})
	}
	return encode(cmd, set)
}
