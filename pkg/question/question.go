// Package question generates follow-up questions that elicit more
// supply-chain disclosure for a product.
//
// A [Generator] produces an ordered [Set] of questions for a
// [ProductContext]. [TemplateGenerator] is deterministic and needs no
// external service; [ModelGenerator] asks a [TextModel] and falls back to
// templates per question whenever the model fails.
package question

import (
	"context"

	"github.com/hedamo/transparency/pkg/score"
)

const (
	// DefaultCount is used when the caller does not ask for a number of questions.
	DefaultCount = 3

	PriorityHigh   = "high"
	PriorityMedium = "medium"

	setReasoning = "Questions generated to build comprehensive transparency profile"
)

// ProductContext describes the product questions are generated for.
type ProductContext struct {
	ProductName     string         `json:"product_name" yaml:"product_name"`
	Category        string         `json:"category" yaml:"category"`
	Description     string         `json:"description" yaml:"description"`
	PreviousAnswers []score.QAPair `json:"previous_answers,omitempty" yaml:"previous_answers,omitempty"`
}

// Question is a single generated follow-up question.
type Question struct {
	Text     string `json:"text" yaml:"text"`
	Category string `json:"category" yaml:"category"`
	Priority string `json:"priority" yaml:"priority"`
	Reason   string `json:"reason" yaml:"reason"`
}

// Set is the ordered result of a generation run.
type Set struct {
	Questions []*Question `json:"questions" yaml:"questions"`
	Reasoning string      `json:"reasoning" yaml:"reasoning"`
}

// Generator produces questions for a product context.
type Generator interface {
	Generate(ctx context.Context, pc *ProductContext, n int) (*Set, error)
}

// TextModel turns a prompt into generated text.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Name() string
}

// priorityFor returns the priority of the i-th question in a set.
func priorityFor(i int) string {
	if i == 0 {
		return PriorityHigh
	}
	return PriorityMedium
}

// Count clamps a requested number of questions to the supported range.
func Count(n int) int {
	switch {
	case n <= 0:
		return DefaultCount
	case n > len(questionCategories):
		return len(questionCategories)
	default:
		return n
	}
}
