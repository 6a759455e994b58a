package question

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

const (
	// MinGeneratedLength is the shortest model output accepted as a question.
	MinGeneratedLength = 10

	defaultModelTimeout     = 30 * time.Second
	defaultModelConcurrency = 3
)

// ErrNoGeneratedText is returned by text models that produced no output.
var ErrNoGeneratedText = errors.New("no generated text")

var prompts = map[string]string{
	Sourcing:       "Generate a detailed question about the sourcing and origin of materials for %[1]s, a %[2]s product. %[3]s. Previous answers: %[4]s",
	Manufacturing:  "Generate a detailed question about the manufacturing process and facilities for %[1]s. Previous answers: %[4]s",
	Sustainability: "Generate a detailed question about environmental impact and sustainability practices for %[1]s. Previous answers: %[4]s",
	Certifications: "Generate a detailed question about certifications, compliance, and quality standards for %[1]s. Previous answers: %[4]s",
	Labor:          "Generate a detailed question about labor practices and worker conditions for %[1]s. Previous answers: %[4]s",
}

// ModelGenerator asks a TextModel for one question per category and falls
// back to the category template whenever the model fails.
type ModelGenerator struct {
	Model       TextModel
	Timeout     time.Duration
	Concurrency int
}

// NewModelGenerator returns a generator backed by model. Zero timeout or
// concurrency select the defaults.
func NewModelGenerator(model TextModel, timeout time.Duration, concurrency int) *ModelGenerator {
	if timeout <= 0 {
		timeout = defaultModelTimeout
	}
	if concurrency <= 0 {
		concurrency = defaultModelConcurrency
	}
	return &ModelGenerator{
		Model:       model,
		Timeout:     timeout,
		Concurrency: concurrency,
	}
}

// Generate returns n questions in category order. Model errors are
// logged and replaced by templates, so the returned error is always nil.
func (g *ModelGenerator) Generate(ctx context.Context, pc *ProductContext, n int) (*Set, error) {
	cats := questionCategories[:Count(n)]
	if g.Model == nil {
		return TemplateGenerator{}.Generate(ctx, pc, n)
	}

	list := make([]*Question, len(cats))
	history := formatHistory(pc)

	var eg errgroup.Group
	eg.SetLimit(g.Concurrency)

	for i, c := range cats {
		eg.Go(func() error {
			list[i] = g.generateOne(ctx, i, c, pc, history)
			return nil
		})
	}
	_ = eg.Wait()

	return &Set{Questions: list, Reasoning: setReasoning}, nil
}

func (g *ModelGenerator) generateOne(ctx context.Context, i int, category string, pc *ProductContext, history string) *Question {
	callCtx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	text, err := g.Model.GenerateText(callCtx, buildPrompt(category, pc, history))
	if err == nil {
		text = strings.TrimSpace(text)
		if utf8.RuneCountInString(text) < MinGeneratedLength {
			err = fmt.Errorf("%w: %q", ErrNoGeneratedText, text)
		}
	}

	if err != nil {
		slog.Warn("question generation failed, using template",
			"model", g.Model.Name(),
			"category", category,
			"error", err,
		)
		return templateItem(i, category, pc)
	}

	return &Question{
		Text:     text,
		Category: category,
		Priority: priorityFor(i),
		Reason:   fmt.Sprintf("Essential for understanding %s transparency", category),
	}
}

func buildPrompt(category string, pc *ProductContext, history string) string {
	var name, kind, desc string
	if pc != nil {
		name, kind, desc = pc.ProductName, pc.Category, pc.Description
	}
	p, ok := prompts[category]
	if !ok {
		return fmt.Sprintf("Generate a detailed question about %s for %s. Previous answers: %s", category, name, history)
	}
	return fmt.Sprintf(p, name, kind, desc, history)
}

func formatHistory(pc *ProductContext) string {
	if pc == nil {
		return ""
	}
	lines := make([]string, 0, len(pc.PreviousAnswers))
	for _, qa := range pc.PreviousAnswers {
		lines = append(lines, fmt.Sprintf("Q: %s\nA: %s", qa.Question, qa.Answer))
	}
	return strings.Join(lines, "\n")
}
