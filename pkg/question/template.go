package question

import (
	"context"
	"fmt"
	"strings"
)

// Question categories.
const (
	Sourcing       = "sourcing"
	Manufacturing  = "manufacturing"
	Sustainability = "sustainability"
	Certifications = "certifications"
	Labor          = "labor"
	Packaging      = "packaging"
	Transportation = "transportation"
	Ethics         = "ethics"
)

var (
	// questionCategories is the generation order. Only the first n are used.
	questionCategories = []string{
		Sourcing,
		Manufacturing,
		Sustainability,
		Certifications,
		Labor,
	}

	templates = map[string]string{
		Sourcing:       "Where do you source the raw materials for %s? Please provide specific locations and supplier information.",
		Manufacturing:  "Can you describe the manufacturing process for %s? Where are your production facilities located?",
		Sustainability: "What environmental sustainability practices do you follow in producing %s? (e.g., water usage, carbon footprint, waste management)",
		Certifications: "What certifications or quality standards does %s comply with? (e.g., ISO, organic, fair trade)",
		Labor:          "What are your labor practices? Can you describe working conditions and fair wage policies for workers involved in making %s?",
		Packaging:      "What materials are used in packaging %s? Are they recyclable or biodegradable?",
		Transportation: "How is %s transported from manufacturing to retail? What's the carbon footprint of your supply chain?",
		Ethics:         "What ethical guidelines does your company follow in producing %s? How do you ensure ethical practices throughout your supply chain?",
	}
)

// Categories returns the question categories in generation order.
func Categories() []string {
	out := make([]string, len(questionCategories))
	copy(out, questionCategories)
	return out
}

// TemplateQuestion returns the fixed question for category about product.
// Unknown categories get a generic request for detail.
func TemplateQuestion(category, product string) string {
	if t, ok := templates[strings.ToLower(category)]; ok {
		return fmt.Sprintf(t, product)
	}
	return fmt.Sprintf("Please provide detailed information about %s for %s.", category, product)
}

// TemplateGenerator builds questions from fixed per-category templates.
type TemplateGenerator struct{}

// Generate never fails and ignores ctx.
func (TemplateGenerator) Generate(_ context.Context, pc *ProductContext, n int) (*Set, error) {
	cats := questionCategories[:Count(n)]
	list := make([]*Question, 0, len(cats))
	for i, c := range cats {
		list = append(list, templateItem(i, c, pc))
	}
	return &Set{Questions: list, Reasoning: setReasoning}, nil
}

func templateItem(i int, category string, pc *ProductContext) *Question {
	return &Question{
		Text:     TemplateQuestion(category, productName(pc)),
		Category: category,
		Priority: priorityFor(i),
		Reason:   fmt.Sprintf("Standard question for %s", category),
	}
}

func productName(pc *ProductContext) string {
	if pc == nil || strings.TrimSpace(pc.ProductName) == "" {
		return "this product"
	}
	return pc.ProductName
}
