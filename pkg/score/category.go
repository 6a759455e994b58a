package score

import "strings"

// Category identifies one of the fixed transparency buckets.
type Category string

const (
	SupplyChain    Category = "supply_chain"
	SourcingEthics Category = "sourcing_ethics"
	Manufacturing  Category = "manufacturing"
	Environmental  Category = "environmental"
	Certifications Category = "certifications"
	LaborPractices Category = "labor_practices"
)

// DisplayName returns the category name with underscores replaced by spaces.
func (c Category) DisplayName() string {
	return strings.ReplaceAll(string(c), "_", " ")
}

// Categories returns the fixed categories in reporting order.
func Categories() []Category {
	return []Category{
		SupplyChain,
		SourcingEthics,
		Manufacturing,
		Environmental,
		Certifications,
		LaborPractices,
	}
}

// route is one row of the question routing table.
type route struct {
	category Category
	keywords []string
	strength string
}

var (
	// routes is consulted top to bottom against the question text,
	// first match wins. Unmatched questions fall into defaultRoute.
	routes = []route{
		{
			category: SourcingEthics,
			keywords: []string{"source", "sourcing", "origin", "supplier"},
			strength: "Well-documented sourcing",
		},
		{
			category: Manufacturing,
			keywords: []string{"manufacturing", "production", "facility", "process"},
			strength: "Transparent manufacturing",
		},
		{
			category: Environmental,
			keywords: []string{"environment", "sustainability", "carbon", "waste", "water"},
			strength: "Strong environmental practices",
		},
		{
			category: Certifications,
			keywords: []string{"certification", "certified", "standard", "compliance"},
			strength: "Good certifications",
		},
		{
			category: LaborPractices,
			keywords: []string{"labor", "worker", "employee", "wage", "working conditions"},
			strength: "Fair labor practices",
		},
	}

	defaultRoute = route{
		category: SupplyChain,
		strength: "Clear supply chain disclosure",
	}

	positiveKeywords = []string{
		"certified", "certification", "organic", "sustainable",
		"fair trade", "verified", "audited", "compliant",
		"renewable", "recycled", "ethical", "transparent",
		"documented", "traced", "monitored",
	}

	negativeKeywords = []string{
		"unknown", "don't know", "not sure", "unclear",
		"no information", "confidential", "proprietary",
	}
)

// routeFor returns the routing row for a normalized question.
func routeFor(question string) route {
	for _, r := range routes {
		if countMatches(question, r.keywords) > 0 {
			return r
		}
	}
	return defaultRoute
}

// countMatches returns how many distinct keywords occur in text.
func countMatches(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}
