package score

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// MinAnswerLength is the shortest answer that is scored at all.
	MinAnswerLength = 10
	// ThinAnswerLength marks answers short enough to be reported as a weakness.
	ThinAnswerLength = 30
	// ModerateAnswerLength and DetailedAnswerLength are exclusive lower
	// bounds for the length bonus.
	ModerateAnswerLength = 50
	DetailedAnswerLength = 100
	// MaxListItems caps strengths, weaknesses and recommendations.
	MaxListItems = 5

	MinScore = 0
	MaxScore = 100

	moderateBonus   = 10
	detailedBonus   = 20
	positiveWeight  = 10
	negativeWeight  = 15
	strengthMinHits = 2

	strengthExcerptLen = 50
	weaknessExcerptLen = 60

	improveThreshold = 40
	enhanceThreshold = 60

	scorePrecision = 2
)

var (
	defaultRecommendations = []string{
		"Maintain current transparency levels",
		"Continue documenting all processes",
		"Regularly update certifications and compliance records",
	}

	defaultStrengths = []string{
		"Provided responses to transparency questions",
	}

	defaultWeaknesses = []string{
		"Consider providing more detailed documentation in some areas",
	}
)

// QAPair is a single disclosure question and the answer given to it.
type QAPair struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// CategoryScores holds the score of each fixed category.
type CategoryScores struct {
	SupplyChain    float64 `json:"supply_chain" yaml:"supply_chain"`
	SourcingEthics float64 `json:"sourcing_ethics" yaml:"sourcing_ethics"`
	Manufacturing  float64 `json:"manufacturing" yaml:"manufacturing"`
	Environmental  float64 `json:"environmental" yaml:"environmental"`
	Certifications float64 `json:"certifications" yaml:"certifications"`
	LaborPractices float64 `json:"labor_practices" yaml:"labor_practices"`
}

func (s *CategoryScores) ref(c Category) *float64 {
	switch c {
	case SupplyChain:
		return &s.SupplyChain
	case SourcingEthics:
		return &s.SourcingEthics
	case Manufacturing:
		return &s.Manufacturing
	case Environmental:
		return &s.Environmental
	case Certifications:
		return &s.Certifications
	case LaborPractices:
		return &s.LaborPractices
	default:
		return nil
	}
}

// Get returns the score for category c, or 0 for unknown categories.
func (s CategoryScores) Get(c Category) float64 {
	if p := s.ref(c); p != nil {
		return *p
	}
	return 0
}

// raise sets the category score to v when v is greater than the current value.
func (s *CategoryScores) raise(c Category, v float64) {
	if p := s.ref(c); p != nil && v > *p {
		*p = v
	}
}

// Mean returns the arithmetic mean of all category scores.
func (s CategoryScores) Mean() float64 {
	cats := Categories()
	var sum float64
	for _, c := range cats {
		sum += s.Get(c)
	}
	return sum / float64(len(cats))
}

// Report is the transparency assessment for a set of QA pairs.
type Report struct {
	OverallScore    float64        `json:"overall_score" yaml:"overall_score"`
	CategoryScores  CategoryScores `json:"category_scores" yaml:"category_scores"`
	Recommendations []string       `json:"recommendations" yaml:"recommendations"`
	Strengths       []string       `json:"strengths" yaml:"strengths"`
	Weaknesses      []string       `json:"weaknesses" yaml:"weaknesses"`
}

// Score computes the transparency report for pairs in input order.
// Pairs with answers shorter than MinAnswerLength are skipped.
func Score(pairs []QAPair) *Report {
	var (
		scores     CategoryScores
		strengths  []string
		weaknesses []string
		scored     int
	)

	for _, p := range pairs {
		question := normalize(p.Question)
		answer := normalize(p.Answer)

		answerLen := utf8.RuneCountInString(answer)
		if answerLen < MinAnswerLength {
			continue
		}
		scored++

		positive := countMatches(answer, positiveKeywords)
		negative := countMatches(answer, negativeKeywords)
		inc := increment(answerLen, positive, negative)

		r := routeFor(question)
		scores.raise(r.category, float64(inc))

		if positive > strengthMinHits {
			strengths = append(strengths, fmt.Sprintf("%s: %s...", r.strength, excerpt(answer, strengthExcerptLen)))
		}

		if negative > 0 || answerLen < ThinAnswerLength {
			weaknesses = append(weaknesses, fmt.Sprintf("Limited information on: %s...", excerpt(question, weaknessExcerptLen)))
		}
	}

	rep := &Report{
		OverallScore:    toFixed(scores.Mean(), scorePrecision),
		CategoryScores:  scores,
		Recommendations: withDefault(limit(recommend(scores)), defaultRecommendations),
		Strengths:       withDefault(limit(strengths), defaultStrengths),
		Weaknesses:      withDefault(limit(weaknesses), defaultWeaknesses),
	}

	slog.Debug("transparency scored",
		"pairs", len(pairs),
		"scored", scored,
		"overall", rep.OverallScore,
	)

	return rep
}

// increment composes the length bonus and keyword hits into a bounded score.
func increment(answerLen, positive, negative int) int {
	v := 0
	switch {
	case answerLen > DetailedAnswerLength:
		v += detailedBonus
	case answerLen > ModerateAnswerLength:
		v += moderateBonus
	}
	v += positive*positiveWeight - negative*negativeWeight
	return clamp(v, MinScore, MaxScore)
}

func recommend(s CategoryScores) []string {
	var list []string
	for _, c := range Categories() {
		v := s.Get(c)
		switch {
		case v < improveThreshold:
			list = append(list, fmt.Sprintf("Improve %s: Provide more detailed information and documentation", c.DisplayName()))
		case v < enhanceThreshold:
			list = append(list, fmt.Sprintf("Enhance %s: Consider obtaining relevant certifications", c.DisplayName()))
		}
	}
	return list
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// excerpt returns at most n leading runes of s.
func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func limit(list []string) []string {
	if len(list) > MaxListItems {
		return list[:MaxListItems]
	}
	return list
}

// withDefault returns a copy of def when list is empty.
func withDefault(list, def []string) []string {
	if len(list) > 0 {
		return list
	}
	out := make([]string, len(def))
	copy(out, def)
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// toFixed rounds num to the given precision.
func toFixed(num float64, precision int) float64 {
	output := math.Pow(10, float64(precision))
	return math.Round(num*output) / output
}
