// Package score implements the rule-based transparency scoring model.
// It maps free-text question/answer pairs into per-category scores, an
// overall score, and derived strengths, weaknesses and recommendations.
// See [Score], [Categories] and the exported policy constants.
package score
