// Package optimizer implements the strategy-selection and transformation
// pipeline: admission check, template selection, prompt rewriting, token
// re-measurement and usage reconciliation.
package optimizer

import (
	"github.com/yourusername/promptwarden/internal/template"
	"github.com/yourusername/promptwarden/internal/tokenizer"
)

// Strategy names.
const (
	StrategyCompression   = "compression"
	StrategyContextAware  = "context-aware"
	StrategyTemplateBased = "template-based"
	StrategyAdaptive      = "adaptive"
	StrategyHeuristic     = "heuristic"
)

// Input carries everything a strategy may consult besides the prompt.
type Input struct {
	Context  template.Context
	Template *template.Template // best-scored template, nil when none matched
	Registry *template.Registry
}

// Outcome is a strategy's result. Strategies are pure: same prompt and
// input always yield the same outcome.
type Outcome struct {
	Prompt   string
	Improved bool
	Reason   string
}

// Strategy is a named prompt-rewriting transformation.
type Strategy interface {
	Name() string
	Apply(prompt string, in Input) Outcome
}

// autoSelect picks a strategy when the caller did not pin one.
// Order: compression when the prompt is near the token ceiling, then
// template-based when a template matched, then context-aware when there is
// history worth mining, then heuristic for premium quality, else
// compression as the default.
func autoSelect(promptTokens, maxTokens int, ctx template.Context, hasTemplate bool) string {
	if maxTokens > 0 && float64(promptTokens) > 0.8*float64(maxTokens) {
		return StrategyCompression
	}
	if hasTemplate {
		return StrategyTemplateBased
	}
	if ctx.TaskComplexity != "low" && len(ctx.ContextHistory) > 0 {
		return StrategyContextAware
	}
	if ctx.QualityRequirements == "premium" {
		return StrategyHeuristic
	}
	return StrategyCompression
}

// computeQuality scores a transformation by its compression ratio
// (optimized/original tokens). Base 90; heavy ratios above 0.7 lose the
// overshoot, ratios in the 0.2–0.5 sweet spot gain 10. Clamped to [0,100].
func computeQuality(ratio float64) float64 {
	q := 90.0
	if ratio > 0.7 {
		q -= (ratio - 0.7) * 100
	}
	if ratio >= 0.2 && ratio <= 0.5 {
		q += 10
	}
	if q > 100 {
		q = 100
	}
	if q < 0 {
		q = 0
	}
	return q
}

// ratioOf returns optimized/original token counts, defaulting to 1 for an
// empty original.
func ratioOf(original, optimized string) float64 {
	origTokens := tokenizer.EstimateTokens(original)
	if origTokens == 0 {
		return 1
	}
	return float64(tokenizer.EstimateTokens(optimized)) / float64(origTokens)
}
