package optimizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/promptwarden/internal/template"
	"github.com/yourusername/promptwarden/internal/tokenizer"
)

func TestCompression_RemovesFiller(t *testing.T) {
	out := Compression{}.Apply("Please kindly help me to implement the login form.", Input{})

	assert.True(t, out.Improved)
	lower := strings.ToLower(out.Prompt)
	assert.NotContains(t, lower, "please")
	assert.NotContains(t, lower, "kindly")
	assert.NotContains(t, lower, "help me to")
	assert.Contains(t, lower, "implement the login form")
	assert.Less(t, len(out.Prompt), len("Please kindly help me to implement the login form."))
}

func TestCompression_Substitutions(t *testing.T) {
	out := Compression{}.Apply("Refactor this in order to improve speed and also readability, as well as the fact that it leaks.", Input{})

	assert.True(t, out.Improved)
	lower := strings.ToLower(out.Prompt)
	assert.NotContains(t, lower, "in order to")
	assert.NotContains(t, lower, "and also")
	assert.NotContains(t, lower, "as well as")
	assert.NotContains(t, lower, "the fact that")
}

func TestCompression_NothingToCompress(t *testing.T) {
	prompt := "Implement a binary search over sorted input."
	out := Compression{}.Apply(prompt, Input{})

	assert.False(t, out.Improved)
	assert.Equal(t, prompt, out.Prompt)
}

func TestCompression_NeverGrows(t *testing.T) {
	prompts := []string{
		"",
		"x",
		"Please   please   please write tests.",
		"Could you would you mind make sure to do it.",
	}
	for _, p := range prompts {
		out := Compression{}.Apply(p, Input{})
		assert.LessOrEqual(t, tokenizer.EstimateTokens(out.Prompt), tokenizer.EstimateTokens(p), "prompt: %q", p)
	}
}

func TestContextAware_InjectsRelevantHistory(t *testing.T) {
	in := Input{Context: template.Context{
		TaskComplexity: "medium",
		ContextHistory: []string{
			"built the login form validation with react hooks",
			"discussed unrelated database sharding topology",
		},
	}}
	out := ContextAware{}.Apply("extend the login form validation with password rules", in)

	assert.Contains(t, out.Prompt, "Context from previous interactions:")
	assert.Contains(t, out.Prompt, "login form validation")
	assert.NotContains(t, out.Prompt, "sharding")
}

func TestContextAware_ComplexityAdjustments(t *testing.T) {
	low := ContextAware{}.Apply("Please kindly summarize this.", Input{Context: template.Context{TaskComplexity: "low"}})
	assert.NotContains(t, strings.ToLower(low.Prompt), "please")

	high := ContextAware{}.Apply("design the schema", Input{Context: template.Context{TaskComplexity: "high"}})
	assert.Contains(t, high.Prompt, "Be comprehensive and detailed.")

	// The detail demand is not stacked on repeated application.
	again := ContextAware{}.Apply(high.Prompt, Input{Context: template.Context{TaskComplexity: "high"}})
	assert.Equal(t, 1, strings.Count(again.Prompt, "Be comprehensive and detailed."))
}

func TestTemplateBased_RendersTemplate(t *testing.T) {
	reg := template.NewRegistry()
	for _, tm := range template.Builtins() {
		reg.Add(tm)
	}
	tmpl, _ := reg.Get("smart_begin_generation_v1")

	in := Input{
		Context: template.Context{
			ToolName:     "smart_begin",
			TaskType:     "generation",
			UserLevel:    "beginner",
			OutputFormat: "a REST API",
		},
		Template: &tmpl,
		Registry: reg,
	}
	out := TemplateBased{}.Apply("I want you to build a todo service with user accounts. It should persist tasks.", in)

	assert.Contains(t, out.Prompt, "Create a REST API for:")
	assert.Contains(t, out.Prompt, "todo service")
	assert.Contains(t, out.Prompt, "Explain each step")
}

func TestTemplateBased_MinimalInstructionFallback(t *testing.T) {
	in := Input{Context: template.Context{OutputFormat: "markdown"}}
	out := TemplateBased{}.Apply("Write a very long and rambling explanation of the release process please.", in)

	assert.True(t, strings.HasPrefix(out.Prompt, "Create markdown for "))
	assert.Contains(t, out.Prompt, "Follow best practices.")
}

func TestExtractContent(t *testing.T) {
	got := extractContent("Short. Build the authentication service with sessions. Also add the password reset flow for users. Tiny. And wire the audit logging for every admin action. This fourth long sentence should be dropped entirely.")
	parts := strings.Split(got, ". ")
	assert.Len(t, parts, 3)
	assert.NotContains(t, got, "Short")
	assert.NotContains(t, got, "fourth long sentence")
}

func TestAdaptive_Threshold(t *testing.T) {
	small := Adaptive{}.Apply("please fix this", Input{})
	assert.False(t, small.Improved)
	assert.Equal(t, "please fix this", small.Prompt)

	big := "Please kindly review the following. " + strings.Repeat("The module does many things. ", 200)
	out := Adaptive{}.Apply(big, Input{})
	assert.True(t, out.Improved)
	assert.NotContains(t, strings.ToLower(out.Prompt), "please")
}

func TestHeuristic_Noop(t *testing.T) {
	s := heuristicStrategy{h: NoopHeuristic{}}
	out := s.Apply("anything at all", Input{})
	assert.False(t, out.Improved)
	assert.Equal(t, "anything at all", out.Prompt)
}

func TestAutoSelect(t *testing.T) {
	// Near the ceiling → compression regardless of everything else.
	assert.Equal(t, StrategyCompression,
		autoSelect(900, 1000, template.Context{QualityRequirements: "premium"}, true))

	// Template match wins next.
	assert.Equal(t, StrategyTemplateBased,
		autoSelect(100, 10000, template.Context{}, true))

	// History with non-low complexity → context-aware.
	assert.Equal(t, StrategyContextAware,
		autoSelect(100, 10000, template.Context{TaskComplexity: "medium", ContextHistory: []string{"x"}}, false))

	// Low complexity skips context-aware even with history.
	assert.Equal(t, StrategyCompression,
		autoSelect(100, 10000, template.Context{TaskComplexity: "low", ContextHistory: []string{"x"}}, false))

	// Premium quality → heuristic.
	assert.Equal(t, StrategyHeuristic,
		autoSelect(100, 10000, template.Context{QualityRequirements: "premium"}, false))

	// Default.
	assert.Equal(t, StrategyCompression,
		autoSelect(100, 10000, template.Context{}, false))
}

func TestComputeQuality_Bounds(t *testing.T) {
	for _, ratio := range []float64{0, 0.1, 0.2, 0.35, 0.5, 0.7, 0.9, 1.0, 1.5, 3.0} {
		q := computeQuality(ratio)
		assert.GreaterOrEqual(t, q, 0.0, "ratio %v", ratio)
		assert.LessOrEqual(t, q, 100.0, "ratio %v", ratio)
	}
	assert.Equal(t, 100.0, computeQuality(0.3)) // 90 + 10 sweet spot
	assert.Equal(t, 90.0, computeQuality(0.6))
	assert.InDelta(t, 70.0, computeQuality(0.9), 1e-9)
}
