// Package tokenizer provides token estimation for prompts and completions.
package tokenizer

// Estimate holds token cost projections for an optimization request.
type Estimate struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// EstimateTokens estimates the token count of a text string.
// Uses the rule of thumb: ~4 characters per token, rounded up.
// Applied identically before and after a transformation so reduction
// percentages stay comparable.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

// EstimatePromptCost estimates the token cost of sending a prompt.
// Output is estimated at ~60% of the input tokens.
func EstimatePromptCost(prompt string) Estimate {
	input := EstimateTokens(prompt)
	output := int(float64(input) * 0.6)
	return Estimate{
		InputTokens:  input,
		OutputTokens: output,
		TotalTokens:  input + output,
	}
}
