package optimizer

import "github.com/yourusername/promptwarden/internal/tokenizer"

// adaptiveThreshold is the token count above which adaptive delegates to
// compression.
const adaptiveThreshold = 1000

// Adaptive compresses only prompts large enough to be worth touching.
type Adaptive struct{}

// Name returns the strategy name.
func (Adaptive) Name() string { return StrategyAdaptive }

// Apply delegates to compression for prompts over the threshold and passes
// everything else through unchanged.
func (Adaptive) Apply(prompt string, in Input) Outcome {
	if tokenizer.EstimateTokens(prompt) > adaptiveThreshold {
		out := Compression{}.Apply(prompt, in)
		out.Reason = "large prompt, delegated to compression"
		return out
	}
	return Outcome{Prompt: prompt, Improved: false, Reason: "below compression threshold"}
}
