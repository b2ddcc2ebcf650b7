package optimizer

import (
	"strings"

	"github.com/yourusername/promptwarden/internal/tokenizer"
)

// Relevance parameters for mining the context history.
const (
	minSharedWords    = 2 // entries must share more than this many words
	minWordLength     = 3 // only words longer than this count
	maxContextEntries = 2
)

// ContextAware prepends relevant history to the prompt and adjusts wording
// for the task's complexity.
type ContextAware struct{}

// Name returns the strategy name.
func (ContextAware) Name() string { return StrategyContextAware }

// Apply injects up to two relevant history entries, trims wording for low
// complexity and demands detail for high complexity. Counted as improved
// only when the token count did not increase.
func (ContextAware) Apply(prompt string, in Input) Outcome {
	out := prompt
	injected := 0

	if len(in.Context.ContextHistory) > 0 {
		promptWords := significantWords(prompt)
		var relevant []string
		for _, entry := range in.Context.ContextHistory {
			if sharedWordCount(promptWords, entry) > minSharedWords {
				relevant = append(relevant, entry)
				if len(relevant) == maxContextEntries {
					break
				}
			}
		}
		if len(relevant) > 0 {
			out = "Context from previous interactions: " + strings.Join(relevant, "; ") + "\n\n" + out
			injected = len(relevant)
		}
	}

	switch in.Context.TaskComplexity {
	case "low":
		out = Compression{}.Apply(out, in).Prompt
	case "high":
		if !strings.Contains(strings.ToLower(out), "comprehensive and detailed") {
			out += "\n\nBe comprehensive and detailed."
		}
	}

	improved := tokenizer.EstimateTokens(out) <= tokenizer.EstimateTokens(prompt)
	reason := "no relevant context found"
	if injected > 0 {
		reason = "injected relevant context from session history"
	}
	return Outcome{Prompt: out, Improved: improved, Reason: reason}
}

// significantWords returns the lowercased words of the text longer than
// minWordLength characters.
func significantWords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len(w) > minWordLength {
			words[w] = struct{}{}
		}
	}
	return words
}

func sharedWordCount(promptWords map[string]struct{}, entry string) int {
	n := 0
	for w := range significantWords(entry) {
		if _, ok := promptWords[w]; ok {
			n++
		}
	}
	return n
}
