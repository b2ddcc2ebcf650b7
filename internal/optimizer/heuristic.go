package optimizer

import "github.com/yourusername/promptwarden/internal/template"

// Heuristic is the extension point for model-driven optimization.
// Implementations carrying a learned or model-backed rewriter plug in here.
type Heuristic interface {
	// Optimize returns the rewritten prompt and whether it improved.
	Optimize(prompt string, ctx template.Context) (string, bool)
}

// NoopHeuristic is the default: it never fabricates a transformation and
// reports no improvement.
type NoopHeuristic struct{}

// Optimize returns the prompt unchanged.
func (NoopHeuristic) Optimize(prompt string, _ template.Context) (string, bool) {
	return prompt, false
}

// heuristicStrategy adapts a Heuristic to the Strategy interface.
type heuristicStrategy struct {
	h Heuristic
}

func (heuristicStrategy) Name() string { return StrategyHeuristic }

func (s heuristicStrategy) Apply(prompt string, in Input) Outcome {
	out, improved := s.h.Optimize(prompt, in.Context)
	reason := "no improvement found"
	if improved {
		reason = "heuristic rewrite"
	}
	return Outcome{Prompt: out, Improved: improved, Reason: reason}
}
