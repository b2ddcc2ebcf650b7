package optimizer

import (
	"fmt"
	"strings"

	"github.com/yourusername/promptwarden/internal/template"
)

// Sentence extraction bounds for the template content slot.
const (
	maxContentSentences = 3
	minSentenceLength   = 20
)

// TemplateBased restructures the prompt around the selected template,
// filling its content placeholder with the prompt's core sentences.
type TemplateBased struct{}

// Name returns the strategy name.
func (TemplateBased) Name() string { return StrategyTemplateBased }

// Apply renders the selected template with the extracted content. Without a
// template or placeholder it falls back to a minimal instruction sentence.
func (TemplateBased) Apply(prompt string, in Input) Outcome {
	content := extractContent(prompt)
	if content == "" {
		content = strings.TrimSpace(prompt)
	}

	if in.Template != nil && in.Registry != nil && in.Template.HasContentPlaceholder() {
		vars := template.ExtractVariables(in.Context)
		vars.Set("content", content)
		rendered, err := in.Registry.Render(in.Template.ID, vars)
		if err == nil {
			rendered = strings.TrimSpace(rendered)
			return Outcome{
				Prompt:   rendered,
				Improved: len(rendered) < len(prompt),
				Reason:   fmt.Sprintf("restructured with template %s", in.Template.ID),
			}
		}
	}

	format := in.Context.OutputFormat
	if format == "" {
		format = "output"
	}
	out := fmt.Sprintf("Create %s for %s. Follow best practices.", format, content)
	return Outcome{
		Prompt:   out,
		Improved: len(out) < len(prompt),
		Reason:   "no content placeholder, built minimal instruction",
	}
}

// extractContent returns the first sentences longer than minSentenceLength
// characters, capped at maxContentSentences, joined with ". ".
func extractContent(prompt string) string {
	var sentences []string
	for _, s := range strings.FieldsFunc(prompt, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		s = strings.TrimSpace(s)
		if len(s) > minSentenceLength {
			sentences = append(sentences, s)
			if len(sentences) == maxContentSentences {
				break
			}
		}
	}
	return strings.Join(sentences, ". ")
}
