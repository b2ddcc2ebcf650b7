package template

import (
	"fmt"
	"strings"
	texttemplate "text/template"
)

// Render interpolates the variable set into the template body using
// text/template. The body consults the set through the Variables methods
// (Scalar, Flag, List), so rendering is deterministic: identical id and
// variables always produce identical output.
func (r *Registry) Render(id string, vars Variables) (string, error) {
	t, ok := r.Get(id)
	if !ok {
		return "", fmt.Errorf("template.Render %q: %w", id, ErrTemplateNotFound)
	}

	parsed, err := texttemplate.New(t.ID).Option("missingkey=zero").Parse(t.Body)
	if err != nil {
		return "", fmt.Errorf("template.Render %q: parse: %w", id, err)
	}

	var sb strings.Builder
	if err := parsed.Execute(&sb, vars); err != nil {
		return "", fmt.Errorf("template.Render %q: execute: %w", id, err)
	}
	return sb.String(), nil
}

// HasContentPlaceholder reports whether the body consumes the "content"
// scalar, which the template-based strategy fills with prompt sentences.
func (t Template) HasContentPlaceholder() bool {
	return strings.Contains(t.Body, `.Scalar "content"`)
}
