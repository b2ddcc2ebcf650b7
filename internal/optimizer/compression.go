package optimizer

import (
	"regexp"
	"strings"
)

// compressionRules is the ordered substitution set. Every rule either
// deletes text or replaces it with something shorter, so compression can
// never increase the token count.
var compressionRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\bplease\s+kindly\s+`), ""},
	{regexp.MustCompile(`(?i)\bplease\s+`), ""},
	{regexp.MustCompile(`(?i)\bkindly\s+`), ""},
	{regexp.MustCompile(`(?i)\bhelp me to\s+`), ""},
	{regexp.MustCompile(`(?i)\bcould you\s+`), ""},
	{regexp.MustCompile(`(?i)\bwould you mind\s+`), ""},
	{regexp.MustCompile(`(?i)\bi would like you to\s+`), ""},
	{regexp.MustCompile(`(?i)\bi want you to\s+`), ""},
	{regexp.MustCompile(`(?i)\bit would be great if you could\s+`), ""},
	{regexp.MustCompile(`(?i)\bmake sure to\s+`), ""},
	{regexp.MustCompile(`(?i)\bin order to\b`), "to"},
	{regexp.MustCompile(`(?i)\band also\b`), "and"},
	{regexp.MustCompile(`(?i)\bas well as\b`), "and"},
	{regexp.MustCompile(`(?i)\bthe fact that\b`), "that"},
}

var whitespaceRun = regexp.MustCompile(`[ \t]+`)

// Compression removes verbose politeness and filler phrases and collapses
// whitespace.
type Compression struct{}

// Name returns the strategy name.
func (Compression) Name() string { return StrategyCompression }

// Apply runs the substitution rules in order, then collapses whitespace.
// Improved only when the output is strictly shorter.
func (Compression) Apply(prompt string, _ Input) Outcome {
	out := prompt
	for _, rule := range compressionRules {
		out = rule.re.ReplaceAllString(out, rule.repl)
	}
	out = whitespaceRun.ReplaceAllString(out, " ")
	out = strings.TrimSpace(out)

	improved := len(out) < len(prompt)
	reason := "removed filler phrases and collapsed whitespace"
	if !improved {
		out = prompt
		reason = "no compressible phrasing found"
	}
	return Outcome{Prompt: out, Improved: improved, Reason: reason}
}
