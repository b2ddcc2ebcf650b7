package template

// Builtins returns the built-in template set registered at startup.
// Custom templates added over the API live alongside these in the registry.
func Builtins() []Template {
	return []Template{
		{
			ID:                     "smart_begin_generation_v1",
			Name:                   "Project kickoff",
			Description:            "Structured project kickoff prompt with level-aware guidance",
			ToolName:               "smart_begin",
			TaskType:               "generation",
			BaseTokens:             120,
			CompressionRatio:       0.6,
			QualityScore:           85,
			Variables:              []string{"content", "outputFormat"},
			AdaptationLevel:        AdaptationStatic,
			CrossSessionCompatible: true,
			UserSegments:           []string{"beginner", "intermediate"},
			Body: `Create {{.Scalar "outputFormat"}} for: {{.Scalar "content"}}
{{if .Flag "userLevel" "beginner"}}Explain each step and avoid jargon.{{end}}
{{range .List "constraints"}}- Constraint: {{.}}
{{end}}Follow best practices.`,
		},
		{
			ID:                     "smart_begin_generation_v2",
			Name:                   "Project kickoff (advanced)",
			Description:            "Terse kickoff prompt for experienced users",
			ToolName:               "smart_begin",
			TaskType:               "generation",
			BaseTokens:             80,
			CompressionRatio:       0.5,
			QualityScore:           90,
			Variables:              []string{"content"},
			AdaptationLevel:        AdaptationDynamic,
			CrossSessionCompatible: true,
			UserSegments:           []string{"advanced"},
			Body: `{{.Scalar "content"}}
{{if .Flag "qualityRequirements" "premium"}}Be comprehensive and detailed.{{end}}
Output: {{.Scalar "outputFormat"}}.`,
		},
		{
			ID:                     "smart_write_generation_v1",
			Name:                   "Code writing",
			Description:            "Code generation prompt with format and constraint slots",
			ToolName:               "smart_write",
			TaskType:               "generation",
			BaseTokens:             100,
			CompressionRatio:       0.55,
			QualityScore:           88,
			Variables:              []string{"content", "outputFormat"},
			AdaptationLevel:        AdaptationAdaptive,
			CrossSessionCompatible: false,
			UserSegments:           []string{"beginner", "intermediate", "advanced"},
			Body: `Write {{.Scalar "outputFormat"}}: {{.Scalar "content"}}
{{if .Flag "taskComplexity" "high"}}Cover edge cases and error handling.{{end}}
{{range .List "constraints"}}- {{.}}
{{end}}`,
		},
		{
			ID:                     "smart_plan_analysis_v1",
			Name:                   "Planning analysis",
			Description:            "Analysis prompt for planning tasks under time pressure",
			ToolName:               "smart_plan",
			TaskType:               "analysis",
			BaseTokens:             90,
			CompressionRatio:       0.65,
			QualityScore:           82,
			Variables:              []string{"content"},
			AdaptationLevel:        AdaptationStatic,
			CrossSessionCompatible: true,
			UserSegments:           []string{"intermediate", "advanced"},
			Body: `Analyze and plan: {{.Scalar "content"}}
{{if .Flag "timeConstraint" "immediate"}}Keep the plan short — top 3 actions only.{{end}}`,
		},
	}
}
