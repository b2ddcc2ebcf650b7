package template

// Flag identifies one value of an enum-valued context field, e.g.
// {Field: "userLevel", Value: "beginner"}. Template bodies branch on flags
// instead of ad hoc "<field>_<value>" string keys.
type Flag struct {
	Field string
	Value string
}

// Variables is the typed capability set the renderer consults: scalar
// fields, enum flags and list fields extracted from a request context.
type Variables struct {
	Scalars map[string]string
	Flags   map[Flag]bool
	Lists   map[string][]string
}

// NewVariables creates an empty variable set.
func NewVariables() Variables {
	return Variables{
		Scalars: make(map[string]string),
		Flags:   make(map[Flag]bool),
		Lists:   make(map[string][]string),
	}
}

// ExtractVariables flattens a context into the variable set: scalar fields
// verbatim, one flag per enum-valued field, the constraint and history
// lists verbatim, and a shallow merge of the caller's preferences.
func ExtractVariables(ctx Context) Variables {
	v := NewVariables()

	v.Scalars["toolName"] = ctx.ToolName
	v.Scalars["taskType"] = ctx.TaskType
	v.Scalars["userLevel"] = ctx.UserLevel
	v.Scalars["outputFormat"] = ctx.OutputFormat
	v.Scalars["timeConstraint"] = ctx.TimeConstraint
	if ctx.ProjectContext != "" {
		v.Scalars["projectContext"] = ctx.ProjectContext
	}

	setFlag := func(field, value string) {
		if value != "" {
			v.Flags[Flag{Field: field, Value: value}] = true
		}
	}
	setFlag("userLevel", ctx.UserLevel)
	setFlag("outputFormat", ctx.OutputFormat)
	setFlag("timeConstraint", ctx.TimeConstraint)
	setFlag("taskComplexity", ctx.TaskComplexity)
	setFlag("qualityRequirements", ctx.QualityRequirements)

	v.Lists["constraints"] = ctx.Constraints
	v.Lists["contextHistory"] = ctx.ContextHistory

	for k, val := range ctx.Preferences {
		v.Scalars[k] = val
	}
	for k, val := range ctx.ContextualFactors {
		setFlag(k, val)
	}
	return v
}

// Scalar returns a scalar variable, or "" when absent.
// Exported for use inside template bodies: {{.Scalar "outputFormat"}}.
func (v Variables) Scalar(name string) string {
	return v.Scalars[name]
}

// Flag reports whether an enum field holds the given value:
// {{if .Flag "userLevel" "beginner"}}...{{end}}.
func (v Variables) Flag(field, value string) bool {
	return v.Flags[Flag{Field: field, Value: value}]
}

// List returns a list variable: {{range .List "constraints"}}...{{end}}.
func (v Variables) List(name string) []string {
	return v.Lists[name]
}

// Set assigns a scalar. Used by the template-based strategy to inject the
// extracted prompt content before rendering.
func (v Variables) Set(name, value string) {
	v.Scalars[name] = value
}
