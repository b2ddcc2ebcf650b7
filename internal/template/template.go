// Package template provides the reusable prompt template registry, the
// context-aware scorer that picks the best template for a request, and the
// renderer that interpolates a typed variable set into a template body.
package template

import (
	"errors"
	"sync"
	"time"
)

// Registry errors.
var (
	// ErrTemplateNotFound reports an unknown template id at render time.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrNoTemplateForContext reports that no registered template matches
	// the request's tool and task type.
	ErrNoTemplateForContext = errors.New("no template for context")
)

// AdaptationLevel describes how a template responds to context.
type AdaptationLevel string

// Adaptation levels.
const (
	AdaptationStatic   AdaptationLevel = "static"
	AdaptationDynamic  AdaptationLevel = "dynamic"
	AdaptationAdaptive AdaptationLevel = "adaptive"
)

// Template is a reusable, parameterized prompt skeleton.
type Template struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	Description            string          `json:"description"`
	ToolName               string          `json:"tool_name"`
	TaskType               string          `json:"task_type"`
	BaseTokens             int             `json:"base_tokens"`
	CompressionRatio       float64         `json:"compression_ratio"`
	QualityScore           float64         `json:"quality_score"` // [0,100]
	UsageCount             int             `json:"usage_count"`
	LastUpdated            time.Time       `json:"last_updated"`
	Variables              []string        `json:"variables"`
	AdaptationLevel        AdaptationLevel `json:"adaptation_level"`
	CrossSessionCompatible bool            `json:"cross_session_compatible"`
	UserSegments           []string        `json:"user_segments"`
	Body                   string          `json:"body"`
}

// Context is the caller-supplied optimization context. Immutable per call.
type Context struct {
	ToolName            string            `json:"tool_name"`
	TaskType            string            `json:"task_type"`
	UserLevel           string            `json:"user_level"`
	OutputFormat        string            `json:"output_format"`
	TimeConstraint      string            `json:"time_constraint"`
	TaskComplexity      string            `json:"task_complexity,omitempty"`
	QualityRequirements string            `json:"quality_requirements,omitempty"`
	Constraints         []string          `json:"constraints,omitempty"`
	Preferences         map[string]string `json:"preferences,omitempty"`
	ContextHistory      []string          `json:"context_history,omitempty"`
	SessionID           string            `json:"session_id,omitempty"`
	ProjectContext      string            `json:"project_context,omitempty"`
	UserBehaviorProfile string            `json:"user_behavior_profile,omitempty"` // user id for profile lookup
	ContextualFactors   map[string]string `json:"contextual_factors,omitempty"`
}

// Registry maps template ids to templates. Iteration order is registration
// order — score ties at selection time go to the first-registered entry.
// Template usage counters are shared across in-flight calls, so all access
// goes through the mutex.
type Registry struct {
	mu    sync.Mutex
	byID  map[string]Template
	order []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Template)}
}

// Add registers a template. Re-adding an existing id overwrites the entry
// in place and keeps its original registration position.
func (r *Registry) Add(t Template) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.LastUpdated.IsZero() {
		t.LastUpdated = time.Now()
	}
	if _, exists := r.byID[t.ID]; !exists {
		r.order = append(r.order, t.ID)
	}
	r.byID[t.ID] = t
}

// Get returns the template with the given id.
func (r *Registry) Get(id string) (Template, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	return t, ok
}

// List returns all templates in registration order.
func (r *Registry) List() []Template {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// HasFor reports whether any template matches the tool and task type.
func (r *Registry) HasFor(toolName, taskType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byID {
		if t.ToolName == toolName && t.TaskType == taskType {
			return true
		}
	}
	return false
}

// IncrementUsage bumps a template's usage counter. Unknown ids are ignored.
func (r *Registry) IncrementUsage(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return
	}
	t.UsageCount++
	r.byID[id] = t
}
