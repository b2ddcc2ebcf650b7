package template

import (
	"github.com/yourusername/promptwarden/internal/session"
)

// Scoring bonuses. The base is the template's own quality score; the final
// score is clamped to [0,100].
const (
	bonusUserSegment  = 10 // userLevel matches a segment at the extremes
	bonusImmediate    = 5  // immediate time constraint on a static template
	bonusProfileMatch = 15 // supplied profile's experience level in segments
)

// Scorer ranks registry entries for a request context.
type Scorer struct {
	registry *Registry
}

// NewScorer creates a Scorer over the given registry.
func NewScorer(registry *Registry) *Scorer {
	return &Scorer{registry: registry}
}

// Score computes the context-adjusted score of a single template.
// Only the beginner and advanced extremes earn the segment bonus —
// intermediate users get the template's base score.
func (s *Scorer) Score(t Template, ctx Context, profile *session.UserProfile) float64 {
	score := t.QualityScore

	if (ctx.UserLevel == "beginner" || ctx.UserLevel == "advanced") && inSegments(t.UserSegments, ctx.UserLevel) {
		score += bonusUserSegment
	}
	if ctx.TimeConstraint == "immediate" && t.AdaptationLevel == AdaptationStatic {
		score += bonusImmediate
	}
	if profile != nil && inSegments(t.UserSegments, profile.ExperienceLevel) {
		score += bonusProfileMatch
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Select returns the highest-scoring template whose tool and task type
// exactly match the context. Ties go to the first-registered template.
func (s *Scorer) Select(ctx Context, profile *session.UserProfile) (Template, error) {
	var (
		best      Template
		bestScore = -1.0
	)
	for _, t := range s.registry.List() {
		if t.ToolName != ctx.ToolName || t.TaskType != ctx.TaskType {
			continue
		}
		if score := s.Score(t, ctx, profile); score > bestScore {
			best, bestScore = t, score
		}
	}
	if bestScore < 0 {
		return Template{}, ErrNoTemplateForContext
	}
	return best, nil
}

func inSegments(segments []string, level string) bool {
	for _, s := range segments {
		if s == level {
			return true
		}
	}
	return false
}
