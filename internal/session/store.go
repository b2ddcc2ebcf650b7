// Package session provides keyed, lazily-created per-session and per-user
// records used only as scoring and adaptation input — never for budget
// accounting.
package session

import (
	"errors"
	"sync"
	"time"
)

// ErrMissingSessionID reports a context-aware operation called without a
// session id. The store never fabricates one — an absent id is a caller
// error.
var ErrMissingSessionID = errors.New("missing session id")

// Context is the per-session history record.
type Context struct {
	SessionID           string    `json:"session_id"`
	StartTime           time.Time `json:"start_time"`
	TemplatesUsed       []string  `json:"templates_used"`
	SuccessRate         float64   `json:"success_rate"` // [0,1]
	UserSatisfaction    *float64  `json:"user_satisfaction,omitempty"`
	ContextPreservation bool      `json:"context_preservation"`
}

// UserProfile is read-only input to template scoring. The pipeline never
// writes it; updates arrive through the explicit profile API.
type UserProfile struct {
	ID              string    `json:"id"`
	ExperienceLevel string    `json:"experience_level"`
	PreferredStyle  string    `json:"preferred_style"`
	CommonTasks     []string  `json:"common_tasks"`
	SuccessPatterns []string  `json:"success_patterns"`
	LastActive      time.Time `json:"last_active"`
}

// Store holds session contexts keyed by session id. Keys partition
// naturally, so a single mutex over the map is enough.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Context
}

// NewStore creates an empty session Store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Context)}
}

// GetOrCreate returns the session context for the id, creating it on first
// use. An empty id fails with ErrMissingSessionID.
func (s *Store) GetOrCreate(sessionID string) (Context, error) {
	if sessionID == "" {
		return Context{}, ErrMissingSessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.sessions[sessionID]
	if !ok {
		sc = &Context{
			SessionID:           sessionID,
			StartTime:           time.Now(),
			TemplatesUsed:       []string{},
			ContextPreservation: true,
		}
		s.sessions[sessionID] = sc
	}
	return *sc, nil
}

// RecordTemplateUse appends the template id to the session's history,
// creating the session if needed.
func (s *Store) RecordTemplateUse(sessionID, templateID string) error {
	if sessionID == "" {
		return ErrMissingSessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.sessions[sessionID]
	if !ok {
		sc = &Context{
			SessionID:           sessionID,
			StartTime:           time.Now(),
			TemplatesUsed:       []string{},
			ContextPreservation: true,
		}
		s.sessions[sessionID] = sc
	}
	sc.TemplatesUsed = append(sc.TemplatesUsed, templateID)
	return nil
}

// SetSuccessRate updates a session's rolling success rate.
func (s *Store) SetSuccessRate(sessionID string, rate float64) error {
	if sessionID == "" {
		return ErrMissingSessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.sessions[sessionID]; ok {
		sc.SuccessRate = rate
	}
	return nil
}

// Profiles holds user profiles keyed by user id.
type Profiles struct {
	mu       sync.Mutex
	profiles map[string]UserProfile
}

// NewProfiles creates an empty profile store.
func NewProfiles() *Profiles {
	return &Profiles{profiles: make(map[string]UserProfile)}
}

// Get returns the profile for a user id.
func (p *Profiles) Get(id string) (UserProfile, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	up, ok := p.profiles[id]
	return up, ok
}

// Put stores a profile. This is the explicit external update path — the
// optimization pipeline only reads profiles.
func (p *Profiles) Put(profile UserProfile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	profile.LastActive = time.Now()
	p.profiles[profile.ID] = profile
}
