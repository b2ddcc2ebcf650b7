// Package handlers provides HTTP handler implementations for the
// PromptWarden REST API.
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/yourusername/promptwarden/internal/budget"
	"github.com/yourusername/promptwarden/internal/optimizer"
	"github.com/yourusername/promptwarden/internal/session"
	"github.com/yourusername/promptwarden/internal/store"
	"github.com/yourusername/promptwarden/internal/template"
	"github.com/yourusername/promptwarden/internal/ws"
)

// Handler holds all shared dependencies for API handler methods.
type Handler struct {
	pipeline *optimizer.Pipeline
	ledger   *budget.Ledger
	registry *template.Registry
	profiles *session.Profiles
	store    *store.Store
	hub      *ws.Hub
	log      *zap.SugaredLogger
}

// New creates a Handler with all dependencies.
func New(
	pipeline *optimizer.Pipeline,
	ledger *budget.Ledger,
	registry *template.Registry,
	profiles *session.Profiles,
	st *store.Store,
	hub *ws.Hub,
	log *zap.SugaredLogger,
) *Handler {
	return &Handler{
		pipeline: pipeline,
		ledger:   ledger,
		registry: registry,
		profiles: profiles,
		store:    st,
		hub:      hub,
		log:      log,
	}
}

// ── Response helpers ──────────────────────────────────────────────────────────

type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response{Success: true, Data: data})
}

func fail(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response{Success: false, Error: msg})
}

func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func pathID(r *http.Request, name string) string {
	return r.PathValue(name)
}
