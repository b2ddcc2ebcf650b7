// Package api sets up the HTTP routes for PromptWarden's REST API.
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/yourusername/promptwarden/internal/api/handlers"
	"github.com/yourusername/promptwarden/internal/budget"
	"github.com/yourusername/promptwarden/internal/optimizer"
	"github.com/yourusername/promptwarden/internal/session"
	"github.com/yourusername/promptwarden/internal/store"
	"github.com/yourusername/promptwarden/internal/template"
	"github.com/yourusername/promptwarden/internal/ws"
)

// Deps holds all dependencies injected into the API handlers.
type Deps struct {
	Pipeline *optimizer.Pipeline
	Ledger   *budget.Ledger
	Registry *template.Registry
	Profiles *session.Profiles
	Store    *store.Store
	Hub      *ws.Hub
	Log      *zap.SugaredLogger
}

// SetupRoutes registers all HTTP routes on the given ServeMux.
// Uses Go 1.22 method+pattern routing syntax.
func SetupRoutes(mux *http.ServeMux, deps *Deps) {
	h := handlers.New(deps.Pipeline, deps.Ledger, deps.Registry,
		deps.Profiles, deps.Store, deps.Hub, deps.Log)

	// Optimization
	mux.HandleFunc("POST /api/v1/optimize", h.Optimize)

	// Budget
	mux.HandleFunc("POST /api/v1/budget/approval", h.RequestApproval)
	mux.HandleFunc("POST /api/v1/budget/usage", h.RecordUsage)
	mux.HandleFunc("GET /api/v1/budget/stats", h.BudgetStats)
	mux.HandleFunc("GET /api/v1/budget/alerts", h.BudgetAlerts)

	// Templates
	mux.HandleFunc("GET /api/v1/templates", h.ListTemplates)
	mux.HandleFunc("POST /api/v1/templates", h.CreateTemplate)
	mux.HandleFunc("GET /api/v1/templates/{id}", h.GetTemplate)
	mux.HandleFunc("POST /api/v1/templates/{id}/render", h.RenderTemplate)

	// Profiles
	mux.HandleFunc("GET /api/v1/profiles/{id}", h.GetProfile)
	mux.HandleFunc("PUT /api/v1/profiles/{id}", h.PutProfile)

	// Analytics
	mux.HandleFunc("GET /api/v1/analytics", h.Analytics)
	mux.HandleFunc("GET /api/v1/metrics", h.Metrics)
	mux.HandleFunc("GET /api/v1/usage", h.Usage)

	// Status
	mux.HandleFunc("GET /api/v1/status", h.Status)
}
