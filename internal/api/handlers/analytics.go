package handlers

import (
	"net/http"
	"time"
)

// Analytics handles GET /api/v1/analytics.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	ok(w, h.pipeline.Analytics())
}

// Metrics handles GET /api/v1/metrics.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	ok(w, h.pipeline.PerformanceMetrics())
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	daily, monthly := h.ledger.UsageStats()
	ok(w, map[string]interface{}{
		"time":          time.Now(),
		"daily_cost":    daily.TotalCost,
		"monthly_cost":  monthly.TotalCost,
		"templates":     len(h.registry.List()),
		"ws_clients":    h.hub.ClientCount(),
		"optimizations": h.pipeline.PerformanceMetrics().OptimizationCount,
	})
}
