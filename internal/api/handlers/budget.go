package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/yourusername/promptwarden/internal/budget"
)

// RequestApproval handles POST /api/v1/budget/approval.
// The decision is returned as data — a denial is not an HTTP error.
func (h *Handler) RequestApproval(w http.ResponseWriter, r *http.Request) {
	var req budget.Request
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Priority == "" {
		req.Priority = budget.PriorityMedium
	}
	ok(w, map[string]interface{}{
		"request_id": req.RequestID,
		"approval":   h.ledger.RequestApproval(req),
	})
}

// RecordUsage handles POST /api/v1/budget/usage.
func (h *Handler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequestID          string `json:"request_id"`
		ActualInputTokens  int    `json:"actual_input_tokens"`
		ActualOutputTokens int    `json:"actual_output_tokens"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.RequestID == "" {
		fail(w, http.StatusBadRequest, "request_id is required")
		return
	}
	h.ledger.RecordUsage(req.RequestID, req.ActualInputTokens, req.ActualOutputTokens)
	ok(w, map[string]string{"message": "recorded"})
}

// BudgetStats handles GET /api/v1/budget/stats.
func (h *Handler) BudgetStats(w http.ResponseWriter, r *http.Request) {
	daily, monthly := h.ledger.UsageStats()
	ok(w, map[string]interface{}{
		"daily":   daily,
		"monthly": monthly,
		"pending": h.ledger.PendingCount(),
	})
}

// BudgetAlerts handles GET /api/v1/budget/alerts.
func (h *Handler) BudgetAlerts(w http.ResponseWriter, r *http.Request) {
	ok(w, h.ledger.Alerts())
}
