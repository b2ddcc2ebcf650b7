package handlers

import (
	"net/http"
	"time"
)

// Usage handles GET /api/v1/usage.
// Query params: period=daily|weekly|monthly, tool_name.
// Aggregates from the SQLite audit log, not the in-memory ledger.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period := q.Get("period")
	if period == "" {
		period = "daily"
	}

	var since string
	now := time.Now()
	switch period {
	case "weekly":
		since = now.AddDate(0, 0, -7).Format("2006-01-02")
	case "monthly":
		since = now.AddDate(0, -1, 0).Format("2006-01-02")
	default:
		since = now.Format("2006-01-02")
	}

	rows, err := h.store.Usage(r.Context(), since, q.Get("tool_name"))
	if err != nil {
		fail(w, http.StatusInternalServerError, "query: "+err.Error())
		return
	}
	ok(w, map[string]interface{}{
		"period": period,
		"since":  since,
		"rows":   rows,
	})
}
