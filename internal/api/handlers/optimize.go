package handlers

import (
	"net/http"

	"github.com/yourusername/promptwarden/internal/optimizer"
)

// Optimize handles POST /api/v1/optimize.
// Admission denials come back as 200 with success=false — they are an
// expected outcome, not a transport error.
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req optimizer.Request
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.OriginalPrompt == "" {
		fail(w, http.StatusBadRequest, "original_prompt is required")
		return
	}
	if req.ToolName == "" {
		req.ToolName = req.Context.ToolName
	}
	ok(w, h.pipeline.Optimize(r.Context(), req))
}
