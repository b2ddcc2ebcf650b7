package handlers

import (
	"errors"
	"net/http"

	"github.com/yourusername/promptwarden/internal/template"
)

// ListTemplates handles GET /api/v1/templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ok(w, h.registry.List())
}

// CreateTemplate handles POST /api/v1/templates. Re-posting an id
// overwrites the entry. Custom templates are persisted so they survive a
// restart.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var t template.Template
	if err := decode(r, &t); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if t.ID == "" || t.Body == "" {
		fail(w, http.StatusBadRequest, "id and body are required")
		return
	}
	if t.QualityScore < 0 || t.QualityScore > 100 {
		fail(w, http.StatusBadRequest, "quality_score must be in [0,100]")
		return
	}
	h.registry.Add(t)
	if h.store != nil {
		if err := h.store.SaveTemplate(r.Context(), t); err != nil {
			h.log.Warnw("template persist failed", "id", t.ID, "err", err)
		}
	}
	ok(w, map[string]string{"id": t.ID})
}

// GetTemplate handles GET /api/v1/templates/{id}.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, found := h.registry.Get(pathID(r, "id"))
	if !found {
		fail(w, http.StatusNotFound, "template not found")
		return
	}
	ok(w, t)
}

// RenderTemplate handles POST /api/v1/templates/{id}/render.
// The body supplies a request context; its variables are extracted and
// interpolated into the template.
func (h *Handler) RenderTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Context template.Context  `json:"context"`
		Scalars map[string]string `json:"scalars,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	vars := template.ExtractVariables(req.Context)
	for k, v := range req.Scalars {
		vars.Set(k, v)
	}
	rendered, err := h.registry.Render(pathID(r, "id"), vars)
	if err != nil {
		if errors.Is(err, template.ErrTemplateNotFound) {
			fail(w, http.StatusNotFound, "template not found")
			return
		}
		fail(w, http.StatusUnprocessableEntity, "render: "+err.Error())
		return
	}
	ok(w, map[string]string{"rendered": rendered})
}
