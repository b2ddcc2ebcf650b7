package handlers

import (
	"net/http"

	"github.com/yourusername/promptwarden/internal/session"
)

// GetProfile handles GET /api/v1/profiles/{id}.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, found := h.profiles.Get(pathID(r, "id"))
	if !found {
		fail(w, http.StatusNotFound, "profile not found")
		return
	}
	ok(w, profile)
}

// PutProfile handles PUT /api/v1/profiles/{id}.
// This is the only write path for profiles — the optimization pipeline
// never mutates them.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var profile session.UserProfile
	if err := decode(r, &profile); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	profile.ID = pathID(r, "id")
	if profile.ID == "" {
		fail(w, http.StatusBadRequest, "profile id is required")
		return
	}
	h.profiles.Put(profile)
	ok(w, map[string]string{"message": "updated"})
}
