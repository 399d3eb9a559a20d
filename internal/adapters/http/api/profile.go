package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/devxbattle/internal/domain/model"
)

// ProfileDependencies defines the interface for profile lookups.
type ProfileDependencies interface {
	Profile(ctx context.Context, username string) (model.GitHubProfile, error)
}

// ProfileHandler handles profile requests.
type ProfileHandler struct {
	deps ProfileDependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps ProfileDependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

// HandleGetProfile handles GET /github?username= requests.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		writeMessage(w, http.StatusBadRequest, codeBadRequest, "Username is required")
		return
	}
	p, err := h.deps.Profile(r.Context(), username)
	if err != nil {
		writeFailure(w, "Failed to fetch user details", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
