package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/devxbattle/internal/adapters/objectstore"
	"github.com/okian/devxbattle/internal/domain/model"
)

// SBTDependencies records and lists soul-bound tokens.
type SBTDependencies interface {
	RecordSBT(ctx context.Context, wallet, sbtAddress string, metadata json.RawMessage) (model.User, string, error)
	ListSBTHolders(ctx context.Context) ([]model.User, error)
}

// SBTHandler handles /sbt and /sbts.
type SBTHandler struct {
	deps SBTDependencies
}

// NewSBTHandler creates a new SBT handler.
func NewSBTHandler(deps SBTDependencies) *SBTHandler {
	return &SBTHandler{deps: deps}
}

type sbtRequest struct {
	WalletAddress string          `json:"walletAddress"`
	SBTAddress    string          `json:"sbtAddress"`
	Metadata      json.RawMessage `json:"metadata"`
}

type sbtResponse struct {
	Message     string     `json:"message"`
	User        model.User `json:"user"`
	MetadataURI string     `json:"metadataUri"`
}

type holdersResponse struct {
	Users []model.User `json:"users"`
}

// HandleRecordSBT handles POST /sbt.
func (h *SBTHandler) HandleRecordSBT(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req sbtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	wallet, sbt := strings.TrimSpace(req.WalletAddress), strings.TrimSpace(req.SBTAddress)
	if wallet == "" || sbt == "" || len(req.Metadata) == 0 || string(req.Metadata) == "null" {
		writeMessage(w, http.StatusBadRequest, codeBadRequest, "walletAddress, sbtAddress and metadata are required")
		return
	}
	u, uri, err := h.deps.RecordSBT(r.Context(), wallet, sbt, req.Metadata)
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeMessage(w, http.StatusNotFound, codeNotFound, "User not found")
		return
	case errors.Is(err, objectstore.ErrDisabled):
		writeMessage(w, http.StatusServiceUnavailable, codeUnavailable, "SBT metadata storage is not configured")
		return
	case err != nil:
		writeFailure(w, "Error recording SBT", err)
		return
	}
	writeJSON(w, http.StatusOK, sbtResponse{Message: "SBT recorded", User: u, MetadataURI: uri})
}

// HandleListSBTs handles GET /sbts.
func (h *SBTHandler) HandleListSBTs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	users, err := h.deps.ListSBTHolders(r.Context())
	if err != nil {
		writeFailure(w, "Error listing SBT holders", err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, holdersResponse{Users: users})
}
