// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/devxbattle/internal/adapters/llm"
	"github.com/okian/devxbattle/internal/adapters/objectstore"
	"github.com/okian/devxbattle/internal/adapters/repository"
	"github.com/okian/devxbattle/internal/domain/battle"
	"github.com/okian/devxbattle/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	BattleDependencies
	AccountDependencies
	SBTDependencies
	ProfileDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	metricsHandler http.Handler
	statsHandler   *StatsHandler
	battleHandler  *BattleHandler
	accountHandler *AccountHandler
	sbtHandler     *SBTHandler
	profileHandler *ProfileHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		metricsHandler: NewMetricsHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		battleHandler:  NewBattleHandler(deps),
		accountHandler: NewAccountHandler(deps),
		sbtHandler:     NewSBTHandler(deps),
		profileHandler: NewProfileHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.metricsHandler)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/battle", MetricsMiddleware(s.battleHandler.HandleBattle, "battle"))
	mux.HandleFunc("/battle/nft", MetricsMiddleware(s.battleHandler.HandleRoast, "battle_nft"))
	mux.HandleFunc("/github", MetricsMiddleware(s.profileHandler.HandleGetProfile, "github"))

	mux.HandleFunc("/auth", MetricsMiddleware(s.accountHandler.HandleAuth, "auth"))
	mux.HandleFunc("/signup", MetricsMiddleware(s.accountHandler.HandleSignUp, "signup"))
	mux.HandleFunc("/login", MetricsMiddleware(s.accountHandler.HandleLogin, "login"))
	mux.HandleFunc("/sbt", MetricsMiddleware(s.sbtHandler.HandleRecordSBT, "sbt"))
	mux.HandleFunc("/sbts", MetricsMiddleware(s.sbtHandler.HandleListSBTs, "sbts"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeMessage(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err onto a status and writes prefix: err as the message.
func writeFailure(w http.ResponseWriter, prefix string, err error) {
	status, code := classify(err)
	if code == codeDuplicateKey {
		writeMessage(w, status, code, msgDuplicate)
		return
	}
	writeMessage(w, status, code, prefix+": "+err.Error())
}

const (
	codeBadRequest   = "bad_request"
	codeDuplicateKey = "duplicate_key"
	codeNotFound     = "not_found"
	codeUnavailable  = "unavailable"
	codeUpstream     = "upstream_error"
	codeInternal     = "internal_error"

	msgDuplicate = "Username or wallet address already exists."
)

// classify translates domain and adapter errors to an HTTP status.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrDuplicateKey):
		return http.StatusBadRequest, codeDuplicateKey
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, objectstore.ErrInvalidKey),
		battle.KindOf(err) == battle.KindMissingCombatant:
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, objectstore.ErrDisabled):
		return http.StatusServiceUnavailable, codeUnavailable
	case errors.Is(err, model.ErrUpstream),
		errors.Is(err, llm.ErrGeneration),
		battle.KindOf(err) != "":
		return http.StatusInternalServerError, codeUpstream
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
