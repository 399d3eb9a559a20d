package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/devxbattle/internal/domain/model"
)

// AccountDependencies registers and looks up users.
type AccountDependencies interface {
	Authenticate(ctx context.Context, username, wallet string) (model.User, bool, error)
	SignUp(ctx context.Context, u model.User) (model.User, error)
	Login(ctx context.Context, username, wallet string) (model.User, error)
}

// AccountHandler handles /auth, /signup and /login.
type AccountHandler struct {
	deps AccountDependencies
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(deps AccountDependencies) *AccountHandler {
	return &AccountHandler{deps: deps}
}

type accountRequest struct {
	Username      string `json:"username"`
	UserID        string `json:"userId"`
	WalletAddress string `json:"walletAddress"`
	SBTAddress    string `json:"sbtAddress"`
}

func (a *accountRequest) trim() {
	a.Username = strings.TrimSpace(a.Username)
	a.UserID = strings.TrimSpace(a.UserID)
	a.WalletAddress = strings.TrimSpace(a.WalletAddress)
	a.SBTAddress = strings.TrimSpace(a.SBTAddress)
}

type userResponse struct {
	Message string     `json:"message"`
	User    model.User `json:"user"`
}

func decodeAccount(w http.ResponseWriter, r *http.Request) (accountRequest, bool) {
	var req accountRequest
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return req, false
	}
	req.trim()
	return req, true
}

// HandleAuth handles POST /auth: returns the wallet's user, registering it
// on first sight.
func (h *AccountHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAccount(w, r)
	if !ok {
		return
	}
	if req.Username == "" || req.WalletAddress == "" {
		writeMessage(w, http.StatusBadRequest, codeBadRequest, "Username and wallet address are required")
		return
	}
	u, created, err := h.deps.Authenticate(r.Context(), req.Username, req.WalletAddress)
	if err != nil {
		writeFailure(w, "Error processing request", err)
		return
	}
	if created {
		writeJSON(w, http.StatusCreated, userResponse{Message: "User registered successfully", User: u})
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Message: "User authenticated successfully", User: u})
}

// HandleSignUp handles POST /signup.
func (h *AccountHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAccount(w, r)
	if !ok {
		return
	}
	if req.Username == "" || req.UserID == "" || req.WalletAddress == "" {
		writeMessage(w, http.StatusBadRequest, codeBadRequest, "Username, userId, and walletAddress are required")
		return
	}
	u, err := h.deps.SignUp(r.Context(), model.User{
		Username:      req.Username,
		UserID:        req.UserID,
		WalletAddress: req.WalletAddress,
		SBTAddress:    req.SBTAddress,
	})
	if err != nil {
		writeFailure(w, "Error creating user", err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{Message: "User created successfully", User: u})
}

// HandleLogin handles POST /login. Username wins over wallet when both are
// given.
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAccount(w, r)
	if !ok {
		return
	}
	if req.Username == "" && req.WalletAddress == "" {
		writeMessage(w, http.StatusBadRequest, codeBadRequest, "Username or wallet address is required")
		return
	}
	u, err := h.deps.Login(r.Context(), req.Username, req.WalletAddress)
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeMessage(w, http.StatusNotFound, codeNotFound, "User not found")
		return
	case err != nil:
		writeFailure(w, "Error logging in", err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Message: "Login successful", User: u})
}
