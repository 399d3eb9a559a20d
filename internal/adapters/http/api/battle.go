package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/devxbattle/internal/domain/battle"
	"github.com/okian/devxbattle/internal/domain/model"
)

// BattleDependencies runs battles.
type BattleDependencies interface {
	GitHubBattle(ctx context.Context, username1, username2 string) (battle.GitHubResult, error)
	NFTBattle(ctx context.Context, left, right model.Combatant) (battle.NFTResult, error)
	RoastBattle(ctx context.Context, ch battle.RoastChallenger, def battle.RoastDefender) (battle.RoastResult, error)
}

// BattleHandler handles /battle and /battle/nft.
type BattleHandler struct {
	deps BattleDependencies
}

// NewBattleHandler creates a new battle handler.
func NewBattleHandler(deps BattleDependencies) *BattleHandler {
	return &BattleHandler{deps: deps}
}

// battleResponse is the body of GET and POST /battle. GitHub battles carry
// names and avatars; NFT battles carry nft1 and nft2.
type battleResponse struct {
	ID           string `json:"id"`
	Username1    string `json:"username1"`
	Username2    string `json:"username2"`
	BattleResult string `json:"battleResult"`
	Winner       string `json:"winner"`
	Loser        string `json:"loser"`
	WinnerScore  int    `json:"winnerScore"`
	LoserScore   int    `json:"loserScore"`
	Degraded     bool   `json:"degraded"`
	Type         string `json:"type"`
	Timestamp    int64  `json:"timestamp"`

	Name1      string `json:"name1,omitempty"`
	AvatarURL1 string `json:"avatar_url1,omitempty"`
	Name2      string `json:"name2,omitempty"`
	AvatarURL2 string `json:"avatar_url2,omitempty"`

	NFT1 *battle.NFTSummary `json:"nft1,omitempty"`
	NFT2 *battle.NFTSummary `json:"nft2,omitempty"`
}

func outcomeResponse(o model.BattleOutcome, username1, username2 string) battleResponse {
	return battleResponse{
		ID:           o.ID,
		Username1:    username1,
		Username2:    username2,
		BattleResult: o.Narrative,
		Winner:       o.Winner,
		Loser:        o.Loser,
		WinnerScore:  o.WinnerScore,
		LoserScore:   o.LoserScore,
		Degraded:     o.Degraded,
		Type:         string(o.Mode),
		Timestamp:    o.CreatedAt.UnixMilli(),
	}
}

// HandleBattle handles GET /battle and POST /battle.
func (h *BattleHandler) HandleBattle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		mode, err := model.ParseMode(q.Get("type"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, err)
			return
		}
		if mode == model.ModeNFT {
			h.nft(w, r, q.Get("username1"), q.Get("username2"), q.Get("nftUri1"), q.Get("nftUri2"))
			return
		}
		h.github(w, r, q.Get("username1"), q.Get("username2"))
	case http.MethodPost:
		h.challenge(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *BattleHandler) github(w http.ResponseWriter, r *http.Request, username1, username2 string) {
	username1, username2 = strings.TrimSpace(username1), strings.TrimSpace(username2)
	if username1 == "" || username2 == "" {
		writeMessage(w, http.StatusBadRequest, codeBadRequest, "Both usernames are required")
		return
	}
	res, err := h.deps.GitHubBattle(r.Context(), username1, username2)
	if err != nil {
		prefix := "Failed to fetch user details"
		if battle.KindOf(err) == battle.KindNarrativeGenerationFailed {
			prefix = "Failed to generate comparison"
		}
		writeFailure(w, prefix, err)
		return
	}
	resp := outcomeResponse(res.Outcome, username1, username2)
	resp.Name1, resp.AvatarURL1 = res.Left.Name, res.Left.AvatarURL
	resp.Name2, resp.AvatarURL2 = res.Right.Name, res.Right.AvatarURL
	writeJSON(w, http.StatusOK, resp)
}

func (h *BattleHandler) nft(w http.ResponseWriter, r *http.Request, username1, username2, uri1, uri2 string) {
	left := model.NFTCombatant(username1, uri1)
	right := model.NFTCombatant(username2, uri2)
	if left.TokenURI == "" || right.TokenURI == "" {
		writeMessage(w, http.StatusBadRequest, codeBadRequest, "Both NFT URIs are required")
		return
	}
	res, err := h.deps.NFTBattle(r.Context(), left, right)
	if err != nil {
		writeFailure(w, "NFT battle failed", err)
		return
	}
	resp := outcomeResponse(res.Outcome, left.Identity, right.Identity)
	resp.NFT1, resp.NFT2 = &res.Left, &res.Right
	writeJSON(w, http.StatusOK, resp)
}

type challengeParty struct {
	Username string `json:"username"`
	NFTURI   string `json:"nftUri"`
}

type challengeRequest struct {
	Challenger *challengeParty `json:"challenger"`
	Defender   *challengeParty `json:"defender"`
}

// challenge turns POST /battle into an NFT battle.
func (h *BattleHandler) challenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if req.Challenger == nil || req.Defender == nil {
		writeMessage(w, http.StatusBadRequest, codeBadRequest, "Both challenger and defender are required")
		return
	}
	h.nft(w, r, req.Challenger.Username, req.Defender.Username, req.Challenger.NFTURI, req.Defender.NFTURI)
}

type roastRequest struct {
	Challenger *struct {
		Username string `json:"username"`
		NFTData  struct {
			Attributes []model.NFTAttribute `json:"attributes"`
		} `json:"nftData"`
	} `json:"challenger"`
	Defender *struct {
		Username      string `json:"username"`
		WalletAddress string `json:"walletAddress"`
	} `json:"defender"`
}

type roastResponse struct {
	ID           string `json:"id"`
	BattleResult string `json:"battleResult"`
	Challenger   string `json:"challenger"`
	Defender     string `json:"defender"`
}

// HandleRoast handles POST /battle/nft.
func (h *BattleHandler) HandleRoast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req roastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if req.Challenger == nil || req.Defender == nil {
		writeMessage(w, http.StatusBadRequest, codeBadRequest, "Both challenger and defender are required")
		return
	}
	res, err := h.deps.RoastBattle(r.Context(),
		battle.RoastChallenger{Username: req.Challenger.Username, Attributes: req.Challenger.NFTData.Attributes},
		battle.RoastDefender{Username: req.Defender.Username, WalletAddress: strings.TrimSpace(req.Defender.WalletAddress)},
	)
	if err != nil {
		writeFailure(w, "Battle failed", err)
		return
	}
	writeJSON(w, http.StatusOK, roastResponse{
		ID:           res.ID,
		BattleResult: res.Narrative,
		Challenger:   res.Challenger,
		Defender:     res.Defender,
	})
}
