package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"codeduel/internal/app/service"
	"codeduel/internal/common"
)

type MatchHandler struct {
	matchService *service.MatchService
}

func NewMatchHandler(ms *service.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

func (h *MatchHandler) RegisterRoutes(r chi.Router) {
	r.Post("/create", h.createMatch)
	r.Post("/join", h.joinMatch)
	r.Post("/run", h.runCode)
	r.Post("/next-round", h.nextRound)
	r.Get("/{sessionID}", h.getMatch)
}

type createMatchRequest struct {
	Player1 string `json:"player1"`
}

func (h *MatchHandler) createMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if req.Player1 == "" {
		common.RespondWithError(w, http.StatusBadRequest, "Player name required")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, h.matchService.Create(req.Player1))
}

type joinMatchRequest struct {
	SessionID  string `json:"sessionId"`
	PlayerName string `json:"playerName"`
}

func (h *MatchHandler) joinMatch(w http.ResponseWriter, r *http.Request) {
	var req joinMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if req.SessionID == "" || req.PlayerName == "" {
		common.RespondWithError(w, http.StatusBadRequest, "Session ID and player name required")
		return
	}
	resp, err := h.matchService.Join(req.SessionID, req.PlayerName)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

type runCodeRequest struct {
	Code      string `json:"code"`
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
}

func (h *MatchHandler) runCode(w http.ResponseWriter, r *http.Request) {
	var req runCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if req.Code == "" {
		common.RespondWithError(w, http.StatusBadRequest, "No code submitted")
		return
	}
	if req.SessionID == "" || req.PlayerID == "" {
		common.RespondWithError(w, http.StatusBadRequest, "Missing sessionId or playerId")
		return
	}
	resp, err := h.matchService.Submit(r.Context(), req.SessionID, req.PlayerID, req.Code)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

type nextRoundRequest struct {
	SessionID string `json:"sessionId"`
}

func (h *MatchHandler) nextRound(w http.ResponseWriter, r *http.Request) {
	var req nextRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if req.SessionID == "" {
		common.RespondWithError(w, http.StatusBadRequest, "Missing sessionId")
		return
	}
	resp, err := h.matchService.AdvanceRound(req.SessionID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *MatchHandler) getMatch(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	snap, err := h.matchService.Snapshot(sessionID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, snap)
}
