package handler

import (
	"net/http"
	"strings"

	"github.com/mcoot/homeguess/internal/api/request"
	"github.com/mcoot/homeguess/internal/api/response"
	"github.com/mcoot/homeguess/internal/model"
	"github.com/mcoot/homeguess/internal/services/session"
)

// MultiplayerHandler handles the two-player session endpoints
type MultiplayerHandler struct {
	controller *session.Controller
}

// NewMultiplayerHandler creates a new multiplayer handler
func NewMultiplayerHandler(controller *session.Controller) *MultiplayerHandler {
	return &MultiplayerHandler{controller: controller}
}

// Create handles POST /api/multiplayer/create
func (h *MultiplayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRequest
	if !decode(w, r, &req) {
		return
	}

	s, playerID, err := h.controller.Create(r.Context(), req.PlayerName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.JoinResponse{
		SessionID: string(s.ID),
		PlayerID:  string(playerID),
	})
}

// Join handles POST /api/multiplayer/join
func (h *MultiplayerHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRequest
	if !decode(w, r, &req) {
		return
	}

	s, playerID, err := h.controller.Join(r.Context(), model.SessionID(req.SessionID), req.PlayerName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinResponse{
		SessionID: string(s.ID),
		PlayerID:  string(playerID),
	})
}

// Advance handles POST /api/multiplayer/advance
func (h *MultiplayerHandler) Advance(w http.ResponseWriter, r *http.Request) {
	var req request.SessionRequest
	if !decode(w, r, &req) {
		return
	}

	home, err := h.controller.Advance(r.Context(), model.SessionID(req.SessionID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AdvanceResponseFromModel(home))
}

// Guess handles POST /api/multiplayer/guess
func (h *MultiplayerHandler) Guess(w http.ResponseWriter, r *http.Request) {
	var req request.GuessRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.controller.Guess(r.Context(), model.SessionID(req.SessionID), model.PlayerID(req.PlayerID), req.Zip)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OKResponse{OK: true})
}

// Score handles POST /api/multiplayer/score
func (h *MultiplayerHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req request.SessionRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.controller.Score(r.Context(), model.SessionID(req.SessionID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScoreResponseFromResult(result))
}

// Leave handles POST /api/multiplayer/leave. Browsers call this from
// sendBeacon on page unload, so the body may arrive as text/plain.
func (h *MultiplayerHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req request.LeaveRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.controller.Leave(r.Context(), model.SessionID(req.SessionID), model.PlayerID(req.PlayerID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OKResponse{OK: true})
}

// State handles POST /api/multiplayer/state
func (h *MultiplayerHandler) State(w http.ResponseWriter, r *http.Request) {
	var req request.SessionRequest
	if !decode(w, r, &req) {
		return
	}
	h.writeState(w, r, model.SessionID(req.SessionID))
}

// StateQuery handles GET /api/multiplayer/state?sessionId=
func (h *MultiplayerHandler) StateQuery(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	if id == "" {
		WriteError(w, NewInvalidRequestError("sessionId is required"))
		return
	}
	h.writeState(w, r, model.SessionID(id))
}

func (h *MultiplayerHandler) writeState(w http.ResponseWriter, r *http.Request, id model.SessionID) {
	s, err := h.controller.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(s))
}

// Delete handles POST /api/multiplayer/delete
func (h *MultiplayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req request.SessionRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.controller.Delete(r.Context(), model.SessionID(req.SessionID)); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OKResponse{OK: true})
}

// decode reads and validates a request body, writing a 400 on failure
func decode(w http.ResponseWriter, r *http.Request, v request.Validator) bool {
	if err := request.Decode(w, r, v); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return false
	}
	return true
}
