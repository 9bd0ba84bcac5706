package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/view"
)

type moveRequest struct {
	Cell *int `json:"cell"`
}

type jumpRequest struct {
	Step *int `json:"step"`
}

type gameResponse struct {
	Game    *view.Game `json:"game"`
	Applied *bool      `json:"applied,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *Server) createGameHandler(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.NewGame(r.Context())
	if err != nil {
		that.writeError(w, "createGame", err)
		return
	}

	that.writeGame(w, http.StatusCreated, game, nil)
}

func (that *Server) getGameHandler(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, "getGame", err)
		return
	}

	that.writeGame(w, http.StatusOK, game, nil)
}

func (that *Server) endGameHandler(w http.ResponseWriter, r *http.Request) {
	if err := that.gameUseCase.EndGame(r.Context(), r.PathValue("id")); err != nil {
		that.writeError(w, "endGame", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) applyMoveHandler(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cell is required"})
		return
	}

	game, applied, err := that.gameUseCase.ApplyMove(r.Context(), r.PathValue("id"), *req.Cell)
	if err != nil {
		that.writeError(w, "applyMove", err)
		return
	}

	that.writeGame(w, http.StatusOK, game, &applied)
}

func (that *Server) jumpHandler(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Step == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "step is required"})
		return
	}

	game, err := that.gameUseCase.JumpTo(r.Context(), r.PathValue("id"), *req.Step)
	if err != nil {
		that.writeError(w, "jump", err)
		return
	}

	that.writeGame(w, http.StatusOK, game, nil)
}

func (that *Server) writeGame(w http.ResponseWriter, status int, game *entity.Game, applied *bool) {
	that.writeJSON(w, status, gameResponse{
		Game:    view.NewGame(game.ID, game.State),
		Applied: applied,
	})
}

func (that *Server) writeError(w http.ResponseWriter, method string, err error) {
	switch {
	case errors.Is(err, apperror.ErrInvalidArgument):
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, apperror.ErrGameNotFound):
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: "game not found"})
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
