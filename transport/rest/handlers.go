package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rocketscienceinc/fading-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
)

type gameService interface {
	CreateGame(ctx context.Context) (*entity.Game, error)
	JoinGame(ctx context.Context, code, playerID string) (*entity.Game, error)
	GetGame(ctx context.Context, code string) (*entity.Game, error)
	ResetGame(ctx context.Context, code string) (*entity.Game, error)
	DeleteGame(ctx context.Context, code string) error
}

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)

	CreateGame(w http.ResponseWriter, r *http.Request)
	JoinGame(w http.ResponseWriter, r *http.Request)
	GetGame(w http.ResponseWriter, r *http.Request)
	ResetGame(w http.ResponseWriter, r *http.Request)
	DeleteGame(w http.ResponseWriter, r *http.Request)
	ConnectGame(w http.ResponseWriter, r *http.Request)
}

type handlers struct {
	logger *zap.Logger
	games  gameService
}

func NewHandlers(logger *zap.Logger, games gameService) Handlers {
	return &handlers{
		logger: logger.With(zap.String("component", "rest")),
		games:  games,
	}
}

type joinRequest struct {
	PlayerID string `json:"playerId"`
}

type errorResponse struct {
	Message string `json:"message"`
}

type connectResponse struct {
	Success bool `json:"success"`
}

func (that *handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.CreateGame(r.Context())
	if err != nil {
		that.writeError(w, "CreateGame", err, "Failed to create game")
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *handlers) JoinGame(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
		return
	}

	game, err := that.games.JoinGame(r.Context(), gameCode(r), req.PlayerID)
	if err != nil {
		that.writeError(w, "JoinGame", err, "Failed to join game")
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.GetGame(r.Context(), gameCode(r))
	if err != nil {
		that.writeError(w, "GetGame", err, "Failed to get game")
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *handlers) ResetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.ResetGame(r.Context(), gameCode(r))
	if err != nil {
		that.writeError(w, "ResetGame", err, "Failed to reset game")
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.games.DeleteGame(r.Context(), gameCode(r)); err != nil {
		that.writeError(w, "DeleteGame", err, "Failed to delete game")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ConnectGame confirms that a game exists before a client opens its socket.
func (that *handlers) ConnectGame(w http.ResponseWriter, r *http.Request) {
	if _, err := that.games.GetGame(r.Context(), gameCode(r)); err != nil {
		that.writeError(w, "ConnectGame", err, "Failed to connect to game")
		return
	}

	that.writeJSON(w, http.StatusOK, connectResponse{Success: true})
}

func gameCode(r *http.Request) string {
	return entity.NormalizeCode(chi.URLParam(r, "code"))
}

// writeError maps domain errors onto status codes. Unexpected errors are
// logged and answered with fallback.
func (that *handlers) writeError(w http.ResponseWriter, method string, err error, fallback string) {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		that.writeJSON(w, http.StatusNotFound, errorResponse{Message: "Game not found"})
	case errors.Is(err, apperror.ErrGameNotJoinable):
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Game is not available to join"})
	case errors.Is(err, apperror.ErrGameFull):
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Game is full"})
	case errors.Is(err, apperror.ErrPlayerIDRequired):
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Message: "playerId is required"})
	default:
		that.logger.Error("request failed", zap.String("method", method), zap.Error(err))
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Message: fallback})
	}
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Warn("failed to write response", zap.Error(err))
	}
}
