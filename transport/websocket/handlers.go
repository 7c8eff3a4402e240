package websocket

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rocketscienceinc/fading-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
)

const (
	errTextInvalidMessage = "Invalid message format"
	errTextGameNotFound   = "Game not found"
	errTextNotYourTurn    = "Not your turn"
	errTextNotActive      = "Game is not active"
	errTextCellOccupied   = "Position already taken"
	errTextInvalidCell    = "Invalid position"
	errTextMoveFailed     = "Failed to make move"
	errTextJoinFailed     = "Failed to join game"
)

// handleJoin subscribes the connection to a game and replies with its state.
func (that *Server) handleJoin(ctx context.Context, conn *connection, msg *entity.InboundMessage) error {
	log := that.logger.With(zap.String("method", "handleJoin"), zap.String("conn_id", conn.ID()))

	code := entity.NormalizeCode(msg.GameCode)
	if code == "" {
		that.sendError(ctx, conn, errTextInvalidMessage)
		return nil
	}

	game, err := that.games.GetGame(ctx, code)
	if errors.Is(err, apperror.ErrGameNotFound) {
		that.sendError(ctx, conn, errTextGameNotFound)
		return nil
	}

	if err != nil {
		that.sendError(ctx, conn, errTextJoinFailed)
		return fmt.Errorf("failed to get game %s: %w", code, err)
	}

	that.rooms.Subscribe(code, conn)

	log.Info("connection joined game room", zap.String("game_code", code))

	if err = conn.Send(ctx, entity.NewGameStateMessage(game)); err != nil {
		return fmt.Errorf("failed to send game state: %w", err)
	}

	return nil
}

// handleMove applies a move. The new state reaches the sender through the
// room broadcast, rejections are answered to the sender only.
func (that *Server) handleMove(ctx context.Context, conn *connection, msg *entity.InboundMessage) error {
	log := that.logger.With(zap.String("method", "handleMove"), zap.String("conn_id", conn.ID()))

	code := entity.NormalizeCode(msg.GameCode)
	if code == "" || msg.Position == nil || (msg.Player != entity.PlayerX && msg.Player != entity.PlayerO) {
		that.sendError(ctx, conn, errTextInvalidMessage)
		return nil
	}

	that.rooms.Subscribe(code, conn)

	_, err := that.games.MakeMove(ctx, code, msg.Player, *msg.Position)
	if err == nil {
		return nil
	}

	if errors.Is(err, apperror.ErrGameNotFound) {
		that.rooms.Unsubscribe(code, conn)
	}

	text, known := moveErrorText(err)
	that.sendError(ctx, conn, text)

	if known {
		log.Debug("move rejected", zap.String("game_code", code), zap.Error(err))
		return nil
	}

	return fmt.Errorf("failed to make move in %s: %w", code, err)
}

func moveErrorText(err error) (string, bool) {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return errTextGameNotFound, true
	case errors.Is(err, apperror.ErrNotYourTurn):
		return errTextNotYourTurn, true
	case errors.Is(err, apperror.ErrGameNotActive):
		return errTextNotActive, true
	case errors.Is(err, apperror.ErrCellOccupied):
		return errTextCellOccupied, true
	case errors.Is(err, apperror.ErrInvalidCell):
		return errTextInvalidCell, true
	default:
		return errTextMoveFailed, false
	}
}

// sendError replies to the sender only.
func (that *Server) sendError(ctx context.Context, conn *connection, text string) {
	if err := conn.Send(ctx, entity.NewErrorMessage(text)); err != nil {
		that.logger.Warn("failed to send error response", zap.String("conn_id", conn.ID()), zap.Error(err))
	}
}
