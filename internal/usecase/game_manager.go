package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rocketscienceinc/fading-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
	"github.com/rocketscienceinc/fading-tictactoe/internal/repository"
	"github.com/rocketscienceinc/fading-tictactoe/internal/tictactoe"
)

const maxCodeAttempts = 5

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) (*entity.Game, error)
	GetByCode(ctx context.Context, code string) (*entity.Game, error)
	Update(ctx context.Context, code string, mutate repository.MutateFunc) (*entity.Game, error)
	DeleteByCode(ctx context.Context, code string) error
}

type broadcaster interface {
	Broadcast(ctx context.Context, code string, msg any)
}

// GameManager owns every state change of multiplayer games. Changes to one
// code are serialised and broadcast only after the store accepted them, so
// members of a room see states in commit order.
type GameManager struct {
	logger   *zap.Logger
	gameRepo gameRepo
	rooms    broadcaster
	locks    *keyedMutex

	generateCode func() (string, error)
}

func NewGameManager(logger *zap.Logger, gameRepo gameRepo, rooms broadcaster) *GameManager {
	return &GameManager{
		logger:   logger.With(zap.String("component", "game_manager")),
		gameRepo: gameRepo,
		rooms:    rooms,
		locks:    newKeyedMutex(),

		generateCode: GenerateGameCode,
	}
}

// CreateGame stores a new waiting game under a fresh code.
func (that *GameManager) CreateGame(ctx context.Context) (*entity.Game, error) {
	log := that.logger.With(zap.String("method", "CreateGame"))

	for range maxCodeAttempts {
		code, err := that.generateCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate game code: %w", err)
		}

		game, err := that.gameRepo.Create(ctx, entity.NewGame(code))
		if errors.Is(err, apperror.ErrGameAlreadyExists) {
			log.Debug("game code collision", zap.String("game_code", code))
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to create game: %w", err)
		}

		log.Info("game created", zap.String("game_code", game.Code), zap.Int64("game_id", game.ID))

		return game, nil
	}

	return nil, apperror.ErrCodeExhausted
}

// JoinGame seats playerID in the first free slot. Seating the second player
// starts the game. A player who already holds a seat gets the game back as is.
func (that *GameManager) JoinGame(ctx context.Context, code, playerID string) (*entity.Game, error) {
	log := that.logger.With(zap.String("method", "JoinGame"), zap.String("game_code", code))

	if playerID == "" {
		return nil, apperror.ErrPlayerIDRequired
	}

	unlock := that.locks.Lock(code)
	defer unlock()

	current, err := that.gameRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if current.HasPlayer(playerID) {
		return current, nil
	}

	game, err := that.gameRepo.Update(ctx, code, func(game *entity.Game) error {
		if !game.IsWaiting() {
			return apperror.ErrGameNotJoinable
		}

		switch {
		case game.Player1 == "":
			game.Player1 = playerID
		case game.Player2 == "":
			game.Player2 = playerID
			game.Status = entity.StatusPlaying
		default:
			return apperror.ErrGameFull
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join game: %w", err)
	}

	log.Info("player joined", zap.String("player_id", playerID), zap.String("status", string(game.Status)))

	that.rooms.Broadcast(ctx, code, entity.NewPlayerJoinedMessage(playerID, code))
	that.rooms.Broadcast(ctx, code, entity.NewGameStateMessage(game))

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, code string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// ResetGame starts a rematch with the same players.
func (that *GameManager) ResetGame(ctx context.Context, code string) (*entity.Game, error) {
	log := that.logger.With(zap.String("method", "ResetGame"), zap.String("game_code", code))

	unlock := that.locks.Lock(code)
	defer unlock()

	game, err := that.gameRepo.Update(ctx, code, func(game *entity.Game) error {
		*game = *tictactoe.Reset(game)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}

	log.Info("game reset")

	that.rooms.Broadcast(ctx, code, entity.NewGameStateMessage(game))

	return game, nil
}

func (that *GameManager) DeleteGame(ctx context.Context, code string) error {
	unlock := that.locks.Lock(code)
	defer unlock()

	if err := that.gameRepo.DeleteByCode(ctx, code); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", zap.String("game_code", code))

	return nil
}

// MakeMove applies a move for player and broadcasts the committed state.
// Rejections leave the game untouched and are not broadcast.
func (that *GameManager) MakeMove(ctx context.Context, code string, player entity.Mark, cell int) (*entity.Game, error) {
	log := that.logger.With(zap.String("method", "MakeMove"), zap.String("game_code", code))

	unlock := that.locks.Lock(code)
	defer unlock()

	game, err := that.gameRepo.Update(ctx, code, func(game *entity.Game) error {
		next, err := tictactoe.ApplyMove(game, player, cell)
		if err != nil {
			return err
		}

		*game = *next

		return nil
	})
	if err != nil {
		if !apperror.IsRejection(err) && !errors.Is(err, apperror.ErrGameNotFound) {
			log.Error("failed to store move", zap.Int("cell", cell), zap.Error(err))
		}
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	if game.IsFinished() {
		log.Info("game finished", zap.String("winner", string(game.Winner)))
	}

	that.rooms.Broadcast(ctx, code, entity.NewGameStateMessage(game))

	return game, nil
}
