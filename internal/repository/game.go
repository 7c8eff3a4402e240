package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/fading-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
)

const (
	gameKeyPrefix = "game:"
	gameSeqKey    = "games:seq"

	maxUpdateRetries = 5
)

// MutateFunc changes a game in place. Returning an error aborts the update and
// the error is handed back to the caller unchanged.
type MutateFunc func(game *entity.Game) error

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) (*entity.Game, error)
	GetByCode(ctx context.Context, code string) (*entity.Game, error)
	// Update reads the game, applies mutate and writes it back atomically.
	Update(ctx context.Context, code string, mutate MutateFunc) (*entity.Game, error)
	DeleteByCode(ctx context.Context, code string) error
}

type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository returns a redis backed store. A zero ttl keeps games forever.
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func gameKey(code string) string {
	return gameKeyPrefix + code
}

func (that *dbGame) Create(ctx context.Context, game *entity.Game) (*entity.Game, error) {
	id, err := that.client.Incr(ctx, gameSeqKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate game id: %w", err)
	}

	created := game.Clone()
	created.ID = id
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	gameJSON, err := json.Marshal(created)
	if err != nil {
		return nil, fmt.Errorf("could not marshal game: %w", err)
	}

	ok, err := that.client.SetNX(ctx, gameKey(created.Code), gameJSON, that.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to set game: %w", err)
	}

	if !ok {
		return nil, apperror.ErrGameAlreadyExists
	}

	return created, nil
}

func (that *dbGame) GetByCode(ctx context.Context, code string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by code: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal(response, &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

// Update uses optimistic locking: the key is watched while mutate runs and the
// write is retried if another client changed it in between.
func (that *dbGame) Update(ctx context.Context, code string, mutate MutateFunc) (*entity.Game, error) {
	key := gameKey(code)

	var updated *entity.Game
	txf := func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return apperror.ErrGameNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to get game by code: %w", err)
		}

		var game entity.Game
		if err = json.Unmarshal(response, &game); err != nil {
			return fmt.Errorf("failed to unmarshal game: %w", err)
		}

		if err = mutate(&game); err != nil {
			return err
		}

		gameJSON, err := json.Marshal(game)
		if err != nil {
			return fmt.Errorf("could not marshal game: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, gameJSON, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}

		updated = &game

		return nil
	}

	for range maxUpdateRetries {
		err := that.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return updated, nil
	}

	return nil, fmt.Errorf("%w: game %s", apperror.ErrConflict, code)
}

func (that *dbGame) DeleteByCode(ctx context.Context, code string) error {
	deleted, err := that.client.Del(ctx, gameKey(code)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game by code: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrGameNotFound
	}

	return nil
}
