package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/fading-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
)

type memoryGame struct {
	mu    sync.Mutex
	seq   int64
	games map[string]*entity.Game
}

// NewMemoryGameRepository keeps games in process memory. State is lost on restart.
func NewMemoryGameRepository() GameRepository {
	return &memoryGame{
		games: make(map[string]*entity.Game),
	}
}

func (that *memoryGame) Create(_ context.Context, game *entity.Game) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[game.Code]; ok {
		return nil, apperror.ErrGameAlreadyExists
	}

	that.seq++

	created := game.Clone()
	created.ID = that.seq
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	that.games[created.Code] = created

	return created.Clone(), nil
}

func (that *memoryGame) GetByCode(_ context.Context, code string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[code]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return game.Clone(), nil
}

func (that *memoryGame) Update(_ context.Context, code string, mutate MutateFunc) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[code]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	updated := game.Clone()
	if err := mutate(updated); err != nil {
		return nil, err
	}

	that.games[code] = updated

	return updated.Clone(), nil
}

func (that *memoryGame) DeleteByCode(_ context.Context, code string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[code]; !ok {
		return apperror.ErrGameNotFound
	}

	delete(that.games, code)

	return nil
}
