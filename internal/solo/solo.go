// Package solo runs a local game against the computer without any network or
// storage. The human always plays X.
package solo

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
	"github.com/rocketscienceinc/fading-tictactoe/internal/tictactoe"
)

const (
	GameCode   = "SINGLE"
	ComputerID = "COMPUTER"
)

type MoveChooser interface {
	ChooseMove(game *entity.Game, me entity.Mark) (int, error)
}

type Session struct {
	mu   sync.Mutex
	game *entity.Game
	bot  MoveChooser
}

func New(playerID string, bot MoveChooser) *Session {
	return &Session{
		game: newGame(playerID),
		bot:  bot,
	}
}

func newGame(playerID string) *entity.Game {
	game := entity.NewGame(GameCode)
	game.ID = 1
	game.Player1 = playerID
	game.Player2 = ComputerID
	game.Status = entity.StatusPlaying

	return game
}

// Play applies the human move and, if the game goes on, the computer reply.
// A rejected human move leaves the state untouched.
func (that *Session) Play(cell int) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, err := tictactoe.ApplyMove(that.game, entity.PlayerX, cell)
	if err != nil {
		return that.game.Clone(), err
	}

	if !game.IsFinished() {
		reply, err := that.bot.ChooseMove(game, entity.PlayerO)
		if err != nil {
			return that.game.Clone(), fmt.Errorf("failed to choose computer move: %w", err)
		}

		game, err = tictactoe.ApplyMove(game, entity.PlayerO, reply)
		if err != nil {
			return that.game.Clone(), fmt.Errorf("failed to apply computer move %d: %w", reply, err)
		}
	}

	that.game = game

	return game.Clone(), nil
}

// Reset starts a new round with the same human player.
func (that *Session) Reset() *entity.Game {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.game = tictactoe.Reset(that.game)

	return that.game.Clone()
}

func (that *Session) State() *entity.Game {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.game.Clone()
}
