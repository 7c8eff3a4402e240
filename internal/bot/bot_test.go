package bot

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/fading-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
)

func newBot() *Bot {
	return NewBot(rand.New(rand.NewPCG(1, 2)))
}

// gameWithMoves builds a game in play from ordered move lists, oldest first.
func gameWithMoves(movesX, movesO []int) *entity.Game {
	game := entity.NewGame("SINGLE")
	game.Player1 = "human"
	game.Player2 = "COMPUTER"
	game.Status = entity.StatusPlaying
	game.CurrentPlayer = entity.PlayerO
	game.MovesX = movesX
	game.MovesO = movesO

	for _, cell := range movesX {
		game.Board[cell] = entity.PlayerX
	}
	for _, cell := range movesO {
		game.Board[cell] = entity.PlayerO
	}

	return game
}

func TestBot_ChooseMove(t *testing.T) {
	t.Run("Takes its own win before blocking", func(t *testing.T) {
		// Given: O can finish the top row and X threatens the middle row
		game := gameWithMoves([]int{3, 4}, []int{0, 1})

		// When: the bot chooses
		cell, err := newBot().ChooseMove(game, entity.PlayerO)

		// Then: it wins
		require.NoError(t, err)
		assert.Equal(t, 2, cell)
	})

	t.Run("Blocks the opponent's winning line", func(t *testing.T) {
		// Given: X threatens the middle row
		game := gameWithMoves([]int{3, 4}, []int{0})

		// When: the bot chooses
		cell, err := newBot().ChooseMove(game, entity.PlayerO)

		// Then: it blocks
		require.NoError(t, err)
		assert.Equal(t, 5, cell)
	})

	t.Run("Accounts for eviction when looking for wins", func(t *testing.T) {
		// Given: O holds 0, 1, 5 with 0 oldest, so 2 would evict 0 and not win,
		// while X holds 4, 7, 8 with 4 oldest, so X at 6 completes the bottom row
		game := gameWithMoves([]int{4, 7, 8}, []int{0, 1, 5})

		// When: the bot chooses
		cell, err := newBot().ChooseMove(game, entity.PlayerO)

		// Then: it blocks the real threat instead of chasing the broken line
		require.NoError(t, err)
		assert.Equal(t, 6, cell)
	})

	t.Run("Prefers the center", func(t *testing.T) {
		game := gameWithMoves([]int{0}, []int{})

		cell, err := newBot().ChooseMove(game, entity.PlayerO)

		require.NoError(t, err)
		assert.Equal(t, 4, cell)
	})

	t.Run("Falls back to a free corner", func(t *testing.T) {
		game := gameWithMoves([]int{4}, []int{})

		for range 20 {
			cell, err := newBot().ChooseMove(game, entity.PlayerO)

			require.NoError(t, err)
			assert.Contains(t, []int{0, 2, 6, 8}, cell)
		}
	})

	t.Run("Falls back to any free cell", func(t *testing.T) {
		// Given: center and corners are taken and nobody has a real threat
		game := gameWithMoves([]int{0, 2, 4}, []int{6, 8, 3})

		// When: the bot chooses repeatedly
		bot := newBot()
		for range 20 {
			cell, err := bot.ChooseMove(game, entity.PlayerO)

			// Then: it picks one of the remaining edges
			require.NoError(t, err)
			assert.Contains(t, []int{1, 5, 7}, cell)
		}
	})

	t.Run("Fails on a full board", func(t *testing.T) {
		game := gameWithMoves([]int{}, []int{})
		for i := range game.Board {
			game.Board[i] = entity.PlayerX
		}

		_, err := newBot().ChooseMove(game, entity.PlayerO)

		require.ErrorIs(t, err, apperror.ErrNoAvailableMoves)
	})

	t.Run("Does not mutate the game", func(t *testing.T) {
		game := gameWithMoves([]int{3, 4}, []int{0})
		before := game.Clone()

		_, err := newBot().ChooseMove(game, entity.PlayerO)

		require.NoError(t, err)
		assert.Equal(t, before, game)
	})
}
