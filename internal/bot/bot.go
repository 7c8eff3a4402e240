// Package bot picks moves for the computer opponent of the single-player mode.
package bot

import (
	"math/rand/v2"

	"github.com/rocketscienceinc/fading-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
	"github.com/rocketscienceinc/fading-tictactoe/internal/tictactoe"
)

const centerCell = 4

var cornerCells = []int{0, 2, 6, 8}

type Bot struct {
	rnd *rand.Rand
}

func NewBot(rnd *rand.Rand) *Bot {
	return &Bot{rnd: rnd}
}

// ChooseMove returns the cell the bot plays as me. Priorities: own win, block,
// center, random corner, random cell. Candidates are simulated through the
// engine so a move that evicts one of the bot's own marks is judged correctly.
func (that *Bot) ChooseMove(game *entity.Game, me entity.Mark) (int, error) {
	available := tictactoe.AvailableCells(game.Board)
	if len(available) == 0 {
		return 0, apperror.ErrNoAvailableMoves
	}

	if cell, ok := findWinningCell(game, me, available); ok {
		return cell, nil
	}

	if cell, ok := findWinningCell(game, entity.Opponent(me), available); ok {
		return cell, nil
	}

	if game.Board[centerCell] == entity.EmptyCell {
		return centerCell, nil
	}

	corners := make([]int, 0, len(cornerCells))
	for _, cell := range cornerCells {
		if game.Board[cell] == entity.EmptyCell {
			corners = append(corners, cell)
		}
	}

	if len(corners) > 0 {
		return corners[that.rnd.IntN(len(corners))], nil
	}

	return available[that.rnd.IntN(len(available))], nil
}

// findWinningCell returns the first available cell that would win the game
// for player if player were to move now.
func findWinningCell(game *entity.Game, player entity.Mark, available []int) (int, bool) {
	probe := game.Clone()
	probe.CurrentPlayer = player
	probe.Status = entity.StatusPlaying
	probe.Winner = entity.EmptyCell

	for _, cell := range available {
		next, err := tictactoe.ApplyMove(probe, player, cell)
		if err != nil {
			continue
		}

		if next.Winner == player {
			return cell, true
		}
	}

	return 0, false
}
