// Package tictactoe holds the rules of the three-marks variant: move
// validation, eviction of a player's oldest mark and win detection. It has no
// I/O and never mutates the games it is given.
package tictactoe

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/fading-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
)

var (
	ErrBrokenInvariant = errors.New("game invariant violated")

	WinCombos = [][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// ApplyMove validates the move and returns the next state.
func ApplyMove(game *entity.Game, player entity.Mark, cell int) (*entity.Game, error) {
	if err := validateMove(game, player, cell); err != nil {
		return nil, err
	}

	next := game.Clone()

	moves := append(next.Moves(player), cell)
	if len(moves) > entity.MaxMarks {
		evicted := moves[0]
		moves = moves[1:]
		next.Board[evicted] = entity.EmptyCell
	}
	next.SetMoves(player, moves)

	next.Board[cell] = player
	updateGameStatus(next, player)

	return next, nil
}

// validateMove - checks if the move is valid.
func validateMove(game *entity.Game, player entity.Mark, cell int) error {
	if cell < 0 || cell >= len(game.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if game.CurrentPlayer != player {
		return apperror.ErrNotYourTurn
	}

	if !game.IsPlaying() {
		return apperror.ErrGameNotActive
	}

	if game.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// updateGameStatus - the turn stays with the winner once the game is over.
func updateGameStatus(game *entity.Game, player entity.Mark) {
	if winner := Winner(game.Board); winner != entity.EmptyCell {
		game.Winner = winner
		game.Status = entity.StatusFinished
		return
	}

	game.CurrentPlayer = entity.Opponent(player)
}

// Winner returns the symbol holding a full line, or EmptyCell.
func Winner(board entity.Board) entity.Mark {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return a
		}
	}

	return entity.EmptyCell
}

// Reset clears the board for a rematch and keeps both players seated.
// A game still waiting for its second player stays waiting.
func Reset(game *entity.Game) *entity.Game {
	next := game.Clone()

	next.Board = entity.Board{}
	next.CurrentPlayer = entity.PlayerX
	next.Winner = entity.EmptyCell
	next.MovesX = []int{}
	next.MovesO = []int{}

	if next.Player2 == "" {
		next.Status = entity.StatusWaiting
	} else {
		next.Status = entity.StatusPlaying
	}

	return next
}

// AvailableCells lists the empty cells in board order.
func AvailableCells(board entity.Board) []int {
	cells := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

// Validate checks the structural invariants of a game record.
func Validate(game *entity.Game) error {
	if len(game.MovesX) > entity.MaxMarks || len(game.MovesO) > entity.MaxMarks {
		return fmt.Errorf("%w: more than %d marks", ErrBrokenInvariant, entity.MaxMarks)
	}

	var expected entity.Board
	for _, player := range []entity.Mark{entity.PlayerX, entity.PlayerO} {
		for _, cell := range game.Moves(player) {
			if cell < 0 || cell >= entity.BoardSize {
				return fmt.Errorf("%w: move %d out of range", ErrBrokenInvariant, cell)
			}

			if expected[cell] != entity.EmptyCell {
				return fmt.Errorf("%w: cell %d recorded twice", ErrBrokenInvariant, cell)
			}
			expected[cell] = player
		}
	}

	if expected != game.Board {
		return fmt.Errorf("%w: board does not mirror move lists", ErrBrokenInvariant)
	}

	if game.IsFinished() != (game.Winner != entity.EmptyCell) {
		return fmt.Errorf("%w: status %q with winner %q", ErrBrokenInvariant, game.Status, game.Winner)
	}

	if game.IsWaiting() != (game.Player2 == "") {
		return fmt.Errorf("%w: status %q with second player %q", ErrBrokenInvariant, game.Status, game.Player2)
	}

	return nil
}
