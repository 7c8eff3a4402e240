package client

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
)

// Render draws the board with free cells numbered 1-9. The oldest mark of the
// player to move is shown in lower case since it is the next to fade.
func Render(w io.Writer, game *entity.Game) {
	fading := -1
	if moves := game.Moves(game.CurrentPlayer); game.IsPlaying() && len(moves) == entity.MaxMarks {
		fading = moves[0]
	}

	var sb strings.Builder

	for row := range 3 {
		cells := make([]string, 3)
		for col := range 3 {
			cell := row*3 + col
			switch {
			case game.Board[cell] == entity.EmptyCell:
				cells[col] = strconv.Itoa(cell + 1)
			case cell == fading:
				cells[col] = strings.ToLower(string(game.Board[cell]))
			default:
				cells[col] = string(game.Board[cell])
			}
		}

		sb.WriteString(" " + strings.Join(cells, " | ") + "\n")
		if row < 2 {
			sb.WriteString("---+---+---\n")
		}
	}

	sb.WriteString(statusLine(game) + "\n")

	_, _ = io.WriteString(w, sb.String())
}

func statusLine(game *entity.Game) string {
	switch {
	case game.IsWaiting():
		return fmt.Sprintf("game %s: waiting for an opponent", game.Code)
	case game.IsFinished() && game.Winner == entity.PlayerDraw:
		return "draw"
	case game.IsFinished():
		return fmt.Sprintf("%s wins", game.Winner)
	default:
		return fmt.Sprintf("%s to move", game.CurrentPlayer)
	}
}

// ParseCell reads a 1-9 cell number as typed by the user.
func ParseCell(input string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > entity.BoardSize {
		return 0, false
	}

	return n - 1, true
}
