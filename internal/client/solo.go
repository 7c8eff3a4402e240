package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rocketscienceinc/fading-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
)

const (
	commandQuit  = "q"
	commandReset = "r"
)

type soloSession interface {
	Play(cell int) (*entity.Game, error)
	Reset() *entity.Game
	State() *entity.Game
}

// RunSolo plays a local game, one command per input line, until in is
// exhausted or the user quits.
func RunSolo(in io.Reader, out io.Writer, session soloSession) error {
	Render(out, session.State())

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())

		switch input {
		case "":
			continue
		case commandQuit:
			return nil
		case commandReset:
			Render(out, session.Reset())
			continue
		}

		cell, ok := ParseCell(input)
		if !ok {
			fmt.Fprintln(out, "enter a cell 1-9, r to restart or q to quit")
			continue
		}

		game, err := session.Play(cell)
		if err != nil {
			fmt.Fprintln(out, rejectionText(err))
			continue
		}

		Render(out, game)

		if game.IsFinished() {
			fmt.Fprintln(out, "r to play again, q to quit")
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	return nil
}

func rejectionText(err error) string {
	switch {
	case errors.Is(err, apperror.ErrCellOccupied):
		return "Position already taken"
	case errors.Is(err, apperror.ErrGameNotActive):
		return "Game is not active"
	case errors.Is(err, apperror.ErrInvalidCell):
		return "Invalid position"
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "Not your turn"
	default:
		return err.Error()
	}
}
