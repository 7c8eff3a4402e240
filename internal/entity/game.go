package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Mark is the symbol occupying a board cell.
type Mark string

const (
	EmptyCell  Mark = ""
	PlayerX    Mark = "X"
	PlayerO    Mark = "O"
	PlayerDraw Mark = "draw"
)

// Status is the lifecycle state of a game.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

const (
	BoardSize = 9

	// MaxMarks is the number of marks a player keeps on the board at once.
	MaxMarks = 3
)

// Board is a row-major 3x3 grid.
type Board [BoardSize]Mark

// Game is the authoritative record of one match.
type Game struct {
	ID            int64
	Code          string
	Board         Board
	CurrentPlayer Mark
	Player1       string
	Player2       string
	Winner        Mark
	Status        Status
	MovesX        []int
	MovesO        []int
	CreatedAt     time.Time
}

// NewGame returns a game in waiting state with an empty board and no players.
func NewGame(code string) *Game {
	return &Game{
		Code:          code,
		CurrentPlayer: PlayerX,
		Status:        StatusWaiting,
		MovesX:        []int{},
		MovesO:        []int{},
		CreatedAt:     time.Now().UTC(),
	}
}

// Clone returns a deep copy of the game.
func (that *Game) Clone() *Game {
	clone := *that
	clone.MovesX = append([]int{}, that.MovesX...)
	clone.MovesO = append([]int{}, that.MovesO...)

	return &clone
}

// Moves returns the move list of the given player.
func (that *Game) Moves(player Mark) []int {
	if player == PlayerX {
		return that.MovesX
	}
	return that.MovesO
}

// SetMoves replaces the move list of the given player.
func (that *Game) SetMoves(player Mark, moves []int) {
	if player == PlayerX {
		that.MovesX = moves
		return
	}
	that.MovesO = moves
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

// HasPlayer reports whether playerID already holds one of the two seats.
func (that *Game) HasPlayer(playerID string) bool {
	return playerID != "" && (that.Player1 == playerID || that.Player2 == playerID)
}

// NormalizeCode trims and upper-cases a user supplied game code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Opponent returns the other symbol.
func Opponent(player Mark) Mark {
	if player == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// wireGame is the external JSON shape. Board and move lists travel as
// JSON-encoded strings nested inside the record.
type wireGame struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Board         string    `json:"board"`
	CurrentPlayer string    `json:"currentPlayer"`
	Player1       *string   `json:"player1"`
	Player2       *string   `json:"player2"`
	Winner        *string   `json:"winner"`
	Status        string    `json:"status"`
	PlayerXMoves  string    `json:"playerXMoves"`
	PlayerOMoves  string    `json:"playerOMoves"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (that Game) MarshalJSON() ([]byte, error) {
	board, err := json.Marshal(that.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to encode board: %w", err)
	}

	movesX, err := json.Marshal(nonNil(that.MovesX))
	if err != nil {
		return nil, fmt.Errorf("failed to encode X moves: %w", err)
	}

	movesO, err := json.Marshal(nonNil(that.MovesO))
	if err != nil {
		return nil, fmt.Errorf("failed to encode O moves: %w", err)
	}

	wire := wireGame{
		ID:            that.ID,
		Code:          that.Code,
		Board:         string(board),
		CurrentPlayer: string(that.CurrentPlayer),
		Player1:       optional(that.Player1),
		Player2:       optional(that.Player2),
		Winner:        optional(string(that.Winner)),
		Status:        string(that.Status),
		PlayerXMoves:  string(movesX),
		PlayerOMoves:  string(movesO),
		CreatedAt:     that.CreatedAt,
	}

	return json.Marshal(wire)
}

func (that *Game) UnmarshalJSON(data []byte) error {
	var wire wireGame
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	game := Game{
		ID:            wire.ID,
		Code:          wire.Code,
		CurrentPlayer: Mark(wire.CurrentPlayer),
		Player1:       deref(wire.Player1),
		Player2:       deref(wire.Player2),
		Winner:        Mark(deref(wire.Winner)),
		Status:        Status(wire.Status),
		CreatedAt:     wire.CreatedAt,
	}

	if wire.Board != "" {
		if err := json.Unmarshal([]byte(wire.Board), &game.Board); err != nil {
			return fmt.Errorf("failed to decode board: %w", err)
		}
	}

	var err error
	if game.MovesX, err = decodeMoves(wire.PlayerXMoves); err != nil {
		return fmt.Errorf("failed to decode X moves: %w", err)
	}

	if game.MovesO, err = decodeMoves(wire.PlayerOMoves); err != nil {
		return fmt.Errorf("failed to decode O moves: %w", err)
	}

	*that = game

	return nil
}

func decodeMoves(raw string) ([]int, error) {
	moves := []int{}
	if raw == "" {
		return moves, nil
	}

	if err := json.Unmarshal([]byte(raw), &moves); err != nil {
		return nil, err
	}

	return nonNil(moves), nil
}

func nonNil(moves []int) []int {
	if moves == nil {
		return []int{}
	}
	return moves
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
