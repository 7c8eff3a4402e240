package apperror

import "errors"

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameAlreadyExists = errors.New("game already exists")
	ErrGameFull          = errors.New("game is full")
	ErrGameNotJoinable   = errors.New("game is not available to join")
	ErrGameNotActive     = errors.New("game is not active")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrInvalidCell       = errors.New("invalid cell index")
	ErrConflict          = errors.New("concurrent update conflict")
	ErrNoAvailableMoves  = errors.New("no available moves")
	ErrPlayerIDRequired  = errors.New("player id is required")
	ErrCodeExhausted     = errors.New("could not allocate a free game code")
)

// IsRejection reports whether err is a move rejection caused by the request itself.
func IsRejection(err error) bool {
	return errors.Is(err, ErrNotYourTurn) ||
		errors.Is(err, ErrCellOccupied) ||
		errors.Is(err, ErrInvalidCell) ||
		errors.Is(err, ErrGameNotActive)
}
