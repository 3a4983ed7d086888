package apperror

import "errors"

// Move rejections carry user-facing text: the session controller forwards
// err.Error() verbatim as the rejection message.
var (
	ErrBadMoveFormat   = errors.New("a move is two digits: row, then column")
	ErrMoveOutOfBounds = errors.New("that cell is not on the board")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrNotYourTurn     = errors.New("it's not your turn")

	ErrGameFinished = errors.New("game is already finished")
	ErrNoActiveGame = errors.New("no active game")
	ErrNotPlaying   = errors.New("user has no playing record")
)
