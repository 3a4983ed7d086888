package entity

import (
	"github.com/arenabot/tictactoe-arena/internal/apperror"
)

const (
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"
)

// Game is one live session: the board, the two paired players, whose
// turn it is, and the terminal result once the game ends.
type Game struct {
	ID      string     `json:"id"`
	Board   *Board     `json:"board"`
	Players [2]*Player `json:"players"`
	Turn    int64      `json:"turn"`
	Winner  int64      `json:"winner,omitempty"`
	Draw    bool       `json:"draw,omitempty"`
	Status  string     `json:"status"`
}

// NewGame starts a session for a fresh pairing. The first user plays x
// and holds the first turn.
func NewGame(id string, firstID, secondID int64) *Game {
	return &Game{
		ID:    id,
		Board: NewBoard(),
		Players: [2]*Player{
			{ID: firstID, Sign: SignX},
			{ID: secondID, Sign: SignO},
		},
		Turn:   firstID,
		Status: StatusOngoing,
	}
}

// MakeTurn validates and applies one move. Checks run in a fixed order:
// turn, move format, bounds, cell availability. On success the cell is
// marked, the turn switches, and the terminal state is re-evaluated.
func (that *Game) MakeTurn(userID int64, move string) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if that.Turn != userID {
		return apperror.ErrNotYourTurn
	}

	row, col, err := parseMove(move)
	if err != nil {
		return err
	}

	if !that.Board.IsFree(row, col) {
		return apperror.ErrCellOccupied
	}

	that.Board.Mark(row, col, that.signOf(userID))
	that.Turn = that.OpponentOf(userID)
	that.updateResult()

	return nil
}

// parseMove reads the two-digit wire format: first digit row, second
// digit column, each 1-3 (e.g. "11" is the top-left cell).
func parseMove(move string) (int, int, error) {
	if len(move) != 2 || !isDigit(move[0]) || !isDigit(move[1]) {
		return 0, 0, apperror.ErrBadMoveFormat
	}

	row, col := int(move[0]-'0'), int(move[1]-'0')
	if row < 1 || row > boardSize || col < 1 || col > boardSize {
		return 0, 0, apperror.ErrMoveOutOfBounds
	}

	return row, col, nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// updateResult recomputes the terminal state. The winner check runs
// first: a full board with a complete line is a win, never a draw.
func (that *Game) updateResult() {
	if sign := that.Board.Winner(); sign != EmptyCell {
		that.Winner = that.playerBySign(sign).ID
		that.Status = StatusFinished
		return
	}

	if that.Board.IsFull() {
		that.Draw = true
		that.Status = StatusFinished
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

// OpponentOf returns the other player's ID.
func (that *Game) OpponentOf(userID int64) int64 {
	if that.Players[0].ID == userID {
		return that.Players[1].ID
	}
	return that.Players[0].ID
}

func (that *Game) signOf(userID int64) string {
	if that.Players[0].ID == userID {
		return that.Players[0].Sign
	}
	return that.Players[1].Sign
}

func (that *Game) playerBySign(sign string) *Player {
	if that.Players[0].Sign == sign {
		return that.Players[0]
	}
	return that.Players[1]
}
