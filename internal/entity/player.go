package entity

// Player binds a chat user to the sign they place on the board.
type Player struct {
	ID   int64  `json:"id"`
	Sign string `json:"sign"`
}
