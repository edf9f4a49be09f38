package game

// Rules describe the board geometry of a k-in-a-row game.
type Rules interface {
	Rows() int
	Cols() int
	InARow() int // Stones in a line needed to win
}
