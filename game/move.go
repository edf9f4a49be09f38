package game

import "fmt"

// Cell is a move on a Board: the index of the square to mark, row-major.
type Cell int

func (c Cell) String() string {
	return fmt.Sprintf("c%d", int(c))
}
