package game

import (
	"fmt"
	"slices"
	"strings"
)

type Player int

const (
	NoPlayer Player = iota
	First
	Second
)

func (p Player) Opponent() Player {
	switch p {
	case First:
		return Second
	case Second:
		return First
	default:
		return NoPlayer
	}
}

// Board is an m,n,k-game state: players alternate marking empty cells and
// the first to own a full line wins. Results are reported from the
// perspective of one player, fixed at construction.
type Board struct {
	Map           *Map     // Static geometry, shared between copies
	Cells         []Player // Owner per cell, NoPlayer when empty
	CurrentPlayer Player   // Player to move
	Perspective   Player   // Player whose result Result reports
	Moves         []Move   // Half-move history
	Won           Player   // Winner, NoPlayer while undecided
}

// NewBoard returns an empty board with First to move.
func NewBoard(r Rules, perspective Player) *Board {
	m := CreateMap(r)
	return &Board{
		Map:           m,
		Cells:         make([]Player, m.Size()),
		CurrentPlayer: First,
		Perspective:   perspective,
	}
}

func (b *Board) Copy() State {
	cells := make([]Player, len(b.Cells))
	copy(cells, b.Cells)
	moves := make([]Move, len(b.Moves))
	copy(moves, b.Moves)

	return &Board{
		Map:           b.Map, // Map is immutable
		Cells:         cells,
		CurrentPlayer: b.CurrentPlayer,
		Perspective:   b.Perspective,
		Moves:         moves,
		Won:           b.Won,
	}
}

// ForPlayerToMove returns a copy of b scored for the player to move.
func (b *Board) ForPlayerToMove() State {
	c := b.Copy().(*Board)
	c.Perspective = b.CurrentPlayer
	return c
}

func (b *Board) LegalMoves() []Move {
	if b.over() {
		return nil
	}
	moves := make([]Move, 0, len(b.Cells)-len(b.Moves))
	for cell, owner := range b.Cells {
		if owner == NoPlayer {
			moves = append(moves, Cell(cell))
		}
	}
	return moves
}

// Apply marks the cell for the player to move. It reports false, leaving the
// board untouched, for anything but an empty cell of an unfinished game.
func (b *Board) Apply(move Move) bool {
	cell, ok := move.(Cell)
	if !ok || b.over() {
		return false
	}
	if int(cell) < 0 || int(cell) >= len(b.Cells) || b.Cells[cell] != NoPlayer {
		return false
	}

	b.Cells[cell] = b.CurrentPlayer
	b.Moves = append(b.Moves, cell)
	if b.completesLine(int(cell)) {
		b.Won = b.CurrentPlayer
	}
	b.CurrentPlayer = b.CurrentPlayer.Opponent()
	return true
}

func (b *Board) completesLine(cell int) bool {
	owner := b.Cells[cell]
	for _, id := range b.Map.ByCell[cell] {
		complete := true
		for _, c := range b.Map.Lines[id] {
			if b.Cells[c] != owner {
				complete = false
				break
			}
		}
		if complete {
			return true
		}
	}
	return false
}

func (b *Board) Result() (Outcome, bool) {
	switch {
	case b.Won == NoPlayer && len(b.Moves) < len(b.Cells):
		return Draw, false
	case b.Won == NoPlayer:
		return Draw, true
	case b.Won == b.Perspective:
		return Win, true
	default:
		return Loss, true
	}
}

func (b *Board) History() []Move {
	return slices.Clone(b.Moves)
}

func (b *Board) over() bool {
	_, over := b.Result()
	return over
}

func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < b.Map.Rows; row++ {
		for col := 0; col < b.Map.Cols; col++ {
			switch b.Cells[row*b.Map.Cols+col] {
			case First:
				sb.WriteByte('X')
			case Second:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "to move: %d\n", b.CurrentPlayer)
	return sb.String()
}
