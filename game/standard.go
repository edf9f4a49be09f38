package game

type StandardRules struct {
	NumRows int
	NumCols int
	K       int
}

// NewStandardRules returns tic-tac-toe rules: 3x3, three in a row.
func NewStandardRules() *StandardRules {
	return &StandardRules{
		NumRows: 3,
		NumCols: 3,
		K:       3,
	}
}

// NewRules returns m,n,k-game rules. k is clamped to the longest line the
// board can hold.
func NewRules(rows, cols, k int) *StandardRules {
	if rows <= 0 || cols <= 0 {
		panic("board must have at least one row and one column")
	}
	return &StandardRules{
		NumRows: rows,
		NumCols: cols,
		K:       max(1, min(k, max(rows, cols))),
	}
}

func (sr *StandardRules) Rows() int {
	return sr.NumRows
}

func (sr *StandardRules) Cols() int {
	return sr.NumCols
}

func (sr *StandardRules) InARow() int {
	return sr.K
}
