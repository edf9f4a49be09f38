package game

// Line is a run of InARow() cells that wins when one player owns all of it.
type Line []int

// Map holds the static geometry of a board: every winning line, and for each
// cell the lines that pass through it.
type Map struct {
	Rows   int
	Cols   int
	Lines  []Line
	ByCell [][]int // Line indexes per cell
}

// CreateMap precomputes the winning lines for the given rules.
func CreateMap(r Rules) *Map {
	rows, cols, k := r.Rows(), r.Cols(), r.InARow()
	m := &Map{
		Rows:   rows,
		Cols:   cols,
		ByCell: make([][]int, rows*cols),
	}

	// Horizontal, vertical, diagonal and anti-diagonal directions
	directions := [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			for _, d := range directions {
				endRow := row + d[0]*(k-1)
				endCol := col + d[1]*(k-1)
				if endRow < 0 || endRow >= rows || endCol < 0 || endCol >= cols {
					continue
				}
				line := make(Line, k)
				for i := 0; i < k; i++ {
					line[i] = (row+d[0]*i)*cols + col + d[1]*i
				}
				m.addLine(line)
			}
		}
	}
	return m
}

func (m *Map) addLine(line Line) {
	id := len(m.Lines)
	m.Lines = append(m.Lines, line)
	for _, cell := range line {
		if !contains(m.ByCell[cell], id) {
			m.ByCell[cell] = append(m.ByCell[cell], id)
		}
	}
}

func (m *Map) Size() int {
	return m.Rows * m.Cols
}

// contains checks if a slice contains a specific item.
func contains(slice []int, item int) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}
