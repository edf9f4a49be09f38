package game

// EvaluateLines scores a Board by its open lines: lines only the perspective
// player has marks on count for it, lines only the opponent has marks on
// count against it, weighted by how filled they are. Finished games score
// their outcome. The result lies in [-1, 1].
func EvaluateLines(s State) float64 {
	b, ok := s.(*Board)
	if !ok {
		panic("unexpected state type")
	}
	if outcome, over := b.Result(); over {
		return outcome.Score()
	}

	me := b.Perspective
	opponent := me.Opponent()
	mine, theirs := 0.0, 0.0
	for _, line := range b.Map.Lines {
		counts := make(map[Player]int, 3)
		for _, cell := range line {
			counts[b.Cells[cell]]++
		}
		weight := 0.0
		if k := len(line); k > 0 {
			weight = float64(counts[me]+counts[opponent]) / float64(k)
		}
		switch {
		case counts[me] > 0 && counts[opponent] == 0:
			mine += weight
		case counts[opponent] > 0 && counts[me] == 0:
			theirs += weight
		}
	}

	return normalize(mine, theirs)
}

// UniformPrior gives every move the same prior.
func UniformPrior(_ State, moves []Move) []float64 {
	priors := make([]float64, len(moves))
	for i := range priors {
		priors[i] = 1 / float64(len(moves))
	}
	return priors
}

// normalize converts two values into a single score between -1 and 1
func normalize(value float64, otherValue float64) float64 {
	total := value + otherValue
	if total == 0 {
		return 0
	}
	// [a/(a+b)-0.5]*2 = (a-b)/(a+b)
	return (value - otherValue) / total
}
