package agent

import (
	"selfplay/experiments/metrics"
	"selfplay/game"
)

type Agent interface {
	// FindMove returns the move to play and performance metrics (if collected) from the search process
	FindMove(state game.State) (game.Move, metrics.SearchMetric)
}
