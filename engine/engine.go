package engine

import (
	"context"
	"selfplay/experiments/metrics"
	"selfplay/game"
)

const MaxMoves = 10000

type Engine interface {
	// Run plays a game till there's a result or a max number of moves is reached
	Run(ctx context.Context) (outcome game.Outcome, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
