package agent

import (
	"selfplay/experiments/metrics"
	"selfplay/game"
	"sync"

	"golang.org/x/exp/rand"
)

// randomAgent plays a uniformly random legal move. It is safe for concurrent
// use, so one instance can model the opponent for every search goroutine.
type randomAgent struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomAgent(seed uint64) *randomAgent {
	return &randomAgent{rng: rand.New(rand.NewSource(seed))}
}

func (a *randomAgent) FindMove(state game.State) (game.Move, metrics.SearchMetric) {
	return a.ProposeMove(state), metrics.SearchMetric{}
}

func (a *randomAgent) ProposeMove(state game.State) game.Move {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return game.NullMove
	}

	a.mu.Lock()
	i := a.rng.Intn(len(moves))
	a.mu.Unlock()
	return moves[i]
}
