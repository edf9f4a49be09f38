package searcher

import (
	"selfplay/experiments/metrics"
	"selfplay/game"

	"golang.org/x/exp/rand"
)

// Rollout estimates a state's value by averaging random playouts.
type Rollout struct {
	MaxMoves    int // Half-moves per playout before calling it a draw
	Repetitions int // Independent playouts per estimate
	metrics     metrics.Collector
}

func NewRollout(maxMoves, repetitions int) *Rollout {
	r := &Rollout{
		MaxMoves:    maxMoves,
		Repetitions: repetitions,
		metrics:     metrics.NewDummyCollector(),
	}
	if r.MaxMoves <= 0 {
		r.MaxMoves = MaxCutoff
	}
	if r.Repetitions <= 0 {
		r.Repetitions = 1
	}
	return r
}

// Run returns the mean outcome in [-1, 1] of Repetitions playouts, each from
// its own copy of state; state itself is never modified.
func (r *Rollout) Run(state game.State, rng *rand.Rand) float64 {
	total := 0.0
	for i := 0; i < r.Repetitions; i++ {
		total += r.playout(state.Copy(), rng)
	}
	return total / float64(r.Repetitions)
}

func (r *Rollout) playout(state game.State, rng *rand.Rand) float64 {
	// Rollout till game over or for cutoff number of moves
	for depth := 0; depth < r.MaxMoves; depth++ {
		if _, over := state.Result(); over {
			break
		}
		moves := state.LegalMoves()
		if len(moves) == 0 {
			break
		}
		state.Apply(moves[rng.Intn(len(moves))]) // Random rollout policy
	}

	outcome, over := state.Result()
	if !over { // Cutoff or no moves left counts as a draw
		return 0
	}
	r.metrics.AddFullPlayout()
	return outcome.Score()
}
