package agent

import (
	"context"
	"selfplay/experiments/metrics"
	"selfplay/game"
	"selfplay/searcher"

	"github.com/rs/zerolog/log"
)

type trainingAgent struct {
	mcts     *searcher.MCTS
	opponent game.Agent
}

// NewTrainingAgent returns a new agent for self-play during training.
func NewTrainingAgent(mcts *searcher.MCTS, opponent game.Agent) *trainingAgent {
	return &trainingAgent{mcts: mcts, opponent: opponent}
}

func (a *trainingAgent) FindMove(state game.State) (game.Move, metrics.SearchMetric) {
	// Exploration noise keeps self-play games from repeating
	decision, metric := a.mcts.SearchMove(context.Background(), state, a.opponent, true, true)
	if root := a.mcts.Root(); root != nil && decision.Move != game.NullMove {
		log.Debug().
			Floats64("visit_shares", searcher.Distribution(root)).
			Msgf("training move %v, expecting %v", decision.Move, decision.Reply)
	}
	return decision.Move, metric
}

func (a *trainingAgent) ProposeMove(state game.State) game.Move {
	move, _ := a.FindMove(state)
	return move
}
