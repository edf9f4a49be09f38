package agent

import (
	"context"
	"selfplay/experiments/metrics"
	"selfplay/game"
	"selfplay/searcher"
)

type evaluationAgent struct {
	mcts     *searcher.MCTS
	opponent game.Agent
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
// opponent models the other player's replies inside the search tree.
func NewEvaluationAgent(mcts *searcher.MCTS, opponent game.Agent) *evaluationAgent {
	return &evaluationAgent{mcts: mcts, opponent: opponent}
}

func (a *evaluationAgent) FindMove(state game.State) (game.Move, metrics.SearchMetric) {
	decision, metric := a.mcts.SearchMove(context.Background(), state, a.opponent, false, false)
	return decision.Move, metric
}

func (a *evaluationAgent) ProposeMove(state game.State) game.Move {
	move, _ := a.FindMove(state)
	return move
}
