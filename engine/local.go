package engine

import (
	"context"
	"fmt"
	"selfplay/experiments/metrics"
	"selfplay/game"
	"selfplay/searcher/agent"
	"time"

	"github.com/rs/zerolog/log"
)

var _ Engine = (*localEngine)(nil)

type localEngine struct {
	state    game.State
	agents   []agent.Agent
	maxMoves int
}

// LocalEngine plays agents against each other in-process, taking half-moves
// in turn starting with agents[0]. It owns a copy of state.
func LocalEngine(state game.State, agents []agent.Agent) *localEngine {
	if len(agents) < 2 {
		panic("need at least two agents")
	}
	return &localEngine{
		state:    state.Copy(),
		agents:   agents,
		maxMoves: MaxMoves,
	}
}

// State returns a copy of the current game state.
func (e *localEngine) State() game.State {
	return e.state.Copy()
}

// seat returns the copy of state an agent searches on, scored for the player
// to move when the game supports it.
func seat(state game.State) game.State {
	if s, ok := state.(game.Seated); ok {
		return s.ForPlayerToMove()
	}
	return state.Copy()
}

// Run executes the game loop until the game is over, the move limit is
// reached (a draw), or ctx is done.
func (e *localEngine) Run(ctx context.Context) (game.Outcome, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{StartTime: time.Now()}
	var moveMetrics []metrics.MoveMetric

	log.Info().Msgf("agent %d is starting", gameMetric.StartingPlayer)

	outcome, over := e.state.Result()
	step := 0
	for ; !over && step < e.maxMoves; step++ {
		if err := ctx.Err(); err != nil {
			return game.Draw, gameMetric, moveMetrics, fmt.Errorf("game stopped at step %d: %w", step, err)
		}

		player := step % len(e.agents)
		move, searchMetric := e.agents[player].FindMove(seat(e.state))
		if !e.state.Apply(move) {
			fallback := e.state.LegalMoves()
			if len(fallback) == 0 {
				panic("no legal moves in an unfinished game")
			}
			log.Warn().Msgf("agent %d proposed illegal move %v, forcing %v", player, move, fallback[0])
			move = fallback[0]
			e.state.Apply(move)
		}

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step + 1,
			Player:       player,
			Move:         move.String(),
			SearchMetric: searchMetric,
		})
		log.Debug().Msgf("step %d: agent %d played %v", step+1, player, move)

		outcome, over = e.state.Result()
	}
	if !over {
		log.Info().Msgf("stopped after %d moves without a result", step)
		outcome = game.Draw
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = step
	gameMetric.Outcome = outcome.String()

	log.Info().Msgf("game over after %d moves: %v", step, outcome)
	return outcome, gameMetric, moveMetrics, nil
}
