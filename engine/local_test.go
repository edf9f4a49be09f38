package engine

import (
	"context"
	"selfplay/experiments/metrics"
	"selfplay/game"
	"selfplay/searcher"
	"selfplay/searcher/agent"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedAgent plays its moves in order, then null moves.
type scriptedAgent struct {
	moves []game.Move
}

func script(cells ...int) *scriptedAgent {
	a := &scriptedAgent{}
	for _, cell := range cells {
		a.moves = append(a.moves, game.Cell(cell))
	}
	return a
}

func (a *scriptedAgent) FindMove(game.State) (game.Move, metrics.SearchMetric) {
	if len(a.moves) == 0 {
		return game.NullMove, metrics.SearchMetric{}
	}
	move := a.moves[0]
	a.moves = a.moves[1:]
	return move, metrics.SearchMetric{Episodes: 1}
}

// seatRecorder records the perspective of the boards it is asked to move on.
type seatRecorder struct {
	scriptedAgent
	seats []game.Player
}

func (a *seatRecorder) FindMove(state game.State) (game.Move, metrics.SearchMetric) {
	a.seats = append(a.seats, state.(*game.Board).Perspective)
	return a.scriptedAgent.FindMove(state)
}

// secondToWin has Second to move, completing 3-4-5 with c5:
//
//	X X .
//	O O .
//	. . X
func secondToWin(t *testing.T) *game.Board {
	board := newBoard()
	for _, cell := range []game.Cell{0, 3, 1, 4, 8} {
		require.True(t, board.Apply(cell))
	}
	return board
}

func newBoard() *game.Board {
	return game.NewBoard(game.NewStandardRules(), game.First)
}

func TestLocalEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("panics with fewer than two agents", func(t *testing.T) {
		require.Panics(t, func() { LocalEngine(newBoard(), []agent.Agent{script()}) })
	})

	t.Run("first agent completes a line", func(t *testing.T) {
		e := LocalEngine(newBoard(), []agent.Agent{script(0, 1, 2), script(3, 4)})

		outcome, gameMetric, moveMetrics, err := e.Run(ctx)

		require.NoError(t, err)
		require.Equal(t, game.Win, outcome)
		require.Equal(t, "win", gameMetric.Outcome)
		require.Equal(t, 5, gameMetric.TotalMoves)
		require.False(t, gameMetric.EndTime.Before(gameMetric.StartTime))
		require.Len(t, moveMetrics, 5)
		for i, mm := range moveMetrics {
			require.Equal(t, i+1, mm.Step)
			require.Equal(t, i%2, mm.Player, "Agents should alternate")
			require.Equal(t, 1, mm.Episodes)
		}
		require.Equal(t, "c2", moveMetrics[4].Move)
	})

	t.Run("second agent wins", func(t *testing.T) {
		e := LocalEngine(newBoard(), []agent.Agent{script(0, 1, 8), script(3, 4, 5)})

		outcome, _, _, err := e.Run(ctx)

		require.NoError(t, err)
		require.Equal(t, game.Loss, outcome)
	})

	t.Run("illegal move is replaced", func(t *testing.T) {
		e := LocalEngine(newBoard(), []agent.Agent{script(4), script(4)})
		e.maxMoves = 2

		outcome, gameMetric, moveMetrics, err := e.Run(ctx)

		require.NoError(t, err)
		require.Equal(t, game.Draw, outcome, "Unfinished game counts as a draw")
		require.Equal(t, 2, gameMetric.TotalMoves)
		require.Equal(t, "c0", moveMetrics[1].Move, "First legal move should be forced")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		e := LocalEngine(newBoard(), []agent.Agent{script(0), script(1)})

		_, _, moveMetrics, err := e.Run(cancelled)

		require.ErrorIs(t, err, context.Canceled)
		require.Empty(t, moveMetrics)
	})

	t.Run("caller state is untouched", func(t *testing.T) {
		board := newBoard()
		e := LocalEngine(board, []agent.Agent{script(0, 1, 2), script(3, 4)})

		_, _, _, err := e.Run(ctx)

		require.NoError(t, err)
		require.Empty(t, board.History())
		require.Len(t, e.State().History(), 5)
	})

	t.Run("agents search boards scored for their own seat", func(t *testing.T) {
		first := &seatRecorder{scriptedAgent: *script(0, 1, 2)}
		second := &seatRecorder{scriptedAgent: *script(3, 4)}
		e := LocalEngine(newBoard(), []agent.Agent{first, second})

		outcome, _, _, err := e.Run(ctx)

		require.NoError(t, err)
		require.Equal(t, game.Win, outcome, "Outcome stays in the starting state's perspective")
		require.Equal(t, []game.Player{game.First, game.First, game.First}, first.seats)
		require.Equal(t, []game.Player{game.Second, game.Second}, second.seats)
	})

	t.Run("search agent moving second takes the win", func(t *testing.T) {
		for seed := uint64(1); seed <= 3; seed++ {
			mcts := searcher.NewMCTS(1, searcher.WithEpisodes(300), searcher.WithRepetitions(10), searcher.WithSeed(seed))
			searching := agent.NewEvaluationAgent(mcts, agent.NewRandomAgent(seed))
			e := LocalEngine(secondToWin(t), []agent.Agent{searching, agent.NewRandomAgent(seed)})

			outcome, _, moveMetrics, err := e.Run(ctx)

			require.NoError(t, err)
			require.Equal(t, "c5", moveMetrics[0].Move)
			require.Equal(t, game.Loss, outcome, "First should lose once Second completes its line")
		}
	})

	t.Run("search agents play a full game", func(t *testing.T) {
		opponent := agent.NewRandomAgent(1)
		mcts := searcher.NewMCTS(2, searcher.WithEpisodes(30), searcher.WithRepetitions(3), searcher.WithMetrics())
		e := LocalEngine(newBoard(), []agent.Agent{agent.NewEvaluationAgent(mcts, opponent), agent.NewRandomAgent(2)})

		_, gameMetric, moveMetrics, err := e.Run(ctx)

		require.NoError(t, err)
		require.GreaterOrEqual(t, gameMetric.TotalMoves, 5)
		require.LessOrEqual(t, gameMetric.TotalMoves, 9)
		require.Equal(t, 30, moveMetrics[0].Episodes)
	})
}
