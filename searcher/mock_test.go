package searcher

import (
	"fmt"
	"selfplay/game"
	"sync/atomic"
)

type mockMove int

func (m mockMove) String() string {
	return fmt.Sprintf("m%d", int(m))
}

// mockState offers the same moves every turn. It ends after endAfter
// half-moves (never when 0) with the outcome mapped to the first move played.
type mockState struct {
	moves    []game.Move
	played   []game.Move
	endAfter int
	outcomes map[game.Move]game.Outcome
	terminal bool
}

func newMockState(numMoves, endAfter int) *mockState {
	moves := make([]game.Move, numMoves)
	for i := range moves {
		moves[i] = mockMove(i)
	}
	return &mockState{moves: moves, endAfter: endAfter}
}

func (m *mockState) LegalMoves() []game.Move {
	if _, over := m.Result(); over {
		return nil
	}
	return m.moves
}

func (m *mockState) Apply(move game.Move) bool {
	if _, over := m.Result(); over {
		return false
	}
	for _, legal := range m.moves {
		if legal == move {
			m.played = append(m.played, move)
			return true
		}
	}
	return false
}

func (m *mockState) Result() (game.Outcome, bool) {
	if m.terminal {
		return game.Draw, true
	}
	if m.endAfter == 0 || len(m.played) < m.endAfter {
		return game.Draw, false
	}
	return m.outcomes[m.played[0]], true
}

func (m *mockState) Copy() game.State {
	played := make([]game.Move, len(m.played))
	copy(played, m.played)
	return &mockState{
		moves:    m.moves,
		played:   played,
		endAfter: m.endAfter,
		outcomes: m.outcomes,
		terminal: m.terminal,
	}
}

func (m *mockState) History() []game.Move {
	return m.played
}

// mockAgent always proposes the first legal move.
type mockAgent struct {
	calls atomic.Int32
}

func (a *mockAgent) ProposeMove(state game.State) game.Move {
	a.calls.Add(1)
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return game.NullMove
	}
	return moves[0]
}

// walk visits every node below and including root.
func walk(root *Node, visit func(*Node)) {
	visit(root)
	for _, child := range root.Children() {
		walk(child, visit)
	}
}
