package searcher

import (
	"fmt"
	"math"
	"selfplay/game"
	"sync"

	"github.com/rs/zerolog/log"
)

// Node is a vertex of the search tree. Each edge from a parent bundles a full
// round: our move and, unless the game ended on it, the opponent's reply.
//
// The mutex guards every field below it except state, parent, move, reply,
// outcome and terminal, which never change after construction (parent is
// cut only when no search is running).
type Node struct {
	state    game.State
	parent   *Node
	move     game.Move // Our half-move on the edge from parent
	reply    game.Move // Opponent half-move on the edge from parent
	outcome  game.Outcome
	terminal bool

	sync.Mutex
	children    []*Node
	unexpanded  []game.Move
	value       float64
	visits      int
	childVisits int // Sum of children's visits
	prior       float64
	vloss       int
}

func newRoot(state game.State) *Node {
	root := newNode(nil, state.Copy(), game.NullMove, game.NullMove)
	// Avoid ln(0) and 0^x for the root's children
	root.visits = 1
	return root
}

// newNode takes ownership of state.
func newNode(parent *Node, state game.State, move, reply game.Move) *Node {
	outcome, terminal := state.Result()
	var moves []game.Move
	if !terminal {
		moves = state.LegalMoves()
	}

	return &Node{
		state:      state,
		parent:     parent,
		move:       move,
		reply:      reply,
		outcome:    outcome,
		terminal:   terminal,
		children:   make([]*Node, 0, len(moves)),
		unexpanded: moves,
		prior:      1,
	}
}

func (n *Node) IsLeaf() bool {
	n.Lock()
	defer n.Unlock()

	return len(n.children) == 0
}

func (n *Node) IsFullyExpanded() bool {
	n.Lock()
	defer n.Unlock()

	return len(n.unexpanded) == 0
}

func (n *Node) IsTerminal() bool {
	return n.terminal
}

func (n *Node) IsRoot() bool {
	return n.parent == nil
}

func (n *Node) Parent() *Node {
	return n.parent
}

// State returns a copy of the node's game state.
func (n *Node) State() game.State {
	return n.state.Copy()
}

func (n *Node) Move() game.Move {
	return n.move
}

func (n *Node) Reply() game.Move {
	return n.reply
}

func (n *Node) Children() []*Node {
	n.Lock()
	defer n.Unlock()

	children := make([]*Node, len(n.children))
	copy(children, n.children)
	return children
}

func (n *Node) Visits() int {
	n.Lock()
	defer n.Unlock()

	return n.visits
}

func (n *Node) Value() float64 {
	n.Lock()
	defer n.Unlock()

	return n.value
}

func (n *Node) VirtualLoss() int {
	n.Lock()
	defer n.Unlock()

	return n.vloss
}

func (n *Node) Prior() float64 {
	n.Lock()
	defer n.Unlock()

	return n.prior
}

// SetPrior clamps p to [0, 1].
func (n *Node) SetPrior(p float64) {
	n.Lock()
	defer n.Unlock()

	n.prior = math.Max(0, math.Min(1, p))
}

// UCB1 must not be called while holding the parent's lock.
func (n *Node) UCB1() float64 {
	n.Lock()
	value, visits := n.value, n.visits
	n.Unlock()

	if visits == 0 {
		return math.Inf(1)
	}
	parentVisits := 1
	if n.parent != nil {
		parentVisits = n.parent.Visits()
	}
	return ucb1(value, visits, parentVisits)
}

func (n *Node) PUCT() float64 {
	n.Lock()
	defer n.Unlock()

	if n.parent == nil {
		return math.Inf(1)
	}
	// Never sampled and nobody in flight: try it before exploiting siblings
	if n.visits == 0 && n.vloss == 0 {
		return math.Inf(1)
	}
	return puct(n.value, n.visits, n.childVisits, n.prior, n.vloss)
}

// BestChild returns the child with the highest PUCT score, the first one on
// ties. It panics on a leaf.
func (n *Node) BestChild() *Node {
	n.Lock()
	defer n.Unlock()

	return n.bestChild()
}

func (n *Node) bestChild() *Node {
	if len(n.children) == 0 {
		panic("node has no children")
	}

	best := 0
	maxScore := math.Inf(-1)
	for i, child := range n.children {
		score := child.PUCT()
		if score == math.Inf(1) {
			return child
		}
		if score > maxScore {
			maxScore = score
			best = i
		}
	}
	return n.children[best]
}

// PopUnexpandedAction removes and returns an untried move. It panics when
// every move has been tried.
func (n *Node) PopUnexpandedAction() game.Move {
	n.Lock()
	defer n.Unlock()

	return n.popUnexpandedAction()
}

func (n *Node) popUnexpandedAction() game.Move {
	if len(n.unexpanded) == 0 {
		panic("node has no unexpanded actions")
	}

	last := len(n.unexpanded) - 1
	move := n.unexpanded[last]
	n.unexpanded = n.unexpanded[:last]
	return move
}

// selectOrExpand takes one step down the tree from n. It returns n itself
// when the path ends here (terminal or dead end), a new child when n still
// has untried moves, or the best existing child otherwise. done reports
// whether the returned node ends the path; that node carries a virtual loss.
//
// Expansion runs under n's lock, so two goroutines never pop the same move
// or append to children concurrently.
func (n *Node) selectOrExpand(opponent game.Agent, prior game.Prior) (next *Node, done bool) {
	n.Lock()
	defer n.Unlock()

	if n.terminal || (len(n.unexpanded) == 0 && len(n.children) == 0) {
		n.vloss += VirtualLoss
		return n, true
	}

	if len(n.unexpanded) > 0 {
		child := n.expand(opponent, prior)
		child.applyLoss()
		return child, true
	}

	return n.bestChild(), false
}

// expand plays one untried move and the opponent's reply on a copy of n's
// state, and appends the resulting child. The caller holds n's lock.
func (n *Node) expand(opponent game.Agent, prior game.Prior) *Node {
	move := n.popUnexpandedAction()
	state := n.state.Copy()
	if !state.Apply(move) {
		panic(fmt.Sprintf("legal move %v was rejected", move))
	}

	reply := game.NullMove
	if _, over := state.Result(); !over {
		candidate := opponent.ProposeMove(state.Copy())
		if state.Apply(candidate) {
			reply = candidate
		} else {
			log.Warn().Msgf("opponent proposed illegal reply %v after %v", candidate, move)
		}
	}

	child := newNode(n, state, move, reply)
	n.children = append(n.children, child)

	if prior != nil && len(n.unexpanded) == 0 {
		n.assignPriors(prior)
	}
	return child
}

// assignPriors asks prior for the children's move priors once n is fully
// expanded. The caller holds n's lock.
func (n *Node) assignPriors(prior game.Prior) {
	moves := make([]game.Move, len(n.children))
	for i, child := range n.children {
		moves[i] = child.move
	}

	priors := prior(n.state.Copy(), moves)
	if len(priors) != len(moves) {
		log.Warn().Msgf("prior returned %d values for %d moves", len(priors), len(moves))
		return
	}
	for i, child := range n.children {
		child.SetPrior(priors[i])
	}
}

func (n *Node) applyLoss() {
	n.Lock()
	defer n.Unlock()

	n.vloss += VirtualLoss
}

// backup records one simulation result. The node the simulation started
// from (first) also clears its virtual loss; ancestors count it as a visit
// to one of their children. It returns the parent to continue with.
func (n *Node) backup(value float64, first bool) *Node {
	n.Lock()
	defer n.Unlock()

	n.visits++
	n.value += value
	if first {
		n.vloss -= VirtualLoss
		if n.vloss < 0 {
			panic("virtual loss went negative")
		}
	} else {
		n.childVisits++
	}
	return n.parent
}

func (n *Node) historyLength() int {
	return len(n.state.History())
}

func (n *Node) String() string {
	n.Lock()
	defer n.Unlock()

	return fmt.Sprintf("Node{move=%v, reply=%v, visits=%d, value=%.3f, prior=%.3f, vloss=%d, children=%d, unexpanded=%d}",
		n.move, n.reply, n.visits, n.value, n.prior, n.vloss, len(n.children), len(n.unexpanded))
}
