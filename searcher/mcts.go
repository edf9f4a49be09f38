package searcher

import (
	"context"
	"selfplay/experiments/metrics"
	"selfplay/game"
	"selfplay/utils"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(mcts *MCTS)

// Decision is the round picked by a search: our move and the reply the
// opponent model expects, either of which may be game.NullMove.
type Decision struct {
	Move  game.Move
	Reply game.Move
}

type MCTS struct {
	goroutines  int
	duration    time.Duration
	episodes    int
	cutoff      int
	repetitions int
	evaluate    game.Evaluate
	prior       game.Prior
	reuse       bool
	seeds       *rand.Rand
	root        *Node
	metrics     metrics.Collector
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

func WithEpisodes(episodes int) Option {
	return func(m *MCTS) {
		if episodes > 0 {
			m.episodes = episodes
		}
	}
}

// WithCutoff caps the half-moves of each rollout playout.
func WithCutoff(depth int) Option {
	return func(m *MCTS) {
		if depth > 0 {
			m.cutoff = depth
		}
	}
}

func WithRepetitions(repetitions int) Option {
	return func(m *MCTS) {
		if repetitions > 0 {
			m.repetitions = repetitions
		}
	}
}

// WithEvaluationFn replaces rollouts with an external leaf evaluator.
func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(m *MCTS) {
		if evaluate != nil {
			m.evaluate = evaluate
		}
	}
}

// WithPriorFn sets children's priors once their parent is fully expanded.
func WithPriorFn(prior game.Prior) Option {
	return func(m *MCTS) {
		if prior != nil {
			m.prior = prior
		}
	}
}

// WithTreeReuse keeps the tree between searches and continues from the
// subtree matching the moves played since.
func WithTreeReuse() Option {
	return func(m *MCTS) {
		m.reuse = true
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seeds = rand.New(rand.NewSource(seed))
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(goroutines int, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines:  max(1, goroutines),
		cutoff:      MaxCutoff,
		repetitions: DefaultRepetitions,
		seeds:       rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.episodes <= 0 && m.duration <= 0 {
		panic("Must specify search episodes or duration")
	}
	return m
}

// Root is the root of the last search, nil before the first one.
func (m *MCTS) Root() *Node {
	return m.root
}

// SearchMove grows the tree from state and returns the most promising round.
// opponent plays the reply half of every round during expansion. noise adds
// Dirichlet exploration noise to the final selection; followup also reports
// the opponent reply expected after our move.
//
// The search stops after the configured episodes, after the configured
// duration, or when ctx is done, whichever comes first. SearchMove is not
// safe for concurrent use; the goroutines it starts are joined before it
// returns.
func (m *MCTS) SearchMove(ctx context.Context, state game.State, opponent game.Agent, noise, followup bool) (Decision, metrics.SearchMetric) {
	if opponent == nil {
		panic("opponent agent is required")
	}
	decision := Decision{Move: game.NullMove, Reply: game.NullMove}
	if _, over := state.Result(); over {
		return decision, metrics.SearchMetric{}
	}

	m.findRoot(state)

	// Run simulations to collect statistics
	m.metrics.Start(m.goroutines, m.cutoff, m.repetitions)
	if m.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.duration)
		defer cancel()
	}
	if m.episodes > 0 {
		m.iterate(ctx, opponent)
	} else {
		m.countdown(ctx, opponent)
	}

	policy := ComputePolicy(m.root, noise, rand.NewSource(m.seeds.Uint64()))
	children := m.root.Children()
	if best := utils.ArgMax(policy); best >= 0 {
		decision = extractRound(m.root, children[best], followup)
	}
	metric := m.metrics.Complete(m.root.Visits(), len(children))

	log.Debug().
		Int("visits", m.root.Visits()).
		Int("children", len(children)).
		Dur("elapsed", metric.Duration).
		Msgf("searched move %v (reply %v)", decision.Move, decision.Reply)

	return decision, metric
}

// extractRound reads the chosen round off child's history relative to root.
func extractRound(root, child *Node, followup bool) Decision {
	decision := Decision{Move: game.NullMove, Reply: game.NullMove}
	history := child.state.History()
	round := history[min(root.historyLength(), len(history)):]
	if len(round) > 0 {
		decision.Move = round[0]
	}
	if followup && len(round) > 1 {
		decision.Reply = round[1]
	}
	return decision
}

func (m *MCTS) findRoot(state game.State) {
	if !m.reuse || m.root == nil {
		m.root = newRoot(state)
		m.metrics.SetTreeReset(true)
		return
	}

	root := traverse(m.root, state.History())
	if root == nil {
		m.root = newRoot(state)
		m.metrics.SetTreeReset(true)
	} else {
		root.Lock()
		root.parent = nil
		root.visits = max(1, root.visits)
		root.Unlock()
		m.root = root
		m.metrics.SetTreeReset(false)
	}
}

// traverse follows the half-moves played since root was searched and returns
// the node they lead to, or nil if the tree never explored that line.
func traverse(root *Node, history []game.Move) *Node {
	played := root.state.History()
	if len(history) < len(played) {
		return nil
	}
	for i, move := range played {
		if history[i] != move {
			log.Warn().Msgf("history diverges from the searched root at half-move %d", i)
			return nil
		}
	}

	node := root
	path := history[len(played):]
	for len(path) > 0 {
		next, consumed := node.followEdge(path)
		if next == nil { // Line has not been expanded
			return nil
		}
		node = next
		path = path[consumed:]
	}
	return node
}

// followEdge returns the child whose round starts path, and how many
// half-moves that round spans.
func (n *Node) followEdge(path []game.Move) (*Node, int) {
	for _, child := range n.Children() {
		if child.move != path[0] {
			continue
		}
		if child.reply == game.NullMove {
			return child, 1
		}
		if len(path) > 1 && child.reply == path[1] {
			return child, 2
		}
	}
	return nil, 0
}

func (m *MCTS) iterate(ctx context.Context, opponent game.Agent) {
	task := make(chan any, m.episodes)
	for i := 0; i < m.episodes; i++ {
		task <- nil
	}
	close(task)

	var wg sync.WaitGroup
	for i := 0; i < m.goroutines; i++ {
		wg.Add(1)
		rng := rand.New(rand.NewSource(m.seeds.Uint64()))
		go func() {
			defer wg.Done()

			for range task {
				if ctx.Err() != nil {
					return
				}
				m.simulate(opponent, rng)
				m.metrics.AddEpisode()
			}
		}()
	}

	wg.Wait()
}

func (m *MCTS) countdown(ctx context.Context, opponent game.Agent) {
	var wg sync.WaitGroup
	for i := 0; i < m.goroutines; i++ {
		wg.Add(1)
		rng := rand.New(rand.NewSource(m.seeds.Uint64()))
		go func() {
			defer wg.Done()

			for ctx.Err() == nil {
				m.simulate(opponent, rng)
				m.metrics.AddEpisode()
			}
		}()
	}

	wg.Wait()
}

func (m *MCTS) simulate(opponent game.Agent, rng *rand.Rand) {
	start := time.Now()
	newNode := selectThenExpand(m.root, opponent, m.prior)
	value := m.estimate(newNode, rng)
	backup(newNode, value)

	if e := log.Trace(); e.Enabled() {
		e.Dur("elapsed", time.Since(start)).Msg("search iteration")
	}
}

func selectThenExpand(root *Node, opponent game.Agent, prior game.Prior) *Node {
	node, done := root.selectOrExpand(opponent, prior)
	for !done {
		node, done = node.selectOrExpand(opponent, prior)
	}
	return node
}

func (m *MCTS) estimate(node *Node, rng *rand.Rand) float64 {
	if node.terminal {
		return node.outcome.Score()
	}
	if m.evaluate != nil {
		return m.evaluate(node.State())
	}
	rollout := NewRollout(m.cutoff, m.repetitions)
	rollout.metrics = m.metrics
	return rollout.Run(node.State(), rng)
}

func backup(newNode *Node, value float64) {
	node := newNode.backup(value, true)
	for node != nil {
		node = node.backup(value, false)
	}
}
