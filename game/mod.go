package game

// Any game that aims to be searchable by the searcher package implements
// State; the searcher never looks past this interface.

type Move interface {
	String() string
}

type nullMove struct{}

func (nullMove) String() string { return "0000" }

// NullMove stands in for a move that does not exist (terminal root, missing
// half-move in a round).
var NullMove Move = nullMove{}

// Outcome is a finished game's result from the perspective fixed by the
// state engine.
type Outcome int

const (
	Loss Outcome = -1
	Draw Outcome = 0
	Win  Outcome = 1
)

func (o Outcome) Score() float64 {
	return float64(o)
}

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "draw"
	}
}

// State is mutable: Apply advances it in place, so callers that need to keep
// a snapshot must Copy first.
type State interface {
	LegalMoves() []Move
	Apply(Move) bool
	Result() (Outcome, bool)
	Copy() State
	History() []Move // Half-moves played so far
}

// Seated is implemented by states that can be rescored for the player to
// move. Game loops hand such a copy to each agent so every searcher
// maximizes its own result.
type Seated interface {
	State
	ForPlayerToMove() State
}

// Agent proposes a single move for the player to move in a state.
type Agent interface {
	ProposeMove(State) Move
}

// Evaluates the game state to a score between -1 and 1 from the state's
// fixed perspective.
type Evaluate func(State) float64

// Prior returns one prior probability per move, in the order given.
type Prior func(State, []Move) []float64
