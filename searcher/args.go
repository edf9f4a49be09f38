package searcher

// Hyperparameters for MCTS

const VirtualLoss = 1 // Penalty held by a node while a goroutine is simulating through it

const UCB1C = 2.0  // Exploration constant of UCB1
const PUCTC = 10.0 // Exploration constant of PUCT

// Temperature schedule: tau = 1 below TemperatureMoves half-moves, then
// n/(1+n^TemperatureDecay)
const TemperatureMoves = 30
const TemperatureDecay = 1.3

// Root exploration noise
const NoiseEpsilon = 0.25
const DirichletAlpha = 0.03

// Rollout defaults
const MaxCutoff = 100
const DefaultRepetitions = 500
