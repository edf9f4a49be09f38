package searcher

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"
)

// Temperature anneals from 1 towards greedy selection as the game gets longer.
func Temperature(halfMoves int) float64 {
	if halfMoves < TemperatureMoves {
		return 1
	}
	n := float64(halfMoves)
	return n / (1 + math.Pow(n, TemperatureDecay))
}

// ComputePolicy turns the visit counts of node's children into a
// move-selection vector, one entry per child in child order. Scores are
// visits^(1/tau) divided by node's own visits^(1/tau), so the vector need not
// sum to 1. With noise, a Dirichlet sample drawn from src is added on top of
// the damped scores.
func ComputePolicy(node *Node, noise bool, src rand.Source) []float64 {
	children := node.Children()
	if len(children) == 0 {
		return []float64{}
	}

	exponent := 1 / Temperature(node.historyLength())
	normalizer := math.Pow(float64(node.Visits()), exponent)

	policy := make([]float64, len(children))
	for i, child := range children {
		policy[i] = math.Pow(float64(child.Visits()), exponent) / normalizer
	}

	if noise {
		sample := dirichlet(len(policy), src)
		for i := range policy {
			policy[i] = (1-NoiseEpsilon)*policy[i] + sample[i]
		}
	}
	return policy
}

// dirichlet samples k weights from a symmetric Dirichlet(DirichletAlpha).
// Such a small concentration can underflow every gamma draw to zero; that
// sample is replaced by a uniform one.
func dirichlet(k int, src rand.Source) []float64 {
	alpha := make([]float64, k)
	for i := range alpha {
		alpha[i] = DirichletAlpha
	}
	sample := distmv.NewDirichlet(alpha, src).Rand(nil)

	for _, v := range sample {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			for i := range sample {
				sample[i] = 1 / float64(k)
			}
			break
		}
	}
	return sample
}

// Distribution returns the children's visit shares, summing to 1 unless no
// child has been visited.
func Distribution(node *Node) []float64 {
	children := node.Children()
	shares := make([]float64, len(children))
	total := 0
	for i, child := range children {
		visits := child.Visits()
		shares[i] = float64(visits)
		total += visits
	}
	if total == 0 {
		return shares
	}
	for i := range shares {
		shares[i] /= float64(total)
	}
	return shares
}
