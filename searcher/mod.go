package searcher

import (
	"math"
)

// UCB1 = q/n + c*sqrt(ln(N)/n)
func ucb1(rewards float64, visits int, parentVisits int) float64 {
	if visits == 0 { // Prevent division by zero
		panic("cannot compute UCB1: 0 visits")
	}

	return rewards/float64(visits) + UCB1C*math.Sqrt(math.Log(float64(parentVisits))/float64(visits))
}

// PUCT = q/(1+n) + c*p*sqrt(sum of child visits)/(1+n) - virtual loss
func puct(rewards float64, visits int, childVisits int, prior float64, vloss int) float64 {
	n := 1 + float64(visits)
	return rewards/n + PUCTC*prior*math.Sqrt(float64(childVisits))/n - float64(vloss)
}
