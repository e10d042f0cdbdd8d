package predict

import (
	"math"
	"math/rand"
)

// poissonPMF is the probability of exactly k goals given an expectation
func poissonPMF(lambda float64, k int) float64 {
	// lgamma keeps large k from overflowing the factorial
	lg, _ := math.Lgamma(float64(k + 1))
	return math.Exp(float64(k)*math.Log(lambda) - lambda - lg)
}

// outcomeProbabilities sums the score grid 0..maxGoals for both sides
func outcomeProbabilities(homeExpected, awayExpected float64, maxGoals int) (homeWin, draw, awayWin float64) {
	home := make([]float64, maxGoals+1)
	away := make([]float64, maxGoals+1)
	for k := 0; k <= maxGoals; k++ {
		home[k] = poissonPMF(homeExpected, k)
		away[k] = poissonPMF(awayExpected, k)
	}
	for i := 0; i <= maxGoals; i++ {
		draw += home[i] * away[i]
		for j := 0; j < i; j++ {
			homeWin += home[i] * away[j]
			awayWin += away[i] * home[j]
		}
	}
	return homeWin, draw, awayWin
}

// poissonRandom generates a single random number from Poisson distribution
// Uses Knuth's algorithm for small lambda
func poissonRandom(lambda float64, rng *rand.Rand) int {
	if lambda <= 0 {
		return 0
	}
	if lambda < 30 {
		l := math.Exp(-lambda)
		k := 0
		p := 1.0
		for p > l {
			k++
			p *= rng.Float64()
		}
		return k - 1
	}
	// normal approximation for large lambda
	n := int(math.Round(lambda + math.Sqrt(lambda)*rng.NormFloat64()))
	if n < 0 {
		return 0
	}
	return n
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
