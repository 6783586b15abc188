package sim

import (
	"math/rand"
	"sort"
)

// GenerateWeights draws count uniform(0,1) samples, sorts them descending
// and normalizes them so they sum to one. The result is the probability-like
// vector bots use to split an investment budget across sub-choices.
// count == 0 returns an empty vector.
func GenerateWeights(rng *rand.Rand, count int) []float64 {
	weights := make([]float64, count)
	sum := 0.0
	for i := range weights {
		weights[i] = rng.Float64()
		sum += weights[i]
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(weights)))
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}
