package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateWeights(t *testing.T) {
	testCases := []struct {
		name  string
		count int
	}{
		{name: "empty", count: 0},
		{name: "single", count: 1},
		{name: "small", count: 2},
		{name: "large", count: 50},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			weights := GenerateWeights(rng, tc.count)

			assert.Len(t, weights, tc.count)

			if tc.count == 0 {
				return
			}

			sum := 0.0
			for i, w := range weights {
				assert.Greater(t, w, 0.0)
				if i > 0 {
					assert.GreaterOrEqual(t, weights[i-1], w, "weights must be sorted descending")
				}
				sum += w
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		})
	}
}

func TestGenerateWeightsReproducible(t *testing.T) {
	first := GenerateWeights(rand.New(rand.NewSource(7)), 5)
	second := GenerateWeights(rand.New(rand.NewSource(7)), 5)
	assert.Equal(t, first, second)
}
