package common

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightedIndex(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		roll    float64
		want    int
	}{
		{"пустой срез", nil, 0.5, -1},
		{"нулевой суммарный вес", []float64{0, 0}, 0.5, -1},
		{"отрицательные веса игнорируются", []float64{-5, 0, 10}, 0.5, 2},
		{"один элемент", []float64{1}, 0.99, 0},
		{"бросок в первый", []float64{50, 50}, 0.25, 0},
		{"бросок во второй", []float64{50, 50}, 0.75, 1},
		{"граница между элементами уходит вправо", []float64{50, 50}, 0.5, 1},
		{"roll = 0 даёт первый валидный", []float64{0, 30, 70}, 0, 1},
		{"непропорциональные веса", []float64{1, 9}, 0.05, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeightedIndex(tt.weights, tt.roll))
		})
	}
}

// TestWeightedIndexDistribution проверяет, что частоты выбора сходятся
// к пропорции весов. Генератор с фиксированным сидом — тест детерминирован.
func TestWeightedIndexDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	weights := []float64{90, 10}

	const draws = 10000
	counts := make([]int, len(weights))
	for i := 0; i < draws; i++ {
		idx := WeightedIndex(weights, rng.Float64())
		assert.GreaterOrEqual(t, idx, 0)
		counts[idx]++
	}

	// Допуск ±3% от общего числа бросков
	assert.InDelta(t, 9000, counts[0], 300)
	assert.InDelta(t, 1000, counts[1], 300)
}

// TestWeightedIndexNeverPicksZeroWeight — элемент с нулевым весом
// не выбирается ни при каком броске.
func TestWeightedIndexNeverPicksZeroWeight(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	weights := []float64{50, 0, 50}

	for i := 0; i < 5000; i++ {
		idx := WeightedIndex(weights, rng.Float64())
		assert.NotEqual(t, 1, idx)
	}
}
