// Package common — random.go содержит взвешенный выбор,
// общий для боксов (гача) и рулетки.
package common

// WeightedIndex возвращает индекс элемента, выбранного пропорционально весу.
// roll — равномерное число в [0, 1), обычно rand.Float64().
// Вероятность выбора i-го элемента = weights[i] / sum(weights).
//
// Элементы с нулевым или отрицательным весом никогда не выбираются.
// Если суммарный вес нулевой — возвращает -1.
func WeightedIndex(weights []float64, roll float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}

	target := roll * total
	var acc float64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		if target < acc {
			return i
		}
	}

	// roll == 0.999... и накопленная погрешность float — отдаём последний валидный
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return -1
}
