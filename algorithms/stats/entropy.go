package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ShannonEntropy computes the Shannon entropy (natural log) of the
// distribution of data values over a fixed-bin histogram. Bin counts are
// add-one smoothed so empty bins never produce log(0). Used for
// inter-onset-interval entropy, where high values mean irregular timing.
func ShannonEntropy(data []float64, bins int) float64 {
	if len(data) == 0 || bins <= 0 {
		return 0.0
	}

	minVal := floats.Min(data)
	maxVal := floats.Max(data)
	width := (maxVal - minVal) / float64(bins)

	counts := make([]float64, bins)
	if width <= 0 {
		// Constant data collapses into one bin
		counts[0] = float64(len(data))
	} else {
		for _, v := range data {
			idx := int((v - minVal) / width)
			if idx >= bins {
				idx = bins - 1
			}
			counts[idx]++
		}
	}

	// Add-one smoothing
	total := 0.0
	for i := range counts {
		counts[i]++
		total += counts[i]
	}

	entropy := 0.0
	for _, c := range counts {
		p := c / total
		entropy -= p * math.Log(p)
	}
	return entropy
}
