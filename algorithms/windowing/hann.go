package windowing

import (
	"math"
)

// Hann is a periodic Hann window, used to taper envelopes before
// FFT-based periodicity analysis so the frame edges do not smear the
// autocorrelation peaks
type Hann struct {
	coefficients []float64
}

// NewHann creates a Hann window of the given size
func NewHann(size int) *Hann {
	coefficients := make([]float64, size)
	for i := range coefficients {
		coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/float64(size)))
	}
	return &Hann{coefficients: coefficients}
}

// Size returns the window length
func (h *Hann) Size() int {
	return len(h.coefficients)
}

// Apply returns the windowed copy of a signal. Signals of a different
// length than the window return nil.
func (h *Hann) Apply(signal []float64) []float64 {
	if len(signal) != len(h.coefficients) {
		return nil
	}
	windowed := make([]float64, len(signal))
	for i, s := range signal {
		windowed[i] = s * h.coefficients[i]
	}
	return windowed
}
