package filters

// DCRemoval is a first-order DC blocking filter:
//
//	y[n] = x[n] - x[n-1] + R*y[n-1]
//
// with the pole at R = 0.995, cutting off around 8 Hz at 44.1 kHz. A DC
// bias in incoming audio would inflate RMS energy and mask onset
// transients, so the analysis path runs this before feature extraction.
type DCRemoval struct {
	poleLocation float64
	x1           float64
	y1           float64
}

// NewDCRemoval creates a DC removal filter with the standard audio pole
func NewDCRemoval() *DCRemoval {
	return &DCRemoval{poleLocation: 0.995}
}

// ProcessInPlace filters the signal, carrying state across calls
func (dc *DCRemoval) ProcessInPlace(signal []float64) {
	for i, x := range signal {
		y := x - dc.x1 + dc.poleLocation*dc.y1
		dc.x1 = x
		dc.y1 = y
		signal[i] = y
	}
}

// Reset clears the filter state
func (dc *DCRemoval) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}
