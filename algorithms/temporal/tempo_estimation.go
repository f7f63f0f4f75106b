package temporal

import (
	"github.com/jrb00013/aamati/algorithms/common"
	"github.com/jrb00013/aamati/algorithms/spectral"
	"github.com/jrb00013/aamati/algorithms/windowing"
)

const (
	// DefaultTempo is returned when no periodicity survives the plausibility
	// filter
	DefaultTempo = 120.0

	// Plausible instrument-tempo range in BPM; candidates outside are
	// discarded before the median vote
	MinPlausibleTempo = 60.0
	MaxPlausibleTempo = 200.0
)

// TempoEstimation estimates tempo from the periodicity of the energy
// envelope
type TempoEstimation struct {
	envelopeExtractor *Envelope
	fft               *spectral.FFT
}

// NewTempoEstimation creates a new tempo estimator
func NewTempoEstimation() *TempoEstimation {
	return &TempoEstimation{
		envelopeExtractor: NewEnvelope(),
		fft:               spectral.NewFFT(),
	}
}

// EstimateTempo estimates tempo in BPM by autocorrelating the RMS energy
// envelope, mapping each local-maximum lag to a BPM candidate, discarding
// candidates outside the plausible range, and returning the median of the
// survivors. The median is used instead of the mean because octave-doubled
// peaks would otherwise drag the estimate.
func (te *TempoEstimation) EstimateTempo(signal []float64, sampleRate int) float64 {
	if len(signal) == 0 || sampleRate <= 0 {
		return DefaultTempo
	}

	// 100ms frames with 75% overlap track beat-scale energy movement
	frameSize := sampleRate / 10
	hopSize := frameSize / 4
	if frameSize <= 0 || hopSize <= 0 {
		return DefaultTempo
	}

	envelope := te.envelopeExtractor.ComputeRMS(signal, frameSize, hopSize)
	if len(envelope) < 10 {
		return DefaultTempo
	}

	// Center and taper the envelope so its DC offset and frame edges do
	// not dominate the autocorrelation
	mean := common.Mean(envelope)
	for i := range envelope {
		envelope[i] -= mean
	}
	envelope = windowing.NewHann(len(envelope)).Apply(envelope)

	maxLag := len(envelope) / 2
	autocorr := te.fft.Autocorrelate(envelope, maxLag)
	if len(autocorr) == 0 {
		return DefaultTempo
	}

	hopSeconds := float64(hopSize) / float64(sampleRate)
	candidates := te.peakLagsToBPM(autocorr, hopSeconds)
	if len(candidates) == 0 {
		return DefaultTempo
	}

	return common.Median(candidates)
}

// peakLagsToBPM finds local maxima in the autocorrelation and converts each
// peak lag to a BPM candidate within the plausible range
func (te *TempoEstimation) peakLagsToBPM(autocorr []float64, hopSeconds float64) []float64 {
	var candidates []float64
	for lag := 2; lag < len(autocorr)-1; lag++ {
		if autocorr[lag] <= autocorr[lag-1] || autocorr[lag] <= autocorr[lag+1] {
			continue
		}
		// Weak peaks are noise, not beat periods
		if autocorr[lag] < 0.1 {
			continue
		}
		period := float64(lag) * hopSeconds
		if period <= 0 {
			continue
		}
		bpm := 60.0 / period
		if bpm < MinPlausibleTempo || bpm > MaxPlausibleTempo {
			continue
		}
		candidates = append(candidates, bpm)
	}
	return candidates
}
