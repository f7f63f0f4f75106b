package temporal

import (
	"gonum.org/v1/gonum/floats"
)

// Onset is a detected energy-rise event in a signal
type Onset struct {
	// Time of the onset in seconds from the start of the signal
	Time float64
	// Strength is the magnitude of the energy rise that triggered the onset
	Strength float64
}

// OnsetDetection detects note/event onsets in audio signals using an
// energy-rise method: the positive derivative of the RMS envelope is
// thresholded relative to its own peak.
type OnsetDetection struct {
	envelopeExtractor *Envelope
	frameSize         int
	hopSize           int
}

// NewOnsetDetection creates a new onset detector with the default frame
// geometry (512-sample frames, 50% overlap)
func NewOnsetDetection() *OnsetDetection {
	return &OnsetDetection{
		envelopeExtractor: NewEnvelope(),
		frameSize:         512,
		hopSize:           256,
	}
}

// DetectOnsetsEnergy detects onsets using the energy-rise method.
// threshold is relative to the largest energy rise in the signal (0..1);
// minInterval in seconds suppresses double triggers.
func (od *OnsetDetection) DetectOnsetsEnergy(signal []float64, sampleRate int, threshold, minInterval float64) []Onset {
	if len(signal) == 0 || sampleRate <= 0 {
		return nil
	}

	envelope := od.envelopeExtractor.ComputeRMS(signal, od.frameSize, od.hopSize)
	if len(envelope) < 2 {
		return nil
	}

	// Positive energy derivative only; falls are not onsets
	energyRise := make([]float64, len(envelope)-1)
	for i := range energyRise {
		diff := envelope[i+1] - envelope[i]
		if diff > 0 {
			energyRise[i] = diff
		}
	}

	maxRise := floats.Max(energyRise)
	if maxRise <= 0 {
		return nil
	}

	hopSeconds := float64(od.hopSize) / float64(sampleRate)
	minFrames := int(minInterval / hopSeconds)
	if minFrames < 1 {
		minFrames = 1
	}

	var onsets []Onset
	lastFrame := -minFrames
	for i, rise := range energyRise {
		if rise < threshold*maxRise {
			continue
		}
		if i-lastFrame < minFrames {
			continue
		}
		// Local maximum check against immediate neighbors
		if i > 0 && energyRise[i-1] > rise {
			continue
		}
		if i < len(energyRise)-1 && energyRise[i+1] > rise {
			continue
		}
		onsets = append(onsets, Onset{
			Time:     float64(i+1) * hopSeconds,
			Strength: rise / maxRise,
		})
		lastFrame = i
	}

	return onsets
}

// InterOnsetIntervals returns the time gaps between consecutive onsets
func InterOnsetIntervals(onsets []Onset) []float64 {
	if len(onsets) < 2 {
		return nil
	}
	intervals := make([]float64, len(onsets)-1)
	for i := range intervals {
		intervals[i] = onsets[i+1].Time - onsets[i].Time
	}
	return intervals
}
