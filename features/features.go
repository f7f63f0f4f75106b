package features

// GrooveFeatures is the numeric feature vector produced per analysis window
// (streaming) or per file (batch). Instances are produced fresh and replaced
// wholesale, never mutated in place.
type GrooveFeatures struct {
	// Tempo in BPM
	Tempo float64 `json:"tempo"`
	// Swing is timing deviation from straight rhythm. Streaming measures
	// deviation of inter-onset pairs from the 2:1 swing ratio; batch MIDI
	// measures deviation from a quantized grid. The two are different
	// quantities under the same name and are kept that way deliberately;
	// the trained model's contract was fixed against this behavior.
	Swing float64 `json:"swing"`
	// Density in note/event onsets per second
	Density float64 `json:"density"`
	// DynamicRange in MIDI velocity units (0-127)
	DynamicRange float64 `json:"dynamic_range"`
	// Energy in [0, 1]
	Energy float64 `json:"energy"`

	VelocityMean float64 `json:"velocity_mean"`
	VelocityStd  float64 `json:"velocity_std"`
	PitchMean    float64 `json:"pitch_mean"`
	PitchRange   float64 `json:"pitch_range"`
	Polyphony    float64 `json:"polyphony"`
	Syncopation  float64 `json:"syncopation"`
	OnsetEntropy float64 `json:"onset_entropy"`
}

// ModelInputSize is the width of the classifier's input tensor
const ModelInputSize = 5

// Vector returns the subset of features the classifier consumes, in the
// model's fixed column order: tempo, swing, density, dynamicRange, energy
func (f GrooveFeatures) Vector() [ModelInputSize]float64 {
	return [ModelInputSize]float64{f.Tempo, f.Swing, f.Density, f.DynamicRange, f.Energy}
}

// Fallback is the documented degraded feature vector: neutral 120 BPM tempo
// with every other feature zeroed. Returned when a MIDI file has fewer than
// two onsets, zero duration, or cannot be parsed.
func Fallback() GrooveFeatures {
	return GrooveFeatures{Tempo: 120}
}
