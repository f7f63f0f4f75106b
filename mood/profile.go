package mood

import (
	"github.com/jrb00013/aamati/algorithms/common"
)

// EmotionalProfile is the six-dimensional continuous descriptor associated
// with a mood. All dimensions live in [0, 1].
type EmotionalProfile struct {
	Energy       float64 `json:"energy"`
	Tension      float64 `json:"tension"`
	Complexity   float64 `json:"complexity"`
	Danceability float64 `json:"danceability"`
	Warmth       float64 `json:"warmth"`
	Brightness   float64 `json:"brightness"`
}

// GrooveProfile controls rhythmic humanization. All dimensions live in
// [0, 1]; a zero profile disables shaping entirely.
type GrooveProfile struct {
	Humanization      float64 `json:"humanization"`
	SwingAmount       float64 `json:"swing_amount"`
	AccentPattern     float64 `json:"accent_pattern"`
	MicroTiming       float64 `json:"micro_timing"`
	VelocityVariation float64 `json:"velocity_variation"`
	GhostNotes        float64 `json:"ghost_notes"`
}

// Per-mood emotional profile constants, indexed by Label. Fixed arrays
// instead of string-keyed maps: O(1) lookup and the compiler checks the
// table covers every label.
var emotionalProfiles = [NumLabels]EmotionalProfile{
	Chill:       {Energy: 0.2, Tension: 0.1, Complexity: 0.3, Danceability: 0.4, Warmth: 0.8, Brightness: 0.6},
	Energetic:   {Energy: 0.9, Tension: 0.6, Complexity: 0.7, Danceability: 0.9, Warmth: 0.4, Brightness: 0.9},
	Suspenseful: {Energy: 0.6, Tension: 0.9, Complexity: 0.8, Danceability: 0.3, Warmth: 0.2, Brightness: 0.4},
	Uplifting:   {Energy: 0.8, Tension: 0.2, Complexity: 0.5, Danceability: 0.8, Warmth: 0.7, Brightness: 0.9},
	Ominous:     {Energy: 0.4, Tension: 0.8, Complexity: 0.6, Danceability: 0.2, Warmth: 0.1, Brightness: 0.2},
	Romantic:    {Energy: 0.3, Tension: 0.3, Complexity: 0.7, Danceability: 0.5, Warmth: 0.9, Brightness: 0.7},
	Gritty:      {Energy: 0.7, Tension: 0.7, Complexity: 0.6, Danceability: 0.6, Warmth: 0.3, Brightness: 0.5},
	Dreamy:      {Energy: 0.2, Tension: 0.1, Complexity: 0.8, Danceability: 0.3, Warmth: 0.8, Brightness: 0.8},
	Frantic:     {Energy: 0.95, Tension: 0.9, Complexity: 0.9, Danceability: 0.7, Warmth: 0.2, Brightness: 0.8},
	Focused:     {Energy: 0.6, Tension: 0.4, Complexity: 0.4, Danceability: 0.6, Warmth: 0.5, Brightness: 0.6},
}

// Per-mood groove profile constants, indexed by Label
var grooveProfiles = [NumLabels]GrooveProfile{
	Chill:       {Humanization: 0.8, SwingAmount: 0.3, AccentPattern: 0.2, MicroTiming: 0.7, VelocityVariation: 0.3, GhostNotes: 0.1},
	Energetic:   {Humanization: 0.6, SwingAmount: 0.1, AccentPattern: 0.9, MicroTiming: 0.3, VelocityVariation: 0.8, GhostNotes: 0.2},
	Suspenseful: {Humanization: 0.4, SwingAmount: 0.0, AccentPattern: 0.7, MicroTiming: 0.2, VelocityVariation: 0.6, GhostNotes: 0.0},
	Uplifting:   {Humanization: 0.7, SwingAmount: 0.2, AccentPattern: 0.8, MicroTiming: 0.5, VelocityVariation: 0.6, GhostNotes: 0.1},
	Ominous:     {Humanization: 0.3, SwingAmount: 0.0, AccentPattern: 0.5, MicroTiming: 0.1, VelocityVariation: 0.4, GhostNotes: 0.0},
	Romantic:    {Humanization: 0.9, SwingAmount: 0.4, AccentPattern: 0.3, MicroTiming: 0.8, VelocityVariation: 0.4, GhostNotes: 0.2},
	Gritty:      {Humanization: 0.5, SwingAmount: 0.1, AccentPattern: 0.8, MicroTiming: 0.4, VelocityVariation: 0.7, GhostNotes: 0.3},
	Dreamy:      {Humanization: 0.8, SwingAmount: 0.5, AccentPattern: 0.2, MicroTiming: 0.9, VelocityVariation: 0.3, GhostNotes: 0.3},
	Frantic:     {Humanization: 0.3, SwingAmount: 0.0, AccentPattern: 0.9, MicroTiming: 0.1, VelocityVariation: 0.9, GhostNotes: 0.1},
	Focused:     {Humanization: 0.4, SwingAmount: 0.0, AccentPattern: 0.6, MicroTiming: 0.2, VelocityVariation: 0.5, GhostNotes: 0.0},
}

// NeutralEmotionalProfile is the midpoint profile used when no mood decision
// is available yet
func NeutralEmotionalProfile() EmotionalProfile {
	return EmotionalProfile{
		Energy: 0.5, Tension: 0.5, Complexity: 0.5,
		Danceability: 0.5, Warmth: 0.5, Brightness: 0.5,
	}
}

// EmotionalProfileFor returns the constant emotional profile for a mood.
// Runtime profiles are always derived from these constants by blending; the
// table itself is never mutated.
func EmotionalProfileFor(label Label) EmotionalProfile {
	if !label.Valid() {
		return NeutralEmotionalProfile()
	}
	return emotionalProfiles[label]
}

// GrooveProfileFor returns the constant groove profile for a mood
func GrooveProfileFor(label Label) GrooveProfile {
	if !label.Valid() {
		return GrooveProfile{}
	}
	return grooveProfiles[label]
}

// Blend linearly interpolates every dimension between a and b.
// weight is the share of a: Blend(a, b, 1) == a, Blend(a, b, 0) == b, and
// blending any profile with itself returns it unchanged.
func Blend(a, b EmotionalProfile, weight float64) EmotionalProfile {
	w := common.Clamp(weight, 0, 1)
	// The lerp form b + (a-b)*w is not exact at w == 1, so the
	// endpoints return their operand directly
	if w == 0 {
		return b
	}
	if w == 1 {
		return a
	}
	return EmotionalProfile{
		Energy:       common.Lerp(b.Energy, a.Energy, w),
		Tension:      common.Lerp(b.Tension, a.Tension, w),
		Complexity:   common.Lerp(b.Complexity, a.Complexity, w),
		Danceability: common.Lerp(b.Danceability, a.Danceability, w),
		Warmth:       common.Lerp(b.Warmth, a.Warmth, w),
		Brightness:   common.Lerp(b.Brightness, a.Brightness, w),
	}
}

// Scaled returns the groove profile with every dimension multiplied by
// intensity and clamped back to [0, 1]
func (g GrooveProfile) Scaled(intensity float64) GrooveProfile {
	return GrooveProfile{
		Humanization:      common.Clamp(g.Humanization*intensity, 0, 1),
		SwingAmount:       common.Clamp(g.SwingAmount*intensity, 0, 1),
		AccentPattern:     common.Clamp(g.AccentPattern*intensity, 0, 1),
		MicroTiming:       common.Clamp(g.MicroTiming*intensity, 0, 1),
		VelocityVariation: common.Clamp(g.VelocityVariation*intensity, 0, 1),
		GhostNotes:        common.Clamp(g.GhostNotes*intensity, 0, 1),
	}
}

// IsZero reports whether every groove dimension is zero, which makes the
// shaper a no-op
func (g GrooveProfile) IsZero() bool {
	return g == GrooveProfile{}
}
