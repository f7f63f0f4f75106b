package generate

import (
	"github.com/jrb00013/aamati/mood"
)

// Named scales as pitch-class sets relative to the root
var (
	scaleMajor        = []int{0, 2, 4, 5, 7, 9, 11}
	scaleMixolydian   = []int{0, 2, 4, 5, 7, 9, 10}
	scaleNaturalMinor = []int{0, 2, 3, 5, 7, 8, 10}
	scaleBlues        = []int{0, 3, 5, 6, 7, 10}
	scalePentatonic   = []int{0, 2, 4, 7, 9}
)

// character captures how a mood generates raw material: which scale it
// draws from, how dense and long its notes are, and how loud and how
// regular they land
type character struct {
	scale        []int
	noteRate     float64 // notes per second before density scaling
	noteLen      float64 // seconds
	velocityBase float64
	regularity   float64 // 1 = metronomic, 0 = scattered
	confidence   float64 // base confidence of patterns in this mood
	contour      float64 // upward drift per note in scale steps
}

// Generation characters, indexed by mood
var characters = [mood.NumLabels]character{
	mood.Chill:       {scale: scaleMajor, noteRate: 2.0, noteLen: 0.4, velocityBase: 50, regularity: 0.8, confidence: 0.85, contour: 0.1},
	mood.Energetic:   {scale: scaleMixolydian, noteRate: 6.0, noteLen: 0.12, velocityBase: 90, regularity: 0.2, confidence: 0.9, contour: 0.4},
	mood.Suspenseful: {scale: scaleNaturalMinor, noteRate: 3.0, noteLen: 0.25, velocityBase: 60, regularity: 0.4, confidence: 0.8, contour: -0.2},
	mood.Uplifting:   {scale: scaleMajor, noteRate: 4.0, noteLen: 0.2, velocityBase: 80, regularity: 0.5, confidence: 0.85, contour: 0.5},
	mood.Ominous:     {scale: scaleNaturalMinor, noteRate: 1.5, noteLen: 0.6, velocityBase: 60, regularity: 0.7, confidence: 0.8, contour: -0.3},
	mood.Romantic:    {scale: scaleMajor, noteRate: 2.5, noteLen: 0.5, velocityBase: 65, regularity: 0.6, confidence: 0.8, contour: 0.2},
	mood.Gritty:      {scale: scaleBlues, noteRate: 4.5, noteLen: 0.15, velocityBase: 85, regularity: 0.3, confidence: 0.85, contour: 0.0},
	mood.Dreamy:      {scale: scalePentatonic, noteRate: 1.8, noteLen: 0.7, velocityBase: 50, regularity: 0.6, confidence: 0.8, contour: 0.3},
	mood.Frantic:     {scale: scaleNaturalMinor, noteRate: 8.0, noteLen: 0.08, velocityBase: 90, regularity: 0.1, confidence: 0.75, contour: 0.0},
	mood.Focused:     {scale: scalePentatonic, noteRate: 3.5, noteLen: 0.2, velocityBase: 70, regularity: 0.9, confidence: 0.9, contour: 0.1},
}

func characterFor(label mood.Label) character {
	if !label.Valid() {
		return characters[mood.Chill]
	}
	return characters[label]
}

// lerpCharacter interpolates every dimension between two characters; the
// scale switches at the midpoint since pitch-class sets cannot blend
func lerpCharacter(a, b character, t float64) character {
	scale := a.scale
	if t >= 0.5 {
		scale = b.scale
	}
	return character{
		scale:        scale,
		noteRate:     a.noteRate + (b.noteRate-a.noteRate)*t,
		noteLen:      a.noteLen + (b.noteLen-a.noteLen)*t,
		velocityBase: a.velocityBase + (b.velocityBase-a.velocityBase)*t,
		regularity:   a.regularity + (b.regularity-a.regularity)*t,
		confidence:   a.confidence + (b.confidence-a.confidence)*t,
		contour:      a.contour + (b.contour-a.contour)*t,
	}
}
