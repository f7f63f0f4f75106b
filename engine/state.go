package engine

import (
	"time"

	"github.com/jrb00013/aamati/features"
	"github.com/jrb00013/aamati/mood"
)

// MoodState is one published mood decision with everything derived from it.
// States are immutable once published; the engine swaps whole states, never
// fields.
type MoodState struct {
	Label      mood.Label              `json:"label"`
	Confidence float64                 `json:"confidence"`
	Features   features.GrooveFeatures `json:"features"`
	Emotional  mood.EmotionalProfile   `json:"emotional"`
	Groove     mood.GrooveProfile      `json:"groove"`
	UpdatedAt  time.Time               `json:"updated_at"`

	// Overridden is set when SetTargetMood pinned this state rather than
	// the classifier producing it
	Overridden bool `json:"overridden"`
}

// initialState is the engine's mood before any inference has completed
func initialState() *MoodState {
	return &MoodState{
		Label:      mood.Chill,
		Confidence: 0,
		Emotional:  mood.NeutralEmotionalProfile(),
		Groove:     mood.GrooveProfileFor(mood.Chill),
		UpdatedAt:  time.Now(),
	}
}

func stateFor(label mood.Label, confidence float64, f features.GrooveFeatures, overridden bool) *MoodState {
	return &MoodState{
		Label:      label,
		Confidence: confidence,
		Features:   f,
		Emotional:  mood.EmotionalProfileFor(label),
		Groove:     mood.GrooveProfileFor(label),
		UpdatedAt:  time.Now(),
		Overridden: overridden,
	}
}
