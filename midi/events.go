package midi

import (
	"math"
	"sort"

	"github.com/jrb00013/aamati/algorithms/common"
)

// MIDI value bounds
const (
	MinPitch    = 0
	MaxPitch    = 127
	MinVelocity = 1
	MaxVelocity = 127

	// Generated material stays inside the playable keyboard register
	MinGeneratedPitch = 36
	MaxGeneratedPitch = 84
)

// NoteEvent is a single timed note: pitch and velocity with an onset time
// and duration in seconds
type NoteEvent struct {
	Pitch    int     `json:"pitch"`
	Velocity float64 `json:"velocity"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Channel  int     `json:"channel"`
}

// End returns the note-off time
func (n NoteEvent) End() float64 {
	return n.Start + n.Duration
}

// ClampPitch bounds a pitch to the full MIDI range
func ClampPitch(pitch int) int {
	return common.ClampInt(pitch, MinPitch, MaxPitch)
}

// ClampGeneratedPitch bounds a pitch to the generation register
func ClampGeneratedPitch(pitch int) int {
	return common.ClampInt(pitch, MinGeneratedPitch, MaxGeneratedPitch)
}

// ClampVelocity bounds a velocity to the audible MIDI range
func ClampVelocity(velocity float64) float64 {
	return common.Clamp(velocity, MinVelocity, MaxVelocity)
}

// SortByStart orders notes by onset time, then pitch, then channel for a
// stable stream
func SortByStart(notes []NoteEvent) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Start != notes[j].Start {
			return notes[i].Start < notes[j].Start
		}
		if notes[i].Pitch != notes[j].Pitch {
			return notes[i].Pitch < notes[j].Pitch
		}
		return notes[i].Channel < notes[j].Channel
	})
}

// BeatPosition maps a time in seconds to its position within the measure,
// in beats [0, beatsPerMeasure)
func BeatPosition(seconds, tempo, beatsPerMeasure float64) float64 {
	if tempo <= 0 || beatsPerMeasure <= 0 {
		return 0
	}
	totalBeats := seconds * tempo / 60.0
	return math.Mod(totalBeats, beatsPerMeasure)
}

// BeatPhase maps a time in seconds to its position within a single beat
// [0, 1)
func BeatPhase(seconds, tempo float64) float64 {
	if tempo <= 0 {
		return 0
	}
	totalBeats := seconds * tempo / 60.0
	return totalBeats - math.Floor(totalBeats)
}

// IsOnBeat reports whether a beat position sits on an integer beat within
// tolerance
func IsOnBeat(beatPosition, tolerance float64) bool {
	return math.Abs(beatPosition-math.Round(beatPosition)) < tolerance
}

// IsOffBeat reports whether a beat position falls in the off-beat region
func IsOffBeat(beatPosition, tolerance float64) bool {
	return !IsOnBeat(beatPosition, tolerance) && beatPosition > 0
}

// IsStrongBeat reports whether a beat position lands on beat 1 or 3 of the
// measure
func IsStrongBeat(beatPosition, beatsPerMeasure float64) bool {
	beatInMeasure := math.Mod(beatPosition, beatsPerMeasure)
	return beatInMeasure < 0.1 || math.Abs(beatInMeasure-2.0) < 0.1
}
