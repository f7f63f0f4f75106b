package groove

import (
	"math/rand"

	"github.com/jrb00013/aamati/algorithms/common"
	"github.com/jrb00013/aamati/logging"
	"github.com/jrb00013/aamati/midi"
	"github.com/jrb00013/aamati/mood"
)

// Stage limits, as fractions of a beat or of the note velocity
const (
	maxSwingOffset      = 0.1  // beats
	maxMicroTiming      = 0.05 // beats
	maxVelocityDepth    = 0.3  // fraction of velocity
	ghostVelocityFactor = 0.3
	ghostOffsetBeats    = 0.5
)

// Shaper humanizes note streams according to a mood's groove profile. The
// five stages run in a fixed order: swing, micro-timing, accents, velocity
// variation, ghost notes. A zero profile makes Process return its input
// unchanged.
type Shaper struct {
	profile mood.GrooveProfile
	rng     *rand.Rand
	logger  logging.Logger
}

// NewShaper creates a shaper with an inert (zero) profile
func NewShaper(seed int64) *Shaper {
	return &Shaper{
		rng: rand.New(rand.NewSource(seed)),
		logger: logging.WithFields(logging.Fields{
			"component": "groove_shaper",
		}),
	}
}

// SetProfile selects a mood's groove profile scaled by intensity
func (s *Shaper) SetProfile(label mood.Label, intensity float64) {
	s.profile = mood.GrooveProfileFor(label).Scaled(common.Clamp(intensity, 0, 2))
	s.logger.Debug("groove profile set", logging.Fields{
		"mood":      label.String(),
		"intensity": intensity,
	})
}

// SetRawProfile installs an explicit profile, e.g. a hybrid blend
func (s *Shaper) SetRawProfile(profile mood.GrooveProfile) {
	s.profile = profile
}

// Profile returns the active groove profile
func (s *Shaper) Profile() mood.GrooveProfile {
	return s.profile
}

// Process runs the humanization stages over a copy of the input. The input
// slice is never mutated; a zero profile or empty input returns the input
// slice itself.
func (s *Shaper) Process(notes []midi.NoteEvent, tempo, beatsPerMeasure float64) []midi.NoteEvent {
	if len(notes) == 0 || s.profile.IsZero() || tempo <= 0 {
		return notes
	}
	if beatsPerMeasure <= 0 {
		beatsPerMeasure = 4
	}

	out := make([]midi.NoteEvent, len(notes))
	copy(out, notes)

	s.applySwing(out, tempo)
	s.applyMicroTiming(out, tempo)
	s.applyAccents(out, tempo, beatsPerMeasure)
	s.applyVelocityVariation(out)
	out = s.addGhostNotes(out, tempo)

	midi.SortByStart(out)
	return out
}

// applySwing delays off-beat notes proportionally to how deep into the beat
// they fall, up to a tenth of a beat
func (s *Shaper) applySwing(notes []midi.NoteEvent, tempo float64) {
	if s.profile.SwingAmount <= 0 {
		return
	}
	beatLen := 60.0 / tempo
	for i := range notes {
		phase := midi.BeatPhase(notes[i].Start, tempo)
		if !midi.IsOffBeat(phase, 0.05) {
			continue
		}
		offset := s.profile.SwingAmount * maxSwingOffset * phase
		notes[i].Start += offset * beatLen
	}
}

// applyMicroTiming adds small random timing deviations scaled by the
// humanization and micro-timing dimensions
func (s *Shaper) applyMicroTiming(notes []midi.NoteEvent, tempo float64) {
	depth := s.profile.MicroTiming * s.profile.Humanization
	if depth <= 0 {
		return
	}
	beatLen := 60.0 / tempo
	for i := range notes {
		jitter := (s.rng.Float64()*2 - 1) * depth * maxMicroTiming * beatLen
		notes[i].Start += jitter
		if notes[i].Start < 0 {
			notes[i].Start = 0
		}
	}
}

// applyAccents emphasizes strong beats and softens off-beats
func (s *Shaper) applyAccents(notes []midi.NoteEvent, tempo, beatsPerMeasure float64) {
	accent := s.profile.AccentPattern
	if accent <= 0 {
		return
	}
	for i := range notes {
		pos := midi.BeatPosition(notes[i].Start, tempo, beatsPerMeasure)
		var mult float64
		switch {
		case midi.IsStrongBeat(pos, beatsPerMeasure):
			mult = 1.0 + 0.5*accent
		case midi.IsOffBeat(pos, 0.1):
			mult = 1.0 - 0.3*accent
		default:
			mult = 1.0
		}
		notes[i].Velocity = midi.ClampVelocity(notes[i].Velocity * common.Clamp(mult, 0.1, 2.0))
	}
}

// applyVelocityVariation adds bounded random velocity deviations
func (s *Shaper) applyVelocityVariation(notes []midi.NoteEvent) {
	depth := s.profile.VelocityVariation
	if depth <= 0 {
		return
	}
	for i := range notes {
		factor := 1.0 + (s.rng.Float64()*2-1)*depth*maxVelocityDepth
		notes[i].Velocity = midi.ClampVelocity(notes[i].Velocity * factor)
	}
}

// addGhostNotes inserts quiet echo notes half a beat after some notes.
// Off-beat notes spawn ghosts three times as often as on-beat notes.
func (s *Shaper) addGhostNotes(notes []midi.NoteEvent, tempo float64) []midi.NoteEvent {
	depth := s.profile.GhostNotes
	if depth <= 0 {
		return notes
	}
	beatLen := 60.0 / tempo

	out := notes
	for _, n := range notes {
		phase := midi.BeatPhase(n.Start, tempo)
		prob := 0.1 * depth
		if midi.IsOffBeat(phase, 0.1) {
			prob = 0.3 * depth
		}
		if s.rng.Float64() >= prob {
			continue
		}
		ghost := n
		ghost.Start += ghostOffsetBeats * beatLen
		ghost.Velocity = midi.ClampVelocity(n.Velocity * ghostVelocityFactor)
		ghost.Duration = n.Duration * 0.5
		out = append(out, ghost)
	}
	return out
}
