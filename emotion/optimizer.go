package emotion

import (
	"math"
	"math/rand"

	"github.com/jrb00013/aamati/algorithms/common"
	"github.com/jrb00013/aamati/logging"
	"github.com/jrb00013/aamati/midi"
	"github.com/jrb00013/aamati/mood"
)

// Blend share of the primary mood when a secondary mood is set
const secondaryBlendWeight = 0.7

// Intervals in semitones (mod 12) treated as dissonant when adjusting
// harmonic tension: minor second, tritone, major seventh
var dissonantIntervals = map[int]bool{1: true, 6: true, 11: true}

// Optimizer reshapes note streams toward a target emotional profile. All
// adjustments are proportional to the configured sensitivity, so a
// sensitivity of zero makes Apply a pass-through.
type Optimizer struct {
	profile     mood.EmotionalProfile
	sensitivity float64
	rng         *rand.Rand
	logger      logging.Logger
}

// NewOptimizer creates an optimizer with a neutral profile
func NewOptimizer(sensitivity float64, seed int64) *Optimizer {
	return &Optimizer{
		profile:     mood.NeutralEmotionalProfile(),
		sensitivity: common.Clamp(sensitivity, 0, 1),
		rng:         rand.New(rand.NewSource(seed)),
		logger: logging.WithFields(logging.Fields{
			"component": "emotional_optimizer",
		}),
	}
}

// SetMood selects the target profile from a primary mood, optionally blended
// with a secondary mood. The primary keeps a 0.7 share of the blend.
func (o *Optimizer) SetMood(primary mood.Label, secondary *mood.Label) {
	profile := mood.EmotionalProfileFor(primary)
	if secondary != nil {
		profile = mood.Blend(profile, mood.EmotionalProfileFor(*secondary), secondaryBlendWeight)
	}
	o.profile = profile
	o.logger.Debug("target mood set", logging.Fields{
		"primary": primary.String(),
		"blended": secondary != nil,
	})
}

// SetProfile installs an explicit target profile, e.g. from a saved preset
func (o *Optimizer) SetProfile(profile mood.EmotionalProfile) {
	o.profile = profile
}

// SetSensitivity adjusts how strongly Apply pushes notes toward the target
// profile
func (o *Optimizer) SetSensitivity(sensitivity float64) {
	o.sensitivity = common.Clamp(sensitivity, 0, 1)
}

// Profile returns the current target profile
func (o *Optimizer) Profile() mood.EmotionalProfile {
	return o.profile
}

// Apply reshapes notes in place toward the target profile: velocities follow
// energy and tension, extreme warmth shifts the register, harmonic tension
// nudges dissonant simultaneities, and danceability adds swing feel to
// off-beat notes.
func (o *Optimizer) Apply(notes []midi.NoteEvent, tempo float64) {
	if len(notes) == 0 || o.sensitivity <= 0 {
		return
	}

	o.applyDynamics(notes)
	o.applyWarmth(notes)
	o.applyHarmonicTension(notes, tempo)
	o.applyDanceability(notes, tempo)
}

// applyDynamics scales velocities by energy and tension. Energy sets the
// overall level; tension widens or narrows it around the midpoint.
func (o *Optimizer) applyDynamics(notes []midi.NoteEvent) {
	mult := (0.5 + o.profile.Energy) * (1.0 + (o.profile.Tension-0.5)*0.4)
	for i := range notes {
		target := notes[i].Velocity * mult
		notes[i].Velocity = midi.ClampVelocity(common.Lerp(notes[i].Velocity, target, o.sensitivity))
	}
}

// applyWarmth shifts the register down for very warm profiles and up for
// very cold ones
func (o *Optimizer) applyWarmth(notes []midi.NoteEvent) {
	var shift int
	switch {
	case o.profile.Warmth > 0.7:
		shift = -2
	case o.profile.Warmth < 0.3:
		shift = 2
	default:
		return
	}
	if o.rng.Float64() > o.sensitivity {
		return
	}
	for i := range notes {
		notes[i].Pitch = midi.ClampPitch(notes[i].Pitch + shift)
	}
}

// applyHarmonicTension groups notes into quarter-note time slots and, for
// high-tension profiles, occasionally nudges pitches to create dissonant
// intervals; low-tension profiles resolve existing dissonances instead
func (o *Optimizer) applyHarmonicTension(notes []midi.NoteEvent, tempo float64) {
	if tempo <= 0 {
		return
	}
	tensionDelta := o.profile.Tension - 0.5
	if math.Abs(tensionDelta) < 0.2 {
		return
	}

	beatLen := 60.0 / tempo
	slots := make(map[int][]int)
	for i, n := range notes {
		slot := int(n.Start / beatLen)
		slots[slot] = append(slots[slot], i)
	}

	nudgeProb := 0.3 * o.sensitivity
	for _, idxs := range slots {
		if len(idxs) < 2 {
			continue
		}
		for k := 1; k < len(idxs); k++ {
			i, j := idxs[0], idxs[k]
			interval := ((notes[j].Pitch - notes[i].Pitch) % 12 + 12) % 12
			dissonant := dissonantIntervals[interval]

			if tensionDelta > 0 && !dissonant && o.rng.Float64() < nudgeProb {
				// Push a consonance toward the nearest dissonance
				if o.rng.Float64() < 0.5 {
					notes[j].Pitch = midi.ClampPitch(notes[j].Pitch + 1)
				} else {
					notes[j].Pitch = midi.ClampPitch(notes[j].Pitch - 1)
				}
			} else if tensionDelta < 0 && dissonant && o.rng.Float64() < nudgeProb {
				// Resolve a dissonance down a semitone
				notes[j].Pitch = midi.ClampPitch(notes[j].Pitch - 1)
			}
		}
	}
}

// applyDanceability delays off-beat notes toward a swung feel in proportion
// to the danceability dimension
func (o *Optimizer) applyDanceability(notes []midi.NoteEvent, tempo float64) {
	if tempo <= 0 || o.profile.Danceability < 0.5 {
		return
	}
	beatLen := 60.0 / tempo
	amount := (o.profile.Danceability - 0.5) * 2.0 * o.sensitivity
	maxOffset := beatLen * 0.08 * amount

	for i := range notes {
		phase := midi.BeatPhase(notes[i].Start, tempo)
		if midi.IsOffBeat(phase, 0.1) {
			notes[i].Start += maxOffset * math.Sin(phase*math.Pi)
		}
	}
}
