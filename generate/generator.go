package generate

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/jrb00013/aamati/algorithms/common"
	"github.com/jrb00013/aamati/logging"
	"github.com/jrb00013/aamati/midi"
	"github.com/jrb00013/aamati/mood"
)

// Pattern kinds
const (
	KindSingle      = "single"
	KindHybrid      = "hybrid"
	KindIntensified = "intensified"
	KindTransition  = "transition"
)

// Intensification escalation per repetition beyond the first
const (
	velocityStepFactor   = 0.3
	densityStepFactor    = 0.2
	complexityStepFactor = 0.25
)

// Confidence loses 10% per additional distinct mood in a hybrid, floored
const (
	hybridConfidencePenalty = 0.1
	minConfidence           = 0.5
)

const rootPitch = 60 // middle C

// Pattern is one generated musical phrase
type Pattern struct {
	ID         uuid.UUID        `json:"id"`
	Kind       string           `json:"kind"`
	Notes      []midi.NoteEvent `json:"notes"`
	Duration   float64          `json:"duration"`
	Confidence float64          `json:"confidence"`
}

// Generator produces note patterns from mood descriptors. All randomness
// flows through one seeded source, so a generator with a fixed seed is
// fully deterministic.
type Generator struct {
	rng    *rand.Rand
	logger logging.Logger
}

// NewGenerator creates a pattern generator with the given random seed
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		logger: logging.WithFields(logging.Fields{
			"component": "pattern_generator",
		}),
	}
}

// GenerateDefault produces a plain C-major pattern for hosts that have no
// mood decision yet
func (g *Generator) GenerateDefault(duration float64) (Pattern, error) {
	if duration <= 0 {
		return Pattern{}, fmt.Errorf("duration must be positive, got %f", duration)
	}
	ch := character{
		scale:        scaleMajor,
		noteRate:     2.0,
		noteLen:      0.4,
		velocityBase: 70,
		regularity:   0.9,
		confidence:   0.5,
	}
	return Pattern{
		ID:         uuid.New(),
		Kind:       KindSingle,
		Notes:      g.renderCharacter(ch, duration, 1.0, 1.0),
		Duration:   duration,
		Confidence: ch.confidence,
	}, nil
}

// Generate produces a pattern in a single mood's character
func (g *Generator) Generate(label mood.Label, duration float64) (Pattern, error) {
	if !label.Valid() {
		return Pattern{}, fmt.Errorf("invalid mood label %d", label)
	}
	if duration <= 0 {
		return Pattern{}, fmt.Errorf("duration must be positive, got %f", duration)
	}

	ch := characterFor(label)
	notes := g.renderCharacter(ch, duration, 1.0, 1.0)
	return Pattern{
		ID:         uuid.New(),
		Kind:       KindSingle,
		Notes:      notes,
		Duration:   duration,
		Confidence: ch.confidence,
	}, nil
}

// GenerateHybrid produces a pattern mixing every mood in the spec. A spec
// listing one label repeatedly escalates intensity instead of blending,
// since blending a mood with itself changes nothing.
func (g *Generator) GenerateHybrid(spec mood.HybridSpec, duration float64) (Pattern, error) {
	if spec.Len() == 0 {
		return Pattern{}, fmt.Errorf("empty hybrid spec")
	}
	if duration <= 0 {
		return Pattern{}, fmt.Errorf("duration must be positive, got %f", duration)
	}

	if label, count, ok := spec.Intensification(); ok {
		return g.GenerateIntensified(label, count, duration)
	}

	var merged []midi.NoteEvent
	for _, c := range spec.Components() {
		ch := characterFor(c.Label)
		notes := g.renderCharacter(ch, duration, c.Weight, 1.0)
		// Weight scales presence: quieter parts for minor components
		for i := range notes {
			notes[i].Velocity = midi.ClampVelocity(notes[i].Velocity * (0.4 + 0.6*c.Weight))
		}
		merged = append(merged, notes...)
	}

	midi.SortByStart(merged)
	merged = mergePass(merged)

	confidence := 0.0
	for _, c := range spec.Components() {
		confidence += characterFor(c.Label).confidence * c.Weight
	}
	confidence *= 1.0 - hybridConfidencePenalty*float64(spec.DistinctMoods()-1)
	if confidence < minConfidence {
		confidence = minConfidence
	}

	g.logger.Debug("hybrid pattern generated", logging.Fields{
		"moods": spec.DistinctMoods(),
		"notes": len(merged),
	})
	return Pattern{
		ID:         uuid.New(),
		Kind:       KindHybrid,
		Notes:      merged,
		Duration:   duration,
		Confidence: confidence,
	}, nil
}

// GenerateIntensified produces a single-mood pattern escalated by intensity
// level k: velocity, density and complexity each grow with (k-1). Each
// additional level never reduces note count or mean velocity.
func (g *Generator) GenerateIntensified(label mood.Label, intensity int, duration float64) (Pattern, error) {
	if !label.Valid() {
		return Pattern{}, fmt.Errorf("invalid mood label %d", label)
	}
	if intensity < 1 {
		return Pattern{}, fmt.Errorf("intensity must be at least 1, got %d", intensity)
	}
	if duration <= 0 {
		return Pattern{}, fmt.Errorf("duration must be positive, got %f", duration)
	}

	step := float64(intensity - 1)
	velocityMult := 1.0 + step*velocityStepFactor
	densityMult := 1.0 + step*densityStepFactor
	complexityMult := 1.0 + step*complexityStepFactor

	ch := characterFor(label)
	notes := g.renderCharacter(ch, duration, densityMult, complexityMult)
	for i := range notes {
		// Jitter is non-negative so escalation never softens a note
		boosted := notes[i].Velocity*velocityMult + g.rng.Float64()*2.0*(complexityMult-1.0)
		notes[i].Velocity = midi.ClampVelocity(boosted)
	}

	return Pattern{
		ID:         uuid.New(),
		Kind:       KindIntensified,
		Notes:      notes,
		Duration:   duration,
		Confidence: ch.confidence,
	}, nil
}

// GenerateTransition produces a pattern that morphs from one mood's
// character to another over its duration, re-interpolating four times per
// second
func (g *Generator) GenerateTransition(from, to mood.Label, duration float64) (Pattern, error) {
	if !from.Valid() || !to.Valid() {
		return Pattern{}, fmt.Errorf("invalid mood labels %d -> %d", from, to)
	}
	if duration <= 0 {
		return Pattern{}, fmt.Errorf("duration must be positive, got %f", duration)
	}

	a := characterFor(from)
	b := characterFor(to)

	const stepsPerSecond = 4.0
	steps := int(math.Ceil(duration * stepsPerSecond))
	if steps < 1 {
		steps = 1
	}
	stepLen := duration / float64(steps)

	var notes []midi.NoteEvent
	for step := 0; step < steps; step++ {
		t := float64(step) / math.Max(float64(steps-1), 1)
		ch := lerpCharacter(a, b, t)
		segment := g.renderCharacter(ch, stepLen, 1.0, 1.0)
		for i := range segment {
			segment[i].Start += float64(step) * stepLen
		}
		notes = append(notes, segment...)
	}

	midi.SortByStart(notes)
	notes = mergePass(notes)

	confidence := (a.confidence + b.confidence) / 2 * (1.0 - hybridConfidencePenalty)
	if confidence < minConfidence {
		confidence = minConfidence
	}
	return Pattern{
		ID:         uuid.New(),
		Kind:       KindTransition,
		Notes:      notes,
		Duration:   duration,
		Confidence: confidence,
	}, nil
}

// renderCharacter lays out notes for a character over the duration.
// densityMult scales the note rate; complexityMult widens the melodic walk.
func (g *Generator) renderCharacter(ch character, duration, densityMult, complexityMult float64) []midi.NoteEvent {
	rate := ch.noteRate * math.Max(densityMult, 0)
	count := int(math.Round(rate * duration))
	if count < 1 {
		count = 1
	}

	notes := make([]midi.NoteEvent, 0, count)
	spacing := duration / float64(count)
	degree := 0.0

	for i := 0; i < count; i++ {
		// Regular grid position with irregularity-scaled scatter
		scatter := (1.0 - ch.regularity) * spacing * 0.5
		start := float64(i)*spacing + (g.rng.Float64()*2-1)*scatter
		// Durations shorter than half a note length would invert the
		// clamp bounds, so the upper bound never drops below zero
		hi := math.Max(0, duration-ch.noteLen*0.5)
		start = common.Clamp(start, 0, hi)

		// Random walk through the scale, biased by the contour and widened
		// by complexity
		stepSpan := 2.0 * complexityMult
		degree += ch.contour + (g.rng.Float64()*2-1)*stepSpan
		pitch := pitchFromDegree(ch.scale, degree)

		velocity := ch.velocityBase + (g.rng.Float64()*2-1)*10
		noteLen := math.Min(ch.noteLen, duration-start)

		notes = append(notes, midi.NoteEvent{
			Pitch:    pitch,
			Velocity: midi.ClampVelocity(velocity),
			Start:    start,
			Duration: noteLen,
		})
	}

	midi.SortByStart(notes)
	return notes
}

// pitchFromDegree maps a (possibly negative, fractional) scale degree to a
// concrete pitch bounded to the generation register
func pitchFromDegree(scale []int, degree float64) int {
	d := int(math.Round(degree))
	octave := d / len(scale)
	idx := d % len(scale)
	if idx < 0 {
		idx += len(scale)
		octave--
	}
	return midi.ClampGeneratedPitch(rootPitch + octave*12 + scale[idx])
}
