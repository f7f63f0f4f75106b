package emotion

import (
	"testing"

	"github.com/jrb00013/aamati/midi"
	"github.com/jrb00013/aamati/mood"
)

func eighthNotes(count int, velocity float64) []midi.NoteEvent {
	notes := make([]midi.NoteEvent, count)
	for i := range notes {
		notes[i] = midi.NoteEvent{
			Pitch:    60,
			Velocity: velocity,
			Start:    float64(i) * 0.25,
			Duration: 0.2,
		}
	}
	return notes
}

func meanVelocity(notes []midi.NoteEvent) float64 {
	sum := 0.0
	for _, n := range notes {
		sum += n.Velocity
	}
	return sum / float64(len(notes))
}

func TestZeroSensitivityIsPassThrough(t *testing.T) {
	o := NewOptimizer(0, 1)
	o.SetMood(mood.Frantic, nil)

	notes := eighthNotes(8, 80)
	want := eighthNotes(8, 80)
	o.Apply(notes, 120)

	for i := range notes {
		if notes[i] != want[i] {
			t.Fatalf("note %d changed with zero sensitivity: %+v vs %+v", i, notes[i], want[i])
		}
	}
}

func TestHighEnergyRaisesVelocity(t *testing.T) {
	o := NewOptimizer(1, 1)
	o.SetMood(mood.Frantic, nil) // energy 0.95

	notes := eighthNotes(8, 70)
	o.Apply(notes, 120)

	if got := meanVelocity(notes); got <= 70 {
		t.Errorf("mean velocity %v, want above 70 for a high-energy mood", got)
	}
}

func TestLowEnergyLowersVelocity(t *testing.T) {
	o := NewOptimizer(1, 1)
	o.SetMood(mood.Chill, nil) // energy 0.2

	notes := eighthNotes(8, 100)
	o.Apply(notes, 120)

	if got := meanVelocity(notes); got >= 100 {
		t.Errorf("mean velocity %v, want below 100 for a low-energy mood", got)
	}
}

func TestVelocityStaysInMIDIRange(t *testing.T) {
	o := NewOptimizer(1, 1)
	o.SetMood(mood.Frantic, nil)

	notes := eighthNotes(8, 120)
	o.Apply(notes, 120)

	for i, n := range notes {
		if n.Velocity < midi.MinVelocity || n.Velocity > midi.MaxVelocity {
			t.Errorf("note %d velocity %v outside MIDI range", i, n.Velocity)
		}
	}
}

func TestSecondaryMoodBlends(t *testing.T) {
	primaryOnly := NewOptimizer(1, 1)
	primaryOnly.SetMood(mood.Chill, nil)

	secondary := mood.Frantic
	blended := NewOptimizer(1, 1)
	blended.SetMood(mood.Chill, &secondary)

	pOnly := primaryOnly.Profile()
	pBlend := blended.Profile()
	if pBlend.Energy <= pOnly.Energy {
		t.Errorf("blending with frantic should raise energy: %v vs %v", pBlend.Energy, pOnly.Energy)
	}
	// Primary keeps the larger share
	frantic := mood.EmotionalProfileFor(mood.Frantic)
	if pBlend.Energy >= frantic.Energy {
		t.Errorf("blend energy %v should stay below pure frantic %v", pBlend.Energy, frantic.Energy)
	}
}

func TestPitchesStayInRange(t *testing.T) {
	o := NewOptimizer(1, 1)
	o.SetMood(mood.Ominous, nil) // cold and tense, shifts and nudges pitches

	notes := []midi.NoteEvent{
		{Pitch: 126, Velocity: 80, Start: 0, Duration: 0.2},
		{Pitch: 127, Velocity: 80, Start: 0.05, Duration: 0.2},
		{Pitch: 0, Velocity: 80, Start: 0.1, Duration: 0.2},
		{Pitch: 1, Velocity: 80, Start: 0.15, Duration: 0.2},
	}
	o.Apply(notes, 120)

	for i, n := range notes {
		if n.Pitch < midi.MinPitch || n.Pitch > midi.MaxPitch {
			t.Errorf("note %d pitch %d outside MIDI range", i, n.Pitch)
		}
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() []midi.NoteEvent {
		o := NewOptimizer(0.8, 42)
		o.SetMood(mood.Gritty, nil)
		notes := eighthNotes(16, 75)
		o.Apply(notes, 120)
		return notes
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("note %d differs across identically seeded runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
