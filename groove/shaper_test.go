package groove

import (
	"reflect"
	"testing"

	"github.com/jrb00013/aamati/midi"
	"github.com/jrb00013/aamati/mood"
)

func quarterNotes(count int, velocity float64) []midi.NoteEvent {
	notes := make([]midi.NoteEvent, count)
	for i := range notes {
		notes[i] = midi.NoteEvent{
			Pitch:    60,
			Velocity: velocity,
			Start:    float64(i) * 0.5, // 120 BPM quarter notes
			Duration: 0.4,
		}
	}
	return notes
}

func TestZeroProfileIsNoOp(t *testing.T) {
	s := NewShaper(1)

	notes := quarterNotes(8, 80)
	got := s.Process(notes, 120, 4)

	if !reflect.DeepEqual(got, notes) {
		t.Fatalf("zero profile altered the stream:\n got %+v\nwant %+v", got, notes)
	}
}

func TestProcessDoesNotMutateInput(t *testing.T) {
	s := NewShaper(1)
	s.SetProfile(mood.Romantic, 1)

	notes := quarterNotes(8, 80)
	want := quarterNotes(8, 80)
	s.Process(notes, 120, 4)

	if !reflect.DeepEqual(notes, want) {
		t.Fatal("Process mutated its input slice")
	}
}

func TestSwingDelaysOffBeatsOnly(t *testing.T) {
	s := NewShaper(1)
	// Swing only: no jitter, accents, variation or ghosts
	s.SetRawProfile(mood.GrooveProfile{SwingAmount: 1})

	// Alternate on-beat and off-beat eighths at 120 BPM
	notes := []midi.NoteEvent{
		{Pitch: 60, Velocity: 80, Start: 0.0, Duration: 0.2},  // beat 1
		{Pitch: 60, Velocity: 80, Start: 0.25, Duration: 0.2}, // off-beat
		{Pitch: 60, Velocity: 80, Start: 0.5, Duration: 0.2},  // beat 2
		{Pitch: 60, Velocity: 80, Start: 0.75, Duration: 0.2}, // off-beat
	}
	got := s.Process(notes, 120, 4)

	if got[0].Start != 0.0 || got[2].Start != 0.5 {
		t.Errorf("on-beat notes moved: %v, %v", got[0].Start, got[2].Start)
	}
	if got[1].Start <= 0.25 || got[3].Start <= 0.75 {
		t.Errorf("off-beat notes not delayed: %v, %v", got[1].Start, got[3].Start)
	}
}

func TestAccentsShapeVelocity(t *testing.T) {
	s := NewShaper(1)
	s.SetRawProfile(mood.GrooveProfile{AccentPattern: 1})

	notes := []midi.NoteEvent{
		{Pitch: 60, Velocity: 80, Start: 0.0, Duration: 0.2},  // beat 1, strong
		{Pitch: 60, Velocity: 80, Start: 0.25, Duration: 0.2}, // off-beat
	}
	got := s.Process(notes, 120, 4)

	if got[0].Velocity <= 80 {
		t.Errorf("strong beat velocity %v, want above 80", got[0].Velocity)
	}
	if got[1].Velocity >= 80 {
		t.Errorf("off-beat velocity %v, want below 80", got[1].Velocity)
	}
}

func TestGhostNotesIncreaseCount(t *testing.T) {
	s := NewShaper(7)
	s.SetRawProfile(mood.GrooveProfile{GhostNotes: 1})

	// Off-beat notes spawn ghosts with probability 0.3; 40 chances make
	// at least one ghost overwhelmingly likely
	notes := make([]midi.NoteEvent, 40)
	for i := range notes {
		notes[i] = midi.NoteEvent{Pitch: 60, Velocity: 80, Start: 0.25 + float64(i)*0.5, Duration: 0.1}
	}
	got := s.Process(notes, 120, 4)

	if len(got) <= len(notes) {
		t.Errorf("note count %d, want ghosts added beyond %d", len(got), len(notes))
	}
	for _, n := range got {
		if n.Velocity < midi.MinVelocity {
			t.Errorf("ghost velocity %v below MIDI minimum", n.Velocity)
		}
	}
}

func TestVelocityStaysClamped(t *testing.T) {
	s := NewShaper(3)
	s.SetProfile(mood.Frantic, 2)

	notes := quarterNotes(32, 120)
	got := s.Process(notes, 120, 4)

	for i, n := range got {
		if n.Velocity < midi.MinVelocity || n.Velocity > midi.MaxVelocity {
			t.Errorf("note %d velocity %v outside MIDI range", i, n.Velocity)
		}
	}
}

func TestOutputSortedByStart(t *testing.T) {
	s := NewShaper(9)
	s.SetProfile(mood.Dreamy, 1.5)

	got := s.Process(quarterNotes(16, 70), 120, 4)
	for i := 1; i < len(got); i++ {
		if got[i].Start < got[i-1].Start {
			t.Fatalf("output not sorted at %d: %v after %v", i, got[i].Start, got[i-1].Start)
		}
	}
}
