package features

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jrb00013/aamati/midi"
)

func TestExtractFromMissingFile(t *testing.T) {
	m := NewMIDIExtractor()

	f, err := m.ExtractFromFile("/nonexistent/groove.mid")
	if !errors.Is(err, midi.ErrMIDIParse) {
		t.Fatalf("err = %v, want ErrMIDIParse", err)
	}
	if f != Fallback() {
		t.Errorf("features = %+v, want fallback", f)
	}
}

func TestExtractFromSparseFile(t *testing.T) {
	// A single note cannot carry groove; the extractor falls back silently
	s := smf.New()
	var track smf.Track
	track.Add(0, smf.MetaTempo(120))
	track.Add(0, gomidi.NoteOn(0, 60, 100))
	track.Add(960, gomidi.NoteOff(0, 60))
	track.Close(0)
	if err := s.Add(track); err != nil {
		t.Fatalf("add track: %v", err)
	}
	path := filepath.Join(t.TempDir(), "single.mid")
	if err := s.WriteFile(path); err != nil {
		t.Fatalf("write smf: %v", err)
	}

	m := NewMIDIExtractor()
	f, err := m.ExtractFromFile(path)
	if err != nil {
		t.Fatalf("ExtractFromFile: %v", err)
	}
	if f != Fallback() {
		t.Errorf("features = %+v, want fallback for a one-note file", f)
	}
}

func TestExtractFromNotes(t *testing.T) {
	// Straight eighth notes at 120 BPM, alternating strong/weak velocity
	notes := make([]midi.NoteEvent, 16)
	for i := range notes {
		vel := 100.0
		if i%2 == 1 {
			vel = 60.0
		}
		notes[i] = midi.NoteEvent{
			Pitch:    60 + i%5,
			Velocity: vel,
			Start:    float64(i) * 0.25,
			Duration: 0.2,
		}
	}
	content := &midi.FileContent{Notes: notes, Tempo: 120, Duration: 4.0}

	f := extractFromNotes(content)

	if f.Tempo != 120 {
		t.Errorf("tempo = %v, want 120", f.Tempo)
	}
	if got, want := f.Density, 4.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("density = %v, want %v", got, want)
	}
	// Perfectly quantized starts have zero swing
	if f.Swing > 1e-9 {
		t.Errorf("swing = %v, want 0 for quantized grid", f.Swing)
	}
	if got, want := f.DynamicRange, 40.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("dynamic range = %v, want %v", got, want)
	}
	if got, want := f.VelocityMean, 80.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("velocity mean = %v, want %v", got, want)
	}
	// Regular IOIs have zero variance, hence zero syncopation
	if f.Syncopation > 1e-9 {
		t.Errorf("syncopation = %v, want 0 for regular IOIs", f.Syncopation)
	}
	if f.Polyphony <= 0 {
		t.Errorf("polyphony = %v, want positive", f.Polyphony)
	}
}

func TestSwungNotesHaveSwing(t *testing.T) {
	straight := make([]midi.NoteEvent, 8)
	swung := make([]midi.NoteEvent, 8)
	for i := range straight {
		start := float64(i) * 0.25
		straight[i] = midi.NoteEvent{Pitch: 60, Velocity: 80, Start: start, Duration: 0.2}
		swungStart := start
		if i%2 == 1 {
			swungStart += 0.08
		}
		swung[i] = midi.NoteEvent{Pitch: 60, Velocity: 80, Start: swungStart, Duration: 0.2}
	}

	fStraight := extractFromNotes(&midi.FileContent{Notes: straight, Tempo: 120, Duration: 2})
	fSwung := extractFromNotes(&midi.FileContent{Notes: swung, Tempo: 120, Duration: 2})

	if fSwung.Swing <= fStraight.Swing {
		t.Errorf("swung swing %v should exceed straight swing %v", fSwung.Swing, fStraight.Swing)
	}
}

func TestPolyphonyCountsChords(t *testing.T) {
	// A held triad should average close to 3 voices
	chord := []midi.NoteEvent{
		{Pitch: 60, Velocity: 80, Start: 0, Duration: 2},
		{Pitch: 64, Velocity: 80, Start: 0, Duration: 2},
		{Pitch: 67, Velocity: 80, Start: 0, Duration: 2},
	}
	f := extractFromNotes(&midi.FileContent{Notes: chord, Tempo: 120, Duration: 2})
	if f.Polyphony < 2.5 {
		t.Errorf("polyphony = %v, want near 3 for a held triad", f.Polyphony)
	}
}
