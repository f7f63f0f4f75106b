package midi

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func writeSMF(t *testing.T, build func(track *smf.Track)) string {
	t.Helper()
	s := smf.New()
	var track smf.Track
	build(&track)
	track.Close(0)
	if err := s.Add(track); err != nil {
		t.Fatalf("add track: %v", err)
	}
	path := filepath.Join(t.TempDir(), "test.mid")
	if err := s.WriteFile(path); err != nil {
		t.Fatalf("write smf: %v", err)
	}
	return path
}

func TestReadFileRoundTrip(t *testing.T) {
	// Quarter notes at 120 BPM: 960 ticks per quarter at the default
	// resolution, 0.5 s each
	path := writeSMF(t, func(track *smf.Track) {
		track.Add(0, smf.MetaTempo(120))
		track.Add(0, gomidi.NoteOn(0, 60, 100))
		track.Add(960, gomidi.NoteOff(0, 60))
		track.Add(0, gomidi.NoteOn(0, 64, 80))
		track.Add(960, gomidi.NoteOff(0, 64))
	})

	content, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if content.Tempo != 120 {
		t.Errorf("tempo = %v, want 120", content.Tempo)
	}
	if len(content.Notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(content.Notes))
	}

	first, second := content.Notes[0], content.Notes[1]
	if first.Pitch != 60 || first.Velocity != 100 {
		t.Errorf("first note = %+v, want pitch 60 velocity 100", first)
	}
	if second.Pitch != 64 || second.Velocity != 80 {
		t.Errorf("second note = %+v, want pitch 64 velocity 80", second)
	}
	if math.Abs(first.Duration-0.5) > 0.01 {
		t.Errorf("first duration = %v, want ~0.5 s", first.Duration)
	}
	if math.Abs(second.Start-0.5) > 0.01 {
		t.Errorf("second start = %v, want ~0.5 s", second.Start)
	}
}

func TestReadFileOverlappingSamePitch(t *testing.T) {
	// Two overlapping note-ons on the same key; the first note-off must
	// close the most recent one
	path := writeSMF(t, func(track *smf.Track) {
		track.Add(0, smf.MetaTempo(120))
		track.Add(0, gomidi.NoteOn(0, 60, 100))
		track.Add(480, gomidi.NoteOn(0, 60, 70))
		track.Add(480, gomidi.NoteOff(0, 60))
		track.Add(480, gomidi.NoteOff(0, 60))
	})

	content, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(content.Notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(content.Notes))
	}

	// Sorted by start: the outer note first
	outer, inner := content.Notes[0], content.Notes[1]
	if outer.Velocity != 100 || inner.Velocity != 70 {
		t.Fatalf("pairing wrong: outer %+v inner %+v", outer, inner)
	}
	if inner.Duration >= outer.Duration {
		t.Errorf("inner note (%v s) should be shorter than outer (%v s)",
			inner.Duration, outer.Duration)
	}
}

func TestReadFileUnterminatedNote(t *testing.T) {
	path := writeSMF(t, func(track *smf.Track) {
		track.Add(0, smf.MetaTempo(120))
		track.Add(0, gomidi.NoteOn(0, 60, 100))
		track.Add(960, gomidi.NoteOff(0, 60))
		// Never released; must close at end of file
		track.Add(0, gomidi.NoteOn(0, 72, 90))
	})

	content, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(content.Notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(content.Notes))
	}
	for _, n := range content.Notes {
		if n.Duration < 0 {
			t.Errorf("negative duration: %+v", n)
		}
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile("/nonexistent/file.mid")
	if !errors.Is(err, ErrMIDIParse) {
		t.Fatalf("err = %v, want ErrMIDIParse", err)
	}
}

func TestReadFileGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.mid")
	if err := os.WriteFile(path, []byte("this is not midi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path); !errors.Is(err, ErrMIDIParse) {
		t.Fatalf("err = %v, want ErrMIDIParse", err)
	}
}
