package midi

import (
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrMIDIParse indicates a MIDI file could not be read or contained no
// usable note data. Batch feature extraction degrades to a fallback vector
// on this error instead of aborting.
var ErrMIDIParse = errors.New("midi parse failure")

// FileContent is the note-level view of a standard MIDI file
type FileContent struct {
	Notes []NoteEvent `json:"notes"`
	// Tempo is the mean of the file's tempo changes, or 120 when the file
	// declares none
	Tempo float64 `json:"tempo"`
	// Duration is the end time of the last note in seconds
	Duration float64 `json:"duration"`
}

type openNote struct {
	start    float64
	velocity float64
}

// ReadFile parses a standard MIDI file into timed note events. Note-ons are
// paired with their note-offs per (channel, key); unterminated notes are
// closed at the end of the file.
func ReadFile(path string) (*FileContent, error) {
	var (
		notes   []NoteEvent
		tempos  []float64
		endTime float64
		open    = map[[2]uint8][]openNote{}
	)

	rd := smf.ReadTracks(path)
	if rd == nil {
		return nil, fmt.Errorf("%w: cannot open %s", ErrMIDIParse, path)
	}

	err := rd.Do(func(te smf.TrackEvent) {
		seconds := float64(te.AbsMicroSeconds) / 1e6
		if seconds > endTime {
			endTime = seconds
		}

		var bpm float64
		if te.Message.GetMetaTempo(&bpm) {
			tempos = append(tempos, bpm)
			return
		}

		var ch, key, vel uint8
		if te.Message.GetNoteStart(&ch, &key, &vel) {
			open[[2]uint8{ch, key}] = append(open[[2]uint8{ch, key}], openNote{
				start:    seconds,
				velocity: float64(vel),
			})
			return
		}
		if te.Message.GetNoteEnd(&ch, &key) {
			stack := open[[2]uint8{ch, key}]
			if len(stack) == 0 {
				return
			}
			// Close the most recent open note-on for this key
			last := stack[len(stack)-1]
			open[[2]uint8{ch, key}] = stack[:len(stack)-1]
			notes = append(notes, NoteEvent{
				Pitch:    int(key),
				Velocity: last.velocity,
				Start:    last.start,
				Duration: seconds - last.start,
				Channel:  int(ch),
			})
		}
	}).Error()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMIDIParse, path, err)
	}

	// Unterminated notes end with the file
	for k, stack := range open {
		for _, on := range stack {
			notes = append(notes, NoteEvent{
				Pitch:    int(k[1]),
				Velocity: on.velocity,
				Start:    on.start,
				Duration: endTime - on.start,
				Channel:  int(k[0]),
			})
		}
	}

	SortByStart(notes)

	tempo := 120.0
	if len(tempos) > 0 {
		sum := 0.0
		for _, t := range tempos {
			sum += t
		}
		tempo = sum / float64(len(tempos))
	}

	return &FileContent{
		Notes:    notes,
		Tempo:    tempo,
		Duration: endTime,
	}, nil
}
