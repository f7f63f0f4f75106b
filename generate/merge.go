package generate

import (
	"sort"

	"github.com/jrb00013/aamati/midi"
)

// noteBoundary is one side of a note: an onset carrying the full note, or a
// release referencing the matching onset
type noteBoundary struct {
	time    float64
	isOnset bool
	note    midi.NoteEvent
}

// mergePass rebuilds a combined note stream so that no two notes of the
// same pitch and channel ever sound at once. Notes are expanded into
// boundary events; an onset arriving while the same key is still sounding
// truncates the open note at the new onset, so at most one note per key is
// open at any instant, and notes still open at the end of the stream close
// at the final boundary time.
func mergePass(notes []midi.NoteEvent) []midi.NoteEvent {
	if len(notes) <= 1 {
		return notes
	}

	boundaries := make([]noteBoundary, 0, len(notes)*2)
	for _, n := range notes {
		boundaries = append(boundaries,
			noteBoundary{time: n.Start, isOnset: true, note: n},
			noteBoundary{time: n.End(), isOnset: false, note: n},
		)
	}
	// Releases before onsets at equal times so back-to-back notes do not
	// register as overlapping
	sort.SliceStable(boundaries, func(i, j int) bool {
		if boundaries[i].time != boundaries[j].time {
			return boundaries[i].time < boundaries[j].time
		}
		return !boundaries[i].isOnset && boundaries[j].isOnset
	})

	type voice struct {
		pitch   int
		channel int
	}
	open := make(map[voice]midi.NoteEvent)
	sounding := make(map[voice]bool)
	out := make([]midi.NoteEvent, 0, len(notes))
	lastTime := 0.0

	closeAt := func(v voice, t float64) {
		if !sounding[v] {
			return
		}
		n := open[v]
		delete(open, v)
		delete(sounding, v)
		n.Duration = t - n.Start
		if n.Duration > 0 {
			out = append(out, n)
		}
	}

	for _, b := range boundaries {
		lastTime = b.time
		v := voice{pitch: b.note.Pitch, channel: b.note.Channel}
		if b.isOnset {
			// A double-trigger truncates the note already sounding
			closeAt(v, b.time)
			open[v] = b.note
			sounding[v] = true
			continue
		}
		// A release belonging to a truncated note has already been
		// consumed; only the sounding note's own release closes it
		if sounding[v] && open[v] == b.note {
			closeAt(v, b.time)
		}
	}

	// Close anything still sounding at the final boundary
	for v := range sounding {
		closeAt(v, lastTime)
	}

	midi.SortByStart(out)
	return out
}
