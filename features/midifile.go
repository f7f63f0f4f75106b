package features

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/jrb00013/aamati/algorithms/common"
	"github.com/jrb00013/aamati/algorithms/stats"
	"github.com/jrb00013/aamati/logging"
	"github.com/jrb00013/aamati/midi"
)

// MIDIExtractor computes GrooveFeatures from standard MIDI files in batch
// mode, using true note velocities and pitches instead of the streaming
// amplitude proxies.
type MIDIExtractor struct {
	logger logging.Logger
}

// NewMIDIExtractor creates a batch MIDI feature extractor
func NewMIDIExtractor() *MIDIExtractor {
	return &MIDIExtractor{
		logger: logging.WithFields(logging.Fields{
			"component": "midi_extractor",
		}),
	}
}

// ExtractFromFile reads a MIDI file and computes its feature vector. A
// parse failure degrades to the fallback vector and reports the wrapped
// error so batch jobs keep running while diagnostics surface; files with
// fewer than two notes or zero duration return the fallback silently (they
// are valid but carry no groove).
func (m *MIDIExtractor) ExtractFromFile(path string) (GrooveFeatures, error) {
	content, err := midi.ReadFile(path)
	if err != nil {
		m.logger.Warn("midi parse failed, using fallback features", logging.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return Fallback(), err
	}

	if len(content.Notes) < 2 || content.Duration <= 0 {
		m.logger.Debug("not enough notes for feature extraction", logging.Fields{
			"path":  path,
			"notes": len(content.Notes),
		})
		return Fallback(), nil
	}

	return extractFromNotes(content), nil
}

// extractFromNotes computes the batch feature vector. Caller guarantees at
// least two notes and positive duration.
func extractFromNotes(content *midi.FileContent) GrooveFeatures {
	notes := content.Notes
	duration := content.Duration

	starts := make([]float64, len(notes))
	velocities := make([]float64, len(notes))
	pitches := make([]float64, len(notes))
	for i, n := range notes {
		starts[i] = n.Start
		velocities[i] = n.Velocity
		pitches[i] = float64(n.Pitch)
	}

	var f GrooveFeatures
	f.Tempo = content.Tempo
	f.Density = float64(len(notes)) / duration

	// Swing as deviation from the eighth-note grid (0.25s slots at the
	// reference 120 BPM)
	swingSum := 0.0
	for _, t := range starts {
		quantized := math.Round(t*4.0) / 4.0
		swingSum += math.Abs(t - quantized)
	}
	f.Swing = swingSum / float64(len(starts))

	minVel, maxVel := velocities[0], velocities[0]
	for _, v := range velocities[1:] {
		minVel = math.Min(minVel, v)
		maxVel = math.Max(maxVel, v)
	}
	f.DynamicRange = maxVel - minVel
	f.VelocityMean = stat.Mean(velocities, nil)
	f.VelocityStd = common.StandardDeviation(velocities)

	f.Energy = f.Density*0.5 + f.VelocityMean/127.0*0.5

	minPitch, maxPitch := pitches[0], pitches[0]
	for _, p := range pitches[1:] {
		minPitch = math.Min(minPitch, p)
		maxPitch = math.Max(maxPitch, p)
	}
	f.PitchMean = stat.Mean(pitches, nil)
	f.PitchRange = maxPitch - minPitch

	f.Polyphony = averagePolyphony(notes)

	sort.Float64s(starts)
	iois := make([]float64, 0, len(starts)-1)
	for i := 1; i < len(starts); i++ {
		iois = append(iois, starts[i]-starts[i-1])
	}
	if len(iois) > 1 {
		f.Syncopation = stat.Variance(iois, nil)
		f.OnsetEntropy = stats.ShannonEntropy(iois, 10)
	}

	return f
}

// averagePolyphony sweeps a sorted on/off timeline and averages the number
// of simultaneously sounding notes
func averagePolyphony(notes []midi.NoteEvent) float64 {
	type edge struct {
		time  float64
		delta int
	}
	timeline := make([]edge, 0, len(notes)*2)
	for _, n := range notes {
		timeline = append(timeline, edge{time: n.Start, delta: +1})
		timeline = append(timeline, edge{time: n.End(), delta: -1})
	}
	sort.Slice(timeline, func(i, j int) bool {
		if timeline[i].time != timeline[j].time {
			return timeline[i].time < timeline[j].time
		}
		// Offs before ons at the same instant
		return timeline[i].delta < timeline[j].delta
	})

	// Time-weighted average: integrate the active voice count over the
	// span between the first onset and the last release
	active := 0
	integral := 0.0
	prev := timeline[0].time
	for _, e := range timeline {
		integral += float64(active) * (e.time - prev)
		active += e.delta
		prev = e.time
	}

	span := timeline[len(timeline)-1].time - timeline[0].time
	if span <= 0 {
		return float64(len(notes))
	}
	return integral / span
}
