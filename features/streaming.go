package features

import (
	"errors"
	"math"

	"github.com/jrb00013/aamati/algorithms/common"
	"github.com/jrb00013/aamati/algorithms/filters"
	"github.com/jrb00013/aamati/algorithms/stats"
	"github.com/jrb00013/aamati/algorithms/temporal"
	"github.com/jrb00013/aamati/midi"
)

// ErrBufferNotPrimed indicates the rolling history does not yet hold a full
// analysis window. It is a "no decision yet" result, not a failure: the
// caller keeps its previous mood and feeds more samples.
var ErrBufferNotPrimed = errors.New("history buffer not primed")

// StreamingConfig configures the streaming audio extractor
type StreamingConfig struct {
	SampleRate int `json:"sample_rate"`
	// WindowSeconds of buffered audio required before extraction produces
	// meaningful statistics
	WindowSeconds float64 `json:"window_seconds"`
	// HistorySeconds caps the rolling history; oldest samples are evicted
	// beyond this
	HistorySeconds float64 `json:"history_seconds"`
	// OnsetThreshold is the energy-rise threshold relative to the window
	// peak (0-1)
	OnsetThreshold float64 `json:"onset_threshold"`
	// MinOnsetGap in seconds suppresses double-triggered onsets
	MinOnsetGap float64 `json:"min_onset_gap"`
	// ActiveLevel is the amplitude magnitude above which a sample counts as
	// musical activity
	ActiveLevel float64 `json:"active_level"`
}

// DefaultStreamingConfig returns sensible defaults for 44.1kHz input
func DefaultStreamingConfig() StreamingConfig {
	return StreamingConfig{
		SampleRate:     44100,
		WindowSeconds:  2.0,
		HistorySeconds: 10.0,
		OnsetThreshold: 0.3,
		MinOnsetGap:    0.05,
		ActiveLevel:    0.1,
	}
}

// StreamingExtractor converts raw audio sample blocks into GrooveFeatures
// over a bounded rolling history.
//
// Push is safe on a real-time callback thread: the ring is pre-reserved to
// its cap, eviction is O(1) by overwrite, and nothing allocates or logs.
// Extract does the heavy analysis and belongs on a worker goroutine. An
// extractor instance is exclusively owned; it is not safe for concurrent
// use without external hand-off discipline.
type StreamingExtractor struct {
	cfg StreamingConfig

	ring  []float64
	head  int
	count int

	// scratch receives the linearized ring during Extract
	scratch []float64

	windowSamples  int
	dcFilter       *filters.DCRemoval
	tempoEstimator *temporal.TempoEstimation
	onsetDetector  *temporal.OnsetDetection
}

// NewStreamingExtractor creates a streaming extractor with all buffers
// pre-reserved to the history cap
func NewStreamingExtractor(cfg StreamingConfig) *StreamingExtractor {
	capSamples := int(cfg.HistorySeconds * float64(cfg.SampleRate))
	if capSamples < 1 {
		capSamples = 1
	}
	windowSamples := int(cfg.WindowSeconds * float64(cfg.SampleRate))
	if windowSamples < 1 {
		windowSamples = 1
	}
	if windowSamples > capSamples {
		windowSamples = capSamples
	}

	return &StreamingExtractor{
		cfg:            cfg,
		ring:           make([]float64, capSamples),
		scratch:        make([]float64, capSamples),
		windowSamples:  windowSamples,
		dcFilter:       filters.NewDCRemoval(),
		tempoEstimator: temporal.NewTempoEstimation(),
		onsetDetector:  temporal.NewOnsetDetection(),
	}
}

// Push appends raw samples to the rolling history, evicting the oldest
// samples once the cap is exceeded. Real-time safe.
func (x *StreamingExtractor) Push(samples []float64) {
	for _, s := range samples {
		x.ring[x.head] = s
		x.head++
		if x.head == len(x.ring) {
			x.head = 0
		}
		if x.count < len(x.ring) {
			x.count++
		}
	}
}

// Primed reports whether the history holds at least one full analysis
// window. Real-time safe.
func (x *StreamingExtractor) Primed() bool {
	return x.count >= x.windowSamples
}

// Reset discards all buffered history
func (x *StreamingExtractor) Reset() {
	x.head = 0
	x.count = 0
}

// Ingest pushes samples and extracts features if the window is full.
// Returns ErrBufferNotPrimed until enough history has accumulated; short
// windows would divide by zero and produce meaningless statistics.
func (x *StreamingExtractor) Ingest(samples []float64) (GrooveFeatures, error) {
	x.Push(samples)
	return x.Extract()
}

// Extract computes a fresh GrooveFeatures over the buffered history
func (x *StreamingExtractor) Extract() (GrooveFeatures, error) {
	if !x.Primed() {
		return GrooveFeatures{}, ErrBufferNotPrimed
	}
	return x.Analyze(x.linearize()), nil
}

// Snapshot copies the buffered history oldest-first into dst and returns
// the number of samples copied. Real-time safe when dst is pre-sized; the
// caller can then hand the snapshot to Analyze on another goroutine while
// Push keeps running.
func (x *StreamingExtractor) Snapshot(dst []float64) int {
	n := x.count
	if n > len(dst) {
		n = len(dst)
	}
	start := x.head - n
	if start < 0 {
		start += len(x.ring)
	}
	for i := 0; i < n; i++ {
		idx := start + i
		if idx >= len(x.ring) {
			idx -= len(x.ring)
		}
		dst[i] = x.ring[idx]
	}
	return n
}

// Analyze computes GrooveFeatures over an explicit signal, filtering it in
// place. It touches no ring state, so it may run concurrently with Push on
// a snapshot.
func (x *StreamingExtractor) Analyze(signal []float64) GrooveFeatures {
	sr := x.cfg.SampleRate

	// A DC bias would inflate RMS energy and mask onset transients
	x.dcFilter.Reset()
	x.dcFilter.ProcessInPlace(signal)

	tempo := x.tempoEstimator.EstimateTempo(signal, sr)
	onsets := x.onsetDetector.DetectOnsetsEnergy(signal, sr, x.cfg.OnsetThreshold, x.cfg.MinOnsetGap)
	iois := temporal.InterOnsetIntervals(onsets)

	duration := float64(len(signal)) / float64(sr)

	var f GrooveFeatures
	f.Tempo = tempo
	f.Swing = swingFromIntervals(iois)
	f.Density = x.eventRate(signal, duration)
	minAmp, maxAmp := common.MinMax(signal)
	f.DynamicRange = (maxAmp - minAmp) * 127.0 / 2.0
	f.Energy = common.Clamp(common.RMS(signal), 0, 1)

	x.amplitudeProxies(signal, &f)
	f.Syncopation = syncopationFromOnsets(onsets, tempo)
	if len(iois) > 1 {
		f.OnsetEntropy = stats.ShannonEntropy(iois, 10)
	}
	return f
}

// linearize copies the ring oldest-first into the scratch buffer
func (x *StreamingExtractor) linearize() []float64 {
	n := x.count
	start := x.head - n
	if start < 0 {
		start += len(x.ring)
	}
	for i := 0; i < n; i++ {
		idx := start + i
		if idx >= len(x.ring) {
			idx -= len(x.ring)
		}
		x.scratch[i] = x.ring[idx]
	}
	return x.scratch[:n]
}

// eventRate counts upward crossings of the activity level, normalized to
// events per second
func (x *StreamingExtractor) eventRate(signal []float64, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	events := 0
	active := false
	for _, s := range signal {
		above := math.Abs(s) > x.cfg.ActiveLevel
		if above && !active {
			events++
		}
		active = above
	}
	return float64(events) / duration
}

// amplitudeProxies fills the velocity/pitch moment statistics from
// per-sample proxies: amplitude maps to velocity, and amplitude-mapped
// register stands in for pitch. Batch MIDI extraction replaces both with
// true note values.
func (x *StreamingExtractor) amplitudeProxies(signal []float64, f *GrooveFeatures) {
	n := len(signal)
	if n == 0 {
		return
	}

	sum, sumSq := 0.0, 0.0
	minAbs, maxAbs := math.Inf(1), 0.0
	activeSamples := 0
	for _, s := range signal {
		a := math.Abs(s)
		v := a * 127.0
		sum += v
		sumSq += v * v
		if a < minAbs {
			minAbs = a
		}
		if a > maxAbs {
			maxAbs = a
		}
		if a > x.cfg.ActiveLevel {
			activeSamples++
		}
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}

	f.VelocityMean = mean
	f.VelocityStd = math.Sqrt(variance)
	f.PitchMean = float64(midi.MinGeneratedPitch) + mean/127.0*48.0
	f.PitchRange = (maxAbs - minAbs) * 48.0
	// Crude voice-count proxy: how much of the window is musically active
	f.Polyphony = float64(activeSamples) / float64(n) * 4.0
}

// swingFromIntervals measures the average absolute deviation of consecutive
// inter-onset interval pairs from the ideal 2:1 swing ratio
func swingFromIntervals(iois []float64) float64 {
	if len(iois) < 2 {
		return 0
	}
	sum := 0.0
	pairs := 0
	for i := 0; i+1 < len(iois); i += 2 {
		if iois[i+1] <= 0 {
			continue
		}
		ratio := iois[i] / iois[i+1]
		sum += math.Abs(ratio-2.0) / 2.0
		pairs++
	}
	if pairs == 0 {
		return 0
	}
	return common.Clamp(sum/float64(pairs), 0, 1)
}

// syncopationFromOnsets accumulates the strength of onsets whose beat phase
// falls strictly between quarter-beat boundaries, normalized by onset count
func syncopationFromOnsets(onsets []temporal.Onset, tempo float64) float64 {
	if len(onsets) == 0 || tempo <= 0 {
		return 0
	}
	const tol = 0.05
	sum := 0.0
	for _, o := range onsets {
		phase := midi.BeatPhase(o.Time, tempo)
		offGrid := math.Mod(phase, 0.25)
		if offGrid > tol && offGrid < 0.25-tol {
			sum += o.Strength
		}
	}
	return sum / float64(len(onsets))
}
