package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrb00013/aamati/emotion"
	"github.com/jrb00013/aamati/features"
	"github.com/jrb00013/aamati/generate"
	"github.com/jrb00013/aamati/groove"
	"github.com/jrb00013/aamati/logging"
	"github.com/jrb00013/aamati/midi"
	"github.com/jrb00013/aamati/mood"
	"github.com/jrb00013/aamati/moodmodel"
)

// Engine wires the full mood-sensing path together: streaming feature
// extraction, classifier inference, mood state publication, and the
// downstream note processors and generators.
//
// Thread model: IngestAudio is the only method intended for a real-time
// audio thread; it never allocates, locks or logs. Inference runs on an
// internal worker goroutine and publishes immutable MoodState values
// through an atomic pointer. All other methods belong to a single control
// goroutine.
type Engine struct {
	cfg Config

	extractor *features.StreamingExtractor
	runner    *moodmodel.Runner
	optimizer *emotion.Optimizer
	shaper    *groove.Shaper
	generator *generate.Generator

	state    atomic.Pointer[MoodState]
	override atomic.Bool

	// Audio-thread -> worker hand-off. busy gates the snapshot buffer:
	// the audio thread writes it only after winning the CAS, the worker
	// releases it when analysis finishes.
	blockCount int
	busy       atomic.Bool
	snapshot   []float64
	signal     chan int
	done       chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once

	logger logging.Logger
}

// New creates and starts a mood engine. If the config names a model path
// the classifier loads eagerly; a load failure degrades the engine to
// heuristics-only mode rather than failing construction.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	capSamples := int(cfg.HistorySeconds * float64(cfg.SampleRate))
	e := &Engine{
		cfg:       cfg,
		extractor: features.NewStreamingExtractor(cfg.streamingConfig()),
		runner:    moodmodel.NewRunner(),
		optimizer: emotion.NewOptimizer(cfg.Sensitivity, seed),
		shaper:    groove.NewShaper(seed + 1),
		generator: generate.NewGenerator(seed + 2),
		snapshot:  make([]float64, capSamples),
		signal:    make(chan int, 1),
		done:      make(chan struct{}),
		logger: logging.WithFields(logging.Fields{
			"component": "mood_engine",
		}),
	}
	e.state.Store(initialState())

	if cfg.ModelPath != "" {
		if err := e.runner.Load(cfg.ModelPath); err != nil {
			e.logger.Warn("mood model unavailable, running heuristics only", logging.Fields{
				"path":  cfg.ModelPath,
				"error": err.Error(),
			})
		}
	}

	e.wg.Add(1)
	go e.inferenceLoop()
	return e, nil
}

// IngestAudio feeds one block of raw samples from the audio callback. Every
// InferenceCadence blocks it snapshots the history and signals the worker;
// if the worker is still busy the snapshot is skipped, never blocked on.
func (e *Engine) IngestAudio(samples []float64) {
	e.extractor.Push(samples)

	e.blockCount++
	if e.blockCount < e.cfg.InferenceCadence {
		return
	}
	e.blockCount = 0

	if !e.extractor.Primed() {
		return
	}
	if !e.busy.CompareAndSwap(false, true) {
		return
	}
	n := e.extractor.Snapshot(e.snapshot)
	select {
	case e.signal <- n:
	default:
		e.busy.Store(false)
	}
}

// inferenceLoop consumes snapshots, runs feature analysis and classification
// off the audio thread, and publishes new mood states
func (e *Engine) inferenceLoop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.done:
			return
		case n := <-e.signal:
			e.inferOnce(e.snapshot[:n])
			e.busy.Store(false)
		}
	}
}

func (e *Engine) inferOnce(signal []float64) {
	f := e.extractor.Analyze(signal)

	if e.override.Load() {
		// A pinned mood still refreshes its feature view. CAS so a
		// concurrent SetTargetMood is never overwritten
		prev := e.state.Load()
		next := *prev
		next.Features = f
		next.UpdatedAt = time.Now()
		e.state.CompareAndSwap(prev, &next)
		return
	}

	if !e.runner.Loaded() {
		return
	}

	label, confidence, err := e.runner.Predict(f.Vector())
	switch {
	case err == nil:
		e.publish(label, confidence, f)
	case errors.Is(err, moodmodel.ErrLowConfidence):
		// Hold the previous mood rather than flicker on a weak decision
		e.logger.Debug("holding mood on low-confidence prediction", logging.Fields{
			"tentative":  label.String(),
			"confidence": confidence,
		})
	case errors.Is(err, moodmodel.ErrInvalidInput):
		e.logger.Warn("features outside model range, skipping inference", logging.Fields{
			"error": err.Error(),
		})
	default:
		e.logger.Error(err, "mood inference failed")
	}
}

func (e *Engine) publish(label mood.Label, confidence float64, f features.GrooveFeatures) {
	// Re-check the override flag and swap against the loaded pointer so
	// a pin raised mid-inference is never overwritten
	prev := e.state.Load()
	if e.override.Load() {
		return
	}
	if !e.state.CompareAndSwap(prev, stateFor(label, confidence, f, false)) {
		return
	}
	e.optimizer.SetMood(label, nil)
	e.shaper.SetRawProfile(mood.GrooveProfileFor(label))
	e.logger.Info("mood updated", logging.Fields{
		"mood":       label.String(),
		"confidence": confidence,
	})
}

// LatestMoodState returns the most recently published mood state. Safe from
// any goroutine; the returned value is immutable.
func (e *Engine) LatestMoodState() MoodState {
	return *e.state.Load()
}

// ModelLoaded reports whether the classifier is active
func (e *Engine) ModelLoaded() bool {
	return e.runner.Loaded()
}

// SetTargetMood pins the engine to a mood, bypassing the classifier until
// ClearTargetMood is called
func (e *Engine) SetTargetMood(label mood.Label) error {
	if !label.Valid() {
		return fmt.Errorf("invalid mood label %d", label)
	}
	// Raise the flag before swapping state: a concurrent publish either
	// sees the flag and bails, or loses its compare-and-swap to the
	// unconditional store below
	prev := e.state.Load()
	e.override.Store(true)
	e.state.Store(stateFor(label, 1.0, prev.Features, true))
	e.optimizer.SetMood(label, nil)
	e.shaper.SetRawProfile(mood.GrooveProfileFor(label))
	e.logger.Info("mood pinned", logging.Fields{"mood": label.String()})
	return nil
}

// ClearTargetMood releases a pinned mood; the classifier resumes on the
// next inference
func (e *Engine) ClearTargetMood() {
	e.override.Store(false)
}

// ApplyPreset installs a saved emotional and groove profile pair, pinning
// the engine the same way SetTargetMood does
func (e *Engine) ApplyPreset(p Preset) {
	prev := e.state.Load()
	next := *prev
	next.Emotional = p.Emotional
	next.Groove = p.Groove
	next.Overridden = true
	next.UpdatedAt = time.Now()
	e.override.Store(true)
	e.state.Store(&next)
	e.optimizer.SetProfile(p.Emotional)
	e.shaper.SetRawProfile(p.Groove)
	e.logger.Info("preset applied", logging.Fields{"preset": p.Name})
}

// ProcessNotes runs a note stream through the emotional optimizer and the
// groove shaper under the current mood, returning the shaped copy
func (e *Engine) ProcessNotes(notes []midi.NoteEvent, tempo float64) []midi.NoteEvent {
	if len(notes) == 0 {
		return notes
	}
	working := make([]midi.NoteEvent, len(notes))
	copy(working, notes)

	e.optimizer.Apply(working, tempo)
	return e.shaper.Process(working, tempo, e.cfg.BeatsPerMeasure)
}

// GeneratePattern produces a pattern in the engine's current mood
func (e *Engine) GeneratePattern(duration float64) (generate.Pattern, error) {
	return e.generator.Generate(e.state.Load().Label, duration)
}

// GenerateHybridPattern produces a pattern mixing the given weighted moods
func (e *Engine) GenerateHybridPattern(spec mood.HybridSpec, duration float64) (generate.Pattern, error) {
	return e.generator.GenerateHybrid(spec, duration)
}

// GenerateTransitionPattern produces a pattern morphing from the current
// mood to the target
func (e *Engine) GenerateTransitionPattern(to mood.Label, duration float64) (generate.Pattern, error) {
	return e.generator.GenerateTransition(e.state.Load().Label, to, duration)
}

// Close stops the inference worker. IngestAudio must not be called after
// Close returns.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		e.wg.Wait()
	})
}
