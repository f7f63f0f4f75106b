package engine

import (
	"fmt"

	"github.com/jrb00013/aamati/features"
)

// Config controls the mood engine: the audio analysis window, how often
// inference runs, and how strongly the downstream processors react.
type Config struct {
	// Streaming feature extraction
	SampleRate     int     `json:"sample_rate"`
	WindowSeconds  float64 `json:"window_seconds"`
	HistorySeconds float64 `json:"history_seconds"`

	// InferenceCadence is how many ingested audio blocks pass between
	// mood inferences. The audio thread only signals the worker every
	// cadence boundary.
	InferenceCadence int `json:"inference_cadence"`

	// ModelPath locates the trained mood classifier artifact. An empty
	// path leaves the engine in heuristics-only mode.
	ModelPath string `json:"model_path"`

	// Sensitivity scales how strongly the emotional optimizer reshapes
	// notes, in [0, 1]
	Sensitivity float64 `json:"sensitivity"`

	// BeatsPerMeasure for groove shaping
	BeatsPerMeasure float64 `json:"beats_per_measure"`

	// Seed drives all generator and humanization randomness. Zero selects
	// a time-based seed.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns the engine defaults: CD-rate audio, a 2 s analysis
// window over 10 s of history, inference every 16 blocks
func DefaultConfig() Config {
	return Config{
		SampleRate:       44100,
		WindowSeconds:    2.0,
		HistorySeconds:   10.0,
		InferenceCadence: 16,
		Sensitivity:      0.7,
		BeatsPerMeasure:  4,
	}
}

// Validate checks the configuration for values that would break analysis
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.WindowSeconds <= 0 {
		return fmt.Errorf("window seconds must be positive, got %f", c.WindowSeconds)
	}
	if c.HistorySeconds < c.WindowSeconds {
		return fmt.Errorf("history (%f s) must cover at least one window (%f s)",
			c.HistorySeconds, c.WindowSeconds)
	}
	if c.InferenceCadence < 1 {
		return fmt.Errorf("inference cadence must be at least 1, got %d", c.InferenceCadence)
	}
	if c.Sensitivity < 0 || c.Sensitivity > 1 {
		return fmt.Errorf("sensitivity must be in [0, 1], got %f", c.Sensitivity)
	}
	return nil
}

func (c Config) streamingConfig() features.StreamingConfig {
	sc := features.DefaultStreamingConfig()
	sc.SampleRate = c.SampleRate
	sc.WindowSeconds = c.WindowSeconds
	sc.HistorySeconds = c.HistorySeconds
	return sc
}
