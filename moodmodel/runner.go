package moodmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/jrb00013/aamati/features"
	"github.com/jrb00013/aamati/logging"
	"github.com/jrb00013/aamati/mood"
)

// Failure taxonomy for the ML path. Each outcome is distinct and explicit
// so the orchestrator can decide whether to hold the previous mood or
// surface a diagnostic; nothing here degrades silently.
var (
	// ErrModelNotLoaded: predict was called before a successful Load
	ErrModelNotLoaded = errors.New("model not loaded")
	// ErrInvalidInput: a feature is non-finite or outside its documented
	// range; inference is never invoked
	ErrInvalidInput = errors.New("invalid model input")
	// ErrLowConfidence: the winning class score fell below the confidence
	// floor; the caller should keep its previous mood
	ErrLowConfidence = errors.New("low confidence prediction")
	// ErrShapeMismatch: the artifact's tensor contract does not match the
	// expected [batch,5] -> [batch,10] shape (load-time only)
	ErrShapeMismatch = errors.New("model shape mismatch")
)

const (
	// ConfidenceFloor rejects argmax winners that barely beat a uniform
	// distribution
	ConfidenceFloor = 0.1

	// minArtifactSize guards against truncated or placeholder files
	minArtifactSize = 256
)

// featureRange is the documented validity bound for one input feature
type featureRange struct {
	name string
	min  float64
	max  float64
}

// Gate applied before inference, in model column order
var featureRanges = [features.ModelInputSize]featureRange{
	{name: "tempo", min: 60, max: 200},
	{name: "swing", min: 0, max: 1},
	{name: "density", min: 0, max: 10},
	{name: "dynamic_range", min: 0, max: 127},
	{name: "energy", min: 0, max: 1},
}

type denseLayer struct {
	weights    *mat.Dense
	biases     []float64
	activation string
}

// Prediction is the full classifier output for callers that need soft
// labels alongside the decision
type Prediction struct {
	Label         mood.Label              `json:"label"`
	Confidence    float64                 `json:"confidence"`
	Probabilities [mood.NumLabels]float64 `json:"probabilities"`
}

// Runner loads a trained groove mood model and maps feature vectors to mood
// labels. A Runner is exclusively owned by one goroutine; the engine hands
// predictions across threads, not the Runner itself.
type Runner struct {
	path   string
	layers []denseLayer
	loaded bool
	logger logging.Logger
}

// NewRunner creates an unloaded model runner
func NewRunner() *Runner {
	return &Runner{
		logger: logging.WithFields(logging.Fields{
			"component": "mood_model",
		}),
	}
}

// Loaded reports whether a model artifact has been validated and loaded
func (r *Runner) Loaded() bool {
	return r.loaded
}

// Path returns the path of the loaded artifact, if any
func (r *Runner) Path() string {
	return r.path
}

// Unload discards the loaded model; subsequent predictions return
// ErrModelNotLoaded
func (r *Runner) Unload() {
	r.loaded = false
	r.layers = nil
	r.path = ""
}

// Load reads and validates a model artifact. Any mismatch against the
// tensor contract fails the load and leaves the runner unloaded.
func (r *Runner) Load(path string) error {
	r.loaded = false
	r.layers = nil
	r.path = ""

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("model file: %w", err)
	}
	if info.Size() < minArtifactSize {
		return fmt.Errorf("model file %s is implausibly small (%d bytes)", path, info.Size())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("model file: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return fmt.Errorf("model artifact %s: %w", path, err)
	}

	layers, err := validateArtifact(&artifact)
	if err != nil {
		return err
	}

	r.layers = layers
	r.loaded = true
	r.path = path
	r.logger.Info("mood model loaded", logging.Fields{
		"path":   path,
		"name":   artifact.Name,
		"layers": len(layers),
	})
	return nil
}

// validateArtifact enforces the tensor contract and coherent layer
// dimensions, returning the compiled layers
func validateArtifact(a *Artifact) ([]denseLayer, error) {
	if len(a.Inputs) != 1 {
		return nil, fmt.Errorf("%w: expected exactly 1 input tensor, got %d", ErrShapeMismatch, len(a.Inputs))
	}
	if len(a.Outputs) != 1 {
		return nil, fmt.Errorf("%w: expected exactly 1 output tensor, got %d", ErrShapeMismatch, len(a.Outputs))
	}
	if err := validateTensor(a.Inputs[0], features.ModelInputSize); err != nil {
		return nil, err
	}
	if err := validateTensor(a.Outputs[0], mood.NumLabels); err != nil {
		return nil, err
	}
	if len(a.Layers) == 0 {
		return nil, fmt.Errorf("%w: artifact declares no layers", ErrShapeMismatch)
	}

	layers := make([]denseLayer, 0, len(a.Layers))
	width := features.ModelInputSize
	for i, spec := range a.Layers {
		if len(spec.Weights) != width {
			return nil, fmt.Errorf("%w: layer %d expects %d inputs, weights have %d rows",
				ErrShapeMismatch, i, width, len(spec.Weights))
		}
		out := len(spec.Weights[0])
		if out == 0 {
			return nil, fmt.Errorf("%w: layer %d has zero outputs", ErrShapeMismatch, i)
		}
		flat := make([]float64, 0, width*out)
		for _, row := range spec.Weights {
			if len(row) != out {
				return nil, fmt.Errorf("%w: layer %d has ragged weight rows", ErrShapeMismatch, i)
			}
			flat = append(flat, row...)
		}
		if len(spec.Biases) != out {
			return nil, fmt.Errorf("%w: layer %d has %d biases for %d outputs",
				ErrShapeMismatch, i, len(spec.Biases), out)
		}
		layers = append(layers, denseLayer{
			weights:    mat.NewDense(width, out, flat),
			biases:     spec.Biases,
			activation: spec.Activation,
		})
		width = out
	}
	if width != mood.NumLabels {
		return nil, fmt.Errorf("%w: final layer emits %d values, output tensor declares %d",
			ErrShapeMismatch, width, mood.NumLabels)
	}
	return layers, nil
}

func validateTensor(t TensorSpec, wantWidth int) error {
	if len(t.Shape) != 2 {
		return fmt.Errorf("%w: tensor %s has rank %d, want 2", ErrShapeMismatch, t.Name, len(t.Shape))
	}
	if t.Shape[0] != -1 && t.Shape[0] != 1 {
		return fmt.Errorf("%w: tensor %s has fixed batch dim %d", ErrShapeMismatch, t.Name, t.Shape[0])
	}
	if t.Shape[1] != wantWidth {
		return fmt.Errorf("%w: tensor %s has width %d, want %d", ErrShapeMismatch, t.Name, t.Shape[1], wantWidth)
	}
	if t.DType != "float32" {
		return fmt.Errorf("%w: tensor %s has dtype %s, want float32", ErrShapeMismatch, t.Name, t.DType)
	}
	return nil
}

// validateFeatures gates the input against the documented per-feature
// ranges before any inference runs
func validateFeatures(input [features.ModelInputSize]float64) error {
	for i, v := range input {
		bounds := featureRanges[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidInput, bounds.name)
		}
		if v < bounds.min || v > bounds.max {
			return fmt.Errorf("%w: %s=%g outside [%g, %g]",
				ErrInvalidInput, bounds.name, v, bounds.min, bounds.max)
		}
	}
	return nil
}

// Predict maps a validated feature vector to the winning mood label and its
// confidence. Ties resolve to the lowest label index; a winner below the
// confidence floor returns ErrLowConfidence alongside the tentative label
// so the caller can choose to hold its previous mood.
func (r *Runner) Predict(input [features.ModelInputSize]float64) (mood.Label, float64, error) {
	pred, err := r.PredictDetailed(input)
	return pred.Label, pred.Confidence, err
}

// PredictProbabilities exposes the raw class distribution for callers that
// need soft labels
func (r *Runner) PredictProbabilities(input [features.ModelInputSize]float64) ([mood.NumLabels]float64, error) {
	pred, err := r.PredictDetailed(input)
	if err != nil && !errors.Is(err, ErrLowConfidence) {
		return [mood.NumLabels]float64{}, err
	}
	return pred.Probabilities, nil
}

// PredictDetailed runs inference and returns the label, confidence and full
// class distribution
func (r *Runner) PredictDetailed(input [features.ModelInputSize]float64) (Prediction, error) {
	if !r.loaded {
		return Prediction{}, ErrModelNotLoaded
	}
	if err := validateFeatures(input); err != nil {
		return Prediction{}, err
	}

	scores := r.forward(input[:])

	var probs [mood.NumLabels]float64
	copy(probs[:], softmax(scores))

	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}

	pred := Prediction{
		Label:         mood.Label(best),
		Confidence:    probs[best],
		Probabilities: probs,
	}
	if pred.Confidence < ConfidenceFloor {
		return pred, fmt.Errorf("%w: %.3f below floor %.2f", ErrLowConfidence, pred.Confidence, ConfidenceFloor)
	}
	return pred, nil
}

// forward runs the dense layers on a single feature row
func (r *Runner) forward(input []float64) []float64 {
	x := mat.NewDense(1, len(input), append([]float64(nil), input...))
	for _, layer := range r.layers {
		_, out := layer.weights.Dims()
		y := mat.NewDense(1, out, nil)
		y.Mul(x, layer.weights)
		for j := 0; j < out; j++ {
			v := y.At(0, j) + layer.biases[j]
			if layer.activation == "relu" && v < 0 {
				v = 0
			}
			y.Set(0, j, v)
		}
		x = y
	}
	return mat.Row(nil, 0, x)
}

// softmax converts final-layer scores into a probability distribution,
// shifted by the max score for numerical stability
func softmax(scores []float64) []float64 {
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	sum := 0.0
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
