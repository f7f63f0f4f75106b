package mood

import (
	"fmt"
)

// Component is one weighted mood in a hybrid spec
type Component struct {
	Label  Label   `json:"label"`
	Weight float64 `json:"weight"`
}

// HybridSpec is an ordered weighted combination of moods. Construction
// normalizes the weights so they always sum to 1; consumers never see raw
// weights.
type HybridSpec struct {
	components []Component
}

// NewHybridSpec builds a spec from raw (label, weight) pairs. Weights must
// be non-negative with a positive sum and every label must be valid.
func NewHybridSpec(components ...Component) (HybridSpec, error) {
	if len(components) == 0 {
		return HybridSpec{}, fmt.Errorf("hybrid spec needs at least one mood")
	}

	total := 0.0
	for _, c := range components {
		if !c.Label.Valid() {
			return HybridSpec{}, fmt.Errorf("invalid mood label %d", c.Label)
		}
		if c.Weight < 0 {
			return HybridSpec{}, fmt.Errorf("negative weight %f for %s", c.Weight, c.Label)
		}
		total += c.Weight
	}
	if total <= 0 {
		return HybridSpec{}, fmt.Errorf("hybrid spec weights sum to zero")
	}

	normalized := make([]Component, len(components))
	for i, c := range components {
		normalized[i] = Component{Label: c.Label, Weight: c.Weight / total}
	}
	return HybridSpec{components: normalized}, nil
}

// UniformHybridSpec builds a spec with equal weights. Repeating a single
// label k times expresses intensification.
func UniformHybridSpec(labels ...Label) (HybridSpec, error) {
	components := make([]Component, len(labels))
	for i, l := range labels {
		components[i] = Component{Label: l, Weight: 1}
	}
	return NewHybridSpec(components...)
}

// Components returns the normalized (label, weight) pairs in spec order
func (h HybridSpec) Components() []Component {
	out := make([]Component, len(h.components))
	copy(out, h.components)
	return out
}

// Len returns the number of listed moods, counting repetitions
func (h HybridSpec) Len() int {
	return len(h.components)
}

// DistinctMoods returns the number of distinct labels in the spec
func (h HybridSpec) DistinctMoods() int {
	seen := map[Label]bool{}
	for _, c := range h.components {
		seen[c.Label] = true
	}
	return len(seen)
}

// Intensification reports whether every listed mood is the same label; if
// so it returns that label and the repetition count. Blending a mood with
// itself is a no-op under linear interpolation, so generators switch to an
// escalation algorithm instead.
func (h HybridSpec) Intensification() (Label, int, bool) {
	if len(h.components) == 0 {
		return 0, 0, false
	}
	first := h.components[0].Label
	for _, c := range h.components[1:] {
		if c.Label != first {
			return 0, 0, false
		}
	}
	return first, len(h.components), true
}

// BlendHybrid computes the weighted average emotional profile across the
// spec. Weight normalization happens at construction, so
// {A:2, B:2} and {A:1, B:1} blend identically.
func BlendHybrid(spec HybridSpec) EmotionalProfile {
	var out EmotionalProfile
	for _, c := range spec.components {
		p := EmotionalProfileFor(c.Label)
		out.Energy += p.Energy * c.Weight
		out.Tension += p.Tension * c.Weight
		out.Complexity += p.Complexity * c.Weight
		out.Danceability += p.Danceability * c.Weight
		out.Warmth += p.Warmth * c.Weight
		out.Brightness += p.Brightness * c.Weight
	}
	return out
}

// BlendHybridGroove computes the weighted average groove profile across the
// spec
func BlendHybridGroove(spec HybridSpec) GrooveProfile {
	var out GrooveProfile
	for _, c := range spec.components {
		g := GrooveProfileFor(c.Label)
		out.Humanization += g.Humanization * c.Weight
		out.SwingAmount += g.SwingAmount * c.Weight
		out.AccentPattern += g.AccentPattern * c.Weight
		out.MicroTiming += g.MicroTiming * c.Weight
		out.VelocityVariation += g.VelocityVariation * c.Weight
		out.GhostNotes += g.GhostNotes * c.Weight
	}
	return out
}
