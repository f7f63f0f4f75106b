package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrb00013/aamati/midi"
	"github.com/jrb00013/aamati/mood"
)

func meanVelocity(notes []midi.NoteEvent) float64 {
	sum := 0.0
	for _, n := range notes {
		sum += n.Velocity
	}
	return sum / float64(len(notes))
}

func TestGenerateEveryMood(t *testing.T) {
	g := NewGenerator(1)
	for _, label := range mood.Labels() {
		p, err := g.Generate(label, 4.0)
		require.NoError(t, err, label.String())

		assert.Equal(t, KindSingle, p.Kind)
		assert.NotEmpty(t, p.Notes, label.String())
		assert.Greater(t, p.Confidence, 0.0, label.String())
		for _, n := range p.Notes {
			assert.GreaterOrEqual(t, n.Pitch, midi.MinGeneratedPitch)
			assert.LessOrEqual(t, n.Pitch, midi.MaxGeneratedPitch)
			assert.GreaterOrEqual(t, n.Start, 0.0)
			assert.LessOrEqual(t, n.Start, 4.0)
		}
	}
}

func TestGenerateShortDurationKeepsStartsNonNegative(t *testing.T) {
	// Durations shorter than a mood's note length must not push starts
	// below zero
	for _, label := range mood.Labels() {
		for seed := int64(1); seed <= 3; seed++ {
			g := NewGenerator(seed)
			p, err := g.Generate(label, 0.1)
			require.NoError(t, err, label.String())
			for _, n := range p.Notes {
				assert.GreaterOrEqual(t, n.Start, 0.0, label.String())
				assert.LessOrEqual(t, n.End(), 0.1+1e-9, label.String())
			}
		}
	}
}

func TestGenerateValidation(t *testing.T) {
	g := NewGenerator(1)

	_, err := g.Generate(mood.Label(99), 4)
	assert.Error(t, err)

	_, err = g.Generate(mood.Chill, 0)
	assert.Error(t, err)

	_, err = g.GenerateIntensified(mood.Chill, 0, 4)
	assert.Error(t, err)

	_, err = g.GenerateHybrid(mood.HybridSpec{}, 4)
	assert.Error(t, err)
}

func TestEnergeticDenserThanChill(t *testing.T) {
	g := NewGenerator(1)

	chill, err := g.Generate(mood.Chill, 8)
	require.NoError(t, err)
	energetic, err := g.Generate(mood.Energetic, 8)
	require.NoError(t, err)

	assert.Greater(t, len(energetic.Notes), len(chill.Notes))
	assert.Greater(t, meanVelocity(energetic.Notes), meanVelocity(chill.Notes))
}

func TestHybridMixesScales(t *testing.T) {
	spec, err := mood.NewHybridSpec(
		mood.Component{Label: mood.Chill, Weight: 1},
		mood.Component{Label: mood.Gritty, Weight: 1},
	)
	require.NoError(t, err)

	g := NewGenerator(1)
	p, err := g.GenerateHybrid(spec, 8)
	require.NoError(t, err)

	assert.Equal(t, KindHybrid, p.Kind)
	assert.NotEmpty(t, p.Notes)
	// Two distinct moods lose one confidence step but never drop below
	// the floor
	assert.GreaterOrEqual(t, p.Confidence, minConfidence)
	assert.Less(t, p.Confidence, 1.0)
}

func TestHybridOfOneMoodEscalates(t *testing.T) {
	spec, err := mood.UniformHybridSpec(mood.Energetic, mood.Energetic)
	require.NoError(t, err)

	g := NewGenerator(1)
	p, err := g.GenerateHybrid(spec, 4)
	require.NoError(t, err)
	assert.Equal(t, KindIntensified, p.Kind)
}

func TestIntensificationEscalates(t *testing.T) {
	duration := 8.0
	counts := make([]int, 0, 3)
	velocities := make([]float64, 0, 3)
	for k := 1; k <= 3; k++ {
		g := NewGenerator(1)
		p, err := g.GenerateIntensified(mood.Suspenseful, k, duration)
		require.NoError(t, err)
		counts = append(counts, len(p.Notes))
		velocities = append(velocities, meanVelocity(p.Notes))
	}

	assert.GreaterOrEqual(t, counts[1], counts[0], "k=2 should not thin the pattern")
	assert.GreaterOrEqual(t, counts[2], counts[1], "k=3 should not thin the pattern")
	assert.Greater(t, counts[2], counts[0], "k=3 should be denser than k=1")
	assert.Greater(t, velocities[2], velocities[0], "k=3 should play louder than k=1")
}

func TestTransitionSpansMoods(t *testing.T) {
	g := NewGenerator(1)
	p, err := g.GenerateTransition(mood.Chill, mood.Frantic, 8)
	require.NoError(t, err)

	assert.Equal(t, KindTransition, p.Kind)
	require.NotEmpty(t, p.Notes)

	// Frantic is four times denser than chill, so the second half must
	// hold more notes than the first
	firstHalf, secondHalf := 0, 0
	for _, n := range p.Notes {
		if n.Start < 4 {
			firstHalf++
		} else {
			secondHalf++
		}
	}
	assert.Greater(t, secondHalf, firstHalf)
}

func TestMergePassTruncatesOverlaps(t *testing.T) {
	// Two overlapping notes of the same pitch and channel: the second
	// onset truncates the first note, and both keep their own release
	notes := []midi.NoteEvent{
		{Pitch: 60, Velocity: 80, Start: 0.0, Duration: 1.0},
		{Pitch: 60, Velocity: 90, Start: 0.5, Duration: 1.0},
	}
	merged := mergePass(notes)

	require.Len(t, merged, 2)
	assert.Equal(t, 0.0, merged[0].Start)
	assert.InDelta(t, 0.5, merged[0].Duration, 1e-9)
	assert.Equal(t, 0.5, merged[1].Start)
	assert.InDelta(t, 1.0, merged[1].Duration, 1e-9)
	// No overlap survives
	assert.LessOrEqual(t, merged[0].End(), merged[1].Start)
}

func TestMergePassDropsDoubleTriggers(t *testing.T) {
	// Identical duplicates collapse to a single note
	notes := []midi.NoteEvent{
		{Pitch: 64, Velocity: 80, Start: 1.0, Duration: 0.5},
		{Pitch: 64, Velocity: 80, Start: 1.0, Duration: 0.5},
	}
	merged := mergePass(notes)
	require.Len(t, merged, 1)
	assert.InDelta(t, 0.5, merged[0].Duration, 1e-9)
}

// assertNoSameKeyOverlap fails if any two notes of the same pitch and
// channel have overlapping sounding intervals
func assertNoSameKeyOverlap(t *testing.T, notes []midi.NoteEvent) {
	t.Helper()
	const eps = 1e-9
	for i := 0; i < len(notes); i++ {
		for j := i + 1; j < len(notes); j++ {
			a, b := notes[i], notes[j]
			if a.Pitch != b.Pitch || a.Channel != b.Channel {
				continue
			}
			if a.Start < b.End()-eps && b.Start < a.End()-eps {
				t.Errorf("overlapping notes on pitch %d: [%v, %v] and [%v, %v]",
					a.Pitch, a.Start, a.End(), b.Start, b.End())
			}
		}
	}
}

func TestHybridHasNoOverlappingDuplicates(t *testing.T) {
	// Dense moods sharing scale notes are the worst case for collisions
	spec, err := mood.UniformHybridSpec(mood.Frantic, mood.Gritty, mood.Energetic)
	require.NoError(t, err)

	for seed := int64(1); seed <= 5; seed++ {
		g := NewGenerator(seed)
		p, err := g.GenerateHybrid(spec, 8)
		require.NoError(t, err)
		assertNoSameKeyOverlap(t, p.Notes)
	}
}

func TestMergePassIsSortedAndBalanced(t *testing.T) {
	g := NewGenerator(3)
	spec, err := mood.UniformHybridSpec(mood.Chill, mood.Energetic, mood.Gritty)
	require.NoError(t, err)

	p, err := g.GenerateHybrid(spec, 8)
	require.NoError(t, err)

	for i := 1; i < len(p.Notes); i++ {
		assert.GreaterOrEqual(t, p.Notes[i].Start, p.Notes[i-1].Start, "output must be sorted")
	}
	for i, n := range p.Notes {
		assert.Greater(t, n.Duration, 0.0, "note %d has no duration", i)
	}
}

func TestGenerateDefault(t *testing.T) {
	g := NewGenerator(1)
	p, err := g.GenerateDefault(4)
	require.NoError(t, err)
	assert.NotEmpty(t, p.Notes)
	assert.Equal(t, 0.5, p.Confidence)

	_, err = g.GenerateDefault(0)
	assert.Error(t, err)
}

func TestDistinctPatternIDs(t *testing.T) {
	g := NewGenerator(1)
	a, err := g.Generate(mood.Chill, 2)
	require.NoError(t, err)
	b, err := g.Generate(mood.Chill, 2)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}
