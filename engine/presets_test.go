package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrb00013/aamati/mood"
)

func TestPresetRoundTrip(t *testing.T) {
	store, err := NewPresetStore(t.TempDir())
	require.NoError(t, err)

	saved := PresetFromMood("late night", mood.Dreamy)
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load("late night")
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestPresetList(t *testing.T) {
	store, err := NewPresetStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(PresetFromMood("zeta", mood.Chill)))
	require.NoError(t, store.Save(PresetFromMood("alpha", mood.Gritty)))

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestPresetDelete(t *testing.T) {
	store, err := NewPresetStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(PresetFromMood("gone", mood.Focused)))
	require.NoError(t, store.Delete("gone"))

	_, err = store.Load("gone")
	assert.Error(t, err)

	assert.Error(t, store.Delete("never existed"))
}

func TestPresetRejectsEmptyName(t *testing.T) {
	store, err := NewPresetStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, store.Save(Preset{Name: "  "}))
}

func TestPresetNameSanitized(t *testing.T) {
	store, err := NewPresetStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(PresetFromMood("a/b\\c", mood.Romantic)))
	loaded, err := store.Load("a/b\\c")
	require.NoError(t, err)
	assert.Equal(t, "a/b\\c", loaded.Name)
}

func TestApplyPresetPinsEngine(t *testing.T) {
	e, err := New(testConfig())
	require.NoError(t, err)
	defer e.Close()

	p := PresetFromMood("tense", mood.Suspenseful)
	e.ApplyPreset(p)

	state := e.LatestMoodState()
	assert.True(t, state.Overridden)
	assert.Equal(t, p.Emotional, state.Emotional)
	assert.Equal(t, p.Groove, state.Groove)
}
