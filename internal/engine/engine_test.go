package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogui/internal/models"
)

func allMedium() models.CognitiveState {
	return models.CognitiveState{
		AttentionLevel: models.LevelMedium,
		CognitiveLoad:  models.LevelMedium,
		FatigueLevel:   models.LevelMedium,
		StressLevel:    models.LevelMedium,
	}
}

func fullyStressed() models.CognitiveState {
	return models.CognitiveState{
		AttentionLevel: models.LevelLow,
		CognitiveLoad:  models.LevelHigh,
		FatigueLevel:   models.LevelHigh,
		StressLevel:    models.LevelHigh,
	}
}

func TestRecommendNilState(t *testing.T) {
	rec := New(nil).Recommend(nil)
	assert.True(t, rec.Patch.IsEmpty())
	assert.Equal(t, models.LevelLow, rec.Intensity)
}

func TestRecommendCalmState(t *testing.T) {
	state := allMedium()
	rec := New(nil).Recommend(&state)
	assert.True(t, rec.Patch.IsEmpty())
	assert.Equal(t, models.LevelLow, rec.Intensity)
}

func TestRecommendFullyStressed(t *testing.T) {
	state := fullyStressed()
	rec := New(nil).Recommend(&state)

	assert.Equal(t, models.LevelHigh, rec.Intensity)
	for _, key := range []models.PreferenceKey{
		models.KeySimplifiedLayout,
		models.KeyContentSummaries,
		models.KeyLargeClickTargets,
		models.KeyReducedMotion,
		models.KeyNavigationAssist,
	} {
		v, ok := rec.Patch.Flag(key)
		assert.True(t, ok, "expected %s in patch", key)
		assert.True(t, v, "expected %s set true", key)
	}
	// Nothing else gets touched.
	assert.Len(t, rec.Patch.Keys(), 5)
}

func TestRecommendSingleDimensions(t *testing.T) {
	t.Run("high load simplifies and reduces stimuli", func(t *testing.T) {
		state := allMedium()
		state.CognitiveLoad = models.LevelHigh
		rec := New(nil).Recommend(&state)
		assert.ElementsMatch(t, []models.PreferenceKey{
			models.KeySimplifiedLayout,
			models.KeyContentSummaries,
			models.KeyReducedMotion,
		}, rec.Patch.Keys())
	})

	t.Run("high fatigue enlarges targets only", func(t *testing.T) {
		state := allMedium()
		state.FatigueLevel = models.LevelHigh
		rec := New(nil).Recommend(&state)
		assert.ElementsMatch(t, []models.PreferenceKey{
			models.KeyLargeClickTargets,
		}, rec.Patch.Keys())
	})

	t.Run("low attention simplifies and assists navigation", func(t *testing.T) {
		state := allMedium()
		state.AttentionLevel = models.LevelLow
		rec := New(nil).Recommend(&state)
		assert.ElementsMatch(t, []models.PreferenceKey{
			models.KeySimplifiedLayout,
			models.KeyContentSummaries,
			models.KeyNavigationAssist,
		}, rec.Patch.Keys())
	})
}

func TestIntensityCounts(t *testing.T) {
	state := allMedium()
	assert.Equal(t, models.LevelLow, Intensity(state))

	state.StressLevel = models.LevelHigh
	assert.Equal(t, models.LevelLow, Intensity(state))

	state.FatigueLevel = models.LevelHigh
	assert.Equal(t, models.LevelMedium, Intensity(state))

	state.CognitiveLoad = models.LevelHigh
	assert.Equal(t, models.LevelHigh, Intensity(state))

	state.AttentionLevel = models.LevelLow
	assert.Equal(t, models.LevelHigh, Intensity(state))
}

// Adding an adverse dimension never lowers the intensity.
func TestIntensityMonotonic(t *testing.T) {
	rank := map[models.Level]int{
		models.LevelLow:    0,
		models.LevelMedium: 1,
		models.LevelHigh:   2,
	}
	worsen := []func(*models.CognitiveState){
		func(s *models.CognitiveState) { s.StressLevel = models.LevelHigh },
		func(s *models.CognitiveState) { s.FatigueLevel = models.LevelHigh },
		func(s *models.CognitiveState) { s.CognitiveLoad = models.LevelHigh },
		func(s *models.CognitiveState) { s.AttentionLevel = models.LevelLow },
	}

	state := allMedium()
	prev := Intensity(state)
	for _, step := range worsen {
		step(&state)
		cur := Intensity(state)
		require.GreaterOrEqual(t, rank[cur], rank[prev])
		prev = cur
	}
}
