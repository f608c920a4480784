package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatchApply(t *testing.T) {
	prefs := DefaultPreferences()
	on := true
	size := "large"

	patch := PreferencePatch{DarkMode: &on, FontSize: &size}
	touched := patch.Apply(&prefs)

	assert.ElementsMatch(t, []PreferenceKey{KeyDarkMode, KeyFontSize}, touched)
	assert.True(t, prefs.DarkMode)
	assert.Equal(t, "large", prefs.FontSize)
	// Untouched fields keep their defaults.
	assert.Equal(t, "system", prefs.FontFamily)
	assert.False(t, prefs.HighContrast)
}

func TestPatchFlags(t *testing.T) {
	var patch PreferencePatch
	assert.True(t, patch.IsEmpty())

	patch.SetFlag(KeyReducedMotion, true)
	v, ok := patch.Flag(KeyReducedMotion)
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = patch.Flag(KeyDarkMode)
	assert.False(t, ok)

	// Non-boolean keys are ignored by SetFlag.
	patch.SetFlag(KeyFontSize, true)
	assert.ElementsMatch(t, []PreferenceKey{KeyReducedMotion}, patch.Keys())
}

func TestResetKey(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.SimplifiedLayout = true
	prefs.FontSize = "x-large"

	ResetKey(&prefs, KeySimplifiedLayout)
	ResetKey(&prefs, KeyFontSize)

	assert.Equal(t, DefaultPreferences(), prefs)
}

func TestEveryKeyHasACategory(t *testing.T) {
	for _, key := range PreferenceKeys {
		assert.NotEmpty(t, CategoryOf(key), "key %s has no category", key)
	}
}
