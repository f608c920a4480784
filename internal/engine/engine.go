// Package engine maps cognitive state to recommended accessibility
// adaptations. It is pure: no stored state, no side effects.
package engine

import (
	"cogui/internal/models"
)

// Condition matches one dimension of a cognitive state against a level.
type Condition struct {
	Dimension Dimension    `yaml:"dimension"`
	Level     models.Level `yaml:"level"`
}

// Dimension names one axis of CognitiveState.
type Dimension string

const (
	DimAttention Dimension = "attentionLevel"
	DimLoad      Dimension = "cognitiveLoad"
	DimFatigue   Dimension = "fatigueLevel"
	DimStress    Dimension = "stressLevel"
)

func (c Condition) matches(s models.CognitiveState) bool {
	switch c.Dimension {
	case DimAttention:
		return s.AttentionLevel == c.Level
	case DimLoad:
		return s.CognitiveLoad == c.Level
	case DimFatigue:
		return s.FatigueLevel == c.Level
	case DimStress:
		return s.StressLevel == c.Level
	}
	return false
}

// Rule fires when any of its conditions match, and unions its flags into the
// recommendation. Rules are evaluated in order with a monotonic merge: a flag
// set true by an earlier rule is never cleared by a later one.
type Rule struct {
	Name string                 `yaml:"name"`
	Any  []Condition            `yaml:"any"`
	Set  []models.PreferenceKey `yaml:"set"`
}

func (r Rule) fires(s models.CognitiveState) bool {
	for _, c := range r.Any {
		if c.matches(s) {
			return true
		}
	}
	return false
}

// DefaultRules returns the compiled rule set.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "simplification",
			Any: []Condition{
				{DimLoad, models.LevelHigh},
				{DimAttention, models.LevelLow},
			},
			Set: []models.PreferenceKey{
				models.KeySimplifiedLayout,
				models.KeyContentSummaries,
			},
		},
		{
			Name: "larger_targets",
			Any: []Condition{
				{DimFatigue, models.LevelHigh},
				{DimStress, models.LevelHigh},
			},
			Set: []models.PreferenceKey{models.KeyLargeClickTargets},
		},
		{
			Name: "reduced_stimuli",
			Any: []Condition{
				{DimStress, models.LevelHigh},
				{DimLoad, models.LevelHigh},
			},
			Set: []models.PreferenceKey{models.KeyReducedMotion},
		},
		{
			Name: "enhanced_focus",
			Any: []Condition{
				{DimAttention, models.LevelLow},
			},
			Set: []models.PreferenceKey{models.KeyNavigationAssist},
		},
	}
}

// Recommendation is a partial preference patch plus a coarse intensity. It
// never mutates preference state itself.
type Recommendation struct {
	Patch     models.PreferencePatch `json:"patch"`
	Intensity models.Level           `json:"intensity"`
}

// Engine evaluates an ordered rule list. The zero value is unusable; use New.
type Engine struct {
	rules []Rule
}

// New builds an engine over the given rules; nil or empty means the compiled
// defaults.
func New(rules []Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{rules: rules}
}

// Recommend evaluates the rules against a cognitive state. A nil state is an
// explicit default, not an error: all-false patch, low intensity.
func (e *Engine) Recommend(state *models.CognitiveState) Recommendation {
	if state == nil {
		return Recommendation{Intensity: models.LevelLow}
	}
	rec := Recommendation{Intensity: Intensity(*state)}
	for _, rule := range e.rules {
		if !rule.fires(*state) {
			continue
		}
		for _, key := range rule.Set {
			rec.Patch.SetFlag(key, true)
		}
	}
	return rec
}

// Intensity summarizes how many cognitive dimensions are currently adverse:
// high if at least three of {load high, fatigue high, stress high, attention
// low}, medium if at least two, else low.
func Intensity(s models.CognitiveState) models.Level {
	count := 0
	if s.CognitiveLoad == models.LevelHigh {
		count++
	}
	if s.FatigueLevel == models.LevelHigh {
		count++
	}
	if s.StressLevel == models.LevelHigh {
		count++
	}
	if s.AttentionLevel == models.LevelLow {
		count++
	}
	switch {
	case count >= 3:
		return models.LevelHigh
	case count >= 2:
		return models.LevelMedium
	default:
		return models.LevelLow
	}
}
