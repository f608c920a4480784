package models

// Level is a coarse tri-state used for cognitive-state dimensions,
// adaptation intensity and the sensitivity knob.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Valid reports whether the level is one of the three recognized values.
func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// AdaptationSpeed controls how eagerly recommended adaptations are applied.
type AdaptationSpeed string

const (
	SpeedSlow   AdaptationSpeed = "slow"
	SpeedMedium AdaptationSpeed = "medium"
	SpeedFast   AdaptationSpeed = "fast"
)

// CognitiveState is the externally supplied estimate of the user's current
// cognitive condition. The pipeline never derives it; it is pushed in whole
// and replaced atomically.
type CognitiveState struct {
	AttentionLevel Level `json:"attentionLevel"`
	CognitiveLoad  Level `json:"cognitiveLoad"`
	FatigueLevel   Level `json:"fatigueLevel"`
	StressLevel    Level `json:"stressLevel"`
}
