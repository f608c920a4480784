package models

// FeatureCategory groups preference keys into the coarse categories the
// per-feature adjust toggles gate.
type FeatureCategory string

const (
	CategoryContrast   FeatureCategory = "contrast"
	CategoryFontSize   FeatureCategory = "fontSize"
	CategoryLayout     FeatureCategory = "layout"
	CategoryAnimations FeatureCategory = "animations"
	CategoryNavigation FeatureCategory = "navigation"
)

// keyCategories maps each preference key to the toggle that gates it.
var keyCategories = map[PreferenceKey]FeatureCategory{
	KeyHighContrast:      CategoryContrast,
	KeyDarkMode:          CategoryContrast,
	KeyFontSize:          CategoryFontSize,
	KeyFontFamily:        CategoryFontSize,
	KeyLineSpacing:       CategoryFontSize,
	KeyLargeClickTargets: CategoryLayout,
	KeySimplifiedLayout:  CategoryLayout,
	KeyContentSummaries:  CategoryLayout,
	KeyReducedMotion:     CategoryAnimations,
	KeyFocusIndicators:   CategoryNavigation,
	KeyNavigationAssist:  CategoryNavigation,
}

// CategoryOf returns the feature category gating a preference key.
func CategoryOf(key PreferenceKey) FeatureCategory {
	return keyCategories[key]
}

// AdaptiveUIConfig holds the policy knobs for automatic adaptation.
type AdaptiveUIConfig struct {
	AutoAdjust       bool            `json:"autoAdjust"`
	SensitivityLevel Level           `json:"sensitivityLevel"`
	AdaptationSpeed  AdaptationSpeed `json:"adaptationSpeed"`
	AdjustContrast   bool            `json:"adjustContrast"`
	AdjustFontSize   bool            `json:"adjustFontSize"`
	AdjustLayout     bool            `json:"adjustLayout"`
	AdjustAnimations bool            `json:"adjustAnimations"`
	AdjustNavigation bool            `json:"adjustNavigation"`
}

// DefaultAdaptiveConfig returns the compiled defaults: auto-adjust off, all
// categories allowed.
func DefaultAdaptiveConfig() AdaptiveUIConfig {
	return AdaptiveUIConfig{
		AutoAdjust:       false,
		SensitivityLevel: LevelMedium,
		AdaptationSpeed:  SpeedMedium,
		AdjustContrast:   true,
		AdjustFontSize:   true,
		AdjustLayout:     true,
		AdjustAnimations: true,
		AdjustNavigation: true,
	}
}

// CategoryAllowed reports whether the config permits automatic writes to the
// given category.
func (c AdaptiveUIConfig) CategoryAllowed(cat FeatureCategory) bool {
	switch cat {
	case CategoryContrast:
		return c.AdjustContrast
	case CategoryFontSize:
		return c.AdjustFontSize
	case CategoryLayout:
		return c.AdjustLayout
	case CategoryAnimations:
		return c.AdjustAnimations
	case CategoryNavigation:
		return c.AdjustNavigation
	}
	return false
}

// AdaptiveConfigPatch is a partial update over AdaptiveUIConfig.
type AdaptiveConfigPatch struct {
	AutoAdjust       *bool            `json:"autoAdjust,omitempty"`
	SensitivityLevel *Level           `json:"sensitivityLevel,omitempty"`
	AdaptationSpeed  *AdaptationSpeed `json:"adaptationSpeed,omitempty"`
	AdjustContrast   *bool            `json:"adjustContrast,omitempty"`
	AdjustFontSize   *bool            `json:"adjustFontSize,omitempty"`
	AdjustLayout     *bool            `json:"adjustLayout,omitempty"`
	AdjustAnimations *bool            `json:"adjustAnimations,omitempty"`
	AdjustNavigation *bool            `json:"adjustNavigation,omitempty"`
}

// Apply shallow-merges the patch into cfg.
func (p AdaptiveConfigPatch) Apply(cfg *AdaptiveUIConfig) {
	if p.AutoAdjust != nil {
		cfg.AutoAdjust = *p.AutoAdjust
	}
	if p.SensitivityLevel != nil {
		cfg.SensitivityLevel = *p.SensitivityLevel
	}
	if p.AdaptationSpeed != nil {
		cfg.AdaptationSpeed = *p.AdaptationSpeed
	}
	if p.AdjustContrast != nil {
		cfg.AdjustContrast = *p.AdjustContrast
	}
	if p.AdjustFontSize != nil {
		cfg.AdjustFontSize = *p.AdjustFontSize
	}
	if p.AdjustLayout != nil {
		cfg.AdjustLayout = *p.AdjustLayout
	}
	if p.AdjustAnimations != nil {
		cfg.AdjustAnimations = *p.AdjustAnimations
	}
	if p.AdjustNavigation != nil {
		cfg.AdjustNavigation = *p.AdjustNavigation
	}
}
