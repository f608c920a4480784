package models

// PreferenceKey identifies one field of AccessibilityPreferences. Keys are
// the JSON field names, so they double as stable storage identifiers.
type PreferenceKey string

const (
	KeyHighContrast      PreferenceKey = "highContrast"
	KeyReducedMotion     PreferenceKey = "reducedMotion"
	KeyDarkMode          PreferenceKey = "darkMode"
	KeyFontSize          PreferenceKey = "fontSize"
	KeyFontFamily        PreferenceKey = "fontFamily"
	KeyLineSpacing       PreferenceKey = "lineSpacing"
	KeyLargeClickTargets PreferenceKey = "largeClickTargets"
	KeyFocusIndicators   PreferenceKey = "focusIndicators"
	KeySimplifiedLayout  PreferenceKey = "simplifiedLayout"
	KeyContentSummaries  PreferenceKey = "contentSummaries"
	KeyNavigationAssist  PreferenceKey = "navigationAssist"
)

// PreferenceKeys lists every key, in declaration order.
var PreferenceKeys = []PreferenceKey{
	KeyHighContrast, KeyReducedMotion, KeyDarkMode,
	KeyFontSize, KeyFontFamily, KeyLineSpacing,
	KeyLargeClickTargets, KeyFocusIndicators, KeySimplifiedLayout,
	KeyContentSummaries, KeyNavigationAssist,
}

// Provenance records who last wrote a preference value. Auto-applied values
// can be rolled back without touching user choices.
type Provenance string

const (
	ProvenanceDefault Provenance = "default"
	ProvenanceUser    Provenance = "user"
	ProvenanceAuto    Provenance = "auto"
)

// AccessibilityPreferences is the canonical mutable UI-affecting state. The
// rendering layer consumes it; the pipeline only writes it.
type AccessibilityPreferences struct {
	HighContrast      bool   `json:"highContrast"`
	ReducedMotion     bool   `json:"reducedMotion"`
	DarkMode          bool   `json:"darkMode"`
	FontSize          string `json:"fontSize"`
	FontFamily        string `json:"fontFamily"`
	LineSpacing       string `json:"lineSpacing"`
	LargeClickTargets bool   `json:"largeClickTargets"`
	FocusIndicators   bool   `json:"focusIndicators"`
	SimplifiedLayout  bool   `json:"simplifiedLayout"`
	ContentSummaries  bool   `json:"contentSummaries"`
	NavigationAssist  bool   `json:"navigationAssist"`
}

// DefaultPreferences returns the compiled defaults.
func DefaultPreferences() AccessibilityPreferences {
	return AccessibilityPreferences{
		FontSize:    "medium",
		FontFamily:  "system",
		LineSpacing: "normal",
	}
}

// PreferencePatch is a partial update over AccessibilityPreferences. Nil
// fields are left untouched on merge.
type PreferencePatch struct {
	HighContrast      *bool   `json:"highContrast,omitempty"`
	ReducedMotion     *bool   `json:"reducedMotion,omitempty"`
	DarkMode          *bool   `json:"darkMode,omitempty"`
	FontSize          *string `json:"fontSize,omitempty"`
	FontFamily        *string `json:"fontFamily,omitempty"`
	LineSpacing       *string `json:"lineSpacing,omitempty"`
	LargeClickTargets *bool   `json:"largeClickTargets,omitempty"`
	FocusIndicators   *bool   `json:"focusIndicators,omitempty"`
	SimplifiedLayout  *bool   `json:"simplifiedLayout,omitempty"`
	ContentSummaries  *bool   `json:"contentSummaries,omitempty"`
	NavigationAssist  *bool   `json:"navigationAssist,omitempty"`
}

// IsEmpty reports whether the patch carries no values at all.
func (p PreferencePatch) IsEmpty() bool {
	return len(p.Keys()) == 0
}

// Keys returns the keys the patch would touch, in declaration order.
func (p PreferencePatch) Keys() []PreferenceKey {
	var keys []PreferenceKey
	add := func(k PreferenceKey, set bool) {
		if set {
			keys = append(keys, k)
		}
	}
	add(KeyHighContrast, p.HighContrast != nil)
	add(KeyReducedMotion, p.ReducedMotion != nil)
	add(KeyDarkMode, p.DarkMode != nil)
	add(KeyFontSize, p.FontSize != nil)
	add(KeyFontFamily, p.FontFamily != nil)
	add(KeyLineSpacing, p.LineSpacing != nil)
	add(KeyLargeClickTargets, p.LargeClickTargets != nil)
	add(KeyFocusIndicators, p.FocusIndicators != nil)
	add(KeySimplifiedLayout, p.SimplifiedLayout != nil)
	add(KeyContentSummaries, p.ContentSummaries != nil)
	add(KeyNavigationAssist, p.NavigationAssist != nil)
	return keys
}

// SetFlag sets a boolean preference key on the patch. Non-boolean keys are
// ignored; the adaptation rules only ever set flags.
func (p *PreferencePatch) SetFlag(key PreferenceKey, value bool) {
	v := value
	switch key {
	case KeyHighContrast:
		p.HighContrast = &v
	case KeyReducedMotion:
		p.ReducedMotion = &v
	case KeyDarkMode:
		p.DarkMode = &v
	case KeyLargeClickTargets:
		p.LargeClickTargets = &v
	case KeyFocusIndicators:
		p.FocusIndicators = &v
	case KeySimplifiedLayout:
		p.SimplifiedLayout = &v
	case KeyContentSummaries:
		p.ContentSummaries = &v
	case KeyNavigationAssist:
		p.NavigationAssist = &v
	}
}

// Flag returns the value of a boolean key on the patch, if present.
func (p PreferencePatch) Flag(key PreferenceKey) (bool, bool) {
	ptr := map[PreferenceKey]*bool{
		KeyHighContrast:      p.HighContrast,
		KeyReducedMotion:     p.ReducedMotion,
		KeyDarkMode:          p.DarkMode,
		KeyLargeClickTargets: p.LargeClickTargets,
		KeyFocusIndicators:   p.FocusIndicators,
		KeySimplifiedLayout:  p.SimplifiedLayout,
		KeyContentSummaries:  p.ContentSummaries,
		KeyNavigationAssist:  p.NavigationAssist,
	}[key]
	if ptr == nil {
		return false, false
	}
	return *ptr, true
}

// Apply shallow-merges the patch into prefs and returns the keys that were
// written.
func (p PreferencePatch) Apply(prefs *AccessibilityPreferences) []PreferenceKey {
	touched := make([]PreferenceKey, 0, 4)
	if p.HighContrast != nil {
		prefs.HighContrast = *p.HighContrast
		touched = append(touched, KeyHighContrast)
	}
	if p.ReducedMotion != nil {
		prefs.ReducedMotion = *p.ReducedMotion
		touched = append(touched, KeyReducedMotion)
	}
	if p.DarkMode != nil {
		prefs.DarkMode = *p.DarkMode
		touched = append(touched, KeyDarkMode)
	}
	if p.FontSize != nil {
		prefs.FontSize = *p.FontSize
		touched = append(touched, KeyFontSize)
	}
	if p.FontFamily != nil {
		prefs.FontFamily = *p.FontFamily
		touched = append(touched, KeyFontFamily)
	}
	if p.LineSpacing != nil {
		prefs.LineSpacing = *p.LineSpacing
		touched = append(touched, KeyLineSpacing)
	}
	if p.LargeClickTargets != nil {
		prefs.LargeClickTargets = *p.LargeClickTargets
		touched = append(touched, KeyLargeClickTargets)
	}
	if p.FocusIndicators != nil {
		prefs.FocusIndicators = *p.FocusIndicators
		touched = append(touched, KeyFocusIndicators)
	}
	if p.SimplifiedLayout != nil {
		prefs.SimplifiedLayout = *p.SimplifiedLayout
		touched = append(touched, KeySimplifiedLayout)
	}
	if p.ContentSummaries != nil {
		prefs.ContentSummaries = *p.ContentSummaries
		touched = append(touched, KeyContentSummaries)
	}
	if p.NavigationAssist != nil {
		prefs.NavigationAssist = *p.NavigationAssist
		touched = append(touched, KeyNavigationAssist)
	}
	return touched
}

// ResetKey restores a single preference key to its compiled default.
func ResetKey(prefs *AccessibilityPreferences, key PreferenceKey) {
	def := DefaultPreferences()
	switch key {
	case KeyHighContrast:
		prefs.HighContrast = def.HighContrast
	case KeyReducedMotion:
		prefs.ReducedMotion = def.ReducedMotion
	case KeyDarkMode:
		prefs.DarkMode = def.DarkMode
	case KeyFontSize:
		prefs.FontSize = def.FontSize
	case KeyFontFamily:
		prefs.FontFamily = def.FontFamily
	case KeyLineSpacing:
		prefs.LineSpacing = def.LineSpacing
	case KeyLargeClickTargets:
		prefs.LargeClickTargets = def.LargeClickTargets
	case KeyFocusIndicators:
		prefs.FocusIndicators = def.FocusIndicators
	case KeySimplifiedLayout:
		prefs.SimplifiedLayout = def.SimplifiedLayout
	case KeyContentSummaries:
		prefs.ContentSummaries = def.ContentSummaries
	case KeyNavigationAssist:
		prefs.NavigationAssist = def.NavigationAssist
	}
}
