// Package store owns the current accessibility preferences, cognitive state
// and adaptive configuration, and runs the auto-apply cascade.
package store

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"cogui/internal/engine"
	"cogui/internal/models"
)

// Persister is the durable key-value slot preferences survive restarts in.
// All writes through it are best-effort: the store logs failures and keeps
// going on in-memory state.
type Persister interface {
	// SavePreferences stores the snapshot blob under the given key.
	SavePreferences(key string, blob []byte) error
	// LoadPreferences returns the blob stored under key, or (nil, nil) when
	// nothing has been persisted yet.
	LoadPreferences(key string) ([]byte, error)
	// RecordAdaptation appends an audit row for an applied auto-adaptation.
	RecordAdaptation(sessionID string, intensity models.Level, flags []string) error
}

// EnvironmentSignal carries system-level media signals. Only true values
// have any effect: the environment may turn a flag on, never off.
type EnvironmentSignal struct {
	DarkMode      bool `json:"darkMode"`
	HighContrast  bool `json:"highContrast"`
	ReducedMotion bool `json:"reducedMotion"`
}

// snapshot is the persisted shape: preferences plus per-key provenance.
type snapshot struct {
	Preferences models.AccessibilityPreferences            `json:"preferences"`
	Provenance  map[models.PreferenceKey]models.Provenance `json:"provenance"`
}

// Options configures a Store.
type Options struct {
	Engine     *engine.Engine
	Persister  Persister // nil: in-memory only
	Log        *zap.Logger
	StorageKey string
	SessionID  string
	Config     models.AdaptiveUIConfig
	// Overrides is applied last at load, over both compiled defaults and any
	// persisted value.
	Overrides *models.PreferencePatch
}

// DefaultStorageKey is the durable slot preferences persist under when no
// key is configured.
const DefaultStorageKey = "adaptive-preferences"

// Store is the single owner of preference state. Every operation runs under
// one lock; the auto-apply cascade (state -> recommendation -> preference
// write -> persistence) is a single synchronous chain that never re-enters
// UpdateCognitiveState.
type Store struct {
	mu         sync.Mutex
	log        *zap.Logger
	engine     *engine.Engine
	persister  Persister
	storageKey string
	sessionID  string

	prefs models.AccessibilityPreferences
	prov  map[models.PreferenceKey]models.Provenance
	state *models.CognitiveState
	cfg   models.AdaptiveUIConfig

	subs map[<-chan models.AccessibilityPreferences]chan models.AccessibilityPreferences
}

// New builds a store, loading persisted preferences with the precedence
// compiled defaults < persisted value < explicit startup overrides.
func New(opts Options) *Store {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Engine == nil {
		opts.Engine = engine.New(nil)
	}
	if opts.StorageKey == "" {
		opts.StorageKey = DefaultStorageKey
	}

	s := &Store{
		log:        opts.Log,
		engine:     opts.Engine,
		persister:  opts.Persister,
		storageKey: opts.StorageKey,
		sessionID:  opts.SessionID,
		prefs:      models.DefaultPreferences(),
		prov:       defaultProvenance(),
		cfg:        opts.Config,
		subs:       make(map[<-chan models.AccessibilityPreferences]chan models.AccessibilityPreferences),
	}
	if s.cfg == (models.AdaptiveUIConfig{}) {
		s.cfg = models.DefaultAdaptiveConfig()
	}

	s.loadPersisted()

	if opts.Overrides != nil {
		for _, key := range opts.Overrides.Apply(&s.prefs) {
			s.prov[key] = models.ProvenanceUser
		}
	}
	return s
}

func defaultProvenance() map[models.PreferenceKey]models.Provenance {
	prov := make(map[models.PreferenceKey]models.Provenance, len(models.PreferenceKeys))
	for _, k := range models.PreferenceKeys {
		prov[k] = models.ProvenanceDefault
	}
	return prov
}

// loadPersisted merges a persisted snapshot over the compiled defaults. A
// malformed blob falls back to defaults with a warning, never an error.
func (s *Store) loadPersisted() {
	if s.persister == nil {
		return
	}
	blob, err := s.persister.LoadPreferences(s.storageKey)
	if err != nil {
		s.log.Warn("failed to load persisted preferences, using defaults",
			zap.String("key", s.storageKey), zap.Error(err))
		return
	}
	if blob == nil {
		return
	}
	var snap snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		s.log.Warn("malformed preference blob, using defaults",
			zap.String("key", s.storageKey), zap.Error(err))
		return
	}
	s.prefs = snap.Preferences
	for key, prov := range snap.Provenance {
		s.prov[key] = prov
	}
}

// Preferences returns the current preference snapshot.
func (s *Store) Preferences() models.AccessibilityPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Provenance returns a copy of the per-key provenance map.
func (s *Store) Provenance() map[models.PreferenceKey]models.Provenance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[models.PreferenceKey]models.Provenance, len(s.prov))
	for k, v := range s.prov {
		out[k] = v
	}
	return out
}

// CognitiveState returns the current state, or nil when none has been
// supplied yet.
func (s *Store) CognitiveState() *models.CognitiveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil
	}
	cp := *s.state
	return &cp
}

// AdaptiveConfig returns the current adaptive configuration.
func (s *Store) AdaptiveConfig() models.AdaptiveUIConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// UpdatePreferences shallow-merges a user patch into current preferences and
// triggers persistence.
func (s *Store) UpdatePreferences(patch models.PreferencePatch) models.AccessibilityPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(patch, models.ProvenanceUser)
	return s.prefs
}

// UpdateCognitiveState replaces the stored state and, when auto-adjust is
// on, synchronously applies the engine's recommendation. The cascade never
// re-enters this method; the single held lock makes any such cycle a bug
// that fails loudly rather than loops.
func (s *Store) UpdateCognitiveState(state models.CognitiveState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := state
	s.state = &cp

	if !s.cfg.AutoAdjust {
		return
	}

	rec := s.engine.Recommend(&cp)
	patch := s.gateLocked(rec.Patch)
	if patch.IsEmpty() {
		return
	}
	applied := s.applyLocked(patch, models.ProvenanceAuto)
	s.log.Info("auto-adaptation applied",
		zap.String("intensity", string(rec.Intensity)),
		zap.Int("flags", len(applied)))

	if s.persister != nil {
		flags := make([]string, len(applied))
		for i, k := range applied {
			flags[i] = string(k)
		}
		if err := s.persister.RecordAdaptation(s.sessionID, rec.Intensity, flags); err != nil {
			s.log.Warn("failed to record adaptation event", zap.Error(err))
		}
	}
}

// gateLocked filters an automatic patch down to the categories the adaptive
// config allows. The per-feature toggles gate application, not
// recommendation: a toggled-off category never changes preferences.
func (s *Store) gateLocked(patch models.PreferencePatch) models.PreferencePatch {
	var gated models.PreferencePatch
	for _, key := range patch.Keys() {
		if !s.cfg.CategoryAllowed(models.CategoryOf(key)) {
			continue
		}
		if v, ok := patch.Flag(key); ok {
			gated.SetFlag(key, v)
		}
	}
	return gated
}

// applyLocked merges a patch, tags provenance, persists and publishes.
func (s *Store) applyLocked(patch models.PreferencePatch, source models.Provenance) []models.PreferenceKey {
	touched := patch.Apply(&s.prefs)
	for _, key := range touched {
		s.prov[key] = source
	}
	if len(touched) > 0 {
		s.persistLocked()
		s.publishLocked()
	}
	return touched
}

// UpdateAdaptiveConfig merges a config patch. It does not retroactively
// reapply adaptations to already-written preferences.
func (s *Store) UpdateAdaptiveConfig(patch models.AdaptiveConfigPatch) models.AdaptiveUIConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	patch.Apply(&s.cfg)
	return s.cfg
}

// ResetPreferences atomically restores preferences, cognitive state and
// adaptive config to compiled defaults.
func (s *Store) ResetPreferences() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = models.DefaultPreferences()
	s.prov = defaultProvenance()
	s.state = nil
	s.cfg = models.DefaultAdaptiveConfig()
	s.persistLocked()
	s.publishLocked()
}

// RevertAutomatic restores every Auto-tagged preference to its compiled
// default, leaving user-set values alone.
func (s *Store) RevertAutomatic() models.AccessibilityPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	reverted := 0
	for _, key := range models.PreferenceKeys {
		if s.prov[key] != models.ProvenanceAuto {
			continue
		}
		models.ResetKey(&s.prefs, key)
		s.prov[key] = models.ProvenanceDefault
		reverted++
	}
	if reverted > 0 {
		s.persistLocked()
		s.publishLocked()
	}
	return s.prefs
}

// ApplyEnvironmentSignal merges forced-true system signals into preferences.
// Contrast and motion signals apply unconditionally, even over an explicit
// user false; dark mode applies only while the user has not touched the key.
func (s *Store) ApplyEnvironmentSignal(sig EnvironmentSignal) models.AccessibilityPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	if sig.HighContrast && !s.prefs.HighContrast {
		s.prefs.HighContrast = true
		s.prov[models.KeyHighContrast] = models.ProvenanceAuto
		changed = true
	}
	if sig.ReducedMotion && !s.prefs.ReducedMotion {
		s.prefs.ReducedMotion = true
		s.prov[models.KeyReducedMotion] = models.ProvenanceAuto
		changed = true
	}
	if sig.DarkMode && !s.prefs.DarkMode && s.prov[models.KeyDarkMode] == models.ProvenanceDefault {
		s.prefs.DarkMode = true
		s.prov[models.KeyDarkMode] = models.ProvenanceAuto
		changed = true
	}
	if changed {
		s.persistLocked()
		s.publishLocked()
	}
	return s.prefs
}

// persistLocked writes the current snapshot to the durable slot. Fire and
// forget: failures are logged, never surfaced to the caller.
func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	blob, err := json.Marshal(snapshot{Preferences: s.prefs, Provenance: s.prov})
	if err != nil {
		s.log.Warn("failed to encode preference snapshot", zap.Error(err))
		return
	}
	if err := s.persister.SavePreferences(s.storageKey, blob); err != nil {
		s.log.Warn("failed to persist preferences",
			zap.String("key", s.storageKey), zap.Error(err))
	}
}

// Subscribe registers a latest-value listener for preference snapshots, for
// the rendering layer. Pair with Unsubscribe.
func (s *Store) Subscribe() <-chan models.AccessibilityPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan models.AccessibilityPreferences, 1)
	s.subs[ch] = ch
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (s *Store) Unsubscribe(ch <-chan models.AccessibilityPreferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if send, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(send)
	}
}

// Close tears down all subscriptions.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, send := range s.subs {
		delete(s.subs, key)
		close(send)
	}
}

func (s *Store) publishLocked() {
	for _, send := range s.subs {
		select {
		case <-send:
		default:
		}
		select {
		case send <- s.prefs:
		default:
		}
	}
}
