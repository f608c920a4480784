package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cogui/internal/models"
	"cogui/internal/repository"
	"cogui/internal/store"
)

// PreferencesHandler serves preference state, cognitive-state updates and
// the adaptation policy knobs.
type PreferencesHandler struct {
	log *zap.Logger
}

func NewPreferencesHandler(log *zap.Logger) *PreferencesHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PreferencesHandler{log: log}
}

// Get returns the current preferences with their provenance.
func (h *PreferencesHandler) Get(c *gin.Context) {
	p := currentPipeline(c)
	c.JSON(http.StatusOK, gin.H{
		"preferences": p.Store.Preferences(),
		"provenance":  p.Store.Provenance(),
	})
}

// Patch merges a user preference patch.
func (h *PreferencesHandler) Patch(c *gin.Context) {
	var patch models.PreferencePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.log.Error("Failed to bind preference patch", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	p := currentPipeline(c)
	c.JSON(http.StatusOK, p.Store.UpdatePreferences(patch))
}

// Reset restores preferences, cognitive state and adaptive config to
// compiled defaults.
func (h *PreferencesHandler) Reset(c *gin.Context) {
	p := currentPipeline(c)
	p.Store.ResetPreferences()
	c.JSON(http.StatusOK, p.Store.Preferences())
}

// RevertAuto rolls back auto-applied values, leaving user choices alone.
func (h *PreferencesHandler) RevertAuto(c *gin.Context) {
	p := currentPipeline(c)
	c.JSON(http.StatusOK, p.Store.RevertAutomatic())
}

// UpdateState receives an externally derived cognitive state and runs the
// auto-apply cascade when enabled.
func (h *PreferencesHandler) UpdateState(c *gin.Context) {
	var state models.CognitiveState
	if err := c.ShouldBindJSON(&state); err != nil {
		h.log.Error("Failed to bind cognitive state", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	for _, lvl := range []models.Level{state.AttentionLevel, state.CognitiveLoad, state.FatigueLevel, state.StressLevel} {
		if !lvl.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown level value"})
			return
		}
	}
	p := currentPipeline(c)
	p.Store.UpdateCognitiveState(state)
	c.JSON(http.StatusOK, gin.H{
		"state":       state,
		"preferences": p.Store.Preferences(),
	})
}

// PatchConfig merges an adaptive-config patch.
func (h *PreferencesHandler) PatchConfig(c *gin.Context) {
	var patch models.AdaptiveConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.log.Error("Failed to bind adaptive config patch", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	p := currentPipeline(c)
	c.JSON(http.StatusOK, p.Store.UpdateAdaptiveConfig(patch))
}

// Environment merges forced-true system media signals.
func (h *PreferencesHandler) Environment(c *gin.Context) {
	var sig store.EnvironmentSignal
	if err := c.ShouldBindJSON(&sig); err != nil {
		h.log.Error("Failed to bind environment signal", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	p := currentPipeline(c)
	c.JSON(http.StatusOK, p.Store.ApplyEnvironmentSignal(sig))
}

// Adaptations returns the newest auto-adaptation audit rows for the session.
func (h *PreferencesHandler) Adaptations(c *gin.Context) {
	p := currentPipeline(c)
	events, err := repository.RecentAdaptations(p.ID, 50)
	if err != nil {
		h.log.Warn("Failed to load adaptation history", zap.Error(err))
		c.JSON(http.StatusOK, []models.AdaptationEvent{})
		return
	}
	c.JSON(http.StatusOK, events)
}
