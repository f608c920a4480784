package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogui/internal/models"
	"cogui/internal/session"
	"cogui/internal/signal"
	"cogui/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *session.Pipeline) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pipeline := &session.Pipeline{
		ID:        "test-session",
		Processor: signal.NewProcessor(signal.DefaultConfig(), nil),
		Store:     store.New(store.Options{SessionID: "test-session"}),
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextPipelineKey, pipeline)
		c.Next()
	})

	pipelineHandler := NewPipelineHandler(nil)
	preferencesHandler := NewPreferencesHandler(nil)
	r.POST("/session/start", pipelineHandler.Start)
	r.POST("/events/samples", pipelineHandler.Samples)
	r.GET("/metrics", pipelineHandler.Metrics)
	r.GET("/metrics/chart", pipelineHandler.MetricsChart)
	r.POST("/state", preferencesHandler.UpdateState)
	r.GET("/preferences", preferencesHandler.Get)
	r.PATCH("/preferences", preferencesHandler.Patch)

	return r, pipeline
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSampleIngestionAndMetrics(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/session/start", nil)
	require.Equal(t, http.StatusOK, w.Code)

	samples := []models.SampleEvent{
		{X: 0, Y: 0, Timestamp: 0},
		{X: 10, Y: 0, Timestamp: 50},
		{X: 20, Y: 0, Timestamp: 100},
	}
	w = doJSON(t, r, http.MethodPost, "/events/samples", samples)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var m models.MouseMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.InDelta(t, 0.2, m.AverageSpeed, 1e-9)
	assert.Equal(t, 1.0, m.Smoothness)
}

func TestSamplesRejectsMalformedBody(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/events/samples", bytes.NewBufferString("not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStateValidatesLevels(t *testing.T) {
	r, pipeline := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/state", map[string]string{
		"attentionLevel": "cosmic",
		"cognitiveLoad":  "high",
		"fatigueLevel":   "high",
		"stressLevel":    "high",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, pipeline.Store.CognitiveState())

	w = doJSON(t, r, http.MethodPost, "/state", models.CognitiveState{
		AttentionLevel: models.LevelLow,
		CognitiveLoad:  models.LevelHigh,
		FatigueLevel:   models.LevelHigh,
		StressLevel:    models.LevelHigh,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, pipeline.Store.CognitiveState())
}

func TestPreferencePatchRoundTrip(t *testing.T) {
	r, pipeline := newTestRouter(t)

	w := doJSON(t, r, http.MethodPatch, "/preferences", map[string]bool{"darkMode": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, pipeline.Store.Preferences().DarkMode)

	w = doJSON(t, r, http.MethodGet, "/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Preferences models.AccessibilityPreferences            `json:"preferences"`
		Provenance  map[models.PreferenceKey]models.Provenance `json:"provenance"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Preferences.DarkMode)
	assert.Equal(t, models.ProvenanceUser, resp.Provenance[models.KeyDarkMode])
}

func TestMetricsChartRenders(t *testing.T) {
	r, pipeline := newTestRouter(t)
	pipeline.Processor.Start()
	pipeline.Processor.OnSample(models.SampleEvent{X: 0, Y: 0, Timestamp: 0})
	pipeline.Processor.OnSample(models.SampleEvent{X: 10, Y: 0, Timestamp: 50})

	w := doJSON(t, r, http.MethodGet, "/metrics/chart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "echarts")
}
