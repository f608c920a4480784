package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"

	"cogui/internal/models"
	"cogui/internal/session"
)

// ContextPipelineKey is where the session middleware stores the resolved
// pipeline.
const ContextPipelineKey = "pipeline"

func currentPipeline(c *gin.Context) *session.Pipeline {
	return c.MustGet(ContextPipelineKey).(*session.Pipeline)
}

// PipelineHandler serves tracking lifecycle, event ingestion and metric
// queries.
type PipelineHandler struct {
	log *zap.Logger
}

func NewPipelineHandler(log *zap.Logger) *PipelineHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PipelineHandler{log: log}
}

// Start begins (or restarts) the session's tracking.
func (h *PipelineHandler) Start(c *gin.Context) {
	p := currentPipeline(c)
	p.Processor.Start()
	c.JSON(http.StatusOK, gin.H{"session": p.ID, "tracking": true})
}

// Stop ends tracking; the window remains inspectable.
func (h *PipelineHandler) Stop(c *gin.Context) {
	p := currentPipeline(c)
	p.Processor.Stop()
	c.JSON(http.StatusOK, gin.H{"session": p.ID, "tracking": false, "metrics": p.Processor.Metrics()})
}

// Reset clears all accumulated tracking state.
func (h *PipelineHandler) Reset(c *gin.Context) {
	p := currentPipeline(c)
	p.Processor.Reset()
	c.Status(http.StatusOK)
}

// Samples ingests a batch of raw pointer samples.
func (h *PipelineHandler) Samples(c *gin.Context) {
	var samples []models.SampleEvent
	if err := c.ShouldBindJSON(&samples); err != nil {
		h.log.Error("Failed to bind pointer samples", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	p := currentPipeline(c)
	for _, s := range samples {
		p.Processor.OnSample(s)
	}
	c.JSON(http.StatusOK, gin.H{"accepted": len(samples), "metrics": p.Processor.Metrics()})
}

// Clicks ingests a batch of raw clicks.
func (h *PipelineHandler) Clicks(c *gin.Context) {
	var clicks []models.ClickSample
	if err := c.ShouldBindJSON(&clicks); err != nil {
		h.log.Error("Failed to bind click samples", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	p := currentPipeline(c)
	for _, click := range clicks {
		p.Processor.OnClick(click)
	}
	c.JSON(http.StatusOK, gin.H{"accepted": len(clicks), "metrics": p.Processor.Metrics()})
}

// Scrolls ingests a batch of raw wheel deltas.
func (h *PipelineHandler) Scrolls(c *gin.Context) {
	var scrolls []models.WheelSample
	if err := c.ShouldBindJSON(&scrolls); err != nil {
		h.log.Error("Failed to bind wheel samples", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	p := currentPipeline(c)
	for _, s := range scrolls {
		p.Processor.OnScroll(s)
	}
	c.JSON(http.StatusOK, gin.H{"accepted": len(scrolls)})
}

// Metrics returns the latest metrics snapshot.
func (h *PipelineHandler) Metrics(c *gin.Context) {
	p := currentPipeline(c)
	c.JSON(http.StatusOK, p.Processor.Metrics())
}

// MetricsChart renders the current kinematic window as a speed-over-time
// line chart.
func (h *PipelineHandler) MetricsChart(c *gin.Context) {
	p := currentPipeline(c)
	window := p.Processor.Window()

	line := generateSpeedChart(window)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(c.Writer); err != nil {
		h.log.Error("Failed to render metrics chart", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func generateSpeedChart(window []models.KinematicSample) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Pointer speed",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "time (ms)",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  "px/ms",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	xAxis := make([]float64, 0, len(window))
	items := make([]opts.LineData, 0, len(window))
	for _, s := range window {
		xAxis = append(xAxis, s.Timestamp)
		items = append(items, opts.LineData{Value: math.Hypot(s.VX, s.VY)})
	}

	line.SetXAxis(xAxis).
		AddSeries("speed", items).
		SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
