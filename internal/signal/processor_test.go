package signal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cogui/internal/models"
)

func newStarted(t *testing.T, cfg Config) *Processor {
	t.Helper()
	p := NewProcessor(cfg, nil)
	p.Start()
	return p
}

func sample(x, y, ts float64) models.SampleEvent {
	return models.SampleEvent{X: x, Y: y, Timestamp: ts}
}

func TestConstantVelocityScenario(t *testing.T) {
	p := newStarted(t, DefaultConfig())

	p.OnSample(sample(0, 0, 0))
	p.OnSample(sample(10, 0, 50))
	p.OnSample(sample(20, 0, 100))

	m := p.Metrics()
	assert.InDelta(t, 0.2, m.AverageSpeed, 1e-9)
	assert.Equal(t, 1.0, m.Smoothness)
	assert.Equal(t, 0.0, m.Tremor)
	assert.Equal(t, 0, m.HesitationCount)
}

func TestFirstSampleEstablishesReferenceOnly(t *testing.T) {
	p := newStarted(t, DefaultConfig())

	p.OnSample(sample(5, 5, 0))
	assert.Empty(t, p.Window())
	assert.Equal(t, 0, p.Metrics().HesitationCount)

	p.OnSample(sample(15, 5, 50))
	require.Len(t, p.Window(), 1)
	assert.InDelta(t, 0.2, p.Window()[0].VX, 1e-9)
}

func TestThrottlingKeepsOneSamplePerInterval(t *testing.T) {
	p := newStarted(t, DefaultConfig())

	p.OnSample(sample(0, 0, 0))
	p.OnSample(sample(1, 0, 10)) // inside interval, dropped
	p.OnSample(sample(2, 0, 20)) // inside interval, dropped
	p.OnSample(sample(10, 0, 50))
	p.OnSample(sample(11, 0, 80)) // inside interval, dropped
	p.OnSample(sample(20, 0, 100))

	assert.Len(t, p.Window(), 2)
}

func TestWindowNeverExceedsCapacity(t *testing.T) {
	cfg := DefaultConfig()
	p := newStarted(t, cfg)

	for i := 0; i < 300; i++ {
		p.OnSample(sample(float64(i), 0, float64(i*50)))
		require.LessOrEqual(t, len(p.Window()), cfg.WindowCapacity)
	}
	assert.Len(t, p.Window(), cfg.WindowCapacity)
}

func TestWindowEvictsOldestFirst(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowCapacity = 5
	p := newStarted(t, cfg)

	for i := 0; i <= 10; i++ {
		p.OnSample(sample(float64(i), 0, float64(i*50)))
	}
	window := p.Window()
	require.Len(t, window, 5)
	// Samples 1..10 were derived; the last five are 6..10.
	assert.Equal(t, 300.0, window[0].Timestamp)
	assert.Equal(t, 500.0, window[4].Timestamp)
}

func TestHesitationCounting(t *testing.T) {
	p := newStarted(t, DefaultConfig())

	// First sample never counts, whatever came before it.
	p.OnSample(sample(0, 0, 0))
	assert.Equal(t, 0, p.Metrics().HesitationCount)

	// 250 ms gap with a prior sample present: exactly one hesitation.
	p.OnSample(sample(10, 0, 50))
	p.OnSample(sample(20, 0, 300))
	assert.Equal(t, 1, p.Metrics().HesitationCount)

	// A gap at exactly the threshold does not count.
	p.OnSample(sample(30, 0, 500))
	assert.Equal(t, 1, p.Metrics().HesitationCount)

	// Another long gap increments again; the counter is monotonic.
	p.OnSample(sample(40, 0, 900))
	assert.Equal(t, 2, p.Metrics().HesitationCount)
}

func TestInvalidSamplesDropped(t *testing.T) {
	p := newStarted(t, DefaultConfig())
	p.OnSample(sample(0, 0, 0))
	p.OnSample(sample(math.NaN(), 0, 50))
	p.OnSample(sample(0, math.Inf(1), 100))
	assert.Empty(t, p.Window())

	p.OnSample(sample(10, 0, 150))
	assert.Len(t, p.Window(), 1)
}

func TestInactiveProcessorIgnoresEvents(t *testing.T) {
	p := NewProcessor(DefaultConfig(), nil)
	p.OnSample(sample(0, 0, 0))
	p.OnSample(sample(10, 0, 50))
	assert.Empty(t, p.Window())

	p.Start()
	p.Stop()
	p.OnSample(sample(0, 0, 100))
	assert.Empty(t, p.Window())
}

func TestStopKeepsWindowInspectable(t *testing.T) {
	p := newStarted(t, DefaultConfig())
	p.OnSample(sample(0, 0, 0))
	p.OnSample(sample(10, 0, 50))
	p.Stop()

	assert.False(t, p.Active())
	assert.Len(t, p.Window(), 1)
	assert.InDelta(t, 0.2, p.Metrics().AverageSpeed, 1e-9)
}

func TestResetClearsEverything(t *testing.T) {
	p := newStarted(t, DefaultConfig())
	p.OnSample(sample(0, 0, 0))
	p.OnSample(sample(10, 0, 300)) // hesitation
	p.OnClick(models.ClickSample{X: 5, Y: 5, TargetX: 0, TargetY: 0, TargetWidth: 4, TargetHeight: 4, Timestamp: 310})
	p.Reset()

	assert.Empty(t, p.Window())
	assert.Empty(t, p.Clicks())
	m := p.Metrics()
	assert.Equal(t, models.MouseMetrics{Smoothness: 1, Accuracy: 1}, m)
}

func TestStartIsIdempotentAndClears(t *testing.T) {
	p := newStarted(t, DefaultConfig())
	p.OnSample(sample(0, 0, 0))
	p.OnSample(sample(10, 0, 300))
	require.Equal(t, 1, p.Metrics().HesitationCount)

	p.Start()
	assert.True(t, p.Active())
	assert.Empty(t, p.Window())
	assert.Equal(t, 0, p.Metrics().HesitationCount)
}

func TestClickAccuracy(t *testing.T) {
	t.Run("dead center is perfect", func(t *testing.T) {
		p := newStarted(t, DefaultConfig())
		p.OnClick(models.ClickSample{
			X: 100, Y: 100,
			TargetX: 100, TargetY: 100,
			TargetWidth: 20, TargetHeight: 20,
			Timestamp: 10,
		})
		assert.Equal(t, 1.0, p.Metrics().Accuracy)
	})

	t.Run("corner of the target is zero", func(t *testing.T) {
		p := newStarted(t, DefaultConfig())
		p.OnClick(models.ClickSample{
			X: 110, Y: 110,
			TargetX: 100, TargetY: 100,
			TargetWidth: 20, TargetHeight: 20,
			Timestamp: 10,
		})
		assert.InDelta(t, 0.0, p.Metrics().Accuracy, 1e-9)
	})

	t.Run("zero-area target is a perfect hit", func(t *testing.T) {
		p := newStarted(t, DefaultConfig())
		p.OnClick(models.ClickSample{
			X: 200, Y: 200,
			TargetX: 100, TargetY: 100,
			Timestamp: 10,
		})
		assert.Equal(t, 1.0, p.Metrics().Accuracy)
	})

	t.Run("accuracy is clamped to [0,1]", func(t *testing.T) {
		p := newStarted(t, DefaultConfig())
		p.OnClick(models.ClickSample{
			X: 1000, Y: 1000,
			TargetX: 100, TargetY: 100,
			TargetWidth: 10, TargetHeight: 10,
			Timestamp: 10,
		})
		m := p.Metrics()
		assert.GreaterOrEqual(t, m.Accuracy, 0.0)
		assert.LessOrEqual(t, m.Accuracy, 1.0)
	})
}

func TestClickReactionTime(t *testing.T) {
	p := newStarted(t, DefaultConfig())
	p.OnSample(sample(0, 0, 0))
	p.OnSample(sample(10, 0, 50))
	p.OnClick(models.ClickSample{X: 10, Y: 0, TargetX: 10, TargetY: 0, TargetWidth: 10, TargetHeight: 10, Timestamp: 170})

	clicks := p.Clicks()
	require.Len(t, clicks, 1)
	assert.Equal(t, 120.0, clicks[0].ReactionTime)
}

func TestClickHistoryIsBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClickHistoryCapacity = 3
	p := newStarted(t, cfg)

	for i := 0; i < 5; i++ {
		p.OnClick(models.ClickSample{
			X: float64(i), Y: 0,
			TargetX: float64(i), TargetY: 0,
			TargetWidth: 10, TargetHeight: 10,
			Timestamp: float64(i * 100),
		})
	}
	clicks := p.Clicks()
	require.Len(t, clicks, 3)
	assert.Equal(t, 200.0, clicks[0].Timestamp)
	assert.Equal(t, 400.0, clicks[2].Timestamp)
}

func TestScrollDirectionAndMagnitude(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScrollHistoryCapacity = 10
	p := newStarted(t, cfg)

	p.OnScroll(models.WheelSample{DeltaX: 3, DeltaY: -5, Timestamp: 0})
	p.OnScroll(models.WheelSample{DeltaX: -10, DeltaY: 2, Timestamp: 100})
	p.OnScroll(models.WheelSample{DeltaX: 5, DeltaY: 5, Timestamp: 200}) // tie resolves vertical

	scrolls := p.Scrolls()
	require.Len(t, scrolls, 3)

	assert.Equal(t, models.ScrollUp, scrolls[0].Direction)
	assert.Equal(t, 8.0, scrolls[0].Distance)
	assert.Equal(t, 0.0, scrolls[0].Speed) // no prior scroll

	assert.Equal(t, models.ScrollLeft, scrolls[1].Direction)
	assert.InDelta(t, 0.12, scrolls[1].Speed, 1e-9)

	assert.Equal(t, models.ScrollDown, scrolls[2].Direction)
}

func TestDwellTime(t *testing.T) {
	p := newStarted(t, DefaultConfig())
	// Displacements of 2 px per 100 ms: the pointer is resting.
	p.OnSample(sample(0, 0, 0))
	p.OnSample(sample(2, 0, 100))
	p.OnSample(sample(4, 0, 200))
	p.OnSample(sample(6, 0, 300))

	assert.InDelta(t, 100.0, p.Metrics().DwellTime, 1e-9)

	// Large displacements: no dwell pairs.
	p.Start()
	p.OnSample(sample(0, 0, 0))
	p.OnSample(sample(100, 0, 100))
	p.OnSample(sample(200, 0, 200))
	assert.Equal(t, 0.0, p.Metrics().DwellTime)
}

func TestMetricsAlwaysInRange(t *testing.T) {
	p := newStarted(t, DefaultConfig())
	// Erratic, high-jerk input.
	coords := []float64{0, 500, -300, 800, 10, 900, -200, 400, 0, 700}
	for i, x := range coords {
		p.OnSample(sample(x, -x, float64(i*60)))
	}
	m := p.Metrics()
	assert.GreaterOrEqual(t, m.Smoothness, 0.0)
	assert.LessOrEqual(t, m.Smoothness, 1.0)
	assert.GreaterOrEqual(t, m.Tremor, 0.0)
	assert.LessOrEqual(t, m.Tremor, 1.0)
	assert.GreaterOrEqual(t, m.Accuracy, 0.0)
	assert.LessOrEqual(t, m.Accuracy, 1.0)
}

func TestMetricsStreamKeepsLatestValueOnly(t *testing.T) {
	p := newStarted(t, DefaultConfig())
	ch := p.Subscribe()

	p.OnSample(sample(0, 0, 0))
	p.OnSample(sample(10, 0, 50))
	p.OnSample(sample(20, 0, 100))

	// Two publications happened but only the freshest is readable.
	require.Len(t, ch, 1)
	m := <-ch
	assert.InDelta(t, 0.2, m.AverageSpeed, 1e-9)

	p.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
}

func TestCloseTearsDownSubscriptions(t *testing.T) {
	p := newStarted(t, DefaultConfig())
	a, b := p.Subscribe(), p.Subscribe()
	p.Close()

	_, openA := <-a
	_, openB := <-b
	assert.False(t, openA)
	assert.False(t, openB)
}
