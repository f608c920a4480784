package signal

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"cogui/internal/models"
)

// Config holds the sampling and windowing knobs of the processor.
type Config struct {
	SampleRateMs          float64
	HesitationThresholdMs float64
	WindowCapacity        int
	DwellDistancePx       float64
	ClickHistoryCapacity  int
	ScrollHistoryCapacity int
}

// DefaultConfig returns the compiled defaults.
func DefaultConfig() Config {
	return Config{
		SampleRateMs:          50,
		HesitationThresholdMs: 200,
		WindowCapacity:        100,
		DwellDistancePx:       10,
		ClickHistoryCapacity:  500,
		ScrollHistoryCapacity: 500,
	}
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.SampleRateMs <= 0 {
		c.SampleRateMs = d.SampleRateMs
	}
	if c.HesitationThresholdMs <= 0 {
		c.HesitationThresholdMs = d.HesitationThresholdMs
	}
	if c.WindowCapacity <= 0 {
		c.WindowCapacity = d.WindowCapacity
	}
	if c.DwellDistancePx <= 0 {
		c.DwellDistancePx = d.DwellDistancePx
	}
	if c.ClickHistoryCapacity <= 0 {
		c.ClickHistoryCapacity = d.ClickHistoryCapacity
	}
	if c.ScrollHistoryCapacity <= 0 {
		c.ScrollHistoryCapacity = d.ScrollHistoryCapacity
	}
}

// Processor ingests raw pointer, click and wheel samples, derives kinematics
// and maintains the bounded histories the metric queries read from.
//
// Raw samples are throttled: at most one per SampleRateMs is accepted, the
// most recent one at the interval boundary. The first accepted sample of a
// session only establishes the kinematic reference; derived samples are
// appended from the second accepted sample on.
//
// All methods are safe for concurrent use; each operation runs to completion
// under a single lock, so metric recomputation always sees a consistent
// window.
type Processor struct {
	mu  sync.Mutex
	cfg Config
	log *zap.Logger

	active    bool
	startedAt time.Time

	// Kinematic reference: the last accepted raw sample.
	haveRef          bool
	refX, refY, refT float64

	// Last derived velocity, for acceleration.
	haveVel        bool
	lastVX, lastVY float64

	window  *ring[models.KinematicSample]
	clicks  *ring[models.ClickEvent]
	scrolls *ring[models.ScrollEvent]

	haveScroll  bool
	lastScrollT float64

	hesitations int
	metrics     models.MouseMetrics

	subs map[<-chan models.MouseMetrics]chan models.MouseMetrics
}

// NewProcessor creates an inactive processor. Call Start before feeding
// events; events arriving while inactive are ignored.
func NewProcessor(cfg Config, log *zap.Logger) *Processor {
	cfg.normalize()
	if log == nil {
		log = zap.NewNop()
	}
	p := &Processor{
		cfg:     cfg,
		log:     log,
		window:  newRing[models.KinematicSample](cfg.WindowCapacity),
		clicks:  newRing[models.ClickEvent](cfg.ClickHistoryCapacity),
		scrolls: newRing[models.ScrollEvent](cfg.ScrollHistoryCapacity),
		subs:    make(map[<-chan models.MouseMetrics]chan models.MouseMetrics),
	}
	p.metrics = p.computeLocked()
	return p
}

// Start begins a tracking session. Idempotent: calling it again clears all
// accumulated state and starts over.
func (p *Processor) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLocked()
	p.active = true
	p.startedAt = time.Now()
	p.log.Debug("signal processor started")
}

// Stop marks tracking inactive after a final metrics recomputation. The
// window stays inspectable after stop.
func (p *Processor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return
	}
	p.active = false
	p.metrics = p.computeLocked()
	p.publishLocked()
	p.log.Debug("signal processor stopped", zap.Int("windowLen", p.window.len()))
}

// Reset clears all accumulated state, including published metrics.
func (p *Processor) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLocked()
	p.metrics = p.computeLocked()
	p.publishLocked()
}

func (p *Processor) clearLocked() {
	p.window.clear()
	p.clicks.clear()
	p.scrolls.clear()
	p.hesitations = 0
	p.haveRef = false
	p.haveVel = false
	p.haveScroll = false
}

// Active reports whether a tracking session is running.
func (p *Processor) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// OnSample ingests one raw pointer sample. Samples with non-finite
// coordinates are dropped; samples arriving inside the current sampling
// interval are discarded in favor of the one at the boundary.
func (p *Processor) OnSample(e models.SampleEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return
	}
	if !finite(e.X) || !finite(e.Y) || !finite(e.Timestamp) {
		p.log.Debug("dropping invalid sample",
			zap.Float64("x", e.X), zap.Float64("y", e.Y))
		return
	}
	if !p.haveRef {
		// First sample of the session: establishes the reference only.
		p.refX, p.refY, p.refT = e.X, e.Y, e.Timestamp
		p.haveRef = true
		return
	}
	dt := e.Timestamp - p.refT
	if dt < p.cfg.SampleRateMs {
		// Throttled: at most one accepted sample per interval.
		return
	}
	if dt > p.cfg.HesitationThresholdMs {
		p.hesitations++
	}

	vx := (e.X - p.refX) / dt
	vy := (e.Y - p.refY) / dt
	var ax, ay float64
	if p.haveVel {
		ax = (vx - p.lastVX) / dt
		ay = (vy - p.lastVY) / dt
	}
	p.window.push(models.KinematicSample{
		X: e.X, Y: e.Y,
		VX: vx, VY: vy,
		AX: ax, AY: ay,
		Timestamp: e.Timestamp,
	})

	p.lastVX, p.lastVY, p.haveVel = vx, vy, true
	p.refX, p.refY, p.refT = e.X, e.Y, e.Timestamp

	p.metrics = p.computeLocked()
	p.publishLocked()
}

// OnClick ingests one raw click. Accuracy is the normalized distance from
// the target center, against half the target diagonal; a zero-area target
// counts as a perfect hit.
func (p *Processor) OnClick(e models.ClickSample) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return
	}
	if !finite(e.X) || !finite(e.Y) || !finite(e.Timestamp) {
		p.log.Debug("dropping invalid click")
		return
	}

	accuracy := 1.0
	halfDiag := math.Hypot(e.TargetWidth, e.TargetHeight) / 2
	if halfDiag > 0 {
		dist := math.Hypot(e.X-e.TargetX, e.Y-e.TargetY)
		accuracy = clamp01(1 - dist/halfDiag)
	}

	// Motion-latency heuristic: gap from the last recorded pointer movement
	// to the click, not a true stimulus-response time.
	var reaction float64
	if p.window.len() > 0 {
		reaction = e.Timestamp - p.window.last().Timestamp
	}

	p.clicks.push(models.ClickEvent{
		X: e.X, Y: e.Y,
		TargetWidth:  e.TargetWidth,
		TargetHeight: e.TargetHeight,
		Accuracy:     accuracy,
		Timestamp:    e.Timestamp,
		ReactionTime: reaction,
	})

	p.metrics = p.computeLocked()
	p.publishLocked()
}

// OnScroll ingests one raw wheel delta. The dominant axis decides the
// direction, ties resolving to vertical; magnitude is |dx|+|dy|.
func (p *Processor) OnScroll(e models.WheelSample) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return
	}
	if !finite(e.DeltaX) || !finite(e.DeltaY) || !finite(e.Timestamp) {
		p.log.Debug("dropping invalid scroll")
		return
	}

	var dir models.ScrollDirection
	if math.Abs(e.DeltaY) >= math.Abs(e.DeltaX) {
		if e.DeltaY < 0 {
			dir = models.ScrollUp
		} else {
			dir = models.ScrollDown
		}
	} else {
		if e.DeltaX < 0 {
			dir = models.ScrollLeft
		} else {
			dir = models.ScrollRight
		}
	}

	distance := math.Abs(e.DeltaX) + math.Abs(e.DeltaY)
	var speed float64
	if p.haveScroll {
		if dt := e.Timestamp - p.lastScrollT; dt > 0 {
			speed = distance / dt
		}
	}
	p.lastScrollT = e.Timestamp
	p.haveScroll = true

	p.scrolls.push(models.ScrollEvent{
		Direction: dir,
		Distance:  distance,
		Speed:     speed,
		Timestamp: e.Timestamp,
	})
}

// Metrics returns the most recently computed metrics snapshot.
func (p *Processor) Metrics() models.MouseMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.metrics
}

// Window returns a copy of the current kinematic window, oldest first.
func (p *Processor) Window() []models.KinematicSample {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.window.slice()
}

// Clicks returns a copy of the recorded click history, oldest first.
func (p *Processor) Clicks() []models.ClickEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clicks.slice()
}

// Scrolls returns a copy of the recorded scroll history, oldest first.
func (p *Processor) Scrolls() []models.ScrollEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrolls.slice()
}

// Subscribe registers a latest-value metrics listener. The channel holds at
// most one snapshot; a newer value overwrites an unread one, so slow readers
// only ever see the freshest state. Pair every Subscribe with Unsubscribe.
func (p *Processor) Subscribe() <-chan models.MouseMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan models.MouseMetrics, 1)
	p.subs[ch] = ch
	return ch
}

// Unsubscribe removes a listener registered with Subscribe and closes its
// channel.
func (p *Processor) Unsubscribe(ch <-chan models.MouseMetrics) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if send, ok := p.subs[ch]; ok {
		delete(p.subs, ch)
		close(send)
	}
}

// Close tears down all subscriptions.
func (p *Processor) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = false
	for key, send := range p.subs {
		delete(p.subs, key)
		close(send)
	}
}

func (p *Processor) publishLocked() {
	for _, send := range p.subs {
		// Drop the unread value, if any, then push the fresh one. Never
		// blocks: this is a single-slot latest-value stream, not a queue.
		select {
		case <-send:
		default:
		}
		select {
		case send <- p.metrics:
		default:
		}
	}
}

// computeLocked derives the full metrics snapshot from the current window
// and click history.
func (p *Processor) computeLocked() models.MouseMetrics {
	m := models.MouseMetrics{
		Smoothness:      1,
		Accuracy:        1,
		HesitationCount: p.hesitations,
	}

	n := p.window.len()
	if n > 0 {
		var sum float64
		speeds := make([]float64, n)
		for i := 0; i < n; i++ {
			s := p.window.at(i)
			speeds[i] = math.Hypot(s.VX, s.VY)
			sum += speeds[i]
		}
		m.AverageSpeed = sum / float64(n)

		if n >= 3 {
			var jerkSum float64
			for i := 1; i < n; i++ {
				prev, cur := p.window.at(i-1), p.window.at(i)
				jerkSum += math.Hypot(cur.AX-prev.AX, cur.AY-prev.AY)
			}
			meanJerk := jerkSum / float64(n-1)
			m.Smoothness = clamp01(1 - meanJerk/100)
		}

		if n >= 5 {
			mean := m.AverageSpeed
			var variance float64
			for _, v := range speeds {
				variance += (v - mean) * (v - mean)
			}
			variance /= float64(n)
			m.Tremor = clamp01(variance / 1000)
		}

		var dwellSum float64
		var dwellPairs int
		for i := 1; i < n; i++ {
			prev, cur := p.window.at(i-1), p.window.at(i)
			if math.Hypot(cur.X-prev.X, cur.Y-prev.Y) < p.cfg.DwellDistancePx {
				dwellSum += cur.Timestamp - prev.Timestamp
				dwellPairs++
			}
		}
		if dwellPairs > 0 {
			m.DwellTime = dwellSum / float64(dwellPairs)
		}
	}

	if c := p.clicks.len(); c > 0 {
		var sum float64
		for i := 0; i < c; i++ {
			sum += p.clicks.at(i).Accuracy
		}
		m.Accuracy = clamp01(sum / float64(c))
	}

	return m
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
