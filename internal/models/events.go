package models

// Timestamps throughout the pipeline are float64 milliseconds, matching what
// a browser capture layer reports (performance.now() style). Velocities are
// px/ms, accelerations px/ms².

// SampleEvent is one raw pointer sample as delivered by the capture layer.
// It is consumed immediately and never retained.
type SampleEvent struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Timestamp float64 `json:"timestamp"`
	Pressure  float64 `json:"pressure,omitempty"` // 0..1, optional
}

// KinematicSample is a pointer position with its first and second time
// derivatives. Samples live in a bounded ring buffer.
type KinematicSample struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VX        float64 `json:"vx"`
	VY        float64 `json:"vy"`
	AX        float64 `json:"ax"`
	AY        float64 `json:"ay"`
	Timestamp float64 `json:"timestamp"`
}

// ClickSample is one raw click as delivered by the capture layer, carrying
// the bounds and center of whatever was clicked.
type ClickSample struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	TargetX      float64 `json:"targetX"`
	TargetY      float64 `json:"targetY"`
	TargetWidth  float64 `json:"targetWidth"`
	TargetHeight float64 `json:"targetHeight"`
	Timestamp    float64 `json:"timestamp"`
}

// ClickEvent is a processed click with its derived accuracy and reaction
// latency.
type ClickEvent struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	TargetWidth  float64 `json:"targetWidth"`
	TargetHeight float64 `json:"targetHeight"`
	Accuracy     float64 `json:"accuracy"` // 0..1
	Timestamp    float64 `json:"timestamp"`
	// ReactionTime is the gap between the last recorded pointer movement and
	// the click, in ms. A motion-latency heuristic, not a true
	// stimulus-response measurement.
	ReactionTime float64 `json:"reactionTime"`
}

// WheelSample is one raw wheel/scroll delta from the capture layer.
type WheelSample struct {
	DeltaX    float64 `json:"deltaX"`
	DeltaY    float64 `json:"deltaY"`
	Timestamp float64 `json:"timestamp"`
}

// ScrollDirection is the dominant axis of a scroll event.
type ScrollDirection string

const (
	ScrollUp    ScrollDirection = "up"
	ScrollDown  ScrollDirection = "down"
	ScrollLeft  ScrollDirection = "left"
	ScrollRight ScrollDirection = "right"
)

// ScrollEvent is a processed scroll with its derived direction and magnitude.
type ScrollEvent struct {
	Direction ScrollDirection `json:"direction"`
	Distance  float64         `json:"distance"`
	Speed     float64         `json:"speed"` // px/ms relative to previous scroll
	Timestamp float64         `json:"timestamp"`
}

// MouseMetrics is the aggregate view over the current kinematic window and click
// history. All bounded members are clamped into [0,1].
type MouseMetrics struct {
	AverageSpeed    float64 `json:"averageSpeed"`    // px/ms
	Smoothness      float64 `json:"smoothness"`      // 0..1, 1 = perfectly smooth
	Accuracy        float64 `json:"accuracy"`        // 0..1, 1 = dead center
	HesitationCount int     `json:"hesitationCount"` // monotonic within a session
	Tremor          float64 `json:"tremor"`          // 0..1
	DwellTime       float64 `json:"dwellTime"`       // mean resting interval, ms
}
