package pace

import "time"

// statsWindow is the moving-average window, in frames.
const statsWindow = 64

// FrameTimes tracks per-tick pacing: the delta to the previous tick, a
// windowed average, and the worst frame seen so far.
type FrameTimes struct {
	FrameCount      uint64
	AverageDuration time.Duration
	MaxDuration     time.Duration

	// Delta is the time between the two most recent ticks.
	Delta time.Duration

	// LogInterval is the period, in frames, at which Tick reports true.
	// Zero selects the default of 60.
	LogInterval uint64

	lastTime time.Time
}

func (t *FrameTimes) observe(d time.Duration) {
	t.Delta = d
	if d > t.MaxDuration {
		t.MaxDuration = d
	}

	// Seed the average directly until the window has partially filled;
	// the weighted form would otherwise take ages to leave zero.
	if t.FrameCount < statsWindow/2 {
		t.AverageDuration = d
		return
	}
	t.AverageDuration = ((statsWindow-1)*t.AverageDuration + d) / statsWindow
}

func (t *FrameTimes) FPS() float64 {
	return 1.0 / t.AverageDuration.Seconds()
}

// Tick records the start of a new frame and reports true once per
// LogInterval frames, which callers can use to throttle stats output.
func (t *FrameTimes) Tick() bool {
	now := time.Now()
	if !t.lastTime.IsZero() {
		t.observe(now.Sub(t.lastTime))
	}
	t.lastTime = now
	t.FrameCount++

	interval := t.LogInterval
	if interval == 0 {
		interval = 60
	}
	return t.FrameCount%interval == 0
}
