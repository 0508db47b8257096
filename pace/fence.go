package pace

import (
	"fmt"
	"time"
)

// Timeline is the single fence timeline shared by all frames. A single
// thread calls Signal; the GPU advances the completed value as submitted
// work finishes. Values handed out by Signal increase by exactly 1 per
// call, starting at 1.
type Timeline struct {
	queue Queue
	fence Fence
	next  uint64
}

// NewTimeline creates the fence on dev and binds it to the device's
// submission queue.
func NewTimeline(dev Device) (*Timeline, error) {
	fence, err := dev.NewFence()
	if err != nil {
		return nil, fmt.Errorf("create fence: %w", err)
	}

	return &Timeline{
		queue: dev.Queue(),
		fence: fence,
	}, nil
}

// Signal advances the timeline and asks the GPU to mark the new value
// once all previously submitted work completes.
func (t *Timeline) Signal() (uint64, error) {
	t.next++
	if err := t.queue.Signal(t.fence, t.next); err != nil {
		return 0, fmt.Errorf("signal fence at %d: %w", t.next, err)
	}
	return t.next, nil
}

// WaitUntil blocks the calling thread until the GPU has reached value.
// It returns immediately when the completed value already covers value.
// A non-positive timeout waits indefinitely.
func (t *Timeline) WaitUntil(value uint64, timeout time.Duration) error {
	if t.fence.Completed() >= value {
		return nil
	}
	return t.fence.Wait(value, timeout)
}

// Flush signals the timeline and waits for the signal to complete,
// draining all outstanding GPU work. This destroys pipelining; it is for
// teardown and resize, not the per-frame path.
func (t *Timeline) Flush() error {
	value, err := t.Signal()
	if err != nil {
		return err
	}
	return t.WaitUntil(value, 0)
}

// Completed returns the last fence value the GPU has reached.
func (t *Timeline) Completed() uint64 {
	return t.fence.Completed()
}

// NextValue returns the value the next Signal call will produce.
func (t *Timeline) NextValue() uint64 {
	return t.next + 1
}

// Destroy releases the underlying fence. The timeline must be drained
// first.
func (t *Timeline) Destroy() {
	t.fence.Destroy()
}
