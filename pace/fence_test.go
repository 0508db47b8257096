package pace

import (
	"errors"
	"testing"
	"time"
)

func TestTimelineSignalIncrementsByOne(t *testing.T) {
	dev := newFakeDevice()
	tl, err := NewTimeline(dev)
	if err != nil {
		t.Fatal(err)
	}

	for want := uint64(1); want <= 5; want++ {
		got, err := tl.Signal()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("Signal() = %d, want %d", got, want)
		}
	}

	for i := 1; i < len(dev.gpu.signaled); i++ {
		if dev.gpu.signaled[i] != dev.gpu.signaled[i-1]+1 {
			t.Errorf("signaled values %v are not +1 steps", dev.gpu.signaled)
		}
	}
}

func TestTimelineWaitFastPath(t *testing.T) {
	dev := newFakeDevice()
	dev.gpu.autoComplete = false
	tl, err := NewTimeline(dev)
	if err != nil {
		t.Fatal(err)
	}

	v, err := tl.Signal()
	if err != nil {
		t.Fatal(err)
	}
	dev.gpu.complete(v)

	// Already complete: must not touch the blocking path.
	if err := tl.WaitUntil(v, 0); err != nil {
		t.Fatalf("WaitUntil(%d) = %v, want nil", v, err)
	}
	if len(dev.gpu.blockedWaits) != 0 {
		t.Errorf("fast-path wait blocked: %v", dev.gpu.blockedWaits)
	}

	// Waiting for zero never blocks, even on a fresh timeline.
	if err := tl.WaitUntil(0, 0); err != nil {
		t.Fatalf("WaitUntil(0) = %v, want nil", err)
	}
}

func TestTimelineWaitTimeout(t *testing.T) {
	dev := newFakeDevice()
	dev.gpu.autoComplete = false
	tl, err := NewTimeline(dev)
	if err != nil {
		t.Fatal(err)
	}

	v, err := tl.Signal()
	if err != nil {
		t.Fatal(err)
	}

	err = tl.WaitUntil(v, time.Millisecond)
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("WaitUntil(%d, 1ms) = %v, want ErrWaitTimeout", v, err)
	}

	// A value once observed complete stays complete.
	dev.gpu.complete(v)
	for i := 0; i < 3; i++ {
		if err := tl.WaitUntil(v, time.Millisecond); err != nil {
			t.Fatalf("repeat WaitUntil(%d) = %v, want nil", v, err)
		}
	}
}

func TestTimelineFlushDrains(t *testing.T) {
	dev := newFakeDevice()
	tl, err := NewTimeline(dev)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tl.Signal(); err != nil {
		t.Fatal(err)
	}

	if err := tl.Flush(); err != nil {
		t.Fatal(err)
	}

	// Flush signals one more value and waits for it.
	if got, want := tl.NextValue(), uint64(3); got != want {
		t.Errorf("NextValue() after flush = %d, want %d", got, want)
	}
	if got, want := tl.Completed(), uint64(2); got != want {
		t.Errorf("Completed() after flush = %d, want %d", got, want)
	}
}
