package wgpud

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/oliverbestmann/webgpu/wgpu"

	"github.com/pacegfx/framepace/pace"
)

type signalJob struct {
	value uint64
	index wgpu.SubmissionIndex

	// poll is false when the signal was issued before any submission;
	// such a value completes immediately.
	poll bool
}

// Fence implements pace.Fence over submission polling. A dedicated
// goroutine consumes signal jobs in order, blocks in Device.Poll until
// the paired submission has finished and then publishes the value.
// Jobs are consumed strictly in signal order, which keeps the observed
// completed value monotonic.
type Fence struct {
	ctx  *Context
	jobs chan signalJob

	completed atomic.Uint64

	mu   sync.Mutex
	done chan struct{}
}

func newFence(ctx *Context) *Fence {
	f := &Fence{
		ctx:  ctx,
		jobs: make(chan signalJob, 64),
		done: make(chan struct{}),
	}
	go f.poll()
	return f
}

func (f *Fence) poll() {
	for job := range f.jobs {
		if job.poll {
			index := uint64(job.index)
			f.ctx.device.Poll(true, &index)
		}
		f.complete(job.value)
	}
}

func (f *Fence) signal(value uint64, index wgpu.SubmissionIndex, poll bool) {
	f.jobs <- signalJob{value: value, index: index, poll: poll}
}

func (f *Fence) complete(value uint64) {
	f.mu.Lock()
	if value > f.completed.Load() {
		f.completed.Store(value)
	}
	close(f.done)
	f.done = make(chan struct{})
	f.mu.Unlock()
}

func (f *Fence) Completed() uint64 {
	return f.completed.Load()
}

func (f *Fence) Wait(value uint64, timeout time.Duration) error {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		if f.completed.Load() >= value {
			return nil
		}

		f.mu.Lock()
		done := f.done
		f.mu.Unlock()

		// Re-check after grabbing the channel: completion may have
		// landed in between.
		if f.completed.Load() >= value {
			return nil
		}

		select {
		case <-done:
		case <-expired:
			return pace.ErrWaitTimeout
		}
	}
}

func (f *Fence) Destroy() {
	close(f.jobs)
}
