package pace

import (
	"errors"
	"fmt"
	"log/slog"
)

// RecordFunc emits one frame's worth of draw or compute work into list.
// The engine has already opened the list and moved frame's buffer into
// the render-target state; the callback must not transition it again.
type RecordFunc func(list CommandList, frame Frame) error

// Frame describes the slot the current tick is recording into.
type Frame struct {
	Slot   int
	Buffer Buffer
}

// Config carries the injected collaborators and initial settings for an
// Engine.
type Config struct {
	Device    Device
	SwapChain SwapChain
	Views     ViewRegistry

	// FrameCount is the number of frame slots. Must match the number of
	// buffers the swap chain was created with. Zero means use the swap
	// chain's buffer count.
	FrameCount int

	// VSync selects the initial present sync interval.
	VSync bool
}

// Engine drives the per-frame cycle: acquire slot, wait for readiness,
// record with correct state transitions, submit, signal, present,
// advance. A single CPU thread calls FrameTick and Resize; the GPU is
// observed only through the fence timeline.
type Engine struct {
	dev   Device
	sc    SwapChain
	views ViewRegistry

	timeline *Timeline
	ring     *Ring
	list     CommandList

	vsync   bool
	tearing bool

	times FrameTimes
}

// New builds an Engine from cfg, creating the fence timeline, the frame
// ring and one command list, and binding every slot to its back buffer.
func New(cfg Config) (*Engine, error) {
	count := cfg.FrameCount
	if count == 0 {
		count = cfg.SwapChain.BufferCount()
	}
	if count != cfg.SwapChain.BufferCount() {
		return nil, fmt.Errorf("frame count %d does not match swap chain buffer count %d",
			count, cfg.SwapChain.BufferCount())
	}

	timeline, err := NewTimeline(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("create timeline: %w", err)
	}

	ring, err := NewRing(cfg.Device, timeline, count)
	if err != nil {
		return nil, fmt.Errorf("create frame ring: %w", err)
	}

	e := &Engine{
		dev:      cfg.Device,
		sc:       cfg.SwapChain,
		views:    cfg.Views,
		timeline: timeline,
		ring:     ring,
		vsync:    cfg.VSync,
		tearing:  cfg.SwapChain.AllowsTearing(),
	}

	if err := e.bindBuffers(); err != nil {
		return nil, err
	}

	// One list is enough: it is reset against the active slot's
	// allocator each tick, and the allocator is what must survive until
	// the GPU is done.
	slot := ring.Slot(ring.CurrentIndex())
	e.list, err = cfg.Device.NewCommandList(slot.allocator)
	if err != nil {
		return nil, fmt.Errorf("create command list: %w", err)
	}

	w, h := cfg.SwapChain.Size()
	slog.Info("Presentation engine ready",
		slog.Int("frames", count),
		slog.Int("width", int(w)),
		slog.Int("height", int(h)),
		slog.Bool("vsync", e.vsync),
		slog.Bool("tearing", e.tearing),
	)

	return e, nil
}

// bindBuffers points every slot at its swap chain buffer and recreates
// the per-buffer views. Used at startup and after a resize.
func (e *Engine) bindBuffers() error {
	for i := 0; i < e.ring.Count(); i++ {
		buf, err := e.sc.Buffer(i)
		if err != nil {
			return fmt.Errorf("query buffer %d: %w", i, err)
		}
		slot := e.ring.Slot(i)
		slot.buffer = buf
		slot.state = StatePresentable

		if e.views != nil {
			if err := e.views.CreateView(i, buf); err != nil {
				return fmt.Errorf("create view for buffer %d: %w", i, err)
			}
		}
	}

	current, err := e.sc.CurrentIndex()
	if err != nil {
		return fmt.Errorf("query current buffer index: %w", err)
	}
	e.ring.SetCurrent(current)

	return nil
}

// FrameTick runs one full frame cycle. Any returned error is fatal for
// the loop: the engine does not retry, the caller decides whether to
// recreate the device.
func (e *Engine) FrameTick(record RecordFunc) error {
	slot := e.ring.Slot(e.ring.CurrentIndex())

	// Usually returns immediately: the post-present wait at the end of
	// the previous tick already covered this slot's watermark.
	if err := e.ring.PrepareForReuse(slot); err != nil {
		return err
	}
	if err := e.list.Reset(slot.allocator); err != nil {
		return fmt.Errorf("%w: reset list for slot %d: %v", ErrRecording, slot.Index, err)
	}

	slot.transitionTo(e.list, StateRenderTarget)

	if err := record(e.list, Frame{Slot: slot.Index, Buffer: slot.buffer}); err != nil {
		return fmt.Errorf("%w: %v", ErrRecording, err)
	}

	slot.transitionTo(e.list, StatePresentable)

	if err := e.list.Close(); err != nil {
		return fmt.Errorf("%w: close list for slot %d: %v", ErrRecording, slot.Index, err)
	}

	queue := e.dev.Queue()
	if err := queue.Submit(e.list); err != nil {
		return fmt.Errorf("%w: submit slot %d: %v", ErrDeviceLost, slot.Index, err)
	}

	value, err := e.timeline.Signal()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceLost, err)
	}
	e.ring.MarkSubmitted(slot, value)

	syncInterval := 0
	if e.vsync {
		syncInterval = 1
	}
	if err := e.sc.Present(syncInterval, e.tearing && !e.vsync); err != nil {
		return fmt.Errorf("%w: present slot %d: %v", ErrDeviceLost, slot.Index, err)
	}

	next, err := e.sc.CurrentIndex()
	if err != nil {
		return fmt.Errorf("%w: query next buffer index: %v", ErrDeviceLost, err)
	}
	e.ring.SetCurrent(next)

	// Wait here rather than at the top of the next tick. This gives up
	// one frame of CPU/GPU overlap but means the next PrepareForReuse is
	// known non-blocking once the ring has filled.
	if err := e.timeline.WaitUntil(e.ring.Slot(next).watermark, 0); err != nil {
		return err
	}

	e.times.Tick()

	return nil
}

// SetVSync switches the present sync interval for subsequent ticks.
func (e *Engine) SetVSync(on bool) {
	if e.vsync == on {
		return
	}
	e.vsync = on
	slog.Debug("VSync changed", slog.Bool("vsync", on))
}

// VSync reports whether presents wait for vblank.
func (e *Engine) VSync() bool {
	return e.vsync
}

// Times exposes the frame timing statistics updated by FrameTick.
func (e *Engine) Times() *FrameTimes {
	return &e.times
}

// Timeline exposes the engine's fence timeline.
func (e *Engine) Timeline() *Timeline {
	return e.timeline
}

// Destroy drains the GPU and releases everything the engine owns. The
// swap chain and device belong to the caller.
func (e *Engine) Destroy() error {
	if err := e.timeline.Flush(); err != nil && !errors.Is(err, ErrWaitTimeout) {
		return fmt.Errorf("drain before destroy: %w", err)
	}
	if e.views != nil {
		e.views.ReleaseViews()
	}
	e.list.Destroy()
	e.ring.Destroy()
	e.timeline.Destroy()
	return nil
}
