// Package pace paces CPU-side frame recording against asynchronous GPU
// completion. It keeps a small ring of per-frame recording resources tied
// to the swap chain's back buffers and uses a single fence timeline to
// guarantee that nothing is reused before the GPU is done with it.
//
// The package is written against the small collaborator interfaces below.
// A wgpu-backed implementation lives in the wgpud package; tests run the
// engine against in-memory fakes.
package pace

import "time"

// Device creates the per-frame recording resources and the fence.
// The device is assumed to be fully initialized; adapter selection and
// debug layers are the caller's concern.
type Device interface {
	NewCommandAllocator() (CommandAllocator, error)
	NewCommandList(alloc CommandAllocator) (CommandList, error)
	NewFence() (Fence, error)

	// Queue returns the single submission queue. All command lists and
	// all fence signals in this design go through this one queue.
	Queue() Queue
}

// Queue is the single GPU submission queue.
type Queue interface {
	// Submit hands a closed command list to the GPU for execution.
	Submit(list CommandList) error

	// Signal asks the GPU to mark the fence with value once all work
	// submitted before this call has completed.
	Signal(f Fence, value uint64) error
}

// Fence is the GPU-observable completion counter. The completed value is
// owned by the GPU and only ever increases. One thread signals (through
// Queue.Signal), any number of threads may wait.
type Fence interface {
	// Completed returns the last value the GPU has reached.
	Completed() uint64

	// Wait blocks until Completed() >= value. A non-positive timeout
	// blocks indefinitely; otherwise ErrWaitTimeout is returned when the
	// timeout elapses first.
	Wait(value uint64, timeout time.Duration) error

	Destroy()
}

// CommandAllocator is the backing storage commands are recorded into.
// It must not be reset while the GPU may still be reading from it; the
// engine enforces this with the slot watermark.
type CommandAllocator interface {
	Reset() error
	Destroy()
}

// CommandList records one frame's worth of commands. Reset opens it for
// recording against an allocator, Close makes it submittable.
type CommandList interface {
	Reset(alloc CommandAllocator) error

	// Transition records a resource barrier moving buf between logical
	// states. Ordering of transitions is validated by the engine before
	// this is called.
	Transition(buf Buffer, from, to BufferState)

	Close() error
	Destroy()
}

// Buffer is one of the swap chain's back buffers. The swap chain owns the
// buffer; the engine only holds references that are dropped and rebound
// around a resize.
type Buffer interface {
	// Size returns the buffer dimensions in pixels.
	Size() (width, height uint32)
}

// SwapChain presents finished buffers to the display.
type SwapChain interface {
	BufferCount() int

	// CurrentIndex reports which buffer the swap chain designates as the
	// next render target. The mapping from present count to index is a
	// backend policy; callers must not assume it increments sequentially.
	CurrentIndex() (int, error)

	Buffer(index int) (Buffer, error)

	// Present shows the current buffer. syncInterval 1 waits for vblank,
	// 0 presents immediately. allowTearing may only be set when the swap
	// chain reported tearing support and syncInterval is 0.
	Present(syncInterval int, allowTearing bool) error

	// Resize drops and recreates the buffer set at the new dimensions.
	// No GPU work may reference the old buffers when this is called.
	Resize(width, height uint32) error

	// AllowsTearing reports the tearing capability detected at startup.
	AllowsTearing() bool

	Size() (width, height uint32)
}

// ViewRegistry maintains the per-buffer render-target views. Views are
// recreated whenever buffers are rebound, and released before the swap
// chain destroys its buffer set.
type ViewRegistry interface {
	CreateView(index int, buf Buffer) error
	ReleaseViews()
}
