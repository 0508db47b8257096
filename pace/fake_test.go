package pace

import (
	"errors"
	"fmt"
	"time"
)

// The fakes below model the GPU as a passive consumer whose progress is
// advanced explicitly by the test (or automatically on wait, which
// models an infinitely fast GPU). They record every interaction so tests
// can assert ordering properties.

type fakeGPU struct {
	completed uint64
	signaled  []uint64

	// autoComplete makes blocking waits succeed immediately, as if the
	// GPU had already finished. When false, a blocking wait with no
	// timeout is a test failure (it would hang a real thread).
	autoComplete bool

	// blockedWaits records the values that were not complete when the
	// wait was issued.
	blockedWaits []uint64

	// inFlight maps an allocator to the fence value covering its last
	// submitted recording.
	inFlight map[*fakeAllocator]uint64

	// submittedSinceSignal collects allocators whose lists were
	// submitted after the previous Signal call.
	submittedSinceSignal []*fakeAllocator

	violations []string
}

func newFakeGPU() *fakeGPU {
	return &fakeGPU{
		autoComplete: true,
		inFlight:     map[*fakeAllocator]uint64{},
	}
}

// complete advances the GPU to value.
func (g *fakeGPU) complete(value uint64) {
	if value > g.completed {
		g.completed = value
	}
}

func (g *fakeGPU) violatef(format string, args ...any) {
	g.violations = append(g.violations, fmt.Sprintf(format, args...))
}

type fakeDevice struct {
	gpu   *fakeGPU
	queue *fakeQueue
}

func newFakeDevice() *fakeDevice {
	gpu := newFakeGPU()
	return &fakeDevice{gpu: gpu, queue: &fakeQueue{gpu: gpu}}
}

func (d *fakeDevice) NewCommandAllocator() (CommandAllocator, error) {
	return &fakeAllocator{gpu: d.gpu}, nil
}

func (d *fakeDevice) NewCommandList(alloc CommandAllocator) (CommandList, error) {
	return &fakeList{gpu: d.gpu, alloc: alloc.(*fakeAllocator), closed: true}, nil
}

func (d *fakeDevice) NewFence() (Fence, error) {
	return &fakeFence{gpu: d.gpu}, nil
}

func (d *fakeDevice) Queue() Queue {
	return d.queue
}

type fakeQueue struct {
	gpu       *fakeGPU
	submitErr error
	signalErr error
}

func (q *fakeQueue) Submit(list CommandList) error {
	if q.submitErr != nil {
		return q.submitErr
	}
	fl := list.(*fakeList)
	if !fl.closed {
		q.gpu.violatef("submitted an open command list")
	}
	q.gpu.submittedSinceSignal = append(q.gpu.submittedSinceSignal, fl.alloc)
	return nil
}

func (q *fakeQueue) Signal(f Fence, value uint64) error {
	if q.signalErr != nil {
		return q.signalErr
	}
	if n := len(q.gpu.signaled); n > 0 && value != q.gpu.signaled[n-1]+1 {
		q.gpu.violatef("signal %d after %d, want +1 steps", value, q.gpu.signaled[n-1])
	}
	q.gpu.signaled = append(q.gpu.signaled, value)
	for _, alloc := range q.gpu.submittedSinceSignal {
		q.gpu.inFlight[alloc] = value
	}
	q.gpu.submittedSinceSignal = nil
	return nil
}

type fakeFence struct {
	gpu *fakeGPU
}

func (f *fakeFence) Completed() uint64 {
	return f.gpu.completed
}

func (f *fakeFence) Wait(value uint64, timeout time.Duration) error {
	if f.gpu.completed >= value {
		return nil
	}
	f.gpu.blockedWaits = append(f.gpu.blockedWaits, value)
	if f.gpu.autoComplete {
		f.gpu.complete(value)
		return nil
	}
	if timeout > 0 {
		return ErrWaitTimeout
	}
	f.gpu.violatef("wait for %d would block forever (completed %d)", value, f.gpu.completed)
	return errors.New("fake: blocked")
}

func (f *fakeFence) Destroy() {}

type fakeAllocator struct {
	gpu    *fakeGPU
	resets int
}

func (a *fakeAllocator) Reset() error {
	if value, ok := a.gpu.inFlight[a]; ok && a.gpu.completed < value {
		a.gpu.violatef("allocator reset while GPU at %d, needs %d", a.gpu.completed, value)
	}
	a.resets++
	return nil
}

func (a *fakeAllocator) Destroy() {}

type transition struct {
	buf      Buffer
	from, to BufferState
}

type fakeList struct {
	gpu    *fakeGPU
	alloc  *fakeAllocator
	closed bool

	transitions []transition
	closeErr    error
	resetErr    error
}

func (l *fakeList) Reset(alloc CommandAllocator) error {
	if l.resetErr != nil {
		return l.resetErr
	}
	l.alloc = alloc.(*fakeAllocator)
	l.closed = false
	l.transitions = nil
	return nil
}

func (l *fakeList) Transition(buf Buffer, from, to BufferState) {
	if l.closed {
		l.gpu.violatef("transition recorded into a closed list")
	}
	l.transitions = append(l.transitions, transition{buf, from, to})
}

func (l *fakeList) Close() error {
	if l.closeErr != nil {
		return l.closeErr
	}
	l.closed = true
	return nil
}

func (l *fakeList) Destroy() {}

type fakeBuffer struct {
	index         int
	width, height uint32
}

func (b *fakeBuffer) Size() (uint32, uint32) {
	return b.width, b.height
}

type presentCall struct {
	syncInterval int
	tearing      bool
}

type fakeSwapChain struct {
	gpu     *fakeGPU
	buffers []*fakeBuffer
	current int
	tearing bool

	presents []presentCall
	resizes  int

	// nextIndex decides the buffer index after each present. Defaults
	// to sequential; tests override it to model flip-policy reordering.
	nextIndex func(current, presents int) int

	presentErr error
	resizeErr  error
}

func newFakeSwapChain(gpu *fakeGPU, count int, w, h uint32) *fakeSwapChain {
	sc := &fakeSwapChain{gpu: gpu}
	sc.makeBuffers(count, w, h)
	return sc
}

func (sc *fakeSwapChain) makeBuffers(count int, w, h uint32) {
	sc.buffers = make([]*fakeBuffer, count)
	for i := range sc.buffers {
		sc.buffers[i] = &fakeBuffer{index: i, width: w, height: h}
	}
}

func (sc *fakeSwapChain) BufferCount() int {
	return len(sc.buffers)
}

func (sc *fakeSwapChain) CurrentIndex() (int, error) {
	return sc.current, nil
}

func (sc *fakeSwapChain) Buffer(index int) (Buffer, error) {
	return sc.buffers[index], nil
}

func (sc *fakeSwapChain) Present(syncInterval int, allowTearing bool) error {
	if sc.presentErr != nil {
		return sc.presentErr
	}
	if allowTearing && !sc.tearing {
		sc.gpu.violatef("tearing present without tearing support")
	}
	sc.presents = append(sc.presents, presentCall{syncInterval, allowTearing})
	if sc.nextIndex != nil {
		sc.current = sc.nextIndex(sc.current, len(sc.presents))
	} else {
		sc.current = (sc.current + 1) % len(sc.buffers)
	}
	return nil
}

func (sc *fakeSwapChain) Resize(w, h uint32) error {
	if sc.resizeErr != nil {
		return sc.resizeErr
	}
	if n := len(sc.gpu.signaled); n > 0 && sc.gpu.completed < sc.gpu.signaled[n-1] {
		sc.gpu.violatef("resize while GPU at %d, last signal %d", sc.gpu.completed, sc.gpu.signaled[n-1])
	}
	sc.resizes++
	sc.makeBuffers(len(sc.buffers), w, h)
	sc.current = 0
	return nil
}

func (sc *fakeSwapChain) AllowsTearing() bool {
	return sc.tearing
}

func (sc *fakeSwapChain) Size() (uint32, uint32) {
	return sc.buffers[0].width, sc.buffers[0].height
}

type viewCall struct {
	index int
	buf   Buffer
}

type fakeViews struct {
	created  []viewCall
	releases int
}

func (v *fakeViews) CreateView(index int, buf Buffer) error {
	v.created = append(v.created, viewCall{index, buf})
	return nil
}

func (v *fakeViews) ReleaseViews() {
	v.releases++
}
