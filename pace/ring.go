package pace

import "fmt"

// Slot bundles the reusable per-frame resources: the command allocator,
// a reference to the back buffer the slot currently owns, and the fence
// value that must complete before either may be touched again.
type Slot struct {
	Index int

	allocator CommandAllocator
	buffer    Buffer
	state     BufferState
	watermark uint64
}

// Buffer returns the back buffer currently bound to the slot. It is nil
// between the release and rebind steps of a resize.
func (s *Slot) Buffer() Buffer {
	return s.buffer
}

// Watermark returns the fence value gating reuse of the slot.
func (s *Slot) Watermark() uint64 {
	return s.watermark
}

// Ring owns the N frame slots and the active slot index. The index is
// whatever the swap chain reports, never a simple increment.
type Ring struct {
	timeline *Timeline
	slots    []Slot
	current  int
}

// NewRing creates count slots with fresh allocators. Watermarks start at
// zero: no initial wait is required.
func NewRing(dev Device, timeline *Timeline, count int) (*Ring, error) {
	if count < 2 {
		return nil, fmt.Errorf("frame ring needs at least 2 slots, got %d", count)
	}

	r := &Ring{
		timeline: timeline,
		slots:    make([]Slot, count),
	}

	for i := range r.slots {
		alloc, err := dev.NewCommandAllocator()
		if err != nil {
			return nil, fmt.Errorf("create allocator for slot %d: %w", i, err)
		}
		r.slots[i] = Slot{Index: i, allocator: alloc}
	}

	return r, nil
}

// Count returns the number of slots.
func (r *Ring) Count() int {
	return len(r.slots)
}

// Slot returns the slot at index. It does not wait.
func (r *Ring) Slot(index int) *Slot {
	return &r.slots[index]
}

// CurrentIndex returns the active slot index.
func (r *Ring) CurrentIndex() int {
	return r.current
}

// SetCurrent records the slot index the swap chain designated as the
// next render target.
func (r *Ring) SetCurrent(index int) {
	r.current = index
}

// PrepareForReuse waits for the slot's watermark and resets its
// allocator. This is the only blocking point in the steady-state loop,
// and it blocks only when the CPU has run more than N-1 frames ahead.
func (r *Ring) PrepareForReuse(s *Slot) error {
	if err := r.timeline.WaitUntil(s.watermark, 0); err != nil {
		return fmt.Errorf("wait for slot %d at %d: %w", s.Index, s.watermark, err)
	}
	if err := s.allocator.Reset(); err != nil {
		return fmt.Errorf("reset allocator for slot %d: %w", s.Index, err)
	}
	return nil
}

// MarkSubmitted records the fence value that must complete before the
// slot may be reused. Call it right after the frame's submit and signal.
func (r *Ring) MarkSubmitted(s *Slot, value uint64) {
	s.watermark = value
}

// Destroy releases all slot allocators. The timeline must be drained
// first.
func (r *Ring) Destroy() {
	for i := range r.slots {
		r.slots[i].allocator.Destroy()
	}
}
