package pace

import "fmt"

//go:generate go tool stringer -type=BufferState -trimprefix=State

// BufferState is the logical usage state of a back buffer. Every frame
// must move its buffer StatePresentable -> StateRenderTarget before any
// draw or clear work and back before present. Getting the order wrong is
// a programming error, not a runtime condition, so transitions panic
// instead of returning an error.
type BufferState uint8

const (
	StatePresentable BufferState = iota
	StateRenderTarget
)

// transitionTo validates the state change for slot s and records the
// matching barrier into list.
func (s *Slot) transitionTo(list CommandList, to BufferState) {
	from := s.state
	if from == to {
		panic(fmt.Sprintf("pace: slot %d: double transition to %v", s.Index, to))
	}
	s.state = to
	list.Transition(s.buffer, from, to)
}
