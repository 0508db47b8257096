package shell

import "github.com/oliverbestmann/webgpu/wgpu"

// Key identifies the few keys the presentation shell cares about.
// Everything else is delivered as KeyUnknown.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyV
	KeyF11
)

// Window is the surface the engine presents into. It delivers resize
// requests and drives the per-frame render callback; fullscreen
// toggling is handled here because it is a window-style concern and
// needs no fence interaction.
type Window interface {
	GetSize() (uint32, uint32)
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// OnResize registers the callback invoked when the framebuffer
	// size changes.
	OnResize(fn func(width, height uint32))

	// OnKey registers the callback invoked on key presses. Escape and
	// the fullscreen toggles are consumed by the window itself.
	OnKey(fn func(key Key))

	ToggleFullscreen()

	Run(render func() error) error
	Terminate()
}
