package wgpud

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/oliverbestmann/webgpu/wgpu"

	"github.com/pacegfx/framepace/pace"
)

// SwapChain implements pace.SwapChain over a wgpu surface. The surface
// hands out one texture at a time, so the swap chain keeps N logical
// back buffers and binds the acquired texture to the buffer at the
// current index; the index advances sequentially, which is this
// backend's present policy.
type SwapChain struct {
	ctx    *Context
	config *wgpu.SurfaceConfiguration
	views  *ViewCache

	buffers  []*BackBuffer
	current  int
	acquired *wgpu.Texture

	modes       []wgpu.PresentMode
	tearing     bool
	reconfigure bool
}

func NewSwapChain(ctx *Context, width, height uint32, count int, views *ViewCache) (*SwapChain, error) {
	if count < 2 {
		return nil, fmt.Errorf("swap chain needs at least 2 buffers, got %d", count)
	}

	caps := ctx.surface.GetCapabilities(ctx.adapter)
	slog.Info("Available surface formats", slog.Any("formats", caps.Formats))
	slog.Info("Available present modes", slog.Any("modes", caps.PresentModes))

	sc := &SwapChain{
		ctx:     ctx,
		views:   views,
		modes:   caps.PresentModes,
		tearing: slices.Contains(caps.PresentModes, wgpu.PresentModeImmediate),
		config: &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      wgpu.TextureFormatBGRA8Unorm,
			PresentMode: wgpu.PresentModeFifo,
			AlphaMode:   caps.AlphaModes[0],
			Width:       width,
			Height:      height,

			// try to reduce input latency
			DesiredMaximumFrameLatency: 1,
		},
	}
	ctx.surface.Configure(ctx.device, sc.config)

	sc.buffers = make([]*BackBuffer, count)
	for i := range sc.buffers {
		sc.buffers[i] = &BackBuffer{sc: sc, index: i}
	}

	return sc, nil
}

func (sc *SwapChain) BufferCount() int {
	return len(sc.buffers)
}

// Format returns the configured surface format.
func (sc *SwapChain) Format() wgpu.TextureFormat {
	return sc.config.Format
}

func (sc *SwapChain) CurrentIndex() (int, error) {
	if sc.acquired == nil {
		if sc.reconfigure {
			sc.ctx.surface.Configure(sc.ctx.device, sc.config)
			sc.reconfigure = false
		}

		tex, err := sc.ctx.surface.GetCurrentTexture()
		if err != nil {
			return 0, fmt.Errorf("get current texture: %w", err)
		}
		sc.acquired = tex
		sc.buffers[sc.current].texture = tex
	}
	return sc.current, nil
}

func (sc *SwapChain) Buffer(index int) (pace.Buffer, error) {
	if index < 0 || index >= len(sc.buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", index)
	}
	return sc.buffers[index], nil
}

func (sc *SwapChain) Present(syncInterval int, allowTearing bool) error {
	if sc.acquired == nil {
		return fmt.Errorf("present without an acquired buffer")
	}

	desired := presentModeFor(sc.modes, syncInterval, allowTearing)
	if desired != sc.config.PresentMode {
		// Present mode is a surface configuration in wgpu; the change
		// takes effect before the next acquire.
		sc.config.PresentMode = desired
		sc.reconfigure = true
	}

	sc.ctx.surface.Present()

	sc.acquired.Release()
	sc.acquired = nil
	sc.buffers[sc.current].texture = nil
	sc.current = (sc.current + 1) % len(sc.buffers)

	return nil
}

// presentModeFor maps a sync interval onto a mode the surface actually
// supports. Fifo is the only mode every surface must offer; anything
// faster falls back to it when the capability list says no.
func presentModeFor(modes []wgpu.PresentMode, syncInterval int, allowTearing bool) wgpu.PresentMode {
	if syncInterval != 0 {
		return wgpu.PresentModeFifo
	}
	if allowTearing && slices.Contains(modes, wgpu.PresentModeImmediate) {
		return wgpu.PresentModeImmediate
	}
	if slices.Contains(modes, wgpu.PresentModeMailbox) {
		return wgpu.PresentModeMailbox
	}
	if slices.Contains(modes, wgpu.PresentModeImmediate) {
		return wgpu.PresentModeImmediate
	}
	return wgpu.PresentModeFifo
}

func (sc *SwapChain) Resize(width, height uint32) error {
	if sc.acquired != nil {
		sc.acquired.Release()
		sc.acquired = nil
		sc.buffers[sc.current].texture = nil
	}

	sc.config.Width = width
	sc.config.Height = height
	sc.ctx.surface.Configure(sc.ctx.device, sc.config)
	sc.reconfigure = false
	sc.current = 0

	return nil
}

func (sc *SwapChain) AllowsTearing() bool {
	return sc.tearing
}

func (sc *SwapChain) Size() (uint32, uint32) {
	return sc.config.Width, sc.config.Height
}

func (sc *SwapChain) Release() {
	if sc.acquired != nil {
		sc.acquired.Release()
		sc.acquired = nil
	}
}

// BackBuffer is one logical display buffer. Its texture is only bound
// while the buffer is the acquired render target for the current frame.
type BackBuffer struct {
	sc      *SwapChain
	index   int
	texture *wgpu.Texture
}

func (b *BackBuffer) Size() (uint32, uint32) {
	return b.sc.config.Width, b.sc.config.Height
}

// Texture returns the acquired surface texture, or nil outside the
// buffer's frame.
func (b *BackBuffer) Texture() *wgpu.Texture {
	return b.texture
}

// View returns the render-target view for the acquired texture.
func (b *BackBuffer) View() (*wgpu.TextureView, error) {
	if b.texture == nil {
		return nil, fmt.Errorf("buffer %d is not acquired", b.index)
	}
	return b.sc.views.viewFor(b.texture)
}
