//go:build !js

package shell

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/oliverbestmann/webgpu/wgpu"
	"github.com/oliverbestmann/webgpu/wgpuglfw"
	"github.com/pkg/profile"
)

type glfwWindow struct {
	win  *glfw.Window
	prof interface{ Stop() }

	onResize func(width, height uint32)
	onKey    func(key Key)

	// windowed geometry saved across a fullscreen toggle
	restoreX, restoreY int
	restoreW, restoreH int
	fullscreen         bool
}

func NewWindow(width, height int, title string) (Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	w := &glfwWindow{
		win:  window,
		prof: profile.Start(profile.CPUProfile),
	}

	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if w.onResize != nil {
			w.onResize(uint32(width), uint32(height))
		}
	})

	window.SetKeyCallback(func(_ *glfw.Window, glfwKey glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}

		switch {
		case glfwKey == glfw.KeyEscape:
			window.SetShouldClose(true)
		case glfwKey == glfw.KeyF11,
			glfwKey == glfw.KeyEnter && mods&glfw.ModAlt != 0:
			w.ToggleFullscreen()
		default:
			if w.onKey != nil {
				w.onKey(keyOf(glfwKey))
			}
		}
	})

	return w, nil
}

func (g *glfwWindow) GetSize() (uint32, uint32) {
	width, height := g.win.GetFramebufferSize()
	return uint32(width), uint32(height)
}

func (g *glfwWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(g.win)
}

func (g *glfwWindow) OnResize(fn func(width, height uint32)) {
	g.onResize = fn
}

func (g *glfwWindow) OnKey(fn func(key Key)) {
	g.onKey = fn
}

// ToggleFullscreen switches between windowed mode and borderless
// fullscreen on the primary monitor, restoring the windowed geometry on
// the way back.
func (g *glfwWindow) ToggleFullscreen() {
	if g.fullscreen {
		g.win.SetMonitor(nil, g.restoreX, g.restoreY, g.restoreW, g.restoreH, glfw.DontCare)
		g.fullscreen = false
		return
	}

	g.restoreX, g.restoreY = g.win.GetPos()
	g.restoreW, g.restoreH = g.win.GetSize()

	monitor := monitorFor(g.win)
	mode := monitor.GetVideoMode()
	g.win.SetMonitor(monitor, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
	g.fullscreen = true

	slog.Debug("Fullscreen toggled",
		slog.Int("width", mode.Width),
		slog.Int("height", mode.Height),
	)
}

func (g *glfwWindow) Terminate() {
	g.prof.Stop()
	g.win.Destroy()
	glfw.Terminate()
}

func (g *glfwWindow) Run(render func() error) error {
	for !g.win.ShouldClose() {
		glfw.PollEvents()

		if err := render(); err != nil {
			return err
		}
	}

	return nil
}

// monitorFor returns the monitor containing the window's center, so a
// fullscreen toggle lands on the display the window is actually on.
func monitorFor(win *glfw.Window) *glfw.Monitor {
	wx, wy := win.GetPos()
	ww, wh := win.GetSize()
	cx, cy := wx+ww/2, wy+wh/2

	for _, monitor := range glfw.GetMonitors() {
		mx, my := monitor.GetPos()
		mode := monitor.GetVideoMode()
		if cx >= mx && cx < mx+mode.Width && cy >= my && cy < my+mode.Height {
			return monitor
		}
	}
	return glfw.GetPrimaryMonitor()
}

func keyOf(glfwKey glfw.Key) Key {
	switch glfwKey {
	case glfw.KeyV:
		return KeyV
	case glfw.KeyF11:
		return KeyF11
	default:
		return KeyUnknown
	}
}
