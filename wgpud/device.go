// Package wgpud backs the pace collaborator interfaces with webgpu.
// wgpu has no user-visible fence values, so the fence timeline is derived
// from submission indices: a signal pairs the queue's last submission
// with the fence value and completion is observed by polling the device.
package wgpud

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/oliverbestmann/webgpu/wgpu"

	"github.com/pacegfx/framepace/pace"
)

var forceFallbackAdapter = os.Getenv("WGPU_FORCE_FALLBACK_ADAPTER") == "1"

func init() {
	runtime.LockOSThread()

	switch strings.ToUpper(os.Getenv("WGPU_LOG_LEVEL")) {
	case "OFF":
		wgpu.SetLogLevel(wgpu.LogLevelOff)
	case "ERROR":
		wgpu.SetLogLevel(wgpu.LogLevelError)
	case "WARN":
		wgpu.SetLogLevel(wgpu.LogLevelWarn)
	case "INFO":
		wgpu.SetLogLevel(wgpu.LogLevelInfo)
	case "DEBUG":
		wgpu.SetLogLevel(wgpu.LogLevelDebug)
	case "TRACE":
		wgpu.SetLogLevel(wgpu.LogLevelTrace)
	}
}

// Context encapsulates the low level state of the webgpu context: the
// device, surface and active adapter. It implements pace.Device.
type Context struct {
	device  *wgpu.Device
	adapter *wgpu.Adapter
	surface *wgpu.Surface
	queue   *queue
}

func New(sd *wgpu.SurfaceDescriptor) (ctx *Context, err error) {
	defer func() {
		if err != nil && ctx != nil {
			ctx.Release()
			ctx = nil
		}
	}()

	ctx = &Context{}

	// create the webgpu instance
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	// create a surface based on the window
	ctx.surface = instance.CreateSurface(sd)

	// create an adapter that can render to the surface
	ctx.adapter, err = instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    ctx.surface,
	})

	if err != nil {
		return
	}

	// get a device with the default settings
	ctx.device, err = ctx.adapter.RequestDevice(nil)
	if err != nil {
		return
	}

	ctx.queue = &queue{ctx: ctx, wq: ctx.device.GetQueue()}

	return ctx, nil
}

// Device exposes the raw wgpu device for pipeline and buffer creation.
func (c *Context) Device() *wgpu.Device {
	return c.device
}

// Surface exposes the raw wgpu surface.
func (c *Context) Surface() *wgpu.Surface {
	return c.surface
}

func (c *Context) Queue() pace.Queue {
	return c.queue
}

func (c *Context) NewCommandAllocator() (pace.CommandAllocator, error) {
	return &Allocator{dev: c.device}, nil
}

func (c *Context) NewCommandList(alloc pace.CommandAllocator) (pace.CommandList, error) {
	return &CommandList{alloc: alloc.(*Allocator)}, nil
}

func (c *Context) NewFence() (pace.Fence, error) {
	return newFence(c), nil
}

func (c *Context) Release() {
	if c.queue != nil {
		c.queue.wq.Release()
		c.queue = nil
	}

	if c.device != nil {
		c.device.Release()
		c.device = nil
	}

	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}

	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
}

// queue wraps the wgpu queue and remembers the submission index of the
// last submit so a following Signal can bind a fence value to it.
type queue struct {
	ctx *Context
	wq  *wgpu.Queue

	last    wgpu.SubmissionIndex
	hasLast bool
}

func (q *queue) Submit(list pace.CommandList) error {
	cl, ok := list.(*CommandList)
	if !ok {
		return fmt.Errorf("submit: foreign command list %T", list)
	}
	buf := cl.take()
	if buf == nil {
		return fmt.Errorf("submit: command list is not closed")
	}

	q.last = q.wq.Submit(buf)
	q.hasLast = true
	buf.Release()

	return nil
}

func (q *queue) Signal(f pace.Fence, value uint64) error {
	fence, ok := f.(*Fence)
	if !ok {
		return fmt.Errorf("signal: foreign fence %T", f)
	}
	fence.signal(value, q.last, q.hasLast)
	return nil
}
