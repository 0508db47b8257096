package wgpud

import (
	"fmt"

	"github.com/oliverbestmann/webgpu/wgpu"

	"github.com/pacegfx/framepace/pace"
)

// Allocator is the backing storage for one frame slot's recording. In
// wgpu terms that is a command encoder: Reset throws the old one away
// and starts a fresh one, which must only happen once the GPU is done
// with the commands it backed.
type Allocator struct {
	dev *wgpu.Device
	enc *wgpu.CommandEncoder
}

func (a *Allocator) Reset() error {
	if a.enc != nil {
		a.enc.Release()
		a.enc = nil
	}

	enc, err := a.dev.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: "FrameCommands",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}

	a.enc = enc
	return nil
}

func (a *Allocator) Destroy() {
	if a.enc != nil {
		a.enc.Release()
		a.enc = nil
	}
}

// CommandList records against the active slot's allocator. Close
// finishes the encoder into a submittable command buffer.
type CommandList struct {
	alloc *Allocator
	buf   *wgpu.CommandBuffer
}

func (cl *CommandList) Reset(alloc pace.CommandAllocator) error {
	cl.alloc = alloc.(*Allocator)
	if cl.buf != nil {
		cl.buf.Release()
		cl.buf = nil
	}
	if cl.alloc.enc == nil {
		return fmt.Errorf("reset: allocator has no encoder, reset it first")
	}
	return nil
}

// Encoder exposes the wgpu command encoder for the current frame's
// recording callback.
func (cl *CommandList) Encoder() *wgpu.CommandEncoder {
	return cl.alloc.enc
}

func (cl *CommandList) Transition(buf pace.Buffer, from, to pace.BufferState) {
	// wgpu derives barriers from declared usage, so the state change
	// needs no recorded command here. The ordering was validated by the
	// engine before this call.
}

func (cl *CommandList) Close() error {
	buf, err := cl.alloc.enc.Finish(&wgpu.CommandBufferDescriptor{
		Label: "FrameCommands",
	})
	if err != nil {
		return fmt.Errorf("finish command encoder: %w", err)
	}

	// The encoder is consumed by Finish; the allocator keeps only the
	// backing storage alive until its next Reset.
	cl.buf = buf
	return nil
}

// take hands the closed command buffer to the queue.
func (cl *CommandList) take() *wgpu.CommandBuffer {
	buf := cl.buf
	cl.buf = nil
	return buf
}

func (cl *CommandList) Destroy() {
	if cl.buf != nil {
		cl.buf.Release()
		cl.buf = nil
	}
}
