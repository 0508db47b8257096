package pace

import (
	"fmt"
	"log/slog"
)

// Resize recreates the swap chain buffer set at the new dimensions.
// Calling it with the current size is a no-op: nothing is flushed and no
// buffer is released. Dimensions are clamped to at least 1x1.
//
// The GPU timeline is fully drained first; swap chain buffers cannot be
// released while submitted work may still reference them.
func (e *Engine) Resize(width, height uint32) error {
	width = clamp(width, 1, maxDimension)
	height = clamp(height, 1, maxDimension)

	curW, curH := e.sc.Size()
	if width == curW && height == curH {
		return nil
	}

	slog.Debug("Resize swap chain",
		slog.Int("width", int(width)),
		slog.Int("height", int(height)),
	)

	if err := e.timeline.Flush(); err != nil {
		return fmt.Errorf("%w: flush before resize: %v", ErrDeviceLost, err)
	}

	// Drop every reference into the buffer set so the swap chain is the
	// sole owner during the resize. Watermarks are pulled forward to the
	// active slot's value: after the flush everything is complete, and a
	// stale low watermark must not let a future frame skip its wait.
	current := e.ring.Slot(e.ring.CurrentIndex()).watermark
	for i := 0; i < e.ring.Count(); i++ {
		slot := e.ring.Slot(i)
		slot.buffer = nil
		slot.watermark = current
	}
	if e.views != nil {
		e.views.ReleaseViews()
	}

	if err := e.sc.Resize(width, height); err != nil {
		return fmt.Errorf("%w: resize swap chain to %dx%d: %v", ErrDeviceLost, width, height, err)
	}

	return e.bindBuffers()
}

// maxDimension bounds requested sizes to something every backend can
// allocate. 16384 is the common texture dimension limit.
const maxDimension = 16384
