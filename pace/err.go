package pace

import "errors"

// ErrWaitTimeout is returned by Timeline.WaitUntil when the timeout
// elapses before the GPU reaches the requested value. Recoverable; the
// caller may wait again.
var ErrWaitTimeout = errors.New("pace: fence wait timed out")

// ErrRecording means the frame-recording callback or the close step
// failed. The in-flight resource state is unknown at that point, so the
// engine cannot continue without device recreation.
var ErrRecording = errors.New("pace: frame recording failed")

// ErrDeviceLost means the queue or swap chain reported the device as
// unusable. Fatal; the caller owns device recreation.
var ErrDeviceLost = errors.New("pace: device lost")
