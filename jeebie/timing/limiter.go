package timing

import (
	"fmt"
	"time"

	"github.com/valerio/jeebie-core/jeebie/video"
)

// Limiter paces frame execution against the wall clock. It lives outside the
// machine, which only knows how to run one frame's worth of cycles.
type Limiter interface {
	// WaitForNextFrame blocks until the next frame is due. It returns at
	// once when running behind.
	WaitForNextFrame()

	// Reset drops accumulated timing, used after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that never waits.
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// CPUFrequency is the machine clock in cycles per second.
const CPUFrequency = 4194304

// TargetFPS is the native refresh rate, about 59.73Hz.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(video.FrameCycles)
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// New returns the limiter called name: "adaptive", "ticker" or "none".
func New(name string) (Limiter, error) {
	switch name {
	case "adaptive", "":
		return NewAdaptiveLimiter(), nil
	case "ticker":
		return NewTickerLimiter(), nil
	case "none":
		return NewNoOpLimiter(), nil
	}
	return nil, fmt.Errorf("unknown pacing %q", name)
}
