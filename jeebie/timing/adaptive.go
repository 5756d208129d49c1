package timing

import (
	"log/slog"
	"time"
)

const (
	// spinThreshold is the remaining wait below which the limiter busy waits.
	spinThreshold = 2 * time.Millisecond
	// maxLag is how far behind schedule the limiter falls before resyncing.
	maxLag = 5 * time.Millisecond
	// reportInterval is the number of frames between drift reports.
	reportInterval = 60
)

// AdaptiveLimiter sleeps most of the frame and spins for the remainder,
// resyncing when the host falls behind.
type AdaptiveLimiter struct {
	frame    time.Duration
	deadline time.Time
	started  time.Time
	frames   int64

	now   func() time.Time
	sleep func(time.Duration)
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	a := &AdaptiveLimiter{
		frame: FrameDuration(),
		now:   time.Now,
		sleep: time.Sleep,
	}
	a.Reset()
	return a
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := a.now()
	remaining := a.deadline.Sub(now)

	switch {
	case remaining > spinThreshold:
		a.sleep(remaining - time.Millisecond)
		a.spin()
	case remaining > 0:
		a.spin()
	case remaining < -maxLag:
		a.deadline = now
	}

	a.deadline = a.deadline.Add(a.frame)
	a.frames++

	if a.frames%reportInterval == 0 {
		elapsed := a.now().Sub(a.started)
		if elapsed > 0 {
			slog.Debug("frame pacing",
				"frames", a.frames,
				"fps", float64(a.frames)/elapsed.Seconds())
		}
	}
}

func (a *AdaptiveLimiter) spin() {
	for a.now().Before(a.deadline) {
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.started = a.now()
	a.deadline = a.started
	a.frames = 0
}
