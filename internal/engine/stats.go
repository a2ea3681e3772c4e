package engine

import (
	"time"
)

// frameStats accumulates presented frames and reports them once per interval.
type frameStats struct {
	interval time.Duration
	start    time.Duration
	frames   int
	started  bool
}

type frameReport struct {
	Frames        int
	Elapsed       time.Duration
	FPS           float64
	MeanFrameTime time.Duration
}

func newFrameStats(interval time.Duration) *frameStats {
	return &frameStats{interval: interval}
}

// frame records a frame finished at now. It returns a report when the
// interval has elapsed and starts a new window.
func (s *frameStats) frame(now time.Duration) (frameReport, bool) {
	if s.interval <= 0 {
		return frameReport{}, false
	}

	if !s.started {
		s.started = true
		s.start = now
		return frameReport{}, false
	}

	s.frames++

	elapsed := now - s.start
	if elapsed < s.interval {
		return frameReport{}, false
	}

	report := frameReport{
		Frames:        s.frames,
		Elapsed:       elapsed,
		FPS:           float64(s.frames) / elapsed.Seconds(),
		MeanFrameTime: elapsed / time.Duration(s.frames),
	}
	s.start = now
	s.frames = 0
	return report, true
}
