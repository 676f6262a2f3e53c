package animation

import (
	"time"

	"github.com/Carmen-Shannon/h2scape/internal/logging"
)

// SchedulerOption is a functional option for configuring a Scheduler.
type SchedulerOption func(*scheduler)

// WithFrameRate sets the target frames per second. Values <= 0 keep the default of 60.
//
// Parameters:
//   - fps: target frames per second
//
// Returns:
//   - SchedulerOption: option function to apply
func WithFrameRate(fps float64) SchedulerOption {
	return func(s *scheduler) {
		if fps > 0 {
			s.interval = time.Duration(float64(time.Second) / fps)
		}
	}
}

// WithClock replaces the monotonic system clock, typically with a fake in tests.
//
// Parameters:
//   - clock: the time source
//
// Returns:
//   - SchedulerOption: option function to apply
func WithClock(clock Clock) SchedulerOption {
	return func(s *scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the logger recovered frame panics are reported to.
func WithLogger(l logging.Logger) SchedulerOption {
	return func(s *scheduler) {
		s.log = logging.OrNoop(l)
	}
}
