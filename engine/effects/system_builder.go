package effects

import "github.com/Carmen-Shannon/splatfx/engine/scheduler"

// SystemBuilderOption is a functional option for configuring the effect System.
type SystemBuilderOption func(*system)

// WithScheduler sets the scheduler whose clock drives the time uniform and its throttle.
//
// Parameters:
//   - s: the frame scheduler
//
// Returns:
//   - SystemBuilderOption: option function to apply
func WithScheduler(s *scheduler.Scheduler) SystemBuilderOption {
	return func(sys *system) {
		sys.sched = s
	}
}
