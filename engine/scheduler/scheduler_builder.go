package scheduler

// SchedulerBuilderOption is a functional option for configuring a Scheduler.
type SchedulerBuilderOption func(*Scheduler)

// WithClock replaces the wall clock.
//
// Parameters:
//   - clock: the time source
//
// Returns:
//   - SchedulerBuilderOption: a function that sets the scheduler clock
func WithClock(clock Clock) SchedulerBuilderOption {
	return func(s *Scheduler) {
		if clock != nil {
			s.now = clock
		}
	}
}
