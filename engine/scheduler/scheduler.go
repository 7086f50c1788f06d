// Package scheduler provides the coalescing delayed-task utility shared by the viewer's
// controllers. Each Slot holds at most one pending task: scheduling again cancels and
// replaces the previous one. Slots never fire on their own; the frame loop calls Poll and
// due tasks run there, on the frame thread.
package scheduler

import (
	"log"
	"slices"
	"sync"
	"time"
)

// Clock returns the current time. Tests inject a ManualClock.
type Clock func() time.Time

// Scheduler owns a set of slots sharing one clock.
type Scheduler struct {
	now   Clock
	slots []*Slot
}

// Slot is a single cancel-and-replace pending task.
type Slot struct {
	name  string
	owner *Scheduler
	due   time.Time
	task  func()
	armed bool
	seq   uint64
}

// NewScheduler creates a scheduler using the wall clock unless overridden.
//
// Parameters:
//   - options: functional options to configure the scheduler
//
// Returns:
//   - *Scheduler: the new scheduler
func NewScheduler(options ...SchedulerBuilderOption) *Scheduler {
	s := &Scheduler{now: time.Now}
	for _, option := range options {
		option(s)
	}
	return s
}

// Now returns the scheduler clock's current time.
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// NewSlot registers a new empty slot.
//
// Parameters:
//   - name: label used in diagnostics
//
// Returns:
//   - *Slot: the slot
func (s *Scheduler) NewSlot(name string) *Slot {
	sl := &Slot{name: name, owner: s}
	s.slots = append(s.slots, sl)
	return sl
}

// NewThrottle creates a throttle bound to the scheduler clock.
//
// Parameters:
//   - interval: minimum time between two accepted calls
//
// Returns:
//   - *Throttle: the throttle
func (s *Scheduler) NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval, now: s.now}
}

// Poll runs every task whose due time has passed, earliest first. A task that schedules its
// own slot again is not run twice in the same poll. Panics inside a task are recovered and
// logged so the frame continues.
//
// Returns:
//   - int: the number of tasks run
func (s *Scheduler) Poll() int {
	now := s.now()
	type dueTask struct {
		slot *Slot
		seq  uint64
	}
	var due []dueTask
	for _, sl := range s.slots {
		if sl.armed && !sl.due.After(now) {
			due = append(due, dueTask{slot: sl, seq: sl.seq})
		}
	}
	slices.SortStableFunc(due, func(a, b dueTask) int {
		return a.slot.due.Compare(b.slot.due)
	})

	ran := 0
	for _, d := range due {
		// an earlier task may have cancelled or replaced this one
		if !d.slot.armed || d.slot.seq != d.seq {
			continue
		}
		task := d.slot.task
		d.slot.armed = false
		d.slot.task = nil
		d.slot.run(task)
		ran++
	}
	return ran
}

// Schedule replaces any pending task with fn, due after delay.
//
// Parameters:
//   - delay: time from now until fn becomes due
//   - fn: the task
func (sl *Slot) Schedule(delay time.Duration, fn func()) {
	sl.seq++
	sl.due = sl.owner.now().Add(delay)
	sl.task = fn
	sl.armed = true
}

// Cancel drops the pending task, if any.
func (sl *Slot) Cancel() {
	sl.seq++
	sl.armed = false
	sl.task = nil
}

// Pending reports whether a task is waiting in the slot.
func (sl *Slot) Pending() bool {
	return sl.armed
}

// Due returns the time the pending task becomes due. The result is meaningless when
// Pending is false.
func (sl *Slot) Due() time.Time {
	return sl.due
}

func (sl *Slot) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Scheduler] task %s recovered from panic: %v", sl.name, r)
		}
	}()
	task()
}

// Throttle accepts at most one call per interval.
type Throttle struct {
	interval time.Duration
	last     time.Time
	started  bool
	now      Clock
}

// Ready reports whether the interval has elapsed since the last accepted call and, if
// so, records now as the last accepted call. The first call is always accepted.
//
// Returns:
//   - bool: true when the caller should do the throttled work
func (t *Throttle) Ready() bool {
	now := t.now()
	if t.started && now.Sub(t.last) < t.interval {
		return false
	}
	t.started = true
	t.last = now
	return true
}

// Reset makes the next call to Ready succeed.
func (t *Throttle) Reset() {
	t.started = false
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu *sync.Mutex
	t  time.Time
}

// NewManualClock creates a manual clock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{mu: &sync.Mutex{}, t: start}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
