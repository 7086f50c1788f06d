package environment

import (
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Executor runs capture jobs off the frame thread.
type Executor interface {
	// Submit schedules job to run, possibly on another goroutine. Submit must not block
	// on job itself.
	//
	// Parameters:
	//   - job: the capture to run
	Submit(job func())
}

type poolExecutor struct {
	pool worker.DynamicWorkerPool
	next atomic.Int64
}

var _ Executor = &poolExecutor{}

// NewPoolExecutor creates an Executor backed by a dynamic worker pool. Captures are
// serialized by the controller, so a small pool suffices.
//
// Parameters:
//   - workers: the initial worker count
//   - queue: the task queue capacity
//   - idle: how long an idle worker waits before it exits
//
// Returns:
//   - Executor: the pool-backed executor
func NewPoolExecutor(workers, queue int, idle time.Duration) Executor {
	return &poolExecutor{pool: worker.NewDynamicWorkerPool(max(workers, 1), max(queue, 1), idle)}
}

func (e *poolExecutor) Submit(job func()) {
	id := int(e.next.Add(1))
	e.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			job()
			return nil, nil
		},
	})
}

// inlineExecutor runs jobs on the calling goroutine.
type inlineExecutor struct{}

// InlineExecutor returns an Executor that runs every job immediately on the caller. The
// result is still delivered through Update.
func InlineExecutor() Executor {
	return inlineExecutor{}
}

func (inlineExecutor) Submit(job func()) {
	job()
}
