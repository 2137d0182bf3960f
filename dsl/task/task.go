// Package task schedules plugin callbacks on a tick loop.
package task

import (
	"sync/atomic"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
)

// Signal is returned by a task callback to tell the scheduler how the invocation ended.
type Signal uint8

const (
	// Continue is returned when the invocation ran to completion.
	Continue Signal = iota
	// Stopped is returned when the invocation ended early. The task stays scheduled.
	Stopped
	// Cancelled is returned when the invocation ended early and the task was cancelled.
	Cancelled
)

func (s Signal) String() string {
	switch s {
	case Continue:
		return "continue"
	case Stopped:
		return "stopped"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Options control when a task runs. The zero value runs the task once on the next tick.
type Options struct {
	// Async runs the task on its own goroutine instead of the scheduler goroutine.
	Async bool
	// Delay is the number of ticks to wait before the first run. Values below 1 mean the next tick.
	Delay int64
	// Interval makes the task repeat every Interval ticks when positive.
	Interval int64
}

// Func is a task callback.
type Func func(s *Spec) Signal

// Spec is passed to every invocation of a task.
type Spec struct {
	// Task is the task being run.
	Task *Task
	// Count is the number of this invocation, starting at 1.
	Count int
	// Tx is the world transaction the invocation runs in. It is nil for async tasks and for
	// schedulers without a world executor.
	Tx *world.Tx
}

// Stop ends the current invocation. The task keeps running on later ticks if it repeats.
func (s *Spec) Stop() Signal {
	return Stopped
}

// Cancel cancels the task and ends the current invocation.
func (s *Spec) Cancel() Signal {
	s.Task.Cancel()
	return Cancelled
}

// Task is a scheduled callback.
type Task struct {
	id       uuid.UUID
	owner    string
	seq      int64
	opts     Options
	fn       Func
	s        *Scheduler
	runs     atomic.Int64
	canceled atomic.Bool
}

// ID uniquely identifies the task.
func (t *Task) ID() uuid.UUID { return t.id }

// Owner returns the name the task was scheduled for, usually a plugin.
func (t *Task) Owner() string { return t.owner }

// Options returns the options the task was scheduled with.
func (t *Task) Options() Options { return t.opts }

// Runs returns the number of times the task was invoked.
func (t *Task) Runs() int64 { return t.runs.Load() }

// Repeating reports if the task runs more than once.
func (t *Task) Repeating() bool { return t.opts.Interval > 0 }

// Cancel removes the task from its scheduler. Running invocations are not interrupted.
func (t *Task) Cancel() {
	if t.canceled.CompareAndSwap(false, true) {
		t.s.remove(t)
		t.s.metrics.incCancels()
	}
}

// Cancelled reports if Cancel was called.
func (t *Task) Cancelled() bool { return t.canceled.Load() }
