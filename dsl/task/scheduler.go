package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/brentp/intintmap"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// ErrClosed is returned when scheduling on a closed scheduler.
var ErrClosed = errors.New("task: scheduler closed")

// Executor runs sync task invocations.
type Executor interface {
	Exec(f func(tx *world.Tx))
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(f func(tx *world.Tx))

func (e ExecutorFunc) Exec(f func(tx *world.Tx)) { e(f) }

// WorldExecutor runs sync tasks inside transactions of a world.
type WorldExecutor struct {
	World *world.World
}

func (w WorldExecutor) Exec(f func(tx *world.Tx)) {
	w.World.Exec(f)
}

type inlineExecutor struct{}

func (inlineExecutor) Exec(f func(tx *world.Tx)) { f(nil) }

// Config configures a Scheduler. The zero value is usable.
type Config struct {
	Logger *slog.Logger
	// TickDuration is the length of one tick when the scheduler runs with Run. Defaults to 50ms.
	TickDuration time.Duration
	// MaxAsync bounds the number of async invocations running at the same time. Defaults to 16.
	MaxAsync int64
	// Executor runs sync invocations. Without one they run on the goroutine calling Step.
	Executor Executor
	Metrics  *Metrics
}

// Scheduler runs tasks on ticks. Step advances one tick and must not be called concurrently.
type Scheduler struct {
	log          *slog.Logger
	tickDuration time.Duration
	exec         Executor
	sem          *semaphore.Weighted
	metrics      *Metrics

	mu     sync.Mutex
	tick   int64
	seq    int64
	tasks  map[int64]*Task
	due    *intintmap.Map
	order  []int64
	closed bool

	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

// NewScheduler creates a Scheduler. It does not tick until Run or Step is called.
func NewScheduler(cfg Config) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.TickDuration <= 0 {
		cfg.TickDuration = 50 * time.Millisecond
	}
	if cfg.MaxAsync <= 0 {
		cfg.MaxAsync = 16
	}
	if cfg.Executor == nil {
		cfg.Executor = inlineExecutor{}
	}
	return &Scheduler{
		log:          cfg.Logger.With("subsystem", "tasks"),
		tickDuration: cfg.TickDuration,
		exec:         cfg.Executor,
		sem:          semaphore.NewWeighted(cfg.MaxAsync),
		metrics:      cfg.Metrics,
		tasks:        make(map[int64]*Task),
		due:          intintmap.New(64, 0.6),
		done:         make(chan struct{}),
	}
}

// Schedule adds a task owned by owner.
func (s *Scheduler) Schedule(owner string, opts Options, fn Func) (*Task, error) {
	if fn == nil {
		return nil, fmt.Errorf("task: nil callback for %s", owner)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.seq++
	t := &Task{id: uuid.New(), owner: owner, seq: s.seq, opts: opts, fn: fn, s: s}
	s.tasks[t.seq] = t
	s.due.Put(t.seq, s.tick+max(opts.Delay, 1))
	s.order = append(s.order, t.seq)
	s.metrics.setActive(len(s.tasks))
	return t, nil
}

// Now schedules fn to run once on the next tick.
func (s *Scheduler) Now(owner string, fn Func) (*Task, error) {
	return s.Schedule(owner, Options{}, fn)
}

// Later schedules fn to run once after delay ticks.
func (s *Scheduler) Later(owner string, delay int64, fn Func) (*Task, error) {
	return s.Schedule(owner, Options{Delay: delay}, fn)
}

// Timer schedules fn to run after delay ticks and then every interval ticks. Intervals below 1
// are raised to 1.
func (s *Scheduler) Timer(owner string, delay, interval int64, fn Func) (*Task, error) {
	return s.Schedule(owner, Options{Delay: delay, Interval: max(interval, 1)}, fn)
}

// Tick returns the number of ticks stepped so far.
func (s *Scheduler) Tick() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Pending returns the number of scheduled tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Tasks returns the tasks of owner in the order they were scheduled.
func (s *Scheduler) Tasks(owner string) []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Task
	for _, seq := range s.order {
		if t, ok := s.tasks[seq]; ok && t.owner == owner {
			out = append(out, t)
		}
	}
	return out
}

// CancelOwner cancels every task of owner and returns how many were cancelled.
func (s *Scheduler) CancelOwner(owner string) int {
	tasks := s.Tasks(owner)
	for _, t := range tasks {
		t.Cancel()
	}
	return len(tasks)
}

func (s *Scheduler) remove(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(t.seq)
}

func (s *Scheduler) removeLocked(seq int64) {
	if _, ok := s.tasks[seq]; !ok {
		return
	}
	delete(s.tasks, seq)
	s.due.Del(seq)
	s.metrics.setActive(len(s.tasks))
}

// Step advances the scheduler by one tick and runs every task that became due.
func (s *Scheduler) Step(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.tick++
	if len(s.order) > 2*len(s.tasks)+16 {
		s.order = slices.DeleteFunc(s.order, func(seq int64) bool {
			_, ok := s.tasks[seq]
			return !ok
		})
	}
	var ready []*Task
	for _, seq := range s.order {
		t, ok := s.tasks[seq]
		if !ok {
			continue
		}
		if due, ok := s.due.Get(seq); !ok || due > s.tick {
			continue
		}
		ready = append(ready, t)
		if t.Repeating() {
			s.due.Put(seq, s.tick+t.opts.Interval)
		} else {
			s.removeLocked(seq)
		}
	}
	s.mu.Unlock()

	for _, t := range ready {
		if t.opts.Async {
			s.runAsync(ctx, t)
			continue
		}
		s.exec.Exec(func(tx *world.Tx) { s.invoke(t, tx) })
	}
}

// runAsync adds to wg under mu. No invocation starts once Close marked the scheduler closed.
func (s *Scheduler) runAsync(ctx context.Context, t *Task) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	go func() {
		defer s.wg.Done()
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer s.sem.Release(1)
		s.invoke(t, nil)
	}()
}

func (s *Scheduler) invoke(t *Task, tx *world.Tx) {
	if t.Cancelled() {
		return
	}
	spec := &Spec{Task: t, Count: int(t.runs.Add(1)), Tx: tx}
	defer func() {
		if r := recover(); r != nil {
			s.metrics.incPanics()
			s.log.Error("Task panic.", "owner", t.owner, "task", t.id, "panic", r)
			t.Cancel()
		}
	}()
	s.metrics.incRuns()
	switch t.fn(spec) {
	case Stopped:
		s.metrics.incStops()
	case Cancelled:
		t.Cancel()
	}
}

// Run steps the scheduler every tick until ctx is done or the scheduler is closed.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tickDuration)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.Step(ctx)
		}
	}
}

// Close cancels every task and waits for running async invocations to return.
func (s *Scheduler) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		tasks := make([]*Task, 0, len(s.tasks))
		for _, seq := range s.order {
			if t, ok := s.tasks[seq]; ok {
				tasks = append(tasks, t)
			}
		}
		s.mu.Unlock()
		for _, t := range tasks {
			t.Cancel()
		}
		close(s.done)
	})
	s.wg.Wait()
	return nil
}
