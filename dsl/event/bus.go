// Package event dispatches typed events to plugin subscriptions.
package event

import (
	"cmp"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Priority orders the handlers of an event. Lower priorities run first and Monitor runs last.
type Priority int

const (
	Lowest Priority = iota
	Low
	Normal
	High
	Highest
	Monitor
)

func (p Priority) String() string {
	switch p {
	case Lowest:
		return "lowest"
	case Low:
		return "low"
	case Normal:
		return "normal"
	case High:
		return "high"
	case Highest:
		return "highest"
	case Monitor:
		return "monitor"
	}
	return "unknown"
}

// Cancellable is implemented by events that can be cancelled. Embed Cancellation to implement it.
type Cancellable interface {
	Cancel()
	Cancelled() bool
}

// Cancellation is embedded in events that can be cancelled.
type Cancellation struct {
	cancelled bool
}

func (c *Cancellation) Cancel()         { c.cancelled = true }
func (c *Cancellation) Cancelled() bool { return c.cancelled }

func cancelled(ev any) bool {
	c, ok := ev.(Cancellable)
	return ok && c.Cancelled()
}

type registration struct {
	owner           string
	priority        Priority
	ignoreCancelled bool
	id              uint64
	fn              func(ev any)
	listener        *Listener
}

type chains map[reflect.Type][]registration

// BusConfig holds the optional dependencies of a Bus.
type BusConfig struct {
	Logger *slog.Logger
	// Clock returns the current time. Defaults to time.Now.
	Clock   func() time.Time
	Metrics *Metrics
	// OnPanic is called after a handler of owner panicked.
	OnPanic func(owner string, r any)
}

// Bus delivers published events to the handlers registered for their type.
type Bus struct {
	log     *slog.Logger
	now     func() time.Time
	metrics *Metrics
	onPanic func(owner string, r any)

	mu     sync.Mutex
	next   uint64
	topics chains
	chain  atomic.Pointer[chains]
}

// NewBus creates an empty Bus from cfg.
func NewBus(cfg BusConfig) *Bus {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	b := &Bus{
		log:     cfg.Logger.With("subsystem", "events"),
		now:     cfg.Clock,
		metrics: cfg.Metrics,
		onPanic: cfg.OnPanic,
		topics:  make(chains),
	}
	b.chain.Store(&chains{})
	return b
}

func (b *Bus) register(t reflect.Type, reg registration) func() {
	b.mu.Lock()
	reg.id = b.next
	b.next++
	regs := append(b.topics[t], reg)
	slices.SortStableFunc(regs, func(x, y registration) int {
		if c := cmp.Compare(x.priority, y.priority); c != 0 {
			return c
		}
		return cmp.Compare(x.id, y.id)
	})
	b.topics[t] = regs
	b.storeLocked()
	b.mu.Unlock()
	b.metrics.addListeners(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			removed := b.removeLocked(func(r registration) bool { return r.id == reg.id })
			b.storeLocked()
			b.mu.Unlock()
			b.metrics.addListeners(-len(removed))
		})
	}
}

func (b *Bus) removeLocked(match func(r registration) bool) []registration {
	var removed []registration
	for t, regs := range b.topics {
		kept := make([]registration, 0, len(regs))
		for _, r := range regs {
			if match(r) {
				removed = append(removed, r)
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) == 0 {
			delete(b.topics, t)
			continue
		}
		b.topics[t] = kept
	}
	return removed
}

func (b *Bus) storeLocked() {
	snapshot := make(chains, len(b.topics))
	for t, regs := range b.topics {
		snapshot[t] = slices.Clone(regs)
	}
	b.chain.Store(&snapshot)
}

// Handle registers fn for every published event of type T and returns a function removing it.
func Handle[T any](b *Bus, owner string, priority Priority, fn func(ev T)) func() {
	return b.register(reflect.TypeFor[T](), registration{
		owner:    owner,
		priority: priority,
		fn:       func(ev any) { fn(ev.(T)) },
	})
}

// Clear removes every handler registered by owner and closes its listeners.
func (b *Bus) Clear(owner string) int {
	b.mu.Lock()
	removed := b.removeLocked(func(r registration) bool { return r.owner == owner })
	b.storeLocked()
	b.mu.Unlock()
	for _, r := range removed {
		if r.listener != nil {
			r.listener.closed.Store(true)
		}
	}
	b.metrics.addListeners(-len(removed))
	return len(removed)
}

// Rename moves every handler of oldName to newName.
func (b *Bus) Rename(oldName, newName string) {
	if newName == "" || oldName == newName {
		return
	}
	b.mu.Lock()
	for _, regs := range b.topics {
		for i := range regs {
			if regs[i].owner == oldName {
				regs[i].owner = newName
			}
		}
	}
	b.storeLocked()
	b.mu.Unlock()
}

// Handlers returns the number of handlers registered for events of the same type as ev.
func (b *Bus) Handlers(ev any) int {
	return len((*b.chain.Load())[reflect.TypeOf(ev)])
}

// Publish runs the handlers registered for the type of ev in priority order. It reports whether ev
// ended up cancelled.
func (b *Bus) Publish(ev any) bool {
	t := reflect.TypeOf(ev)
	regs := (*b.chain.Load())[t]
	b.metrics.incPublished(t)
	for _, reg := range regs {
		if reg.ignoreCancelled && cancelled(ev) {
			continue
		}
		b.invoke(reg.owner, func() { reg.fn(ev) })
	}
	return cancelled(ev)
}

func (b *Bus) invoke(owner string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			b.metrics.incPanics(owner)
			b.log.Error("Event handler panic.", "owner", owner, "panic", r)
			if b.onPanic != nil {
				b.onPanic(owner, r)
			}
		}
	}()
	call()
}
