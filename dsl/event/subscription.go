package event

import (
	"errors"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/dm-vev/hikari/dsl/prop"
	"github.com/dm-vev/hikari/dsl/timeconv"
)

// ErrNoOwner is returned when a subscription is built without an owner.
var ErrNoOwner = errors.New("owner must be set before building the subscription")

// Listener is the handle of a subscription.
type Listener struct {
	owner       string
	closed      atomic.Bool
	count       atomic.Int64
	unsubscribe atomic.Pointer[func()]
}

// Close removes the subscription from its bus. Calling Close more than once has no effect.
func (l *Listener) Close() {
	l.closed.Store(true)
	if f := l.unsubscribe.Load(); f != nil {
		(*f)()
	}
}

// Closed reports whether Close was called on the listener.
func (l *Listener) Closed() bool  { return l.closed.Load() }

// Owner returns the plugin name the listener was registered by.
func (l *Listener) Owner() string { return l.owner }

// Count returns the number of counted invocations.
func (l *Listener) Count() int64 { return l.count.Load() }

// ActionSpec is passed to the actions and filters of a subscription.
type ActionSpec[T any] struct {
	Event    T
	Listener *Listener
}

// Cancel cancels the event if it can be cancelled.
func (s *ActionSpec[T]) Cancel() {
	if c, ok := any(s.Event).(Cancellable); ok {
		c.Cancel()
	}
}

// OptionsSpec configures when a subscription is called and when it expires.
type OptionsSpec struct {
	Priority *prop.Property[Priority]
	// Invocations is the number of invocations after which the subscription closes. Values below 1
	// never close it.
	Invocations *prop.Property[int64]
	// Time is how long the subscription stays open after it was built. Values below 1 keep it open.
	Time *prop.Property[time.Duration]

	ignoreCancelled  bool
	countsOnFiltered bool
}

// IgnoreCancelled skips events that were cancelled by an earlier handler.
func (o *OptionsSpec) IgnoreCancelled() { o.ignoreCancelled = true }

// CountsOnFiltered counts invocations rejected by a filter towards Invocations.
func (o *OptionsSpec) CountsOnFiltered() { o.countsOnFiltered = true }

// TimeString sets Time from a duration string such as "1d" or "10m 30s".
func (o *OptionsSpec) TimeString(s string) { o.Time.Set(timeconv.Parse(s)) }

// TimeIn sets Time to v of unit u.
func (o *OptionsSpec) TimeIn(v float64, u timeconv.Unit) { o.Time.Set(timeconv.Of(v, u)) }

// SubscriptionSpec configures a subscription to events of type T.
type SubscriptionSpec[T any] struct {
	Owner *prop.Property[string]

	opts    *OptionsSpec
	action  func(s *ActionSpec[T])
	filters []func(s *ActionSpec[T]) bool
}

// Options configures the options of the subscription.
func (s *SubscriptionSpec[T]) Options(fn func(o *OptionsSpec)) {
	fn(s.opts)
}

// Action adds fn to the actions run for every accepted event. Actions run in the order they were added.
func (s *SubscriptionSpec[T]) Action(fn func(a *ActionSpec[T])) {
	if prev := s.action; prev != nil {
		s.action = func(a *ActionSpec[T]) {
			prev(a)
			fn(a)
		}
		return
	}
	s.action = fn
}

// Filter adds a predicate events must satisfy for the actions to run.
func (s *SubscriptionSpec[T]) Filter(fn func(a *ActionSpec[T]) bool) {
	s.filters = append(s.filters, fn)
}

// Subscribe builds a subscription to events of type T and registers it with b.
func Subscribe[T any](b *Bus, fn func(s *SubscriptionSpec[T])) (*Listener, error) {
	s := &SubscriptionSpec[T]{
		Owner: prop.Empty[string]().Named("owner"),
		opts: &OptionsSpec{
			Priority:    prop.Of(Normal).Named("priority"),
			Invocations: prop.Of[int64](-1).Named("invocations"),
			Time:        prop.Of[time.Duration](-1).Named("time"),
		},
	}
	fn(s)
	return s.build(b)
}

func (s *SubscriptionSpec[T]) build(b *Bus) (*Listener, error) {
	owner, ok := s.Owner.Nullable()
	if !ok || owner == "" {
		return nil, ErrNoOwner
	}
	var (
		limit    = s.opts.Invocations.MustGet()
		lifetime = s.opts.Time.MustGet()
		counts   = s.opts.countsOnFiltered
		action   = s.action
		filters  = s.filters
		built    = b.now()
	)
	l := &Listener{owner: owner}
	handle := func(ev any) {
		if l.Closed() {
			return
		}
		if lifetime > 0 && b.now().Sub(built) > lifetime {
			l.Close()
			return
		}
		if limit > 0 && l.count.Load() >= limit {
			l.Close()
			return
		}
		a := &ActionSpec[T]{Event: ev.(T), Listener: l}
		for _, f := range filters {
			if f(a) {
				continue
			}
			if counts && l.count.Add(1) == limit {
				l.Close()
			}
			return
		}
		if l.count.Add(1) == limit {
			l.Close()
		}
		if action != nil {
			action(a)
		}
	}
	unsubscribe := b.register(reflect.TypeFor[T](), registration{
		owner:           owner,
		priority:        s.opts.Priority.MustGet(),
		ignoreCancelled: s.opts.ignoreCancelled,
		fn:              handle,
		listener:        l,
	})
	l.unsubscribe.Store(&unsubscribe)
	if l.Closed() {
		unsubscribe()
	}
	return l, nil
}
