package event

import (
	"errors"
	"sync"
	"testing"
	"time"

	dfevent "github.com/df-mc/dragonfly/server/event"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/dm-vev/hikari/dsl/timeconv"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type ping struct {
	Cancellation
	n int
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestSubscribeRequiresOwner(t *testing.T) {
	b := NewBus(BusConfig{})
	_, err := Subscribe(b, func(s *SubscriptionSpec[*ping]) {
		s.Action(func(*ActionSpec[*ping]) {})
	})
	if !errors.Is(err, ErrNoOwner) {
		t.Fatalf("subscribe without owner returned %v, want ErrNoOwner", err)
	}
}

func TestInvocationLimit(t *testing.T) {
	b := NewBus(BusConfig{})
	var seen []int
	l, err := Subscribe(b, func(s *SubscriptionSpec[*ping]) {
		s.Owner.Set("demo")
		s.Options(func(o *OptionsSpec) { o.Invocations.Set(2) })
		s.Action(func(a *ActionSpec[*ping]) { seen = append(seen, a.Event.n) })
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	for i := 1; i <= 4; i++ {
		b.Publish(&ping{n: i})
	}
	if diff := cmp.Diff([]int{1, 2}, seen); diff != "" {
		t.Fatalf("seen mismatch (-want +got):\n%s", diff)
	}
	if !l.Closed() || b.Handlers(&ping{}) != 0 {
		t.Fatalf("listener still registered after reaching its limit")
	}
}

func TestFilterCounting(t *testing.T) {
	for name, counts := range map[string]bool{"counts": true, "skips": false} {
		t.Run(name, func(t *testing.T) {
			b := NewBus(BusConfig{})
			var seen []int
			l, _ := Subscribe(b, func(s *SubscriptionSpec[*ping]) {
				s.Owner.Set("demo")
				s.Options(func(o *OptionsSpec) {
					o.Invocations.Set(2)
					if counts {
						o.CountsOnFiltered()
					}
				})
				s.Filter(func(a *ActionSpec[*ping]) bool { return a.Event.n%2 == 0 })
				s.Action(func(a *ActionSpec[*ping]) { seen = append(seen, a.Event.n) })
			})
			for i := 1; i <= 6; i++ {
				b.Publish(&ping{n: i})
			}
			want := []int{2, 4}
			if counts {
				want = []int{2}
			}
			if diff := cmp.Diff(want, seen); diff != "" {
				t.Fatalf("seen mismatch (-want +got):\n%s", diff)
			}
			if !l.Closed() {
				t.Fatalf("listener not closed")
			}
		})
	}
}

func TestTimeExpiry(t *testing.T) {
	c := &clock{now: time.Unix(1000, 0)}
	b := NewBus(BusConfig{Clock: c.Now})
	calls := 0
	l, _ := Subscribe(b, func(s *SubscriptionSpec[*ping]) {
		s.Owner.Set("demo")
		s.Options(func(o *OptionsSpec) { o.TimeIn(10, timeconv.Second) })
		s.Action(func(*ActionSpec[*ping]) { calls++ })
	})
	b.Publish(&ping{})
	c.Advance(10 * time.Second)
	b.Publish(&ping{})
	c.Advance(time.Millisecond)
	b.Publish(&ping{})
	if calls != 2 || !l.Closed() {
		t.Fatalf("calls %d closed %v, want 2 calls and a closed listener", calls, l.Closed())
	}
}

func TestPriorityAndCancellation(t *testing.T) {
	b := NewBus(BusConfig{})
	var order []string
	sub := func(name string, p Priority, ignore bool, cancel bool) {
		_, err := Subscribe(b, func(s *SubscriptionSpec[*ping]) {
			s.Owner.Set("demo")
			s.Options(func(o *OptionsSpec) {
				o.Priority.Set(p)
				if ignore {
					o.IgnoreCancelled()
				}
			})
			s.Action(func(a *ActionSpec[*ping]) {
				order = append(order, name)
				if cancel {
					a.Cancel()
				}
			})
		})
		if err != nil {
			t.Fatalf("subscribe %s: %v", name, err)
		}
	}
	sub("monitor", Monitor, false, false)
	sub("high", High, true, false)
	sub("low", Low, false, true)
	sub("normal", Normal, false, false)

	if !b.Publish(&ping{}) {
		t.Fatalf("Publish did not report the cancellation")
	}
	if diff := cmp.Diff([]string{"low", "normal", "monitor"}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestClearAndRename(t *testing.T) {
	b := NewBus(BusConfig{})
	a, _ := Subscribe(b, func(s *SubscriptionSpec[*ping]) { s.Owner.Set("a") })
	Handle(b, "a", Normal, func(*ping) {})
	other, _ := Subscribe(b, func(s *SubscriptionSpec[*ping]) { s.Owner.Set("b") })

	b.Rename("a", "c")
	if n := b.Clear("a"); n != 0 {
		t.Fatalf("Clear(a) after rename removed %d handlers", n)
	}
	if n := b.Clear("c"); n != 2 {
		t.Fatalf("Clear(c) removed %d handlers, want 2", n)
	}
	if !a.Closed() || other.Closed() {
		t.Fatalf("closed state a=%v b=%v", a.Closed(), other.Closed())
	}
	other.Close()
	other.Close()
	if b.Handlers(&ping{}) != 0 {
		t.Fatalf("handlers left after closing every listener")
	}
}

func TestPanicRecovery(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	var panicked string
	b := NewBus(BusConfig{Metrics: m, OnPanic: func(owner string, _ any) { panicked = owner }})
	Handle(b, "bad", Low, func(*ping) { panic("boom") })
	ran := false
	Handle(b, "good", High, func(*ping) { ran = true })

	b.Publish(&ping{})
	if !ran || panicked != "bad" {
		t.Fatalf("ran %v panicked %q", ran, panicked)
	}
	if got := testutil.ToFloat64(m.panics.WithLabelValues("bad")); got != 1 {
		t.Fatalf("panics = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.listeners); got != 2 {
		t.Fatalf("handlers gauge = %v, want 2", got)
	}
}

func TestPlayerBridge(t *testing.T) {
	b := NewBus(BusConfig{})
	Handle(b, "demo", Normal, func(ev *Chat) {
		if *ev.Message == "blocked" {
			ev.Cancel()
			return
		}
		*ev.Message = "[demo] " + *ev.Message
	})
	h := b.PlayerHandler(nil)
	if again := b.PlayerHandler(h); again.(*playerBridge).Handler != h.(*playerBridge).Handler {
		t.Fatalf("wrapping a bridge nested it")
	}

	msg := "hello"
	ctx := dfevent.C[*player.Player](nil)
	h.HandleChat(ctx, &msg)
	if ctx.Cancelled() || msg != "[demo] hello" {
		t.Fatalf("chat cancelled %v message %q", ctx.Cancelled(), msg)
	}

	msg = "blocked"
	ctx = dfevent.C[*player.Player](nil)
	h.HandleChat(ctx, &msg)
	if !ctx.Cancelled() {
		t.Fatalf("cancelling the bus event did not cancel the context")
	}
}
