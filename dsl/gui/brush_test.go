package gui

import (
	"errors"
	"testing"

	// Links dragonfly's internal nbtconv, the go:linkname target of item.Crossbow.
	_ "github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/item/inventory"
	"github.com/google/go-cmp/cmp"
)

var frame = []string{
	"#########",
	"#   x   #",
	"#########",
}

func TestLayoutBrush(t *testing.T) {
	inv := inventory.New(27, nil)
	b, err := NewLayout(func(s *LayoutSpec) {
		s.Model.Set(inv)
		s.Layout(frame...)
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if diff := cmp.Diff([]int{13}, b.Slots('x')); diff != "" {
		t.Fatalf("slots of x mismatch (-want +got):\n%s", diff)
	}
	if got := len(b.Slots('#')); got != 20 {
		t.Fatalf("%d slots bound to #, want 20", got)
	}

	calls := 0
	if err := b.Apply('#', func() item.Stack {
		calls++
		return item.NewStack(item.Stick{}, 1)
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if calls != 20 {
		t.Fatalf("supplier called %d times, want 20", calls)
	}
	if err := b.Fill('x', item.NewStack(item.Diamond{}, 3)); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if err := b.Fill('?', item.NewStack(item.Diamond{}, 1)); err != nil {
		t.Fatalf("fill of a missing key: %v", err)
	}

	for slot := range 27 {
		it, _ := inv.Item(slot)
		switch {
		case slot == 13:
			if _, ok := it.Item().(item.Diamond); !ok || it.Count() != 3 {
				t.Fatalf("slot 13 holds %v, want 3 diamonds", it)
			}
		case slot >= 9 && slot < 18 && slot != 9 && slot != 17:
			if !it.Empty() {
				t.Fatalf("slot %d holds %v, want empty", slot, it)
			}
		default:
			if _, ok := it.Item().(item.Stick); !ok {
				t.Fatalf("slot %d holds %v, want a stick", slot, it)
			}
		}
	}
}

func TestLayoutErrors(t *testing.T) {
	if _, err := NewLayout(func(s *LayoutSpec) { s.Layout("ab") }); !errors.Is(err, ErrNoModel) {
		t.Fatalf("build without model returned %v, want ErrNoModel", err)
	}
	_, err := NewLayout(func(s *LayoutSpec) {
		s.Model.Set(inventory.New(9, nil))
		s.Layout("#########", "#")
	})
	if !errors.Is(err, ErrLayoutTooLarge) {
		t.Fatalf("oversized layout returned %v, want ErrLayoutTooLarge", err)
	}
}
