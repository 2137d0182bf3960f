// Package stack builds dragonfly item stacks from a configuration callback.
package stack

import (
	"errors"
	"fmt"

	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/hikari/dsl/prop"
	"github.com/dm-vev/hikari/dsl/tag"
)

var (
	// ErrNoItem is returned when a stack is built without an item type.
	ErrNoItem = errors.New("item type not set")
	// ErrUnknownItem is returned by Named for names that are not registered.
	ErrUnknownItem = errors.New("unknown item name")
	// ErrInvalidAmount is returned when a stack is built with an amount below 1.
	ErrInvalidAmount = errors.New("stack amount must be at least 1")
)

// Spec configures an item stack.
type Spec struct {
	// Item is the type of the item. It must be set before the stack is built.
	Item *prop.Property[world.Item]
	// Amount is the number of items in the stack. It defaults to 1.
	Amount *prop.Property[int]
	// Damage is the durability lost by the item. It defaults to 0 and is ignored for items without
	// durability.
	Damage *prop.Property[int]
	// Values holds custom values stored on the stack.
	Values *prop.Property[tag.Compound]

	meta *Meta
	err  error
}

func newSpec() *Spec {
	return &Spec{
		Item:   prop.Empty[world.Item]().Named("item"),
		Amount: prop.Of(1).Named("amount"),
		Damage: prop.Of(0).Named("damage"),
		Values: prop.Empty[tag.Compound]().Named("values"),
	}
}

// New builds a stack of it configured by fn. fn may be nil.
func New(it world.Item, fn func(s *Spec)) (item.Stack, error) {
	s := newSpec()
	if it != nil {
		s.Item.Set(it)
	}
	return s.run(fn)
}

// Named builds a stack of the item registered under name, such as "minecraft:diamond_sword".
func Named(name string, fn func(s *Spec)) (item.Stack, error) {
	it, ok := world.ItemByName(name, 0)
	if !ok {
		return item.Stack{}, fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	return New(it, fn)
}

// From builds a stack seeded with the item, count, damage, metadata and values of base.
func From(base item.Stack, fn func(s *Spec)) (item.Stack, error) {
	s := newSpec()
	if !base.Empty() {
		s.Item.Set(base.Item())
		s.Amount.Set(base.Count())
		if maxDur := base.MaxDurability(); maxDur > 0 {
			s.Damage.Set(maxDur - base.Durability())
		}
		m := MetaOf(base)
		s.meta = &m
		if c := valuesOf(base); len(c) > 0 {
			s.Values.Set(c)
		}
	}
	return s.run(fn)
}

func (s *Spec) run(fn func(s *Spec)) (item.Stack, error) {
	if fn != nil {
		fn(s)
	}
	return s.build()
}

// Meta opens a MetaSpec seeded with the current metadata and stores the result.
func (s *Spec) Meta(fn func(m *MetaSpec)) {
	var base Meta
	if s.meta != nil {
		base = *s.meta
	}
	ms := newMetaSpec(base)
	fn(ms)
	m := ms.build()
	s.meta = &m
}

// Compound edits the custom values of the stack, creating them if none are present.
func (s *Spec) Compound(fn func(c *tag.CompoundSpec)) {
	base, _ := s.Values.Nullable()
	c, err := tag.EditCompound(base, fn)
	if err != nil {
		if s.err == nil {
			s.err = fmt.Errorf("compound: %w", err)
		}
		return
	}
	s.Values.Set(c)
}

func (s *Spec) build() (item.Stack, error) {
	if s.err != nil {
		return item.Stack{}, s.err
	}
	it, _ := s.Item.Nullable()
	if it == nil {
		return item.Stack{}, ErrNoItem
	}
	amount := s.Amount.MustGet()
	if amount < 1 {
		return item.Stack{}, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	st := item.NewStack(it, amount)
	if dmg := s.Damage.MustGet(); dmg > 0 {
		if maxDur := st.MaxDurability(); maxDur > 0 {
			st = st.WithDurability(maxDur - min(dmg, maxDur-1))
		}
	}
	if c, ok := s.Values.Nullable(); ok {
		for k, v := range tag.ToNBT(c) {
			st = st.WithValue(k, v)
		}
	}
	if s.meta != nil {
		st = s.meta.apply(st)
	}
	return st, nil
}

// valuesOf returns the custom values of s that have an NBT representation. Hide flags are excluded as they
// are carried by the metadata.
func valuesOf(s item.Stack) tag.Compound {
	c := tag.Compound{}
	for k, v := range s.Values() {
		if k == FlagsKey {
			continue
		}
		converted, err := tag.FromNBT(map[string]any{k: v})
		if err != nil {
			continue
		}
		c[k] = converted[k]
	}
	return c
}
