// Package gui fills inventories used as menus.
package gui

import (
	"errors"
	"fmt"
	"slices"

	"github.com/df-mc/dragonfly/server/item"
	"github.com/dm-vev/hikari/dsl/prop"
)

var (
	// ErrNoModel is returned when a brush is built without a model.
	ErrNoModel = errors.New("gui: brush has no model")
	// ErrLayoutTooLarge is returned when a layout has more keys than the model has slots.
	ErrLayoutTooLarge = errors.New("gui: layout larger than model")
)

// Model is the canvas a brush paints on. *inventory.Inventory implements it.
type Model interface {
	SetItem(slot int, it item.Stack) error
	Size() int
}

// LayoutSpec configures a LayoutBrush.
type LayoutSpec struct {
	Model *prop.Property[Model]

	layout []string
}

// Layout sets the lines of the layout. Every rune of a line is the key of one slot, counting from the
// first slot of the model.
func (s *LayoutSpec) Layout(lines ...string) {
	s.layout = slices.Clone(lines)
}

// NewLayout builds a layout brush configured by fn.
func NewLayout(fn func(s *LayoutSpec)) (*LayoutBrush, error) {
	s := &LayoutSpec{Model: prop.Empty[Model]().Named("model")}
	fn(s)
	return s.build()
}

func (s *LayoutSpec) build() (*LayoutBrush, error) {
	m, ok := s.Model.Nullable()
	if !ok || m == nil {
		return nil, ErrNoModel
	}
	b := &LayoutBrush{model: m, slots: make(map[rune][]int)}
	index := 0
	for _, line := range s.layout {
		for _, key := range line {
			b.slots[key] = append(b.slots[key], index)
			index++
		}
	}
	if size := m.Size(); index > size {
		return nil, fmt.Errorf("%w: %d keys for %d slots", ErrLayoutTooLarge, index, size)
	}
	return b, nil
}

// LayoutBrush puts items into the slots a layout binds to a key.
type LayoutBrush struct {
	model Model
	slots map[rune][]int
}

// Slots returns the slots bound to key in ascending order.
func (b *LayoutBrush) Slots(key rune) []int {
	return slices.Clone(b.slots[key])
}

// Apply sets the item returned by supplier in every slot bound to key. supplier is called once per slot.
// Keys the layout does not contain are ignored.
func (b *LayoutBrush) Apply(key rune, supplier func() item.Stack) error {
	var errs []error
	for _, slot := range b.slots[key] {
		if err := b.model.SetItem(slot, supplier()); err != nil {
			errs = append(errs, fmt.Errorf("slot %d: %w", slot, err))
		}
	}
	return errors.Join(errs...)
}

// Fill sets it in every slot bound to key.
func (b *LayoutBrush) Fill(key rune, it item.Stack) error {
	return b.Apply(key, func() item.Stack { return it })
}
