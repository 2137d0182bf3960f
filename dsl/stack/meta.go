package stack

import (
	"fmt"
	"slices"
	"strings"

	"github.com/df-mc/dragonfly/server/item"
	"github.com/dm-vev/hikari/dsl/prop"
	"github.com/dm-vev/hikari/dsl/text"
)

// Meta is the built display metadata of an item stack.
type Meta struct {
	// Name is the custom name. It is only applied if HasName is true.
	Name    string
	HasName bool

	Lore         []string
	Flags        Flags
	Enchantments []item.Enchantment
	Unbreakable  bool

	transforms []func(item.Stack) item.Stack
}

// MetaOf reads the metadata currently held by s.
func MetaOf(s item.Stack) Meta {
	name := s.CustomName()
	return Meta{
		Name:         name,
		HasName:      name != "",
		Lore:         slices.Clone(s.Lore()),
		Flags:        FlagsOf(s),
		Enchantments: slices.Clone(s.Enchantments()),
		Unbreakable:  s.Unbreakable(),
	}
}

func (m Meta) apply(s item.Stack) item.Stack {
	if m.HasName {
		s = s.WithCustomName(m.Name)
	}
	if len(m.Lore) > 0 {
		s = s.WithLore(m.Lore...)
	}
	if len(m.Enchantments) > 0 {
		s = s.WithEnchantments(m.Enchantments...)
	}
	if m.Unbreakable {
		s = s.AsUnbreakable()
	}
	if m.Flags != 0 {
		s = s.WithValue(FlagsKey, int32(m.Flags))
	}
	for _, t := range m.transforms {
		s = t(s)
	}
	return s
}

// MetaSpec configures the display metadata of an item stack.
type MetaSpec struct {
	// Name is the custom name of the item. '&' colour codes are translated.
	Name *prop.Property[string]

	lore         []string
	flags        Flags
	enchantments []item.Enchantment
	unbreakable  bool
	transforms   []func(item.Stack) item.Stack
}

func newMetaSpec(m Meta) *MetaSpec {
	s := &MetaSpec{Name: prop.Empty[string]().Named("name")}
	s.load(m)
	return s
}

func (s *MetaSpec) load(m Meta) {
	s.Name.Reset()
	if m.HasName {
		s.Name.Set(m.Name)
	}
	s.lore = slices.Clone(m.Lore)
	s.flags = m.Flags
	s.enchantments = slices.Clone(m.Enchantments)
	s.unbreakable = m.Unbreakable
	s.transforms = slices.Clone(m.transforms)
}

// Lore opens a LoreSpec over the current lore lines. Lines are appended unless the lore is cleared first.
func (s *MetaSpec) Lore(fn func(l *LoreSpec)) {
	fn(&LoreSpec{lines: &s.lore})
}

// Flags opens a FlagsSpec over the current hide flags.
func (s *MetaSpec) Flags(fn func(f *FlagsSpec)) {
	fn(&FlagsSpec{flags: &s.flags})
}

// Enchant adds an enchantment, replacing any existing enchantment of the same type.
func (s *MetaSpec) Enchant(t item.EnchantmentType, level int) {
	s.Unenchant(t)
	s.enchantments = append(s.enchantments, item.NewEnchantment(t, level))
}

// Unenchant removes the enchantment of type t.
func (s *MetaSpec) Unenchant(t item.EnchantmentType) {
	s.enchantments = slices.DeleteFunc(s.enchantments, func(e item.Enchantment) bool {
		return e.Type() == t
	})
}

// Unbreakable marks the item as unbreakable.
func (s *MetaSpec) Unbreakable() {
	s.unbreakable = true
}

// Copy replaces the name, lore, flags and enchantments with those of other.
func (s *MetaSpec) Copy(other item.Stack) {
	transforms := s.transforms
	s.load(MetaOf(other))
	s.transforms = transforms
}

// Transform registers a function applied to the built stack after all other metadata. Transforms run in
// the order they were registered.
func (s *MetaSpec) Transform(fn func(item.Stack) item.Stack) {
	s.transforms = append(s.transforms, fn)
}

func (s *MetaSpec) build() Meta {
	m := Meta{
		Lore:         slices.Clone(s.lore),
		Flags:        s.flags,
		Enchantments: slices.Clone(s.enchantments),
		Unbreakable:  s.unbreakable,
		transforms:   slices.Clone(s.transforms),
	}
	if name, ok := s.Name.Nullable(); ok {
		m.Name, m.HasName = text.Colour(name), true
	}
	return m
}

// LoreSpec configures the lore lines of an item.
type LoreSpec struct {
	lines *[]string
}

// Clear removes every line, including lines copied from a source item.
func (s *LoreSpec) Clear() {
	*s.lines = (*s.lines)[:0]
}

// Add appends lines after translating their colour codes.
func (s *LoreSpec) Add(lines ...string) {
	for _, l := range lines {
		*s.lines = append(*s.lines, text.Colour(l))
	}
}

// Wrap appends s split into lines of roughly maxLength characters.
func (s *LoreSpec) Wrap(str string, maxLength int) {
	s.Add(text.Chop(str, maxLength)...)
}

// Replace fills %key% placeholders in every line. kv holds alternating keys and values.
func (s *LoreSpec) Replace(kv ...any) {
	for i, l := range *s.lines {
		(*s.lines)[i] = text.Fill(l, kv...)
	}
}

// Lines returns a copy of the current lines.
func (s *LoreSpec) Lines() []string {
	return slices.Clone(*s.lines)
}

func (m Meta) String() string {
	return fmt.Sprintf("Meta(name=%q, lore=[%s], flags=%v, enchantments=%d, unbreakable=%v)",
		m.Name, strings.Join(m.Lore, "|"), m.Flags, len(m.Enchantments), m.Unbreakable)
}
