package stack

import (
	"strings"

	"github.com/df-mc/dragonfly/server/item"
)

// FlagsKey is the item stack value under which hide flags are stored.
const FlagsKey = "HideFlags"

// Flag is a single flag hiding part of an item's tooltip.
type Flag int32

const (
	FlagEnchantments Flag = 1 << iota
	FlagAttributes
	FlagUnbreakable
	FlagDestroys
	FlagPlacedOn
	FlagPotionEffects
)

// Flags is a set of Flag values.
type Flags int32

// AllFlags holds every Flag.
const AllFlags = Flags(FlagEnchantments | FlagAttributes | FlagUnbreakable | FlagDestroys | FlagPlacedOn | FlagPotionEffects)

// Has reports if f is set.
func (fl Flags) Has(f Flag) bool {
	return int32(fl)&int32(f) != 0
}

func (fl Flags) String() string {
	names := []string{"enchantments", "attributes", "unbreakable", "destroys", "placed_on", "potion_effects"}
	var set []string
	for i, name := range names {
		if fl.Has(Flag(1 << i)) {
			set = append(set, name)
		}
	}
	return "Flags(" + strings.Join(set, "|") + ")"
}

// FlagsOf reads the hide flags stored on s.
func FlagsOf(s item.Stack) Flags {
	v, ok := s.Value(FlagsKey)
	if !ok {
		return 0
	}
	switch v := v.(type) {
	case int32:
		return Flags(v)
	case Flags:
		return v
	case int:
		return Flags(v)
	}
	return 0
}

// FlagsSpec configures the hide flags of an item.
type FlagsSpec struct {
	flags *Flags
}

// None removes every flag, including flags copied from a source item.
func (s *FlagsSpec) None() { *s.flags = 0 }

// HideEnchantments hides the enchantment lines of the tooltip.
func (s *FlagsSpec) HideEnchantments() { s.Add(FlagEnchantments) }

// HideAttributes hides attribute modifiers.
func (s *FlagsSpec) HideAttributes() { s.Add(FlagAttributes) }

// HideUnbreakable hides the unbreakable marker.
func (s *FlagsSpec) HideUnbreakable() { s.Add(FlagUnbreakable) }

// HideDestroys hides the blocks the item can break in adventure mode.
func (s *FlagsSpec) HideDestroys() { s.Add(FlagDestroys) }

// HidePlacedOn hides the blocks the item can be placed on in adventure mode.
func (s *FlagsSpec) HidePlacedOn() { s.Add(FlagPlacedOn) }

// HidePotionEffects hides the effects of potions.
func (s *FlagsSpec) HidePotionEffects() { s.Add(FlagPotionEffects) }

// HideAll sets every flag.
func (s *FlagsSpec) HideAll() { *s.flags = AllFlags }

// Add sets f.
func (s *FlagsSpec) Add(f Flag) {
	*s.flags |= Flags(f)
}

// Remove clears f.
func (s *FlagsSpec) Remove(f Flag) {
	*s.flags &^= Flags(f)
}
