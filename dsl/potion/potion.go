// Package potion builds dragonfly potion effects from a configuration callback.
package potion

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/df-mc/dragonfly/server/entity/effect"
	"github.com/dm-vev/hikari/dsl/prop"
	"github.com/dm-vev/hikari/dsl/timeconv"
)

var (
	// ErrNoType is returned when an effect is built without an effect type.
	ErrNoType = errors.New("effect type not set")
	// ErrUnknownType is returned by Spec.Named for unknown effect names.
	ErrUnknownType = errors.New("unknown effect type")
)

// TickDuration is the length of one game tick.
const TickDuration = 50 * time.Millisecond

var types = map[string]effect.Type{
	"speed":           effect.Speed,
	"swiftness":       effect.Speed,
	"slowness":        effect.Slowness,
	"haste":           effect.Haste,
	"mining_fatigue":  effect.MiningFatigue,
	"strength":        effect.Strength,
	"instant_health":  effect.InstantHealth,
	"instant_damage":  effect.InstantDamage,
	"jump_boost":      effect.JumpBoost,
	"nausea":          effect.Nausea,
	"regeneration":    effect.Regeneration,
	"resistance":      effect.Resistance,
	"fire_resistance": effect.FireResistance,
	"water_breathing": effect.WaterBreathing,
	"invisibility":    effect.Invisibility,
	"blindness":       effect.Blindness,
	"night_vision":    effect.NightVision,
	"hunger":          effect.Hunger,
	"weakness":        effect.Weakness,
	"poison":          effect.Poison,
	"wither":          effect.Wither,
	"health_boost":    effect.HealthBoost,
	"absorption":      effect.Absorption,
	"saturation":      effect.Saturation,
	"levitation":      effect.Levitation,
	"slow_falling":    effect.SlowFalling,
	"darkness":        effect.Darkness,
}

// TypeByName returns the effect type registered under name. Names are snake_case and case-insensitive.
func TypeByName(name string) (effect.Type, bool) {
	t, ok := types[strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))]
	return t, ok
}

// Spec configures a potion effect.
type Spec struct {
	// Type is the effect type. It must be set before the effect is built.
	Type *prop.Property[effect.Type]
	// Duration is the duration of a lasting effect in ticks. It defaults to 20.
	Duration *prop.Property[int]
	// Amplifier is the zero-based strength of the effect. It defaults to 0, which is level 1.
	Amplifier *prop.Property[int]
	// Particles controls if the effect shows particles. It defaults to true.
	Particles *prop.Property[bool]

	ambient bool
	err     error
}

// New builds an effect configured by fn.
func New(fn func(s *Spec)) (effect.Effect, error) {
	s := newSpec()
	fn(s)
	return s.build()
}

func newSpec() *Spec {
	return &Spec{
		Type:      prop.Empty[effect.Type]().Named("type"),
		Duration:  prop.Of(20).Named("duration"),
		Amplifier: prop.Of(0).Named("amplifier"),
		Particles: prop.Of(true).Named("particles"),
	}
}

// HideParticles hides the particles of the effect.
func (s *Spec) HideParticles() {
	s.Particles.Set(false)
}

// Ambient marks the effect as ambient, as if it came from a beacon.
func (s *Spec) Ambient() {
	s.ambient = true
}

// Option sets the duration and amplifier of the effect type that was just selected.
type Option struct {
	s *Spec
}

// Lasting sets the duration in ticks.
func (o *Option) Lasting(ticks int) *Option {
	o.s.Duration.Set(ticks)
	return o
}

// LastingFor sets the duration from a duration string such as "30s" or "1m30s".
func (o *Option) LastingFor(d string) *Option {
	o.s.Duration.Set(int(timeconv.Parse(d) / TickDuration))
	return o
}

// Amplifier sets the zero-based amplifier.
func (o *Option) Amplifier(n int) *Option {
	o.s.Amplifier.Set(n)
	return o
}

func (s *Spec) is(t effect.Type) *Option {
	s.Type.Set(t)
	return &Option{s: s}
}

// Named selects the effect type registered under name. An unknown name makes the build fail.
func (s *Spec) Named(name string) *Option {
	t, ok := TypeByName(name)
	if !ok {
		if s.err == nil {
			s.err = fmt.Errorf("%w: %q", ErrUnknownType, name)
		}
		return &Option{s: s}
	}
	return s.is(t)
}

// Speed selects the speed effect.
func (s *Spec) Speed() *Option { return s.is(effect.Speed) }

// Swiftness selects the speed effect.
func (s *Spec) Swiftness() *Option { return s.is(effect.Speed) }

// Slowness selects the slowness effect.
func (s *Spec) Slowness() *Option { return s.is(effect.Slowness) }

// Haste selects the haste effect.
func (s *Spec) Haste() *Option { return s.is(effect.Haste) }

// MiningFatigue selects the mining fatigue effect.
func (s *Spec) MiningFatigue() *Option { return s.is(effect.MiningFatigue) }

// Strength selects the strength effect.
func (s *Spec) Strength() *Option { return s.is(effect.Strength) }

// InstantHealth selects the instant health effect.
func (s *Spec) InstantHealth() *Option { return s.is(effect.InstantHealth) }

// InstantDamage selects the instant damage effect.
func (s *Spec) InstantDamage() *Option { return s.is(effect.InstantDamage) }

// JumpBoost selects the jump boost effect.
func (s *Spec) JumpBoost() *Option { return s.is(effect.JumpBoost) }

// Nausea selects the nausea effect.
func (s *Spec) Nausea() *Option { return s.is(effect.Nausea) }

// Regeneration selects the regeneration effect.
func (s *Spec) Regeneration() *Option { return s.is(effect.Regeneration) }

// Resistance selects the resistance effect.
func (s *Spec) Resistance() *Option { return s.is(effect.Resistance) }

// FireResistance selects the fire resistance effect.
func (s *Spec) FireResistance() *Option { return s.is(effect.FireResistance) }

// WaterBreathing selects the water breathing effect.
func (s *Spec) WaterBreathing() *Option { return s.is(effect.WaterBreathing) }

// Invisibility selects the invisibility effect.
func (s *Spec) Invisibility() *Option { return s.is(effect.Invisibility) }

// Blindness selects the blindness effect.
func (s *Spec) Blindness() *Option { return s.is(effect.Blindness) }

// NightVision selects the night vision effect.
func (s *Spec) NightVision() *Option { return s.is(effect.NightVision) }

// Hunger selects the hunger effect.
func (s *Spec) Hunger() *Option { return s.is(effect.Hunger) }

// Weakness selects the weakness effect.
func (s *Spec) Weakness() *Option { return s.is(effect.Weakness) }

// Poison selects the poison effect.
func (s *Spec) Poison() *Option { return s.is(effect.Poison) }

// Wither selects the wither effect.
func (s *Spec) Wither() *Option { return s.is(effect.Wither) }

// HealthBoost selects the health boost effect.
func (s *Spec) HealthBoost() *Option { return s.is(effect.HealthBoost) }

// Absorption selects the absorption effect.
func (s *Spec) Absorption() *Option { return s.is(effect.Absorption) }

// Saturation selects the saturation effect.
func (s *Spec) Saturation() *Option { return s.is(effect.Saturation) }

// Levitation selects the levitation effect.
func (s *Spec) Levitation() *Option { return s.is(effect.Levitation) }

// SlowFalling selects the slow falling effect.
func (s *Spec) SlowFalling() *Option { return s.is(effect.SlowFalling) }

// Darkness selects the darkness effect.
func (s *Spec) Darkness() *Option { return s.is(effect.Darkness) }

func (s *Spec) build() (effect.Effect, error) {
	if s.err != nil {
		return effect.Effect{}, s.err
	}
	t, ok := s.Type.Nullable()
	if !ok || t == nil {
		return effect.Effect{}, ErrNoType
	}
	lvl := s.Amplifier.MustGet() + 1
	lasting, ok := t.(effect.LastingType)
	if !ok {
		return effect.NewInstant(t, lvl), nil
	}
	d := time.Duration(s.Duration.MustGet()) * TickDuration
	var e effect.Effect
	if s.ambient {
		e = effect.NewAmbient(lasting, lvl, d)
	} else {
		e = effect.New(lasting, lvl, d)
	}
	if !s.Particles.MustGet() {
		e = e.WithoutParticles()
	}
	return e, nil
}
