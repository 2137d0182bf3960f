// Package particles builds particle effects that can be spawned in a world or shown to a single viewer.
package particles

import (
	"errors"
	"image/color"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/particle"
	"github.com/dm-vev/hikari/dsl/vecmath"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// ViewDistance is the distance up to which viewers are shown an effect.
	ViewDistance = 32.0
	// LongViewDistance replaces ViewDistance for effects marked LongDistance.
	LongViewDistance = 256.0
)

// ErrParticleNotSet is returned when an effect is built without a particle.
var ErrParticleNotSet = errors.New("particle type not set")

// factory creates a particle, using c for particles that carry a colour.
type factory func(c color.RGBA) world.Particle

var registry = map[string]factory{
	"flame":          func(c color.RGBA) world.Particle { return particle.Flame{Colour: c} },
	"dust":           func(c color.RGBA) world.Particle { return particle.Dust{Colour: c} },
	"redstone":       func(c color.RGBA) world.Particle { return particle.Dust{Colour: c} },
	"splash":         func(c color.RGBA) world.Particle { return particle.Splash{Colour: c} },
	"effect":         func(c color.RGBA) world.Particle { return particle.Effect{Colour: c} },
	"huge_explosion": func(color.RGBA) world.Particle { return particle.HugeExplosion{} },
	"force_field":    func(color.RGBA) world.Particle { return particle.BlockForceField{} },
	"bone_meal":      func(color.RGBA) world.Particle { return particle.BoneMeal{} },
	"evaporate":      func(color.RGBA) world.Particle { return particle.Evaporate{} },
	"water_drip":     func(color.RGBA) world.Particle { return particle.WaterDrip{} },
	"lava_drip":      func(color.RGBA) world.Particle { return particle.LavaDrip{} },
	"lava":           func(color.RGBA) world.Particle { return particle.Lava{} },
	"entity_flame":   func(color.RGBA) world.Particle { return particle.EntityFlame{} },
	"egg_smash":      func(color.RGBA) world.Particle { return particle.EggSmash{} },
	"snowball_poof":  func(color.RGBA) world.Particle { return particle.SnowballPoof{} },
}

// Names returns the names accepted by ParticleOption.Named in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lookup(name string) (factory, bool) {
	f, ok := registry[strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))]
	return f, ok
}

// Effect is a built particle effect.
type Effect struct {
	Particle world.Particle
	Position mgl64.Vec3
	// Offset scales the normally distributed spread of the particles on each axis.
	Offset mgl64.Vec3
	Count  int
	// Speed moves every particle this many blocks further in a random direction.
	Speed float64
	// LongDistance shows the effect to viewers up to LongViewDistance away instead of ViewDistance.
	LongDistance bool
	Data         []int
}

// ParticleAdder adds particles to a world. *world.Tx implements it.
type ParticleAdder interface {
	AddParticle(pos mgl64.Vec3, p world.Particle)
}

// Viewer shows particles to a single viewer. *player.Player implements it.
type Viewer interface {
	ShowParticle(pos mgl64.Vec3, p world.Particle)
}

// positioned is implemented by viewers with a position, such as *player.Player.
type positioned interface {
	Position() mgl64.Vec3
}

// Positions returns the positions the effect spawns particles at. At least one particle is spawned; every
// particle is displaced from Position by a normally distributed amount scaled by Offset on each axis, then
// moved Speed blocks in a random direction.
func (e Effect) Positions(r *rand.Rand) []mgl64.Vec3 {
	n := max(e.Count, 1)
	norm := rand.NormFloat64
	if r != nil {
		norm = r.NormFloat64
	}
	out := make([]mgl64.Vec3, n)
	for i := range out {
		pos := e.Position.Add(mgl64.Vec3{
			norm() * e.Offset[0],
			norm() * e.Offset[1],
			norm() * e.Offset[2],
		})
		if e.Speed != 0 {
			dir := vecmath.Normalize(mgl64.Vec3{norm(), norm(), norm()})
			pos = pos.Add(dir.Mul(e.Speed))
		}
		out[i] = pos
	}
	return out
}

// Visible reports if v is close enough to see the effect. Viewers without a position always see it.
func (e Effect) Visible(v Viewer) bool {
	p, ok := v.(positioned)
	if !ok {
		return true
	}
	limit := ViewDistance
	if e.LongDistance {
		limit = LongViewDistance
	}
	return p.Position().Sub(e.Position).Len() <= limit
}

// Spawn adds the particles of the effect to a world.
func (e Effect) Spawn(tx ParticleAdder) {
	for _, pos := range e.Positions(nil) {
		tx.AddParticle(pos, e.Particle)
	}
}

// Show shows the particles of the effect to v only. Nothing is shown when v is out of range.
func (e Effect) Show(v Viewer) {
	if !e.Visible(v) {
		return
	}
	for _, pos := range e.Positions(nil) {
		v.ShowParticle(pos, e.Particle)
	}
}

// ShowShape shows one particle at Position plus each of offsets to v, without any random spread.
func (e Effect) ShowShape(v Viewer, offsets []mgl64.Vec3) {
	if !e.Visible(v) {
		return
	}
	for _, off := range offsets {
		v.ShowParticle(e.Position.Add(off), e.Particle)
	}
}

// SpawnShape adds one particle at Position plus each of offsets to a world.
func (e Effect) SpawnShape(tx ParticleAdder, offsets []mgl64.Vec3) {
	for _, off := range offsets {
		tx.AddParticle(e.Position.Add(off), e.Particle)
	}
}

// Ring returns points offsets evenly spaced on a horizontal circle of radius, tilted by pitch degrees around
// the X axis and turned by yaw degrees around the Y axis.
func Ring(radius float64, points int, pitch, yaw float64) []mgl64.Vec3 {
	if points < 1 {
		return nil
	}
	out := make([]mgl64.Vec3, points)
	step := 360 / float64(points)
	for i := range out {
		p := vecmath.RotateY(mgl64.Vec3{radius, 0, 0}, step*float64(i))
		out[i] = vecmath.RotateY(vecmath.RotateX(p, pitch), yaw)
	}
	return out
}

// Spec configures a particle effect.
type Spec struct {
	particle     factory
	position     mgl64.Vec3
	offset       mgl64.Vec3
	count        int
	speed        float64
	longDistance bool
	data         []int
}

// New builds an effect configured by fn. The effect fails to build if no particle was selected.
func New(fn func(s *Spec)) (Effect, error) {
	s := &Spec{}
	fn(s)
	return s.build()
}

// ParticleOption selects the particle of an effect.
type ParticleOption struct{ s *Spec }

// Named selects the particle registered under name. Unknown names leave the particle unset.
func (o ParticleOption) Named(name string) {
	if f, ok := lookup(name); ok {
		o.s.particle = f
	}
}

// Is selects p.
func (o ParticleOption) Is(p world.Particle) {
	if p == nil {
		return
	}
	o.s.particle = func(color.RGBA) world.Particle { return p }
}

// LocationOption sets the position of an effect.
type LocationOption struct{ s *Spec }

// X, Y and Z set one coordinate of the position.
func (o LocationOption) X(x float64) LocationOption { o.s.position[0] = x; return o }
func (o LocationOption) Y(y float64) LocationOption { o.s.position[1] = y; return o }
func (o LocationOption) Z(z float64) LocationOption { o.s.position[2] = z; return o }

// Vec sets all coordinates at once.
func (o LocationOption) Vec(v mgl64.Vec3) LocationOption { o.s.position = v; return o }

// CountOption sets the amount and speed of an effect.
type CountOption struct{ s *Spec }

// Count sets the number of particles. At least one particle is always spawned.
func (o CountOption) Count(n int) CountOption { o.s.count = n; return o }

// Speed sets how far particles move from their spawn point.
func (o CountOption) Speed(v float64) CountOption { o.s.speed = v; return o }

// OffsetOption sets the spread of an effect on each axis.
type OffsetOption struct{ s *Spec }

// X, Y and Z set the spread on one axis.
func (o OffsetOption) X(x float64) OffsetOption { o.s.offset[0] = x; return o }
func (o OffsetOption) Y(y float64) OffsetOption { o.s.offset[1] = y; return o }
func (o OffsetOption) Z(z float64) OffsetOption { o.s.offset[2] = z; return o }

// All sets the same spread on every axis.
func (o OffsetOption) All(v float64) { o.s.offset = mgl64.Vec3{v, v, v} }

// Effect selects the particle.
func (s *Spec) Effect() ParticleOption { return ParticleOption{s: s} }

// At sets the position.
func (s *Spec) At() LocationOption { return LocationOption{s: s} }

// With sets the amount and speed.
func (s *Spec) With() CountOption { return CountOption{s: s} }

// Offset sets the spread.
func (s *Spec) Offset() OffsetOption { return OffsetOption{s: s} }

// LongDistance marks the effect as visible from far away.
func (s *Spec) LongDistance() { s.longDistance = true }

// Data sets extra particle data. For coloured particles the values are read as red, green, blue and an
// optional alpha component.
func (s *Spec) Data(values ...int) { s.data = slices.Clone(values) }

func (s *Spec) build() (Effect, error) {
	if s.particle == nil {
		return Effect{}, ErrParticleNotSet
	}
	return Effect{
		Particle:     s.particle(colourOf(s.data)),
		Position:     s.position,
		Offset:       s.offset,
		Count:        s.count,
		Speed:        s.speed,
		LongDistance: s.longDistance,
		Data:         slices.Clone(s.data),
	}, nil
}

func colourOf(data []int) color.RGBA {
	c := color.RGBA{A: 0xff}
	channels := []*uint8{&c.R, &c.G, &c.B, &c.A}
	for i, v := range data {
		if i >= len(channels) {
			break
		}
		*channels[i] = uint8(min(max(v, 0), 0xff))
	}
	return c
}
