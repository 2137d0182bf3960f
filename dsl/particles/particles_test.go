package particles

import (
	"errors"
	"image/color"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/particle"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
)

type recorder struct {
	positions []mgl64.Vec3
	particles []world.Particle
}

func (r *recorder) AddParticle(pos mgl64.Vec3, p world.Particle) {
	r.positions = append(r.positions, pos)
	r.particles = append(r.particles, p)
}

func (r *recorder) ShowParticle(pos mgl64.Vec3, p world.Particle) {
	r.AddParticle(pos, p)
}

func TestMissingParticle(t *testing.T) {
	_, err := New(func(s *Spec) {
		s.At().X(1).Y(2).Z(3)
	})
	if !errors.Is(err, ErrParticleNotSet) {
		t.Fatalf("build without particle returned %v, want ErrParticleNotSet", err)
	}
	_, err = New(func(s *Spec) {
		s.Effect().Named("not_a_particle")
	})
	if !errors.Is(err, ErrParticleNotSet) {
		t.Fatalf("build with unknown particle returned %v, want ErrParticleNotSet", err)
	}
}

func TestBuildEffect(t *testing.T) {
	e, err := New(func(s *Spec) {
		s.Effect().Named("Dust")
		s.At().X(1).Y(64).Z(-3)
		s.With().Count(5).Speed(0.2)
		s.Offset().All(0.5)
		s.LongDistance()
		s.Data(255, 0, 128)
	})
	if err != nil {
		t.Fatalf("build dust: %v", err)
	}
	dust, ok := e.Particle.(particle.Dust)
	if !ok {
		t.Fatalf("particle = %T, want particle.Dust", e.Particle)
	}
	if want := (color.RGBA{R: 255, B: 128, A: 255}); dust.Colour != want {
		t.Fatalf("dust colour = %v, want %v", dust.Colour, want)
	}
	if e.Position != (mgl64.Vec3{1, 64, -3}) || e.Offset != (mgl64.Vec3{0.5, 0.5, 0.5}) {
		t.Fatalf("position %v offset %v", e.Position, e.Offset)
	}
	if e.Count != 5 || e.Speed != 0.2 || !e.LongDistance {
		t.Fatalf("count %d speed %v long distance %v", e.Count, e.Speed, e.LongDistance)
	}

	rec := &recorder{}
	e.Spawn(rec)
	if len(rec.positions) != 5 {
		t.Fatalf("spawned %d particles, want 5", len(rec.positions))
	}
}

func TestPositionsWithoutOffset(t *testing.T) {
	e, err := New(func(s *Spec) {
		s.Effect().Is(particle.HugeExplosion{})
		s.At().Vec(mgl64.Vec3{4, 5, 6})
	})
	if err != nil {
		t.Fatalf("build explosion: %v", err)
	}
	pos := e.Positions(rand.New(rand.NewPCG(1, 2)))
	if len(pos) != 1 || pos[0] != (mgl64.Vec3{4, 5, 6}) {
		t.Fatalf("positions = %v, want a single particle at the origin of the effect", pos)
	}

	rec := &recorder{}
	e.Show(rec)
	if len(rec.particles) != 1 {
		t.Fatalf("showed %d particles, want 1", len(rec.particles))
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(registry) {
		t.Fatalf("Names() returned %d names, want %d", len(names), len(registry))
	}
	for _, name := range names {
		if _, ok := lookup(name); !ok {
			t.Fatalf("name %q not resolvable", name)
		}
	}
}

type placedViewer struct {
	recorder
	pos mgl64.Vec3
}

func (v *placedViewer) Position() mgl64.Vec3 { return v.pos }

func TestSpeedMovesParticles(t *testing.T) {
	e, err := New(func(s *Spec) {
		s.Effect().Named("flame")
		s.At().X(10)
		s.With().Count(20).Speed(0.5)
	})
	if err != nil {
		t.Fatalf("build flame: %v", err)
	}
	for _, pos := range e.Positions(rand.New(rand.NewPCG(3, 4))) {
		if d := pos.Sub(e.Position).Len(); math.Abs(d-0.5) > 1e-9 {
			t.Fatalf("particle %v is %v away from the origin, want 0.5", pos, d)
		}
	}
}

func TestViewDistance(t *testing.T) {
	build := func(long bool) Effect {
		e, err := New(func(s *Spec) {
			s.Effect().Named("lava")
			if long {
				s.LongDistance()
			}
		})
		if err != nil {
			t.Fatalf("build lava: %v", err)
		}
		return e
	}
	near := &placedViewer{pos: mgl64.Vec3{0, 0, ViewDistance}}
	far := &placedViewer{pos: mgl64.Vec3{100, 0, 0}}

	normal := build(false)
	normal.Show(near)
	normal.Show(far)
	if len(near.particles) != 1 || len(far.particles) != 0 {
		t.Fatalf("normal effect: near got %d, far got %d", len(near.particles), len(far.particles))
	}
	build(true).Show(far)
	if len(far.particles) != 1 {
		t.Fatalf("long distance effect not shown to a far viewer")
	}
	// Viewers without a position see every effect.
	rec := &recorder{}
	normal.Show(rec)
	if len(rec.particles) != 1 {
		t.Fatalf("viewer without position got %d particles", len(rec.particles))
	}
}

func TestRing(t *testing.T) {
	ring := Ring(2, 4, 0, 0)
	want := []mgl64.Vec3{{2, 0, 0}, {0, 0, 2}, {-2, 0, 0}, {0, 0, -2}}
	if len(ring) != len(want) {
		t.Fatalf("ring has %d points, want %d", len(ring), len(want))
	}
	for i := range want {
		if !ring[i].ApproxEqualThreshold(want[i], 1e-9) {
			t.Fatalf("point %d = %v, want %v", i, ring[i], want[i])
		}
	}
	for _, p := range Ring(1, 8, 90, 0) {
		if math.Abs(p[2]) > 1e-9 {
			t.Fatalf("ring pitched upright has point %v off the XY plane", p)
		}
	}
	if Ring(1, 0, 0, 0) != nil {
		t.Fatalf("ring without points is not nil")
	}

	e, _ := New(func(s *Spec) {
		s.Effect().Named("flame")
		s.At().Y(64)
	})
	rec := &recorder{}
	e.ShowShape(rec, ring)
	e.SpawnShape(rec, ring)
	if len(rec.positions) != 8 || rec.positions[0] != (mgl64.Vec3{2, 64, 0}) {
		t.Fatalf("shape positions = %v", rec.positions)
	}
}

func TestBuildTwice(t *testing.T) {
	s := &Spec{}
	s.Effect().Named("dust")
	s.At().Vec(mgl64.Vec3{1, 2, 3})
	s.With().Count(4).Speed(0.1)
	s.Offset().All(0.2)
	s.Data(10, 20, 30)

	first, err := s.build()
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := s.build()
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("builds differ (-first +second):\n%s", diff)
	}
	first.Data[0] = 99
	if third, _ := s.build(); third.Data[0] != 10 {
		t.Fatalf("build shares data with an earlier effect")
	}
}
