package potion

import (
	"errors"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/entity/effect"
)

func TestLastingEffect(t *testing.T) {
	e, err := New(func(s *Spec) {
		s.Speed().LastingFor("30s").Amplifier(1)
		s.HideParticles()
	})
	if err != nil {
		t.Fatalf("build speed: %v", err)
	}
	if e.Type() != effect.Speed {
		t.Fatalf("type = %T, want speed", e.Type())
	}
	if e.Level() != 2 {
		t.Fatalf("level = %d, want 2", e.Level())
	}
	if e.Duration() != 30*time.Second {
		t.Fatalf("duration = %v, want 30s", e.Duration())
	}
	if !e.ParticlesHidden() {
		t.Fatalf("particles not hidden")
	}
}

func TestDefaults(t *testing.T) {
	e, err := New(func(s *Spec) {
		s.Regeneration()
		s.Ambient()
	})
	if err != nil {
		t.Fatalf("build regeneration: %v", err)
	}
	if e.Level() != 1 || e.Duration() != 20*TickDuration || e.ParticlesHidden() || !e.Ambient() {
		t.Fatalf("unexpected defaults: level %d, duration %v, hidden %v, ambient %v",
			e.Level(), e.Duration(), e.ParticlesHidden(), e.Ambient())
	}

	e, err = New(func(s *Spec) {
		s.Named("Night Vision").Lasting(100)
	})
	if err != nil || e.Type() != effect.NightVision || e.Duration() != 5*time.Second {
		t.Fatalf("Named(Night Vision) = %v, %v", e, err)
	}
}

func TestInstantEffect(t *testing.T) {
	e, err := New(func(s *Spec) {
		s.InstantHealth().Amplifier(1)
	})
	if err != nil {
		t.Fatalf("build instant health: %v", err)
	}
	if e.Type() != effect.InstantHealth || e.Level() != 2 || e.Duration() != 0 {
		t.Fatalf("instant effect = %v level %d duration %v", e.Type(), e.Level(), e.Duration())
	}
}

func TestMissingType(t *testing.T) {
	if _, err := New(func(s *Spec) { s.Duration.Set(40) }); !errors.Is(err, ErrNoType) {
		t.Fatalf("build without type returned %v, want ErrNoType", err)
	}
	if _, err := New(func(s *Spec) { s.Named("flight") }); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("unknown name returned %v, want ErrUnknownType", err)
	}
}

func TestBuildTwice(t *testing.T) {
	s := newSpec()
	s.Strength().LastingFor("1m").Amplifier(2)
	s.HideParticles()
	s.Ambient()

	first, err := s.build()
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := s.build()
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if first.Type() != second.Type() || first.Level() != second.Level() || first.Duration() != second.Duration() ||
		first.ParticlesHidden() != second.ParticlesHidden() || first.Ambient() != second.Ambient() {
		t.Fatalf("builds differ: %v and %v", first, second)
	}
	if first.Level() != 3 || first.Duration() != time.Minute {
		t.Fatalf("level %d duration %v", first.Level(), first.Duration())
	}
}
