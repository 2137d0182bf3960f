package titles

import (
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/player/title"
	"github.com/google/go-cmp/cmp"
)

type recipient struct {
	got []title.Title
}

func (r *recipient) SendTitle(t title.Title) { r.got = append(r.got, t) }

func TestDefaults(t *testing.T) {
	tt := New(func(s *Spec) {})
	if tt.Text() != "" || tt.Subtitle() != "" {
		t.Fatalf("default title %q subtitle %q, want empty", tt.Text(), tt.Subtitle())
	}
	if tt.FadeInDuration() != time.Second || tt.Duration() != 3*time.Second || tt.FadeOutDuration() != time.Second {
		t.Fatalf("default timings %v/%v/%v, want 1s/3s/1s", tt.FadeInDuration(), tt.Duration(), tt.FadeOutDuration())
	}
}

func TestAnimations(t *testing.T) {
	tt := New(func(s *Spec) {
		s.Title.Set("&aWelcome")
		s.Subtitle.Set("&7to the server")
		s.Animations().FadeIn(10).StayFor("5s").FadeOutFor("500ms")
	})
	if tt.Text() != "§aWelcome" || tt.Subtitle() != "§7to the server" {
		t.Fatalf("title %q subtitle %q", tt.Text(), tt.Subtitle())
	}
	if tt.FadeInDuration() != 500*time.Millisecond {
		t.Fatalf("fade in = %v, want 500ms", tt.FadeInDuration())
	}
	if tt.Duration() != 5*time.Second {
		t.Fatalf("stay = %v, want 5s", tt.Duration())
	}
	if tt.FadeOutDuration() != 500*time.Millisecond {
		t.Fatalf("fade out = %v, want 500ms", tt.FadeOutDuration())
	}
}

func TestDontWrapAndSend(t *testing.T) {
	a, b := &recipient{}, &recipient{}
	Send(func(s *Spec) {
		s.Title.Set("&araw")
		s.DontWrap()
	}, a, b)
	if len(a.got) != 1 || len(b.got) != 1 {
		t.Fatalf("title sent %d and %d times, want once each", len(a.got), len(b.got))
	}
	if a.got[0].Text() != "&araw" {
		t.Fatalf("DontWrap title = %q, want it untouched", a.got[0].Text())
	}
}

func TestBuildTwice(t *testing.T) {
	s := newSpec()
	s.Title.Set("&6Welcome")
	s.Subtitle.Set("&7to the server")
	s.Animations().FadeIn(5).StayFor("3s").FadeOut(15)

	first, second := s.build(), s.build()
	type view struct {
		Text, Subtitle        string
		FadeIn, Stay, FadeOut time.Duration
	}
	of := func(tt title.Title) view {
		return view{tt.Text(), tt.Subtitle(), tt.FadeInDuration(), tt.Duration(), tt.FadeOutDuration()}
	}
	if diff := cmp.Diff(of(first), of(second)); diff != "" {
		t.Fatalf("builds differ (-first +second):\n%s", diff)
	}
	if got := of(first); got.Text != "§6Welcome" || got.Stay != 3*time.Second {
		t.Fatalf("title = %+v", got)
	}
}
