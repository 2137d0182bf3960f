// Package titles builds titles shown to players.
package titles

import (
	"time"

	"github.com/df-mc/dragonfly/server/player/title"
	"github.com/dm-vev/hikari/dsl/prop"
	"github.com/dm-vev/hikari/dsl/text"
	"github.com/dm-vev/hikari/dsl/timeconv"
)

// TickDuration is the length of one game tick. Title timings are expressed in ticks.
const TickDuration = 50 * time.Millisecond

// Spec configures a title.
type Spec struct {
	Title    *prop.Property[string]
	Subtitle *prop.Property[string]
	// FadeIn, Stay and FadeOut are durations in ticks.
	FadeIn  *prop.Property[int64]
	Stay    *prop.Property[int64]
	FadeOut *prop.Property[int64]

	dontWrap bool
}

// New builds a title configured by fn.
func New(fn func(s *Spec)) title.Title {
	s := newSpec()
	fn(s)
	return s.build()
}

func newSpec() *Spec {
	return &Spec{
		Title:    prop.Of("").Named("title"),
		Subtitle: prop.Of("").Named("subtitle"),
		FadeIn:   prop.Of[int64](20).Named("fade_in"),
		Stay:     prop.Of[int64](60).Named("stay"),
		FadeOut:  prop.Of[int64](20).Named("fade_out"),
	}
}

// Recipient is anything a title can be sent to. *player.Player implements it.
type Recipient interface {
	SendTitle(t title.Title)
}

// Send builds a title and sends it to every recipient passed.
func Send(fn func(s *Spec), recipients ...Recipient) title.Title {
	t := New(fn)
	for _, r := range recipients {
		r.SendTitle(t)
	}
	return t
}

// DontWrap sends the title and subtitle verbatim, without translating colour codes.
func (s *Spec) DontWrap() {
	s.dontWrap = true
}

// Animations returns an option to set all timings in one chain.
func (s *Spec) Animations() *AnimationsOption {
	return &AnimationsOption{s: s}
}

// AnimationsOption sets the timings of a title.
type AnimationsOption struct {
	s *Spec
}

// FadeIn sets the fade in time in ticks.
func (o *AnimationsOption) FadeIn(ticks int64) *AnimationsOption {
	o.s.FadeIn.Set(ticks)
	return o
}

// Stay sets how many ticks the title stays on screen.
func (o *AnimationsOption) Stay(ticks int64) *AnimationsOption {
	o.s.Stay.Set(ticks)
	return o
}

// FadeOut sets the fade out time in ticks.
func (o *AnimationsOption) FadeOut(ticks int64) *AnimationsOption {
	o.s.FadeOut.Set(ticks)
	return o
}

// FadeInFor sets the fade in time from a duration string such as "1s" or "500ms".
func (o *AnimationsOption) FadeInFor(d string) *AnimationsOption {
	return o.FadeIn(timeconv.Ticks(timeconv.Parse(d)))
}

// StayFor sets the stay time from a duration string.
func (o *AnimationsOption) StayFor(d string) *AnimationsOption {
	return o.Stay(timeconv.Ticks(timeconv.Parse(d)))
}

// FadeOutFor sets the fade out time from a duration string.
func (o *AnimationsOption) FadeOutFor(d string) *AnimationsOption {
	return o.FadeOut(timeconv.Ticks(timeconv.Parse(d)))
}

func (s *Spec) build() title.Title {
	main, sub := s.Title.MustGet(), s.Subtitle.MustGet()
	if !s.dontWrap {
		main, sub = text.Colour(main), text.Colour(sub)
	}
	return title.New(main).
		WithSubtitle(sub).
		WithFadeInDuration(ticks(s.FadeIn.MustGet())).
		WithDuration(ticks(s.Stay.MustGet())).
		WithFadeOutDuration(ticks(s.FadeOut.MustGet()))
}

func ticks(n int64) time.Duration {
	return time.Duration(max(n, 0)) * TickDuration
}
