package timeconv

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	cases := map[string]time.Duration{
		"1h3m2m23s":        time.Hour + 5*time.Minute + 23*time.Second,
		"0.5h":             30 * time.Minute,
		"30m":              30 * time.Minute,
		"1 day, 2 hours":   26 * time.Hour,
		"1_000ms":          time.Second,
		"2w":               14 * 24 * time.Hour,
		"1mo":              2628000 * time.Second,
		"250μs":            250 * time.Microsecond,
		"3 minutes 2 secs": 3 * time.Minute,
		"":                 0,
		"5":                0,
	}
	for input, want := range cases {
		if got := Parse(input); got != want {
			t.Fatalf("Parse(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestFormat(t *testing.T) {
	d := Of(1, Month) + Of(29, Day) + Of(23, Hour) + Of(59, Minute) + Of(59, Second)
	got := Format(d, FormatOptions{Until: Second, Spaced: true, Full: true})
	if want := "1 month 29 days 23 hours 59 minutes 59 seconds"; got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}

	d = 3923 * time.Second
	cases := []struct {
		opts FormatOptions
		want string
	}{
		{FormatOptions{Until: Second, Spaced: true}, "1h 5m 23s"},
		{FormatOptions{Until: Second}, "1h5m23s"},
		{FormatOptions{Until: Second, Spaced: true, Full: true}, "1 hour 5 minutes 23 seconds"},
		{FormatOptions{Until: Minute, Spaced: true}, "1h 5m"},
	}
	for _, c := range cases {
		if got := Format(d, c.opts); got != c.want {
			t.Fatalf("Format(%v, %+v) = %q, want %q", d, c.opts, got, c.want)
		}
	}
	if got := Format(0, FormatOptions{}); got != "" {
		t.Fatalf("Format(0) = %q, want empty string", got)
	}
}

func TestUnitByName(t *testing.T) {
	cases := map[string]Unit{
		"ns": Nanosecond, "nanos": Nanosecond, "μs": Microsecond, "mms": Microsecond,
		"millis": Millisecond, "s": Second, "Seconds": Second, "m": Minute, "minute": Minute,
		"h": Hour, "days": Day, "w": Week, "mo": Month, "months": Month,
	}
	for name, want := range cases {
		got, ok := UnitByName(name)
		if !ok || got != want {
			t.Fatalf("UnitByName(%q) = %v, %v, want %v, true", name, got, ok, want)
		}
	}
	if _, ok := UnitByName("fortnight"); ok {
		t.Fatalf("UnitByName accepted an unknown unit")
	}
}

func TestMillisMore(t *testing.T) {
	d, err := Millis(func(s *MillisSpec) {
		_ = s.More(1, s.Hour())
		_ = s.More(2, s.Minutes())
		s.Add(Second, 30)
		s.AddString("500ms")
	})
	if err != nil {
		t.Fatalf("Millis returned error: %v", err)
	}
	if want := time.Hour + 2*time.Minute + 30*time.Second + 500*time.Millisecond; d != want {
		t.Fatalf("Millis() = %v, want %v", d, want)
	}

	var moreErr error
	_, err = Millis(func(s *MillisSpec) {
		moreErr = s.More(1, s.Hours())
	})
	if !errors.Is(moreErr, ErrPluralForOne) || !errors.Is(err, ErrPluralForOne) {
		t.Fatalf("1 with plural unit: More() = %v, Millis() = %v, want ErrPluralForOne", moreErr, err)
	}

	_, err = Millis(func(s *MillisSpec) {
		moreErr = s.More(2, s.Second())
	})
	if !errors.Is(moreErr, ErrSingularForMany) || !errors.Is(err, ErrSingularForMany) {
		t.Fatalf("2 with singular unit: More() = %v, Millis() = %v, want ErrSingularForMany", moreErr, err)
	}
}

func TestStringSpec(t *testing.T) {
	s, err := String(func(s *StringSpec) {
		s.Time.Set(3923 * time.Second)
		s.Unit.Set(Second)
		if err := s.Spaced().And(s.Abbreviated()); err != nil {
			t.Fatalf("chaining distinct options failed: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("String returned error: %v", err)
	}
	if s != "1h 5m 23s" {
		t.Fatalf("String() = %q, want %q", s, "1h 5m 23s")
	}

	s, err = String(func(s *StringSpec) {
		s.Time.Set(3923 * time.Second)
		s.Unit.Set(Second)
		s.Spaced()
	})
	if err != nil || s != "1 hour 5 minutes 23 seconds" {
		t.Fatalf("String() = %q, %v, want full names", s, err)
	}

	_, err = String(func(s *StringSpec) {
		opt := s.Spaced()
		if err := opt.And(opt); !errors.Is(err, ErrSameOption) {
			t.Fatalf("chaining an option with itself returned %v, want ErrSameOption", err)
		}
	})
	if !errors.Is(err, ErrSameOption) {
		t.Fatalf("String() error = %v, want ErrSameOption", err)
	}
}

func TestTicks(t *testing.T) {
	if got := Ticks(Parse("30s")); got != 600 {
		t.Fatalf("Ticks(30s) = %d, want 600", got)
	}
}

func TestBuildTwice(t *testing.T) {
	m := &MillisSpec{}
	if err := m.More(2, m.Minutes()); err != nil {
		t.Fatalf("More: %v", err)
	}
	m.AddString("30s")
	first, err1 := m.build()
	second, err2 := m.build()
	if err1 != nil || err2 != nil || first != second || first != 150*time.Second {
		t.Fatalf("millis builds = (%v, %v), (%v, %v)", first, err1, second, err2)
	}

	s := newStringSpec()
	s.Time.Set(3923 * time.Second)
	s.Unit.Set(Second)
	_ = s.Spaced().And(s.Abbreviated())
	a, err := s.build()
	if err != nil {
		t.Fatalf("first string build: %v", err)
	}
	b, err := s.build()
	if err != nil {
		t.Fatalf("second string build: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("string builds differ (-first +second):\n%s", diff)
	}
}
