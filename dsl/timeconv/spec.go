package timeconv

import (
	"errors"
	"time"

	"github.com/dm-vev/hikari/dsl/prop"
)

var (
	// ErrPluralForOne is returned when a value of exactly 1 is paired with a plural unit.
	ErrPluralForOne = errors.New("for a value of 1, use the singular time unit")
	// ErrSingularForMany is returned when a value other than 1 is paired with a singular unit.
	ErrSingularForMany = errors.New("for values that are not 1, use the plural time unit")
	// ErrSameOption is returned when a formatting option is chained with itself.
	ErrSameOption = errors.New("cannot chain the same option")
)

// UnitValue is a unit marked as singular or plural, as used by MillisSpec.More.
type UnitValue struct {
	unit   Unit
	plural bool
}

// Unit returns the unit of the value.
func (v UnitValue) Unit() Unit { return v.unit }

// Plural reports if the value was obtained from the plural name of the unit.
func (v UnitValue) Plural() bool { return v.plural }

// MillisSpec accumulates a duration from amounts of units.
type MillisSpec struct {
	total time.Duration
	err   error
}

// Millis runs fn on a new MillisSpec and returns the accumulated duration. The first error returned by
// More during fn is returned as well.
func Millis(fn func(s *MillisSpec)) (time.Duration, error) {
	s := &MillisSpec{}
	fn(s)
	return s.build()
}

func (s *MillisSpec) build() (time.Duration, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.total, nil
}

// Nanosecond names the nanosecond unit in singular form.
func (*MillisSpec) Nanosecond() UnitValue { return UnitValue{unit: Nanosecond} }

// Nanoseconds names the nanosecond unit in plural form.
func (*MillisSpec) Nanoseconds() UnitValue { return UnitValue{unit: Nanosecond, plural: true} }

// Microsecond names the microsecond unit in singular form.
func (*MillisSpec) Microsecond() UnitValue { return UnitValue{unit: Microsecond} }

// Microseconds names the microsecond unit in plural form.
func (*MillisSpec) Microseconds() UnitValue { return UnitValue{unit: Microsecond, plural: true} }

// Millisecond names the millisecond unit in singular form.
func (*MillisSpec) Millisecond() UnitValue { return UnitValue{unit: Millisecond} }

// Milliseconds names the millisecond unit in plural form.
func (*MillisSpec) Milliseconds() UnitValue { return UnitValue{unit: Millisecond, plural: true} }

// Second names the second unit in singular form.
func (*MillisSpec) Second() UnitValue { return UnitValue{unit: Second} }

// Seconds names the second unit in plural form.
func (*MillisSpec) Seconds() UnitValue { return UnitValue{unit: Second, plural: true} }

// Minute names the minute unit in singular form.
func (*MillisSpec) Minute() UnitValue { return UnitValue{unit: Minute} }

// Minutes names the minute unit in plural form.
func (*MillisSpec) Minutes() UnitValue { return UnitValue{unit: Minute, plural: true} }

// Hour names the hour unit in singular form.
func (*MillisSpec) Hour() UnitValue { return UnitValue{unit: Hour} }

// Hours names the hour unit in plural form.
func (*MillisSpec) Hours() UnitValue { return UnitValue{unit: Hour, plural: true} }

// Day names the day unit in singular form.
func (*MillisSpec) Day() UnitValue { return UnitValue{unit: Day} }

// Days names the day unit in plural form.
func (*MillisSpec) Days() UnitValue { return UnitValue{unit: Day, plural: true} }

// Week names the week unit in singular form.
func (*MillisSpec) Week() UnitValue { return UnitValue{unit: Week} }

// Weeks names the week unit in plural form.
func (*MillisSpec) Weeks() UnitValue { return UnitValue{unit: Week, plural: true} }

// Month names the month unit in singular form.
func (*MillisSpec) Month() UnitValue { return UnitValue{unit: Month} }

// Months names the month unit in plural form.
func (*MillisSpec) Months() UnitValue { return UnitValue{unit: Month, plural: true} }

// More adds value amounts of the unit. A value of 1 must be paired with a singular unit and any other value
// with a plural one, so that the configuration reads naturally. A mismatch is returned immediately and
// also makes Millis fail.
func (s *MillisSpec) More(value float64, u UnitValue) error {
	var err error
	switch {
	case u.plural && value == 1:
		err = ErrPluralForOne
	case !u.plural && value != 1:
		err = ErrSingularForMany
	}
	if err != nil {
		if s.err == nil {
			s.err = err
		}
		return err
	}
	s.Add(u.unit, value)
	return nil
}

// Add adds value amounts of u without any naming checks.
func (s *MillisSpec) Add(u Unit, value float64) {
	s.total += Of(value, u)
}

// AddString adds the duration parsed from str using Parse.
func (s *MillisSpec) AddString(str string) {
	s.total += Parse(str)
}

// StringSpec configures a readable duration string.
type StringSpec struct {
	// Time is the duration to format. It defaults to 0.
	Time *prop.Property[time.Duration]
	// Unit is the smallest unit written. It defaults to Millisecond.
	Unit *prop.Property[Unit]

	spaced, abbreviated bool
	spacedOpt, abbrevOpt *Option
	err                  error
}

// Option is a formatting option of a StringSpec that may be chained with another option.
type Option struct {
	spec *StringSpec
}

// And chains o with other. Both options are already applied when they are obtained, so And only checks
// that an option is not chained with itself.
func (o *Option) And(other *Option) error {
	if o != other {
		return nil
	}
	if o.spec.err == nil {
		o.spec.err = ErrSameOption
	}
	return ErrSameOption
}

// String runs fn on a new StringSpec and returns the formatted duration. Full unit names are used unless
// the spec is marked abbreviated.
func String(fn func(s *StringSpec)) (string, error) {
	s := newStringSpec()
	fn(s)
	return s.build()
}

func newStringSpec() *StringSpec {
	s := &StringSpec{
		Time: prop.Of(time.Duration(0)).Named("time"),
		Unit: prop.Of(Millisecond).Named("unit"),
	}
	s.spacedOpt, s.abbrevOpt = &Option{spec: s}, &Option{spec: s}
	return s
}

// Spaced separates the unit groups with spaces.
func (s *StringSpec) Spaced() *Option {
	s.spaced = true
	return s.spacedOpt
}

// Abbreviated writes unit abbreviations instead of full names.
func (s *StringSpec) Abbreviated() *Option {
	s.abbreviated = true
	return s.abbrevOpt
}

func (s *StringSpec) build() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return Format(s.Time.MustGet(), FormatOptions{
		Until:  s.Unit.MustGet(),
		Spaced: s.spaced,
		Full:   !s.abbreviated,
	}), nil
}
