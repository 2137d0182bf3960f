// Package timeconv converts between durations, compact duration strings such as "1h5m" and readable
// strings such as "1 hour 5 minutes".
package timeconv

import (
	"strings"
	"time"
)

// Unit is a unit of time ordered from the smallest to the largest.
type Unit uint8

const (
	Nanosecond Unit = iota
	Microsecond
	Millisecond
	Second
	Minute
	Hour
	Day
	Week
	Month
)

// units lists every Unit in ascending order.
var units = [...]Unit{Nanosecond, Microsecond, Millisecond, Second, Minute, Hour, Day, Week, Month}

var unitInfo = [...]struct {
	d      time.Duration
	abbrev string
	name   string
}{
	Nanosecond:  {time.Nanosecond, "ns", "nanosecond"},
	Microsecond: {time.Microsecond, "μs", "microsecond"},
	Millisecond: {time.Millisecond, "ms", "millisecond"},
	Second:      {time.Second, "s", "second"},
	Minute:      {time.Minute, "m", "minute"},
	Hour:        {time.Hour, "h", "hour"},
	Day:         {24 * time.Hour, "d", "day"},
	Week:        {7 * 24 * time.Hour, "w", "week"},
	// A month is 2.628e9 milliseconds, a twelfth of a 365-day year.
	Month: {2628000 * time.Second, "mo", "month"},
}

// Duration returns the length of one u.
func (u Unit) Duration() time.Duration {
	if int(u) >= len(unitInfo) {
		return 0
	}
	return unitInfo[u].d
}

// Abbreviation returns the short suffix of the unit, such as "ms" or "mo".
func (u Unit) Abbreviation() string {
	if int(u) >= len(unitInfo) {
		return ""
	}
	return unitInfo[u].abbrev
}

// Singular returns the full singular name of the unit.
func (u Unit) Singular() string {
	if int(u) >= len(unitInfo) {
		return ""
	}
	return unitInfo[u].name
}

// Plural returns the full plural name of the unit.
func (u Unit) Plural() string {
	if int(u) >= len(unitInfo) {
		return ""
	}
	return unitInfo[u].name + "s"
}

// String returns the singular name of the unit.
func (u Unit) String() string {
	return u.Singular()
}

// Units returns every unit from the smallest to the largest.
func Units() []Unit {
	return units[:]
}

// UnitByName looks up a unit by one of its names or abbreviations. Names are case-sensitive apart from
// the full names, which are matched case-insensitively.
func UnitByName(name string) (Unit, bool) {
	switch name {
	case "ns", "nano", "nanos":
		return Nanosecond, true
	case "mms", "μs", "us", "micro", "micros":
		return Microsecond, true
	case "ms", "milli", "millis":
		return Millisecond, true
	case "s":
		return Second, true
	case "m":
		return Minute, true
	case "h":
		return Hour, true
	case "d":
		return Day, true
	case "w":
		return Week, true
	case "mo":
		return Month, true
	}
	lower := strings.ToLower(name)
	for _, u := range units {
		if lower == u.Singular() || lower == u.Plural() {
			return u, true
		}
	}
	return 0, false
}
