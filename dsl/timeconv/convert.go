package timeconv

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/exp/constraints"
)

// Number is any numeric amount of a unit.
type Number interface {
	constraints.Integer | constraints.Float
}

// Of returns the duration of amount units of u. Fractional amounts are rounded to the nearest nanosecond.
func Of[N Number](amount N, u Unit) time.Duration {
	return time.Duration(math.Round(float64(amount) * float64(u.Duration())))
}

// Ticks converts d to game ticks of 50 milliseconds, rounding down.
func Ticks(d time.Duration) int64 {
	return int64(d / (50 * time.Millisecond))
}

// Parse sums every <amount><unit> group in s, such as "1h3m2m23s" or "0.5h". Whitespace, underscores and
// commas are ignored. Groups with an unknown unit or an unreadable amount contribute nothing.
func Parse(s string) time.Duration {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' || r == ',' {
			return -1
		}
		return r
	}, s)

	var (
		total         float64
		amount, label strings.Builder
	)
	flush := func() {
		if label.Len() == 0 {
			return
		}
		if u, ok := UnitByName(label.String()); ok {
			v, _ := strconv.ParseFloat(amount.String(), 64)
			total += v * float64(u.Duration())
		}
		amount.Reset()
		label.Reset()
	}
	for _, r := range s {
		if unicode.IsLetter(r) {
			label.WriteRune(r)
			continue
		}
		flush()
		amount.WriteRune(r)
	}
	flush()
	return time.Duration(math.Round(total))
}

// FormatOptions controls the output of Format.
type FormatOptions struct {
	// Until is the smallest unit included in the output.
	Until Unit
	// Spaced separates the unit groups with a space.
	Spaced bool
	// Full writes the full unit names, such as "5 minutes", instead of abbreviations.
	Full bool
}

// Format writes d as a readable string, starting from the largest unit that fits and descending to
// opts.Until. Units that do not fit in the remainder are skipped, so 3923s formats as "1h5m23s". Weeks are
// never written; days carry them instead.
func Format(d time.Duration, opts FormatOptions) string {
	var sb strings.Builder
	remaining := d
	for i := len(units) - 1; i >= 0; i-- {
		u := units[i]
		if u < opts.Until {
			break
		}
		if u == Week || remaining < u.Duration() {
			continue
		}
		quotient := int64(remaining / u.Duration())
		sb.WriteString(strconv.FormatInt(quotient, 10))
		switch {
		case opts.Full && quotient > 1:
			sb.WriteString(" " + u.Plural())
		case opts.Full:
			sb.WriteString(" " + u.Singular())
		default:
			sb.WriteString(u.Abbreviation())
		}
		remaining -= time.Duration(quotient) * u.Duration()
		if opts.Spaced {
			sb.WriteByte(' ')
		}
	}
	return strings.TrimSpace(sb.String())
}
