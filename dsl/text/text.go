// Package text holds the string helpers shared by the builders: colour codes, placeholders and
// number formatting.
package text

import (
	"fmt"
	"strings"

	"github.com/sandertv/gophertunnel/minecraft/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// colourCodes holds every format code that may follow a '&' or '§'.
const colourCodes = "0123456789abcdefghijklmnopqrstuvABCDEFKLMNOR"

// Colour translates '&' colour codes to '§' codes and renders colour tags such as <red>...</red> the way
// text.Colourf does.
func Colour(s string) string {
	if s == "" {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '&' && i+1 < len(s) && strings.IndexByte(colourCodes, s[i+1]) >= 0 {
			sb.WriteString("§")
			sb.WriteByte(lower(s[i+1]))
			i++
			continue
		}
		sb.WriteByte(s[i])
	}
	if !strings.ContainsRune(s, '<') {
		return sb.String()
	}
	return text.Colourf("%s", sb.String())
}

// Strip removes all colour codes from s.
func Strip(s string) string {
	return text.Clean(Colour(s))
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// Fill replaces every %key% placeholder in s and then applies Colour. kv holds alternating keys and values;
// a nil value is written as "null" and a trailing key without a value is ignored.
func Fill(s string, kv ...any) string {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok || key == "" {
			continue
		}
		val := "null"
		if kv[i+1] != nil {
			val = fmt.Sprint(kv[i+1])
		}
		s = strings.ReplaceAll(s, "%"+key+"%", val)
	}
	return Colour(s)
}

var printer = message.NewPrinter(language.English)

// FormatNumber formats v with grouped thousands and at most two fraction digits, such as "1,234.57".
func FormatNumber[N ~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64](v N) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// Percentage formats v as a percentage, so 0.5 becomes "50%". sign replaces the "%" suffix when it is
// not empty.
func Percentage[N ~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64](v N, sign string) string {
	if sign == "" {
		sign = "%"
	}
	return FormatNumber(float64(v)*100) + sign
}

// Chop splits s on spaces into lines of roughly maxLength characters. Words longer than maxLength are kept
// on a line of their own.
func Chop(s string, maxLength int) []string {
	var (
		lines []string
		sb    strings.Builder
	)
	for _, word := range strings.Split(s, " ") {
		if sb.Len() > 0 && sb.Len()+len(word) > maxLength-1 {
			lines = append(lines, strings.TrimSpace(sb.String()))
			sb.Reset()
			sb.WriteString(word)
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(word)
	}
	if sb.Len() > 0 {
		lines = append(lines, sb.String())
	}
	return lines
}
