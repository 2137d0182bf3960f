package text

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestColour(t *testing.T) {
	cases := map[string]string{
		"&aHello &lWorld": "§aHello §lWorld",
		"&CShout":         "§cShout",
		"Tom & Jerry":     "Tom & Jerry",
		"trailing &":      "trailing &",
		"&zNot a code":    "&zNot a code",
		"":                "",
	}
	for input, want := range cases {
		if got := Colour(input); got != want {
			t.Fatalf("Colour(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFill(t *testing.T) {
	got := Fill("&7Hi %name%, you have %count% %unit%.", "name", "Steve", "count", 3, "unit", nil, "dangling")
	if want := "§7Hi Steve, you have 3 null."; got != want {
		t.Fatalf("Fill() = %q, want %q", got, want)
	}
	if got := Fill("%perm%", 5, "ignored"); got != "%perm%" {
		t.Fatalf("Fill() with non-string key = %q, want placeholder untouched", got)
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(1234.567); got != "1,234.57" {
		t.Fatalf("FormatNumber(1234.567) = %q", got)
	}
	if got := FormatNumber(1000000); got != "1,000,000" {
		t.Fatalf("FormatNumber(1000000) = %q", got)
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		v    float64
		sign string
		want string
	}{
		{0.5, "", "50%"},
		{1, "%", "100%"},
		{0.12346, "", "12.35%"},
		{25, " pct", "2,500 pct"},
		{-0.015, "", "-1.5%"},
	}
	for _, c := range cases {
		if got := Percentage(c.v, c.sign); got != c.want {
			t.Fatalf("Percentage(%v, %q) = %q, want %q", c.v, c.sign, got, c.want)
		}
	}
	if got := Percentage(3, ""); got != "300%" {
		t.Fatalf("Percentage(3) = %q", got)
	}
}

func TestChop(t *testing.T) {
	got := Chop("the quick brown fox", 10)
	want := []string{"the quick", "brown fox"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Chop() mismatch (-want +got):\n%s", diff)
	}
}
