// Package chat builds chat messages out of nested parts. A part inherits the colour and formatting of
// its parent unless it sets its own.
package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dm-vev/hikari/dsl/prop"
	"github.com/sandertv/gophertunnel/minecraft/text"
)

// ErrUnknownColour is returned when a part names a colour that has no format code.
var ErrUnknownColour = errors.New("chat: unknown colour")

// Option is the state of a format of a part.
type Option uint8

const (
	// Inherit uses the value of the parent part.
	Inherit Option = iota
	Enabled
	Disabled
)

func (o Option) String() string {
	switch o {
	case Enabled:
		return "true"
	case Disabled:
		return "false"
	}
	return "inherit"
}

func optionOf(p *prop.Property[bool]) Option {
	v, ok := p.Nullable()
	switch {
	case !ok:
		return Inherit
	case v:
		return Enabled
	}
	return Disabled
}

// colours maps colour names to their format codes. Names use the Java edition spelling, and the material
// colours only Bedrock has are prefixed with material_.
var colours = map[string]string{
	"black":              text.Black,
	"dark_blue":          text.DarkBlue,
	"dark_green":         text.DarkGreen,
	"dark_aqua":          text.DarkAqua,
	"dark_red":           text.DarkRed,
	"dark_purple":        text.DarkPurple,
	"gold":               text.Orange,
	"gray":               text.Grey,
	"grey":               text.Grey,
	"dark_gray":          text.DarkGrey,
	"dark_grey":          text.DarkGrey,
	"blue":               text.Blue,
	"green":              text.Green,
	"aqua":               text.Aqua,
	"red":                text.Red,
	"light_purple":       text.Purple,
	"yellow":             text.Yellow,
	"white":              text.White,
	"minecoin_gold":      text.DarkYellow,
	"material_quartz":    text.Quartz,
	"material_iron":      text.Iron,
	"material_netherite": text.Netherite,
	"material_redstone":  text.Redstone,
	"material_copper":    text.Copper,
	"material_gold":      text.Gold,
	"material_emerald":   text.Emerald,
	"material_diamond":   text.Diamond,
	"material_lapis":     text.Lapis,
	"material_amethyst":  text.Amethyst,
	"material_resin":     text.Resin,
}

// colourCodes are the codes that select a colour rather than a format.
const colourCodes = "0123456789abcdefghijmnpqstuv"

// ParseColour returns the format code of a colour name such as "dark_aqua" or a code such as "&b" or "§b".
func ParseColour(s string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(s))
	if code, ok := strings.CutPrefix(c, "&"); ok {
		c = "§" + code
	}
	if code, ok := strings.CutPrefix(c, "§"); ok && len(code) == 1 && strings.Contains(colourCodes, code) {
		return c, nil
	}
	if code, ok := colours[strings.ReplaceAll(c, "-", "_")]; ok {
		return code, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColour, s)
}

// Part is a built piece of a message.
type Part struct {
	Text string
	// Colour is a format code such as "§b", or empty to inherit.
	Colour     string
	Bold       Option
	Italic     Option
	Obfuscated Option
	Extra      []Part
}

// String renders the part and its children as a formatted message.
func (p Part) String() string {
	var sb strings.Builder
	p.render(&sb, style{})
	return sb.String()
}

func (p Part) render(sb *strings.Builder, parent style) {
	st := parent.with(p)
	if p.Text != "" {
		if sb.Len() > 0 {
			sb.WriteString(text.Reset)
		}
		st.write(sb)
		sb.WriteString(p.Text)
	}
	for _, extra := range p.Extra {
		extra.render(sb, st)
	}
}

// style is the formatting a part ends up with after inheritance.
type style struct {
	colour                   string
	bold, italic, obfuscated bool
}

func (st style) with(p Part) style {
	if p.Colour != "" {
		st.colour = p.Colour
	}
	st.bold = p.Bold.resolve(st.bold)
	st.italic = p.Italic.resolve(st.italic)
	st.obfuscated = p.Obfuscated.resolve(st.obfuscated)
	return st
}

func (o Option) resolve(parent bool) bool {
	switch o {
	case Enabled:
		return true
	case Disabled:
		return false
	}
	return parent
}

func (st style) write(sb *strings.Builder) {
	sb.WriteString(st.colour)
	if st.bold {
		sb.WriteString(text.Bold)
	}
	if st.italic {
		sb.WriteString(text.Italic)
	}
	if st.obfuscated {
		sb.WriteString(text.Obfuscated)
	}
}

// Component is a message made of parts that do not share formatting.
type Component []Part

// String renders every part after the other.
func (c Component) String() string {
	return Part{Extra: c}.String()
}
