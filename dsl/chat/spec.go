package chat

import "github.com/dm-vev/hikari/dsl/prop"

// Spec configures a Part.
type Spec struct {
	Text *prop.Property[string]
	// Colour is passed to ParseColour. Leaving it unset inherits the colour of the parent.
	Colour *prop.Property[string]
	// Formats left unset inherit the value of the parent.
	Bold       *prop.Property[bool]
	Italic     *prop.Property[bool]
	Obfuscated *prop.Property[bool]

	extra []Part
	err   error
}

// New builds a part configured by fn.
func New(fn func(s *Spec)) (Part, error) {
	s := newSpec()
	fn(s)
	return s.build()
}

func newSpec() *Spec {
	return &Spec{
		Text:       prop.Of("").Named("text"),
		Colour:     prop.Empty[string]().Named("colour"),
		Bold:       prop.Empty[bool]().Named("bold"),
		Italic:     prop.Empty[bool]().Named("italic"),
		Obfuscated: prop.Empty[bool]().Named("obfuscated"),
	}
}

// Extra builds a child part. Children are rendered after the text of the part, in the order added.
func (s *Spec) Extra(fn func(s *Spec)) {
	p, err := New(fn)
	if err != nil {
		if s.err == nil {
			s.err = err
		}
		return
	}
	s.extra = append(s.extra, p)
}

func (s *Spec) build() (Part, error) {
	if s.err != nil {
		return Part{}, s.err
	}
	p := Part{
		Text:       s.Text.MustGet(),
		Bold:       optionOf(s.Bold),
		Italic:     optionOf(s.Italic),
		Obfuscated: optionOf(s.Obfuscated),
		Extra:      append([]Part(nil), s.extra...),
	}
	if c, ok := s.Colour.Nullable(); ok {
		code, err := ParseColour(c)
		if err != nil {
			return Part{}, err
		}
		p.Colour = code
	}
	return p, nil
}

// Recipient is anything a message can be sent to. *player.Player implements it.
type Recipient interface {
	Message(a ...any)
}

// Send builds a part and sends it to every recipient passed. Nothing is sent if the part fails to build.
func Send(fn func(s *Spec), recipients ...Recipient) (Part, error) {
	p, err := New(fn)
	if err != nil {
		return Part{}, err
	}
	msg := p.String()
	for _, r := range recipients {
		r.Message(msg)
	}
	return p, nil
}
