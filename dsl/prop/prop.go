// Package prop implements the deferred property slot used by the builder specs of the library.
package prop

import (
	"errors"
	"fmt"
)

// ErrAbsent is returned by Get when a property was never set and carries no default.
var ErrAbsent = errors.New("property value is not present")

// Property is a single mutable configuration slot with an optional default. A Property belongs to one
// builder spec and is only mutated while its configuration callback runs. It is not safe for concurrent use.
type Property[T any] struct {
	name string

	value T
	set   bool

	def    T
	hasDef bool
}

// Of returns a Property whose Get falls back to def until Set is called.
func Of[T any](def T) *Property[T] {
	return &Property[T]{def: def, hasDef: true}
}

// Empty returns a Property without a default. Get fails with ErrAbsent until Set is called.
func Empty[T any]() *Property[T] {
	return &Property[T]{}
}

// Named attaches a name to the property that is included in errors returned by Get.
func (p *Property[T]) Named(name string) *Property[T] {
	p.name = name
	return p
}

// Name returns the name passed to Named, if any.
func (p *Property[T]) Name() string {
	return p.name
}

// Set overwrites the current value unconditionally.
func (p *Property[T]) Set(v T) {
	p.value, p.set = v, true
}

// Reset discards the explicitly set value so the property falls back to its default again.
func (p *Property[T]) Reset() {
	var zero T
	p.value, p.set = zero, false
}

// Get returns the set value, or the default if the property was never set. ErrAbsent is returned if neither
// is available.
func (p *Property[T]) Get() (T, error) {
	if v, ok := p.Nullable(); ok {
		return v, nil
	}
	var zero T
	if p.name != "" {
		return zero, fmt.Errorf("%s: %w", p.name, ErrAbsent)
	}
	return zero, ErrAbsent
}

// MustGet returns the value like Get but panics if it is absent. It should only be used after presence was
// checked or for properties that always carry a default.
func (p *Property[T]) MustGet() T {
	v, err := p.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Nullable returns the set value or the default. The bool is false if neither exists, in which case the zero
// value of T is returned.
func (p *Property[T]) Nullable() (T, bool) {
	switch {
	case p.set:
		return p.value, true
	case p.hasDef:
		return p.def, true
	}
	var zero T
	return zero, false
}

// OrElse returns the value like Nullable, using v if nothing is available.
func (p *Property[T]) OrElse(v T) T {
	if val, ok := p.Nullable(); ok {
		return val
	}
	return v
}

// IsPresent reports if Set was called at least once. The default does not count as a present value.
func (p *Property[T]) IsPresent() bool {
	return p.set
}

// Default returns the default passed to Of.
func (p *Property[T]) Default() (T, bool) {
	return p.def, p.hasDef
}

// IfPresent calls f with the value if one was set explicitly.
func (p *Property[T]) IfPresent(f func(T)) {
	if p.set {
		f(p.value)
	}
}
