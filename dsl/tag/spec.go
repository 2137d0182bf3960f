package tag

import "fmt"

// CompoundSpec configures the entries of a Compound. Every typed binder overwrites the key it names.
type CompoundSpec struct {
	c   Compound
	err error
}

// NewCompound runs fn on an empty CompoundSpec and returns the built compound.
func NewCompound(fn func(s *CompoundSpec)) (Compound, error) {
	return EditCompound(nil, fn)
}

// EditCompound runs fn on a CompoundSpec seeded with a copy of base. base itself is never modified.
func EditCompound(base Compound, fn func(s *CompoundSpec)) (Compound, error) {
	s := &CompoundSpec{c: base.Clone()}
	if s.c == nil {
		s.c = Compound{}
	}
	fn(s)
	return s.build()
}

func (s *CompoundSpec) build() (Compound, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.c.Clone(), nil
}

func (s *CompoundSpec) fail(err error) error {
	if s.err == nil {
		s.err = err
	}
	return err
}

// Byte stores v as a byte tag.
func (s *CompoundSpec) Byte(key string, v byte) { s.c[key] = v }

// Bool stores v as a byte tag holding 1 or 0.
func (s *CompoundSpec) Bool(key string, v bool) { s.c[key] = boolByte(v) }

// Short stores v as a short tag.
func (s *CompoundSpec) Short(key string, v int16) { s.c[key] = v }

// Int stores v as an int tag.
func (s *CompoundSpec) Int(key string, v int32) { s.c[key] = v }

// Long stores v as a long tag.
func (s *CompoundSpec) Long(key string, v int64) { s.c[key] = v }

// Float stores v as a float tag.
func (s *CompoundSpec) Float(key string, v float32) { s.c[key] = v }

// Double stores v as a double tag.
func (s *CompoundSpec) Double(key string, v float64) { s.c[key] = v }

// String stores v as a string tag.
func (s *CompoundSpec) String(key string, v string) { s.c[key] = v }

// ByteArray stores a copy of v as a byte array tag.
func (s *CompoundSpec) ByteArray(key string, v []byte) { s.c[key] = ByteArray(v).clone() }

// IntArray stores a copy of v as an int array tag.
func (s *CompoundSpec) IntArray(key string, v []int32) { s.c[key] = IntArray(v).clone() }

// LongArray stores a copy of v as a long array tag.
func (s *CompoundSpec) LongArray(key string, v []int64) { s.c[key] = LongArray(v).clone() }

// Put stores an arbitrary value under key. Values without an NBT representation are rejected and make the
// build fail.
func (s *CompoundSpec) Put(key string, v any) error {
	n, err := normalise(v)
	if err != nil {
		return s.fail(fmt.Errorf("put %q: %w", key, err))
	}
	s.c[key] = n
	return nil
}

// Compound opens a nested spec for the compound stored under key. An existing compound under key is
// edited in place; any other value is replaced.
func (s *CompoundSpec) Compound(key string, fn func(s *CompoundSpec)) {
	base, _ := s.c[key].(Compound)
	c, err := EditCompound(base, fn)
	if err != nil {
		s.fail(fmt.Errorf("compound %q: %w", key, err))
		return
	}
	s.c[key] = c
}

// List opens a nested spec for the list stored under key. Values are appended to an existing list unless
// the spec is cleared first.
func (s *CompoundSpec) List(key string, fn func(s *ListSpec)) {
	base, _ := s.c[key].(List)
	l, err := EditList(base, fn)
	if err != nil {
		s.fail(fmt.Errorf("list %q: %w", key, err))
		return
	}
	s.c[key] = l
}

// Copy stores a copy of every entry of other, overwriting existing keys.
func (s *CompoundSpec) Copy(other Compound) {
	for k, v := range other {
		s.c[k] = cloneValue(v)
	}
}

// Remove deletes key.
func (s *CompoundSpec) Remove(key string) {
	delete(s.c, key)
}

// Has reports if key is currently set.
func (s *CompoundSpec) Has(key string) bool {
	_, ok := s.c[key]
	return ok
}

// ListSpec configures the values of a List.
type ListSpec struct {
	l   List
	err error
}

// NewList runs fn on an empty ListSpec and returns the built list.
func NewList(fn func(s *ListSpec)) (List, error) {
	return EditList(nil, fn)
}

// EditList runs fn on a ListSpec seeded with a copy of base.
func EditList(base List, fn func(s *ListSpec)) (List, error) {
	s := &ListSpec{l: base.Clone()}
	if s.l == nil {
		s.l = List{}
	}
	fn(s)
	return s.build()
}

func (s *ListSpec) build() (List, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.l.Clone(), nil
}

// Add appends v. The first value decides the tag type of the list; values of another type are rejected and
// make the build fail.
func (s *ListSpec) Add(v any) error {
	n, err := normalise(v)
	if err == nil && len(s.l) > 0 && TypeOf(s.l[0]) != TypeOf(n) {
		err = fmt.Errorf("%w: %v after %v", ErrMixedList, TypeOf(n), TypeOf(s.l[0]))
	}
	if err != nil {
		if s.err == nil {
			s.err = err
		}
		return err
	}
	s.l = append(s.l, n)
	return nil
}

// Byte, Short, Int, Long, Float, Double and String append v with the matching tag type. They fail like Add
// when the list already holds values of another type.
func (s *ListSpec) Byte(v byte) error      { return s.Add(v) }
func (s *ListSpec) Short(v int16) error    { return s.Add(v) }
func (s *ListSpec) Int(v int32) error      { return s.Add(v) }
func (s *ListSpec) Long(v int64) error     { return s.Add(v) }
func (s *ListSpec) Float(v float32) error  { return s.Add(v) }
func (s *ListSpec) Double(v float64) error { return s.Add(v) }
func (s *ListSpec) String(v string) error  { return s.Add(v) }

// Bool appends v as a byte holding 1 or 0.
func (s *ListSpec) Bool(v bool) error { return s.Add(boolByte(v)) }

// Compound appends a compound built by fn.
func (s *ListSpec) Compound(fn func(s *CompoundSpec)) error {
	c, err := NewCompound(fn)
	if err != nil {
		if s.err == nil {
			s.err = err
		}
		return err
	}
	return s.Add(c)
}

// List appends a nested list built by fn.
func (s *ListSpec) List(fn func(s *ListSpec)) error {
	l, err := NewList(fn)
	if err != nil {
		if s.err == nil {
			s.err = err
		}
		return err
	}
	return s.Add(l)
}

// Clear removes every value added so far, including values copied from a base list.
func (s *ListSpec) Clear() {
	s.l = s.l[:0]
}

// Len returns the current number of values.
func (s *ListSpec) Len() int {
	return len(s.l)
}

func (a ByteArray) clone() ByteArray {
	return append(ByteArray(nil), a...)
}

func (a IntArray) clone() IntArray {
	return append(IntArray(nil), a...)
}

func (a LongArray) clone() LongArray {
	return append(LongArray(nil), a...)
}
