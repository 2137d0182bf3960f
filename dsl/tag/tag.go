// Package tag builds NBT compounds and lists that may be attached to item stacks or written with the
// gophertunnel NBT encoder.
package tag

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Compound is an NBT compound tag. Values are one of byte, int16, int32, int64, float32, float64, string,
// ByteArray, IntArray, LongArray, List or Compound.
type Compound map[string]any

// List is an NBT list tag. All elements of a List share the same tag type.
type List []any

type (
	// ByteArray is an NBT byte array tag.
	ByteArray []byte
	// IntArray is an NBT int array tag.
	IntArray []int32
	// LongArray is an NBT long array tag.
	LongArray []int64
)

// Type identifies the NBT tag type of a value.
type Type uint8

const (
	TypeEnd Type = iota
	TypeByte
	TypeShort
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeByteArray
	TypeString
	TypeList
	TypeCompound
	TypeIntArray
	TypeLongArray
)

var typeNames = [...]string{"end", "byte", "short", "int", "long", "float", "double", "byte array", "string", "list", "compound", "int array", "long array"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

var (
	// ErrUnsupportedValue is returned for values that have no NBT representation.
	ErrUnsupportedValue = errors.New("unsupported NBT value")
	// ErrMixedList is returned when a value is added to a list holding values of another tag type.
	ErrMixedList = errors.New("list values must share a single tag type")
)

// TypeOf returns the tag type of a normalised value.
func TypeOf(v any) Type {
	switch v.(type) {
	case byte:
		return TypeByte
	case int16:
		return TypeShort
	case int32:
		return TypeInt
	case int64:
		return TypeLong
	case float32:
		return TypeFloat
	case float64:
		return TypeDouble
	case string:
		return TypeString
	case ByteArray:
		return TypeByteArray
	case IntArray:
		return TypeIntArray
	case LongArray:
		return TypeLongArray
	case List:
		return TypeList
	case Compound:
		return TypeCompound
	}
	return TypeEnd
}

// normalise converts v to one of the value types held by Compound and List, copying slices and maps so
// that the result never aliases v. Plain ints are stored as int tags and bools as byte tags.
func normalise(v any) (any, error) {
	switch v := v.(type) {
	case byte, int16, int32, int64, float32, float64, string:
		return v, nil
	case int8:
		return byte(v), nil
	case bool:
		return boolByte(v), nil
	case int:
		// Values that do not fit an int tag are stored as a long tag.
		if v < math.MinInt32 || v > math.MaxInt32 {
			return int64(v), nil
		}
		return int32(v), nil
	case []byte:
		return ByteArray(slices.Clone(v)), nil
	case ByteArray:
		return slices.Clone(v), nil
	case []int32:
		return IntArray(slices.Clone(v)), nil
	case IntArray:
		return slices.Clone(v), nil
	case []int64:
		return LongArray(slices.Clone(v)), nil
	case LongArray:
		return slices.Clone(v), nil
	case []any:
		return normaliseList(v)
	case List:
		return normaliseList(v)
	case map[string]any:
		return normaliseCompound(v)
	case Compound:
		return normaliseCompound(v)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func normaliseList(values []any) (List, error) {
	l := make(List, 0, len(values))
	for _, v := range values {
		n, err := normalise(v)
		if err != nil {
			return nil, err
		}
		if len(l) > 0 && TypeOf(l[0]) != TypeOf(n) {
			return nil, fmt.Errorf("%w: %v after %v", ErrMixedList, TypeOf(n), TypeOf(l[0]))
		}
		l = append(l, n)
	}
	return l, nil
}

func normaliseCompound(m map[string]any) (Compound, error) {
	c := make(Compound, len(m))
	for k, v := range m {
		n, err := normalise(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		c[k] = n
	}
	return c, nil
}

// Clone returns a deep copy of c.
func (c Compound) Clone() Compound {
	if c == nil {
		return nil
	}
	out := make(Compound, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

// Clone returns a deep copy of l.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, v := range l {
		out[i] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case ByteArray:
		return slices.Clone(v)
	case IntArray:
		return slices.Clone(v)
	case LongArray:
		return slices.Clone(v)
	case List:
		return v.Clone()
	case Compound:
		return v.Clone()
	}
	return v
}

// Value returns the value stored under key if it has type T.
func Value[T any](c Compound, key string) (T, bool) {
	v, ok := c[key].(T)
	return v, ok
}

// Keys returns the keys of c in sorted order.
func (c Compound) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}

// String returns the SNBT representation of c with keys sorted.
func (c Compound) String() string {
	var sb strings.Builder
	writeSNBT(&sb, c)
	return sb.String()
}

// String returns the SNBT representation of l.
func (l List) String() string {
	var sb strings.Builder
	writeSNBT(&sb, l)
	return sb.String()
}

// Hash returns a 64-bit hash of the SNBT representation of c. Equal compounds always hash equally.
func (c Compound) Hash() uint64 {
	return xxhash.Sum64String(c.String())
}

func writeSNBT(sb *strings.Builder, v any) {
	switch v := v.(type) {
	case byte:
		sb.WriteString(strconv.Itoa(int(v)) + "b")
	case int16:
		sb.WriteString(strconv.Itoa(int(v)) + "s")
	case int32:
		sb.WriteString(strconv.Itoa(int(v)))
	case int64:
		sb.WriteString(strconv.FormatInt(v, 10) + "L")
	case float32:
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32) + "f")
	case float64:
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64) + "d")
	case string:
		sb.WriteString(strconv.Quote(v))
	case ByteArray:
		sb.WriteString("[B;")
		for i, b := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(int(b)) + "b")
		}
		sb.WriteByte(']')
	case IntArray:
		sb.WriteString("[I;")
		for i, n := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(int(n)))
		}
		sb.WriteByte(']')
	case LongArray:
		sb.WriteString("[L;")
		for i, n := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(n, 10) + "L")
		}
		sb.WriteByte(']')
	case List:
		sb.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeSNBT(sb, e)
		}
		sb.WriteByte(']')
	case Compound:
		sb.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				sb.WriteByte(',')
			}
			if simpleKey(k) {
				sb.WriteString(k)
			} else {
				sb.WriteString(strconv.Quote(k))
			}
			sb.WriteByte(':')
			writeSNBT(sb, v[k])
		}
		sb.WriteByte('}')
	}
}

func simpleKey(k string) bool {
	if k == "" {
		return false
	}
	for _, r := range k {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.', r == '+':
		default:
			return false
		}
	}
	return true
}
