package tag

import (
	"fmt"
	"reflect"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// Encoding selects the byte order used by Encode and Decode.
type Encoding = nbt.Encoding

var (
	// NetworkLittleEndian is the encoding used in Bedrock packets.
	NetworkLittleEndian = nbt.NetworkLittleEndian
	// LittleEndian is the encoding used by Bedrock world storage.
	LittleEndian = nbt.LittleEndian
	// BigEndian is the encoding used by Java edition files.
	BigEndian = nbt.BigEndian
)

// Encode writes c as a root compound using enc.
func Encode(c Compound, enc Encoding) ([]byte, error) {
	b, err := nbt.MarshalEncoding(toNBT(c), enc)
	if err != nil {
		return nil, fmt.Errorf("encode compound: %w", err)
	}
	return b, nil
}

// Decode reads a root compound from b using enc.
func Decode(b []byte, enc Encoding) (Compound, error) {
	var m map[string]any
	if err := nbt.UnmarshalEncoding(b, &m, enc); err != nil {
		return nil, fmt.Errorf("decode compound: %w", err)
	}
	return FromNBT(m)
}

// FromNBT converts a map decoded by the gophertunnel NBT decoder to a Compound.
func FromNBT(m map[string]any) (Compound, error) {
	c := make(Compound, len(m))
	for k, v := range m {
		n, err := fromNBT(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		c[k] = n
	}
	return c, nil
}

// ToNBT converts c to the map representation understood by the gophertunnel NBT encoder.
func ToNBT(c Compound) map[string]any {
	return toNBT(c).(map[string]any)
}

// toNBT converts values to their gophertunnel representation. Array tags are fixed size arrays there,
// while slices are encoded as lists.
func toNBT(v any) any {
	switch v := v.(type) {
	case ByteArray:
		return toArray(v)
	case IntArray:
		return toArray(v)
	case LongArray:
		return toArray(v)
	case List:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = toNBT(e)
		}
		return out
	case Compound:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = toNBT(e)
		}
		return out
	}
	return v
}

func toArray[E any, S ~[]E](s S) any {
	arr := reflect.New(reflect.ArrayOf(len(s), reflect.TypeFor[E]())).Elem()
	reflect.Copy(arr, reflect.ValueOf([]E(s)))
	return arr.Interface()
}

func fromNBT(v any) (any, error) {
	switch v := v.(type) {
	case []any:
		l := make(List, 0, len(v))
		for _, e := range v {
			n, err := fromNBT(e)
			if err != nil {
				return nil, err
			}
			l = append(l, n)
		}
		return l, nil
	case map[string]any:
		return FromNBT(v)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array {
		switch rv.Type().Elem().Kind() {
		case reflect.Uint8:
			out := make(ByteArray, rv.Len())
			reflect.Copy(reflect.ValueOf(out), rv)
			return out, nil
		case reflect.Int32:
			out := make(IntArray, rv.Len())
			reflect.Copy(reflect.ValueOf(out), rv)
			return out, nil
		case reflect.Int64:
			out := make(LongArray, rv.Len())
			reflect.Copy(reflect.ValueOf(out), rv)
			return out, nil
		}
	}
	return normalise(v)
}
