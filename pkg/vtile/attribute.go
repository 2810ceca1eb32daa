package vtile

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind is the scalar type held by a Value.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is a scalar attribute value: string, integer, float or boolean.
// The zero Value is the empty string.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating-point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the scalar type of v.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload; "" unless Kind is KindString.
func (v Value) Str() string { return v.s }

// Int64 returns the integer payload; 0 unless Kind is KindInt.
func (v Value) Int64() int64 { return v.i }

// Float64 returns the float payload; 0 unless Kind is KindFloat.
func (v Value) Float64() float64 { return v.f }

// Boolean returns the boolean payload; false unless Kind is KindBool.
func (v Value) Boolean() bool { return v.b }

// Interface returns the payload as a plain Go value (string, int64,
// float64 or bool).
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	default:
		return v.s
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// ValueOf converts a dynamically typed scalar into a Value, keeping its
// kind. ok is false for nil. Non-scalar values return an error.
func ValueOf(x interface{}) (v Value, ok bool, err error) {
	switch x := x.(type) {
	case nil:
		return Value{}, false, nil
	case string:
		return String(x), true, nil
	case bool:
		return Bool(x), true, nil
	case int:
		return Int(int64(x)), true, nil
	case int8:
		return Int(int64(x)), true, nil
	case int16:
		return Int(int64(x)), true, nil
	case int32:
		return Int(int64(x)), true, nil
	case int64:
		return Int(x), true, nil
	case uint:
		return Int(int64(x)), true, nil
	case uint8:
		return Int(int64(x)), true, nil
	case uint16:
		return Int(int64(x)), true, nil
	case uint32:
		return Int(int64(x)), true, nil
	case uint64:
		if x > math.MaxInt64 {
			return Float(float64(x)), true, nil
		}
		return Int(int64(x)), true, nil
	case float32:
		return Float(float64(x)), true, nil
	case float64:
		return Float(x), true, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i), true, nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, false, err
		}
		return Float(f), true, nil
	case Value:
		return x, true, nil
	default:
		return Value{}, false, fmt.Errorf("unsupported value type %T", x)
	}
}

// propertyValue converts a decoded JSON property. JSON has a single number
// type, so integral floats become KindInt.
func propertyValue(x interface{}) (Value, bool, error) {
	if f, ok := x.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return Int(int64(f)), true, nil
	}
	return ValueOf(x)
}

// Attribute is one named attribute value.
type Attribute struct {
	Name  string
	Value Value
}

// Attributes is an ordered attribute mapping.
type Attributes []Attribute

// AttributesFromMap converts a decoded JSON properties map into Attributes
// ordered by name. Nil values are dropped and integral numbers become
// KindInt.
func AttributesFromMap(m map[string]interface{}) (Attributes, error) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)

	attrs := make(Attributes, 0, len(names))
	for _, name := range names {
		v, ok, err := propertyValue(m[name])
		if err != nil {
			return nil, &ErrUnsupportedAttribute{Name: name, Value: m[name]}
		}
		if !ok {
			continue
		}
		attrs = append(attrs, Attribute{Name: name, Value: v})
	}
	return attrs, nil
}

// Get returns the value of the first attribute with the given name.
func (a Attributes) Get(name string) (Value, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return Value{}, false
}

// Map returns the attributes as a properties map.
func (a Attributes) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(a))
	for _, attr := range a {
		m[attr.Name] = attr.Value.Interface()
	}
	return m
}
