// Package sweep contains the parameter model of a scan and the expansion of
// a parameter sweep into concrete configurations.
package sweep

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

// Value kinds.
const (
	Invalid Kind = iota
	Int
	Float
	Text
	Tuple
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Text:
		return "text"
	case Tuple:
		return "tuple"
	}
	return "invalid"
}

// Value is a single parameter value: an integer, a float, a string, or a
// fixed-size tuple of those scalars. A tuple is always handled as one unit.
type Value struct {
	kind  Kind
	i     int64
	f     float64
	s     string
	elems []Value
}

// IntValue returns an integer Value.
func IntValue(i int64) Value {
	return Value{kind: Int, i: i}
}

// FloatValue returns a float Value.
func FloatValue(f float64) Value {
	return Value{kind: Float, f: f}
}

// TextValue returns a string Value.
func TextValue(s string) Value {
	return Value{kind: Text, s: s}
}

// TupleValue returns a tuple of the given scalars. Nested tuples are not
// allowed.
func TupleValue(elems ...Value) (Value, error) {
	cp := make([]Value, len(elems))
	for i, e := range elems {
		switch e.kind {
		case Int, Float, Text:
		default:
			return Value{}, fmt.Errorf("tuple element %d: %s is not a scalar", i, e.kind)
		}
		cp[i] = e
	}
	return Value{kind: Tuple, elems: cp}, nil
}

// MustTuple is like TupleValue but panics on error.
func MustTuple(elems ...Value) Value {
	v, err := TupleValue(elems...)
	if err != nil {
		panic(err)
	}
	return v
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// Int returns the integer held by v, or 0.
func (v Value) Int() int64 {
	return v.i
}

// Float returns the float held by v, or 0.
func (v Value) Float() float64 {
	return v.f
}

// Text returns the string held by v, or "".
func (v Value) Text() string {
	return v.s
}

// Elems returns a copy of the tuple elements, or nil.
func (v Value) Elems() []Value {
	if v.kind != Tuple {
		return nil
	}
	cp := make([]Value, len(v.elems))
	copy(cp, v.elems)
	return cp
}

// Equal reports whether v and o hold the same kind and value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Int:
		return v.i == o.i
	case Float:
		return v.f == o.f
	case Text:
		return v.s == o.s
	case Tuple:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	}
	return true
}

// Interface returns v as a plain Go value: int64, float64, string or
// []interface{} for tuples.
func (v Value) Interface() interface{} {
	switch v.kind {
	case Int:
		return v.i
	case Float:
		return v.f
	case Text:
		return v.s
	case Tuple:
		out := make([]interface{}, len(v.elems))
		for i, e := range v.elems {
			out[i] = e.Interface()
		}
		return out
	}
	return nil
}

// String renders v for logs and prompts. Tuples are written as (a, b).
func (v Value) String() string {
	switch v.kind {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return formatFloat(v.f)
	case Text:
		return v.s
	case Tuple:
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			if e.kind == Text {
				parts[i] = strconv.Quote(e.s)
			} else {
				parts[i] = e.String()
			}
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return "<invalid>"
}

// formatFloat always keeps a decimal point or an exponent so the text reads
// back as a float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// MarshalJSON encodes ints as integer literals, floats with a decimal point
// or exponent, text as strings and tuples as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Int:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case Float:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("unsupported float value %v", v.f)
		}
		return []byte(formatFloat(v.f)), nil
	case Text:
		return json.Marshal(v.s)
	case Tuple:
		var b bytes.Buffer
		b.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				b.WriteByte(',')
			}
			eb, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			b.Write(eb)
		}
		b.WriteByte(']')
		return b.Bytes(), nil
	}
	return nil, fmt.Errorf("cannot marshal invalid value")
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// ParseNumber converts numeric text into an Int, or a Float when the text
// carries a decimal point or an exponent.
func ParseNumber(s string) (Value, error) {
	if !strings.ContainsAny(s, ".eE") {
		i, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return IntValue(i), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid number %q", s)
	}
	return FloatValue(f), nil
}

// FromInterface converts decoded JSON data into a Value. Arrays become
// tuples. Numbers should be decoded as json.Number to keep ints and floats
// apart.
func FromInterface(raw interface{}) (Value, error) {
	switch x := raw.(type) {
	case json.Number:
		return ParseNumber(x.String())
	case string:
		return TextValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case float64:
		return FloatValue(x), nil
	case []interface{}:
		elems := make([]Value, len(x))
		for i, e := range x {
			ev, err := FromInterface(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = ev
		}
		return TupleValue(elems...)
	}
	return Value{}, fmt.Errorf("unsupported value %v (%T)", raw, raw)
}
