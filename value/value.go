// Package value provides a tagged variant over the finite set of kinds a
// preference or bundle entry can hold.
//
// Instead of branching on runtime Go types at every call site, callers
// construct a Value with a kind-specific constructor and read it back with a
// kind-checked accessor. The set of kinds is closed; every switch over Kind
// in this package handles all of them.
package value

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind uint8

// The closed set of supported value kinds.
const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindStrings
	KindTime
)

// String returns the canonical kind name used in serialized form.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindStrings:
		return "strings"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Sentinel errors returned by value operations.
var (
	// ErrKindMismatch is returned when an accessor is called on the wrong kind.
	ErrKindMismatch = errors.New("pulse/value: kind mismatch")

	// ErrUnsupportedType is returned by Of for Go types outside the closed set.
	ErrUnsupportedType = errors.New("pulse/value: unsupported type")

	// ErrUnknownKind is returned when decoding a serialized value with an
	// unrecognized kind name.
	ErrUnknownKind = errors.New("pulse/value: unknown kind")
)

// Value is an immutable tagged variant. The zero Value has KindInvalid and
// holds nothing.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	bs   []byte
	ss   []string
	t    time.Time
}

// ──────────────────────────────────────────────────
// Constructors
// ──────────────────────────────────────────────────

// Bool returns a Value holding a bool.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int returns a Value holding an int64.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float returns a Value holding a float64.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// String returns a Value holding a string.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Bytes returns a Value holding a byte slice. The slice is copied so the
// Value stays immutable if the caller mutates the original.
func Bytes(v []byte) Value {
	return Value{kind: KindBytes, bs: slices.Clone(v)}
}

// Strings returns a Value holding a string slice. The slice is copied.
func Strings(v []string) Value {
	return Value{kind: KindStrings, ss: slices.Clone(v)}
}

// Time returns a Value holding a time.Time.
func Time(v time.Time) Value { return Value{kind: KindTime, t: v} }

// Of converts a loose Go value into a Value. This is the single boundary
// where runtime type inspection happens; everything past it dispatches on
// Kind. Integer widths collapse to int64, float32 to float64.
func Of(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Int(int64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	case []byte:
		return Bytes(x), nil
	case []string:
		return Strings(x), nil
	case time.Time:
		return Time(x), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// ──────────────────────────────────────────────────
// Accessors
// ──────────────────────────────────────────────────

// Kind returns which variant this Value holds.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether this is the zero (invalid) Value.
func (v Value) IsZero() bool { return v.kind == KindInvalid }

// AsBool returns the held bool, or ErrKindMismatch.
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, kindErr(v.kind, KindBool)
	}
	return v.b, nil
}

// AsInt returns the held int64, or ErrKindMismatch.
func (v Value) AsInt() (int64, error) {
	if v.kind != KindInt {
		return 0, kindErr(v.kind, KindInt)
	}
	return v.i, nil
}

// AsFloat returns the held float64, or ErrKindMismatch.
func (v Value) AsFloat() (float64, error) {
	if v.kind != KindFloat {
		return 0, kindErr(v.kind, KindFloat)
	}
	return v.f, nil
}

// AsString returns the held string, or ErrKindMismatch.
func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", kindErr(v.kind, KindString)
	}
	return v.s, nil
}

// AsBytes returns a copy of the held byte slice, or ErrKindMismatch.
func (v Value) AsBytes() ([]byte, error) {
	if v.kind != KindBytes {
		return nil, kindErr(v.kind, KindBytes)
	}
	return slices.Clone(v.bs), nil
}

// AsStrings returns a copy of the held string slice, or ErrKindMismatch.
func (v Value) AsStrings() ([]string, error) {
	if v.kind != KindStrings {
		return nil, kindErr(v.kind, KindStrings)
	}
	return slices.Clone(v.ss), nil
}

// AsTime returns the held time, or ErrKindMismatch.
func (v Value) AsTime() (time.Time, error) {
	if v.kind != KindTime {
		return time.Time{}, kindErr(v.kind, KindTime)
	}
	return v.t, nil
}

// BoolOr returns the held bool, or def on any other kind.
func (v Value) BoolOr(def bool) bool {
	if v.kind != KindBool {
		return def
	}
	return v.b
}

// IntOr returns the held int64, or def on any other kind.
func (v Value) IntOr(def int64) int64 {
	if v.kind != KindInt {
		return def
	}
	return v.i
}

// FloatOr returns the held float64, or def on any other kind.
func (v Value) FloatOr(def float64) float64 {
	if v.kind != KindFloat {
		return def
	}
	return v.f
}

// StringOr returns the held string, or def on any other kind.
func (v Value) StringOr(def string) string {
	if v.kind != KindString {
		return def
	}
	return v.s
}

// BytesOr returns a copy of the held byte slice, or def on any other kind.
func (v Value) BytesOr(def []byte) []byte {
	if v.kind != KindBytes {
		return def
	}
	return slices.Clone(v.bs)
}

// StringsOr returns a copy of the held string slice, or def on any other kind.
func (v Value) StringsOr(def []string) []string {
	if v.kind != KindStrings {
		return def
	}
	return slices.Clone(v.ss)
}

// TimeOr returns the held time, or def on any other kind.
func (v Value) TimeOr(def time.Time) time.Time {
	if v.kind != KindTime {
		return def
	}
	return v.t
}

// Interface returns the held value as a loose Go value.
// The zero Value returns nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindInvalid:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBytes:
		return slices.Clone(v.bs)
	case KindStrings:
		return slices.Clone(v.ss)
	case KindTime:
		return v.t
	default:
		return nil
	}
}

// Equal reports whether two Values hold the same kind and the same content.
// Times compare with time.Time.Equal, so equal instants in different
// locations are equal Values.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInvalid:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindBytes:
		return bytes.Equal(v.bs, o.bs)
	case KindStrings:
		return slices.Equal(v.ss, o.ss)
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return false
	}
}

// String implements fmt.Stringer with a short debug form like "int(42)".
// Byte payloads print their length instead of their content.
func (v Value) String() string {
	switch v.kind {
	case KindInvalid:
		return "invalid"
	case KindBool:
		return fmt.Sprintf("bool(%t)", v.b)
	case KindInt:
		return fmt.Sprintf("int(%d)", v.i)
	case KindFloat:
		return fmt.Sprintf("float(%g)", v.f)
	case KindString:
		return fmt.Sprintf("string(%q)", v.s)
	case KindBytes:
		return fmt.Sprintf("bytes(%d)", len(v.bs))
	case KindStrings:
		return fmt.Sprintf("strings(%d)", len(v.ss))
	case KindTime:
		return fmt.Sprintf("time(%s)", v.t.Format(time.RFC3339Nano))
	default:
		return fmt.Sprintf("Kind(%d)", uint8(v.kind))
	}
}

func kindErr(have, want Kind) error {
	return fmt.Errorf("%w: have %s, want %s", ErrKindMismatch, have, want)
}
