package value

import (
	"encoding/json"
	"fmt"
	"time"
)

// valueJSON is the serialized envelope for a Value. Exactly one payload
// field is set, selected by Kind. Pointer fields keep false/0/"" from being
// dropped by omitempty.
type valueJSON struct {
	Kind    string     `json:"kind"`
	Bool    *bool      `json:"bool,omitempty"`
	Int     *int64     `json:"int,omitempty"`
	Float   *float64   `json:"float,omitempty"`
	Str     *string    `json:"string,omitempty"`
	Bytes   []byte     `json:"bytes,omitempty"`
	Strings []string   `json:"strings,omitempty"`
	Time    *time.Time `json:"time,omitempty"`
}

// MarshalJSON implements json.Marshaler using the kind-tagged envelope.
func (v Value) MarshalJSON() ([]byte, error) {
	env := valueJSON{Kind: v.kind.String()}

	switch v.kind {
	case KindInvalid:
		// kind tag only
	case KindBool:
		env.Bool = &v.b
	case KindInt:
		env.Int = &v.i
	case KindFloat:
		env.Float = &v.f
	case KindString:
		env.Str = &v.s
	case KindBytes:
		env.Bytes = v.bs
	case KindStrings:
		env.Strings = v.ss
	case KindTime:
		env.Time = &v.t
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, v.kind)
	}

	return json.Marshal(env)
}

// UnmarshalJSON implements json.Unmarshaler. A missing payload field decodes
// as the zero value of the tagged kind.
func (v *Value) UnmarshalJSON(data []byte) error {
	var env valueJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("pulse/value: decode envelope: %w", err)
	}

	kind, err := parseKind(env.Kind)
	if err != nil {
		return err
	}

	switch kind {
	case KindInvalid:
		*v = Value{}
	case KindBool:
		*v = Bool(deref(env.Bool))
	case KindInt:
		*v = Int(deref(env.Int))
	case KindFloat:
		*v = Float(deref(env.Float))
	case KindString:
		*v = String(deref(env.Str))
	case KindBytes:
		*v = Bytes(env.Bytes)
	case KindStrings:
		*v = Strings(env.Strings)
	case KindTime:
		*v = Time(deref(env.Time))
	}

	return nil
}

// parseKind maps a serialized kind name back to its Kind.
func parseKind(name string) (Kind, error) {
	switch name {
	case "invalid":
		return KindInvalid, nil
	case "bool":
		return KindBool, nil
	case "int":
		return KindInt, nil
	case "float":
		return KindFloat, nil
	case "string":
		return KindString, nil
	case "bytes":
		return KindBytes, nil
	case "strings":
		return KindStrings, nil
	case "time":
		return KindTime, nil
	default:
		return KindInvalid, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
