// Package bundle provides typed argument extraction from loosely-typed
// key/value containers.
//
// A Bundle is built once (from a map or with Set calls) and read many times
// through kind-checked getters. It replaces ad-hoc type assertions at every
// read site with value.Value's closed kind set. A Bundle is not safe for
// concurrent mutation; build it, then hand it out read-only.
package bundle

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xraph/pulse/value"
)

// ErrKeyNotFound is returned by typed getters for absent keys.
var ErrKeyNotFound = errors.New("pulse/bundle: key not found")

// Bundle holds named values with kind-safe access.
type Bundle struct {
	values map[string]value.Value
}

// New returns an empty Bundle.
func New() *Bundle {
	return &Bundle{values: make(map[string]value.Value)}
}

// FromMap builds a Bundle from loose Go values via value.Of.
// Any entry outside the supported kind set fails the whole conversion.
func FromMap(m map[string]any) (*Bundle, error) {
	b := New()
	for k, raw := range m {
		v, err := value.Of(raw)
		if err != nil {
			return nil, fmt.Errorf("pulse/bundle: key %q: %w", k, err)
		}
		b.values[k] = v
	}
	return b, nil
}

// Set stores a value under key, replacing any previous value.
func (b *Bundle) Set(key string, v value.Value) {
	b.values[key] = v
}

// Get returns the raw value for key and whether it exists.
func (b *Bundle) Get(key string) (value.Value, bool) {
	v, ok := b.values[key]
	return v, ok
}

// Has reports whether key exists.
func (b *Bundle) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// Delete removes key. Removing an absent key is a no-op.
func (b *Bundle) Delete(key string) {
	delete(b.values, key)
}

// Len returns the number of entries.
func (b *Bundle) Len() int { return len(b.values) }

// Keys returns all keys in sorted order.
func (b *Bundle) Keys() []string {
	keys := make([]string, 0, len(b.values))
	for k := range b.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToMap returns the bundle contents as loose Go values.
func (b *Bundle) ToMap() map[string]any {
	m := make(map[string]any, len(b.values))
	for k, v := range b.values {
		m[k] = v.Interface()
	}
	return m
}

// ──────────────────────────────────────────────────
// Typed getters
// ──────────────────────────────────────────────────

// String returns the string under key. Absent keys return ErrKeyNotFound,
// wrong kinds return value.ErrKindMismatch; both wrap the key.
func (b *Bundle) String(key string) (string, error) {
	v, ok := b.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	s, err := v.AsString()
	if err != nil {
		return "", fmt.Errorf("key %q: %w", key, err)
	}
	return s, nil
}

// Int returns the int64 under key.
func (b *Bundle) Int(key string) (int64, error) {
	v, ok := b.values[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	i, err := v.AsInt()
	if err != nil {
		return 0, fmt.Errorf("key %q: %w", key, err)
	}
	return i, nil
}

// Float returns the float64 under key.
func (b *Bundle) Float(key string) (float64, error) {
	v, ok := b.values[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	f, err := v.AsFloat()
	if err != nil {
		return 0, fmt.Errorf("key %q: %w", key, err)
	}
	return f, nil
}

// Bool returns the bool under key.
func (b *Bundle) Bool(key string) (bool, error) {
	v, ok := b.values[key]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	val, err := v.AsBool()
	if err != nil {
		return false, fmt.Errorf("key %q: %w", key, err)
	}
	return val, nil
}

// Bytes returns a copy of the byte slice under key.
func (b *Bundle) Bytes(key string) ([]byte, error) {
	v, ok := b.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	bs, err := v.AsBytes()
	if err != nil {
		return nil, fmt.Errorf("key %q: %w", key, err)
	}
	return bs, nil
}

// Strings returns a copy of the string slice under key.
func (b *Bundle) Strings(key string) ([]string, error) {
	v, ok := b.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	ss, err := v.AsStrings()
	if err != nil {
		return nil, fmt.Errorf("key %q: %w", key, err)
	}
	return ss, nil
}

// Time returns the time under key.
func (b *Bundle) Time(key string) (time.Time, error) {
	v, ok := b.values[key]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	t, err := v.AsTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("key %q: %w", key, err)
	}
	return t, nil
}

// ──────────────────────────────────────────────────
// Defaulted getters
// ──────────────────────────────────────────────────

// StringOr returns the string under key, or def when absent or mismatched.
func (b *Bundle) StringOr(key, def string) string {
	return b.values[key].StringOr(def)
}

// IntOr returns the int64 under key, or def when absent or mismatched.
func (b *Bundle) IntOr(key string, def int64) int64 {
	return b.values[key].IntOr(def)
}

// FloatOr returns the float64 under key, or def when absent or mismatched.
func (b *Bundle) FloatOr(key string, def float64) float64 {
	return b.values[key].FloatOr(def)
}

// BoolOr returns the bool under key, or def when absent or mismatched.
func (b *Bundle) BoolOr(key string, def bool) bool {
	return b.values[key].BoolOr(def)
}

// BytesOr returns the byte slice under key, or def when absent or mismatched.
func (b *Bundle) BytesOr(key string, def []byte) []byte {
	return b.values[key].BytesOr(def)
}

// StringsOr returns the string slice under key, or def when absent or mismatched.
func (b *Bundle) StringsOr(key string, def []string) []string {
	return b.values[key].StringsOr(def)
}

// TimeOr returns the time under key, or def when absent or mismatched.
func (b *Bundle) TimeOr(key string, def time.Time) time.Time {
	return b.values[key].TimeOr(def)
}
