package bundle_test

import (
	"errors"
	"testing"

	"github.com/xraph/pulse/bundle"
	"github.com/xraph/pulse/value"
)

func TestTypedGetters(t *testing.T) {
	b := bundle.New()
	b.Set("name", value.String("ada"))
	b.Set("age", value.Int(36))
	b.Set("admin", value.Bool(true))

	name, err := b.String("name")
	if err != nil {
		t.Fatal(err)
	}
	if name != "ada" {
		t.Fatalf("expected ada, got %q", name)
	}

	age, err := b.Int("age")
	if err != nil {
		t.Fatal(err)
	}
	if age != 36 {
		t.Fatalf("expected 36, got %d", age)
	}

	admin, err := b.Bool("admin")
	if err != nil {
		t.Fatal(err)
	}
	if !admin {
		t.Fatal("expected admin true")
	}
}

func TestMissingKey(t *testing.T) {
	b := bundle.New()

	_, err := b.String("missing")
	if !errors.Is(err, bundle.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestKindMismatchWrapsKey(t *testing.T) {
	b := bundle.New()
	b.Set("age", value.String("not a number"))

	_, err := b.Int("age")
	if !errors.Is(err, value.ErrKindMismatch) {
		t.Fatalf("expected ErrKindMismatch, got %v", err)
	}
}

func TestDefaultedGetters(t *testing.T) {
	b := bundle.New()
	b.Set("retries", value.Int(3))

	if got := b.IntOr("retries", 10); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := b.IntOr("absent", 10); got != 10 {
		t.Fatalf("expected default 10, got %d", got)
	}
	// Present but wrong kind also falls back.
	b.Set("flag", value.String("yes"))
	if got := b.BoolOr("flag", false); got != false {
		t.Fatal("expected default false for mismatched kind")
	}
}

func TestFromMap(t *testing.T) {
	b, err := bundle.FromMap(map[string]any{
		"host":  "localhost",
		"port":  8080,
		"debug": false,
	})
	if err != nil {
		t.Fatal(err)
	}

	if b.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", b.Len())
	}
	if got := b.IntOr("port", 0); got != 8080 {
		t.Fatalf("expected 8080, got %d", got)
	}
}

func TestFromMapRejectsUnsupported(t *testing.T) {
	_, err := bundle.FromMap(map[string]any{
		"bad": struct{ X int }{1},
	})
	if !errors.Is(err, value.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestKeysSorted(t *testing.T) {
	b := bundle.New()
	b.Set("zeta", value.Int(1))
	b.Set("alpha", value.Int(2))
	b.Set("mid", value.Int(3))

	keys := b.Keys()
	want := []string{"alpha", "mid", "zeta"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keys)
		}
	}
}

func TestDeleteAndHas(t *testing.T) {
	b := bundle.New()
	b.Set("k", value.Int(1))

	if !b.Has("k") {
		t.Fatal("expected key present")
	}
	b.Delete("k")
	if b.Has("k") {
		t.Fatal("expected key removed")
	}
	b.Delete("k") // no-op
}

func TestToMapRoundTrip(t *testing.T) {
	b := bundle.New()
	b.Set("n", value.Int(5))
	b.Set("s", value.String("x"))

	m := b.ToMap()
	back, err := bundle.FromMap(m)
	if err != nil {
		t.Fatal(err)
	}
	if got := back.IntOr("n", 0); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := back.StringOr("s", ""); got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
}
