package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/pulse"
	"github.com/xraph/pulse/id"
	"github.com/xraph/pulse/internal/entity"
	"github.com/xraph/pulse/prefs"
	"github.com/xraph/pulse/value"
)

func ctx() context.Context { return context.Background() }

func newEntry(namespace, key string, v value.Value) *prefs.Entry {
	return &prefs.Entry{
		Entity:    entity.New(),
		ID:        id.NewPrefID(),
		Namespace: namespace,
		Key:       key,
		Value:     v,
	}
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

func TestLifecycle(t *testing.T) {
	s := New()

	if err := s.Migrate(ctx()); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx()); !errors.Is(err, pulse.ErrStoreClosed) {
		t.Fatalf("expected ErrStoreClosed, got %v", err)
	}
	if err := s.SetEntry(ctx(), newEntry("ui", "theme", value.String("dark"))); !errors.Is(err, pulse.ErrStoreClosed) {
		t.Fatalf("expected ErrStoreClosed, got %v", err)
	}
}

// ──────────────────────────────────────────────────
// prefs.Store
// ──────────────────────────────────────────────────

func TestEntryCRUD(t *testing.T) {
	s := New()

	e := newEntry("ui", "theme", value.String("dark"))

	// Set
	if err := s.SetEntry(ctx(), e); err != nil {
		t.Fatal(err)
	}

	// Get
	got, err := s.GetEntry(ctx(), "ui", "theme")
	if err != nil {
		t.Fatal(err)
	}
	if sv, _ := got.Value.AsString(); sv != "dark" {
		t.Fatalf("got value %q", sv)
	}

	// Get not found
	if _, err := s.GetEntry(ctx(), "ui", "missing"); !errors.Is(err, pulse.ErrPrefNotFound) {
		t.Fatalf("expected ErrPrefNotFound, got %v", err)
	}

	// Upsert (same namespace and key)
	e2 := newEntry("ui", "theme", value.String("light"))
	if err := s.SetEntry(ctx(), e2); err != nil {
		t.Fatal(err)
	}

	got, _ = s.GetEntry(ctx(), "ui", "theme")
	if sv, _ := got.Value.AsString(); sv != "light" {
		t.Fatalf("expected updated value, got %q", sv)
	}
	// Identity should be preserved from the original set.
	if e2.ID != e.ID {
		t.Fatal("expected ID to be preserved on upsert")
	}

	// Count
	n, err := s.CountEntries(ctx(), "ui")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 entry, got %d", n)
	}

	// Delete
	if err := s.DeleteEntry(ctx(), "ui", "theme"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteEntry(ctx(), "ui", "theme"); !errors.Is(err, pulse.ErrPrefNotFound) {
		t.Fatalf("expected ErrPrefNotFound, got %v", err)
	}
}

func TestListEntriesOrderedAndFiltered(t *testing.T) {
	s := New()

	for _, kv := range []struct {
		key string
		val value.Value
	}{
		{"tab_index", value.Int(2)},
		{"theme", value.String("dark")},
		{"tab_pinned", value.Bool(true)},
		{"zoom", value.Float(1.25)},
	} {
		if err := s.SetEntry(ctx(), newEntry("ui", kv.key, kv.val)); err != nil {
			t.Fatal(err)
		}
	}

	// Full list comes back in key order.
	all, err := s.ListEntries(ctx(), "ui", prefs.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"tab_index", "tab_pinned", "theme", "zoom"}
	if len(all) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(all))
	}
	for i, e := range all {
		if e.Key != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], e.Key)
		}
	}

	// Prefix filter.
	tabs, err := s.ListEntries(ctx(), "ui", prefs.ListOpts{KeyPrefix: "tab_"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tabs) != 2 {
		t.Fatalf("expected 2 tab entries, got %d", len(tabs))
	}

	// Pagination.
	page, err := s.ListEntries(ctx(), "ui", prefs.ListOpts{Offset: 1, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].Key != "tab_pinned" || page[1].Key != "theme" {
		t.Fatalf("unexpected page: %+v", page)
	}

	// Offset past the end.
	empty, err := s.ListEntries(ctx(), "ui", prefs.ListOpts{Offset: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %d entries", len(empty))
	}
}

func TestNamespaces(t *testing.T) {
	s := New()

	if err := s.SetEntry(ctx(), newEntry("ui", "theme", value.String("dark"))); err != nil {
		t.Fatal(err)
	}
	if err := s.SetEntry(ctx(), newEntry("session", "user_id", value.Int(1))); err != nil {
		t.Fatal(err)
	}

	ns, err := s.ListNamespaces(ctx())
	if err != nil {
		t.Fatal(err)
	}
	if len(ns) != 2 || ns[0] != "session" || ns[1] != "ui" {
		t.Fatalf("unexpected namespaces: %v", ns)
	}

	// Deleting the last entry removes the namespace.
	if err := s.DeleteEntry(ctx(), "session", "user_id"); err != nil {
		t.Fatal(err)
	}
	ns, _ = s.ListNamespaces(ctx())
	if len(ns) != 1 || ns[0] != "ui" {
		t.Fatalf("unexpected namespaces after delete: %v", ns)
	}
}

func TestClearNamespace(t *testing.T) {
	s := New()

	for i, key := range []string{"a", "b", "c"} {
		if err := s.SetEntry(ctx(), newEntry("ui", key, value.Int(int64(i)))); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.ClearNamespace(ctx(), "ui")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 removed, got %d", n)
	}

	// Clearing again removes nothing.
	n, _ = s.ClearNamespace(ctx(), "ui")
	if n != 0 {
		t.Fatalf("expected 0 removed, got %d", n)
	}

	count, _ := s.CountEntries(ctx(), "ui")
	if count != 0 {
		t.Fatalf("expected 0 entries, got %d", count)
	}
}

func TestCopiesOut(t *testing.T) {
	s := New()

	if err := s.SetEntry(ctx(), newEntry("ui", "theme", value.String("dark"))); err != nil {
		t.Fatal(err)
	}

	// Mutating a returned entry must not affect the stored one.
	got, err := s.GetEntry(ctx(), "ui", "theme")
	if err != nil {
		t.Fatal(err)
	}
	got.Value = value.String("light")

	again, _ := s.GetEntry(ctx(), "ui", "theme")
	if sv, _ := again.Value.AsString(); sv != "dark" {
		t.Fatalf("stored entry mutated through returned copy: %q", sv)
	}
}
