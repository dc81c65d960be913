// Package memory provides an in-memory Store implementation for unit testing.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/xraph/pulse"
	"github.com/xraph/pulse/prefs"
	pulsestore "github.com/xraph/pulse/store"
)

// compile-time interface check.
var _ pulsestore.Store = (*Store)(nil)

// Store is an in-memory implementation of store.Store for testing.
type Store struct {
	mu sync.RWMutex

	// entries is keyed by namespace, then key.
	entries map[string]map[string]*prefs.Entry

	closed bool
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		entries: make(map[string]map[string]*prefs.Entry),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Migrate is a no-op for the in-memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return pulse.ErrStoreClosed
	}
	return nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ──────────────────────────────────────────────────
// prefs.Store
// ──────────────────────────────────────────────────

// SetEntry inserts or updates the entry for its namespace and key.
func (s *Store) SetEntry(_ context.Context, e *prefs.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return pulse.ErrStoreClosed
	}

	ns, ok := s.entries[e.Namespace]
	if !ok {
		ns = make(map[string]*prefs.Entry)
		s.entries[e.Namespace] = ns
	}

	if existing, ok := ns[e.Key]; ok {
		// Upserts keep the original identity and creation time.
		existing.Value = e.Value
		existing.Touch()
		e.ID = existing.ID
		e.CreatedAt = existing.CreatedAt
		e.UpdatedAt = existing.UpdatedAt
		return nil
	}

	cp := *e
	ns[e.Key] = &cp
	return nil
}

// GetEntry returns the entry for a namespace and key.
func (s *Store) GetEntry(_ context.Context, namespace, key string) (*prefs.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, pulse.ErrStoreClosed
	}

	e, ok := s.entries[namespace][key]
	if !ok {
		return nil, pulse.ErrPrefNotFound
	}
	cp := *e
	return &cp, nil
}

// DeleteEntry removes the entry for a namespace and key.
func (s *Store) DeleteEntry(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return pulse.ErrStoreClosed
	}

	ns := s.entries[namespace]
	if _, ok := ns[key]; !ok {
		return pulse.ErrPrefNotFound
	}
	delete(ns, key)
	if len(ns) == 0 {
		delete(s.entries, namespace)
	}
	return nil
}

// ListEntries returns the entries of a namespace in key order.
func (s *Store) ListEntries(_ context.Context, namespace string, opts prefs.ListOpts) ([]*prefs.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, pulse.ErrStoreClosed
	}

	var result []*prefs.Entry
	for key, e := range s.entries[namespace] {
		if opts.KeyPrefix != "" && !strings.HasPrefix(key, opts.KeyPrefix) {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return applyPagination(result, opts.Offset, opts.Limit), nil
}

// ListNamespaces returns every namespace holding at least one entry, sorted.
func (s *Store) ListNamespaces(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, pulse.ErrStoreClosed
	}

	result := make([]string, 0, len(s.entries))
	for ns := range s.entries {
		result = append(result, ns)
	}
	sort.Strings(result)
	return result, nil
}

// ClearNamespace removes every entry in a namespace.
func (s *Store) ClearNamespace(_ context.Context, namespace string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, pulse.ErrStoreClosed
	}

	n := len(s.entries[namespace])
	delete(s.entries, namespace)
	return n, nil
}

// CountEntries returns the number of entries in a namespace.
func (s *Store) CountEntries(_ context.Context, namespace string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, pulse.ErrStoreClosed
	}
	return int64(len(s.entries[namespace])), nil
}

// applyPagination applies offset and limit to a slice.
func applyPagination[T any](items []*T, offset, limit int) []*T {
	if offset > 0 && offset < len(items) {
		items = items[offset:]
	} else if offset >= len(items) && offset > 0 {
		return nil
	}

	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items
}
