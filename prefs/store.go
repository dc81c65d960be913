package prefs

import "context"

// ListOpts filters and paginates entry listings.
type ListOpts struct {
	// Offset skips the first n entries in key order.
	Offset int

	// Limit caps the number of returned entries. 0 means no cap.
	Limit int

	// KeyPrefix keeps only entries whose key starts with the prefix.
	KeyPrefix string
}

// Store defines the persistence contract for preference entries.
type Store interface {
	// SetEntry inserts or updates the entry for its namespace and key.
	SetEntry(ctx context.Context, e *Entry) error

	// GetEntry returns the entry for a namespace and key.
	GetEntry(ctx context.Context, namespace, key string) (*Entry, error)

	// DeleteEntry removes the entry for a namespace and key.
	DeleteEntry(ctx context.Context, namespace, key string) error

	// ListEntries returns the entries of a namespace in key order.
	ListEntries(ctx context.Context, namespace string, opts ListOpts) ([]*Entry, error)

	// ListNamespaces returns every namespace holding at least one entry.
	ListNamespaces(ctx context.Context) ([]string, error)

	// ClearNamespace removes every entry in a namespace and returns how
	// many were removed.
	ClearNamespace(ctx context.Context, namespace string) (int, error)

	// CountEntries returns the number of entries in a namespace.
	CountEntries(ctx context.Context, namespace string) (int64, error)
}
