// Package store defines the composite Store interface for all Pulse
// persistence.
//
// Subsystems define their own store interfaces; the aggregate Store composes
// them with lifecycle operations. Backends live in subpackages, one per
// engine, and satisfy Store with a compile-time check.
package store

import (
	"context"

	"github.com/xraph/pulse/prefs"
)

// Store is the aggregate persistence interface.
type Store interface {
	prefs.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
