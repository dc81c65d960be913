package pulse

import "errors"

// Sentinel errors returned by Pulse operations.
var (
	// ErrClosed is returned when publishing or subscribing on a closed relay.
	ErrClosed = errors.New("pulse: relay is closed")

	// ErrNilEvent is returned when publishing a nil event.
	ErrNilEvent = errors.New("pulse: event must not be nil")

	// ErrNilHandler is returned when subscribing with a nil handler.
	ErrNilHandler = errors.New("pulse: handler must not be nil")

	// ErrNilScope is returned when subscribing with a nil scope context.
	ErrNilScope = errors.New("pulse: scope must not be nil")

	// ErrInterfaceEvent is returned when subscribing with an interface type
	// parameter. Dispatch matches the exact concrete runtime type, so an
	// interface subscription could never receive anything.
	ErrInterfaceEvent = errors.New("pulse: event type must be concrete")

	// ErrNoStore is returned when a preferences service is created without a store.
	ErrNoStore = errors.New("pulse: store is required")

	// ErrNoRelay is returned when watching preferences without a relay configured.
	ErrNoRelay = errors.New("pulse: relay is not configured")

	// ErrPrefNotFound is returned when a preference entry cannot be found.
	ErrPrefNotFound = errors.New("pulse: preference entry not found")

	// ErrStoreClosed is returned when a store operation is attempted after the store is closed.
	ErrStoreClosed = errors.New("pulse: store is closed")

	// ErrMigrationFailed is returned when a database migration fails.
	ErrMigrationFailed = errors.New("pulse: migration failed")

	// ErrSnapshotInvalid is returned when a snapshot fails schema validation.
	ErrSnapshotInvalid = errors.New("pulse: snapshot validation failed")

	// ErrSignatureInvalid is returned when a snapshot signature or timestamp
	// does not verify.
	ErrSignatureInvalid = errors.New("pulse: snapshot signature invalid")
)
