package pulse

import "time"

// Config holds the configuration for a Relay instance.
type Config struct {
	// SubscriptionBuffer is the per-subscription event buffer capacity.
	// Publish returns as soon as an event is accepted into this buffer, so
	// the buffer decouples publishers from handler execution. Values below
	// one are treated as one.
	SubscriptionBuffer int

	// PublishTimeout bounds how long a publish waits for one subscription
	// buffer to accept an event. Zero means wait until the publisher
	// context or the subscription scope is cancelled.
	PublishTimeout time.Duration

	// ShutdownTimeout is the maximum time Close waits for dispatch
	// goroutines to drain. Zero means wait on the caller's context alone.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SubscriptionBuffer: 16,
		PublishTimeout:     0,
		ShutdownTimeout:    10 * time.Second,
	}
}
