package pulse

import (
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xraph/pulse/observability"
)

// Relay is an in-process publish/subscribe mediator with sticky event
// retention. Events are dispatched by exact runtime type; subscriptions are
// bound to a caller-supplied scope context.
type Relay struct {
	config  Config
	logger  *slog.Logger
	metrics *observability.Metrics
	tracer  *observability.Tracer

	// mu guards subs, sticky and closed. Holding it gives every operation a
	// single consistent view of the registry and the sticky cache.
	mu     sync.RWMutex
	subs   map[reflect.Type]map[string]*Subscription
	sticky map[reflect.Type]any
	closed bool

	// wg tracks dispatch goroutines for graceful shutdown.
	wg sync.WaitGroup

	published     atomic.Uint64
	delivered     atomic.Uint64
	dropped       atomic.Uint64
	handlerErrors atomic.Uint64
	handlerPanics atomic.Uint64
}

// Option configures a Relay instance.
type Option func(*Relay) error

// New creates a new Relay with the given options.
func New(opts ...Option) (*Relay, error) {
	r := &Relay{
		config: DefaultConfig(),
		logger: slog.Default(),
		subs:   make(map[reflect.Type]map[string]*Subscription),
		sticky: make(map[reflect.Type]any),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// WithConfig replaces the entire configuration.
func WithConfig(cfg Config) Option {
	return func(r *Relay) error {
		r.config = cfg
		return nil
	}
}

// WithLogger sets the structured logger for the Relay instance.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) error {
		r.logger = logger
		return nil
	}
}

// WithMetrics sets the Prometheus metrics collector.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Relay) error {
		r.metrics = m
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer.
func WithTracer(tr *observability.Tracer) Option {
	return func(r *Relay) error {
		r.tracer = tr
		return nil
	}
}

// WithSubscriptionBuffer sets the per-subscription event buffer capacity.
func WithSubscriptionBuffer(n int) Option {
	return func(r *Relay) error {
		r.config.SubscriptionBuffer = n
		return nil
	}
}

// WithPublishTimeout bounds how long a publish waits for one subscription
// buffer to accept an event.
func WithPublishTimeout(d time.Duration) Option {
	return func(r *Relay) error {
		r.config.PublishTimeout = d
		return nil
	}
}

// WithShutdownTimeout sets the maximum time Close waits for dispatch
// goroutines to drain.
func WithShutdownTimeout(d time.Duration) Option {
	return func(r *Relay) error {
		r.config.ShutdownTimeout = d
		return nil
	}
}
