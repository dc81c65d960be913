// Package prefs provides namespaced typed preference storage with change
// events.
//
// A Service wraps a Store with input validation, typed value conversion,
// and ChangeEvent publication through a pulse.Relay. Snapshots give signed,
// schema-validated export and import of whole namespaces.
package prefs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/pulse"
	"github.com/xraph/pulse/bundle"
	"github.com/xraph/pulse/id"
	"github.com/xraph/pulse/internal/entity"
	"github.com/xraph/pulse/observability"
	"github.com/xraph/pulse/ratelimit"
	"github.com/xraph/pulse/value"
)

// DefaultSignatureTolerance bounds how far a signed snapshot's timestamp may
// drift from the local clock at import time.
const DefaultSignatureTolerance = 24 * time.Hour

// Service coordinates preference reads and writes over a Store, publishing
// a ChangeEvent through the relay after every successful mutation.
type Service struct {
	store     Store
	relay     *pulse.Relay
	logger    *slog.Logger
	metrics   *observability.Metrics
	limiter   *ratelimit.Limiter
	writeRate int
	secret    string
	tolerance time.Duration
	validator *Validator
}

// Option configures a Service.
type Option func(*Service) error

// NewService creates a preference service. A store is required; everything
// else is optional.
func NewService(opts ...Option) (*Service, error) {
	svc := &Service{
		logger:    slog.Default(),
		limiter:   ratelimit.New(),
		tolerance: DefaultSignatureTolerance,
		validator: NewValidator(),
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	if svc.store == nil {
		return nil, pulse.ErrNoStore
	}
	return svc, nil
}

// WithStore sets the persistence backend. Required.
func WithStore(s Store) Option {
	return func(svc *Service) error {
		svc.store = s
		return nil
	}
}

// WithRelay sets the relay that carries ChangeEvents. Without one,
// mutations succeed silently and Watch returns ErrNoRelay.
func WithRelay(r *pulse.Relay) Option {
	return func(svc *Service) error {
		svc.relay = r
		return nil
	}
}

// WithLogger sets the structured logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(svc *Service) error {
		svc.logger = logger
		return nil
	}
}

// WithMetrics sets the Prometheus metrics collector.
func WithMetrics(m *observability.Metrics) Option {
	return func(svc *Service) error {
		svc.metrics = m
		return nil
	}
}

// WithSigningSecret sets the secret used by EncodeSigned and ImportSigned.
func WithSigningSecret(secret string) Option {
	return func(svc *Service) error {
		svc.secret = secret
		return nil
	}
}

// WithSignatureTolerance overrides the allowed snapshot timestamp drift.
func WithSignatureTolerance(d time.Duration) Option {
	return func(svc *Service) error {
		svc.tolerance = d
		return nil
	}
}

// WithWriteRateLimit bounds writes per namespace per second. 0 (the
// default) means unlimited.
func WithWriteRateLimit(perSecond int) Option {
	return func(svc *Service) error {
		svc.writeRate = perSecond
		return nil
	}
}

// Set inserts or updates one preference. v is converted through value.Of,
// so supported Go types can be passed directly.
func (svc *Service) Set(ctx context.Context, namespace, key string, v any) (err error) {
	defer func() { svc.record("set", err) }()

	if err := validateRef(namespace, key); err != nil {
		return err
	}
	if err := svc.limiter.Wait(ctx, namespace, svc.writeRate); err != nil {
		return fmt.Errorf("prefs: rate limit: %w", err)
	}

	val, err := value.Of(v)
	if err != nil {
		return fmt.Errorf("prefs: %s/%s: %w", namespace, key, err)
	}

	e := &Entry{
		Entity:    entity.New(),
		ID:        id.NewPrefID(),
		Namespace: namespace,
		Key:       key,
		Value:     val,
	}
	if err := svc.store.SetEntry(ctx, e); err != nil {
		return err
	}

	svc.publishChange(ctx, ChangeEvent{
		Namespace: namespace,
		Key:       key,
		Value:     val,
		Op:        OpSet,
		At:        e.UpdatedAt,
	})
	return nil
}

// Get returns the value stored under namespace and key. A missing entry
// returns ErrPrefNotFound.
func (svc *Service) Get(ctx context.Context, namespace, key string) (value.Value, error) {
	e, err := svc.store.GetEntry(ctx, namespace, key)
	svc.record("get", err)
	if err != nil {
		return value.Value{}, err
	}
	return e.Value, nil
}

// Delete removes the entry under namespace and key. Deleting a missing
// entry returns ErrPrefNotFound.
func (svc *Service) Delete(ctx context.Context, namespace, key string) (err error) {
	defer func() { svc.record("delete", err) }()

	if err := validateRef(namespace, key); err != nil {
		return err
	}
	if err := svc.store.DeleteEntry(ctx, namespace, key); err != nil {
		return err
	}

	svc.publishChange(ctx, ChangeEvent{
		Namespace: namespace,
		Key:       key,
		Op:        OpDelete,
		At:        now(),
	})
	return nil
}

// Keys returns the keys of a namespace in sorted order.
func (svc *Service) Keys(ctx context.Context, namespace string) ([]string, error) {
	entries, err := svc.store.ListEntries(ctx, namespace, ListOpts{})
	svc.record("keys", err)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys, nil
}

// List returns the entries of a namespace in key order, paginated by opts.
func (svc *Service) List(ctx context.Context, namespace string, opts ListOpts) ([]*Entry, error) {
	entries, err := svc.store.ListEntries(ctx, namespace, opts)
	svc.record("list", err)
	return entries, err
}

// Namespaces returns every namespace that currently holds an entry.
func (svc *Service) Namespaces(ctx context.Context) ([]string, error) {
	ns, err := svc.store.ListNamespaces(ctx)
	svc.record("namespaces", err)
	return ns, err
}

// Clear removes every entry in a namespace and returns how many were
// removed. A single OpClear event is published when anything was removed.
func (svc *Service) Clear(ctx context.Context, namespace string) (n int, err error) {
	defer func() { svc.record("clear", err) }()

	if namespace == "" {
		return 0, &ValidationError{Field: "namespace", Message: "required"}
	}
	n, err = svc.store.ClearNamespace(ctx, namespace)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		svc.publishChange(ctx, ChangeEvent{
			Namespace: namespace,
			Op:        OpClear,
			At:        now(),
		})
	}
	return n, nil
}

// SetBundle upserts every key of b into namespace, in key order. One
// ChangeEvent is published per key.
func (svc *Service) SetBundle(ctx context.Context, namespace string, b *bundle.Bundle) (err error) {
	defer func() { svc.record("set_bundle", err) }()

	if namespace == "" {
		return &ValidationError{Field: "namespace", Message: "required"}
	}
	if b == nil {
		return &ValidationError{Field: "bundle", Message: "required"}
	}

	for _, key := range b.Keys() {
		v, _ := b.Get(key)
		if err := svc.Set(ctx, namespace, key, v); err != nil {
			return fmt.Errorf("prefs: bundle key %q: %w", key, err)
		}
	}
	return nil
}

// Bundle collects every entry of a namespace into a bundle, the read-side
// counterpart of SetBundle.
func (svc *Service) Bundle(ctx context.Context, namespace string) (*bundle.Bundle, error) {
	entries, err := svc.store.ListEntries(ctx, namespace, ListOpts{})
	svc.record("bundle", err)
	if err != nil {
		return nil, err
	}

	b := bundle.New()
	for _, e := range entries {
		b.Set(e.Key, e.Value)
	}
	return b, nil
}

// Watch returns a stream of ChangeEvents for the namespaces matching a
// pattern ("ui.home" exact, "ui.*" single segment wildcard, "*" all). The
// channel closes when ctx is cancelled, the stop function is called, or the
// relay closes.
func (svc *Service) Watch(ctx context.Context, pattern string) (<-chan ChangeEvent, func(), error) {
	if svc.relay == nil {
		return nil, nil, pulse.ErrNoRelay
	}

	in, stop, err := pulse.Stream[ChangeEvent](svc.relay, ctx)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan ChangeEvent)
	go func() {
		defer close(out)
		defer stop()
		for ev := range in {
			if !matchNamespace(pattern, ev.Namespace) {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, stop, nil
}

func (svc *Service) publishChange(ctx context.Context, ev ChangeEvent) {
	if svc.relay == nil {
		return
	}
	if err := svc.relay.Publish(ctx, ev); err != nil {
		svc.logger.WarnContext(ctx, "preference change event not published",
			"namespace", ev.Namespace,
			"key", ev.Key,
			"op", ev.Op,
			"error", err,
		)
	}
}

func (svc *Service) record(op string, err error) {
	if svc.metrics != nil {
		svc.metrics.RecordPrefOp(op, err)
	}
}

func validateRef(namespace, key string) error {
	if namespace == "" {
		return &ValidationError{Field: "namespace", Message: "required"}
	}
	if key == "" {
		return &ValidationError{Field: "key", Message: "required"}
	}
	return nil
}

func now() time.Time { return time.Now().UTC() }

// ValidationError indicates invalid input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "prefs validation: " + e.Field + ": " + e.Message
}
