package pulse

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Publish delivers event to every currently registered subscription whose
// type matches the event's exact runtime type. Publishing with no
// subscribers is a no-op.
//
// Publish returns once every matching subscription has accepted the event
// into its buffer (or been skipped because its scope died, the publisher
// context died, or the publish timeout lapsed). Handler execution happens on
// each subscription's own dispatch goroutine and never blocks the publisher.
func (r *Relay) Publish(ctx context.Context, event any) error {
	return r.publish(ctx, event, false)
}

// PublishSticky records event in the sticky cache keyed by its runtime type,
// replacing any prior value for that type, then delivers it like Publish.
// The cache write is a single atomic update.
func (r *Relay) PublishSticky(ctx context.Context, event any) error {
	return r.publish(ctx, event, true)
}

func (r *Relay) publish(ctx context.Context, event any, sticky bool) (err error) {
	if event == nil {
		return ErrNilEvent
	}
	t := reflect.TypeOf(event)

	if r.tracer != nil {
		var span trace.Span
		ctx, span = r.tracer.StartPublishSpan(ctx, t.String(), sticky)
		defer func() { r.tracer.End(span, err) }()
	}

	var targets []*Subscription
	if sticky {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return ErrClosed
		}
		r.sticky[t] = event
		stickyCount := len(r.sticky)
		targets = r.matching(t)
		r.mu.Unlock()

		if r.metrics != nil {
			r.metrics.StickyEvents.Set(float64(stickyCount))
		}
	} else {
		r.mu.RLock()
		if r.closed {
			r.mu.RUnlock()
			return ErrClosed
		}
		targets = r.matching(t)
		r.mu.RUnlock()
	}

	r.published.Add(1)
	if r.metrics != nil {
		r.metrics.EventsPublishedTotal.Inc()
	}

	if len(targets) == 0 {
		r.logger.DebugContext(ctx, "event published with no subscribers",
			"event_type", t.String(),
			"sticky", sticky,
		)
		return nil
	}

	for _, s := range targets {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pulse: publish interrupted: %w", err)
		}
		r.offer(ctx, s, event)
	}

	r.logger.DebugContext(ctx, "event published",
		"event_type", t.String(),
		"subscribers", len(targets),
		"sticky", sticky,
	)
	return nil
}

// matching returns the subscriptions registered for t. r.mu must be held.
func (r *Relay) matching(t reflect.Type) []*Subscription {
	set := r.subs[t]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Subscription, 0, len(set))
	for _, s := range set {
		out = append(out, s)
	}
	return out
}

// offer places event into the subscription buffer. Only buffer admission can
// block; it gives up when the subscription scope dies, the publisher context
// dies, or the configured publish timeout lapses.
func (r *Relay) offer(ctx context.Context, s *Subscription, event any) {
	var timeout <-chan time.Time
	if r.config.PublishTimeout > 0 {
		timer := time.NewTimer(r.config.PublishTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var reason string
	select {
	case s.ch <- event:
		return
	case <-s.ctx.Done():
		reason = "subscription cancelled"
	case <-ctx.Done():
		reason = "publisher cancelled"
	case <-timeout:
		reason = "publish timeout"
	}

	r.dropped.Add(1)
	if r.metrics != nil {
		r.metrics.RecordDelivery("dropped", 0)
	}
	r.logger.WarnContext(ctx, "event not accepted by subscription",
		"subscription_id", s.id,
		"event_type", s.eventType.String(),
		"reason", reason,
	)
}

// detach removes a subscription from the registry. Called by the dispatch
// goroutine on teardown.
func (r *Relay) detach(s *Subscription) {
	r.mu.Lock()
	if set, ok := r.subs[s.eventType]; ok {
		delete(set, s.id.String())
		if len(set) == 0 {
			delete(r.subs, s.eventType)
		}
	}
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.ActiveSubscriptions.Dec()
	}
	r.logger.Debug("subscription detached",
		"subscription_id", s.id,
		"event_type", s.eventType.String(),
	)
}

// Close cancels every subscription and waits for all dispatch goroutines to
// finish, bounded by the shutdown timeout and the caller's context. Further
// publishes and subscribes return ErrClosed. Close is idempotent.
func (r *Relay) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	var cancels []context.CancelFunc
	for _, set := range r.subs {
		for _, s := range set {
			cancels = append(cancels, s.cancel)
		}
	}
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}

	if r.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.ShutdownTimeout)
		defer cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Debug("relay closed", "subscriptions", len(cancels))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pulse: close: %w", ctx.Err())
	}
}
