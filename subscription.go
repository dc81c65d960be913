package pulse

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/pulse/id"
)

// Subscription is a single registered (event type, handler) pair. Its
// lifetime is bound to the scope context it was created with: cancelling the
// scope, calling Cancel, or closing the relay tears it down.
type Subscription struct {
	id        id.ID
	eventType reflect.Type
	handler   func(context.Context, any) error

	// ch is the delivery buffer between publishers and the dispatch
	// goroutine. Capacity is at least one so a sticky replay can always be
	// enqueued under the registry lock.
	ch chan any

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	relay  *Relay
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() id.ID { return s.id }

// EventType returns the concrete event type this subscription receives.
func (s *Subscription) EventType() reflect.Type { return s.eventType }

// Cancel tears the subscription down. It returns immediately; use Done to
// wait for the dispatch goroutine to finish. Cancel is idempotent.
func (s *Subscription) Cancel() { s.cancel() }

// Done is closed once the subscription is fully torn down: deregistered,
// dispatch goroutine exited, no further handler invocations.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// dispatch is the per-subscription delivery loop. It owns all handler
// invocations for this subscription, keeping publishers decoupled from
// handler execution time.
func (s *Subscription) dispatch() {
	defer func() {
		s.relay.detach(s)
		close(s.done)
		s.relay.wg.Done()
	}()

	for {
		select {
		case <-s.ctx.Done():
			return
		case ev := <-s.ch:
			s.invoke(ev)
		}
	}
}

// invoke runs the handler for one event. Handler errors and panics are
// isolated here: logged, counted, and never allowed to reach the publisher
// or other subscribers.
func (s *Subscription) invoke(ev any) {
	r := s.relay
	start := time.Now()

	ctx := s.ctx
	var span trace.Span
	if r.tracer != nil {
		ctx, span = r.tracer.StartDeliverSpan(ctx, s.eventType.String(), s.id.String())
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.handlerPanics.Add(1)
			if r.metrics != nil {
				r.metrics.RecordDelivery("handler_panic", time.Since(start).Seconds())
			}
			if span != nil {
				r.tracer.End(span, fmt.Errorf("panic: %v", rec))
			}
			r.logger.ErrorContext(ctx, "event handler panicked",
				"subscription_id", s.id,
				"event_type", s.eventType.String(),
				"panic", rec,
			)
		}
	}()

	err := s.handler(ctx, ev)
	elapsed := time.Since(start).Seconds()

	if span != nil {
		r.tracer.End(span, err)
	}

	if err != nil {
		r.handlerErrors.Add(1)
		if r.metrics != nil {
			r.metrics.RecordDelivery("handler_error", elapsed)
		}
		r.logger.ErrorContext(ctx, "event handler failed",
			"subscription_id", s.id,
			"event_type", s.eventType.String(),
			"error", err,
		)
		return
	}

	r.delivered.Add(1)
	if r.metrics != nil {
		r.metrics.RecordDelivery("delivered", elapsed)
	}
}
