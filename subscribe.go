package pulse

import (
	"context"
	"fmt"
	"reflect"

	"github.com/xraph/pulse/id"
)

// Handler is the typed callback invoked for each delivered event. Returning
// an error marks the delivery failed; the error is logged and counted but
// never propagated to the publisher or to other subscriptions.
type Handler[T any] func(ctx context.Context, event T) error

// Subscribe registers handler for events of the concrete type T. The
// subscription lives until scope is cancelled, Cancel is called, or the
// relay is closed. Events published before Subscribe returns are not
// delivered; use SubscribeSticky to observe the retained event.
func Subscribe[T any](r *Relay, scope context.Context, handler Handler[T]) (*Subscription, error) {
	return subscribe(r, scope, handler, false)
}

// SubscribeSticky is Subscribe plus an immediate replay of the retained
// sticky event of type T, if one exists. The replay is enqueued atomically
// with registration, so the handler observes the retained event strictly
// before anything published afterwards.
func SubscribeSticky[T any](r *Relay, scope context.Context, handler Handler[T]) (*Subscription, error) {
	return subscribe(r, scope, handler, true)
}

func subscribe[T any](r *Relay, scope context.Context, handler Handler[T], replaySticky bool) (*Subscription, error) {
	if scope == nil {
		return nil, ErrNilScope
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Interface {
		return nil, fmt.Errorf("%w: %s", ErrInterfaceEvent, t)
	}

	wrapped := func(ctx context.Context, ev any) error {
		return handler(ctx, ev.(T))
	}
	return r.attach(scope, t, wrapped, replaySticky)
}

// attach registers a subscription and starts its dispatch goroutine.
//
// Registration and sticky replay happen under one registry lock: publishers
// hold at least a read lock, so no publish can slot in between the two. A
// sticky subscriber therefore sees the retained event first, then every
// later publish, in order.
func (r *Relay) attach(scope context.Context, t reflect.Type, handler func(context.Context, any) error, replaySticky bool) (*Subscription, error) {
	buffer := r.config.SubscriptionBuffer
	if buffer < 1 {
		buffer = 1
	}

	subCtx, cancel := context.WithCancel(scope)
	s := &Subscription{
		id:        id.NewSubscriptionID(),
		eventType: t,
		handler:   handler,
		ch:        make(chan any, buffer),
		ctx:       subCtx,
		cancel:    cancel,
		done:      make(chan struct{}),
		relay:     r,
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	set, ok := r.subs[t]
	if !ok {
		set = make(map[string]*Subscription)
		r.subs[t] = set
	}
	set[s.id.String()] = s
	if replaySticky {
		// The channel is fresh and has capacity for at least one event,
		// so this send cannot block while the lock is held.
		if ev, ok := r.sticky[t]; ok {
			s.ch <- ev
		}
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go s.dispatch()

	if r.metrics != nil {
		r.metrics.ActiveSubscriptions.Inc()
	}
	r.logger.DebugContext(scope, "subscription attached",
		"subscription_id", s.id,
		"event_type", t.String(),
		"sticky_replay", replaySticky,
	)
	return s, nil
}
