// Package stream bridges producer tasks and channel consumers.
//
// A Stream runs exactly one producer goroutine. The producer pushes
// elements through emit and the consumer receives them from C. Closure is
// explicit and single: C is closed exactly once, when the producer has
// returned, whether it completed, failed, or was cancelled.
package stream

import (
	"context"
	"errors"
	"sync"
)

// Source produces the elements of a stream. It runs on its own goroutine
// and must return when ctx is cancelled. Each emit call hands one element
// to the consumer, blocking until the element is accepted or ctx dies; in
// the latter case emit returns ctx.Err(), which the source should
// propagate.
type Source[T any] func(ctx context.Context, emit func(T) error) error

// Stream is the consumer half of a producer task.
type Stream[T any] struct {
	ch     chan T
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Option configures a Stream.
type Option func(*config)

type config struct {
	buffer int
}

// WithBuffer sets the consumer channel capacity. Zero (the default) makes
// emit rendezvous with the consumer.
func WithBuffer(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.buffer = n
		}
	}
}

// New starts source on its own goroutine and returns the consumer half.
// The producer stops when source returns, when ctx is cancelled, or when
// Close is called.
func New[T any](ctx context.Context, source Source[T], opts ...Option) *Stream[T] {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Stream[T]{
		ch:     make(chan T, cfg.buffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	emit := func(v T) error {
		select {
		case s.ch <- v:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	go func() {
		err := source(ctx, emit)
		// Cancellation is the normal way for a stream to end, not a failure.
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()

		cancel()
		close(s.ch)
		close(s.done)
	}()
	return s
}

// C returns the consumer channel. It is closed exactly once, after the
// producer has returned; from then on Err reports how the stream ended.
func (s *Stream[T]) C() <-chan T { return s.ch }

// Err returns the terminal error. It is meaningful once C (or Done) is
// closed; nil means clean completion or cancellation.
func (s *Stream[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close cancels the producer. It returns immediately; receive from C until
// it closes, or wait on Done, to observe full shutdown. Close is idempotent.
func (s *Stream[T]) Close() { s.cancel() }

// Done is closed when the producer has returned and C is closed.
func (s *Stream[T]) Done() <-chan struct{} { return s.done }
