package pulse

import "context"

// Stream returns a receive channel of events of type T plus a stop function.
// The channel is unbuffered beyond the subscription's own buffer and is
// closed exactly once, after the subscription is fully torn down, whether by
// the stop function, ctx cancellation, or relay close. Ranging over the
// channel until it closes is therefore always safe.
func Stream[T any](r *Relay, ctx context.Context) (<-chan T, func(), error) {
	return stream[T](r, ctx, false)
}

// StreamSticky is Stream plus an immediate replay of the retained sticky
// event of type T, if one exists, as the first element on the channel.
func StreamSticky[T any](r *Relay, ctx context.Context) (<-chan T, func(), error) {
	return stream[T](r, ctx, true)
}

func stream[T any](r *Relay, ctx context.Context, replaySticky bool) (<-chan T, func(), error) {
	out := make(chan T)
	handler := func(hctx context.Context, ev T) error {
		select {
		case out <- ev:
		case <-hctx.Done():
		}
		return nil
	}

	sub, err := subscribe(r, ctx, handler, replaySticky)
	if err != nil {
		return nil, nil, err
	}

	// Close only after dispatch has exited; the handler is the sole sender,
	// so no send can race the close.
	go func() {
		<-sub.Done()
		close(out)
	}()

	return out, sub.Cancel, nil
}
