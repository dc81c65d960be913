package stream

import (
	"context"

	"github.com/xraph/pulse/ratelimit"
)

// Throttle forwards the elements of in that limiter admits under key and
// rate, dropping the rest. The returned channel closes when in closes or
// ctx is cancelled. A rate of 0 passes every element through.
func Throttle[T any](ctx context.Context, in <-chan T, limiter *ratelimit.Limiter, key string, rate int) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					return
				}
				if !limiter.Allow(key, rate) {
					continue
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
