package pulse

import "reflect"

// Sticky returns the retained sticky event of type T without registering a
// subscription.
func Sticky[T any](r *Relay) (T, bool) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()

	r.mu.RLock()
	ev, ok := r.sticky[t]
	r.mu.RUnlock()
	if !ok {
		return zero, false
	}
	return ev.(T), true
}

// RemoveSticky drops the retained sticky event of type T and reports whether
// one was retained. Later SubscribeSticky calls for T get no replay; live
// subscriptions are unaffected.
func RemoveSticky[T any](r *Relay) bool {
	t := reflect.TypeOf((*T)(nil)).Elem()

	r.mu.Lock()
	_, ok := r.sticky[t]
	delete(r.sticky, t)
	n := len(r.sticky)
	r.mu.Unlock()

	if ok {
		if r.metrics != nil {
			r.metrics.StickyEvents.Set(float64(n))
		}
		r.logger.Debug("sticky event removed", "event_type", t.String())
	}
	return ok
}

// RemoveAllSticky drops every retained sticky event and returns how many
// were removed.
func (r *Relay) RemoveAllSticky() int {
	r.mu.Lock()
	n := len(r.sticky)
	clear(r.sticky)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.StickyEvents.Set(0)
	}
	if n > 0 {
		r.logger.Debug("all sticky events removed", "count", n)
	}
	return n
}
