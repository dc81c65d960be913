package pulse

// Stats is a point-in-time snapshot of the relay's counters.
type Stats struct {
	Published     uint64 `json:"published"`
	Delivered     uint64 `json:"delivered"`
	Dropped       uint64 `json:"dropped"`
	HandlerErrors uint64 `json:"handler_errors"`
	HandlerPanics uint64 `json:"handler_panics"`
	Subscriptions int    `json:"subscriptions"`
	StickyEvents  int    `json:"sticky_events"`
}

// Stats returns a snapshot of the relay's counters. Counter fields are
// monotonic over the relay's lifetime; Subscriptions and StickyEvents are
// current sizes.
func (r *Relay) Stats() Stats {
	r.mu.RLock()
	subs := 0
	for _, set := range r.subs {
		subs += len(set)
	}
	sticky := len(r.sticky)
	r.mu.RUnlock()

	return Stats{
		Published:     r.published.Load(),
		Delivered:     r.delivered.Load(),
		Dropped:       r.dropped.Load(),
		HandlerErrors: r.handlerErrors.Load(),
		HandlerPanics: r.handlerPanics.Load(),
		Subscriptions: subs,
		StickyEvents:  sticky,
	}
}
