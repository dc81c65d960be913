// Package pulse provides a typed in-process event relay for Go.
//
// Pulse is a library, not a service. Import it into your application to get
// publish/subscribe over plain Go types with sticky (retained) events,
// scope-bound subscriptions, and channel streams, plus namespaced preference
// storage that emits change events through the same relay.
//
// Key features:
//   - Exact-type dispatch: a subscription receives only the concrete type it registered for
//   - Sticky events: the latest event per type is retained and replayed to late subscribers
//   - Subscriptions bound to a context scope; cancelling the scope tears them down
//   - Channel streams as an alternative to callback handlers
//   - Composable store pattern with multiple backends (Postgres, Bun, SQLite, Mongo, Redis, Memory)
//   - Signed, schema-validated preference snapshots for export and import
//
// Quick start:
//
//	r, err := pulse.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close(context.Background())
//
//	sub, _ := pulse.Subscribe(r, ctx, func(ctx context.Context, ev LoginEvent) error {
//	    fmt.Println("user logged in:", ev.UserID)
//	    return nil
//	})
//	defer sub.Cancel()
//
//	r.PublishSticky(ctx, LoginEvent{UserID: 1})
package pulse
