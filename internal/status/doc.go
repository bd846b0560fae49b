// Package status carries connectivity transitions of the remote highlight
// source to whoever listens: the HTTP event stream, the CLI, tests.
//
// Publish is synchronous and keeps no history. A subscriber registered after
// an event was published never sees it:
//
//	bus := status.NewBus()
//	id, _ := bus.Subscribe(func(e status.Event) {
//	    if e.Kind == status.KindError { ... }
//	})
//	defer bus.Unsubscribe(id)
package status
