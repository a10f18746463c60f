// Package safego guards background goroutines against panics.
package safego

import "log/slog"

// Go runs fn on its own goroutine and turns a panic into an error log
// instead of a crashed process. The metrics listener and the DB stats
// collector run under it; anything long-lived and fire-and-forget should.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered panic in background goroutine", "panic", r)
			}
		}()
		fn()
	}()
}
