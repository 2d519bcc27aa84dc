// Package ctxutil provides context helpers shared by the run loop and its collaborators.
package ctxutil

import "context"

// Canceled returns the context error when ctx is done, nil otherwise.
// Callers use it at the top of each engine step so an interrupted run stops
// between steps, never in the middle of applying a change set.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}

// Detached returns a context that keeps ctx's values (the logger among them)
// but is never canceled. It is used for best-effort artifact writes after a
// run was interrupted.
func Detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
