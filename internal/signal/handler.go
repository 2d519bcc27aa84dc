// Package signal cancels a running command when the user interrupts it.
//
// The first SIGINT or SIGTERM cancels the command context with
// errors.ErrInterrupted as its cause. In-flight check commands and backend
// calls observe the cancellation, and the run stops after persisting what it
// has. Later signals are ignored until Stop is called.
//
// Import rules:
//   - CAN import: std lib, internal/errors
//   - MUST NOT import: other internal packages
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mrz1836/slicer/internal/errors"
)

// Handler owns a context that is canceled on interrupt.
type Handler struct {
	ctx         context.Context //nolint:containedctx // handler manages context lifecycle
	cancel      context.CancelCauseFunc
	interrupted chan struct{}
	done        chan struct{}
	sigChan     chan os.Signal
	once        sync.Once
	stopOnce    sync.Once
}

// NewHandler starts listening for SIGINT and SIGTERM.
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	err := run(h.Context())
//	if h.WasInterrupted() { ... }
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancelCause(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
		// Buffered so signal.Notify never drops a signal while we are busy.
		sigChan: make(chan os.Signal, 1),
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the cancellable context.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel that closes on the first signal.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// WasInterrupted reports whether a signal has been received.
func (h *Handler) WasInterrupted() bool {
	select {
	case <-h.interrupted:
		return true
	default:
		return false
	}
}

// Stop stops listening and releases the context. It is safe to call twice.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel(context.Canceled)
	})
}

func (h *Handler) handleSignal() {
	h.once.Do(func() {
		h.cancel(errors.ErrInterrupted)
		close(h.interrupted)
	})
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.done:
			return
		case <-h.sigChan:
			h.handleSignal()
		}
	}
}
