package backend

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/slicer/internal/logging"
)

// Recording wraps a Backend and logs every call through the context logger.
type Recording struct {
	next Backend
	now  func() time.Time
}

// NewRecording wraps next.
func NewRecording(next Backend) *Recording {
	return &Recording{next: next, now: time.Now}
}

// Name returns the wrapped backend's name.
func (r *Recording) Name() string { return r.next.Name() }

// Complete forwards to the wrapped backend.
func (r *Recording) Complete(ctx context.Context, req *Request) (string, error) {
	log := zerolog.Ctx(ctx)
	log.Debug().
		Str("backend", r.next.Name()).
		Str("role", req.Role).
		Int("system_chars", len(req.SystemPrompt)).
		Int("user_chars", len(req.UserPrompt)).
		Msg("backend call started")

	start := r.now()
	reply, err := r.next.Complete(ctx, req)
	elapsed := r.now().Sub(start)

	if err != nil {
		log.Error().
			Str("backend", r.next.Name()).
			Str("role", req.Role).
			Dur("duration_ms", elapsed).
			Str("error", logging.FilterSensitiveValue(err.Error())).
			Msg("backend call failed")
		return "", err
	}

	log.Info().
		Str("backend", r.next.Name()).
		Str("role", req.Role).
		Dur("duration_ms", elapsed).
		Int("reply_chars", len(reply)).
		Msg("backend call finished")
	return reply, nil
}

// Compile-time check that Recording implements Backend.
var _ Backend = (*Recording)(nil)
