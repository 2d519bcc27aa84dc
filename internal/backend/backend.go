// Package backend sends one prompt to a generative text model and returns its reply.
//
// Two implementations exist: HTTPBackend talks to an OpenAI-compatible
// chat completions endpoint, and CodexBackend runs the codex CLI in a
// read-only sandbox. Select picks one from the spec and the environment.
//
// Calls are synchronous and never retried here; every failure is returned
// wrapped with errors.ErrBackend and the caller decides what is fatal.
//
// IMPORTANT: This package may import internal/constants, internal/errors,
// internal/config and internal/logging. It MUST NOT import internal/engine
// or internal/cli.
package backend

import "context"

// Request is a single completion request.
type Request struct {
	// Role names the caller (plan, select, implement, review) for logging.
	Role string

	SystemPrompt string
	UserPrompt   string

	// Temperature and MaxTokens are honored by the http backend only.
	Temperature float32
	MaxTokens   int
}

// Backend produces the model's text reply for a request.
type Backend interface {
	// Name identifies the backend in logs and artifacts.
	Name() string

	// Complete sends the request and returns the raw reply text.
	Complete(ctx context.Context, req *Request) (string, error)
}

// Func adapts a plain function to the Backend interface.
type Func func(ctx context.Context, req *Request) (string, error)

// Name returns "func".
func (f Func) Name() string { return "func" }

// Complete calls f.
func (f Func) Complete(ctx context.Context, req *Request) (string, error) {
	return f(ctx, req)
}
