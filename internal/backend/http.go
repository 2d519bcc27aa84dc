package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mrz1836/slicer/internal/constants"
	"github.com/mrz1836/slicer/internal/ctxutil"
	slicererrors "github.com/mrz1836/slicer/internal/errors"
)

// HTTPBackend calls an OpenAI-compatible chat completions endpoint.
type HTTPBackend struct {
	client  *openai.Client
	model   string
	baseURL string
	timeout time.Duration
}

// HTTPOption configures an HTTPBackend.
type HTTPOption func(*HTTPBackend, *openai.ClientConfig)

// WithHTTPClient overrides the transport client (for testing).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(_ *HTTPBackend, cfg *openai.ClientConfig) {
		cfg.HTTPClient = c
	}
}

// WithHTTPTimeout overrides the per-call timeout.
func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(b *HTTPBackend, _ *openai.ClientConfig) {
		b.timeout = d
	}
}

// NewHTTPBackend creates a backend for the endpoint at baseURL.
func NewHTTPBackend(apiKey, model, baseURL string, opts ...HTTPOption) *HTTPBackend {
	baseURL = strings.TrimRight(baseURL, "/")
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL

	b := &HTTPBackend{
		model:   model,
		baseURL: baseURL,
		timeout: constants.HTTPBackendTimeout,
	}
	for _, opt := range opts {
		opt(b, &cfg)
	}
	b.client = openai.NewClientWithConfig(cfg)
	return b
}

// Name returns "http".
func (b *HTTPBackend) Name() string { return constants.BackendHTTP }

// Complete sends one chat completion with a system and a user message.
func (b *HTTPBackend) Complete(ctx context.Context, req *Request) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       b.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", wrapHTTPError(err, b.timeout)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response from %s has no choices", slicererrors.ErrBackend, b.baseURL)
	}
	return resp.Choices[0].Message.Content, nil
}

// wrapHTTPError classifies a go-openai failure.
func wrapHTTPError(err error, timeout time.Duration) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: request failed (%d): %s", slicererrors.ErrBackend, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: request failed (%d): %s", slicererrors.ErrBackend, reqErr.HTTPStatusCode, string(reqErr.Body))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: no response within %s", slicererrors.ErrBackend, timeout)
	}
	return fmt.Errorf("%w: network failure: %w", slicererrors.ErrBackend, err)
}

// Compile-time check that HTTPBackend implements Backend.
var _ Backend = (*HTTPBackend)(nil)
