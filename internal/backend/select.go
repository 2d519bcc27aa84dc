package backend

import (
	"fmt"

	"github.com/mrz1836/slicer/internal/config"
	"github.com/mrz1836/slicer/internal/constants"
	slicererrors "github.com/mrz1836/slicer/internal/errors"
)

// Options collects construction options forwarded to the chosen backend.
type Options struct {
	HTTP  []HTTPOption
	Codex []CodexOption
}

// Select chooses the backend for a run. It performs no I/O.
//
//	auto + api key      -> http
//	auto, no key        -> sandboxed-cli
//	http + api key      -> http
//	http, no key        -> ErrBackendUnavailable
//	sandboxed-cli       -> sandboxed-cli
func Select(spec *config.Spec, env config.BackendConfig, opts Options) (Backend, error) {
	mode := spec.ModelBackend
	if (mode == constants.BackendHTTP || mode == constants.BackendAuto) && env.HasAPIKey() {
		return NewHTTPBackend(env.APIKey, spec.Model, spec.APIBaseURL, opts.HTTP...), nil
	}
	if mode == constants.BackendSandboxedCLI || mode == constants.BackendAuto {
		return NewCodexBackend(env.CodexBin, spec.Model, spec.WorkingDirectory, env.ReasoningEffort, opts.Codex...), nil
	}
	if mode == constants.BackendHTTP {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is required when model_backend=http", slicererrors.ErrBackendUnavailable)
	}
	return nil, fmt.Errorf("%w: unable to initialize model backend %q", slicererrors.ErrBackendUnavailable, mode)
}
