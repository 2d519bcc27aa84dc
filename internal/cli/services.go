package cli

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mrz1836/slicer/internal/backend"
	"github.com/mrz1836/slicer/internal/config"
	"github.com/mrz1836/slicer/internal/engine"
)

// services holds the collaborators plan and run are built from.
// Tests replace individual fields.
type services struct {
	initLogger        func(verbose, quiet bool) zerolog.Logger
	loadBackendConfig func() config.BackendConfig
	selectBackend     func(spec *config.Spec, env config.BackendConfig) (backend.Backend, error)
	engineOptions     []engine.Option
}

func defaultServices() *services {
	return &services{
		initLogger:        InitLogger,
		loadBackendConfig: config.LoadBackendConfig,
		selectBackend: func(spec *config.Spec, env config.BackendConfig) (backend.Backend, error) {
			return backend.Select(spec, env, backend.Options{})
		},
	}
}

// buildEngine selects the backend for spec and wraps it for call logging.
func (s *services) buildEngine(ctx context.Context, spec *config.Spec) (*engine.Engine, error) {
	b, err := s.selectBackend(spec, s.loadBackendConfig())
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().
		Str("backend", b.Name()).
		Str("model", spec.Model).
		Msg("backend selected")
	return engine.New(backend.NewRecording(b), s.engineOptions...), nil
}
