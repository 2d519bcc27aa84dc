package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/slicer/internal/backend"
	"github.com/mrz1836/slicer/internal/clock"
	"github.com/mrz1836/slicer/internal/config"
	"github.com/mrz1836/slicer/internal/engine"
)

const (
	planOneSlice = `{"slices":[{"id":"S1","title":"Create greeting","objective":"Add hello.txt","acceptance":["hello.txt exists"],"check_commands":["test -f hello.txt"],"files_hint":[]}]}`
	selectHello  = `{"files_to_read":["README.md"],"files_to_create":["hello.txt"]}`
	createHello  = `{"summary":"add hello","changes":[{"path":"hello.txt","action":"upsert","content":"hello\n"}]}`
	reviewPass   = `{"pass":true,"issues":[],"required_fixes":[]}`
	reviewFail   = `{"pass":false,"issues":["wrong greeting"],"required_fixes":["say hi"]}`
)

// roleBackend answers each role with a fixed reply and counts calls.
type roleBackend struct {
	mu      sync.Mutex
	replies map[string]string
	calls   int
}

func newRoleBackend(review string) *roleBackend {
	return &roleBackend{replies: map[string]string{
		engine.RolePlan:      planOneSlice,
		engine.RoleSelect:    selectHello,
		engine.RoleImplement: createHello,
		engine.RoleReview:    review,
	}}
}

func (b *roleBackend) Name() string { return "scripted" }

func (b *roleBackend) Complete(_ context.Context, req *backend.Request) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return b.replies[req.Role], nil
}

func (b *roleBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// testServices wires b in place of the real backend and keeps logs off disk.
func testServices(b backend.Backend) *services {
	return &services{
		initLogger: func(verbose, quiet bool) zerolog.Logger {
			return InitLoggerWithWriter(verbose, quiet, io.Discard)
		},
		loadBackendConfig: func() config.BackendConfig { return config.BackendConfig{} },
		selectBackend: func(*config.Spec, config.BackendConfig) (backend.Backend, error) {
			return b, nil
		},
		engineOptions: []engine.Option{
			engine.WithClock(clock.Fixed{T: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}),
			engine.WithRunID(func() string { return "run-cli" }),
		},
	}
}

type cliResult struct {
	err    error
	stdout string
	stderr string
}

func (r cliResult) exitCode() int {
	return ExitCodeForError(r.err)
}

// runCLI executes the CLI in-process with isolated home and color settings.
func runCLI(t *testing.T, svc *services, args ...string) cliResult {
	t.Helper()
	t.Setenv(config.HomeEnvVar, t.TempDir())
	t.Setenv("NO_COLOR", "1")

	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), BuildInfo{Version: "test"}, args, svc, &stdout, &stderr)
	return cliResult{err: err, stdout: stdout.String(), stderr: stderr.String()}
}

// writeSpec writes a spec file for repo, applying overrides on top of a
// minimal passing configuration.
func writeSpec(t *testing.T, repo string, overrides map[string]any) string {
	t.Helper()
	spec := map[string]any{
		"goal":                   "Add a greeting file",
		"working_directory":      repo,
		"check_commands":         []string{"true"},
		"max_slices":             1,
		"max_attempts_per_slice": 2,
	}
	for k, v := range overrides {
		spec[k] = v
	}
	data, err := json.Marshal(spec)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "spec.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
