package validation_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/slicer/internal/domain"
	"github.com/mrz1836/slicer/internal/validation"
)

// MockCommandRunner implements CommandRunner for testing.
type MockCommandRunner struct {
	mu        sync.Mutex
	responses map[string]mockResponse
	calls     []string
}

type mockResponse struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
	block    bool
}

func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{responses: make(map[string]mockResponse)}
}

func (m *MockCommandRunner) SetResponse(command, stdout, stderr string, exitCode int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[command] = mockResponse{stdout: stdout, stderr: stderr, exitCode: exitCode, err: err}
}

// SetBlocking makes command wait until its context ends.
func (m *MockCommandRunner) SetBlocking(command, stdout string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[command] = mockResponse{stdout: stdout, block: true}
}

func (m *MockCommandRunner) Run(ctx context.Context, _, command string) (string, string, int, error) {
	m.mu.Lock()
	m.calls = append(m.calls, command)
	resp, ok := m.responses[command]
	m.mu.Unlock()

	if !ok {
		return "", "", 0, nil
	}
	if resp.block {
		<-ctx.Done()
		return resp.stdout, "", -1, ctx.Err()
	}
	return resp.stdout, resp.stderr, resp.exitCode, resp.err
}

func (m *MockCommandRunner) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func TestExecutor_RunAll_AllPass(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.SetResponse("go build ./...", "ok\n", "", 0, nil)
	runner.SetResponse("go test ./...", "PASS\n", "", 0, nil)

	executor := validation.NewExecutorWithRunner(time.Minute, runner)
	results, err := executor.RunAll(context.Background(), []string{"go build ./...", "go test ./..."}, t.TempDir())

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "ok", results[0].Output)
	assert.Equal(t, 0, results[1].ExitCode)
	assert.True(t, validation.AllPassed(results))
}

func TestExecutor_RunAll_FailureDoesNotStopLaterCommands(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.SetResponse("lint", "", "bad style", 2, errors.New("exit status 2")) //nolint:err113 // test fixture
	runner.SetResponse("test", "PASS", "", 0, nil)

	executor := validation.NewExecutorWithRunner(time.Minute, runner)
	results, err := executor.RunAll(context.Background(), []string{"lint", "test"}, t.TempDir())

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].ExitCode)
	assert.Equal(t, "bad style", results[0].Output)
	assert.True(t, results[1].Passed())
	assert.Equal(t, []string{"lint", "test"}, runner.Calls())
	assert.False(t, validation.AllPassed(results))
}

func TestExecutor_RunOne_CombinesStdoutAndStderr(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.SetResponse("cmd", "  out  \n", "err\n", 1, errors.New("exit status 1")) //nolint:err113 // test fixture

	executor := validation.NewExecutorWithRunner(time.Minute, runner)
	result := executor.RunOne(context.Background(), "cmd", t.TempDir())

	assert.Equal(t, "out  \n\nerr", result.Output)
	assert.Equal(t, 1, result.ExitCode)
}

func TestExecutor_RunOne_SpawnErrorWithoutExitCode(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.SetResponse("missing", "", "", 0, errors.New("exec: not found")) //nolint:err113 // test fixture

	executor := validation.NewExecutorWithRunner(time.Minute, runner)
	result := executor.RunOne(context.Background(), "missing", t.TempDir())

	assert.Equal(t, 1, result.ExitCode)
	assert.Equal(t, "exec: not found", result.Output)
}

func TestExecutor_RunOne_Timeout(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.SetBlocking("sleep forever", "partial")

	executor := validation.NewExecutorWithRunner(50*time.Millisecond, runner)
	result := executor.RunOne(context.Background(), "sleep forever", t.TempDir())

	assert.True(t, result.TimedOut)
	assert.Equal(t, 124, result.ExitCode)
	assert.Equal(t, "partial\nCommand timed out after 50ms: sleep forever", result.Output)
}

func TestExecutor_RunOne_TimeoutMarkerFollowsLongOutput(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.SetBlocking("noisy", strings.Repeat("x", 6000))

	executor := validation.NewExecutorWithRunner(50*time.Millisecond, runner)
	result := executor.RunOne(context.Background(), "noisy", t.TempDir())

	require.True(t, result.TimedOut)
	assert.True(t, strings.HasSuffix(result.Output, "\nCommand timed out after 50ms: noisy"))
	assert.Contains(t, validation.Summarize([]domain.CheckResult{result}), "Command timed out after 50ms: noisy")
}

func TestExecutor_RunAll_TimeoutContinues(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.SetBlocking("hang", "")
	runner.SetResponse("after", "done", "", 0, nil)

	executor := validation.NewExecutorWithRunner(20*time.Millisecond, runner)
	results, err := executor.RunAll(context.Background(), []string{"hang", "after"}, t.TempDir())

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].TimedOut)
	assert.Equal(t, "done", results[1].Output)
}

func TestExecutor_RunAll_ParentCanceled(t *testing.T) {
	runner := NewMockCommandRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executor := validation.NewExecutorWithRunner(time.Minute, runner)
	results, err := executor.RunAll(ctx, []string{"a", "b"}, t.TempDir())

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.Empty(t, runner.Calls())
}

func TestNewExecutor_NonPositiveTimeoutUsesDefault(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.SetResponse("x", "y", "", 0, nil)
	executor := validation.NewExecutorWithRunner(0, runner)
	result := executor.RunOne(context.Background(), "x", t.TempDir())
	assert.True(t, result.Passed())
}
