package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrz1836/slicer/internal/constants"
	"github.com/mrz1836/slicer/internal/ctxutil"
	slicererrors "github.com/mrz1836/slicer/internal/errors"
)

// codexPreamble sits between the system and user prompts; the CLI has no
// separate system message.
const codexPreamble = "Follow all instructions exactly. Return only the final answer with no preamble."

// lastMessageFile is the name of the reply file inside the per-call temp dir.
const lastMessageFile = "last_message.txt"

// outputTailChars bounds the stderr and stdout excerpts in a failure message.
const outputTailChars = 4000

// CommandExecutor abstracts command execution for testing.
// The production implementation runs the subprocess; tests can provide a mock.
type CommandExecutor interface {
	// Execute runs the command and returns stdout, stderr, and any error.
	Execute(ctx context.Context, cmd *exec.Cmd) (stdout, stderr []byte, err error)
}

// DefaultExecutor is the production implementation of CommandExecutor.
type DefaultExecutor struct{}

// Execute runs the command and captures its output.
func (e *DefaultExecutor) Execute(_ context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// CodexBackend runs `codex exec` in a read-only sandbox rooted at the
// working directory and reads the reply from --output-last-message.
type CodexBackend struct {
	bin             string
	model           string
	dir             string
	reasoningEffort string
	timeout         time.Duration
	executor        CommandExecutor
}

// CodexOption configures a CodexBackend.
type CodexOption func(*CodexBackend)

// WithExecutor replaces the subprocess executor (for testing).
func WithExecutor(e CommandExecutor) CodexOption {
	return func(b *CodexBackend) {
		if e != nil {
			b.executor = e
		}
	}
}

// WithCodexTimeout overrides the per-call timeout.
func WithCodexTimeout(d time.Duration) CodexOption {
	return func(b *CodexBackend) {
		b.timeout = d
	}
}

// NewCodexBackend creates a backend that invokes bin inside dir.
func NewCodexBackend(bin, model, dir, reasoningEffort string, opts ...CodexOption) *CodexBackend {
	if bin == "" {
		bin = constants.DefaultCodexBin
	}
	if reasoningEffort == "" {
		reasoningEffort = constants.DefaultReasoningEffort
	}
	b := &CodexBackend{
		bin:             bin,
		model:           model,
		dir:             dir,
		reasoningEffort: reasoningEffort,
		timeout:         constants.CodexBackendTimeout,
		executor:        &DefaultExecutor{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns "sandboxed-cli".
func (b *CodexBackend) Name() string { return constants.BackendSandboxedCLI }

// Complete runs one codex exec invocation. Temperature and MaxTokens are ignored.
func (b *CodexBackend) Complete(ctx context.Context, req *Request) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp("", "slicer-codex-")
	if err != nil {
		return "", fmt.Errorf("%w: %w: create temp dir: %w", slicererrors.ErrCodexInvocation, slicererrors.ErrBackend, err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()
	outFile := filepath.Join(tmpDir, lastMessageFile)

	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	cmd := exec.CommandContext(callCtx, b.bin, b.Args(outFile)...) //#nosec G204 -- binary comes from CODEX_CLI_BIN
	cmd.Stdin = strings.NewReader(CombinePrompt(req.SystemPrompt, req.UserPrompt))

	stdout, stderr, runErr := b.executor.Execute(callCtx, cmd)
	if runErr != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %w: codex exec timed out after %s", slicererrors.ErrCodexInvocation, slicererrors.ErrBackend, b.timeout)
		}
		return "", wrapCodexError(runErr, stdout, stderr)
	}

	data, err := os.ReadFile(outFile) //#nosec G304 -- path built inside our own temp dir
	if err != nil {
		return "", fmt.Errorf("%w: %w: codex exec did not produce output-last-message file", slicererrors.ErrCodexInvocation, slicererrors.ErrBackend)
	}
	return string(data), nil
}

// Args returns the codex command line, without the binary, for a reply written to outFile.
func (b *CodexBackend) Args(outFile string) []string {
	args := []string{
		"exec",
		"--ephemeral",
		"--sandbox", "read-only",
		"--skip-git-repo-check",
		"-C", b.dir,
		"-c", "mcp_servers={}",
		"-c", fmt.Sprintf("model_reasoning_effort=%q", b.reasoningEffort),
		"--output-last-message", outFile,
	}
	if b.model != "" {
		args = append(args, "-m", b.model)
	}
	return append(args, "-")
}

// CombinePrompt joins the system and user prompts into the single stdin prompt.
func CombinePrompt(system, user string) string {
	return system + "\n\n" + codexPreamble + "\n\n" + user
}

// wrapCodexError builds the failure message with output tails.
func wrapCodexError(err error, stdout, stderr []byte) error {
	if errors.Is(err, exec.ErrNotFound) || strings.Contains(err.Error(), "executable file not found") {
		return fmt.Errorf("%w: %w: codex CLI not found - install with: npm install -g @openai/codex", slicererrors.ErrCodexInvocation, slicererrors.ErrBackend)
	}
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return fmt.Errorf("%w: %w: codex exec failed (exit %d).\nstderr:\n%s\n\nstdout:\n%s",
		slicererrors.ErrCodexInvocation, slicererrors.ErrBackend, exitCode,
		tail(strings.TrimSpace(string(stderr)), outputTailChars),
		tail(strings.TrimSpace(string(stdout)), outputTailChars))
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Compile-time check that CodexBackend implements Backend.
var _ Backend = (*CodexBackend)(nil)
