package backend

import (
	"context"
	"io"
	"os"
	"os/exec"
	"testing"
)

// EnsureNoRealAPIKeys clears API keys for the duration of the test so a
// misconfigured test can never reach a real endpoint.
func EnsureNoRealAPIKeys(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SLICER_API_KEY", "")
}

// MockExecutor is a test implementation of CommandExecutor. When Reply is
// set it writes it to the --output-last-message path, as codex would.
type MockExecutor struct {
	Reply      string
	WriteReply bool
	StdoutData []byte
	StderrData []byte
	Err        error

	// CapturedCmd stores the last executed command for verification.
	CapturedCmd *exec.Cmd
	// CapturedStdin holds what would have been piped to the process.
	CapturedStdin string
	// Block makes Execute wait for ctx to end.
	Block bool
}

func (m *MockExecutor) Execute(ctx context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	m.CapturedCmd = cmd
	if cmd.Stdin != nil {
		data, err := io.ReadAll(cmd.Stdin)
		if err != nil {
			return nil, nil, err
		}
		m.CapturedStdin = string(data)
	}
	if m.Block {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	if m.WriteReply {
		if out := argAfter(cmd.Args, "--output-last-message"); out != "" {
			if err := os.WriteFile(out, []byte(m.Reply), 0o600); err != nil {
				return nil, nil, err
			}
		}
	}
	return m.StdoutData, m.StderrData, m.Err
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}
