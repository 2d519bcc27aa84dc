// Package git queries repository state through the git CLI.
//
// Version control is the ground truth for which files exist and which have
// changed. Nothing here is cached: every query runs git again, so callers see
// the tree as it is after their last mutation.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mrz1836/slicer/internal/errors"
)

// runRaw executes git in workDir and returns stdout untouched.
// Errors wrap ErrGitOperation (and ErrNotGitRepo when git says so) and carry stderr.
func runRaw(ctx context.Context, workDir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...) //#nosec G204 -- args are constructed internally, paths are passed after "--"
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(strings.ToLower(msg), "not a git repository") {
			return "", fmt.Errorf("git %s failed: %s: %w: %w", args[0], msg, errors.ErrNotGitRepo, errors.ErrGitOperation)
		}
		if msg != "" {
			return "", fmt.Errorf("git %s failed: %s: %w", args[0], msg, errors.ErrGitOperation)
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], errors.ErrGitOperation)
	}

	return stdout.String(), nil
}

// RunCommand executes a git command in workDir and returns its trimmed output.
func RunCommand(ctx context.Context, workDir string, args ...string) (string, error) {
	out, err := runRaw(ctx, workDir, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
