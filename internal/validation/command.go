// Package validation runs check commands and summarizes their results.
//
// SECURITY NOTE: check commands come from the spec file and from the plan the
// model produced. They run with the user's privileges through sh -c, the same
// trust model as a Makefile target. Review a plan before running it against a
// repository you care about.
package validation

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/mrz1836/slicer/internal/constants"
)

// CommandRunner executes one shell command.
// A non-zero exit is reported through exitCode; err is non-nil as well so
// callers can tell a clean exit from a kill or spawn failure.
type CommandRunner interface {
	Run(ctx context.Context, workDir, command string) (stdout, stderr string, exitCode int, err error)
}

// DefaultCommandRunner implements CommandRunner using os/exec and sh -c.
// The command runs in its own process group, and the whole group is killed
// when ctx ends, so a timed-out `make test` does not leave its children behind.
type DefaultCommandRunner struct{}

// Run executes a shell command using sh -c.
func (r *DefaultCommandRunner) Run(ctx context.Context, workDir, command string) (stdout, stderr string, exitCode int, err error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command) //#nosec G204 -- check commands are trusted input, see package doc
	cmd.Dir = workDir
	configureProcessGroup(cmd)
	cmd.WaitDelay = constants.KillGracePeriod

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = 1
		}
	}

	return stdout, stderr, exitCode, err
}

// Ensure DefaultCommandRunner implements CommandRunner.
var _ CommandRunner = (*DefaultCommandRunner)(nil)
