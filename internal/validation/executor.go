package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/slicer/internal/constants"
	"github.com/mrz1836/slicer/internal/domain"
)

// Executor runs check commands with a per-command timeout.
type Executor struct {
	runner  CommandRunner
	timeout time.Duration
}

// NewExecutor creates an executor with the default command runner.
func NewExecutor(timeout time.Duration) *Executor {
	return NewExecutorWithRunner(timeout, &DefaultCommandRunner{})
}

// NewExecutorWithRunner creates an executor with a custom runner (for testing).
func NewExecutorWithRunner(timeout time.Duration, runner CommandRunner) *Executor {
	if timeout <= 0 {
		timeout = time.Duration(constants.DefaultCommandTimeoutSeconds) * time.Second
	}
	return &Executor{
		runner:  runner,
		timeout: timeout,
	}
}

// RunAll runs every command in order and returns one result per command.
// A failing or timed-out command never stops the ones after it. The only
// error is cancellation of ctx itself, in which case the results so far are returned.
func (e *Executor) RunAll(ctx context.Context, commands []string, workDir string) ([]domain.CheckResult, error) {
	results := make([]domain.CheckResult, 0, len(commands))
	for i, command := range commands {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result := e.RunOne(ctx, command, workDir)
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		zerolog.Ctx(ctx).Info().
			Str("command", command).
			Int("command_num", i+1).
			Int("total_commands", len(commands)).
			Int("exit_code", result.ExitCode).
			Bool("timed_out", result.TimedOut).
			Msg("check command finished")
		results = append(results, result)
	}
	return results, nil
}

// RunOne runs a single command. A timeout yields exit code 124 and an output
// that ends with "Command timed out after <timeout>: <command>".
func (e *Executor) RunOne(ctx context.Context, command, workDir string) domain.CheckResult {
	log := zerolog.Ctx(ctx)
	log.Debug().Str("command", command).Str("work_dir", workDir).Msg("executing check command")

	cmdCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	stdout, stderr, exitCode, runErr := e.runner.Run(cmdCtx, workDir, command)
	duration := time.Since(start)

	output := combineOutput(stdout, stderr)

	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		log.Warn().
			Str("command", command).
			Dur("duration_ms", duration).
			Msg("check command timed out")
		// The marker goes last so it survives tail truncation of long output.
		msg := fmt.Sprintf("Command timed out after %s: %s", formatTimeout(e.timeout), command)
		if output != "" {
			msg = output + "\n" + msg
		}
		return domain.CheckResult{
			Command:  command,
			ExitCode: constants.TimeoutExitCode,
			Output:   msg,
			TimedOut: true,
		}
	}

	if runErr != nil && exitCode == 0 {
		exitCode = 1
	}
	if runErr != nil && output == "" {
		output = runErr.Error()
	}

	return domain.CheckResult{
		Command:  command,
		ExitCode: exitCode,
		Output:   output,
	}
}

// combineOutput joins stdout and stderr the way a terminal would show them, trimmed.
func combineOutput(stdout, stderr string) string {
	out := stdout
	if stderr != "" {
		out += "\n" + stderr
	}
	return strings.TrimSpace(out)
}

// formatTimeout renders whole-second timeouts as "1200s".
func formatTimeout(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%ds", int64(d/time.Second))
	}
	return d.String()
}
