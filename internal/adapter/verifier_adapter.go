package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// DefaultVerifier is the verifier binary invoked when none is configured.
const DefaultVerifier = "refinedc"

// DefaultVerifierArgs precede the file argument.
var DefaultVerifierArgs = []string{"check"}

const waitDelay = 5 * time.Second

// VerifyResult is the raw outcome of one verifier run.
type VerifyResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Output concatenates stdout and stderr, the only diagnostic surface.
func (r VerifyResult) Output() string {
	return r.Stdout + r.Stderr
}

// Success reports whether the verifier accepted the file.
func (r VerifyResult) Success() bool {
	return r.ExitCode == 0
}

// VerifierAdapter abstracts the external verifier process.
type VerifierAdapter interface {
	// Verify checks file (relative to workDir) and reports its exit status and
	// output. A non-zero exit is not an error; err is set only when the
	// process could not be run or was cancelled.
	Verify(ctx context.Context, workDir, file string) (VerifyResult, error)
}

// LocalVerifierAdapter runs the verifier with os/exec.
type LocalVerifierAdapter struct {
	command string
	args    []string
	timeout time.Duration
}

// NewLocalVerifierAdapter constructs a LocalVerifierAdapter. An empty command
// selects DefaultVerifier with DefaultVerifierArgs. A zero timeout means the
// caller's context alone bounds the run.
func NewLocalVerifierAdapter(command string, args []string, timeout time.Duration) *LocalVerifierAdapter {
	if command == "" {
		command = DefaultVerifier
		args = DefaultVerifierArgs
	}

	return &LocalVerifierAdapter{
		command: command,
		args:    append([]string(nil), args...),
		timeout: timeout,
	}
}

// Verify runs `<command> <args...> <file>` in workDir.
func (a *LocalVerifierAdapter) Verify(ctx context.Context, workDir, file string) (VerifyResult, error) {
	return runTool(ctx, "verifier", a.command, a.args, a.timeout, workDir, file)
}

// runTool runs `<command> <args...> <file>` in workDir and captures its exit
// status and output. A non-zero exit is a result, not an error.
func runTool(ctx context.Context, tool, command string, baseArgs []string, timeout time.Duration, workDir, file string) (VerifyResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	args := append(append([]string(nil), baseArgs...), file)

	// #nosec G204 - the command comes from trusted configuration
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = workDir
	// Children of the tool may keep the output pipes open after it is killed.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result := VerifyResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		slog.Warn("tool cancelled", "tool", tool, "file", file, "elapsed", time.Since(start), "error", ctxErr)
		result.ExitCode = -1

		return result, fmt.Errorf("%s cancelled: %w", tool, ctxErr)
	}

	var exitErr *exec.ExitError

	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		slog.Error("failed to run tool", "tool", tool, "command", command, "file", file, "error", err)
		result.ExitCode = -1

		return result, fmt.Errorf("failed to run %s %s: %w", tool, command, err)
	}

	slog.Debug("tool finished", "tool", tool, "file", file, "exit_code", result.ExitCode, "elapsed", time.Since(start))

	return result, nil
}
