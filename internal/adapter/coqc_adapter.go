package adapter

import (
	"context"
	"time"
)

// DefaultCoqc is the Coq compiler used to check generated lemma files.
const DefaultCoqc = "coqc"

// LemmaChecker compiles a generated lemma file before the verifier sees it.
type LemmaChecker interface {
	// Check compiles file (relative to workDir). A non-zero exit is reported
	// in the result; err is set only when the compiler could not be run or
	// was cancelled.
	Check(ctx context.Context, workDir, file string) (VerifyResult, error)
}

// LocalCoqcAdapter runs coqc with os/exec.
type LocalCoqcAdapter struct {
	command string
	args    []string
	timeout time.Duration
}

// NewLocalCoqcAdapter constructs a LocalCoqcAdapter. An empty command selects
// DefaultCoqc. args precede the file, typically -Q/-R load paths.
func NewLocalCoqcAdapter(command string, args []string, timeout time.Duration) *LocalCoqcAdapter {
	if command == "" {
		command = DefaultCoqc
	}

	return &LocalCoqcAdapter{
		command: command,
		args:    append([]string(nil), args...),
		timeout: timeout,
	}
}

// Check runs `<command> <args...> <file>` in workDir.
func (a *LocalCoqcAdapter) Check(ctx context.Context, workDir, file string) (VerifyResult, error) {
	return runTool(ctx, "coqc", a.command, a.args, a.timeout, workDir, file)
}
