package domain

import (
	"errors"
	"fmt"

	"rcpilot.dev/pkg/rcpilot/internal/adapter"
)

var (
	// ErrFileNotInCodebase means a flow was asked to repair a path the loaded
	// codebase does not contain.
	ErrFileNotInCodebase = errors.New("file not found in codebase")

	// ErrProjectNotFound means the project's source directory does not exist.
	ErrProjectNotFound = errors.New("project directory not found")

	// ErrInvalidPath is returned for absolute or escaping logical paths.
	ErrInvalidPath = adapter.ErrInvalidPath
)

// Generator stages reported by GeneratorError.
const (
	StageSpec  = "spec"
	StageLemma = "lemma"
)

// GeneratorError wraps a failure of the spec or lemma generator call itself,
// as opposed to a verification failure. It never consumes an iteration.
type GeneratorError struct {
	Stage string
	Err   error
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("%s generator failed: %v", e.Stage, e.Err)
}

func (e *GeneratorError) Unwrap() error {
	return e.Err
}
