// Package controller provides output adapters for displaying repair progress
// and results.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rcpilot.dev/pkg/rcpilot/internal/domain"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	title string
	files []m.Path
}

// WithTitle sets the heading shown while flows run.
func WithTitle(title string) StartOption {
	return func(c *StartConfig) {
		c.title = title
	}
}

// WithFiles announces the files that will be repaired, in display order.
func WithFiles(files []m.Path) StartOption {
	return func(c *StartConfig) {
		c.files = append([]m.Path(nil), files...)
	}
}

func newStartConfig(options []StartOption) StartConfig {
	cfg := StartConfig{title: "rcpilot repair"}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI displays repair progress. It is a domain.Observer, so flow events are
// delivered through OnEvent from concurrent flows.
type UI interface {
	domain.Observer
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayRunInfo(ctx context.Context, project string, files int, parallel int)
	DisplayOutcomes(ctx context.Context, outcomes []domain.FileOutcome)
}

// NewUI returns the interactive TUI when interactive is requested and the
// command writes to a terminal, the SimpleUI otherwise.
func NewUI(cmd *cobra.Command, interactive bool) UI {
	out := cmd.OutOrStdout()
	if interactive && isTerminal(out) {
		return NewTUI(out)
	}

	return NewSimpleUI(cmd)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
