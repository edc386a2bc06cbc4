package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rcpilot.dev/pkg/rcpilot/internal/domain"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd *cobra.Command
	mu  sync.Mutex
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)
	s.printf("%s\n", color.New(color.Bold).Sprint(cfg.title))

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayRunInfo shows what the run is about to do.
func (s *SimpleUI) DisplayRunInfo(ctx context.Context, project string, files int, parallel int) {
	if err := ctx.Err(); err != nil {
		return
	}

	workers := "unbounded"
	if parallel > 0 {
		workers = fmt.Sprintf("%d", parallel)
	}

	s.printf("Repairing %d file(s) of project %s with %s worker(s)\n", files, project, workers)
}

// OnEvent prints flow milestones. Intermediate generation states are left
// to the debug log.
func (s *SimpleUI) OnEvent(event domain.FlowEvent) {
	switch {
	case event.Diagnostics != nil:
		s.printf("%s  iteration %d: %s\n", event.Path, event.Iteration, event.Diagnostics.Summary)
	case event.State == m.StateEscalatingToLemmas:
		s.printf("%s  escalating to helper lemmas\n", event.Path)
	case event.State == m.StateSuccess:
		s.printf("%s  %s after %d iteration(s)\n", event.Path, successLabel("verified"), event.Iteration)
	case event.State == m.StateExhausted:
		s.printf("%s  %s after %d iteration(s)\n", event.Path, failureLabel("exhausted"), event.Iteration)
	}
}

// DisplayOutcomes prints the result table and any suggestions.
func (s *SimpleUI) DisplayOutcomes(ctx context.Context, outcomes []domain.FileOutcome) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("\n%s", RenderOutcomes(outcomes))

	for _, o := range outcomes {
		if o.Report.Suggestions != nil && !o.Report.Success {
			s.printf("%s: %s\n", o.Path, *o.Report.Suggestions)
		}
	}
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
