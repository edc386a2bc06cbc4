package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/errgroup"

	"rcpilot.dev/pkg/rcpilot/internal/adapter"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

// RepairArgs selects what a coordinator run repairs.
type RepairArgs struct {
	// Paths restricts the run to these project-relative files. Empty means
	// every .c file of the project.
	Paths []m.Path
	// Parallel bounds the number of concurrent flows; 0 means unbounded.
	Parallel int
	// Resume starts each flow from its last checkpoint or stored report.
	Resume bool
}

// FileOutcome is the settled result of one file's flow.
type FileOutcome struct {
	Path      m.Path
	Report    m.RepairReport
	Err       error
	Persisted bool
}

// Coordinator fans repair flows out across a project.
type Coordinator interface {
	Repair(ctx context.Context, args RepairArgs) ([]FileOutcome, error)
}

type coordinator struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	Orchestrator
	Inserter
	layout adapter.Layout
}

// NewCoordinator constructs a Coordinator for the layout's project.
func NewCoordinator(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	orchestrator Orchestrator,
	inserter Inserter,
	layout adapter.Layout,
) Coordinator {
	return &coordinator{
		SourceFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		Orchestrator:    orchestrator,
		Inserter:        inserter,
		layout:          layout,
	}
}

func (c *coordinator) Repair(ctx context.Context, args RepairArgs) ([]FileOutcome, error) {
	cb, err := LoadCodebase(ctx, c.SourceFSAdapter, c.layout)
	if err != nil {
		return nil, err
	}

	if err := c.CopyDir(ctx, c.layout.ProjectDir(), c.layout.ArtifactRoot()); err != nil {
		return nil, fmt.Errorf("prepare artifact workspace: %w", err)
	}

	paths := args.Paths
	if len(paths) == 0 {
		paths = cb.Paths(true)
	}

	outcomes := c.runFlows(ctx, cb, paths, args)

	for i := range outcomes {
		c.persist(ctx, cb, &outcomes[i])
	}

	return outcomes, nil
}

// runFlows runs one flow per path. A failing or panicking flow never cancels
// its siblings.
func (c *coordinator) runFlows(ctx context.Context, cb *Codebase, paths []m.Path, args RepairArgs) []FileOutcome {
	outcomes := make([]FileOutcome, len(paths))

	var group errgroup.Group
	if args.Parallel > 0 {
		group.SetLimit(args.Parallel)
	}

	for i, path := range paths {
		group.Go(func() error {
			resume := c.resumeState(ctx, path, args.Resume)

			var (
				report m.RepairReport
				err    error
			)

			var catcher panics.Catcher

			catcher.Try(func() {
				report, err = c.Orchestrator.Repair(ctx, cb, path, resume)
			})

			if recovered := catcher.Recovered(); recovered != nil {
				slog.Error("repair flow panicked", "path", path, "panic", recovered.Value)
				err = fmt.Errorf("repair flow for %s panicked: %w", path, recovered.AsError())
			}

			if report.Path == "" {
				report.Path = path
			}

			outcomes[i] = FileOutcome{Path: path, Report: report, Err: err}

			return nil
		})
	}

	_ = group.Wait()

	return outcomes
}

func (c *coordinator) resumeState(ctx context.Context, path m.Path, resume bool) m.RepairState {
	if !resume || c.ReportStore == nil {
		return m.RepairState{}
	}

	state, err := c.LatestCheckpoint(ctx, path)
	if err == nil {
		return state
	}

	if !errors.Is(err, adapter.ErrNoCheckpoint) {
		slog.Warn("failed to read checkpoint", "path", path, "error", err)
	}

	report, err := c.LoadReport(ctx, path)
	if err != nil {
		slog.Debug("no stored state to resume", "path", path)
		return m.RepairState{}
	}

	return report.ResumableState
}

// persist writes a settled flow's text to its artifact when it changed, then
// stores the report. A write failure fails only this outcome.
func (c *coordinator) persist(ctx context.Context, cb *Codebase, outcome *FileOutcome) {
	file, err := cb.Lookup(outcome.Path)
	if err != nil {
		if outcome.Err == nil {
			outcome.Err = err
		}

		return
	}

	text := outcome.Report.FinalText
	if text == "" && len(outcome.Report.ResumableState.CurrentAnnotations) > 0 {
		text = c.mergeAnnotations(ctx, file, outcome.Report.ResumableState.CurrentAnnotations)
		outcome.Report.FinalText = text
	}

	if text != "" {
		file.Text = text
	}

	if file.Changed() {
		artifact, err := c.layout.ArtifactPath(file.Path)
		if err == nil {
			err = c.WriteFile(ctx, artifact, []byte(text), 0o644)
		}

		if err != nil {
			slog.Error("failed to persist repaired file", "path", file.Path, "error", err)

			message := fmt.Sprintf("failed to persist %s: %v", file.Path, err)
			outcome.Report.Success = false
			outcome.Report.ErrorMessage = &message
			outcome.Err = errors.Join(outcome.Err, fmt.Errorf("persist %s: %w", file.Path, err))
		} else {
			outcome.Persisted = true
		}
	}

	if c.ReportStore == nil || outcome.Report.FinalText == "" && outcome.Report.IterationsTotal == 0 && outcome.Err != nil {
		return
	}

	if err := c.SaveReport(ctx, outcome.Report); err != nil {
		slog.Warn("failed to save report", "path", file.Path, "error", err)
	}
}

// mergeAnnotations rebuilds text from an annotation list when a flow ended
// before producing merged text.
func (c *coordinator) mergeAnnotations(ctx context.Context, file *m.SourceFile, annotations []m.AnnotationRequest) string {
	if c.Inserter == nil {
		return ""
	}

	result, err := c.Insert(ctx, file.OriginalText, annotations)
	if err != nil {
		slog.Warn("failed to merge annotations", "path", file.Path, "error", err)
		return ""
	}

	text, _ := PrependAnnotations(result.Text, m.AnnotationTexts(result.Unplaced))

	return text
}
