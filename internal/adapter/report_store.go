package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	m "rcpilot.dev/pkg/rcpilot/internal/model"
	"rcpilot.dev/pkg/rcpilot/pkg"
)

const (
	reportSuffix     = ".report.yaml"
	checkpointSuffix = ".journal"
)

// ErrNoCheckpoint is returned when a file has no stored state to resume from.
var ErrNoCheckpoint = errors.New("no checkpoint stored")

// ReportStore persists repair reports and per-iteration checkpoints under a
// state directory, mirroring the project-relative source path.
type ReportStore interface {
	// SaveReport stores the final report of a flow.
	SaveReport(ctx context.Context, report m.RepairReport) error
	// LoadReport returns the stored report for path.
	LoadReport(ctx context.Context, path m.Path) (m.RepairReport, error)
	// LoadReports returns every stored report, sorted by path.
	LoadReports(ctx context.Context) ([]m.RepairReport, error)
	// Checkpoint appends state to the checkpoint journal of path.
	Checkpoint(ctx context.Context, path m.Path, state m.RepairState) error
	// LatestCheckpoint returns the newest checkpoint of path, or
	// ErrNoCheckpoint.
	LatestCheckpoint(ctx context.Context, path m.Path) (m.RepairState, error)
}

// LocalReportStore keeps YAML reports and msgpack checkpoint journals on disk.
type LocalReportStore struct {
	root string
	fs   SourceFSAdapter
}

// NewLocalReportStore creates a store rooted at dir.
func NewLocalReportStore(dir m.Path, fs SourceFSAdapter) *LocalReportStore {
	return &LocalReportStore{root: string(dir), fs: fs}
}

func (s *LocalReportStore) pathFor(path m.Path, suffix string) (string, error) {
	rel, err := CleanRelative(path)
	if err != nil {
		return "", err
	}

	return filepath.Join(s.root, filepath.FromSlash(string(rel))+suffix), nil
}

// SaveReport writes report as YAML.
func (s *LocalReportStore) SaveReport(ctx context.Context, report m.RepairReport) error {
	target, err := s.pathFor(report.Path, reportSuffix)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report for %s: %w", report.Path, err)
	}

	if err := s.fs.WriteFile(ctx, m.Path(target), data, 0o600); err != nil {
		slog.Error("failed to save report", "path", report.Path, "target", target, "error", err)
		return fmt.Errorf("failed to save report for %s: %w", report.Path, err)
	}

	return nil
}

// LoadReport reads the YAML report for path.
func (s *LocalReportStore) LoadReport(ctx context.Context, path m.Path) (m.RepairReport, error) {
	target, err := s.pathFor(path, reportSuffix)
	if err != nil {
		return m.RepairReport{}, err
	}

	return s.readReport(ctx, target)
}

func (s *LocalReportStore) readReport(ctx context.Context, target string) (m.RepairReport, error) {
	data, err := s.fs.ReadFile(ctx, m.Path(target))
	if err != nil {
		return m.RepairReport{}, fmt.Errorf("failed to read report %s: %w", target, err)
	}

	var report m.RepairReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.RepairReport{}, fmt.Errorf("failed to decode report %s: %w", target, err)
	}

	return report, nil
}

// LoadReports reads every report below the store root.
func (s *LocalReportStore) LoadReports(ctx context.Context) ([]m.RepairReport, error) {
	var reports []m.RepairReport

	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !strings.HasSuffix(path, reportSuffix) {
			return nil
		}

		report, err := s.readReport(ctx, path)
		if err != nil {
			return err
		}

		reports = append(reports, report)

		return nil
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Path < reports[j].Path })

	return reports, nil
}

// Checkpoint appends state to the journal of path.
func (s *LocalReportStore) Checkpoint(ctx context.Context, path m.Path, state m.RepairState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.pathFor(path, checkpointSuffix)
	if err != nil {
		return err
	}

	journal, err := pkg.OpenJournal[m.RepairState](target)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint journal for %s: %w", path, err)
	}

	defer func() { _ = journal.Close() }()

	if err := journal.Append(state); err != nil {
		return fmt.Errorf("failed to checkpoint %s: %w", path, err)
	}

	return nil
}

// LatestCheckpoint returns the last state appended for path.
func (s *LocalReportStore) LatestCheckpoint(ctx context.Context, path m.Path) (m.RepairState, error) {
	if err := ctx.Err(); err != nil {
		return m.RepairState{}, err
	}

	target, err := s.pathFor(path, checkpointSuffix)
	if err != nil {
		return m.RepairState{}, err
	}

	if _, err := s.fs.FileInfo(ctx, m.Path(target)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m.RepairState{}, ErrNoCheckpoint
		}

		return m.RepairState{}, err
	}

	journal, err := pkg.OpenJournal[m.RepairState](target)
	if err != nil {
		return m.RepairState{}, fmt.Errorf("failed to open checkpoint journal for %s: %w", path, err)
	}

	defer func() { _ = journal.Close() }()

	state, err := journal.Last()
	if errors.Is(err, pkg.ErrEmptyJournal) {
		return m.RepairState{}, ErrNoCheckpoint
	}

	return state, err
}
