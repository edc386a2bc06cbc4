package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"rcpilot.dev/pkg/rcpilot/internal/adapter"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

// Codebase is the loaded set of a project's C sources and headers.
// Flows only read from it; the coordinator applies their results.
type Codebase struct {
	Project string
	CoqRoot string
	Files   map[m.Path]*m.SourceFile
}

// Lookup resolves a project-relative path.
func (c *Codebase) Lookup(p m.Path) (*m.SourceFile, error) {
	rel, err := adapter.CleanRelative(p)
	if err != nil {
		return nil, err
	}

	file, ok := c.Files[rel]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotInCodebase, p)
	}

	return file, nil
}

// Paths returns the sorted file paths; with sourcesOnly, headers are left out.
func (c *Codebase) Paths(sourcesOnly bool) []m.Path {
	paths := make([]m.Path, 0, len(c.Files))

	for p := range c.Files {
		if sourcesOnly && !strings.HasSuffix(strings.ToLower(string(p)), ".c") {
			continue
		}

		paths = append(paths, p)
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	return paths
}

// LoadCodebase reads every .c and .h file of the layout's project and its
// rc-project.toml.
func LoadCodebase(ctx context.Context, fs adapter.SourceFSAdapter, layout adapter.Layout) (*Codebase, error) {
	projectDir := layout.ProjectDir()

	info, err := fs.FileInfo(ctx, projectDir)
	if err != nil || !info.IsDir() {
		if err == nil || errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectDir)
		}

		return nil, fmt.Errorf("failed to stat project %s: %w", projectDir, err)
	}

	paths, err := fs.DiscoverSources(ctx, projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to discover sources in %s: %w", projectDir, err)
	}

	project, err := adapter.LoadProjectConfig(projectDir)
	if err != nil {
		return nil, err
	}

	cb := &Codebase{
		Project: layout.Project,
		CoqRoot: project.CoqRoot,
		Files:   make(map[m.Path]*m.SourceFile, len(paths)),
	}

	for _, p := range paths {
		full, err := layout.SourcePath(p)
		if err != nil {
			return nil, err
		}

		content, err := fs.ReadFile(ctx, full)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", full, err)
		}

		cb.Files[p] = m.NewSourceFile(p, string(content))
	}

	slog.Info("loaded codebase", "project", layout.Project, "files", len(cb.Files), "coq_root", cb.CoqRoot)

	return cb, nil
}

// relatedContext concatenates the headers the file includes with quotes,
// resolved first next to the file and then at the project root.
func relatedContext(ctx context.Context, parser adapter.CFileAdapter, cb *Codebase, file *m.SourceFile) string {
	includes, err := parser.Includes(ctx, file.OriginalText)
	if err != nil {
		slog.Warn("failed to list includes", "path", file.Path, "error", err)
		return ""
	}

	var b strings.Builder

	seen := make(map[m.Path]struct{})

	for _, inc := range includes {
		candidates := []string{path.Join(path.Dir(string(file.Path)), inc), inc}

		for _, candidate := range candidates {
			header, err := cb.Lookup(m.Path(candidate))
			if err != nil {
				continue
			}

			if _, dup := seen[header.Path]; dup {
				break
			}

			seen[header.Path] = struct{}{}
			fmt.Fprintf(&b, "// %s\n%s\n", header.Path, strings.TrimRight(header.OriginalText, "\n"))

			break
		}
	}

	return b.String()
}
