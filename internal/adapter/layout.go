package adapter

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

// ErrInvalidPath is returned for logical paths that are absolute or escape
// their project root.
var ErrInvalidPath = errors.New("invalid project-relative path")

// Layout maps project-relative source paths to their locations on disk:
//
//	<sources>/<project>/<rel>                                  source
//	<artifacts>/<project>/<rel>                                annotated copy
//	<artifacts>/<project>/proofs/<dir>/<name_ext>/generated_lemmas.v
//	<state>/<project>/<rel>.report.yaml                        report
//
// Every mapping mirrors the full relative path, so two distinct sources never
// share an artifact.
type Layout struct {
	SourcesDir   m.Path
	ArtifactsDir m.Path
	StateDir     m.Path
	Project      string
}

// CleanRelative normalizes a slash-separated project-relative path and
// rejects absolute or escaping paths.
func CleanRelative(p m.Path) (m.Path, error) {
	raw := filepath.ToSlash(string(p))
	if raw == "" || path.IsAbs(raw) || filepath.IsAbs(string(p)) || filepath.VolumeName(string(p)) != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}

	clean := path.Clean(raw)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}

	return m.Path(clean), nil
}

// ProjectDir is the project's source root.
func (l Layout) ProjectDir() m.Path {
	return m.Path(filepath.Join(string(l.SourcesDir), l.Project))
}

// ArtifactRoot is the project's artifact workspace.
func (l Layout) ArtifactRoot() m.Path {
	return m.Path(filepath.Join(string(l.ArtifactsDir), l.Project))
}

// StateRoot holds the project's reports and checkpoints.
func (l Layout) StateRoot() m.Path {
	return m.Path(filepath.Join(string(l.StateDir), l.Project))
}

// SourcePath is the on-disk location of a project source.
func (l Layout) SourcePath(rel m.Path) (m.Path, error) {
	return join(l.ProjectDir(), rel)
}

// ArtifactPath is the on-disk location of the annotated copy of rel.
func (l Layout) ArtifactPath(rel m.Path) (m.Path, error) {
	return join(l.ArtifactRoot(), rel)
}

// LemmaPath is the generated lemma file for rel. The file name's final dot is
// replaced by an underscore, so "dir/x.c" maps to "proofs/dir/x_c/".
func (l Layout) LemmaPath(rel m.Path) (m.Path, error) {
	clean, err := CleanRelative(rel)
	if err != nil {
		return "", err
	}

	dir, file := path.Split(string(clean))

	stem := file
	if i := strings.LastIndexByte(file, '.'); i > 0 {
		stem = file[:i] + "_" + file[i+1:]
	}

	return m.Path(filepath.Join(string(l.ArtifactRoot()), "proofs", filepath.FromSlash(dir), stem, LemmaFileName)), nil
}

func join(root m.Path, rel m.Path) (m.Path, error) {
	clean, err := CleanRelative(rel)
	if err != nil {
		return "", err
	}

	return m.Path(filepath.Join(string(root), filepath.FromSlash(string(clean)))), nil
}

// LemmaLibrary is the Coq logical path of the lemma file of rel under
// coqRoot, e.g. "root.proofs.dir.x_c" for "dir/x.c".
func (l Layout) LemmaLibrary(rel m.Path, coqRoot string) (string, error) {
	clean, err := CleanRelative(rel)
	if err != nil {
		return "", err
	}

	segments := strings.Split(string(clean), "/")
	last := segments[len(segments)-1]

	if i := strings.LastIndexByte(last, '.'); i > 0 {
		segments[len(segments)-1] = last[:i] + "_" + last[i+1:]
	}

	parts := append([]string{coqRoot, "proofs"}, segments...)
	if coqRoot == "" {
		parts = parts[1:]
	}

	return strings.Join(parts, "."), nil
}
