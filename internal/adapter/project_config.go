package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

// ProjectManifestName is the RefinedC project file at a project root.
const ProjectManifestName = "rc-project.toml"

// ProjectConfig is the subset of rc-project.toml rcpilot reads.
type ProjectConfig struct {
	// CoqRoot is the Coq logical path generated proofs live under.
	CoqRoot string `toml:"coq_root"`
}

// LoadProjectConfig reads rc-project.toml from projectDir. A missing file is
// not an error: CoqRoot then defaults to the project directory name.
func LoadProjectConfig(projectDir m.Path) (ProjectConfig, error) {
	fallback := ProjectConfig{CoqRoot: filepath.Base(string(projectDir))}
	path := filepath.Join(string(projectDir), ProjectManifestName)

	var cfg ProjectConfig

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fallback, nil
		}

		return ProjectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	if !meta.IsDefined("coq_root") || strings.TrimSpace(cfg.CoqRoot) == "" {
		return fallback, nil
	}

	cfg.CoqRoot = strings.TrimSpace(cfg.CoqRoot)

	return cfg, nil
}
