package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

// LemmaFileName is the name of the generated Coq file next to each source.
const LemmaFileName = "generated_lemmas.v"

// LemmaStore persists the helper lemmas of a flow as a Coq file.
type LemmaStore interface {
	WriteLemmas(ctx context.Context, path m.Path, imports []string, lemmas []m.HelperLemma) error
}

// LocalLemmaStore renders lemma files and writes them through a SourceFSAdapter.
type LocalLemmaStore struct {
	fs SourceFSAdapter
}

// NewLocalLemmaStore creates a LocalLemmaStore.
func NewLocalLemmaStore(fs SourceFSAdapter) *LocalLemmaStore {
	return &LocalLemmaStore{fs: fs}
}

// WriteLemmas renders imports and lemmas and replaces the file at path.
func (s *LocalLemmaStore) WriteLemmas(ctx context.Context, path m.Path, imports []string, lemmas []m.HelperLemma) error {
	content := RenderLemmaFile(imports, lemmas)

	if err := s.fs.WriteFile(ctx, path, []byte(content), 0o600); err != nil {
		slog.Error("failed to write lemma file", "path", path, "error", err)
		return fmt.Errorf("failed to write lemma file %s: %w", path, err)
	}

	slog.Debug("wrote lemma file", "path", path, "lemmas", len(lemmas))

	return nil
}

// RenderLemmaFile produces the Coq text for a lemma collection:
// `Require Import` lines first, then per lemma a `Lemma <name>: <statement>.`
// line and a Proof block closed by `Qed.`, or by `Admitted.` when the lemma
// has no proof body.
func RenderLemmaFile(imports []string, lemmas []m.HelperLemma) string {
	var b strings.Builder

	seen := make(map[string]struct{}, len(imports))

	for _, imp := range imports {
		imp = strings.TrimSuffix(strings.TrimSpace(imp), ".")
		if imp == "" {
			continue
		}

		if _, dup := seen[imp]; dup {
			continue
		}

		seen[imp] = struct{}{}
		fmt.Fprintf(&b, "Require Import %s.\n", imp)
	}

	b.WriteString("\n")

	for _, l := range lemmas {
		fmt.Fprintf(&b, "Lemma %s: %s.\n", l.Name, strings.TrimSuffix(strings.TrimSpace(l.Statement), "."))
		b.WriteString("Proof.\n")

		if l.Admitted() {
			b.WriteString("Admitted.\n\n")
			continue
		}

		for _, line := range strings.Split(strings.TrimRight(l.ProofBody, "\n"), "\n") {
			fmt.Fprintf(&b, "  %s\n", strings.TrimRight(line, " \t"))
		}

		b.WriteString("Qed.\n\n")
	}

	return b.String()
}
