package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

func TestLocalSourceFSAdapter_DiscoverSources(t *testing.T) {
	t.Run("collects sources and headers sorted", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "queue.c"), "int x;\n")
		writeTestFile(t, filepath.Join(root, "queue.h"), "extern int x;\n")
		writeTestFile(t, filepath.Join(root, "lib", "alloc.C"), "int y;\n")
		writeTestFile(t, filepath.Join(root, "README.md"), "# queue\n")
		writeTestFile(t, filepath.Join(root, "rc-project.toml"), "coq_root = \"q\"\n")

		got, err := adapter.DiscoverSources(context.Background(), m.Path(root))
		if err != nil {
			t.Fatalf("DiscoverSources() error = %v", err)
		}

		want := []m.Path{"lib/alloc.C", "queue.c", "queue.h"}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("DiscoverSources() = %v, want %v", got, want)
		}
	})

	t.Run("skips tool directories", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "main.c"), "int main(void) { return 0; }\n")

		for _, dir := range []string{".git", "_build", "vendor", "node_modules"} {
			writeTestFile(t, filepath.Join(root, dir, "skip.c"), "int skip;\n")
		}

		got, err := adapter.DiscoverSources(context.Background(), m.Path(root))
		if err != nil {
			t.Fatalf("DiscoverSources() error = %v", err)
		}

		if len(got) != 1 || got[0] != "main.c" {
			t.Fatalf("DiscoverSources() = %v, want [main.c]", got)
		}
	})

	t.Run("root must be a directory", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		file := filepath.Join(t.TempDir(), "main.c")
		writeTestFile(t, file, "int x;\n")

		if _, err := adapter.DiscoverSources(context.Background(), m.Path(file)); err == nil {
			t.Fatalf("DiscoverSources() expected error for file root")
		}
	})

	t.Run("missing root", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		_, err := adapter.DiscoverSources(context.Background(), m.Path(filepath.Join(t.TempDir(), "none")))
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("DiscoverSources() error = %v, want ErrNotExist", err)
		}
	})

	t.Run("example project", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		got, err := adapter.DiscoverSources(context.Background(), m.Path(filepath.Join("..", "..", "examples", "sources", "queue")))
		if err != nil {
			t.Fatalf("DiscoverSources() error = %v", err)
		}

		want := []m.Path{"queue.c", "queue.h", "util/alloc.c"}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("DiscoverSources() = %v, want %v", got, want)
		}
	})
}

func TestLocalSourceFSAdapter_ReadFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	path := filepath.Join(t.TempDir(), "main.c")
	writeTestFile(t, path, "int main(void) { return 0; }\n")

	got, err := adapter.ReadFile(context.Background(), m.Path(path))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(got) != "int main(void) { return 0; }\n" {
		t.Fatalf("ReadFile() = %q", got)
	}
}

func TestLocalSourceFSAdapter_FileInfo(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	dir := t.TempDir()

	info, err := adapter.FileInfo(context.Background(), m.Path(dir))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if !info.IsDir() {
		t.Fatalf("FileInfo() IsDir = false for %s", dir)
	}

	if _, err := adapter.FileInfo(context.Background(), m.Path(filepath.Join(dir, "none"))); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("FileInfo() error = %v, want ErrNotExist", err)
	}
}

func TestLocalSourceFSAdapter_WriteFileCreatesParents(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	path := filepath.Join(t.TempDir(), "artifacts", "queue", "proofs", "queue_c", "generated_lemmas.v")

	if err := adapter.WriteFile(context.Background(), m.Path(path), []byte("Require Import x.\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(got) != "Require Import x.\n" {
		t.Fatalf("WriteFile() wrote %q", got)
	}
}

func TestLocalSourceFSAdapter_CopyDir(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "copy")

	writeTestFile(t, filepath.Join(src, "queue.c"), "int q;\n")
	writeTestFile(t, filepath.Join(src, "lib", "alloc.c"), "int a;\n")
	writeTestFile(t, filepath.Join(src, ".git", "HEAD"), "ref: main\n")

	if err := adapter.CopyDir(context.Background(), m.Path(src), m.Path(dst)); err != nil {
		t.Fatalf("CopyDir() error = %v", err)
	}

	for rel, want := range map[string]string{"queue.c": "int q;\n", filepath.Join("lib", "alloc.c"): "int a;\n"} {
		got, err := os.ReadFile(filepath.Join(dst, rel))
		if err != nil {
			t.Fatalf("copied %s missing: %v", rel, err)
		}

		if string(got) != want {
			t.Fatalf("copied %s = %q, want %q", rel, got, want)
		}
	}

	if _, err := os.Stat(filepath.Join(dst, ".git")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("CopyDir() copied .git")
	}
}

func TestLocalSourceFSAdapter_CancelledContext(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.c"), "int a;\n")

	if _, err := adapter.ReadFile(ctx, m.Path(filepath.Join(dir, "a.c"))); !errors.Is(err, context.Canceled) {
		t.Fatalf("ReadFile() error = %v, want context.Canceled", err)
	}

	if err := adapter.WriteFile(ctx, m.Path(filepath.Join(dir, "b.c")), nil, 0o644); !errors.Is(err, context.Canceled) {
		t.Fatalf("WriteFile() error = %v, want context.Canceled", err)
	}

	if _, err := adapter.DiscoverSources(ctx, m.Path(dir)); !errors.Is(err, context.Canceled) {
		t.Fatalf("DiscoverSources() error = %v, want context.Canceled", err)
	}
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()
	writeTestBytes(t, path, []byte(contents))
}

func writeTestBytes(t *testing.T, path string, contents []byte) {
	t.Helper()
	mustMkdir(t, filepath.Dir(path))

	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()

	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create dir %s: %v", path, err)
	}
}
