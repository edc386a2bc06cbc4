package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// resetViper restores the default configuration around a test and sends the
// log to a temporary file.
func resetViper(t *testing.T) {
	t.Helper()

	viper.Reset()
	initConfig()
	viper.Set(logFilenameKey, filepath.Join(t.TempDir(), "rcpilot.log"))

	t.Cleanup(func() {
		viper.Reset()
		initConfig()
	})
}

// useProjectDirs points the layout at a fresh temporary tree and returns its
// root.
func useProjectDirs(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	viper.Set(sourcesDirKey, filepath.Join(root, "sources"))
	viper.Set(artifactsDirKey, filepath.Join(root, "artifacts"))
	viper.Set(stateDirKey, filepath.Join(root, "state"))

	return root
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// executeCommand runs sub under a fresh root command and returns stdout and
// stderr.
func executeCommand(t *testing.T, sub *cobra.Command, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd()
	cmd.AddCommand(sub)

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), errOut.String(), err
}

const addSource = `#include "add.h"

int add(int a, int b) {
    return a + b;
}

int sum(int n) {
    int s = 0;
    for (int i = 0; i < n; i++) {
        s = add(s, i);
    }
    return s;
}
`
