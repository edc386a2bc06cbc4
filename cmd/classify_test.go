package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

const frontendOutput = `[queue.c:12:3] frontend error: unexpected token in rc::args
  expected a type
`

func TestClassifyCmd_FromFile(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "out.txt")
	writeTestFile(t, path, "Cannot solve side condition in function queue_push\n")

	out, _, err := executeCommand(t, newClassifyCmd(), "classify", path)
	require.NoError(t, err)

	assert.Contains(t, out, "proof-failure")
	assert.Contains(t, out, "queue_push")
	assert.Contains(t, strings.ToUpper(out), "1 PROOF FAILURE(S)")
}

func TestClassifyCmd_FromStdinAsYAML(t *testing.T) {
	resetViper(t)

	cmd := newRootCmd()
	cmd.AddCommand(newClassifyCmd())

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(frontendOutput))
	cmd.SetArgs([]string{"classify", "-", "--yaml"})

	require.NoError(t, cmd.Execute())

	var set m.DiagnosticSet
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &set))

	assert.True(t, set.HasSyntaxErrors)
	assert.False(t, set.HasProofFailures)
	require.Len(t, set.Diagnostics, 1)
	assert.Equal(t, m.InvalidAnnotation, set.Diagnostics[0].Kind)
	assert.Equal(t, "queue.c:12:3", set.Diagnostics[0].Location)
	assert.Equal(t, "1 invalid annotation(s)", set.Summary)
}

func TestClassifyCmd_NothingRecognized(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "out.txt")
	writeTestFile(t, path, "all good\n")

	out, _, err := executeCommand(t, newClassifyCmd(), "classify", path)
	require.NoError(t, err)
	assert.Contains(t, strings.ToUpper(out), "NO RECOGNIZED DIAGNOSTICS")
}
