package maincmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/internal/maincmd"
)

func newStdio(stdin string) (mainer.Stdio, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return mainer.Stdio{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

func TestHelpAndVersion(t *testing.T) {
	c := &maincmd.Cmd{BuildVersion: "1.0.0", BuildDate: "2026-07-31"}
	stdio, stdout, _ := newStdio("")
	code := c.Main([]string{"lumen", "--help"}, stdio)
	assert.EqualValues(t, 0, code)
	assert.Contains(t, stdout.String(), "usage: lumen")

	c = &maincmd.Cmd{BuildVersion: "1.0.0", BuildDate: "2026-07-31"}
	stdio, stdout, _ = newStdio("")
	code = c.Main([]string{"lumen", "--version"}, stdio)
	assert.EqualValues(t, 0, code)
	assert.Contains(t, stdout.String(), "1.0.0")
}

func TestRunFileSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.lumen")
	require.NoError(t, os.WriteFile(path, []byte(`print "hi";`), 0o644))

	c := &maincmd.Cmd{}
	stdio, stdout, _ := newStdio("")
	code := c.Main([]string{"lumen", path}, stdio)
	assert.EqualValues(t, 0, code)
	assert.Equal(t, "hi\n", stdout.String())
}

func TestRunFileCompileErrorExitsSixtyFive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.lumen")
	require.NoError(t, os.WriteFile(path, []byte(`print ;`), 0o644))

	c := &maincmd.Cmd{}
	stdio, _, stderr := newStdio("")
	code := c.Main([]string{"lumen", path}, stdio)
	assert.EqualValues(t, 65, code)
	assert.Contains(t, stderr.String(), "Error")
}

func TestRunFileRuntimeErrorExitsSeventy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.lumen")
	require.NoError(t, os.WriteFile(path, []byte(`print 1 + "x";`), 0o644))

	c := &maincmd.Cmd{}
	stdio, _, stderr := newStdio("")
	code := c.Main([]string{"lumen", path}, stdio)
	assert.EqualValues(t, 70, code)
	assert.NotEmpty(t, stderr.String())
}

func TestRunFileMissingPathExitsSeventyFour(t *testing.T) {
	c := &maincmd.Cmd{}
	stdio, _, stderr := newStdio("")
	code := c.Main([]string{"lumen", filepath.Join(t.TempDir(), "nope.lumen")}, stdio)
	assert.EqualValues(t, 74, code)
	assert.NotEmpty(t, stderr.String())
}

func TestREPLPersistsGlobalsAcrossLines(t *testing.T) {
	c := &maincmd.Cmd{}
	stdio, stdout, _ := newStdio("var x = 1;\nprint x + 1;\n")
	code := c.Main([]string{"lumen"}, stdio)
	assert.EqualValues(t, 0, code)
	assert.Contains(t, stdout.String(), "2\n")
}

func TestValidateRejectsExtraArgs(t *testing.T) {
	c := &maincmd.Cmd{}
	c.SetArgs([]string{"a.lumen", "b.lumen"})
	require.Error(t, c.Validate())
}
