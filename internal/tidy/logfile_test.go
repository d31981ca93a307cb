package tidy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFile_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0644))

	l := &LogFile{Path: path}
	require.NoError(t, l.Write(TagSection, "DEBUG MATCHER\n"))
	require.NoError(t, l.Write(TagStderr, "[1/1] Processing"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous run\n[===] DEBUG MATCHER\n\n[stderr] [1/1] Processing\n", string(data))
}

func TestLogFile_Disabled(t *testing.T) {
	var l *LogFile
	assert.NoError(t, l.Write(TagStdout, "ignored"))
	assert.NoError(t, (&LogFile{}).Write(TagStdout, "ignored"))
}

func TestLogFile_BadPath(t *testing.T) {
	l := &LogFile{Path: filepath.Join(t.TempDir(), "missing", "out.log")}
	assert.ErrorContains(t, l.Write(TagStdout, "x"), "failed to open output log")
}
