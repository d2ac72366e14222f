package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })

	Info("pipeline created", "side", "back", "count", 3)
	Debugf("classified %d nodes", 7)

	out := buf.String()
	assert.Contains(t, out, "pipeline created")
	assert.Contains(t, out, "side=back")
	assert.Contains(t, out, "count=3")
	assert.Contains(t, out, "classified 7 nodes")
}

func TestRequireReleaseLogs(t *testing.T) {
	if DebugAssertions {
		t.Skip("debug builds panic on failed requirements")
	}
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })

	assert.True(t, Require(true, "never logged"))
	assert.False(t, Require(false, "pipeline missing", "flags", "0x1"))
	assert.Contains(t, buf.String(), "requirement failed: pipeline missing")
	assert.NotContains(t, buf.String(), "never logged")
}

func TestConfigureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "oxy.log")
	require.NoError(t, Configure(Options{Level: "debug", File: path, MaxSizeMB: 1}))
	t.Cleanup(func() { SetOutput(os.Stderr) })

	Warn("written to file", "frame", 12)
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestConfigureRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Configure(Options{Level: "loud"}))
}
