package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestConfigure_Levels(t *testing.T) {
	restoreDefault(t)

	var out bytes.Buffer
	_, err := configure("warn", "", &out)
	require.NoError(t, err)

	slog.Info("hidden")
	slog.Warn("shown", "k", 1)
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "msg=shown k=1")

	_, err = configure("verbose", "", &out)
	assert.ErrorIs(t, err, ErrLevel)
}

func TestConfigure_None(t *testing.T) {
	restoreDefault(t)

	f, err := Configure("none", "ignored.log")
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.NoFileExists(t, "ignored.log")
}

func TestConfigure_File(t *testing.T) {
	restoreDefault(t)

	path := filepath.Join(t.TempDir(), "dacviz.log")
	f, err := Configure("debug", path)
	require.NoError(t, err)
	require.NotNil(t, f)

	slog.Debug("configured", "component", "dac")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec))
	assert.Equal(t, "configured", rec["msg"])
	assert.Equal(t, "dac", rec["component"])
	assert.Equal(t, "DEBUG", rec["level"])

	_, err = Configure("info", filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}
