package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "INFO", expected: slog.LevelInfo},
		{input: "", expected: slog.LevelInfo},
		{input: " warning ", expected: slog.LevelWarn},
		{input: "error", expected: slog.LevelError},
		{input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lvl, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, lvl)
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SetOutput(&buf, "info", false))

	LogDebug("hidden %d", 1)
	LogInfo("shown %d", 2)
	LogError("failed %s", "badly")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "failed badly")
	assert.NotContains(t, out, "time=")
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SetOutput(&buf, "debug", true))

	With("arch", "x64").Debug("downloading")

	assert.Contains(t, buf.String(), `"arch":"x64"`)
	assert.Contains(t, buf.String(), `"msg":"downloading"`)
}

func TestPreLogFlushedOnInit(t *testing.T) {
	mu.Lock()
	initialized = false
	preLogs = nil
	mu.Unlock()

	PreLog("DEBUG", "loading %s", "gtkup.toml")
	PreLog("ERROR", "kept")
	SetPreLogLevel("error")

	logDir := t.TempDir()
	require.NoError(t, InitLogger(logDir, "debug", false))
	t.Cleanup(func() {
		Close()
		SetPreLogLevel("debug")
	})

	data, err := os.ReadFile(filepath.Join(logDir, LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept")
	assert.NotContains(t, string(data), "gtkup.toml")
}

func TestLogNarratorTagsGroup(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SetOutput(&buf, "info", false))

	section := NewLogNarrator().Group("Downloading a to b")
	section.Infof("Extracting %s ...", "archive.zip")
	section.End()

	assert.Contains(t, buf.String(), "Extracting archive.zip ...")
	assert.Contains(t, buf.String(), `group="Downloading a to b"`)
}
