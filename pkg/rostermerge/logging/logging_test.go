package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFileName(t *testing.T) {
	start := time.Date(2024, 3, 7, 9, 5, 1, 0, time.UTC)
	assert.Equal(t, "log 2024-03-07 09-05-01.log", FileName(start))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"fatal", zapcore.InfoLevel, true},
		{"verbose", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWritesFileAndConsole(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")
	var console bytes.Buffer
	start := time.Date(2024, 3, 7, 9, 5, 1, 0, time.Local)

	run, err := New(Config{Level: "info", Dir: dir, Start: start, RunID: "run-1", Console: &console})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "log 2024-03-07 09-05-01.log"), run.Path)

	run.Logger.Debug("hidden")
	run.Logger.Warn("table skipped", zap.String("table", "T1"))
	require.NoError(t, run.Close())

	data, err := os.ReadFile(run.Path)
	require.NoError(t, err)
	for _, out := range []string{string(data), console.String()} {
		assert.Contains(t, out, "WARN")
		assert.Contains(t, out, "table skipped")
		assert.Contains(t, out, `"run_id": "run-1"`)
		assert.Contains(t, out, `"table": "T1"`)
		assert.NotContains(t, out, "hidden")
	}
}

func TestNewRejectsLevel(t *testing.T) {
	_, err := New(Config{Level: "loud", Dir: t.TempDir()})
	assert.Error(t, err)
}
