package rostermerge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptionsDefaults(t *testing.T) {
	opts, err := LoadOptions("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
	assert.Equal(t, filepath.Join("processed", "Processed_HR.xlsx"), opts.ModulePath("HR"))
	assert.Equal(t, filepath.Join("processed", "before_dedup.xlsx"), opts.CheckpointPath())
	assert.Equal(t, filepath.Join("processed", "result.xlsx"), opts.FinalPath())
}

func TestLoadOptionsPrecedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "rostermerge.yaml")
	require.NoError(t, os.WriteFile(file, []byte(
		"input_dir: from-file\noutput_dir: out-file\nlog_level: debug\n"), 0o644))

	t.Setenv("ROSTERMERGE_OUTPUT_DIR", "out-env")
	t.Setenv("ROSTERMERGE_LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.String("input", "input", "")
	flags.String("output", "processed", "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--log-level", "error"}))

	opts, err := LoadOptions(file, flags)
	require.NoError(t, err)
	assert.Equal(t, "from-file", opts.InputDir, "file beats default; unset flag is ignored")
	assert.Equal(t, "out-env", opts.OutputDir, "env beats file")
	assert.Equal(t, "error", opts.LogLevel, "set flag beats env")
	assert.Equal(t, "Processed_", opts.ModulePrefix)
}

func TestLoadOptionsInvalid(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadOptions(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		assert.ErrorIs(t, err, ErrConfigInvalid)
	})
	t.Run("bad level", func(t *testing.T) {
		t.Setenv("ROSTERMERGE_LOG_LEVEL", "chatty")
		_, err := LoadOptions("", nil)
		assert.ErrorIs(t, err, ErrConfigInvalid)
	})
	t.Run("same output names", func(t *testing.T) {
		t.Setenv("ROSTERMERGE_FINAL_NAME", "before_dedup.xlsx")
		_, err := LoadOptions("", nil)
		assert.ErrorIs(t, err, ErrConfigInvalid)
	})
	t.Run("empty folder", func(t *testing.T) {
		opts := DefaultOptions()
		opts.InputDir = " "
		assert.ErrorIs(t, opts.Validate(), ErrConfigInvalid)
	})
}
