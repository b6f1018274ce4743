// Package rostermerge merges per-module questionnaire workbooks into one
// deduplicated roster.
package rostermerge

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/logging"
)

// EnvPrefix prefixes the environment variables read by LoadOptions.
const EnvPrefix = "ROSTERMERGE"

// Options configures a run.
type Options struct {
	// InputDir holds the questionnaire workbooks.
	InputDir string `mapstructure:"input_dir"`
	// OutputDir receives the per-module, checkpoint and final workbooks.
	OutputDir string `mapstructure:"output_dir"`
	LogDir    string `mapstructure:"log_dir"`
	// Settings is the path of the settings document.
	Settings string `mapstructure:"settings"`
	LogLevel string `mapstructure:"log_level"`
	// ModulePrefix names per-module outputs and excludes them from input.
	ModulePrefix   string `mapstructure:"module_prefix"`
	CheckpointName string `mapstructure:"checkpoint_name"`
	FinalName      string `mapstructure:"final_name"`
}

// DefaultOptions returns default run options.
func DefaultOptions() Options {
	return Options{
		InputDir:       "input",
		OutputDir:      "processed",
		LogDir:         "log",
		Settings:       "settings.json",
		LogLevel:       "info",
		ModulePrefix:   "Processed_",
		CheckpointName: "before_dedup.xlsx",
		FinalName:      "result.xlsx",
	}
}

// flagKeys maps command-line flag names to option keys.
var flagKeys = map[string]string{
	"input":      "input_dir",
	"output":     "output_dir",
	"log-dir":    "log_dir",
	"settings":   "settings",
	"log-level":  "log_level",
	"prefix":     "module_prefix",
	"checkpoint": "checkpoint_name",
	"final":      "final_name",
}

// LoadOptions resolves run options in order of precedence:
//  1. flags that were set on the command line
//  2. ROSTERMERGE_* environment variables, including .env and .env.local
//  3. the options file, when configFile is not empty
//  4. defaults
func LoadOptions(configFile string, flags *pflag.FlagSet) (Options, error) {
	loadEnvFiles()

	v := viper.New()
	def := DefaultOptions()
	v.SetDefault("input_dir", def.InputDir)
	v.SetDefault("output_dir", def.OutputDir)
	v.SetDefault("log_dir", def.LogDir)
	v.SetDefault("settings", def.Settings)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("module_prefix", def.ModulePrefix)
	v.SetDefault("checkpoint_name", def.CheckpointName)
	v.SetDefault("final_name", def.FinalName)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Options{}, fmt.Errorf("%w: read options file %s: %v", ErrConfigInvalid, configFile, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Options{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// loadEnvFiles loads environment variables from .env files.
// Variables already set in the environment win.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// Validate checks that every option is usable.
func (o Options) Validate() error {
	required := []struct{ name, value string }{
		{"input_dir", o.InputDir},
		{"output_dir", o.OutputDir},
		{"log_dir", o.LogDir},
		{"settings", o.Settings},
		{"checkpoint_name", o.CheckpointName},
		{"final_name", o.FinalName},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrConfigInvalid, r.name)
		}
	}
	if _, err := logging.ParseLevel(o.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrConfigInvalid, err)
	}
	if o.CheckpointName == o.FinalName {
		return fmt.Errorf("%w: checkpoint_name and final_name must differ", ErrConfigInvalid)
	}
	return nil
}

// ModulePath returns the output path of a module's workbook.
func (o Options) ModulePath(key string) string {
	return filepath.Join(o.OutputDir, o.ModulePrefix+key+".xlsx")
}

// CheckpointPath returns the path of the pre-merge workbook.
func (o Options) CheckpointPath() string {
	return filepath.Join(o.OutputDir, o.CheckpointName)
}

// FinalPath returns the path of the merged workbook.
func (o Options) FinalPath() string {
	return filepath.Join(o.OutputDir, o.FinalName)
}
