// Package main provides the CLI entry point for rostermerge.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rostermerge",
		Short: "Merge questionnaire workbooks into one roster",
		Long: `rostermerge reads the named tables of every module workbook in the input
folder, normalizes their columns, and merges the records of each person into
one row. It writes one workbook per module, a checkpoint before merging and
the merged result.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runPipeline,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Options file (YAML, JSON or TOML)")
	pf.StringP("input", "i", "input", "Folder with module workbooks")
	pf.StringP("output", "o", "processed", "Folder for output workbooks")
	pf.StringP("settings", "s", "settings.json", "Settings document")
	pf.String("log-dir", "log", "Folder for run logs")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("prefix", "Processed_", "File name prefix of per-module outputs")
	pf.String("checkpoint", "before_dedup.xlsx", "File name of the pre-merge checkpoint")
	pf.String("final", "result.xlsx", "File name of the merged result")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the pipeline (default)",
			Args:  cobra.NoArgs,
			RunE:  runPipeline,
		},
		newInspectCmd(),
		&cobra.Command{
			Use:   "validate",
			Short: "Check the settings document",
			Args:  cobra.NoArgs,
			RunE:  validate,
		},
	)
	return rootCmd
}
