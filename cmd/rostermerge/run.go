package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/config"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/logging"
)

func runPipeline(cmd *cobra.Command, args []string) error {
	opts, err := rostermerge.LoadOptions(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	runLog, err := logging.New(logging.Config{
		Level: opts.LogLevel,
		Dir:   opts.LogDir,
		Start: time.Now(),
		RunID: uuid.NewString(),
	})
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer runLog.Close()
	logger := runLog.Logger

	doc, err := config.Load(opts.Settings)
	if err != nil {
		logger.Error("settings rejected", zap.String("path", opts.Settings), zap.Error(err))
		return err
	}

	res, err := rostermerge.Run(cmd.Context(), opts, doc, logger)
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		return err
	}

	out := cmd.OutOrStdout()
	for _, m := range res.Modules {
		if m.Path == "" {
			fmt.Fprintf(out, "%-20s skipped\n", m.Key)
			continue
		}
		fmt.Fprintf(out, "%-20s %6d rows  %s\n", m.Key, m.Rows, m.Path)
	}
	fmt.Fprintf(out, "checkpoint %s (%d rows)\n", res.Checkpoint, res.Stats.Input)
	fmt.Fprintf(out, "result     %s (%d rows, %d dropped without identity, %d cells filled)\n",
		res.Final, res.Merged.Len(), res.Stats.Dropped, res.Stats.Filled)
	fmt.Fprintf(out, "log        %s\n", runLog.Path)
	return nil
}

func validate(cmd *cobra.Command, args []string) error {
	opts, err := rostermerge.LoadOptions(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	doc, err := config.Load(opts.Settings)
	if err != nil {
		return err
	}

	tables := 0
	for _, m := range doc.Modules {
		tables += len(m.Tables)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d modules, %d tables, %d renames, %d replacement fields\n",
		opts.Settings, len(doc.Modules), tables, len(doc.RenameMap), doc.Replacements.Fields())
	return nil
}
