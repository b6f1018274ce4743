package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge"
)

var inspectFormat string

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect WORKBOOK",
		Short: "List the named tables of a workbook",
		Long: `inspect lists the Excel tables and defined names a workbook offers, and
dense unnamed regions on sheets that have no named table.`,
		Args: cobra.ExactArgs(1),
		RunE: inspect,
	}
	cmd.Flags().StringVarP(&inspectFormat, "format", "f", "text", "Output format: text, json, yaml")
	return cmd
}

func inspect(cmd *cobra.Command, args []string) error {
	info, err := rostermerge.Inspect(args[0], nil)
	if err != nil {
		return fmt.Errorf("inspection failed: %w", err)
	}

	out := cmd.OutOrStdout()
	switch inspectFormat {
	case "json":
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(info)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		fmt.Fprint(out, string(data))
	case "text":
		printInfo(out, info)
	default:
		return fmt.Errorf("invalid format: %s (must be text, json, or yaml)", inspectFormat)
	}
	return nil
}

func printInfo(out io.Writer, info *rostermerge.WorkbookInfo) {
	if len(info.Tables) == 0 {
		fmt.Fprintf(out, "%s: no named tables\n", info.BookName)
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSHEET\tRANGE\tKIND")
		for _, t := range info.Tables {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Name, t.Sheet, t.Ref, t.Kind)
		}
		w.Flush()
	}

	if len(info.Candidates) > 0 {
		fmt.Fprintln(out, "\nUnnamed regions:")
		for _, c := range info.Candidates {
			fmt.Fprintf(out, "  %s!%s\n", c.Sheet, c.Ref)
		}
	}
}
