package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/iishyfishyy/llmcmd/internal/history"
	"github.com/iishyfishyy/llmcmd/internal/ui"
)

func newLogsCmd() *cobra.Command {
	var count int

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(cmd, count)
		},
	}
	logsCmd.Flags().IntVarP(&count, "count", "n", 3, "Number of runs to show")

	return logsCmd
}

func runLogs(cmd *cobra.Command, count int) error {
	store, err := openRunLog()
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), count)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ui.ShowInfo("No runs recorded yet.")
		return nil
	}

	out := cmd.OutOrStdout()
	ui.ShowSection(out, fmt.Sprintf("Recent runs (%d)", len(entries)))
	for i, entry := range entries {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printEntry(cmd, entry)
	}
	return nil
}

func printEntry(cmd *cobra.Command, entry history.Entry) {
	out := cmd.OutOrStdout()
	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintf(out, "%s", entry.Prompt)
	gray.Fprintf(out, "  %s, %s", entry.Model, humanize.Time(entry.CreatedAt))
	if entry.Enriched {
		gray.Fprint(out, ", tldr")
	}
	fmt.Fprintln(out)

	if entry.Response != entry.Command {
		gray.Fprintf(out, "  suggested: %s\n", indent(entry.Response))
	}
	fmt.Fprintf(out, "  ran:       %s\n", indent(entry.Command))
	if entry.ExitCode != 0 {
		color.New(color.FgRed).Fprintf(out, "  exit status %d\n", entry.ExitCode)
	}
}

func indent(text string) string {
	return strings.ReplaceAll(text, "\n", "\n             ")
}
