package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"tidystat/internal/config"
	"tidystat/internal/telemetry"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded analysis runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("history-db", "", "History database written by analyze --history-db")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show, 0 for all")
	historyCmd.Flags().String("format", "text", "Output format: text or json")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := config.Require(config.KeyHistoryDB); err != nil {
		return err
	}
	store, err := newHistoryStoreFunc(viper.GetString(config.KeyHistoryDB))
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	telemetry.LogInfof("Loaded %d runs from %s", len(records), viper.GetString(config.KeyHistoryDB))

	out := cmd.OutOrStdout()
	if viper.GetString(config.KeyFormat) == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tTARGET\tMODE\tFIXES")
	for _, r := range records {
		fixes := "-"
		if r.Report != nil {
			fixes = fmt.Sprintf("%d/%d (%.2f%%)", r.Report.Fixes.Fixed, r.Report.Fixes.Potential, r.FixPercent())
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Target, r.OverlapMode, fixes)
	}
	return w.Flush()
}
