package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"tidystat/internal/config"
	"tidystat/internal/telemetry"
	"tidystat/internal/timing"
	"tidystat/internal/ui"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	averageCompare     bool
	averageSave        bool
	averageWatch       bool
	averageFixedStride bool
)

// newTimingStoreFunc allows mocking in tests.
var newTimingStoreFunc = func(path string) (timing.Store, error) {
	return timing.NewFileStore(path)
}

var averageCmd = &cobra.Command{
	Use:   "average FILE [FILE...]",
	Short: "Average the real/user/sys/cpu values of a timing log",
	Long: `Reads a log of repeated 'time' measurements, one "<label> <value><unit>" line
each, and prints the mean of every metric. With two files and --compare the
second file is compared against the first. With one file and --compare it is
compared against the latest averages in the history file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAverage,
}

func init() {
	rootCmd.AddCommand(averageCmd)
	averageCmd.Flags().BoolVar(&averageCompare, "compare", false, "Compare the second file against the first, or one file against the last saved averages")
	averageCmd.Flags().BoolVar(&averageSave, "save", false, "Append the averages to the history file")
	averageCmd.Flags().BoolVar(&averageWatch, "watch", false, "Recompute whenever a file changes")
	averageCmd.Flags().BoolVar(&averageFixedStride, "fixed-stride", false, "Read every four lines as real/user/sys/cpu, ignoring labels")
	averageCmd.Flags().String("format", "text", "Output format: text or json")
	averageCmd.Flags().String("history-file", ".tidystat/timings.json", "File that stores averages for --save and single-file --compare")
}

type averageOutput struct {
	Reports    []timing.Report `json:"reports"`
	Baseline   *timing.Report  `json:"baseline,omitempty"`
	Comparison []timing.Delta  `json:"comparison,omitempty"`
}

func runAverage(cmd *cobra.Command, args []string) error {
	if averageCompare && len(args) > 2 {
		return fmt.Errorf("--compare needs one or two files, got %d", len(args))
	}

	render := func() error {
		return averageFiles(cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
	}

	if err := render(); err != nil {
		if !averageWatch {
			return err
		}
		telemetry.LogError("Failed to average timing logs", err)
	}
	if !averageWatch {
		return nil
	}

	fmt.Fprintln(cmd.ErrOrStderr(), ui.Console("Watching for changes, press Ctrl-C to stop"))
	return timing.Watch(cmd.Context(), args, func(path string) {
		telemetry.LogDebug("Timing log changed", "path", path)
		if err := render(); err != nil {
			telemetry.LogError("Failed to average timing logs", err)
		}
	})
}

func averageFiles(w, status io.Writer, paths []string) error {
	out := averageOutput{}
	for _, path := range paths {
		report, err := timing.AverageFile(path, averageFixedStride)
		if err != nil {
			return err
		}
		out.Reports = append(out.Reports, report)
		observeTiming(report)
	}

	var store timing.Store
	path := viper.GetString(config.KeyHistoryFile)
	if averageSave || (averageCompare && len(out.Reports) == 1) {
		var err error
		if store, err = newTimingStoreFunc(path); err != nil {
			return err
		}
	}

	if averageCompare {
		if len(out.Reports) == 2 {
			out.Baseline = &out.Reports[0]
		} else {
			// Load before saving so the run is not compared with itself.
			latest, err := store.LoadLatest()
			if err != nil {
				return fmt.Errorf("failed to load saved averages: %w", err)
			}
			if latest == nil {
				return fmt.Errorf("no saved averages to compare against in %s", path)
			}
			out.Baseline = latest
		}
		out.Comparison = timing.Compare(*out.Baseline, out.Reports[len(out.Reports)-1])
	}

	if averageSave {
		for _, r := range out.Reports {
			if err := store.Save(r); err != nil {
				return fmt.Errorf("failed to save averages: %w", err)
			}
		}
		fmt.Fprintln(status, ui.Console("Averages saved to "+path))
	}

	if viper.GetString(config.KeyFormat) == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return writeAverageText(w, out)
}

func writeAverageText(w io.Writer, out averageOutput) error {
	for i, r := range out.Reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "for %s\n", r.Source)
		if err := timing.WriteText(w, r); err != nil {
			return err
		}
	}
	if len(out.Comparison) > 0 {
		base := out.Baseline.Source
		if len(out.Reports) == 1 {
			base = fmt.Sprintf("%s (saved %s)", base, out.Baseline.Timestamp.Format(time.RFC3339))
		}
		fmt.Fprintf(w, "\n%s against %s:\n", out.Reports[len(out.Reports)-1].Source, base)
		for _, d := range out.Comparison {
			fmt.Fprintln(w, d.String())
		}
	}
	return nil
}

func observeTiming(r timing.Report) {
	values := make(map[string]float64, len(r.Averages))
	for _, a := range r.Averages {
		values[a.Metric] = a.Value
	}
	appMetrics.ObserveTiming(r.Source, r.Blocks, values)
}
