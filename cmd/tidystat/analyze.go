package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"

	"tidystat/internal/config"
	"tidystat/internal/history"
	"tidystat/internal/notify"
	"tidystat/internal/telemetry"
	"tidystat/internal/tidy"
	"tidystat/internal/ui"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// execCommand allows mocking the analysis tool in tests.
var execCommand = exec.CommandContext

// newHistoryStoreFunc allows mocking in tests.
var newHistoryStoreFunc = func(path string) (history.Store, error) {
	return history.Open(path)
}

// newNotifierFunc allows mocking in tests.
var newNotifierFunc = func(webhookURL string) notify.Notifier {
	return notify.NewSlackNotifier(webhookURL)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Measure how many checked-arithmetic fixes clang-tidy applies",
	Long: `Runs clang-tidy three times against the target: with the debug check, the
typed debug check and the real check. Each run's warnings are counted by
operation kind and the real run is compared against the debug run.
All tool output is appended to the --output log.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().String("clang-tidy", "", "Path to the clang-tidy binary")
	analyzeCmd.Flags().String("target", "", "Source file to analyze")
	analyzeCmd.Flags().String("output", "", "Log file that tool output is appended to")
	analyzeCmd.Flags().String("timeout", "30m", "Deadline for each run, 0 disables it")
	analyzeCmd.Flags().String("format", "text", "Output format: text or json")
	analyzeCmd.Flags().String("extra-args", "", "Extra clang-tidy arguments, split like a shell would")
	analyzeCmd.Flags().String("overlap-mode", "exclusive", "Counting of overlapping messages: exclusive or legacy")
	analyzeCmd.Flags().String("history-db", "", "SQLite path or postgres:// URL to record the run in")
}

type analyzeOutput struct {
	Target string             `json:"target"`
	Mode   tidy.OverlapMode   `json:"overlap_mode"`
	Phases []tidy.PhaseResult `json:"phases"`
	Report *tidy.Report       `json:"report"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := config.Require(config.KeyClangTidy, config.KeyTarget, config.KeyOutput); err != nil {
		return err
	}
	mode, err := tidy.ParseOverlapMode(viper.GetString(config.KeyOverlapMode))
	if err != nil {
		return err
	}
	extra, err := shellquote.Split(viper.GetString(config.KeyExtraArgs))
	if err != nil {
		return fmt.Errorf("invalid --extra-args: %w", err)
	}

	jsonOut := viper.GetString(config.KeyFormat) == "json"
	out := cmd.OutOrStdout()
	status := cmd.ErrOrStderr()
	console := out
	if jsonOut {
		console = status
	}

	tool := viper.GetString(config.KeyClangTidy)
	target := viper.GetString(config.KeyTarget)
	runner := &tidy.Runner{
		Tool:      tool,
		Target:    target,
		ExtraArgs: extra,
		Timeout:   config.Duration(config.KeyTimeout),
		Mode:      mode,
		Log:       &tidy.LogFile{Path: viper.GetString(config.KeyOutput)},
		Console:   console,
		Logger:    slog.Default(),
		Command:   func(ctx context.Context, name string, args ...string) *exec.Cmd { return execCommand(ctx, name, args...) },
		NewIndicator: func(p tidy.Phase) tidy.Indicator {
			return ui.NewProgressBar(status, p.Name)
		},
		Observer: appMetrics,
	}
	checks := tidy.Checks{
		Debug:      viper.GetString(config.KeyCheckDebug),
		TypedDebug: viper.GetString(config.KeyCheckTypedDebug),
		Real:       viper.GetString(config.KeyCheckReal),
	}

	telemetry.LogDebug("Starting analysis", "tool", tool, "target", target, "overlap_mode", mode, "timeout", runner.Timeout)
	analysis, err := runner.Analyze(cmd.Context(), checks)
	if err != nil {
		notifyFailure(cmd.Context(), target, err)
		return err
	}
	telemetry.LogInfo("Analysis finished", "target", target, "fixed", analysis.Report.Fixes.Fixed, "potential", analysis.Report.Fixes.Potential)

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analyzeOutput{Target: target, Mode: mode, Phases: analysis.Results, Report: analysis.Report}); err != nil {
			return err
		}
	} else if err := writeAnalysisText(out, analysis.Report); err != nil {
		return err
	}

	if path := viper.GetString(config.KeyHistoryDB); path != "" {
		if err := saveHistory(status, path, history.NewRecord(tool, target, mode, analysis)); err != nil {
			return err
		}
	}

	if webhook := viper.GetString(config.KeySlackWebhook); webhook != "" {
		if err := newNotifierFunc(webhook).NotifyReport(cmd.Context(), target, analysis.Report); err != nil {
			telemetry.LogError("Slack notification failed", err)
		}
	}
	return nil
}

// notifyFailure reports an aborted run. It uses a fresh context so that a
// cancelled run can still be reported.
func notifyFailure(ctx context.Context, target string, runErr error) {
	webhook := viper.GetString(config.KeySlackWebhook)
	if webhook == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	msg := fmt.Sprintf("%s: analysis failed: %v", target, runErr)
	if err := newNotifierFunc(webhook).Notify(ctx, msg); err != nil {
		telemetry.LogError("Slack notification failed", err)
	}
}

func writeAnalysisText(w io.Writer, r *tidy.Report) error {
	_, err := io.WriteString(w, ui.StyleReport(r.Text()))
	return err
}

func saveHistory(status io.Writer, path string, rec *history.Record) error {
	store, err := newHistoryStoreFunc(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(rec); err != nil {
		return err
	}
	fmt.Fprintln(status, ui.Console(fmt.Sprintf("Run #%d recorded in %s", rec.ID, path)))
	return nil
}
