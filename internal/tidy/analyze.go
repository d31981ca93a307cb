package tidy

import (
	"context"
	"fmt"
)

// Analysis is the outcome of a full three-phase run.
type Analysis struct {
	Results []PhaseResult
	Report  *Report
}

// Analyze runs every phase with the given checks, builds the report and
// appends it to the output log.
func (r *Runner) Analyze(ctx context.Context, checks Checks) (*Analysis, error) {
	results, err := r.Run(ctx, checks.Phases())
	if err != nil {
		return &Analysis{Results: results}, err
	}

	report, err := ReportFromResults(results)
	if err != nil {
		return &Analysis{Results: results}, fmt.Errorf("failed to compute report: %w", err)
	}

	if err := r.Log.Write(TagSection, report.Text()); err != nil {
		return &Analysis{Results: results, Report: report}, err
	}
	return &Analysis{Results: results, Report: report}, nil
}
