package timing

import (
	"fmt"
	"io"
	"time"
)

// Summarize computes the arithmetic mean of every metric in the series.
func Summarize(s *Series) (Report, error) {
	if s == nil || len(s.Blocks) == 0 {
		return Report{}, ErrNoBlocks
	}

	var sum Block
	for _, b := range s.Blocks {
		sum.Real += b.Real
		sum.User += b.User
		sum.Sys += b.Sys
		sum.CPU += b.CPU
	}

	n := float64(len(s.Blocks))
	return Report{
		Timestamp: time.Now(),
		Source:    s.Source,
		Blocks:    len(s.Blocks),
		Averages: []Average{
			{Metric: MetricReal, Value: sum.Real / n, Unit: unitFor(MetricReal)},
			{Metric: MetricUser, Value: sum.User / n, Unit: unitFor(MetricUser)},
			{Metric: MetricSys, Value: sum.Sys / n, Unit: unitFor(MetricSys)},
			{Metric: MetricCPU, Value: float64(sum.CPU) / n, Unit: unitFor(MetricCPU)},
		},
	}, nil
}

// AverageFile parses path and summarizes it in one step.
func AverageFile(path string, fixedStride bool) (Report, error) {
	series, err := ParseFile(path, fixedStride)
	if err != nil {
		return Report{}, err
	}
	report, err := Summarize(series)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", path, err)
	}
	return report, nil
}

// WriteText prints the report in the plain format:
//
//	Average times across all runs:
//	real: 1.00s
func WriteText(w io.Writer, r Report) error {
	if _, err := fmt.Fprintln(w, "Average times across all runs:"); err != nil {
		return err
	}
	for _, a := range r.Averages {
		if _, err := fmt.Fprintln(w, a.String()); err != nil {
			return err
		}
	}
	return nil
}
