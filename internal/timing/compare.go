package timing

import "fmt"

// Delta is the change of one metric between a baseline and a candidate run.
type Delta struct {
	Metric    string  `json:"metric"`
	Unit      string  `json:"unit"`
	Baseline  float64 `json:"baseline"`
	Candidate float64 `json:"candidate"`
	Percent   float64 `json:"percent"` // (candidate-baseline)/baseline*100
}

// Compare returns the per-metric change of curr relative to prev.
// Metrics missing from either report are skipped. A zero baseline yields a
// zero percentage.
func Compare(prev, curr Report) []Delta {
	var deltas []Delta
	for _, c := range curr.Averages {
		p, ok := prev.Get(c.Metric)
		if !ok {
			continue
		}
		d := Delta{
			Metric:    c.Metric,
			Unit:      c.Unit,
			Baseline:  p.Value,
			Candidate: c.Value,
		}
		if p.Value != 0 {
			d.Percent = (c.Value - p.Value) / p.Value * 100
		}
		deltas = append(deltas, d)
	}
	return deltas
}

func (d Delta) String() string {
	return fmt.Sprintf("%s: %.2f%s -> %.2f%s (%+.2f%%)", d.Metric, d.Baseline, d.Unit, d.Candidate, d.Unit, d.Percent)
}
