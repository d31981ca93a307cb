package timing

import (
	"errors"
	"fmt"
	"time"
)

// Metric names, in report order.
const (
	MetricReal = "real"
	MetricUser = "user"
	MetricSys  = "sys"
	MetricCPU  = "cpu"
)

// Metrics lists the four measurements of a block in the order they are printed.
var Metrics = []string{MetricReal, MetricUser, MetricSys, MetricCPU}

// ErrNoBlocks is returned when a timing log holds no complete block.
var ErrNoBlocks = errors.New("no timing blocks found")

// Block is one benchmark run as reported by `time`.
type Block struct {
	Real float64 `json:"real"`
	User float64 `json:"user"`
	Sys  float64 `json:"sys"`
	CPU  int     `json:"cpu"`
}

// Series is the ordered list of blocks read from one file.
type Series struct {
	Source string  `json:"source"`
	Blocks []Block `json:"blocks"`
}

// Average is the mean of one metric together with its unit suffix.
type Average struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
}

func (a Average) String() string {
	return fmt.Sprintf("%s: %.2f%s", a.Metric, a.Value, a.Unit)
}

// Report holds the per-metric averages of a series.
type Report struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Blocks    int       `json:"blocks"`
	Averages  []Average `json:"averages"`
}

// Get returns the average for the named metric.
func (r Report) Get(metric string) (Average, bool) {
	for _, a := range r.Averages {
		if a.Metric == metric {
			return a, true
		}
	}
	return Average{}, false
}

// ParseError describes a line that could not be read as part of a block.
type ParseError struct {
	Line   int
	Label  string
	Value  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("line %d", e.Line)
	if e.Label != "" {
		msg += fmt.Sprintf(" (%s %q)", e.Label, e.Value)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func unitFor(metric string) string {
	if metric == MetricCPU {
		return "%"
	}
	return "s"
}
