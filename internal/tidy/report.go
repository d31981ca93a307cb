package tidy

import (
	"fmt"
	"strings"
)

// ZeroTotalError is returned when a percentage would divide by zero.
type ZeroTotalError struct {
	Phase    string
	Category string
}

func (e *ZeroTotalError) Error() string {
	return fmt.Sprintf("cannot compute percentages: %s count of %s phase is zero", e.Category, e.Phase)
}

// PhaseStats are the counts of one phase with each category expressed as a
// percentage of the phase total.
type PhaseStats struct {
	Phase            string  `json:"phase"`
	Total            int     `json:"total"`
	Unary            int     `json:"unary_ops"`
	Assignment       int     `json:"assignment_ops"`
	NonAssignment    int     `json:"nonassignment_ops"`
	NotApplied       int     `json:"not_applied"`
	UnaryPct         float64 `json:"unary_pct"`
	AssignmentPct    float64 `json:"assignment_pct"`
	NonAssignmentPct float64 `json:"nonassignment_pct"`
	NotAppliedPct    float64 `json:"not_applied_pct"`
}

// Ratio compares a real-phase count with its potential (debug) baseline.
type Ratio struct {
	Fixed     int     `json:"fixed"`
	Potential int     `json:"potential"`
	Percent   float64 `json:"percent"`
}

// Report is the statistics derived from the three phases.
type Report struct {
	Potential          PhaseStats `json:"potential"`
	Typed              PhaseStats `json:"typed"`
	Real               PhaseStats `json:"real"`
	Fixes              Ratio      `json:"fixes"`
	UnaryFixed         Ratio      `json:"unary_fixed"`
	AssignmentFixed    Ratio      `json:"assignment_fixed"`
	NonAssignmentFixed Ratio      `json:"nonassignment_fixed"`
}

func percent(phase, category string, n, total int) (float64, error) {
	if total == 0 {
		return 0, &ZeroTotalError{Phase: phase, Category: category}
	}
	return float64(n) / float64(total) * 100, nil
}

func newPhaseStats(phase string, c Counts) (PhaseStats, error) {
	s := PhaseStats{
		Phase:         phase,
		Total:         c.Total(),
		Unary:         c.UnaryOps,
		Assignment:    c.AssignmentOps,
		NonAssignment: c.NonAssignmentOps,
		NotApplied:    c.NotApplied,
	}
	var err error
	if s.UnaryPct, err = percent(phase, "total", s.Unary, s.Total); err != nil {
		return s, err
	}
	// The remaining divisions share the same non-zero denominator.
	s.AssignmentPct, _ = percent(phase, "total", s.Assignment, s.Total)
	s.NonAssignmentPct, _ = percent(phase, "total", s.NonAssignment, s.Total)
	s.NotAppliedPct, _ = percent(phase, "total", s.NotApplied, s.Total)
	return s, nil
}

func newRatio(category string, fixed, potential int) (Ratio, error) {
	p, err := percent(PhaseDebug, category, fixed, potential)
	return Ratio{Fixed: fixed, Potential: potential, Percent: p}, err
}

// NewReport derives the statistics from the debug, typed-debug and real counts.
// Every percentage needs a non-zero denominator; the first zero found is
// reported as a *ZeroTotalError.
func NewReport(potential, typed, applied Counts) (*Report, error) {
	r := &Report{}
	var err error

	if r.Potential, err = newPhaseStats(PhaseDebug, potential); err != nil {
		return nil, err
	}
	if r.Typed, err = newPhaseStats(PhaseTypedDebug, typed); err != nil {
		return nil, err
	}
	if r.Real, err = newPhaseStats(PhaseReal, applied); err != nil {
		return nil, err
	}

	if r.Fixes, err = newRatio("total", r.Real.Total, r.Potential.Total); err != nil {
		return nil, err
	}
	if r.UnaryFixed, err = newRatio("unary", r.Real.Unary, r.Potential.Unary); err != nil {
		return nil, err
	}
	if r.AssignmentFixed, err = newRatio("assignment", r.Real.Assignment, r.Potential.Assignment); err != nil {
		return nil, err
	}
	if r.NonAssignmentFixed, err = newRatio("non-assignment", r.Real.NonAssignment, r.Potential.NonAssignment); err != nil {
		return nil, err
	}
	return r, nil
}

// ReportFromResults builds the report from the results of Runner.Run.
func ReportFromResults(results []PhaseResult) (*Report, error) {
	byName := make(map[string]Counts, len(results))
	for _, res := range results {
		byName[res.Phase.Name] = res.Counts
	}
	for _, name := range []string{PhaseDebug, PhaseTypedDebug, PhaseReal} {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("missing result for %s phase", name)
		}
	}
	return NewReport(byName[PhaseDebug], byName[PhaseTypedDebug], byName[PhaseReal])
}

func writeCategories(b *strings.Builder, s PhaseStats) {
	fmt.Fprintf(b, "    > Total unary operations: %d (%.2f%%)\n", s.Unary, s.UnaryPct)
	fmt.Fprintf(b, "    > Total assignment operations: %d (%.2f%%)\n", s.Assignment, s.AssignmentPct)
	fmt.Fprintf(b, "    > Total non-assignment operations: %d (%.2f%%)\n", s.NonAssignment, s.NonAssignmentPct)
}

func writeRatio(b *strings.Builder, label string, r Ratio) {
	fmt.Fprintf(b, "    > %s: %d/%d (%.2f%%)\n", label, r.Fixed, r.Potential, r.Percent)
}

// Text renders the report in the plain-text layout used on the console and in
// the output log.
func (r *Report) Text() string {
	var b strings.Builder

	b.WriteString("Debug plugin stats:\n")
	fmt.Fprintf(&b, "    > Potential replacements: %d\n", r.Potential.Total)
	writeCategories(&b, r.Potential)

	b.WriteString("\nTyped Debug plugin stats:\n")
	fmt.Fprintf(&b, "    > Potential replacements: %d\n", r.Typed.Total)
	writeCategories(&b, r.Typed)

	b.WriteString("\nReal plugin stats:\n")
	fmt.Fprintf(&b, "    > Replacements: %d\n", r.Real.Total)
	writeCategories(&b, r.Real)
	fmt.Fprintf(&b, "    > Overlapping fixes: %d (%.2f%%)\n", r.Real.NotApplied, r.Real.NotAppliedPct)

	b.WriteString("\nTotal performance stats:\n")
	writeRatio(&b, "Percentage of fixes", r.Fixes)
	writeRatio(&b, "Percentage of unary operations fixed", r.UnaryFixed)
	writeRatio(&b, "Percentage of assignment operations fixed", r.AssignmentFixed)
	writeRatio(&b, "Percentage of nonassignment operations fixed", r.NonAssignmentFixed)

	return b.String()
}

// Summary is a one-line digest suitable for chat notifications.
func (r *Report) Summary() string {
	return fmt.Sprintf("Percentage of fixes: %d/%d (%.2f%%), overlapping fixes: %d",
		r.Fixes.Fixed, r.Fixes.Potential, r.Fixes.Percent, r.Real.NotApplied)
}
