package tidy

import (
	"fmt"
	"strings"
)

// Category is the classification of one line of tool output.
type Category int

const (
	CategoryNone Category = iota
	CategoryNotApplied
	CategoryUnary
	CategoryNonAssignment
	CategoryAssignment
)

func (c Category) String() string {
	switch c {
	case CategoryNotApplied:
		return "not_applied"
	case CategoryUnary:
		return "unary_ops"
	case CategoryNonAssignment:
		return "nonassignment_ops"
	case CategoryAssignment:
		return "assignment_ops"
	default:
		return "none"
	}
}

// OverlapMode selects how lines matching several markers are counted.
type OverlapMode string

const (
	// OverlapExclusive assigns each line to the first matching category.
	OverlapExclusive OverlapMode = "exclusive"
	// OverlapLegacy tests every marker independently, so a
	// "non-assignment operation" line is also counted as an assignment.
	OverlapLegacy OverlapMode = "legacy"
)

// ParseOverlapMode validates a mode name. The empty string means exclusive.
func ParseOverlapMode(s string) (OverlapMode, error) {
	switch OverlapMode(s) {
	case "", OverlapExclusive:
		return OverlapExclusive, nil
	case OverlapLegacy:
		return OverlapLegacy, nil
	}
	return "", fmt.Errorf("unknown overlap mode %q (want %q or %q)", s, OverlapExclusive, OverlapLegacy)
}

// Markers are tested in this order; the more specific
// "non-assignment operation" must come before "assignment operation".
var markers = []struct {
	category Category
	text     string
}{
	{CategoryNotApplied, "this fix will not be applied"},
	{CategoryUnary, "unary operation"},
	{CategoryNonAssignment, "non-assignment operation"},
	{CategoryAssignment, "assignment operation"},
}

// Classify returns the single category of line.
func Classify(line string) Category {
	for _, m := range markers {
		if strings.Contains(line, m.text) {
			return m.category
		}
	}
	return CategoryNone
}

// Counts is the per-category tally of one phase's output.
type Counts struct {
	NotApplied        int      `json:"not_applied"`
	UnaryOps          int      `json:"unary_ops"`
	NonAssignmentOps  int      `json:"nonassignment_ops"`
	AssignmentOps     int      `json:"assignment_ops"`
	UnaryStrs         []string `json:"unary_ops_strs,omitempty"`
	NonAssignmentStrs []string `json:"nonassignment_ops_strs,omitempty"`
	AssignmentStrs    []string `json:"assignment_ops_strs,omitempty"`
}

// Total is the number of operation warnings. Not-applied notes are not included.
func (c Counts) Total() int {
	return c.UnaryOps + c.NonAssignmentOps + c.AssignmentOps
}

// ByCategory returns the counts keyed by category name.
func (c Counts) ByCategory() map[string]int {
	return map[string]int{
		CategoryNotApplied.String():    c.NotApplied,
		CategoryUnary.String():         c.UnaryOps,
		CategoryNonAssignment.String(): c.NonAssignmentOps,
		CategoryAssignment.String():    c.AssignmentOps,
	}
}

func (c *Counts) add(cat Category, line string) {
	switch cat {
	case CategoryNotApplied:
		c.NotApplied++
	case CategoryUnary:
		c.UnaryOps++
		c.UnaryStrs = append(c.UnaryStrs, line)
	case CategoryNonAssignment:
		c.NonAssignmentOps++
		c.NonAssignmentStrs = append(c.NonAssignmentStrs, line)
	case CategoryAssignment:
		c.AssignmentOps++
		c.AssignmentStrs = append(c.AssignmentStrs, line)
	}
}

// Tally counts the categories found in the tool's standard output.
func Tally(stdout string, mode OverlapMode) Counts {
	var c Counts
	for line := range strings.Lines(stdout) {
		line = strings.TrimRight(line, "\r\n")
		if mode == OverlapLegacy {
			for _, m := range markers {
				if strings.Contains(line, m.text) {
					c.add(m.category, line)
				}
			}
			continue
		}
		c.add(Classify(line), line)
	}
	return c
}
