package tidy

import (
	"math"
	"regexp"
	"strconv"
)

var progressRegex = regexp.MustCompile(`\[(\d+)/(\d+)\]`)

// ParseProgress extracts the first [done/total] marker from line.
func ParseProgress(line string) (done, total int, ok bool) {
	m := progressRegex.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, false
	}
	done, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	total, err = strconv.Atoi(m[2])
	if err != nil || total == 0 {
		return 0, 0, false
	}
	return done, total, true
}

// Indicator displays the progress of a phase.
type Indicator interface {
	Set(percent float64)
	Finish()
}

// Tracker follows progress markers on a stream. Once 100% is reached it
// ignores further markers.
type Tracker struct {
	percent     float64
	lines       int
	completedAt int
}

// Observe feeds one line to the tracker. It reports the new percentage and
// whether the line carried a marker that was applied.
func (t *Tracker) Observe(line string) (float64, bool) {
	t.lines++
	if t.Complete() {
		return t.percent, false
	}
	done, total, ok := ParseProgress(line)
	if !ok {
		return t.percent, false
	}
	t.percent = math.Round(float64(done)/float64(total)*100*100) / 100
	if t.percent >= 100 {
		t.completedAt = t.lines
	}
	return t.percent, true
}

// Percent is the last applied percentage.
func (t *Tracker) Percent() float64 { return t.percent }

// Complete reports whether a marker of 100% or more has been seen.
func (t *Tracker) Complete() bool { return t.completedAt > 0 }

// CompletedAt is the 1-based line number that completed progress, or 0.
func (t *Tracker) CompletedAt() int { return t.completedAt }
