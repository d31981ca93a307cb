package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

const barWidth = 40

// ProgressBar draws analysis progress on a terminal. On a TTY the bar is
// redrawn in place; otherwise each new value is printed on its own line.
type ProgressBar struct {
	out   io.Writer
	label string
	plain bool
	model progress.Model

	last    float64
	drawn   bool
	stopped bool
}

// NewProgressBar returns a bar writing to w, choosing the plain fallback
// when w is not a terminal.
func NewProgressBar(w io.Writer, label string) *ProgressBar {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	profile := termenv.Ascii
	if tty {
		profile = termenv.NewOutput(w).EnvColorProfile()
	}
	return newProgressBar(w, label, !tty, profile)
}

func newProgressBar(w io.Writer, label string, plain bool, profile termenv.Profile) *ProgressBar {
	return &ProgressBar{
		out:   w,
		label: label,
		plain: plain,
		last:  -1,
		model: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(barWidth),
			progress.WithColorProfile(profile),
		),
	}
}

// Set moves the bar to pct, a value between 0 and 100.
func (p *ProgressBar) Set(pct float64) {
	if p.stopped || pct == p.last {
		return
	}
	p.last = pct
	p.drawn = true

	if p.plain {
		fmt.Fprintf(p.out, "%s%.2f%%\n", p.prefix(), pct)
		return
	}
	fmt.Fprintf(p.out, "\r%s%s", p.prefix(), p.model.ViewAs(clamp(pct/100)))
}

// Finish ends the bar. Later calls to Set are ignored.
func (p *ProgressBar) Finish() {
	if p.stopped {
		return
	}
	p.stopped = true
	if p.drawn && !p.plain {
		fmt.Fprintln(p.out)
	}
}

func (p *ProgressBar) prefix() string {
	if p.label == "" {
		return ""
	}
	return strings.TrimSpace(p.label) + " "
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
