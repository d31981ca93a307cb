package tidy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// CommandFunc builds the process for one phase. exec.CommandContext is the default.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// WaitDelay bounds how long Wait lingers on the pipes after the tool is killed.
var WaitDelay = 5 * time.Second

// Observer receives the outcome of every phase.
type Observer interface {
	ObservePhase(phase string, elapsed time.Duration, categories map[string]int, err error)
}

// PhaseError reports a phase that could not produce a result.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// PhaseResult is everything one phase produced.
type PhaseResult struct {
	Phase    Phase         `json:"phase"`
	Counts   Counts        `json:"counts"`
	Stdout   string        `json:"-"`
	Stderr   string        `json:"-"`
	Progress float64       `json:"progress"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

// Runner drives the external analysis tool.
type Runner struct {
	Tool      string
	Target    string
	ExtraArgs []string
	Timeout   time.Duration // per phase; zero means no deadline
	Mode      OverlapMode
	Log       *LogFile
	Console   io.Writer
	Logger    *slog.Logger

	// Command overrides how the tool process is built.
	Command CommandFunc

	// NewIndicator returns the progress display for a phase. Nil disables it.
	NewIndicator func(phase Phase) Indicator
	Observer     Observer
}

// Args returns the tool arguments for one check.
func (r *Runner) Args(check string) []string {
	args := []string{ChecksArg(check)}
	args = append(args, r.ExtraArgs...)
	return append(args, r.Target)
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) console(format string, args ...any) {
	if r.Console != nil {
		fmt.Fprintf(r.Console, format+"\n", args...)
	}
}

// Run executes the phases one after another. It stops at the first failure.
func (r *Runner) Run(ctx context.Context, phases []Phase) ([]PhaseResult, error) {
	results := make([]PhaseResult, 0, len(phases))
	for _, p := range phases {
		if err := r.Log.Write(TagSection, p.Banner+"\n"); err != nil {
			return results, err
		}
		r.console("%s", p.Console)

		res, err := r.RunPhase(ctx, p)
		if r.Observer != nil {
			r.Observer.ObservePhase(p.Name, res.Duration, res.Counts.ByCategory(), err)
		}
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// RunPhase runs the tool once. Stderr is consumed line by line as it arrives,
// driving the progress indicator and the output log, while stdout is
// collected in full. Each stream has exactly one reader.
func (r *Runner) RunPhase(ctx context.Context, p Phase) (PhaseResult, error) {
	res := PhaseResult{Phase: p}
	log := r.logger().With("phase", p.Name, "check", p.Check)

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := r.Args(p.Check)
	command := r.Command
	if command == nil {
		command = exec.CommandContext
	}
	cmd := command(ctx, r.Tool, args...)
	cmd.WaitDelay = WaitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return res, &PhaseError{Phase: p.Name, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return res, &PhaseError{Phase: p.Name, Err: err}
	}

	log.Debug("Starting analysis tool", "tool", r.Tool, "args", args)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return res, &PhaseError{Phase: p.Name, Err: fmt.Errorf("failed to start %s: %w", r.Tool, err)}
	}

	var outBuf bytes.Buffer
	copied := make(chan error, 1)
	go func() {
		_, err := io.Copy(&outBuf, stdout)
		copied <- err
	}()

	var indicator Indicator
	if r.NewIndicator != nil {
		indicator = r.NewIndicator(p)
	}

	var (
		errBuf   strings.Builder
		tracker  Tracker
		logErr   error
		finished bool
	)
	lines := NewLineStream(stderr)
	for line := range lines.All() {
		errBuf.WriteString(line)
		errBuf.WriteByte('\n')
		if err := r.Log.Write(TagStderr, line); err != nil && logErr == nil {
			logErr = err
		}
		if pct, ok := tracker.Observe(line); ok && indicator != nil {
			indicator.Set(pct)
			if tracker.Complete() {
				indicator.Finish()
				finished = true
			}
		}
	}
	if indicator != nil && !finished {
		indicator.Finish()
	}
	// The child blocks on a full pipe if stderr is left unread.
	if _, err := io.Copy(io.Discard, stderr); err != nil {
		log.Debug("Failed to drain stderr", "error", err)
	}

	copyErr := <-copied
	waitErr := cmd.Wait()
	res.Duration = time.Since(start)
	res.Stdout = outBuf.String()
	res.Stderr = errBuf.String()
	res.Progress = tracker.Percent()

	if err := lines.Err(); err != nil {
		return res, &PhaseError{Phase: p.Name, Err: fmt.Errorf("failed to read stderr: %w", err)}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, &PhaseError{Phase: p.Name, Err: fmt.Errorf("analysis aborted after %s: %w", res.Duration.Round(time.Millisecond), ctxErr)}
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return res, &PhaseError{Phase: p.Name, Err: waitErr}
		}
		// clang-tidy exits non-zero whenever it reports diagnostics.
		res.ExitCode = exitErr.ExitCode()
		log.Warn("Analysis tool exited with non-zero status", "exit_code", res.ExitCode)
	}
	if copyErr != nil {
		return res, &PhaseError{Phase: p.Name, Err: fmt.Errorf("failed to read stdout: %w", copyErr)}
	}
	if logErr != nil {
		return res, logErr
	}

	if err := r.Log.Write(TagStdout, res.Stdout); err != nil {
		return res, err
	}

	res.Counts = Tally(res.Stdout, r.Mode)
	log.Info("Phase complete",
		"duration", res.Duration,
		"progress", res.Progress,
		"warnings", res.Counts.Total(),
		"not_applied", res.Counts.NotApplied,
	)
	return res, nil
}
