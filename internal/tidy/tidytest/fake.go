// Package tidytest provides a fake clang-tidy for tests. The test binary
// re-executes itself as the tool, following the GO_WANT_HELPER_PROCESS idiom.
package tidytest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// EnvHelper marks the re-executed test binary as the fake tool.
const EnvHelper = "GO_WANT_HELPER_PROCESS"

// HangTool makes the fake tool sleep instead of producing output.
const HangTool = "hang"

// LongLineTool makes the fake tool print one LongLineSize line to each stream
// before its usual output.
const LongLineTool = "long-line"

// LongLineSize is larger than any pipe buffer and any default scanner limit.
const LongLineSize = 6 << 20

// Output is the canned result for one check.
type Output struct {
	Stdout   []string
	Stderr   []string
	ExitCode int
}

// Counts per check, exclusive classification: unary, non-assignment, assignment, not applied.
var (
	DebugCounts      = [4]int{4, 3, 5, 0}
	TypedDebugCounts = [4]int{2, 2, 4, 0}
	RealCounts       = [4]int{2, 1, 3, 1}
)

// Outputs maps a check name to what the fake tool prints for it.
var Outputs = map[string]Output{
	"modernize-use-checked-arithmetic-debug":       build("modernize-use-checked-arithmetic-debug", DebugCounts, 0),
	"modernize-use-checked-arithmetic-typed-debug": build("modernize-use-checked-arithmetic-typed-debug", TypedDebugCounts, 0),
	"modernize-use-checked-arithmetic":             build("modernize-use-checked-arithmetic", RealCounts, 1),
}

func build(check string, counts [4]int, exit int) Output {
	var out Output
	line := 1
	add := func(n int, format string) {
		for i := 0; i < n; i++ {
			out.Stdout = append(out.Stdout, fmt.Sprintf(format, line, check))
			line++
		}
	}
	add(counts[0], "/src/math.c:%d:5: warning: unary operation may overflow [%s]")
	add(counts[1], "/src/math.c:%d:9: warning: non-assignment operation may overflow [%s]")
	add(counts[2], "/src/math.c:%d:3: warning: assignment operation may overflow [%s]")
	for i := 0; i < counts[3]; i++ {
		out.Stdout = append(out.Stdout, fmt.Sprintf("/src/math.c:%d:3: note: this fix will not be applied because it overlaps with another fix", line))
		line++
	}
	out.Stdout = append(out.Stdout, "    x = x + 1;", "        ^")

	total := counts[0] + counts[1] + counts[2]
	out.Stderr = []string{
		"[1/2] Processing file /src/math.c.",
		fmt.Sprintf("%d warnings generated.", total),
		"[2/2] Processing file /src/util.c.",
		// Printed after progress completes; must still be captured.
		fmt.Sprintf("Suppressed 0 warnings (%d in non-user code).", total),
	}
	out.ExitCode = exit
	return out
}

// Command returns a command builder that runs the test binary's testName
// function as the tool. Its signature matches exec.CommandContext.
func Command(testName string) func(ctx context.Context, name string, args ...string) *exec.Cmd {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := []string{"-test.run=^" + testName + "$", "--", name}
		cs = append(cs, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), EnvHelper+"=1")
		return cmd
	}
}

// Main acts as the fake tool when the helper environment is set and returns
// immediately otherwise. Call it from the test function passed to Command.
func Main() {
	if os.Getenv(EnvHelper) != "1" {
		return
	}

	args := os.Args
	for len(args) > 0 {
		if args[0] == "--" {
			args = args[1:]
			break
		}
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "fake tool: no command")
		os.Exit(2)
	}

	tool, rest := args[0], args[1:]
	if tool == HangTool {
		fmt.Fprintln(os.Stderr, "[0/2] Starting")
		time.Sleep(time.Minute)
		os.Exit(0)
	}

	var check string
	for _, a := range rest {
		if c, ok := strings.CutPrefix(a, "--checks=-*, "); ok {
			check = c
		}
	}
	out, ok := Outputs[check]
	if !ok {
		fmt.Fprintf(os.Stderr, "fake tool: unknown check %q\n", check)
		os.Exit(3)
	}

	if tool == LongLineTool {
		long := strings.Repeat("x", LongLineSize)
		fmt.Fprintln(os.Stderr, long)
		fmt.Fprintln(os.Stdout, long)
	}
	for _, l := range out.Stderr {
		fmt.Fprintln(os.Stderr, l)
	}
	for _, l := range out.Stdout {
		fmt.Fprintln(os.Stdout, l)
	}
	os.Exit(out.ExitCode)
}
