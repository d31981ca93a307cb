package timing

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseTimeToSeconds converts a value such as "1.47s" to seconds.
func ParseTimeToSeconds(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "s"), 64)
}

// ParseCPUPercent converts a value such as "80%" to an integer percentage.
func ParseCPUPercent(s string) (int, error) {
	return strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "%"))
}

type line struct {
	num   int
	label string
	value string
}

// ParseFile reads a timing log from disk. See Parse.
func ParseFile(path string, fixedStride bool) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open timing log: %w", err)
	}
	defer f.Close()

	series, err := Parse(f, fixedStride)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	series.Source = path
	return series, nil
}

// Parse reads `<label> <value><unit>` lines and groups them into blocks.
//
// By default lines are grouped by label: a block opens at "real" and closes
// once real, user, sys and cpu have each been seen. With fixedStride every four
// non-blank lines form one block and labels are ignored, which is how the
// logs were historically read.
func Parse(r io.Reader, fixedStride bool) (*Series, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	if fixedStride {
		return parseStride(lines)
	}
	return parseTagged(lines)
}

func readLines(r io.Reader) ([]line, error) {
	var lines []line
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, &ParseError{Line: n, Reason: fmt.Sprintf("expected '<label> <value>', got %q", text)}
		}
		lines = append(lines, line{num: n, label: fields[0], value: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read timing log: %w", err)
	}
	return lines, nil
}

func parseTagged(lines []line) (*Series, error) {
	series := &Series{}
	var cur Block
	seen := make(map[string]bool, len(Metrics))
	open := 0 // line number of the first line of the current block

	for _, l := range lines {
		switch l.label {
		case MetricReal, MetricUser, MetricSys, MetricCPU:
		default:
			return nil, &ParseError{Line: l.num, Label: l.label, Value: l.value, Reason: "unknown label"}
		}
		if len(seen) == 0 {
			if l.label != MetricReal {
				return nil, &ParseError{Line: l.num, Label: l.label, Value: l.value, Reason: "block must start with real"}
			}
			open = l.num
		}
		if seen[l.label] {
			return nil, &ParseError{Line: l.num, Label: l.label, Value: l.value, Reason: fmt.Sprintf("duplicate label in block starting at line %d", open)}
		}
		if err := assign(&cur, l.label, l); err != nil {
			return nil, err
		}
		seen[l.label] = true

		if len(seen) == len(Metrics) {
			series.Blocks = append(series.Blocks, cur)
			cur = Block{}
			clear(seen)
		}
	}

	if len(seen) != 0 {
		var missing []string
		for _, m := range Metrics {
			if !seen[m] {
				missing = append(missing, m)
			}
		}
		return nil, &ParseError{Line: open, Reason: "incomplete block, missing " + strings.Join(missing, ", ")}
	}
	return series, nil
}

func parseStride(lines []line) (*Series, error) {
	if rem := len(lines) % len(Metrics); rem != 0 {
		last := lines[len(lines)-1]
		return nil, &ParseError{Line: last.num, Reason: fmt.Sprintf("%d non-blank lines is not a multiple of %d", len(lines), len(Metrics))}
	}

	series := &Series{}
	for i := 0; i < len(lines); i += len(Metrics) {
		var b Block
		for j, metric := range Metrics {
			if err := assign(&b, metric, lines[i+j]); err != nil {
				return nil, err
			}
		}
		series.Blocks = append(series.Blocks, b)
	}
	return series, nil
}

func assign(b *Block, metric string, l line) error {
	var err error
	switch metric {
	case MetricReal:
		b.Real, err = ParseTimeToSeconds(l.value)
	case MetricUser:
		b.User, err = ParseTimeToSeconds(l.value)
	case MetricSys:
		b.Sys, err = ParseTimeToSeconds(l.value)
	case MetricCPU:
		b.CPU, err = ParseCPUPercent(l.value)
	}
	if err != nil {
		return &ParseError{Line: l.num, Label: l.label, Value: l.value, Reason: "invalid " + metric + " value", Err: err}
	}
	return nil
}
