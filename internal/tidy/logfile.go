package tidy

import (
	"fmt"
	"os"
)

// Log tags.
const (
	TagStderr  = "stderr"
	TagStdout  = "stdout"
	TagSection = "==="
)

// LogFile appends tagged entries to the analysis output log. The file is
// opened for every write and never truncated.
type LogFile struct {
	Path string
}

// Write appends "[tag] text\n".
func (l *LogFile) Write(tag, text string) error {
	if l == nil || l.Path == "" {
		return nil
	}
	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output log: %w", err)
	}
	if _, err := fmt.Fprintf(f, "[%s] %s\n", tag, text); err != nil {
		f.Close()
		return fmt.Errorf("failed to write output log: %w", err)
	}
	return f.Close()
}
