package tidy

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"strings"
)

// LineStream reads lines from r on demand. It can be ranged over once. Lines
// have no length limit: clang-tidy can print very long lines when it echoes
// macro expansions.
type LineStream struct {
	reader *bufio.Reader
	used   bool
	err    error
}

func NewLineStream(r io.Reader) *LineStream {
	return &LineStream{reader: bufio.NewReaderSize(r, 64*1024)}
}

// All yields each line without its trailing newline. A second call yields
// nothing.
func (s *LineStream) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		if s.used {
			return
		}
		s.used = true
		for {
			line, err := s.reader.ReadString('\n')
			if line != "" {
				if !yield(strings.TrimRight(line, "\r\n")) {
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					s.err = err
				}
				return
			}
		}
	}
}

// Err returns the first read error, if any.
func (s *LineStream) Err() error {
	return s.err
}
