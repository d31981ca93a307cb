package timing

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeToSeconds(t *testing.T) {
	v, err := ParseTimeToSeconds("1.47s")
	require.NoError(t, err)
	assert.Equal(t, 1.47, v)

	v, err = ParseTimeToSeconds("0.00s")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = ParseTimeToSeconds("fast")
	assert.Error(t, err)
}

func TestParseCPUPercent(t *testing.T) {
	v, err := ParseCPUPercent("80%")
	require.NoError(t, err)
	assert.Equal(t, 80, v)

	_, err = ParseCPUPercent("80.5%")
	assert.Error(t, err)
}

func TestParse_Tagged(t *testing.T) {
	input := `
real 1.00s
user 0.50s
sys 0.20s
cpu 80%

real 3.00s
user 1.50s
sys 0.40s
cpu 60%
`
	series, err := Parse(strings.NewReader(input), false)
	require.NoError(t, err)
	require.Len(t, series.Blocks, 2)

	assert.Equal(t, Block{Real: 1.00, User: 0.50, Sys: 0.20, CPU: 80}, series.Blocks[0])
	assert.Equal(t, Block{Real: 3.00, User: 1.50, Sys: 0.40, CPU: 60}, series.Blocks[1])
}

func TestParse_TaggedAnyOrderAfterReal(t *testing.T) {
	input := "real 2.00s\ncpu 50%\nsys 0.10s\nuser 1.00s\n"
	series, err := Parse(strings.NewReader(input), false)
	require.NoError(t, err)
	require.Len(t, series.Blocks, 1)
	assert.Equal(t, Block{Real: 2.00, User: 1.00, Sys: 0.10, CPU: 50}, series.Blocks[0])
}

func TestParse_TaggedErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		reason string
	}{
		{
			name:   "Missing Label",
			input:  "real 1.00s\nuser 0.50s\nsys 0.20s\nreal 2.00s\n",
			line:   4,
			reason: "duplicate label",
		},
		{
			name:   "Unknown Label",
			input:  "real 1.00s\nwall 0.50s\n",
			line:   2,
			reason: "unknown label",
		},
		{
			name:   "Trailing Incomplete Block",
			input:  "real 1.00s\nuser 0.50s\nsys 0.20s\ncpu 80%\nreal 1.00s\nuser 0.50s\n",
			line:   5,
			reason: "missing sys, cpu",
		},
		{
			name:   "Block Not Starting With Real",
			input:  "user 0.50s\nreal 1.00s\n",
			line:   1,
			reason: "must start with real",
		},
		{
			name:   "Bad Value",
			input:  "real abc\n",
			line:   1,
			reason: "invalid real value",
		},
		{
			name:   "Single Field",
			input:  "real\n",
			line:   1,
			reason: "expected '<label> <value>'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), false)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected ParseError, got %T", err)
			assert.Equal(t, tt.line, perr.Line)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestParse_FixedStride(t *testing.T) {
	// Labels are ignored in fixed-stride mode; position decides the metric.
	input := "a 1.00s\nb 0.50s\nc 0.20s\nd 80%\n"
	series, err := Parse(strings.NewReader(input), true)
	require.NoError(t, err)
	require.Len(t, series.Blocks, 1)
	assert.Equal(t, Block{Real: 1.00, User: 0.50, Sys: 0.20, CPU: 80}, series.Blocks[0])
}

func TestParse_FixedStrideMisaligned(t *testing.T) {
	input := "real 1.00s\nuser 0.50s\nsys 0.20s\ncpu 80%\nreal 1.00s\n"
	_, err := Parse(strings.NewReader(input), true)
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Reason, "not a multiple of 4")
}

func TestParse_FixedStrideWrongUnitPosition(t *testing.T) {
	// A cpu line landing in a time slot fails to parse instead of being read silently.
	input := "user 0.50s\nsys 0.20s\ncpu 80%\nreal 1.00s\n"
	_, err := Parse(strings.NewReader(input), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sys value")
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.txt"), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
