package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestProgressBar_Plain(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, "debug")

	bar.Set(5)
	bar.Set(5)
	bar.Set(50)
	bar.Set(100)
	bar.Finish()
	bar.Set(10)

	assert.Equal(t, "debug 5.00%\ndebug 50.00%\ndebug 100.00%\n", buf.String())
}

func TestProgressBar_PlainNoLabel(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, "")

	bar.Set(33.33)
	bar.Finish()

	assert.Equal(t, "33.33%\n", buf.String())
}

func TestProgressBar_Terminal(t *testing.T) {
	var buf bytes.Buffer
	bar := newProgressBar(&buf, "real", false, termenv.Ascii)

	bar.Set(50)
	bar.Set(100)
	bar.Finish()
	bar.Finish()

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "\r"), "each update redraws in place")
	assert.Contains(t, out, "\rreal ")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "100%")
	assert.True(t, strings.HasSuffix(out, "\n"), "Finish ends the line once")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestProgressBar_FinishWithoutUpdates(t *testing.T) {
	var buf bytes.Buffer
	bar := newProgressBar(&buf, "real", false, termenv.Ascii)

	bar.Finish()

	assert.Empty(t, buf.String())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-0.5))
	assert.Equal(t, 0.25, clamp(0.25))
	assert.Equal(t, 1.0, clamp(1.7))
}
