package timing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	prev := Report{Averages: []Average{
		{Metric: "real", Value: 2.0, Unit: "s"},
		{Metric: "cpu", Value: 0, Unit: "%"},
	}}
	curr := Report{Averages: []Average{
		{Metric: "real", Value: 2.5, Unit: "s"}, // 25% slower
		{Metric: "user", Value: 1.0, Unit: "s"}, // missing from prev
		{Metric: "cpu", Value: 90, Unit: "%"},   // zero baseline
	}}

	deltas := Compare(prev, curr)

	assert.Len(t, deltas, 2)
	assert.Equal(t, "real", deltas[0].Metric)
	assert.InDelta(t, 25.0, deltas[0].Percent, 0.01)
	assert.Equal(t, "real: 2.00s -> 2.50s (+25.00%)", deltas[0].String())

	assert.Equal(t, "cpu", deltas[1].Metric)
	assert.Equal(t, 0.0, deltas[1].Percent)
}
