package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTarget(t *testing.T) {
	tests := []struct {
		curr       int
		adjustment Adjustment
		expected   int
		message    string
	}{
		{
			curr:       1,
			adjustment: Adjustment{DirectionUp, TypeAbsolute, 1},
			expected:   2,
			message:    "absolute up",
		},
		{
			curr:       3,
			adjustment: Adjustment{DirectionDown, TypeAbsolute, 1},
			expected:   2,
			message:    "absolute down",
		},
		{
			curr:       3,
			adjustment: Adjustment{DirectionUp, TypeAbsolute, 1.9},
			expected:   4,
			message:    "absolute value is truncated",
		},
		{
			curr:       1,
			adjustment: Adjustment{DirectionDown, TypeAbsolute, 5},
			expected:   -4,
			message:    "result is not clamped",
		},
		{
			curr:       4,
			adjustment: Adjustment{DirectionUp, TypePercent, 50},
			expected:   6,
			message:    "percent up",
		},
		{
			curr:       4,
			adjustment: Adjustment{DirectionDown, TypePercent, 50},
			expected:   2,
			message:    "percent down",
		},
		{
			curr:       1,
			adjustment: Adjustment{DirectionUp, TypePercent, 10},
			expected:   2,
			message:    "percent up takes the ceiling",
		},
		{
			curr:       3,
			adjustment: Adjustment{DirectionDown, TypePercent, 10},
			expected:   2,
			message:    "percent down takes the ceiling",
		},
		{
			curr:       0,
			adjustment: Adjustment{DirectionUp, TypePercent, 50},
			expected:   0,
			message:    "percent of zero is zero",
		},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.adjustment.Target(test.curr), test.message)
	}
}

func TestParseAdjustment(t *testing.T) {
	tests := []struct {
		in       string
		expected Adjustment
		message  string
	}{
		{"+2", Adjustment{DirectionUp, TypeAbsolute, 2}, "absolute up"},
		{"-3", Adjustment{DirectionDown, TypeAbsolute, 3}, "absolute down"},
		{"+25%", Adjustment{DirectionUp, TypePercent, 25}, "percent up"},
		{" -12.5% ", Adjustment{DirectionDown, TypePercent, 12.5}, "fractional percent with whitespace"},
		{"+0", Adjustment{DirectionUp, TypeAbsolute, 0}, "zero"},
	}

	for _, test := range tests {
		a, err := ParseAdjustment(test.in)
		require.NoError(t, err, test.message)
		assert.Equal(t, test.expected, a, test.message)
	}

	for _, in := range []string{"", "+", "2", "*2", "+two", "+1.5", "--1", "+%", "+NaN"} {
		_, err := ParseAdjustment(in)
		assert.Error(t, err, "parsing %q", in)
	}
}

func TestAdjustmentString(t *testing.T) {
	for _, in := range []string{"+2", "-3", "+25%", "-12.5%"} {
		a, err := ParseAdjustment(in)
		require.NoError(t, err)
		assert.Equal(t, in, a.String())
	}
}
