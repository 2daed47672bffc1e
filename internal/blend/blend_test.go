package blend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	base := RGB{0.2, 0.4, 0.6}
	over := RGB{1.0, 0.5, 0.0}

	testCases := []struct {
		name     string
		mode     Mode
		f        float64
		expected RGB
	}{
		{name: "normal full", mode: Normal, f: 1, expected: over},
		{name: "normal zero", mode: Normal, f: 0, expected: base},
		{name: "normal half", mode: Normal, f: 0.5, expected: RGB{0.6, 0.45, 0.3}},
		{name: "multiply full", mode: Multiply, f: 1, expected: RGB{0.2, 0.2, 0.0}},
		{name: "multiply zero", mode: Multiply, f: 0, expected: base},
		{name: "add full clamps", mode: Add, f: 1, expected: RGB{1.0, 0.9, 0.6}},
		{name: "add zero", mode: Add, f: 0, expected: base},
		{name: "screen zero", mode: Screen, f: 0, expected: base},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Apply(tc.mode, base, over, tc.f)
			require.NoError(t, err)
			assert.InDelta(t, tc.expected.R, got.R, 1e-9)
			assert.InDelta(t, tc.expected.G, got.G, 1e-9)
			assert.InDelta(t, tc.expected.B, got.B, 1e-9)
		})
	}
}

// Every registered mode must return the base untouched at f=0 and stay inside
// [0,1] at f=1 for in-range inputs.
func TestContractHoldsForEveryMode(t *testing.T) {
	base := RGB{0.3, 0.7, 0.1}
	over := RGB{0.9, 0.2, 0.8}

	for _, mode := range Modes() {
		t.Run(string(mode), func(t *testing.T) {
			got, err := Apply(mode, base, over, 0)
			require.NoError(t, err)
			assert.Equal(t, base, got)

			got, err = Apply(mode, base, over, 1)
			require.NoError(t, err)
			for _, c := range []float64{got.R, got.G, got.B} {
				assert.GreaterOrEqual(t, c, 0.0)
				assert.LessOrEqual(t, c, 1.0)
			}
		})
	}
}

func TestApply_UnknownMode(t *testing.T) {
	_, err := Apply(Mode("dissolve"), RGB{}, RGB{}, 1)
	assert.Error(t, err)
	assert.False(t, Valid(Mode("dissolve")))
	assert.True(t, Valid(Normal))
}

func TestAlphaOver(t *testing.T) {
	testCases := []struct {
		name     string
		base     float64
		over     float64
		expected float64
	}{
		{name: "half over half", base: 0.5, over: 0.5, expected: 0.75},
		{name: "opaque base", base: 1.0, over: 0.3, expected: 1.0},
		{name: "transparent base", base: 0.0, over: 0.4, expected: 0.4},
		{name: "both opaque", base: 1.0, over: 1.0, expected: 1.0},
		{name: "both transparent", base: 0.0, over: 0.0, expected: 0.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, AlphaOver(tc.base, tc.over), 1e-9)
		})
	}
}
