package timing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleTime(t *testing.T) {
	tests := map[string]struct {
		base  int64
		rate  uint32
		index uint32
		want  int64
	}{
		"first sample is the base":   {1700000000, 30, 0, 1700000000 * NanosPerSecond},
		"100 Hz spacing":             {1700000000, 100, 3, 1700000000*NanosPerSecond + 30_000_000},
		"30 Hz truncates":            {10, 30, 1, 10*NanosPerSecond + 33_333_333},
		"30 Hz accumulates floor":    {10, 30, 30, 10*NanosPerSecond + 999_999_990},
		"epoch":                      {0, 50, 2, 40_000_000},
		"rate above a gigahertz":     {5, 2_000_000_000, 7, 5 * NanosPerSecond},
		"last sample of 31 at 30 Hz": {1, 30, 30, NanosPerSecond + 30*33_333_333},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := SampleTime(tc.base, tc.rate, tc.index)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSampleTime_ZeroRate(t *testing.T) {
	_, err := SampleTime(1, 0, 0)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestSampleTime_UniformSpacing(t *testing.T) {
	var prev int64
	for i := uint32(0); i < 31; i++ {
		ts, err := SampleTime(1700000000, 30, i)
		require.NoError(t, err)
		if i > 0 {
			assert.Equal(t, int64(33_333_333), ts-prev)
		}
		prev = ts
	}
}

func TestSampleTimeHz(t *testing.T) {
	got, err := SampleTimeHz(1_000, 100.0, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000+50_000_000), got)

	got, err = SampleTimeHz(0, 75.0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(13_333_333), got)
}

func TestSampleTimeHz_InvalidRate(t *testing.T) {
	for _, rate := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		_, err := SampleTimeHz(0, rate, 1)
		assert.ErrorIs(t, err, ErrConfig, "rate %v", rate)
	}
}
