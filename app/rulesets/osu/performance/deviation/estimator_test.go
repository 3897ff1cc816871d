package deviation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func estimateUR(t *testing.T, counts []int, windows Windows) *float64 {
	t.Helper()

	ur, err := EstimateUnstableRate(context.Background(), counts, windows)
	require.NoError(t, err)

	return ur
}

func TestReferenceUnstableRate(t *testing.T) {
	counts := []int{11847, 0, 0, 0, 0, 0}

	nomod := estimateUR(t, counts, ManiaWindows(7, 1))
	require.NotNil(t, nomod)
	assert.InDelta(t, 39.0713, *nomod, 0.001)

	doubleTime := estimateUR(t, counts, ManiaWindows(7, 1.5))
	require.NotNil(t, doubleTime)
	assert.InDelta(t, 26.0475, *doubleTime, 0.001)
}

func TestStandardUnstableRate(t *testing.T) {
	windows := StandardWindows(9, 1)

	good := estimateUR(t, []int{1000, 10, 0, 0}, windows)
	bad := estimateUR(t, []int{900, 80, 15, 5}, windows)

	require.NotNil(t, good)
	require.NotNil(t, bad)

	assert.InDelta(t, 101.4617, *good, 0.01)
	assert.InDelta(t, 182.1162, *bad, 0.01)
}

func TestNullDeviation(t *testing.T) {
	cases := []struct {
		name    string
		counts  []int
		windows Windows
	}{
		{"nothing judged", []int{0, 0, 0, 0}, StandardWindows(8, 1)},
		{"single great", []int{1, 0, 0, 0}, StandardWindows(8, 1)},
		{"single miss", []int{0, 0, 0, 1}, StandardWindows(8, 1)},
		{"only untimed misses", []int{0, 0, 0, 25}, StandardWindows(8, 1)},
		{"single mania hit", []int{0, 0, 1, 0, 0, 0}, ManiaWindows(8, 1)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Nil(t, estimateUR(t, c.counts, c.windows))
		})
	}
}

func TestPathologicalEstimatesAreClamped(t *testing.T) {
	worst := estimateUR(t, []int{0, 0, 2, 0}, StandardWindows(8, 1))
	require.NotNil(t, worst)
	assert.LessOrEqual(t, *worst, 10000.0)
	assert.InDelta(t, 10000, *worst, 1e-9)

	allMiss := estimateUR(t, []int{0, 0, 0, 0, 0, 1000}, ManiaWindows(8, 1))
	require.NotNil(t, allMiss)
	assert.InDelta(t, 10000, *allMiss, 1e-9)

	perfect, err := Estimate(context.Background(), []int{5000, 0, 0, 0}, StandardWindows(10, 1))
	require.NoError(t, err)
	require.NotNil(t, perfect)
	assert.GreaterOrEqual(t, *perfect, MinDeviation)
}

func TestWorseCountsRaiseDeviation(t *testing.T) {
	windows := StandardWindows(8, 1)

	previous := 0.0
	for _, oks := range []int{0, 10, 50, 200} {
		ur := estimateUR(t, []int{1000 - oks, oks, 0, 0}, windows)
		require.NotNil(t, ur)

		assert.Greater(t, *ur, previous, oks)
		previous = *ur
	}
}

func TestRateScalesUnstableRate(t *testing.T) {
	counts := []int{700, 40, 3, 1}

	nomod := estimateUR(t, counts, StandardWindows(9, 1))
	halfTime := estimateUR(t, counts, StandardWindows(9, 0.75))

	assert.InDelta(t, *nomod/0.75, *halfTime, 1e-3)
}

func TestInvalidInput(t *testing.T) {
	ctx := context.Background()

	_, err := Estimate(ctx, []int{1, 2}, StandardWindows(8, 1))
	assert.ErrorIs(t, err, ErrInvalidCounts)

	_, err = Estimate(ctx, []int{1, -2, 0, 0}, StandardWindows(8, 1))
	assert.ErrorIs(t, err, ErrInvalidCounts)

	_, err = Estimate(ctx, []int{1, 2, 3}, Windows{Bounds: []float64{50, 20}})
	assert.ErrorIs(t, err, ErrInvalidWindows)

	_, err = Estimate(ctx, []int{1}, Windows{})
	assert.ErrorIs(t, err, ErrInvalidWindows)
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	deviation, err := Estimate(ctx, []int{11847, 0, 0, 0, 0, 0}, ManiaWindows(7, 1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, deviation)
}

func TestWindows(t *testing.T) {
	standard := StandardWindows(8, 1.5)
	assert.Equal(t, 4, standard.Categories())
	assert.False(t, standard.MissTimed)
	assert.InDelta(t, 32/1.5, standard.Bounds[0], 1e-9)
	assert.InDelta(t, 76/1.5, standard.Bounds[1], 1e-9)
	assert.InDelta(t, 120/1.5, standard.Bounds[2], 1e-9)

	mania := ManiaWindows(7, 1)
	assert.Equal(t, 6, mania.Categories())
	assert.True(t, mania.MissTimed)
	assert.Equal(t, []float64{16, 43, 76, 106, 130}, mania.Bounds)
}
