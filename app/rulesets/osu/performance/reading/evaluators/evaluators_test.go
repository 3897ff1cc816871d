package evaluators

import (
	"context"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/beatmap/objects"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/preprocessing"
)

const mechanicalPPPower = 0.6

func newDiff(mods difficulty.Modifier) *difficulty.Difficulty {
	d := difficulty.NewDifficulty(5, 4, 8, 9)
	d.SetMods(mods)

	return d
}

// zigzag builds circles alternating between two columns with the given gaps
func zigzag(t *testing.T, d *difficulty.Difficulty, spacing float32, gaps ...float64) []*preprocessing.DifficultyObject {
	t.Helper()

	hitObjects := make([]objects.IHitObject, 0, len(gaps)+1)

	time := 1000.0
	for i := 0; i <= len(gaps); i++ {
		x := float32(200)
		if i%2 == 1 {
			x += spacing
		}

		hitObjects = append(hitObjects, objects.NewCircle(time, mgl32.Vec2{x, 150 + float32(i%3)*10}))

		if i < len(gaps) {
			time += gaps[i]
		}
	}

	diffObjects, err := preprocessing.CreateDifficultyObjects(context.Background(), hitObjects, d)
	require.NoError(t, err)

	return diffObjects
}

func repeat(gap float64, n int) []float64 {
	gaps := make([]float64, n)
	for i := range gaps {
		gaps[i] = gap
	}

	return gaps
}

func TestFirstObjectContributesNothing(t *testing.T) {
	d := newDiff(difficulty.Hidden | difficulty.Flashlight)
	first := zigzag(t, d, 150, repeat(150, 8)...)[0]

	evaluations := map[string]float64{
		"aim":            EvaluateAim(first, true),
		"aim no sliders": EvaluateAim(first, false),
		"speed":          EvaluateSpeed(first),
		"rhythm":         EvaluateRhythm(first),
		"flashlight":     EvaluateFlashlight(first),
		"low ar":         EvaluateReadingLowARDifficultyOf(first),
		"hidden":         EvaluateHiddenDifficultyOf(first),
		"high ar":        EvaluateHighARDifficultyOf(first, true, mechanicalPPPower),
		"inpredictable":  EvaluateInpredictabilityOf(first),
	}

	for name, value := range evaluations {
		assert.Zero(t, value, name)
	}
}

func TestSpinnersContributeNothing(t *testing.T) {
	d := newDiff(0)

	hitObjects := []objects.IHitObject{
		objects.NewCircle(0, mgl32.Vec2{100, 100}),
		objects.NewCircle(200, mgl32.Vec2{300, 100}),
		objects.NewSpinner(400, 2000),
	}

	diffObjects, err := preprocessing.CreateDifficultyObjects(context.Background(), hitObjects, d)
	require.NoError(t, err)

	spinner := diffObjects[1]
	require.True(t, spinner.IsSpinner)

	assert.Zero(t, EvaluateAim(spinner, true))
	assert.Zero(t, EvaluateSpeed(spinner))
	assert.Zero(t, EvaluateRhythm(spinner))
	assert.Zero(t, EvaluateFlashlight(spinner))
}

func TestAimGrowsWithSpacing(t *testing.T) {
	d := newDiff(0)

	small := zigzag(t, d, 80, repeat(200, 8)...)
	big := zigzag(t, d, 240, repeat(200, 8)...)

	for i := 1; i < len(small); i++ {
		assert.Greater(t, EvaluateAim(big[i], true), EvaluateAim(small[i], true), i)
	}
}

func TestAimGrowsWithTempo(t *testing.T) {
	d := newDiff(0)

	slow := zigzag(t, d, 150, repeat(300, 8)...)
	fast := zigzag(t, d, 150, repeat(150, 8)...)

	assert.Greater(t, EvaluateAim(fast[5], true), EvaluateAim(slow[5], true))
}

func TestSpeedGrowsWithTempo(t *testing.T) {
	d := newDiff(0)

	slow := zigzag(t, d, 60, repeat(150, 8)...)
	fast := zigzag(t, d, 60, repeat(75, 8)...)

	assert.Greater(t, EvaluateSpeed(fast[4]), EvaluateSpeed(slow[4]))
}

func TestSpeedAutopilotIgnoresSpacing(t *testing.T) {
	spaced := zigzag(t, newDiff(0), 150, repeat(100, 8)...)
	autopilot := zigzag(t, newDiff(difficulty.Autopilot), 150, repeat(100, 8)...)

	assert.Greater(t, EvaluateSpeed(spaced[4]), EvaluateSpeed(autopilot[4]))
}

func TestRhythm(t *testing.T) {
	d := newDiff(0)

	steady := zigzag(t, d, 60, repeat(100, 16)...)
	assert.Equal(t, 1.0, EvaluateRhythm(steady[15]))

	gaps := make([]float64, 16)
	for i := range gaps {
		gaps[i] = 200
		if i%2 == 1 {
			gaps[i] = 100
		}
	}

	uneven := zigzag(t, d, 60, gaps...)
	assert.Greater(t, EvaluateRhythm(uneven[15]), 1.0)
}

func TestFlashlightHiddenBonus(t *testing.T) {
	plain := zigzag(t, newDiff(difficulty.Flashlight), 150, repeat(200, 8)...)
	hidden := zigzag(t, newDiff(difficulty.Flashlight|difficulty.Hidden), 150, repeat(200, 8)...)

	assert.Greater(t, EvaluateFlashlight(plain[5]), 0.0)
	assert.Greater(t, EvaluateFlashlight(hidden[5]), EvaluateFlashlight(plain[5]))
}

func TestHighARScalingIsContinuous(t *testing.T) {
	below := GetHighARScaling(374.999, 1)
	above := GetHighARScaling(375.001, 1)

	assert.InDelta(t, below, above, 1e-3)
	assert.Greater(t, GetHighARScaling(300, mechanicalPPPower), GetHighARScaling(450, mechanicalPPPower))
}

func TestOverlapAt(t *testing.T) {
	chain := zigzag(t, newDiff(0), 60, repeat(100, 4)...)

	readingObjects := []preprocessing.ReadingObject{
		{HitObject: chain[3], Overlapness: 0.1},
		{HitObject: chain[2], Overlapness: 0.3},
		{HitObject: chain[1], Overlapness: 0.6},
	}

	assert.Zero(t, overlapAt(readingObjects, chain[3].StartTime+1))
	assert.Equal(t, 0.1, overlapAt(readingObjects, chain[3].StartTime))
	assert.Equal(t, 0.3, overlapAt(readingObjects, chain[2].StartTime-1))
	assert.Equal(t, 0.6, overlapAt(readingObjects, 0))
	assert.Zero(t, overlapAt(nil, 0))
}

func TestReadingValuesAreFinite(t *testing.T) {
	d := newDiff(difficulty.Hidden)
	d.SetCustomSpeed(0.5)

	chain := zigzag(t, d, 40, repeat(120, 24)...)

	for _, o := range chain {
		values := []float64{
			EvaluateReadingLowARDifficultyOf(o),
			EvaluateHiddenDifficultyOf(o),
			EvaluateHighARDifficultyOf(o, true, mechanicalPPPower),
			EvaluateAimingDensityFactorOf(o),
		}

		for _, v := range values {
			assert.False(t, math.IsNaN(v), "NaN at %d", o.Index)
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
}
