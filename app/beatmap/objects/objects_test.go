package objects

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
)

func straightSlider(repeats int, tickInterval float64) *Slider {
	return NewSlider(1000, 1000+600*float64(repeats), []mgl32.Vec2{{100, 100}, {200, 100}, {300, 100}}, repeats, tickInterval)
}

func assertVec(t *testing.T, expected, actual mgl32.Vec2) {
	t.Helper()

	assert.InDelta(t, expected.X(), actual.X(), 1e-3)
	assert.InDelta(t, expected.Y(), actual.Y(), 1e-3)
}

func TestSliderGeometry(t *testing.T) {
	s := straightSlider(1, 0)

	assert.InDelta(t, 200, s.PixelLength, 1e-4)
	assert.Equal(t, mgl32.Vec2{100, 100}, s.StartPosition)
	assert.Equal(t, mgl32.Vec2{300, 100}, s.EndPosition)
	assertVec(t, mgl32.Vec2{150, 100}, s.PositionAtProgress(0.25))
	assertVec(t, mgl32.Vec2{200, 100}, s.PositionAt(1300))
}

func TestSliderRepeatsEndAtStart(t *testing.T) {
	s := straightSlider(2, 0)

	assert.Equal(t, mgl32.Vec2{100, 100}, s.EndPosition)
	assertVec(t, mgl32.Vec2{300, 100}, s.PositionAt(1600))
	assertVec(t, mgl32.Vec2{200, 100}, s.PositionAt(1900))
	assertVec(t, mgl32.Vec2{100, 100}, s.PositionAt(5000))
}

func TestSliderScorePoints(t *testing.T) {
	s := straightSlider(2, 200)

	kinds := make([]ScorePointKind, 0, len(s.ScorePoints))
	for _, p := range s.ScorePoints {
		kinds = append(kinds, p.Kind)
	}

	// two ticks per span, a repeat between spans, a tail at the end
	require.Equal(t, []ScorePointKind{Tick, Tick, Repeat, Tick, Tick, Tail}, kinds)

	assert.Equal(t, 1200.0, s.ScorePoints[0].Time)
	assert.Equal(t, 1600.0, s.ScorePoints[2].Time)
	assertVec(t, mgl32.Vec2{233.33333, 100}, s.ScorePoints[3].Pos)
	assert.Equal(t, 2200.0, s.ScorePoints[5].Time)

	for i := 1; i < len(s.ScorePoints); i++ {
		assert.LessOrEqual(t, s.ScorePoints[i-1].Time, s.ScorePoints[i].Time)
	}
}

func TestStackedPosition(t *testing.T) {
	d := difficulty.NewDifficulty(5, 4, 8, 9)

	c := NewCircle(0, mgl32.Vec2{100, 100})
	c.StackIndex = 2

	offset := float32(2 * d.CircleRadiusU * -0.1)
	assertVec(t, mgl32.Vec2{100 + offset, 100 + offset}, c.GetStackedStartPositionMod(d))

	d.SetMods(difficulty.HardRock)
	offset = float32(2 * d.CircleRadiusU * -0.1)
	assertVec(t, mgl32.Vec2{100 + offset, 284 + offset}, c.GetStackedStartPositionMod(d))
}

func TestSpinner(t *testing.T) {
	s := NewSpinner(100, 2100)

	assert.Equal(t, 2000.0, s.GetDuration())
	assert.Equal(t, s.GetStartPosition(), s.GetEndPosition())
}
