package objects

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
)

// PlayfieldHeight is used to flip objects vertically with HardRock
const PlayfieldHeight = 384.0

// IHitObject is the read-only view of a hit object handed over by the chart importer.
type IHitObject interface {
	GetStartTime() float64
	GetEndTime() float64
	GetDuration() float64

	GetStartPosition() mgl32.Vec2
	GetEndPosition() mgl32.Vec2

	GetStackIndex() int64

	GetStackedStartPositionMod(d *difficulty.Difficulty) mgl32.Vec2
	GetStackedEndPositionMod(d *difficulty.Difficulty) mgl32.Vec2

	IsNewCombo() bool
}

type HitObject struct {
	StartTime float64
	EndTime   float64

	StartPosition mgl32.Vec2
	EndPosition   mgl32.Vec2

	StackIndex int64
	NewCombo   bool
}

func (o *HitObject) GetStartTime() float64 { return o.StartTime }
func (o *HitObject) GetEndTime() float64   { return o.EndTime }
func (o *HitObject) GetDuration() float64  { return o.EndTime - o.StartTime }

func (o *HitObject) GetStartPosition() mgl32.Vec2 { return o.StartPosition }
func (o *HitObject) GetEndPosition() mgl32.Vec2   { return o.EndPosition }

func (o *HitObject) GetStackIndex() int64 { return o.StackIndex }
func (o *HitObject) IsNewCombo() bool     { return o.NewCombo }

func (o *HitObject) GetStackedStartPositionMod(d *difficulty.Difficulty) mgl32.Vec2 {
	return StackedPosition(o.StartPosition, o.StackIndex, d)
}

func (o *HitObject) GetStackedEndPositionMod(d *difficulty.Difficulty) mgl32.Vec2 {
	return StackedPosition(o.EndPosition, o.StackIndex, d)
}

// StackedPosition applies HardRock flip and stack offset to a playfield position
func StackedPosition(pos mgl32.Vec2, stackIndex int64, d *difficulty.Difficulty) mgl32.Vec2 {
	if d.CheckModActive(difficulty.HardRock) {
		pos[1] = PlayfieldHeight - pos[1]
	}

	offset := float32(stackIndex) * float32(d.CircleRadiusU) * -0.1

	return pos.Add(mgl32.Vec2{offset, offset})
}

type Circle struct {
	HitObject
}

func NewCircle(time float64, pos mgl32.Vec2) *Circle {
	return &Circle{
		HitObject: HitObject{
			StartTime:     time,
			EndTime:       time,
			StartPosition: pos,
			EndPosition:   pos,
		},
	}
}

type Spinner struct {
	HitObject
}

func NewSpinner(startTime, endTime float64) *Spinner {
	center := mgl32.Vec2{256, 192}

	return &Spinner{
		HitObject: HitObject{
			StartTime:     startTime,
			EndTime:       endTime,
			StartPosition: center,
			EndPosition:   center,
		},
	}
}
