package preprocessing

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/beatmap/objects"
	"github.com/Givikap120/danser-pp/framework/math/mutils"
)

const (
	NormalizedRadius        = 50.0
	CircleSizeBuffThreshold = 30.0
	MinDeltaTime            = 25
)

// ReadingObject is a visible object paired with the cumulative overlap difficulty up to it
type ReadingObject struct {
	HitObject   *DifficultyObject
	Overlapness float64
}

// DifficultyObject wraps a hit object with timing and spacing relative to its predecessors.
// All times are divided by the clock rate. It is never mutated after the chain is built.
type DifficultyObject struct {
	chain *[]*DifficultyObject
	Index int

	Diff *difficulty.Difficulty

	BaseObject objects.IHitObject

	IsSlider  bool
	IsSpinner bool

	lastObject     objects.IHitObject
	lastLastObject objects.IHitObject

	DeltaTime float64
	StartTime float64
	EndTime   float64

	// StrainTime is DeltaTime floored at MinDeltaTime
	StrainTime float64

	LazyJumpDistance    float64
	MinimumJumpDistance float64
	MinimumJumpTime     float64

	TravelDistance float64
	TravelTime     float64

	// Angle is NaN when there are less than two predecessors with a position
	Angle       float64
	AngleSigned float64

	// GreatWindow is the full width of the 300 window
	GreatWindow float64
	ClockRate   float64
	Preempt     float64

	FollowLineTime float64

	AnglePredictability float64

	ReadingObjects []ReadingObject

	// OverlapValues maps indices of visible previous objects to their overlap with this one
	OverlapValues map[int]float64
}

func NewDifficultyObject(hitObject, lastLastObject, lastObject objects.IHitObject, d *difficulty.Difficulty, chain *[]*DifficultyObject, index int) *DifficultyObject {
	obj := &DifficultyObject{
		chain:          chain,
		Index:          index,
		Diff:           d,
		BaseObject:     hitObject,
		lastObject:     lastObject,
		lastLastObject: lastLastObject,
		DeltaTime:      (hitObject.GetStartTime() - lastObject.GetStartTime()) / d.Speed,
		StartTime:      hitObject.GetStartTime() / d.Speed,
		EndTime:        hitObject.GetEndTime() / d.Speed,
		Angle:          math.NaN(),
		AngleSigned:    math.NaN(),
		GreatWindow:    2 * d.Hit300U / d.Speed,
		ClockRate:      d.Speed,
		Preempt:        d.PreemptU / d.Speed,
	}

	_, obj.IsSpinner = hitObject.(*objects.Spinner)
	_, obj.IsSlider = hitObject.(*LazySlider)

	obj.StrainTime = max(obj.DeltaTime, MinDeltaTime)

	obj.setDistances()

	if !hitObject.IsNewCombo() {
		obj.FollowLineTime = 800.0 / d.Speed
	}

	obj.AnglePredictability = obj.calculateAnglePredictability()
	obj.ReadingObjects, obj.OverlapValues = obj.getReadingObjects()

	return obj
}

// GetDoubletapness returns how likely the current and next objects are to be hit with a single tap, from 0 to 1
func (o *DifficultyObject) GetDoubletapness(next *DifficultyObject) float64 {
	if next == nil {
		return 0
	}

	currDeltaTime := max(1, o.DeltaTime)
	nextDeltaTime := max(1, next.DeltaTime)
	deltaDifference := math.Abs(nextDeltaTime - currDeltaTime)
	speedRatio := currDeltaTime / max(currDeltaTime, deltaDifference)
	windowRatio := math.Pow(min(1, currDeltaTime/o.GreatWindow), 2)

	return 1 - math.Pow(speedRatio, 1-windowRatio)
}

// OpacityAt returns the opacity of the object at the given chart time
func (o *DifficultyObject) OpacityAt(time float64) float64 {
	if time > o.BaseObject.GetStartTime() {
		return 0
	}

	fadeInStartTime := o.BaseObject.GetStartTime() - o.Diff.PreemptU
	fadeInDuration := o.Diff.TimeFadeIn

	fadeIn := mutils.Clamp((time-fadeInStartTime)/fadeInDuration, 0.0, 1.0)

	if o.Diff.CheckModActive(difficulty.Hidden) {
		fadeOutStartTime := fadeInStartTime + o.Diff.TimeFadeIn
		fadeOutDuration := o.Diff.PreemptU * 0.3

		return min(fadeIn, 1.0-mutils.Clamp((time-fadeOutStartTime)/fadeOutDuration, 0.0, 1.0))
	}

	return fadeIn
}

// Previous returns the object backwardsIndex+1 places before this one, or nil
func (o *DifficultyObject) Previous(backwardsIndex int) *DifficultyObject {
	index := o.Index - (backwardsIndex + 1)

	if index < 0 || index >= len(*o.chain) {
		return nil
	}

	return (*o.chain)[index]
}

// Next returns the object forwardsIndex+1 places after this one, or nil
func (o *DifficultyObject) Next(forwardsIndex int) *DifficultyObject {
	index := o.Index + (forwardsIndex + 1)

	if index >= len(*o.chain) {
		return nil
	}

	return (*o.chain)[index]
}

func (o *DifficultyObject) setDistances() {
	if currentSlider, ok := o.BaseObject.(*LazySlider); ok {
		// RepeatCount counts spans, so the first one is subtracted
		o.TravelDistance = float64(currentSlider.LazyTravelDistance) * math.Pow(1+float64(currentSlider.RepeatCount-1)/2.5, 1.0/2.5)
		o.TravelTime = max(currentSlider.LazyTravelTime/o.Diff.Speed, MinDeltaTime)
	}

	_, currentSpinner := o.BaseObject.(*objects.Spinner)
	_, lastSpinner := o.lastObject.(*objects.Spinner)

	if currentSpinner || lastSpinner {
		return
	}

	scalingFactor := float32(NormalizedRadius / o.Diff.CircleRadiusU)

	if o.Diff.CircleRadiusU < CircleSizeBuffThreshold {
		smallCircleBonus := min(CircleSizeBuffThreshold-o.Diff.CircleRadiusU, 5.0) / 50.0
		scalingFactor *= float32(1.0 + smallCircleBonus)
	}

	startPosition := o.BaseObject.GetStackedStartPositionMod(o.Diff)
	lastCursorPosition := getEndCursorPosition(o.lastObject, o.Diff)

	o.LazyJumpDistance = float64(startPosition.Mul(scalingFactor).Sub(lastCursorPosition.Mul(scalingFactor)).Len())
	o.MinimumJumpTime = o.StrainTime
	o.MinimumJumpDistance = o.LazyJumpDistance

	if lastSlider, ok := o.lastObject.(*LazySlider); ok {
		lastTravelTime := max(lastSlider.LazyTravelTime/o.Diff.Speed, MinDeltaTime)
		o.MinimumJumpTime = max(o.StrainTime-lastTravelTime, MinDeltaTime)

		// A player either cuts the slider short and jumps from the lazy end (anti-flow),
		// or follows it to the tail and jumps from there (flow). The shorter jump is assumed.
		tailJumpDistance := float64(lastSlider.GetStackedEndPositionMod(o.Diff).Sub(startPosition).Len() * scalingFactor)
		o.MinimumJumpDistance = max(0, min(o.LazyJumpDistance-(maximumSliderRadius-assumedSliderRadius), tailJumpDistance-maximumSliderRadius))
	}

	if o.lastLastObject == nil {
		return
	}

	if _, ok := o.lastLastObject.(*objects.Spinner); ok {
		return
	}

	lastLastCursorPosition := getEndCursorPosition(o.lastLastObject, o.Diff)

	v1 := lastLastCursorPosition.Sub(o.lastObject.GetStackedStartPositionMod(o.Diff))
	v2 := startPosition.Sub(lastCursorPosition)

	dot := float64(v1.Dot(v2))
	det := float64(v1[0]*v2[1] - v1[1]*v2[0])

	o.AngleSigned = math.Atan2(det, dot)
	o.Angle = math.Abs(o.AngleSigned)
}

func getEndCursorPosition(obj objects.IHitObject, d *difficulty.Difficulty) mgl32.Vec2 {
	if s, ok := obj.(*LazySlider); ok {
		return s.LazyEndPosition
	}

	return obj.GetStackedStartPositionMod(d)
}
