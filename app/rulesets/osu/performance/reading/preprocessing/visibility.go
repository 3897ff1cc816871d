package preprocessing

import (
	"math"

	"github.com/Givikap120/danser-pp/framework/math/mutils"
)

const (
	overlapAreaCoefficient = 0.85
	stackDistanceRatio     = 0.1414213562373
	opacityThreshold       = 0.3
)

// opacityMultiplier maps the opacity of this object at the time of loopObj onto a 0-1 readability curve.
// Objects above 70% opacity count as fully visible.
func (o *DifficultyObject) opacityMultiplier(loopObj *DifficultyObject) float64 {
	opacity := o.OpacityAt(loopObj.BaseObject.GetStartTime())

	opacity = math.Min(1, opacity+opacityThreshold) - opacityThreshold
	opacity /= 1 - opacityThreshold

	return math.Sqrt(opacity)
}

// timeDifference drops from 1 to 0 as the ratio of two intervals grows from 0.75 to 0.9
func timeDifference(timeA, timeB float64) float64 {
	longer := math.Max(timeA, timeB)
	if longer == 0 {
		return 0
	}

	similarity := math.Min(timeA, timeB) / longer

	switch {
	case similarity < 0.75:
		return 1
	case similarity > 0.9:
		return 0
	}

	return (math.Cos((similarity-0.75)*math.Pi/0.15) + 1) / 2
}

func angleSimilarity(angle1, angle2 float64) float64 {
	const threshold = math.Pi / 12

	difference := math.Abs(angle1 - angle2)
	if difference > threshold {
		return 0
	}

	return 1 - difference/threshold
}

// overlapness is the normalized intersection area of two circles, with a small extra bonus for perfect stacks
func overlapness(a, b *DifficultyObject) float64 {
	distance := float64(a.BaseObject.GetStackedStartPositionMod(a.Diff).Sub(b.BaseObject.GetStackedStartPositionMod(b.Diff)).Len())
	radius := a.Diff.CircleRadiusU

	if distance > radius*2 {
		return 0
	}

	radiusSqr := radius * radius

	sector := math.Acos(distance/(2*radius)) * radiusSqr
	triangle := distance * math.Sqrt(radiusSqr-distance*distance/4) / 2

	overlappingArea := (sector - triangle) * 2 / (math.Pi * radiusSqr)

	perfectStackBuff := math.Max(0, (stackDistanceRatio-distance/radius)/stackDistanceRatio)

	return overlappingArea*overlapAreaCoefficient + perfectStackBuff*(1-overlapAreaCoefficient)
}

// visibleObjects returns previous objects that are still on screen when o appears, most recent first
func (o *DifficultyObject) visibleObjects() []*DifficultyObject {
	visible := make([]*DifficultyObject, 0, 8)

	for i := 0; i < o.Index; i++ {
		prev := o.Previous(i)

		if prev == nil || prev.StartTime < o.StartTime-o.Preempt {
			break
		}

		visible = append(visible, prev)
	}

	return visible
}

func generalSimilarity(o1, o2 *DifficultyObject) float64 {
	if o1 == nil || o2 == nil {
		return 1
	}

	if math.IsNaN(o1.AngleSigned) || math.IsNaN(o2.AngleSigned) {
		if math.IsNaN(o1.AngleSigned) && math.IsNaN(o2.AngleSigned) {
			return 1
		}

		return 0
	}

	timeSimilarity := 1 - timeDifference(o1.StrainTime, o2.StrainTime)

	angleDelta := mutils.Clamp(math.Abs(o1.AngleSigned-o2.AngleSigned)-0.1, 0, 0.15)
	angleSimilarity := 1 - angleDelta/0.15

	distanceDelta := math.Abs(o1.LazyJumpDistance-o2.LazyJumpDistance) / NormalizedRadius
	distanceSimilarity := 1 / math.Max(1, distanceDelta)

	return timeSimilarity * angleSimilarity * distanceSimilarity
}

// getReadingObjects walks visible objects backwards accumulating overlap difficulty.
// Overlaps that repeat a previously seen rhythm and angle are reduced.
func (o *DifficultyObject) getReadingObjects() ([]ReadingObject, map[int]float64) {
	totalOverlapness := 0.0
	currentTime := o.DeltaTime

	historicTimes := make([]float64, 0)
	historicAngles := make([]float64, 0)

	prevObject := o

	visible := o.visibleObjects()

	readingObjects := make([]ReadingObject, 0, len(visible))
	overlapValues := make(map[int]float64)

	for _, loopObj := range visible {
		currentOverlapness := overlapness(o, loopObj)

		if currentOverlapness > 0 {
			overlapValues[loopObj.Index] = currentOverlapness
		}

		if math.IsNaN(prevObject.Angle) {
			currentTime += prevObject.DeltaTime
			continue
		}

		// order is reversed, so this is the angle at the later object
		angle := prevObject.Angle

		// streams overlap their direct neighbour and get no buff
		instantOverlapness := prevObject.OverlapValues[loopObj.Index]

		// 2 on wide angles, 1 on acute ones
		angleFactor := 1 + (-math.Cos(angle)+1)/2
		instantOverlapness = math.Min(1, (0.5+instantOverlapness)*angleFactor)

		currentOverlapness *= (1 - instantOverlapness) * 2

		if currentOverlapness > 0 {
			currentOverlapness *= o.opacityMultiplier(loopObj)
			currentOverlapness = repetitionAdjustedOverlap(currentOverlapness, currentTime, angle, loopObj, prevObject, historicTimes, historicAngles)

			historicTimes = append(historicTimes, currentTime)
			historicAngles = append(historicAngles, angle)

			currentTime = prevObject.DeltaTime
		} else {
			currentTime += prevObject.DeltaTime
		}

		totalOverlapness += currentOverlapness

		readingObjects = append(readingObjects, ReadingObject{
			HitObject:   loopObj,
			Overlapness: totalOverlapness,
		})

		prevObject = loopObj
	}

	return readingObjects, overlapValues
}

// repetitionAdjustedOverlap returns the smallest overlap obtainable by matching the current
// interval against every cumulative run of previous overlap intervals.
func repetitionAdjustedOverlap(overlap, currentTime, angle float64, loopObj, prevObject *DifficultyObject, historicTimes, historicAngles []float64) float64 {
	minOverlap := overlap
	cumulativeWithCurrent := currentTime

	rhythmSimilarity := 1 - timeDifference(loopObj.StrainTime, prevObject.StrainTime)

	for i := len(historicTimes) - 1; i >= 0; i-- {
		cumulativeWithoutCurrent := 0.0

		for j := i; j >= 0; j-- {
			cumulativeWithoutCurrent += historicTimes[j]

			anglePenalty := 1 - angleSimilarity(angle, historicAngles[j])*rhythmSimilarity

			minOverlap = math.Min(minOverlap, overlap*timeDifference(cumulativeWithCurrent, cumulativeWithoutCurrent)*anglePenalty)
			minOverlap = math.Min(minOverlap, overlap*timeDifference(currentTime, cumulativeWithoutCurrent)*anglePenalty)

			// later runs are only longer
			if cumulativeWithoutCurrent >= cumulativeWithCurrent {
				break
			}
		}

		cumulativeWithCurrent += historicTimes[i]
	}

	return minOverlap
}

// calculateAnglePredictability returns 1 for a fully predictable angle and falls towards 0
// as the angle deviates from the recent pattern.
func (o *DifficultyObject) calculateAnglePredictability() float64 {
	prev0 := o.Previous(0)
	prev1 := o.Previous(1)
	prev2 := o.Previous(2)

	if math.IsNaN(o.Angle) || prev0 == nil || math.IsNaN(prev0.Angle) {
		return 1
	}

	angleDifference := math.Abs(prev0.Angle - o.Angle)

	// angles barely matter on very low spacing
	if prev0.LazyJumpDistance < NormalizedRadius {
		angleDifference *= math.Pow(prev0.LazyJumpDistance/NormalizedRadius, 2)
	}

	if o.LazyJumpDistance < NormalizedRadius {
		angleDifference *= math.Pow(o.LazyJumpDistance/NormalizedRadius, 2)
	}

	angleDifferencePrev := 0.0
	zeroAngleFactor := 1.0

	// alternating angles
	if prev1 != nil && prev2 != nil && !math.IsNaN(prev1.Angle) {
		angleDifferencePrev = math.Abs(prev1.Angle - o.Angle)
		zeroAngleFactor = math.Pow(1-math.Min(o.Angle, prev0.Angle)/math.Pi, 10)
	}

	rescaleFactor := math.Pow(1-angleDifferencePrev/math.Pi, 5)

	// 0 on a different rhythm, 1 on the same one
	rhythmFactor := 1 - timeDifference(o.StrainTime, prev0.StrainTime)

	if prev1 != nil {
		rhythmFactor *= 1 - timeDifference(prev0.StrainTime, prev1.StrainTime)
	}

	if prev1 != nil && prev2 != nil {
		rhythmFactor *= 1 - timeDifference(prev1.StrainTime, prev2.StrainTime)
	}

	prevAngleAdjust := math.Max(angleDifference-angleDifferencePrev, 0) * rescaleFactor * rhythmFactor * zeroAngleFactor

	angleDifference -= prevAngleAdjust

	prev3 := o.Previous(3)
	prev4 := o.Previous(4)
	prev5 := o.Previous(5)

	// patterns repeating every 3 or 4 objects
	similarity3 := generalSimilarity(o, prev2) * generalSimilarity(prev0, prev3) * generalSimilarity(prev1, prev4)
	similarity4 := generalSimilarity(o, prev3) * generalSimilarity(prev0, prev4) * generalSimilarity(prev1, prev5)

	// wide angles are read as a straight line
	wideness := 0.0
	if o.Angle > math.Pi*0.5 {
		wideness = (o.Angle/math.Pi - 0.5) * 2
		wideness = 1 - math.Pow(1-wideness, 3)
	}

	angleDifference /= 1 + wideness

	// differences above 15 degrees get no penalty
	adjustedAngleDifference := math.Min(math.Pi/12, angleDifference)
	predictability := math.Cos(math.Min(math.Pi/2, 6*adjustedAngleDifference)) * rhythmFactor

	return 1 - (1-predictability)*(1-math.Max(similarity3, similarity4))
}
