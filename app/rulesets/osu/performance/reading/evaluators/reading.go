package evaluators

import (
	"math"
	"slices"
	"sort"

	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/preprocessing"
	"github.com/Givikap120/danser-pp/framework/math/mutils"
)

const (
	readingWindowSize = 3000.0
	overlapMultiplier = 1.0
)

// EvaluateReadingLowARDifficultyOf returns the difficulty of reading many objects on screen at once
func EvaluateReadingLowARDifficultyOf(current *preprocessing.DifficultyObject) float64 {
	if current.Index == 0 || current.IsSpinner {
		return 0
	}

	density := math.Max(1, EvaluateDensityOf(current, true, true, 1.0))
	difficulty := math.Pow(4*math.Log(density), 2.5)

	difficulty += EvaluateOverlapDifficultyOf(current) * difficulty

	return difficulty
}

// EvaluateHiddenDifficultyOf returns a multiplier for aim difficulty when approach circles and bodies fade out
func EvaluateHiddenDifficultyOf(current *preprocessing.DifficultyObject) float64 {
	if current.Index == 0 || current.IsSpinner {
		return 0
	}

	density := EvaluateDensityOf(current, false, false, 1.0)
	preempt := current.Preempt / 1000

	densityFactor := math.Pow(density/6.2, 1.5)

	invisibilityFactor := 0.0

	// AR11 with DT and faster get nothing unless density is high.
	// Otherwise growth accelerates until around AR0 and triples from AR5 on.
	if preempt >= 0.2 {
		invisibilityFactor = math.Min(math.Pow(preempt*2.4-0.2, 5), math.Max(preempt, preempt*3-2.4))
	}

	hdDifficulty := invisibilityFactor + densityFactor

	// at most x1.1
	hdDifficulty *= 0.96 + 0.1*EvaluateInpredictabilityOf(current)

	return hdDifficulty
}

// EvaluateHighARDifficultyOf returns the high AR scaling of current.
// With applyAdjust the value also grows with how unpredictable the object is.
func EvaluateHighARDifficultyOf(current *preprocessing.DifficultyObject, applyAdjust bool, mechanicalPPPower float64) float64 {
	if current.Index == 0 || current.IsSpinner {
		return 0
	}

	result := GetHighARScaling(current.Preempt, mechanicalPPPower)

	if applyAdjust {
		inpredictability := EvaluateInpredictabilityOf(current)

		// objects outside of a new combo have a follow line to look at
		inpredictability *= 1 + 0.1*(800-current.FollowLineTime)/800

		result *= 0.98 + 0.6*inpredictability
	}

	return result
}

// GetHighARScaling maps rate adjusted preempt (ms) to the high AR bonus in mechanical difficulty units
func GetHighARScaling(preempt, mechanicalPPPower float64) float64 {
	preempt /= 1000

	var value float64

	if preempt < 0.375 {
		// continuous with the exponential part at AR10.5
		value = 0.63 * math.Pow(8-20*preempt, 2.0/3)
	} else {
		value = math.Exp(9.07583 - 80.0*preempt/3)
	}

	return math.Pow(value, 1.0/mechanicalPPPower)
}

// EvaluateDensityOf sums the visibility of objects on screen while current is being read
func EvaluateDensityOf(current *preprocessing.DifficultyObject, applyDistanceNerf, applySliderbodyDensity bool, angleNerfMultiplier float64) float64 {
	density := 0.0
	densityAnglesNerf := -2.0

	prevObj := current

	readingObjects := current.ReadingObjects

	for i, readingObject := range readingObjects {
		loopObj := readingObject.HitObject

		// the first object of the chart has no history
		if loopObj.Index < 1 {
			continue
		}

		loopDifficulty := current.OpacityAt(loopObj.BaseObject.GetStartTime())

		if applyDistanceNerf {
			loopDifficulty *= (mutils.Logistic(loopObj.MinimumJumpDistance, 80, 0.1, 1) + 0.2) / 1.2
		}

		if slider, ok := current.BaseObject.(*preprocessing.LazySlider); ok && applySliderbodyDensity {
			sliderBodyLength := math.Max(1, float64(slider.GetLength())/current.Diff.CircleRadiusU)
			sliderBodyLength = math.Min(sliderBodyLength, 1+float64(slider.LazyTravelDistance/8))

			maxBuff := 0.5
			if i > 0 {
				maxBuff += 1
			}

			if i < len(readingObjects)-1 {
				maxBuff += 1
			}

			loopDifficulty *= 1 + 1.5*math.Min(math.Log10(sliderBodyLength), maxBuff)
		}

		loopDifficulty *= timeNerfFactor(current.StartTime - loopObj.StartTime)

		if loopObj.StrainTime > prevObj.StrainTime {
			rhythmSimilarity := mutils.Clamp(1-rhythmDifference(loopObj.StrainTime, prevObj.StrainTime), 0.5, 0.75)
			loopDifficulty *= 4 * (rhythmSimilarity - 0.5)
		}

		density += loopDifficulty

		angleNerf := loopObj.AnglePredictability/2 + 0.5
		densityAnglesNerf += angleNerf * loopDifficulty * angleNerfMultiplier

		prevObj = loopObj
	}

	return density - math.Max(0, densityAnglesNerf)
}

// EvaluateOverlapDifficultyOf rewards objects that are covered by other visible objects
func EvaluateOverlapDifficultyOf(current *preprocessing.DifficultyObject) float64 {
	if len(current.ReadingObjects) == 0 {
		return 0
	}

	targetStartTime := current.StartTime - current.Preempt

	overlapDifficulties := make([]preprocessing.ReadingObject, 0, len(current.ReadingObjects))

	for _, readingObject := range current.ReadingObjects {
		loopObj := readingObject.HitObject

		if len(loopObj.ReadingObjects) == 0 {
			continue
		}

		if overlapness := overlapAt(loopObj.ReadingObjects, targetStartTime); overlapness > 0 {
			overlapDifficulties = append(overlapDifficulties, preprocessing.ReadingObject{HitObject: loopObj, Overlapness: overlapness})
		}
	}

	if len(overlapDifficulties) == 0 {
		return 0
	}

	slices.SortStableFunc(overlapDifficulties, func(a, b preprocessing.ReadingObject) int {
		switch {
		case a.Overlapness > b.Overlapness:
			return -1
		case a.Overlapness < b.Overlapness:
			return 1
		}

		return 0
	})

	// easier notes in the same place as harder ones are nerfed
	for i := range overlapDifficulties {
		harder := overlapDifficulties[i].HitObject

		for j := i + 1; j < len(overlapDifficulties); j++ {
			easier := &overlapDifficulties[j]

			var overlapValue float64
			if harder.Index > easier.HitObject.Index {
				overlapValue = harder.OverlapValues[easier.HitObject.Index]
			} else {
				overlapValue = easier.HitObject.OverlapValues[harder.Index]
			}

			easier.Overlapness *= math.Pow(1-overlapValue, 2)
		}
	}

	const decayWeight = 0.5
	const threshold = 0.6

	screenOverlapDifficulty := 0.0
	weight := 1.0

	for _, o := range overlapDifficulties {
		if o.Overlapness > threshold {
			screenOverlapDifficulty += (o.Overlapness - threshold) * weight
			weight *= decayWeight
		}
	}

	return overlapMultiplier * screenOverlapDifficulty
}

// EvaluateAimingDensityFactorOf returns how much high density makes aiming harder
func EvaluateAimingDensityFactorOf(current *preprocessing.DifficultyObject) float64 {
	difficulty := EvaluateDensityOf(current, true, false, 0.5)

	return math.Max(0, math.Pow(difficulty, 1.37)-1)
}

// EvaluateInpredictabilityOf combines velocity, angle and rhythm changes into a 0-1 unpredictability value
func EvaluateInpredictabilityOf(current *preprocessing.DifficultyObject) float64 {
	const (
		velocityChangePart = 0.8
		angleChangePart    = 0.1
		rhythmChangePart   = 0.1
	)

	if current.IsSpinner || current.Index == 0 {
		return 0
	}

	last := current.Previous(0)
	if last.IsSpinner {
		return 0
	}

	rhythmSimilarity := mutils.Clamp(1-rhythmDifference(current.StrainTime, last.StrainTime), 0.5, 0.75)
	rhythmSimilarity = 4 * (rhythmSimilarity - 0.5)

	velocityChangeBonus := velocityChangeFactor(current, last) * rhythmSimilarity

	currVelocity := current.LazyJumpDistance / current.StrainTime
	prevVelocity := last.LazyJumpDistance / last.StrainTime

	angleChangeBonus := 0.0
	if !math.IsNaN(current.Angle) && !math.IsNaN(last.Angle) && currVelocity > 0 && prevVelocity > 0 {
		angleChangeBonus = 1 - current.AnglePredictability
		// slow down to cheese angle changes
		angleChangeBonus *= math.Min(currVelocity, prevVelocity) / math.Max(currVelocity, prevVelocity)
	}

	angleChangeBonus *= rhythmSimilarity

	rhythmChangeBonus := 0.0

	if current.Index > 1 {
		lastLast := current.Previous(1)

		currDelta := current.StrainTime
		lastDelta := last.StrainTime

		if last.IsSlider {
			currDelta = math.Max(0, currDelta-last.BaseObject.GetDuration()/current.ClockRate)
		}

		if lastLast.IsSlider {
			lastDelta = math.Max(0, lastDelta-lastLast.BaseObject.GetDuration()/last.ClockRate)
		}

		rhythmChangeBonus = rhythmDifference(currDelta, lastDelta)
	}

	return velocityChangePart*velocityChangeBonus + angleChangePart*angleChangeBonus + rhythmChangePart*rhythmChangeBonus
}

func velocityChangeFactor(current, last *preprocessing.DifficultyObject) float64 {
	currVelocity := current.LazyJumpDistance / current.StrainTime
	prevVelocity := last.LazyJumpDistance / last.StrainTime

	if currVelocity <= 0 && prevVelocity <= 0 {
		return 0
	}

	velocityChange := math.Max(0, math.Min(
		math.Abs(prevVelocity-currVelocity)-0.5*math.Min(currVelocity, prevVelocity),
		math.Max(current.Diff.CircleRadiusU/math.Max(current.StrainTime, last.StrainTime), math.Min(currVelocity, prevVelocity)),
	))

	// max is 0.4
	return velocityChange / math.Max(currVelocity, prevVelocity) / 0.4
}

func timeNerfFactor(deltaTime float64) float64 {
	return mutils.Clamp(2.0-deltaTime/(readingWindowSize/2), 0.0, 1.0)
}

func rhythmDifference(t1, t2 float64) float64 {
	longer := math.Max(t1, t2)
	if longer == 0 {
		return 0
	}

	return 1 - math.Min(t1, t2)/longer
}

// overlapAt returns the cumulative overlapness of the oldest reading object still visible at target.
// Reading objects are ordered from the most recent one backwards.
func overlapAt(readingObjects []preprocessing.ReadingObject, target float64) float64 {
	idx := sort.Search(len(readingObjects), func(i int) bool {
		return readingObjects[i].HitObject.StartTime < target
	})

	if idx == 0 {
		return 0
	}

	return readingObjects[idx-1].Overlapness
}
