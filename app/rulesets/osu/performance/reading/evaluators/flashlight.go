package evaluators

import (
	"math"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/preprocessing"
)

const (
	flashlightHistoryObjects   = 10
	maxOpacityBonus            = 0.4
	hiddenBonus                = 0.2
	minVelocity                = 0.5
	flashlightSliderMultiplier = 1.3
	minAngleMultiplier         = 0.2
)

// EvaluateFlashlight returns the memory difficulty of current, based on the distance to
// the previous objects weighted by how long ago they were hit.
func EvaluateFlashlight(current *preprocessing.DifficultyObject) float64 {
	if current.Index == 0 || current.IsSpinner {
		return 0
	}

	d := current.Diff
	hidden := d.CheckModActive(difficulty.Hidden)

	scalingFactor := 52.0 / d.CircleRadiusU
	smallDistNerf := 1.0
	cumulativeStrainTime := 0.0

	result := 0.0
	angleRepeatCount := 0.0

	position := current.BaseObject.GetStackedStartPositionMod(d)
	lastObj := current

	for i := 0; i < min(current.Index, flashlightHistoryObjects); i++ {
		currentObj := current.Previous(i)

		cumulativeStrainTime += lastObj.StrainTime

		if !currentObj.IsSpinner {
			jumpDistance := float64(position.Sub(currentObj.BaseObject.GetStackedEndPositionMod(d)).Len())

			// objects inside the flashlight radius are easy to see
			if i == 0 {
				smallDistNerf = math.Min(1.0, jumpDistance/75.0)
			}

			// only the first object of a stack counts
			stackNerf := math.Min(1.0, (currentObj.LazyJumpDistance/scalingFactor)/25.0)

			opacityBonus := 1.0 + maxOpacityBonus*(1.0-current.OpacityAt(currentObj.BaseObject.GetStartTime()))

			result += stackNerf * opacityBonus * scalingFactor * jumpDistance / cumulativeStrainTime

			if !math.IsNaN(currentObj.Angle) && !math.IsNaN(current.Angle) && math.Abs(currentObj.Angle-current.Angle) < 0.02 {
				angleRepeatCount += math.Max(1.0-0.1*float64(i), 0.0)
			}
		}

		lastObj = currentObj
	}

	result = math.Pow(smallDistNerf*result, 2.0)

	// no approach circles
	if hidden {
		result *= 1.0 + hiddenBonus
	}

	result *= minAngleMultiplier + (1.0-minAngleMultiplier)/(angleRepeatCount+1.0)

	if slider, ok := current.BaseObject.(*preprocessing.LazySlider); ok {
		pixelTravelDistance := float64(slider.LazyTravelDistance) / scalingFactor

		sliderBonus := math.Pow(math.Max(0.0, pixelTravelDistance/current.TravelTime-minVelocity), 0.5)

		// longer sliders need more memorisation, repeats need less
		sliderBonus *= pixelTravelDistance
		sliderBonus /= float64(slider.RepeatCount)

		result += sliderBonus * flashlightSliderMultiplier
	}

	return result
}
