package evaluators

import (
	"math"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/preprocessing"
	"github.com/Givikap120/danser-pp/framework/math/mutils"
)

const (
	singleSpacingThreshold = 125.0
	minSpeedBonus          = 75.0 // ~200BPM
	speedBalancingFactor   = 40.0
	distanceMultiplier     = 0.94
)

// EvaluateSpeed returns the tapping difficulty of current
func EvaluateSpeed(current *preprocessing.DifficultyObject) float64 {
	if current.Index == 0 || current.IsSpinner {
		return 0
	}

	prev := current.Previous(0)
	next := current.Next(0)

	strainTime := current.StrainTime
	doubletapness := 1.0 - current.GetDoubletapness(next)

	// cap the delta to the great window so 260bpm OD8 streams aren't nerfed harshly
	strainTime /= mutils.Clamp((strainTime/current.GreatWindow)/0.93, 0.92, 1)

	speedBonus := 0.0
	if strainTime < minSpeedBonus {
		speedBonus = 0.75 * math.Pow((minSpeedBonus-strainTime)/speedBalancingFactor, 2)
	}

	travelDistance := 0.0
	if prev != nil {
		travelDistance = prev.TravelDistance
	}

	distance := math.Min(travelDistance+current.MinimumJumpDistance, singleSpacingThreshold)

	distanceBonus := math.Pow(distance/singleSpacingThreshold, 3.95) * distanceMultiplier

	if current.Diff.CheckModActive(difficulty.Autopilot) {
		distanceBonus = 0
	}

	return (1 + speedBonus + distanceBonus) * 1000 / strainTime * doubletapness
}
