package evaluators

import (
	"math"

	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/preprocessing"
	"github.com/Givikap120/danser-pp/framework/math/mutils"
)

const (
	wideAngleMultiplier      = 1.5
	acuteAngleMultiplier     = 1.95
	sliderMultiplier         = 1.35
	velocityChangeMultiplier = 0.75
)

// EvaluateAim returns the aim difficulty of moving to current from its predecessors.
// The first object of the chain has no movement and returns 0.
func EvaluateAim(current *preprocessing.DifficultyObject, withSliders bool) float64 {
	if current.Index == 0 || current.IsSpinner {
		return 0
	}

	last := current.Previous(0)
	if last == nil || last.IsSpinner {
		return 0
	}

	lastLast := current.Previous(1)

	currVelocity := current.LazyJumpDistance / current.StrainTime

	// movement through the previous slider counts towards the jump
	if last.IsSlider && withSliders {
		travelVelocity := last.TravelDistance / last.TravelTime
		movementVelocity := current.MinimumJumpDistance / current.MinimumJumpTime

		currVelocity = math.Max(currVelocity, movementVelocity+travelVelocity)
	}

	prevVelocity := last.LazyJumpDistance / last.StrainTime

	if lastLast != nil && lastLast.IsSlider && withSliders {
		travelVelocity := lastLast.TravelDistance / lastLast.TravelTime
		movementVelocity := last.MinimumJumpDistance / last.MinimumJumpTime

		prevVelocity = math.Max(prevVelocity, movementVelocity+travelVelocity)
	}

	wideAngleBonus := 0.0
	acuteAngleBonus := 0.0
	velocityChangeBonus := 0.0
	sliderBonus := 0.0

	aimStrain := currVelocity

	sameRhythm := math.Max(current.StrainTime, last.StrainTime) < 1.25*math.Min(current.StrainTime, last.StrainTime)

	if sameRhythm && lastLast != nil && !math.IsNaN(current.Angle) && !math.IsNaN(last.Angle) && !math.IsNaN(lastLast.Angle) {
		currAngle := current.Angle
		lastAngle := last.Angle
		lastLastAngle := lastLast.Angle

		// angles are rewarded on the smaller velocity
		angleBonus := math.Min(currVelocity, prevVelocity)

		wideAngleBonus = calcWideAngleBonus(currAngle)
		acuteAngleBonus = calcAcuteAngleBonus(currAngle)

		// acute angles only matter above 300 bpm 1/2
		if current.StrainTime > 100 {
			acuteAngleBonus = 0
		} else {
			acuteAngleBonus *= calcAcuteAngleBonus(lastAngle) *
				math.Min(angleBonus, 125/current.StrainTime) *
				math.Pow(math.Sin(math.Pi/2*math.Min(1, (100-current.StrainTime)/25)), 2) *
				math.Pow(math.Sin(math.Pi/2*(mutils.Clamp(current.LazyJumpDistance, 50, 100)-50)/50), 2)
		}

		// repeated angles are easier
		wideAngleBonus *= angleBonus * (1 - math.Min(wideAngleBonus, math.Pow(calcWideAngleBonus(lastAngle), 3)))
		acuteAngleBonus *= 0.5 + 0.5*(1-math.Min(acuteAngleBonus, math.Pow(calcAcuteAngleBonus(lastLastAngle), 3)))
	}

	if math.Max(prevVelocity, currVelocity) != 0 {
		lastLastTravel := 0.0
		if lastLast != nil {
			lastLastTravel = lastLast.TravelDistance
		}

		// average velocity over the whole object
		prevVelocity = (last.LazyJumpDistance + lastLastTravel) / last.StrainTime
		currVelocity = (current.LazyJumpDistance + last.TravelDistance) / current.StrainTime

		if maxVelocity := math.Max(prevVelocity, currVelocity); maxVelocity > 0 {
			distRatio := math.Pow(math.Sin(math.Pi/2*math.Abs(prevVelocity-currVelocity)/maxVelocity), 2)

			overlapVelocityBuff := math.Min(125/math.Min(current.StrainTime, last.StrainTime), math.Abs(prevVelocity-currVelocity))

			velocityChangeBonus = overlapVelocityBuff * distRatio
			velocityChangeBonus *= math.Pow(math.Min(current.StrainTime, last.StrainTime)/math.Max(current.StrainTime, last.StrainTime), 2)
		}
	}

	if last.IsSlider {
		sliderBonus = last.TravelDistance / last.TravelTime
	}

	aimStrain += math.Max(acuteAngleBonus*acuteAngleMultiplier, wideAngleBonus*wideAngleMultiplier+velocityChangeBonus*velocityChangeMultiplier)

	if withSliders {
		aimStrain += sliderBonus * sliderMultiplier
	}

	return aimStrain
}

func calcWideAngleBonus(angle float64) float64 {
	return math.Pow(math.Sin(3.0/4*(math.Min(5.0/6*math.Pi, math.Max(math.Pi/6, angle))-math.Pi/6)), 2)
}

func calcAcuteAngleBonus(angle float64) float64 {
	return 1 - calcWideAngleBonus(angle)
}
