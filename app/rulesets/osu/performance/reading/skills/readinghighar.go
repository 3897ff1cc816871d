package skills

import (
	"math"

	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/evaluators"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/preprocessing"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/tuning"
	"github.com/Givikap120/danser-pp/framework/math/mutils"
)

// ReadingHighAR combines aim and speed strains scaled by the high AR bonus.
// Each component is rated and converted to performance on its own, so the result
// follows the high AR curve rather than the usual peak weighting.
type ReadingHighAR struct {
	highAR tuning.HighAR
	star   tuning.Star

	aimComponent   *StrainSkill
	speedComponent *StrainSkill

	objectsCount      int
	objectsPreemptSum float64
}

func NewReadingHighARSkill(table *tuning.Table) *ReadingHighAR {
	highAR := table.ReadingHighAR
	aimDefault := highAR.ComponentDefaultValue / table.Aim.SkillMultiplier
	speedDefault := highAR.ComponentDefaultValue / table.Speed.SkillMultiplier

	return &ReadingHighAR{
		highAR: highAR,
		star:   table.Star,
		aimComponent: NewStrainSkill(&Definition{
			Name:  "reading_high_ar_aim",
			Skill: table.Aim,
			StrainValueOf: func(current *preprocessing.DifficultyObject) float64 {
				scaling := evaluators.EvaluateHighARDifficultyOf(current, true, highAR.MechanicalPPPower)
				return (evaluators.EvaluateAim(current, true) + aimDefault) * scaling
			},
		}),
		speedComponent: NewStrainSkill(&Definition{
			Name:  "reading_high_ar_speed",
			Skill: table.Speed,
			StrainValueOf: func(current *preprocessing.DifficultyObject) float64 {
				scaling := evaluators.EvaluateHighARDifficultyOf(current, false, highAR.MechanicalPPPower)
				return (evaluators.EvaluateSpeed(current) + speedDefault) * scaling
			},
			StrainScaleOf: evaluators.EvaluateRhythm,
		}),
	}
}

func (skill *ReadingHighAR) Process(current *preprocessing.DifficultyObject) {
	skill.aimComponent.Process(current)
	skill.speedComponent.Process(current)

	if !current.IsSpinner {
		skill.objectsCount++
		skill.objectsPreemptSum += current.Preempt
	}
}

// GetCurrentStrainPeaks merges the section peaks of both components with the reading sum power
func (skill *ReadingHighAR) GetCurrentStrainPeaks() []float64 {
	aimPeaks := skill.aimComponent.GetCurrentStrainPeaks()
	speedPeaks := skill.speedComponent.GetCurrentStrainPeaks()

	// tables built in code skip validation, so the components may disagree on section count
	peaks := make([]float64, min(len(aimPeaks), len(speedPeaks)))
	for i := range peaks {
		peaks[i] = mutils.PowerMean(skill.star.ReadingSumPower, aimPeaks[i], speedPeaks[i])
	}

	return peaks
}

func (skill *ReadingHighAR) DifficultyValue() float64 {
	if skill.objectsCount == 0 {
		return 0
	}

	scaling := skill.star.StarScalingFactor

	aimValue := math.Sqrt(skill.aimComponent.DifficultyValue()) * scaling
	speedValue := math.Sqrt(skill.speedComponent.DifficultyValue()) * scaling

	totalPerformance := mutils.PowerMean(skill.star.ReadingSumPower,
		HighARDifficultyToPerformance(aimValue, skill.highAR),
		HighARDifficultyToPerformance(speedValue, skill.highAR),
	)

	objects := float64(skill.objectsCount)

	lengthBonus := 0.95 + 0.4*min(1.0, objects/2000.0)
	if objects > 2000 {
		lengthBonus += math.Log10(objects/2000.0) * 0.5
	}

	lengthBonus = math.Pow(lengthBonus, 0.5/skill.highAR.MechanicalPPPower)

	averagePreempt := skill.objectsPreemptSum / objects / 1000

	lengthBonusPower := 1 + 0.75*math.Pow(0.1, math.Pow(2.3*averagePreempt, 8))
	if lengthBonus < 1 {
		lengthBonusPower = 2
	}

	totalPerformance *= math.Pow(lengthBonus, lengthBonusPower)

	adjustedDifficulty := HighARPerformanceToDifficulty(totalPerformance, skill.highAR)

	return math.Pow(adjustedDifficulty/scaling, 2)
}

// CountDifficultStrains returns the count of whichever component has more difficult strains
func (skill *ReadingHighAR) CountDifficultStrains() float64 {
	return max(skill.aimComponent.CountDifficultStrains(), skill.speedComponent.CountDifficultStrains())
}
