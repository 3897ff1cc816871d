package skills

import (
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/evaluators"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/preprocessing"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/tuning"
)

// NewReadingLowARSkill accumulates aim made harder by density, on top of the instant density reading difficulty
func NewReadingLowARSkill(table *tuning.Table) *StrainSkill {
	aimComponentMultiplier := table.ReadingLowAR.AimComponentMultiplier

	return NewStrainSkill(&Definition{
		Name:  "reading_low_ar",
		Skill: table.ReadingLowAR.Skill,
		StrainValueOf: func(current *preprocessing.DifficultyObject) float64 {
			return evaluators.EvaluateAimingDensityFactorOf(current) * evaluators.EvaluateAim(current, true) * aimComponentMultiplier
		},
		InstantValueOf: evaluators.EvaluateReadingLowARDifficultyOf,
	})
}
