package skills

import (
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/evaluators"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/preprocessing"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/tuning"
)

func NewAimSkill(table *tuning.Table, withSliders bool) *StrainSkill {
	name := "aim"
	if !withSliders {
		name = "aim_no_sliders"
	}

	return NewStrainSkill(&Definition{
		Name:  name,
		Skill: table.Aim,
		StrainValueOf: func(current *preprocessing.DifficultyObject) float64 {
			return evaluators.EvaluateAim(current, withSliders)
		},
	})
}
