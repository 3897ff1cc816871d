package skills

import (
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/evaluators"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/tuning"
)

// NewFlashlightSkill sums all section peaks with the default table (decay weight 1, no reduced sections)
func NewFlashlightSkill(table *tuning.Table) *StrainSkill {
	return NewStrainSkill(&Definition{
		Name:          "flashlight",
		Skill:         table.Flashlight,
		StrainValueOf: evaluators.EvaluateFlashlight,
	})
}
