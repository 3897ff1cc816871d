package skills

import (
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/evaluators"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/preprocessing"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/tuning"
)

// NewReadingHiddenSkill is aim without sliders scaled by how hard the objects are to see with Hidden
func NewReadingHiddenSkill(table *tuning.Table) *StrainSkill {
	return NewStrainSkill(&Definition{
		Name:  "reading_hidden",
		Skill: table.ReadingHidden,
		StrainValueOf: func(current *preprocessing.DifficultyObject) float64 {
			return evaluators.EvaluateAim(current, false) * evaluators.EvaluateHiddenDifficultyOf(current)
		},
	})
}
