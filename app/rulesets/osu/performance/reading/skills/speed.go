package skills

import (
	"math"
	"slices"

	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/evaluators"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/tuning"
)

// SpeedSkill is tapping strain scaled by rhythm complexity
type SpeedSkill struct {
	*StrainSkill
}

func NewSpeedSkill(table *tuning.Table) *SpeedSkill {
	return &SpeedSkill{
		StrainSkill: NewStrainSkill(&Definition{
			Name:          "speed",
			Skill:         table.Speed,
			StrainValueOf: evaluators.EvaluateSpeed,
			StrainScaleOf: evaluators.EvaluateRhythm,
		}),
	}
}

// RelevantNoteCount estimates how many notes are close to the hardest one
func (skill *SpeedSkill) RelevantNoteCount() float64 {
	if len(skill.objectStrains) == 0 {
		return 0
	}

	maxStrain := slices.Max(skill.objectStrains)
	if maxStrain == 0 {
		return 0
	}

	count := 0.0
	for _, strain := range skill.objectStrains {
		count += 1.0 / (1.0 + math.Exp(-(strain/maxStrain*12.0 - 6.0)))
	}

	return count
}
