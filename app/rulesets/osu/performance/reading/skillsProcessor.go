package reading

import (
	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/preprocessing"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/skills"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/tuning"
)

// SkillsProcessor owns one accumulator per skill. Skills never read each other's state.
type SkillsProcessor struct {
	Aim               *skills.StrainSkill
	AimWithoutSliders *skills.StrainSkill
	Speed             *skills.SpeedSkill
	Flashlight        *skills.StrainSkill
	ReadingLowAR      *skills.StrainSkill
	ReadingHighAR     *skills.ReadingHighAR
	ReadingHidden     *skills.StrainSkill

	// peaksOnly skips skills that only feed per-play attributes (slider factor)
	peaksOnly bool
	isHidden  bool
}

func NewSkillsProcessor(d *difficulty.Difficulty, table *tuning.Table, peaksOnly bool) *SkillsProcessor {
	return &SkillsProcessor{
		Aim:               skills.NewAimSkill(table, true),
		AimWithoutSliders: skills.NewAimSkill(table, false),
		Speed:             skills.NewSpeedSkill(table),
		Flashlight:        skills.NewFlashlightSkill(table),
		ReadingLowAR:      skills.NewReadingLowARSkill(table),
		ReadingHighAR:     skills.NewReadingHighARSkill(table),
		ReadingHidden:     skills.NewReadingHiddenSkill(table),
		peaksOnly:         peaksOnly,
		isHidden:          d.CheckModActive(difficulty.Hidden),
	}
}

func (processor *SkillsProcessor) Process(current *preprocessing.DifficultyObject) {
	processor.Aim.Process(current)
	processor.Speed.Process(current)
	processor.Flashlight.Process(current)
	processor.ReadingLowAR.Process(current)
	processor.ReadingHighAR.Process(current)

	if !processor.peaksOnly {
		processor.AimWithoutSliders.Process(current)
	}

	if processor.isHidden {
		processor.ReadingHidden.Process(current)
	}
}
