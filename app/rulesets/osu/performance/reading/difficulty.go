package reading

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/beatmap/objects"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/api"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/preprocessing"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/skills"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/tuning"
	"github.com/Givikap120/danser-pp/framework/math/mutils"
)

const CurrentVersion int = 20241105

type DifficultyCalculator struct {
	table *tuning.Table
}

// NewDifficultyCalculator creates a calculator using table, or the embedded defaults when table is nil
func NewDifficultyCalculator(table *tuning.Table) *DifficultyCalculator {
	if table == nil {
		table = tuning.Default()
	}

	return &DifficultyCalculator{table: table}
}

// rawValues are the difficulty values of the skills before scaling to star ratings
type rawValues struct {
	aim, aimNoSliders, speed, flashlight, lowAR, highAR, hidden float64
}

// getStarsFromRawValues converts raw skill values to Attributes
func (diffCalc *DifficultyCalculator) getStarsFromRawValues(raw rawValues, diff *difficulty.Difficulty, attr api.Attributes) api.Attributes {
	star := diffCalc.table.Star

	aimRating := math.Sqrt(raw.aim) * star.StarScalingFactor
	aimRatingNoSliders := math.Sqrt(raw.aimNoSliders) * star.StarScalingFactor
	speedRating := math.Sqrt(raw.speed) * star.StarScalingFactor
	flashlightRating := math.Sqrt(raw.flashlight) * star.StarScalingFactor

	lowARRating := math.Sqrt(raw.lowAR) * star.StarScalingFactor
	highARRating := math.Sqrt(raw.highAR) * star.StarScalingFactor
	hiddenRating := math.Sqrt(raw.hidden) * star.StarScalingFactor

	sliderFactor := 1.0
	if aimRating > 0.00001 {
		sliderFactor = aimRatingNoSliders / aimRating
	}

	if diff.CheckModActive(difficulty.TouchDevice) {
		aimRating = math.Pow(aimRating, star.TouchDevicePower)
		flashlightRating = math.Pow(flashlightRating, star.TouchDevicePower)

		lowARRating = math.Pow(lowARRating, star.TouchDevicePower)
		highARRating = math.Pow(highARRating, 0.9)
		hiddenRating = math.Pow(hiddenRating, star.TouchDevicePower)
	}

	if diff.CheckModActive(difficulty.Relax) {
		aimRating *= 0.9
		speedRating = 0
		flashlightRating *= 0.7

		lowARRating *= 0.95
		highARRating *= 0.7
		hiddenRating *= 0.7
	}

	baseAimPerformance := skills.DefaultDifficultyToPerformance(aimRating)
	baseSpeedPerformance := skills.DefaultDifficultyToPerformance(speedRating)

	baseLowARPerformance := skills.LowARDifficultyToPerformance(lowARRating)
	baseHighARPerformance := skills.HighARDifficultyToPerformance(highARRating, diffCalc.table.ReadingHighAR)

	potentialFlashlightPerformance := skills.FlashlightDifficultyToPerformance(flashlightRating)

	baseFlashlightPerformance := 0.0
	baseHiddenPerformance := 0.0

	if diff.CheckModActive(difficulty.Flashlight) {
		baseFlashlightPerformance = potentialFlashlightPerformance
	}

	if diff.CheckModActive(difficulty.Hidden) {
		baseHiddenPerformance = skills.HiddenDifficultyToPerformance(hiddenRating)
	}

	baseARPerformance := mutils.PowerMean(star.ReadingSumPower, baseLowARPerformance, baseHighARPerformance)
	baseFlashlightARPerformance := mutils.PowerMean(star.CognitionSumPower, baseARPerformance, baseFlashlightPerformance)

	baseCognitionPerformance := baseFlashlightARPerformance + baseHiddenPerformance
	baseMechanicalPerformance := mutils.PowerMean(star.MechanicalSumPower, baseAimPerformance, baseSpeedPerformance)

	baseCognitionPerformance = AdjustCognitionPerformance(star, baseCognitionPerformance, baseMechanicalPerformance, potentialFlashlightPerformance)
	basePerformance := baseMechanicalPerformance + baseCognitionPerformance

	total := 0.0
	if basePerformance > 0.00001 {
		total = math.Cbrt(star.PerformanceBaseMultiplier) * star.StarRatingMultiplier *
			(math.Cbrt(100000/math.Pow(2, 1/star.MechanicalSumPower)*basePerformance) + star.StarRatingOffset)
	}

	attr.Total = total
	attr.Aim = aimRating
	attr.SliderFactor = sliderFactor
	attr.Speed = speedRating
	attr.Flashlight = flashlightRating

	attr.ReadingDifficultyLowAR = lowARRating
	attr.ReadingDifficultyHighAR = highARRating
	attr.HiddenDifficulty = hiddenRating

	return attr
}

// Retrieves skill values and converts to Attributes
func (diffCalc *DifficultyCalculator) getStars(processor *SkillsProcessor, diff *difficulty.Difficulty, attr api.Attributes) api.Attributes {
	attr = diffCalc.getStarsFromRawValues(rawValues{
		aim:          processor.Aim.DifficultyValue(),
		aimNoSliders: processor.AimWithoutSliders.DifficultyValue(),
		speed:        processor.Speed.DifficultyValue(),
		flashlight:   processor.Flashlight.DifficultyValue(),
		lowAR:        processor.ReadingLowAR.DifficultyValue(),
		highAR:       processor.ReadingHighAR.DifficultyValue(),
		hidden:       processor.ReadingHidden.DifficultyValue(),
	}, diff, attr)

	attr.SpeedNoteCount = processor.Speed.RelevantNoteCount()
	attr.AimDifficultStrainCount = processor.Aim.CountDifficultStrains()
	attr.SpeedDifficultStrainCount = processor.Speed.CountDifficultStrains()

	attr.LowArDifficultStrainCount = processor.ReadingLowAR.CountDifficultStrains()
	attr.HiddenDifficultStrainCount = processor.ReadingHidden.CountDifficultStrains()

	return attr
}

func (diffCalc *DifficultyCalculator) baseAttributes(diff *difficulty.Difficulty) api.Attributes {
	return api.Attributes{
		Version:           CurrentVersion,
		Mods:              difficulty.GetDiffMaskedMods(diff.Mods),
		ClockRate:         diff.Speed,
		ApproachRate:      diff.ARReal,
		OverallDifficulty: diff.ODReal,
	}
}

func (diffCalc *DifficultyCalculator) addObjectToAttribs(o objects.IHitObject, attr *api.Attributes) {
	switch s := o.(type) {
	case *objects.Slider:
		attr.Sliders++
		attr.MaxCombo += len(s.ScorePoints)
	case *objects.Circle:
		attr.Circles++
	case *objects.Spinner:
		attr.Spinners++
	}

	attr.MaxCombo++
	attr.ObjectCount++
}

// CalculateSingle calculates the final difficulty attributes of a map.
// An empty map yields zero difficulty without an error.
func (diffCalc *DifficultyCalculator) CalculateSingle(ctx context.Context, hitObjects []objects.IHitObject, diff *difficulty.Difficulty) (api.Attributes, error) {
	attr := diffCalc.baseAttributes(diff)

	if len(hitObjects) == 0 {
		return attr, nil
	}

	diffObjects, err := preprocessing.CreateDifficultyObjects(ctx, hitObjects, diff)
	if err != nil {
		return api.Attributes{}, fmt.Errorf("calculate difficulty: %w", err)
	}

	for _, o := range preprocessing.SortHitObjects(hitObjects) {
		diffCalc.addObjectToAttribs(o, &attr)
	}

	// a lone object has nothing to be rated against
	if len(diffObjects) == 0 {
		return attr, nil
	}

	processor := NewSkillsProcessor(diff, diffCalc.table, false)

	for _, o := range diffObjects {
		processor.Process(o)
	}

	return diffCalc.getStars(processor, diff, attr), nil
}

// CalculateStep calculates successive star ratings for every part of a beatmap.
// Entry i holds the attributes of the first i+1 objects.
// Objects are preprocessed once for the whole chart, so a step still sees the object after it
// (speed doubletapness) and may differ from CalculateSingle on the same prefix.
func (diffCalc *DifficultyCalculator) CalculateStep(ctx context.Context, hitObjects []objects.IHitObject, diff *difficulty.Difficulty) ([]api.Attributes, error) {
	if len(hitObjects) == 0 {
		return []api.Attributes{}, nil
	}

	modString := difficulty.GetDiffMaskedMods(diff.Mods).String()
	if modString == "" {
		modString = "NM"
	}

	log.Println("Calculating step SR for mods:", modString)

	startTime := time.Now()

	diffObjects, err := preprocessing.CreateDifficultyObjects(ctx, hitObjects, diff)
	if err != nil {
		return nil, fmt.Errorf("calculate step difficulty: %w", err)
	}

	sorted := preprocessing.SortHitObjects(hitObjects)

	processor := NewSkillsProcessor(diff, diffCalc.table, false)

	stars := make([]api.Attributes, 1, len(sorted))

	stars[0] = diffCalc.baseAttributes(diff)
	diffCalc.addObjectToAttribs(sorted[0], &stars[0])

	for i, o := range diffObjects {
		if err = ctx.Err(); err != nil {
			return nil, fmt.Errorf("calculate step difficulty: %w", err)
		}

		attr := stars[i]
		diffCalc.addObjectToAttribs(sorted[i+1], &attr)

		processor.Process(o)

		stars = append(stars, diffCalc.getStars(processor, diff, attr))
	}

	endTime := time.Now()

	log.Println("Calculations finished! Took", endTime.Sub(startTime).Truncate(time.Millisecond).String())

	return stars, nil
}

// CalculateStrainPeaks returns per-section peaks of every skill and the star rating of each section
func (diffCalc *DifficultyCalculator) CalculateStrainPeaks(ctx context.Context, hitObjects []objects.IHitObject, diff *difficulty.Difficulty) (api.StrainPeaks, error) {
	diffObjects, err := preprocessing.CreateDifficultyObjects(ctx, hitObjects, diff)
	if err != nil {
		return api.StrainPeaks{}, fmt.Errorf("calculate strain peaks: %w", err)
	}

	processor := NewSkillsProcessor(diff, diffCalc.table, true)

	for _, o := range diffObjects {
		processor.Process(o)
	}

	peaks := api.StrainPeaks{
		Aim:           processor.Aim.GetCurrentStrainPeaks(),
		Speed:         processor.Speed.GetCurrentStrainPeaks(),
		Flashlight:    processor.Flashlight.GetCurrentStrainPeaks(),
		ReadingLowAR:  processor.ReadingLowAR.GetCurrentStrainPeaks(),
		ReadingHighAR: processor.ReadingHighAR.GetCurrentStrainPeaks(),
		ReadingHidden: processor.ReadingHidden.GetCurrentStrainPeaks(),
	}

	peaks.Total = make([]float64, len(peaks.Aim))

	for i := range peaks.Aim {
		stars := diffCalc.getStarsFromRawValues(rawValues{
			aim:          peaks.Aim[i],
			aimNoSliders: peaks.Aim[i],
			speed:        peakAt(peaks.Speed, i),
			flashlight:   peakAt(peaks.Flashlight, i),
			lowAR:        peakAt(peaks.ReadingLowAR, i),
			highAR:       peakAt(peaks.ReadingHighAR, i),
			hidden:       peakAt(peaks.ReadingHidden, i),
		}, diff, api.Attributes{})

		peaks.Total[i] = stars.Total
	}

	return peaks, nil
}

// peakAt tolerates skills that were not run for the current mods
func peakAt(peaks []float64, i int) float64 {
	if i < len(peaks) {
		return peaks[i]
	}

	return 0
}

func (diffCalc *DifficultyCalculator) GetVersion() int {
	return CurrentVersion
}

func (diffCalc *DifficultyCalculator) GetVersionMessage() string {
	return "2024-11-05: reading rework, tunable skill tables"
}

func (diffCalc *DifficultyCalculator) GetTuningFingerprint() string {
	return diffCalc.table.Fingerprint()
}
