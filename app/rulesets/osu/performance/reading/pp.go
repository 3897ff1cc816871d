package reading

import (
	"context"
	"fmt"
	"math"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/api"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/deviation"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/skills"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/tuning"
	"github.com/Givikap120/danser-pp/framework/math/mutils"
)

// PPv2 keeps per-play state while calculating, so it must not be shared between goroutines.
type PPv2 struct {
	table *tuning.Table

	attribs api.Attributes

	scoreMaxCombo      int
	countGreat         int
	countOk            int
	countMeh           int
	countMiss          int
	effectiveMissCount float64

	// speedDeviation is nil when the play doesn't carry enough timing information
	speedDeviation *float64

	diff *difficulty.Difficulty

	totalHits                    int
	accuracy                     float64
	amountHitObjectsWithAccuracy int
}

// NewPPCalculator creates a calculator using table, or the embedded defaults when table is nil
func NewPPCalculator(table *tuning.Table) *PPv2 {
	if table == nil {
		table = tuning.Default()
	}

	return &PPv2{table: table}
}

// Calculate computes the performance of a play. A negative score.MaxCombo is treated as a full combo.
func (pp *PPv2) Calculate(ctx context.Context, attribs api.Attributes, score api.PerfScore, diff *difficulty.Difficulty) (api.PPv2Results, error) {
	if err := score.Validate(attribs.ObjectCount); err != nil {
		return api.PPv2Results{}, fmt.Errorf("calculate performance: %w", err)
	}

	attribs.MaxCombo = max(1, attribs.MaxCombo)

	combo := score.MaxCombo
	if combo < 0 {
		combo = attribs.MaxCombo
	}

	pp.attribs = attribs
	pp.diff = diff
	pp.totalHits = score.TotalHits()
	pp.scoreMaxCombo = min(combo, attribs.MaxCombo)
	pp.countGreat = score.CountGreat
	pp.countOk = score.CountOk
	pp.countMeh = score.CountMeh
	pp.countMiss = score.CountMiss
	pp.effectiveMissCount = pp.calculateEffectiveMissCount()
	pp.accuracy = score.Accuracy()

	if diff.CheckModActive(difficulty.ScoreV2 | difficulty.Lazer) {
		pp.amountHitObjectsWithAccuracy = attribs.Circles + attribs.Sliders
	} else {
		pp.amountHitObjectsWithAccuracy = attribs.Circles
	}

	var err error

	pp.speedDeviation, err = pp.calculateSpeedDeviation(ctx)
	if err != nil {
		return api.PPv2Results{}, fmt.Errorf("calculate performance: %w", err)
	}

	multiplier := pp.table.Star.PerformanceBaseMultiplier

	if diff.Mods.Active(difficulty.NoFail) {
		multiplier *= max(0.90, 1.0-0.02*pp.effectiveMissCount)
	}

	if diff.Mods.Active(difficulty.SpunOut) && pp.totalHits > 0 {
		multiplier *= 1.0 - math.Pow(float64(attribs.Spinners)/float64(pp.totalHits), 0.85)
	}

	if diff.Mods.Active(difficulty.Relax) {
		okMultiplier := 1.0
		mehMultiplier := 1.0

		if diff.ODReal > 0.0 {
			okMultiplier = max(0.0, 1-math.Pow(diff.ODReal/13.33, 1.8))
			mehMultiplier = max(0.0, 1-math.Pow(diff.ODReal/13.33, 5))
		}

		pp.effectiveMissCount = min(pp.effectiveMissCount+float64(pp.countOk)*okMultiplier+float64(pp.countMeh)*mehMultiplier, float64(pp.totalHits))
	}

	result := pp.calculatePPv2Results()

	result.EffectiveMissCount = pp.effectiveMissCount
	result.SpeedDeviation = pp.speedDeviation

	if pp.speedDeviation != nil {
		ur := deviation.UnstableRate(*pp.speedDeviation)
		result.EstimatedUnstableRate = &ur
	}

	// the balance multiplier is based on the full combo value of the play
	pp.effectiveMissCount = 0
	pp.countMiss = 0
	pp.scoreMaxCombo = pp.attribs.MaxCombo
	multiplier *= pp.calculateBalanceAdjustingMultiplier()

	result.Total *= multiplier

	return result, nil
}

func (pp *PPv2) calculatePPv2Results() api.PPv2Results {
	star := pp.table.Star

	aimValue := pp.computeAimValue()
	speedValue := pp.computeSpeedValue()

	lowARValue := pp.computeLowARValue()
	highARValue := pp.computeHighARValue()

	potentialFlashlightValue := pp.computeFlashlightValue()
	hiddenValue := pp.computeHiddenValue()

	flashlightValue := 0.0
	if pp.diff.Mods.Active(difficulty.Flashlight) {
		flashlightValue = potentialFlashlightValue
	}

	arValue := mutils.PowerMean(star.ReadingSumPower, lowARValue, highARValue)
	flashlightARValue := mutils.PowerMean(star.CognitionSumPower, arValue, flashlightValue)

	cognitionValue := flashlightARValue + hiddenValue
	mechanicalValue := mutils.PowerMean(star.MechanicalSumPower, aimValue, speedValue)

	cognitionValue = AdjustCognitionPerformance(star, cognitionValue, mechanicalValue, potentialFlashlightValue)
	accValue := pp.computeAccuracyValue()
	totalValue := cognitionValue + mutils.PowerMean(star.MechanicalSumPower, mechanicalValue, accValue)

	visualReadingValue := AdjustCognitionPerformance(star, arValue+hiddenValue, mechanicalValue, flashlightValue)
	visualFlashlightValue := cognitionValue - visualReadingValue

	return api.PPv2Results{
		Aim:        aimValue,
		Speed:      speedValue,
		Acc:        accValue,
		Flashlight: visualFlashlightValue,
		Reading:    visualReadingValue,
		Total:      totalValue,
	}
}

func (pp *PPv2) lengthBonus() float64 {
	lengthBonus := 0.95 + 0.4*min(1.0, float64(pp.totalHits)/2000.0)
	if pp.totalHits > 2000 {
		lengthBonus += math.Log10(float64(pp.totalHits)/2000.0) * 0.5
	}

	return lengthBonus
}

func (pp *PPv2) sliderNerfFactor() float64 {
	if pp.attribs.Sliders == 0 {
		return 1
	}

	// 15% of sliders are assumed to be difficult, the attributes can't tell which
	estimateDifficultSliders := float64(pp.attribs.Sliders) * 0.15

	estimateSliderEndsDropped := mutils.Clamp(float64(min(pp.countOk+pp.countMeh+pp.countMiss, pp.attribs.MaxCombo-pp.scoreMaxCombo)), 0, estimateDifficultSliders)

	return (1-pp.attribs.SliderFactor)*math.Pow(1-estimateSliderEndsDropped/estimateDifficultSliders, 3) + pp.attribs.SliderFactor
}

// relevantAccuracy is the accuracy on the notes that matter for speed
func (pp *PPv2) relevantAccuracy() float64 {
	if pp.attribs.SpeedNoteCount == 0 {
		return 0
	}

	relevantTotalDiff := float64(pp.totalHits) - pp.attribs.SpeedNoteCount
	relevantCountGreat := max(0, float64(pp.countGreat)-relevantTotalDiff)
	relevantCountOk := max(0, float64(pp.countOk)-max(0, relevantTotalDiff-float64(pp.countGreat)))
	relevantCountMeh := max(0, float64(pp.countMeh)-max(0, relevantTotalDiff-float64(pp.countGreat)-float64(pp.countOk)))

	return (relevantCountGreat*6.0 + relevantCountOk*2.0 + relevantCountMeh) / (pp.attribs.SpeedNoteCount * 6.0)
}

// odScale weighs a value by how hard the overall difficulty makes it to hit accurately
func (pp *PPv2) odScale() float64 {
	return 0.98 + pp.diff.ODReal*pp.diff.ODReal/2500
}

// aimAccuracyScale applies the slider nerf and the accuracy scaling shared by aim-like values
func (pp *PPv2) aimAccuracyScale() float64 {
	return pp.sliderNerfFactor() * pp.accuracy * pp.odScale()
}

// speedAccuracyScale scales speed-like values by accuracy and OD, punishing 50s as doubletapping
func (pp *PPv2) speedAccuracyScale() float64 {
	od := pp.diff.ODReal

	scale := (0.95 + od*od/750) * math.Pow((pp.accuracy+pp.relevantAccuracy())/2.0, (14.5-od)/2)

	allowedMeh := float64(pp.totalHits) / 500
	if float64(pp.countMeh) >= allowedMeh {
		scale *= math.Pow(0.99, float64(pp.countMeh)-allowedMeh)
	}

	return scale
}

// approachRateFactor rewards very high AR, and very low AR when lowAR is set
func (pp *PPv2) approachRateFactor(lowAR bool) float64 {
	ar := pp.diff.ARReal

	switch {
	case ar > 10.33:
		return 0.3 * (ar - 10.33)
	case lowAR && ar < 8.0:
		return 0.05 * (8.0 - ar)
	}

	return 0
}

// hiddenBonus buffs lower AR with HD since it is harder to aim and tap
func (pp *PPv2) hiddenBonus() float64 {
	if !pp.diff.Mods.Active(difficulty.Hidden) {
		return 1
	}

	return 1.0 + 0.04*(12.0-pp.diff.ARReal)
}

func (pp *PPv2) computeAimValue() float64 {
	lengthBonus := pp.lengthBonus()

	aimValue := skills.DefaultDifficultyToPerformance(pp.attribs.Aim) * lengthBonus

	if pp.effectiveMissCount > 0 {
		aimValue *= pp.calculateMissPenalty(pp.effectiveMissCount, pp.attribs.AimDifficultStrainCount)
	}

	if !pp.diff.CheckModActive(difficulty.Relax) {
		aimValue *= 1.0 + pp.approachRateFactor(true)*lengthBonus
	}

	aimValue *= pp.hiddenBonus()

	return aimValue * pp.aimAccuracyScale()
}

func (pp *PPv2) computeSpeedValue() float64 {
	if pp.diff.CheckModActive(difficulty.Relax) {
		return 0
	}

	lengthBonus := pp.lengthBonus()

	speedValue := skills.DefaultDifficultyToPerformance(pp.attribs.Speed) * lengthBonus

	if pp.effectiveMissCount > 0 {
		speedValue *= pp.calculateMissPenalty(pp.effectiveMissCount, pp.attribs.SpeedDifficultStrainCount)
	}

	speedValue *= pp.calculateSpeedHighDeviationNerf()
	speedValue *= (1.0 + pp.approachRateFactor(false)*lengthBonus) * pp.hiddenBonus()

	return speedValue * pp.speedAccuracyScale()
}

// computeAccuracyValue only rates objects judged by timing, all greats are assumed to go to the rest first
func (pp *PPv2) computeAccuracyValue() float64 {
	if pp.diff.Mods.Active(difficulty.Relax) || pp.amountHitObjectsWithAccuracy == 0 {
		return 0.0
	}

	// objects left unjudged by a failed play are neither greats nor untimed hits
	timedGreats := pp.countGreat - max(0, pp.totalHits-pp.amountHitObjectsWithAccuracy)

	timedAccuracy := max(0, float64(timedGreats*6+pp.countOk*2+pp.countMeh)/float64(pp.amountHitObjectsWithAccuracy*6))

	accuracyValue := 2.83 * math.Pow(1.52163, pp.diff.ODReal) * math.Pow(timedAccuracy, 24)

	// keeping accuracy up is harder on longer charts
	accuracyValue *= min(1.15, math.Pow(float64(pp.amountHitObjectsWithAccuracy)/1000.0, 0.3))

	if pp.diff.Mods.Active(difficulty.Hidden) {
		accuracyValue *= 1.08
	}

	if pp.diff.Mods.Active(difficulty.Flashlight) {
		accuracyValue *= 1.02
	}

	return accuracyValue
}

func (pp *PPv2) computeFlashlightValue() float64 {
	flashlightValue := skills.FlashlightDifficultyToPerformance(pp.attribs.Flashlight)

	if pp.effectiveMissCount > 0 {
		flashlightValue *= 0.97 * math.Pow(1-math.Pow(pp.effectiveMissCount/float64(pp.totalHits), 0.775), math.Pow(pp.effectiveMissCount, 0.875))
	}

	flashlightValue *= pp.getComboScalingFactor()

	// shorter charts spend more of their time at the larger low-combo radius
	scale := 0.7 + 0.1*min(1.0, float64(pp.totalHits)/200.0)
	if pp.totalHits > 200 {
		scale += 0.2 * min(1.0, float64(pp.totalHits-200)/200.0)
	}

	flashlightValue *= scale

	// Scale the flashlight value with accuracy _slightly_.
	flashlightValue *= (0.5 + pp.accuracy/2.0) * pp.odScale()

	return flashlightValue
}

func (pp *PPv2) computeLowARValue() float64 {
	readingValue := skills.LowARDifficultyToPerformance(pp.attribs.ReadingDifficultyLowAR)

	if pp.effectiveMissCount > 0 {
		readingValue *= pp.calculateMissPenalty(pp.effectiveMissCount, pp.attribs.LowArDifficultStrainCount)
	}

	readingValue *= math.Pow(pp.accuracy*pp.odScale(), 2)

	return readingValue
}

func (pp *PPv2) computeHighARValue() float64 {
	highARValue := skills.HighARDifficultyToPerformance(pp.attribs.ReadingDifficultyHighAR, pp.table.ReadingHighAR)
	if highARValue == 0 {
		return 0
	}

	// split high AR difficulty between aim and speed by their share of the mechanical performance
	aimPerformance := skills.DefaultDifficultyToPerformance(pp.attribs.Aim)
	speedPerformance := skills.DefaultDifficultyToPerformance(pp.attribs.Speed)

	aimRatio := aimPerformance / (aimPerformance + speedPerformance)

	aimPartValue := highARValue * aimRatio * pp.aimAccuracyScale()
	speedPartValue := highARValue * (1 - aimRatio) * pp.speedAccuracyScale()

	return aimPartValue + speedPartValue
}

func (pp *PPv2) computeHiddenValue() float64 {
	if !pp.diff.CheckModActive(difficulty.Hidden) {
		return 0
	}

	readingValue := skills.HiddenDifficultyToPerformance(pp.attribs.HiddenDifficulty)

	readingValue *= pp.lengthBonus()

	if pp.effectiveMissCount > 0 {
		readingValue *= pp.calculateMissPenalty(pp.effectiveMissCount, pp.attribs.HiddenDifficultStrainCount)
	}

	readingValue *= pp.accuracy * pp.accuracy * pp.odScale()

	return readingValue
}

// calculateSpeedDeviation estimates the hit error deviation on circles only, since slider heads
// in stable are judged more leniently. Greats are assumed to go to sliders first.
func (pp *PPv2) calculateSpeedDeviation(ctx context.Context) (*float64, error) {
	if pp.totalHits == 0 {
		return nil, nil
	}

	countGreat := max(0, pp.countGreat-max(0, pp.totalHits-pp.attribs.Circles))

	counts := []int{countGreat, pp.countOk, pp.countMeh, pp.countMiss}

	return deviation.Estimate(ctx, counts, deviation.StandardWindows(pp.diff.GetOD(), pp.diff.Speed))
}

// calculateSpeedHighDeviationNerf reduces speed pp that exceeds what the estimated deviation allows,
// which catches plays that tap difficult streams improperly.
func (pp *PPv2) calculateSpeedHighDeviationNerf() float64 {
	if pp.speedDeviation == nil {
		return 1
	}

	speedDeviation := *pp.speedDeviation

	speedValue := skills.DefaultDifficultyToPerformance(pp.attribs.Speed)

	excessSpeedDifficultyCutoff := 100 + 220*math.Pow(22/speedDeviation, 6.5)
	if speedValue <= excessSpeedDifficultyCutoff {
		return 1
	}

	const scale = 50.0

	adjustedSpeedValue := scale * (math.Log((speedValue-excessSpeedDifficultyCutoff)/scale+1) + excessSpeedDifficultyCutoff/scale)

	// 220 UR and less are considered tapped correctly
	lerp := 1 - mutils.ReverseLerp(speedDeviation, 22.0, 27.0)
	adjustedSpeedValue = mutils.Lerp(adjustedSpeedValue, speedValue, lerp)

	return adjustedSpeedValue / speedValue
}

func (pp *PPv2) calculateEffectiveMissCount() float64 {
	// slider breaks don't show up as misses, so estimate them from combo
	comboBasedMissCount := 0.0

	if pp.attribs.Sliders > 0 {
		fullComboThreshold := float64(pp.attribs.MaxCombo) - 0.1*float64(pp.attribs.Sliders)
		if float64(pp.scoreMaxCombo) < fullComboThreshold {
			comboBasedMissCount = fullComboThreshold / max(1.0, float64(pp.scoreMaxCombo))
		}
	}

	comboBasedMissCount = min(comboBasedMissCount, float64(pp.countOk+pp.countMeh+pp.countMiss))

	return max(float64(pp.countMiss), comboBasedMissCount)
}

// calculateMissPenalty treats charts with fewer than e difficult strains as having e of them, keeping the log positive
func (pp *PPv2) calculateMissPenalty(missCount, difficultStrainCount float64) float64 {
	return 0.96 / ((missCount / (4 * math.Pow(math.Log(max(difficultStrainCount, math.E)), 0.94))) + 1)
}

func (pp *PPv2) getComboScalingFactor() float64 {
	if pp.attribs.MaxCombo <= 0 {
		return 1.0
	}

	return min(math.Pow(float64(pp.scoreMaxCombo), 0.8)/math.Pow(float64(pp.attribs.MaxCombo), 0.8), 1.0)
}

// AdjustCognitionPerformance softly caps cognition performance relative to the mechanical and flashlight performance
func AdjustCognitionPerformance(star tuning.Star, cognitionPerformance, mechanicalPerformance, flashlightPerformance float64) float64 {
	// Assuming that less than CognitionCapOffset pp is not worthy for memory
	capPerformance := mechanicalPerformance + flashlightPerformance + star.CognitionCapOffset

	ratio := cognitionPerformance / capPerformance
	if ratio > 50 {
		return capPerformance
	}

	ratio = softmin(ratio*10, 10, 5) / 10

	return ratio * capPerformance
}

func (pp *PPv2) calculateBalanceAdjustingMultiplier() float64 {
	totalValue := pp.calculatePPv2Results().Total * pp.table.Star.PerformanceBaseMultiplier

	if totalValue < 600 {
		return 1
	}

	rescaledValue := (totalValue - 600) / 1000
	result := min(0.06*rescaledValue, 0.088*math.Pow(rescaledValue, 0.4))

	return 1 + result
}

// softmin is a function that computes a soft minimum between two values with an optional power argument
func softmin(a, b, power float64) float64 {
	return a * b / math.Log(math.Pow(power, a)+math.Pow(power, b))
}

var (
	_ api.IDifficultyCalculator  = (*DifficultyCalculator)(nil)
	_ api.IPerformanceCalculator = (*PPv2)(nil)
)
