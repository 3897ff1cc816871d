package skills

import (
	"context"
	"math"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/beatmap/objects"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/preprocessing"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/tuning"
)

// synthetic builds bare difficulty objects at the given times, the strain values come from the definition
func synthetic(times ...float64) []*preprocessing.DifficultyObject {
	diffObjects := make([]*preprocessing.DifficultyObject, len(times))

	for i, t := range times {
		delta := 0.0
		if i > 0 {
			delta = t - times[i-1]
		}

		diffObjects[i] = &preprocessing.DifficultyObject{
			Index:      i,
			StartTime:  t,
			DeltaTime:  delta,
			StrainTime: max(delta, preprocessing.MinDeltaTime),
		}
	}

	return diffObjects
}

// tableDefinition returns values[Index] as the strain of each object
func tableDefinition(skill tuning.Skill, values []float64) *Definition {
	return &Definition{
		Name:  "test",
		Skill: skill,
		StrainValueOf: func(current *preprocessing.DifficultyObject) float64 {
			return values[current.Index]
		},
	}
}

func unitSkill() tuning.Skill {
	return tuning.Skill{
		SkillMultiplier:       1,
		StrainDecayBase:       0.15,
		SectionLength:         400,
		ReducedStrainBaseline: 1,
		DecayWeight:           0.9,
		DifficultyMultiplier:  1,
	}
}

func run(def *Definition, diffObjects []*preprocessing.DifficultyObject) *StrainSkill {
	skill := NewStrainSkill(def)
	for _, o := range diffObjects {
		skill.Process(o)
	}

	return skill
}

func TestDecayLaw(t *testing.T) {
	diffObjects := synthetic(0, 1500)
	def := tableDefinition(unitSkill(), []float64{10, 0})

	skill := run(def, diffObjects[:1])
	require.Equal(t, 10.0, skill.StrainAt(0))

	for _, delta := range []float64{1, 250, 1000, 3700} {
		assert.InDelta(t, 10*math.Pow(0.15, delta/1000), skill.StrainAt(delta), 1e-12, delta)
	}

	skill.Process(diffObjects[1])
	assert.InDelta(t, 10*math.Pow(0.15, 1.5), skill.ObjectStrains()[1], 1e-12)
}

func TestStrainAtBeforeProcessing(t *testing.T) {
	skill := NewStrainSkill(tableDefinition(unitSkill(), nil))

	assert.Zero(t, skill.StrainAt(1000))
	assert.Empty(t, skill.GetCurrentStrainPeaks())
	assert.Zero(t, skill.DifficultyValue())
	assert.Zero(t, skill.CountDifficultStrains())
}

func TestPeakCount(t *testing.T) {
	cases := []struct {
		name  string
		times []float64
	}{
		{"single object", []float64{500}},
		{"exact boundary", []float64{0, 200, 400}},
		{"just past boundary", []float64{0, 200, 401}},
		{"dense", []float64{0, 100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}},
		{"sparse", []float64{0, 2000}},
		{"offset start", []float64{1234, 1300, 2900}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			values := make([]float64, len(c.times))
			for i := range values {
				values[i] = 1
			}

			skill := run(tableDefinition(unitSkill(), values), synthetic(c.times...))

			duration := c.times[len(c.times)-1] - c.times[0]
			expected := max(1, int(math.Ceil(duration/400)))

			assert.Len(t, skill.GetCurrentStrainPeaks(), expected)
		})
	}
}

func TestCrossSectionDecay(t *testing.T) {
	skill := run(tableDefinition(unitSkill(), []float64{10, 0}), synthetic(0, 1000))

	peaks := skill.GetCurrentStrainPeaks()
	require.Len(t, peaks, 3)

	assert.Equal(t, 10.0, peaks[0])
	assert.InDelta(t, 10*math.Pow(0.15, 0.4), peaks[1], 1e-12)
	assert.InDelta(t, 10*math.Pow(0.15, 0.8), peaks[2], 1e-12)
}

func TestInstantAndScaleTerms(t *testing.T) {
	def := tableDefinition(unitSkill(), []float64{2, 2})
	def.SkillMultiplier = 3
	def.InstantValueOf = func(*preprocessing.DifficultyObject) float64 { return 1 }
	def.StrainScaleOf = func(*preprocessing.DifficultyObject) float64 { return 0.5 }

	skill := run(def, synthetic(0, 1000))

	// the instant term never accumulates
	assert.InDelta(t, (6+3)*0.5, skill.ObjectStrains()[0], 1e-12)
	assert.InDelta(t, (6*0.15+6+3)*0.5, skill.ObjectStrains()[1], 1e-12)
}

func TestDifficultyValue(t *testing.T) {
	table := tuning.Default()

	aim := &Definition{Skill: table.Aim}
	flashlight := &Definition{Skill: table.Flashlight}

	assert.Zero(t, aim.DifficultyValue(nil))
	assert.Zero(t, aim.DifficultyValue([]float64{0, 0}))

	// the top peak is reduced to the baseline
	assert.InDelta(t, 0.75*1.06, aim.DifficultyValue([]float64{1}), 1e-12)

	assert.InDelta(t, 6.0, flashlight.DifficultyValue([]float64{1, 2, 3}), 1e-12)

	// reduced peaks fall behind the untouched ones before weighting
	peaks := make([]float64, 30)
	reduced := make([]float64, 30)

	for i := range peaks {
		peaks[i] = 1
		reduced[i] = 1

		if i < 10 {
			reduced[i] = 0.75 + 0.25*math.Log10(1+9*float64(i)/10)
		}
	}

	slices.SortFunc(reduced, descending)

	expected := 0.0
	for i, r := range reduced {
		expected += r * math.Pow(0.9, float64(i))
	}

	assert.InDelta(t, expected*1.06, aim.DifficultyValue(peaks), 1e-9)
}

func TestDifficultyValueIsMonotonic(t *testing.T) {
	times := []float64{0, 150, 300, 420, 600, 900, 1000, 1300, 1750, 1800, 2400, 2500}
	base := []float64{1, 3, 2, 5, 1, 0, 4, 4, 2, 7, 1, 3}

	for _, skill := range []tuning.Skill{tuning.Default().Aim, tuning.Default().Speed, tuning.Default().Flashlight} {
		reference := run(tableDefinition(skill, base), synthetic(times...)).DifficultyValue()

		for i := range base {
			bumped := append([]float64(nil), base...)
			bumped[i] += 2

			value := run(tableDefinition(skill, bumped), synthetic(times...)).DifficultyValue()
			assert.GreaterOrEqual(t, value, reference, "bumped object %d", i)
		}
	}
}

func TestCountDifficultStrains(t *testing.T) {
	assert.Zero(t, countDifficultStrains([]float64{1, 2}, 0))

	// strains equal to the consistent top strain count about once each
	count := countDifficultStrains([]float64{1, 1, 1}, 10)
	assert.InDelta(t, 3*1.1/(1+math.Exp(-1.2)), count, 1e-12)
}

func TestRelevantNoteCount(t *testing.T) {
	skill := NewSpeedSkill(tuning.Default())
	assert.Zero(t, skill.RelevantNoteCount())

	skill.objectStrains = []float64{5, 5, 5, 5}
	assert.InDelta(t, 4/(1+math.Exp(-6)), skill.RelevantNoteCount(), 1e-12)

	skill.objectStrains = []float64{0, 0}
	assert.Zero(t, skill.RelevantNoteCount())
}

func stream(t *testing.T, d *difficulty.Difficulty, count int) []*preprocessing.DifficultyObject {
	t.Helper()

	hitObjects := make([]objects.IHitObject, count)
	for i := range hitObjects {
		hitObjects[i] = objects.NewCircle(float64(i)*120, mgl32.Vec2{float32(100 + (i%2)*120), float32(100 + (i%3)*40)})
	}

	diffObjects, err := preprocessing.CreateDifficultyObjects(context.Background(), hitObjects, d)
	require.NoError(t, err)

	return diffObjects
}

func TestSkillsIgnoreFirstObject(t *testing.T) {
	table := tuning.Default()

	d := difficulty.NewDifficulty(5, 4, 8, 9)
	d.SetMods(difficulty.Hidden | difficulty.Flashlight)

	first := stream(t, d, 5)[:1]

	strainSkills := []*StrainSkill{
		NewAimSkill(table, true),
		NewAimSkill(table, false),
		NewSpeedSkill(table).StrainSkill,
		NewFlashlightSkill(table),
		NewReadingLowARSkill(table),
		NewReadingHiddenSkill(table),
	}

	for _, skill := range strainSkills {
		skill.Process(first[0])

		assert.Equal(t, []float64{0}, skill.ObjectStrains(), skill.Definition.Name)
		assert.Zero(t, skill.DifficultyValue(), skill.Definition.Name)
	}

	highAR := NewReadingHighARSkill(table)
	highAR.Process(first[0])
	assert.Zero(t, highAR.DifficultyValue())
}

func TestConcreteSkills(t *testing.T) {
	table := tuning.Default()
	d := difficulty.NewDifficulty(5, 4, 8, 10)

	diffObjects := stream(t, d, 64)

	aim := NewAimSkill(table, true)
	speed := NewSpeedSkill(table)
	highAR := NewReadingHighARSkill(table)

	for _, o := range diffObjects {
		aim.Process(o)
		speed.Process(o)
		highAR.Process(o)
	}

	assert.Greater(t, aim.DifficultyValue(), 0.0)
	assert.Greater(t, speed.DifficultyValue(), 0.0)
	assert.Greater(t, speed.RelevantNoteCount(), 0.0)
	assert.Greater(t, aim.CountDifficultStrains(), 0.0)

	assert.Greater(t, highAR.DifficultyValue(), 0.0)
	assert.Len(t, highAR.GetCurrentStrainPeaks(), len(aim.GetCurrentStrainPeaks()))
	assert.Greater(t, highAR.CountDifficultStrains(), 0.0)

	var _ Skill = aim
	var _ Skill = speed
	var _ Skill = highAR
}

func TestPerformanceCurves(t *testing.T) {
	highAR := tuning.Default().ReadingHighAR

	assert.InDelta(t, 1e-5, DefaultDifficultyToPerformance(0), 1e-12)
	assert.Greater(t, DefaultDifficultyToPerformance(3), DefaultDifficultyToPerformance(2))
	assert.Equal(t, 100.0, FlashlightDifficultyToPerformance(2))
	assert.InDelta(t, 2.5, HighARPerformanceToDifficulty(HighARDifficultyToPerformance(2.5, highAR), highAR), 1e-9)
	assert.Greater(t, LowARDifficultyToPerformance(2), LowARDifficultyToPerformance(1))
	assert.Equal(t, 16.0, HiddenDifficultyToPerformance(1))
}
