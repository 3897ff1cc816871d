// Package skills folds the difficulty object chain into per-section strain peaks
// and turns the peaks into difficulty values.
package skills

import (
	"math"
	"slices"

	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/preprocessing"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/tuning"
	"github.com/Givikap120/danser-pp/framework/math/mutils"
)

// Skill is a single aspect of difficulty evaluated over the difficulty object chain.
// A Skill is used for exactly one calculation.
type Skill interface {
	Process(current *preprocessing.DifficultyObject)
	DifficultyValue() float64
	GetCurrentStrainPeaks() []float64
	CountDifficultStrains() float64
}

type StrainFunc func(current *preprocessing.DifficultyObject) float64

// Definition describes a strain skill: its tuning and how a single object contributes strain.
//
// Per object the accumulated strain becomes strain*decay(Δt) + StrainValueOf*SkillMultiplier,
// and the strain of the object is (strain + InstantValueOf*SkillMultiplier) * StrainScaleOf.
type Definition struct {
	Name string
	tuning.Skill

	StrainValueOf StrainFunc

	// InstantValueOf is added to the object strain without accumulating, may be nil
	InstantValueOf StrainFunc

	// StrainScaleOf multiplies the object strain, may be nil
	StrainScaleOf StrainFunc
}

// State is the accumulator threaded through Definition.Step
type State struct {
	Started bool

	// Strain is the accumulated decaying strain
	Strain float64

	// ObjectStrain and Time belong to the last processed object
	ObjectStrain float64
	Time         float64

	SectionEnd  float64
	SectionPeak float64
}

func (def *Definition) StrainDecay(ms float64) float64 {
	return math.Pow(def.StrainDecayBase, ms/1000)
}

// Step folds current into state. Peaks of the sections that ended before current are appended to peaks.
// Sections are anchored at the time of the first object, so a chain spanning D milliseconds
// produces max(1, ceil(D / SectionLength)) peaks.
func (def *Definition) Step(state State, current *preprocessing.DifficultyObject, peaks []float64) (State, []float64) {
	if !state.Started {
		state.Started = true
		state.Time = current.StartTime
		state.SectionEnd = current.StartTime + def.SectionLength
	}

	for current.StartTime > state.SectionEnd {
		peaks = append(peaks, state.SectionPeak)

		// the next section starts from the previous strain decayed to the boundary
		state.SectionPeak = state.ObjectStrain * def.StrainDecay(state.SectionEnd-state.Time)
		state.SectionEnd += def.SectionLength
	}

	state.Strain = state.Strain*def.StrainDecay(current.DeltaTime) + def.StrainValueOf(current)*def.SkillMultiplier

	total := state.Strain

	if def.InstantValueOf != nil {
		total += def.InstantValueOf(current) * def.SkillMultiplier
	}

	if def.StrainScaleOf != nil {
		total *= def.StrainScaleOf(current)
	}

	state.ObjectStrain = total
	state.Time = current.StartTime
	state.SectionPeak = max(state.SectionPeak, total)

	return state, peaks
}

// StrainAt returns the strain of the last object decayed to the given time
func (def *Definition) StrainAt(state State, time float64) float64 {
	if !state.Started {
		return 0
	}

	return state.ObjectStrain * def.StrainDecay(time-state.Time)
}

// DifficultyValue reduces the top ReducedSectionCount peaks to suppress single spikes,
// then sums all peaks weighted by DecayWeight^i in descending order.
func (def *Definition) DifficultyValue(peaks []float64) float64 {
	strains := make([]float64, 0, len(peaks))
	for _, p := range peaks {
		if p > 0 {
			strains = append(strains, p)
		}
	}

	if len(strains) == 0 {
		return 0
	}

	slices.SortFunc(strains, descending)

	for i := 0; i < min(len(strains), def.ReducedSectionCount); i++ {
		scale := math.Log10(mutils.Lerp(1.0, 10.0, mutils.Clamp(float64(i)/float64(def.ReducedSectionCount), 0, 1)))
		strains[i] *= mutils.Lerp(def.ReducedStrainBaseline, 1.0, scale)
	}

	slices.SortFunc(strains, descending)

	difficulty := 0.0
	weight := 1.0

	for _, strain := range strains {
		difficulty += strain * weight
		weight *= def.DecayWeight
	}

	return difficulty * def.DifficultyMultiplier
}

func descending(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}

	return 0
}

// countDifficultStrains weighs object strains against the strain they would all have if they were equal
func countDifficultStrains(objectStrains []float64, difficulty float64) float64 {
	if difficulty == 0 {
		return 0
	}

	consistentTopStrain := difficulty / 10

	count := 0.0
	for _, s := range objectStrains {
		count += 1.1 / (1 + math.Exp(-10*(s/consistentTopStrain-0.88)))
	}

	return count
}

// StrainSkill is a Skill driven by a Definition
type StrainSkill struct {
	Definition *Definition

	state         State
	peaks         []float64
	objectStrains []float64
}

func NewStrainSkill(def *Definition) *StrainSkill {
	return &StrainSkill{Definition: def}
}

func (skill *StrainSkill) Process(current *preprocessing.DifficultyObject) {
	skill.state, skill.peaks = skill.Definition.Step(skill.state, current, skill.peaks)
	skill.objectStrains = append(skill.objectStrains, skill.state.ObjectStrain)
}

// GetCurrentStrainPeaks returns the completed section peaks followed by the peak of the current section
func (skill *StrainSkill) GetCurrentStrainPeaks() []float64 {
	if !skill.state.Started {
		return []float64{}
	}

	return append(slices.Clone(skill.peaks), skill.state.SectionPeak)
}

func (skill *StrainSkill) DifficultyValue() float64 {
	return skill.Definition.DifficultyValue(skill.GetCurrentStrainPeaks())
}

func (skill *StrainSkill) CountDifficultStrains() float64 {
	return countDifficultStrains(skill.objectStrains, skill.DifficultyValue())
}

func (skill *StrainSkill) ObjectStrains() []float64 {
	return skill.objectStrains
}

func (skill *StrainSkill) StrainAt(time float64) float64 {
	return skill.Definition.StrainAt(skill.state, time)
}
