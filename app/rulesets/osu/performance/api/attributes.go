package api

import (
	"context"
	"errors"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/beatmap/objects"
)

// ErrInvalidJudgements is returned when judgement counts are negative or exceed the object count
var ErrInvalidJudgements = errors.New("invalid judgement counts")

type Attributes struct {
	// Version of the calculator that produced these attributes
	Version int

	// Mods and ClockRate the attributes were calculated with
	Mods      difficulty.Modifier
	ClockRate float64

	// Total Star rating, visible on osu!'s beatmap page
	Total float64

	// Aim stars, needed for Performance Points (aka PP) calculations
	Aim float64

	// Speed stars, needed for Performance Points (aka PP) calculations
	Speed float64

	SpeedNoteCount float64

	AimDifficultStrainCount   float64
	SpeedDifficultStrainCount float64

	// Flashlight stars, needed for Performance Points (aka PP) calculations
	Flashlight float64

	// SliderFactor is a ratio of Aim calculated without sliders to Aim with them
	SliderFactor float64

	ReadingDifficultyLowAR  float64
	ReadingDifficultyHighAR float64
	HiddenDifficulty        float64

	LowArDifficultStrainCount  float64
	HiddenDifficultStrainCount float64

	// Rate adjusted approach rate and overall difficulty
	ApproachRate      float64
	OverallDifficulty float64

	ObjectCount int
	Circles     int
	Sliders     int
	Spinners    int
	MaxCombo    int
}

// StrainPeaks contains peaks of Aim, Speed and Flashlight skills, as well as peaks passed through star rating formula
type StrainPeaks struct {
	// Aim peaks
	Aim []float64

	// Speed peaks
	Speed []float64

	// Flashlight peaks
	Flashlight []float64

	ReadingLowAR  []float64
	ReadingHighAR []float64
	ReadingHidden []float64

	// Total contains aim, speed and flashlight peaks passed through star rating formula
	Total []float64
}

// PerfScore holds the judgement counts and combo of a single play
type PerfScore struct {
	MaxCombo int

	CountGreat int
	CountOk    int
	CountMeh   int
	CountMiss  int
}

func (s PerfScore) TotalHits() int {
	return s.CountGreat + s.CountOk + s.CountMeh + s.CountMiss
}

// Accuracy is the standard 300/100/50 weighted accuracy in the range [0, 1]
func (s PerfScore) Accuracy() float64 {
	total := s.TotalHits()
	if total == 0 {
		return 0
	}

	return float64(s.CountGreat*300+s.CountOk*100+s.CountMeh*50) / float64(total*300)
}

// Validate checks that counts are non-negative and don't exceed the scorable object count
func (s PerfScore) Validate(objectCount int) error {
	if s.CountGreat < 0 || s.CountOk < 0 || s.CountMeh < 0 || s.CountMiss < 0 {
		return ErrInvalidJudgements
	}

	if s.TotalHits() > objectCount {
		return ErrInvalidJudgements
	}

	return nil
}

type PPv2Results struct {
	Aim, Speed, Acc, Flashlight, Reading, Total float64

	// SpeedDeviation is the estimated standard deviation of hit errors in ms, nil when it can't be estimated
	SpeedDeviation *float64

	// EstimatedUnstableRate is SpeedDeviation * 10
	EstimatedUnstableRate *float64

	EffectiveMissCount float64
}

type IDifficultyCalculator interface {
	CalculateSingle(ctx context.Context, objects []objects.IHitObject, diff *difficulty.Difficulty) (Attributes, error)
	CalculateStep(ctx context.Context, objects []objects.IHitObject, diff *difficulty.Difficulty) ([]Attributes, error)
	CalculateStrainPeaks(ctx context.Context, objects []objects.IHitObject, diff *difficulty.Difficulty) (StrainPeaks, error)
	GetVersion() int
	GetVersionMessage() string

	// GetTuningFingerprint identifies the constants the calculator rates with
	GetTuningFingerprint() string
}

type IPerformanceCalculator interface {
	Calculate(ctx context.Context, attribs Attributes, score PerfScore, diff *difficulty.Difficulty) (PPv2Results, error)
}
