// Package tuning holds the constants of the difficulty and performance formulas,
// grouped per skill so they can be swapped without touching the algorithms.
package tuning

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var ErrInvalidTable = errors.New("invalid tuning table")

// Skill describes the strain accumulation and peak weighting of a single skill
type Skill struct {
	SkillMultiplier       float64 `yaml:"skill_multiplier"`
	StrainDecayBase       float64 `yaml:"strain_decay_base"`
	SectionLength         float64 `yaml:"section_length"`
	ReducedSectionCount   int     `yaml:"reduced_section_count"`
	ReducedStrainBaseline float64 `yaml:"reduced_strain_baseline"`
	DecayWeight           float64 `yaml:"decay_weight"`
	DifficultyMultiplier  float64 `yaml:"difficulty_multiplier"`
}

type LowAR struct {
	Skill                  `yaml:",inline"`
	AimComponentMultiplier float64 `yaml:"aim_component_multiplier"`
}

// HighAR holds the high AR curve. Its aim and speed components use the Aim and Speed tables.
type HighAR struct {
	ComponentDefaultValue float64 `yaml:"component_default_value"`
	CurvePower            float64 `yaml:"curve_power"`
	CurveMultiplier       float64 `yaml:"curve_multiplier"`
	MechanicalPPPower     float64 `yaml:"mechanical_pp_power"`
}

// Star holds the constants used to combine skill ratings into the star rating
type Star struct {
	StarScalingFactor         float64 `yaml:"star_scaling_factor"`
	PerformanceBaseMultiplier float64 `yaml:"performance_base_multiplier"`
	MechanicalSumPower        float64 `yaml:"mechanical_sum_power"`
	ReadingSumPower           float64 `yaml:"reading_sum_power"`
	CognitionSumPower         float64 `yaml:"cognition_sum_power"`
	StarRatingMultiplier      float64 `yaml:"star_rating_multiplier"`
	StarRatingOffset          float64 `yaml:"star_rating_offset"`
	TouchDevicePower          float64 `yaml:"touch_device_power"`
	CognitionCapOffset        float64 `yaml:"cognition_cap_offset"`
}

type Table struct {
	Star Star `yaml:"star"`

	Aim           Skill  `yaml:"aim"`
	Speed         Skill  `yaml:"speed"`
	Flashlight    Skill  `yaml:"flashlight"`
	ReadingLowAR  LowAR  `yaml:"reading_low_ar"`
	ReadingHidden Skill  `yaml:"reading_hidden"`
	ReadingHighAR HighAR `yaml:"reading_high_ar"`
}

var defaultTable = mustParseDefaults()

func mustParseDefaults() Table {
	var table Table
	if err := yaml.Unmarshal(defaultsYAML, &table); err != nil {
		panic(fmt.Sprintf("tuning: broken embedded defaults: %v", err))
	}

	if err := table.Validate(); err != nil {
		panic(fmt.Sprintf("tuning: broken embedded defaults: %v", err))
	}

	return table
}

// Default returns a copy of the embedded default table
func Default() *Table {
	table := defaultTable
	return &table
}

// Load reads a YAML file on top of the default table. Keys missing from the file keep their default values.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tuning table: %w", err)
	}

	return Parse(data)
}

// Parse overlays YAML data on top of the default table
func Parse(data []byte) (*Table, error) {
	table := Default()

	if err := yaml.Unmarshal(data, table); err != nil {
		return nil, fmt.Errorf("parse tuning table: %w", err)
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}

	return table, nil
}

// Fingerprint identifies the values of the table, equal tables share a fingerprint
func (t *Table) Fingerprint() string {
	data, err := yaml.Marshal(t)
	if err != nil {
		panic(fmt.Sprintf("tuning: marshal table: %v", err))
	}

	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:8])
}

func (t *Table) Validate() error {
	skills := map[string]Skill{
		"aim":            t.Aim,
		"speed":          t.Speed,
		"flashlight":     t.Flashlight,
		"reading_low_ar": t.ReadingLowAR.Skill,
		"reading_hidden": t.ReadingHidden,
	}

	for name, s := range skills {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidTable, name, err)
		}

		// strain peaks of all skills are combined section by section
		if s.SectionLength != t.Aim.SectionLength {
			return fmt.Errorf("%w: %s: section_length %g differs from aim section_length %g", ErrInvalidTable, name, s.SectionLength, t.Aim.SectionLength)
		}
	}

	if t.ReadingHighAR.CurvePower <= 0 || t.ReadingHighAR.CurveMultiplier <= 0 || t.ReadingHighAR.MechanicalPPPower <= 0 {
		return fmt.Errorf("%w: reading_high_ar: curve constants must be positive", ErrInvalidTable)
	}

	if t.Star.StarScalingFactor <= 0 || t.Star.MechanicalSumPower <= 0 || t.Star.ReadingSumPower <= 0 || t.Star.CognitionSumPower <= 0 {
		return fmt.Errorf("%w: star: scaling factor and sum powers must be positive", ErrInvalidTable)
	}

	return nil
}

func (s Skill) Validate() error {
	switch {
	case s.StrainDecayBase <= 0 || s.StrainDecayBase >= 1:
		return errors.New("strain_decay_base must be in (0, 1)")
	case s.SectionLength <= 0:
		return errors.New("section_length must be positive")
	case s.ReducedSectionCount < 0:
		return errors.New("reduced_section_count can't be negative")
	case s.ReducedStrainBaseline <= 0 || s.ReducedStrainBaseline > 1:
		return errors.New("reduced_strain_baseline must be in (0, 1]")
	case s.DecayWeight <= 0 || s.DecayWeight > 1:
		return errors.New("decay_weight must be in (0, 1]")
	case s.DifficultyMultiplier < 0 || s.SkillMultiplier < 0:
		return errors.New("multipliers can't be negative")
	}

	return nil
}
