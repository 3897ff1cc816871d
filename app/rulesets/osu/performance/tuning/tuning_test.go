package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	table := Default()

	assert.Equal(t, 25.18, table.Aim.SkillMultiplier)
	assert.Equal(t, 0.3, table.Speed.StrainDecayBase)
	assert.Equal(t, 5, table.Speed.ReducedSectionCount)
	assert.Equal(t, 1.0, table.Flashlight.DecayWeight)
	assert.Equal(t, 0.4, table.ReadingLowAR.AimComponentMultiplier)
	assert.Equal(t, 0.7, table.ReadingLowAR.ReducedStrainBaseline)
	assert.Equal(t, 280.0, table.ReadingHighAR.ComponentDefaultValue)
	assert.Equal(t, 0.0668, table.Star.StarScalingFactor)
	assert.NoError(t, table.Validate())
}

func TestDefaultReturnsCopy(t *testing.T) {
	a := Default()
	a.Aim.SkillMultiplier = 1

	assert.Equal(t, 25.18, Default().Aim.SkillMultiplier)
}

func TestParseOverlaysDefaults(t *testing.T) {
	table, err := Parse([]byte("aim:\n  skill_multiplier: 30\nspeed:\n  reduced_section_count: 8\n"))
	require.NoError(t, err)

	assert.Equal(t, 30.0, table.Aim.SkillMultiplier)
	assert.Equal(t, 0.15, table.Aim.StrainDecayBase)
	assert.Equal(t, 8, table.Speed.ReducedSectionCount)
	assert.Equal(t, 1.430, table.Speed.SkillMultiplier)
}

func TestParseRejectsInvalidTables(t *testing.T) {
	cases := []string{
		"aim:\n  strain_decay_base: 1.5\n",
		"speed:\n  section_length: 0\n",
		"flashlight:\n  decay_weight: 0\n",
		"reading_hidden:\n  reduced_section_count: -1\n",
		"reading_high_ar:\n  curve_power: 0\n",
		"star:\n  star_scaling_factor: 0\n",
		"aim:\n  section_length: 200\n",
		"speed:\n  section_length: 300\n",
	}

	for _, c := range cases {
		_, err := Parse([]byte(c))
		assert.ErrorIs(t, err, ErrInvalidTable, c)
	}

	_, err := Parse([]byte("aim: [1, 2"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reading_low_ar:\n  aim_component_multiplier: 0.5\n"), 0o644))

	table, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, table.ReadingLowAR.AimComponentMultiplier)
	assert.Equal(t, 1.23, table.ReadingLowAR.SkillMultiplier)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSharedSectionLength(t *testing.T) {
	data := "aim:\n  section_length: 200\nspeed:\n  section_length: 200\nflashlight:\n  section_length: 200\n" +
		"reading_low_ar:\n  section_length: 200\nreading_hidden:\n  section_length: 200\n"

	table, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, 200.0, table.Aim.SectionLength)
	assert.Equal(t, 200.0, table.ReadingHidden.SectionLength)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Default().Fingerprint(), Default().Fingerprint())
	assert.Len(t, Default().Fingerprint(), 16)

	tuned, err := Parse([]byte("aim:\n  skill_multiplier: 30\n"))
	require.NoError(t, err)
	assert.NotEqual(t, Default().Fingerprint(), tuned.Fingerprint())

	// an override equal to the default is the same table
	same, err := Parse([]byte("aim:\n  skill_multiplier: 25.18\n"))
	require.NoError(t, err)
	assert.Equal(t, Default().Fingerprint(), same.Fingerprint())
}
