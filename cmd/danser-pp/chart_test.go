package main

import (
	"bytes"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wieku/rplpa"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/beatmap/objects"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/api"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/batch"
)

const sampleChart = `{
	"id": "sample",
	"hp": 5, "cs": 4, "od": 8, "ar": 9,
	"objects": [
		{"type": "circle", "time": 1000, "x": 100, "y": 100, "new_combo": true},
		{"type": "circle", "time": 1200, "x": 300, "y": 200, "stack": 1},
		{"type": "slider", "time": 1500, "end_time": 2000, "x": 100, "y": 100,
			"path": [[100, 100], [250, 100]], "repeats": 1, "tick_interval": 100},
		{"type": "spinner", "time": 3000, "end_time": 4500}
	]
}`

func TestParseChart(t *testing.T) {
	c, err := parseChart([]byte(sampleChart))
	require.NoError(t, err)

	assert.Equal(t, "sample", c.ID)
	assert.Equal(t, 8.0, c.OD)
	require.Len(t, c.Objects, 4)

	require.IsType(t, &objects.Circle{}, c.Objects[0])
	assert.True(t, c.Objects[0].(*objects.Circle).NewCombo)
	assert.Equal(t, int64(1), c.Objects[1].(*objects.Circle).StackIndex)

	require.IsType(t, &objects.Slider{}, c.Objects[2])
	assert.Equal(t, 2000.0, c.Objects[2].GetEndTime())

	require.IsType(t, &objects.Spinner{}, c.Objects[3])
	assert.Equal(t, 4500.0, c.Objects[3].GetEndTime())
}

func TestParseChartDefaultsIDToContentHash(t *testing.T) {
	data := []byte(`{"od": 5, "objects": [{"type": "circle", "time": 0}]}`)

	first, err := parseChart(data)
	require.NoError(t, err)
	assert.Len(t, first.ID, 64)

	second, err := parseChart(data)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := parseChart([]byte(`{"od": 6, "objects": [{"type": "circle", "time": 0}]}`))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestParseChartRejectsInvalidObjects(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"objects": [`,
		"unknown type":    `{"objects": [{"type": "hold", "time": 0}]}`,
		"short path":      `{"objects": [{"type": "slider", "time": 0, "end_time": 100, "path": [[0, 0]]}]}`,
		"backward slider": `{"objects": [{"type": "slider", "time": 100, "end_time": 0, "path": [[0, 0], [10, 0]]}]}`,
		"backward spin":   `{"objects": [{"type": "spinner", "time": 100, "end_time": 50}]}`,
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseChart([]byte(data))
			assert.ErrorIs(t, err, errInvalidChart)
		})
	}
}

func TestChartDifficulty(t *testing.T) {
	c, err := parseChart([]byte(sampleChart))
	require.NoError(t, err)

	d := c.newDifficulty(difficulty.DoubleTime, 0)
	assert.Equal(t, 1.5, d.Speed)

	d = c.newDifficulty(difficulty.DoubleTime, 1.2)
	assert.InDelta(t, 1.2, d.Speed, 1e-9)
}

func TestPlayFromReplay(t *testing.T) {
	replay := &rplpa.Replay{
		PlayMode:  0,
		Username:  "player",
		Count300:  180,
		Count100:  15,
		Count50:   3,
		CountMiss: 2,
		MaxCombo:  150,
		Mods:      uint32(difficulty.Hidden | difficulty.HardRock),
	}

	p, err := playFromReplay(replay)
	require.NoError(t, err)

	assert.Equal(t, "player", p.Player)
	assert.True(t, p.Mods.Active(difficulty.Hidden|difficulty.HardRock))
	assert.Equal(t, api.PerfScore{MaxCombo: 150, CountGreat: 180, CountOk: 15, CountMeh: 3, CountMiss: 2}, p.Score)

	replay.PlayMode = 3

	_, err = playFromReplay(replay)
	assert.ErrorIs(t, err, errUnsupportedMode)
}

func TestRenderOutput(t *testing.T) {
	attr := api.Attributes{
		Total:       6.4321,
		Aim:         3.25,
		Speed:       2.5,
		ObjectCount: 1234,
		MaxCombo:    1500,
		ClockRate:   1.5,
		Mods:        difficulty.DoubleTime,
	}

	var buf bytes.Buffer

	renderAttributes(&buf, attr)
	assert.Contains(t, buf.String(), "6.43")
	assert.Contains(t, buf.String(), "1,234")
	assert.Contains(t, buf.String(), "DT")

	buf.Reset()

	renderAttributes(&buf, api.Attributes{})
	assert.Contains(t, buf.String(), "NM")

	buf.Reset()

	ur := 105.81
	renderPerformance(&buf, api.PerfScore{MaxCombo: 1500, CountGreat: 1234}, api.PPv2Results{Aim: 150, Speed: 120, Total: 321.5, EstimatedUnstableRate: &ur})
	assert.Contains(t, buf.String(), "321.5")
	assert.Contains(t, buf.String(), "estimated UR 105.81")

	buf.Reset()

	renderBatch(&buf, []batch.Result{{ChartID: "sample", Attributes: attr, Cached: true}})
	assert.Contains(t, buf.String(), "sample")
	assert.Contains(t, buf.String(), "true")
}

func TestIsChartEvent(t *testing.T) {
	assert.True(t, isChartEvent(fsnotify.Event{Name: "maps/a.json", Op: fsnotify.Write}))
	assert.True(t, isChartEvent(fsnotify.Event{Name: "maps/a.JSON", Op: fsnotify.Create | fsnotify.Chmod}))
	assert.False(t, isChartEvent(fsnotify.Event{Name: "maps/a.osu", Op: fsnotify.Write}))
	assert.False(t, isChartEvent(fsnotify.Event{Name: "maps/a.json", Op: fsnotify.Remove}))
}
