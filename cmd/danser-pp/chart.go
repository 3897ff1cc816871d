package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/beatmap/objects"
)

var errInvalidChart = errors.New("invalid chart")

// chartFile is the JSON dump of a chart produced by the importer
type chartFile struct {
	ID string `json:"id"`

	HP float64 `json:"hp"`
	CS float64 `json:"cs"`
	OD float64 `json:"od"`
	AR float64 `json:"ar"`

	Objects []objectEntry `json:"objects"`
}

type objectEntry struct {
	Type     string  `json:"type"`
	Time     float64 `json:"time"`
	EndTime  float64 `json:"end_time"`
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Stack    int64   `json:"stack"`
	NewCombo bool    `json:"new_combo"`

	// slider only, Path starts at the slider head
	Path         [][2]float32 `json:"path"`
	Repeats      int          `json:"repeats"`
	TickInterval float64      `json:"tick_interval"`
}

type chart struct {
	ID string

	HP, CS, OD, AR float64

	Objects []objects.IHitObject
}

func loadChart(path string) (*chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chart: %w", err)
	}

	c, err := parseChart(data)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", path, err)
	}

	return c, nil
}

// parseChart decodes a chart dump. Charts without an id are identified by the hash of their contents.
func parseChart(data []byte) (*chart, error) {
	var file chartFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidChart, err)
	}

	c := &chart{
		ID: file.ID,
		HP: file.HP,
		CS: file.CS,
		OD: file.OD,
		AR: file.AR,
	}

	if c.ID == "" {
		sum := sha256.Sum256(data)
		c.ID = hex.EncodeToString(sum[:])
	}

	c.Objects = make([]objects.IHitObject, 0, len(file.Objects))

	for i, entry := range file.Objects {
		o, err := entry.toHitObject()
		if err != nil {
			return nil, fmt.Errorf("%w: object %d: %w", errInvalidChart, i, err)
		}

		c.Objects = append(c.Objects, o)
	}

	return c, nil
}

func (entry objectEntry) toHitObject() (objects.IHitObject, error) {
	switch entry.Type {
	case "circle":
		circle := objects.NewCircle(entry.Time, mgl32.Vec2{entry.X, entry.Y})
		circle.StackIndex = entry.Stack
		circle.NewCombo = entry.NewCombo

		return circle, nil
	case "slider":
		if len(entry.Path) < 2 {
			return nil, fmt.Errorf("slider at %.0fms needs at least 2 path points", entry.Time)
		}

		if entry.EndTime < entry.Time {
			return nil, fmt.Errorf("slider at %.0fms ends before it starts", entry.Time)
		}

		path := make([]mgl32.Vec2, len(entry.Path))
		for i, p := range entry.Path {
			path[i] = mgl32.Vec2{p[0], p[1]}
		}

		slider := objects.NewSlider(entry.Time, entry.EndTime, path, entry.Repeats, entry.TickInterval)
		slider.StackIndex = entry.Stack
		slider.NewCombo = entry.NewCombo

		return slider, nil
	case "spinner":
		if entry.EndTime < entry.Time {
			return nil, fmt.Errorf("spinner at %.0fms ends before it starts", entry.Time)
		}

		spinner := objects.NewSpinner(entry.Time, entry.EndTime)
		spinner.NewCombo = entry.NewCombo

		return spinner, nil
	default:
		return nil, fmt.Errorf("unknown object type %q", entry.Type)
	}
}

// newDifficulty creates the chart difficulty for mods. A positive speed overrides the clock rate of the mods.
func (c *chart) newDifficulty(mods difficulty.Modifier, speed float64) *difficulty.Difficulty {
	d := difficulty.NewDifficulty(c.HP, c.CS, c.OD, c.AR)
	d.SetMods(mods)

	if speed > 0 {
		d.SetCustomSpeed(speed)
	}

	return d
}
