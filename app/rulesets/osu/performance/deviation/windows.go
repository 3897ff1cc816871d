package deviation

import (
	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
)

// Windows describes judgement categories by the half-width (ms) of their hit windows, best first.
// Judgement counts have one more entry than Bounds, the last one holding misses.
type Windows struct {
	Bounds []float64

	// MissTimed is set when a miss means the hit landed outside the last window.
	// Otherwise misses carry no timing information and are left out of the fit.
	MissTimed bool
}

// Categories returns the number of judgement categories including misses
func (w Windows) Categories() int {
	return len(w.Bounds) + 1
}

// StandardWindows returns the 300/100/50 windows of osu!standard, adjusted by the clock rate
func StandardWindows(od, rate float64) Windows {
	return Windows{
		Bounds: []float64{
			difficulty.DifficultyRate(od, 80, 50, 20) / rate,
			difficulty.DifficultyRate(od, 140, 100, 60) / rate,
			difficulty.DifficultyRate(od, 200, 150, 100) / rate,
		},
	}
}

// ManiaWindows returns the MAX/300/200/100/50 windows of osu!mania, adjusted by the clock rate.
// Mania judges late presses inside the miss window, so misses are timed.
func ManiaWindows(od, rate float64) Windows {
	return Windows{
		Bounds: []float64{
			16 / rate,
			(64 - 3*od) / rate,
			(97 - 3*od) / rate,
			(127 - 3*od) / rate,
			(151 - 3*od) / rate,
		},
		MissTimed: true,
	}
}
