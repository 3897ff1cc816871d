package skills

import (
	"math"

	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/tuning"
)

// DefaultDifficultyToPerformance is the performance curve of aim and speed ratings
func DefaultDifficultyToPerformance(difficulty float64) float64 {
	return math.Pow(5.0*math.Max(1.0, difficulty/0.0675)-4.0, 3.0) / 100000.0
}

func FlashlightDifficultyToPerformance(difficulty float64) float64 {
	return 25 * difficulty * difficulty
}

func LowARDifficultyToPerformance(difficulty float64) float64 {
	return math.Max(
		math.Max(math.Pow(difficulty, 1.5)*20, math.Pow(difficulty, 2)*17.0),
		math.Max(math.Pow(difficulty, 3)*10.5, math.Pow(difficulty, 4)*6.00),
	)
}

func HiddenDifficultyToPerformance(difficulty float64) float64 {
	return math.Max(
		math.Max(difficulty*16, math.Pow(difficulty, 2)*10),
		math.Pow(difficulty, 3)*4,
	)
}

func HighARDifficultyToPerformance(difficulty float64, highAR tuning.HighAR) float64 {
	return math.Pow(difficulty, highAR.CurvePower) * highAR.CurveMultiplier
}

func HighARPerformanceToDifficulty(performance float64, highAR tuning.HighAR) float64 {
	return math.Pow(performance/highAR.CurveMultiplier, 1.0/highAR.CurvePower)
}
