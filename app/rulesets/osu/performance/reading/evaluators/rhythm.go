package evaluators

import (
	"math"

	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading/preprocessing"
)

const (
	rhythmHistoryTimeMax    = 5000.0
	rhythmHistoryObjectsMax = 32
	rhythmMultiplier        = 0.75
	maxIslandSize           = 7
)

// EvaluateRhythm returns a multiplier of at least 1 rewarding rhythm changes in the last few seconds.
// Spinners and the first object return 0.
func EvaluateRhythm(current *preprocessing.DifficultyObject) float64 {
	if current.Index == 0 || current.IsSpinner {
		return 0
	}

	rhythmComplexitySum := 0.0

	islandSize := 1
	previousIslandSize := 0

	startRatio := 0.0
	firstDeltaSwitch := false

	historicalNoteCount := min(current.Index, rhythmHistoryObjectsMax)

	rhythmStart := 0
	for rhythmStart < historicalNoteCount-2 && current.StartTime-current.Previous(rhythmStart).StartTime < rhythmHistoryTimeMax {
		rhythmStart++
	}

	// from the furthest object towards the current one
	for i := rhythmStart; i > 0; i-- {
		currObj := current.Previous(i - 1)
		prevObj := current.Previous(i)
		lastObj := current.Previous(i + 1)

		// 0 to 1 from history to now, limited by either time or object count
		historicalDecay := (rhythmHistoryTimeMax - (current.StartTime - currObj.StartTime)) / rhythmHistoryTimeMax
		historicalDecay = math.Min(float64(historicalNoteCount-i)/float64(historicalNoteCount), historicalDecay)

		currDelta := currObj.StrainTime
		prevDelta := prevObj.StrainTime
		lastDelta := lastObj.StrainTime

		currRatio := 1.0 + 6.0*math.Min(0.5, math.Pow(math.Sin(math.Pi/(math.Min(prevDelta, currDelta)/math.Max(prevDelta, currDelta))), 2))

		window := currObj.GreatWindow * 0.3
		windowPenalty := math.Min(1, math.Max(0, math.Abs(prevDelta-currDelta)-window)/window)

		effectiveRatio := windowPenalty * currRatio

		if firstDeltaSwitch {
			if !(prevDelta > 1.25*currDelta || prevDelta*1.25 < currDelta) {
				if islandSize < maxIslandSize {
					islandSize++
				}
			} else {
				// a change into a slider has an easy acc window
				if currObj.IsSlider {
					effectiveRatio *= 0.125
				}

				// a change out of a slider is easier than circle to circle
				if prevObj.IsSlider {
					effectiveRatio *= 0.25
				}

				// repeated island size, i.e. triplet to triplet
				if previousIslandSize == islandSize {
					effectiveRatio *= 0.25
				}

				// repeated island polarity, i.e. 2 to 4 or 3 to 5
				if previousIslandSize%2 == islandSize%2 {
					effectiveRatio *= 0.50
				}

				// 1/1 to 1/2 to 1/4 in consecutive notes
				if lastDelta > prevDelta+10 && prevDelta > currDelta+10 {
					effectiveRatio *= 0.125
				}

				rhythmComplexitySum += math.Sqrt(effectiveRatio*startRatio) * historicalDecay * math.Sqrt(float64(4+islandSize)) / 2 * math.Sqrt(float64(4+previousIslandSize)) / 2

				startRatio = effectiveRatio
				previousIslandSize = islandSize

				// slowing down ends the island
				if prevDelta*1.25 < currDelta {
					firstDeltaSwitch = false
				}

				islandSize = 1
			}
		} else if prevDelta > 1.25*currDelta {
			// speeding up starts a new island
			firstDeltaSwitch = true
			startRatio = effectiveRatio
			islandSize = 1
		}
	}

	return math.Sqrt(4+rhythmComplexitySum*rhythmMultiplier) / 2
}
