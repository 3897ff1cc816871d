package preprocessing

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/beatmap/objects"
)

const (
	maximumSliderRadius = NormalizedRadius * 2.4
	assumedSliderRadius = NormalizedRadius * 1.8

	// tailLeniency is the offset of the legacy slider tail judgement from the slider end
	tailLeniency = -36.0
)

// LazySlider is a slider annotated with the path a lazy cursor takes to follow it
type LazySlider struct {
	*objects.Slider

	LazyEndPosition    mgl32.Vec2
	LazyTravelDistance float32
	LazyTravelTime     float64
}

func NewLazySlider(slider *objects.Slider, d *difficulty.Difficulty) *LazySlider {
	s := &LazySlider{Slider: slider}
	s.calculateLazyCursor(d)

	return s
}

// GetLength returns the pixel length of a single span
func (s *LazySlider) GetLength() float32 {
	return float32(s.PixelLength)
}

func (s *LazySlider) calculateLazyCursor(d *difficulty.Difficulty) {
	trackingEndTime := max(s.EndTime+tailLeniency, s.StartTime+s.GetDuration()/2)

	nested := make([]objects.ScorePoint, 0, len(s.ScorePoints)+1)
	nested = append(nested, objects.ScorePoint{Time: s.StartTime, Pos: s.StartPosition})

	lastTick := -1
	for i, p := range s.ScorePoints {
		if p.Kind == objects.Tick {
			lastTick = i
		}
	}

	if lastTick >= 0 && s.ScorePoints[lastTick].Time > trackingEndTime {
		trackingEndTime = s.ScorePoints[lastTick].Time

		// the last tick becomes the final movement target
		for i, p := range s.ScorePoints {
			if i != lastTick {
				nested = append(nested, p)
			}
		}

		nested = append(nested, s.ScorePoints[lastTick])
	} else {
		nested = append(nested, s.ScorePoints...)
	}

	s.LazyTravelTime = trackingEndTime - s.StartTime

	endProgress := 0.0
	if spanDuration := s.SpanDuration(); spanDuration > 0 {
		endProgress = s.LazyTravelTime / spanDuration
	}

	if math.Mod(endProgress, 2) >= 1 {
		endProgress = 1 - math.Mod(endProgress, 1)
	} else {
		endProgress = math.Mod(endProgress, 1)
	}

	s.LazyEndPosition = objects.StackedPosition(s.PositionAtProgress(endProgress), s.StackIndex, d)

	cursor := s.GetStackedStartPositionMod(d)
	scalingFactor := NormalizedRadius / float32(d.CircleRadiusU)

	for i := 1; i < len(nested); i++ {
		point := nested[i]

		movement := objects.StackedPosition(point.Pos, s.StackIndex, d).Sub(cursor)
		movementLength := scalingFactor * movement.Len()

		requiredMovement := float32(assumedSliderRadius)

		if i == len(nested)-1 {
			// the player takes whichever of the lazy end and the real end is closer
			lazyMovement := s.LazyEndPosition.Sub(cursor)
			if lazyMovement.Len() < movement.Len() {
				movement = lazyMovement
			}

			movementLength = scalingFactor * movement.Len()
		} else if point.Kind == objects.Repeat {
			requiredMovement = NormalizedRadius
		}

		if movementLength > requiredMovement {
			cursor = cursor.Add(movement.Mul((movementLength - requiredMovement) / movementLength))
			movementLength *= (movementLength - requiredMovement) / movementLength
			s.LazyTravelDistance += movementLength
		}

		if i == len(nested)-1 {
			s.LazyEndPosition = cursor
		}
	}
}
