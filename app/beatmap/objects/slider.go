package objects

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
)

type ScorePointKind int

const (
	Tick ScorePointKind = iota
	Repeat
	Tail
)

// ScorePoint is a nested slider object (tick, repeat or tail) awarding combo
type ScorePoint struct {
	Time float64
	Pos  mgl32.Vec2
	Kind ScorePointKind
}

type Slider struct {
	HitObject

	// Path is the flattened curve in playfield coordinates, starting at StartPosition
	Path []mgl32.Vec2

	// RepeatCount is the number of spans, 1 for a slider without repeats
	RepeatCount int

	PixelLength float64

	ScorePoints []ScorePoint

	cumulativeLengths []float64
}

// NewSlider builds a slider from a flattened path and expands its nested score points.
// tickInterval <= 0 produces no ticks.
func NewSlider(startTime, endTime float64, path []mgl32.Vec2, repeatCount int, tickInterval float64) *Slider {
	repeatCount = max(1, repeatCount)

	s := &Slider{
		HitObject: HitObject{
			StartTime: startTime,
			EndTime:   endTime,
		},
		Path:        path,
		RepeatCount: repeatCount,
	}

	s.calculateLengths()

	s.StartPosition = s.PositionAtProgress(0)
	s.EndPosition = s.PositionAtProgress(float64(repeatCount % 2))

	s.generateScorePoints(tickInterval)

	return s
}

func (s *Slider) calculateLengths() {
	s.cumulativeLengths = make([]float64, len(s.Path))

	for i := 1; i < len(s.Path); i++ {
		s.cumulativeLengths[i] = s.cumulativeLengths[i-1] + float64(s.Path[i].Sub(s.Path[i-1]).Len())
	}

	if len(s.cumulativeLengths) > 0 {
		s.PixelLength = s.cumulativeLengths[len(s.cumulativeLengths)-1]
	}
}

func (s *Slider) generateScorePoints(tickInterval float64) {
	spanDuration := s.SpanDuration()

	for span := 0; span < s.RepeatCount; span++ {
		spanStart := s.StartTime + float64(span)*spanDuration

		if tickInterval > 0 && spanDuration > 0 {
			// ticks too close to the span end are skipped like in stable
			for t := tickInterval; t < spanDuration-10; t += tickInterval {
				progress := t / spanDuration
				if span%2 == 1 {
					progress = 1 - progress
				}

				s.ScorePoints = append(s.ScorePoints, ScorePoint{
					Time: spanStart + t,
					Pos:  s.PositionAtProgress(progress),
					Kind: Tick,
				})
			}
		}

		if span < s.RepeatCount-1 {
			s.ScorePoints = append(s.ScorePoints, ScorePoint{
				Time: spanStart + spanDuration,
				Pos:  s.PositionAtProgress(float64((span + 1) % 2)),
				Kind: Repeat,
			})
		}
	}

	s.ScorePoints = append(s.ScorePoints, ScorePoint{
		Time: s.EndTime,
		Pos:  s.EndPosition,
		Kind: Tail,
	})
}

func (s *Slider) SpanDuration() float64 {
	return (s.EndTime - s.StartTime) / float64(max(1, s.RepeatCount))
}

// PositionAtProgress returns the point at the given fraction of the path length
func (s *Slider) PositionAtProgress(progress float64) mgl32.Vec2 {
	if len(s.Path) == 0 {
		return s.StartPosition
	}

	if len(s.Path) == 1 || s.PixelLength == 0 {
		return s.Path[0]
	}

	progress = math.Max(0, math.Min(1, progress))
	target := progress * s.PixelLength

	for i := 1; i < len(s.Path); i++ {
		if s.cumulativeLengths[i] < target {
			continue
		}

		segLength := s.cumulativeLengths[i] - s.cumulativeLengths[i-1]
		if segLength == 0 {
			return s.Path[i]
		}

		t := float32((target - s.cumulativeLengths[i-1]) / segLength)

		return s.Path[i-1].Add(s.Path[i].Sub(s.Path[i-1]).Mul(t))
	}

	return s.Path[len(s.Path)-1]
}

// PositionAt returns the slider ball position at the given time, following repeats
func (s *Slider) PositionAt(time float64) mgl32.Vec2 {
	spanDuration := s.SpanDuration()
	if spanDuration <= 0 {
		return s.StartPosition
	}

	t := math.Max(0, math.Min(time, s.EndTime)-s.StartTime) / spanDuration
	span := math.Floor(t)
	progress := t - span

	if span >= float64(s.RepeatCount) {
		span = float64(s.RepeatCount - 1)
		progress = 1
	}

	if int(span)%2 == 1 {
		progress = 1 - progress
	}

	return s.PositionAtProgress(progress)
}

func (s *Slider) GetStackedPositionAtMod(time float64, d *difficulty.Difficulty) mgl32.Vec2 {
	return StackedPosition(s.PositionAt(time), s.StackIndex, d)
}
