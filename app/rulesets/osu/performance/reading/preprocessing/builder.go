package preprocessing

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/beatmap/objects"
)

// SortHitObjects returns a copy of hitObjects ordered by start time, keeping the original order of simultaneous objects
func SortHitObjects(hitObjects []objects.IHitObject) []objects.IHitObject {
	sorted := slices.Clone(hitObjects)

	slices.SortStableFunc(sorted, func(a, b objects.IHitObject) int {
		return cmp.Compare(a.GetStartTime(), b.GetStartTime())
	})

	return sorted
}

// CreateDifficultyObjects builds the difficulty chain for a chart.
// The first hit object has no predecessor and produces no DifficultyObject,
// so the result has len(hitObjects)-1 entries. The context is checked once per object.
func CreateDifficultyObjects(ctx context.Context, hitObjects []objects.IHitObject, d *difficulty.Difficulty) ([]*DifficultyObject, error) {
	if len(hitObjects) < 2 {
		return []*DifficultyObject{}, nil
	}

	sorted := SortHitObjects(hitObjects)

	for i, o := range sorted {
		if s, ok := o.(*objects.Slider); ok {
			sorted[i] = NewLazySlider(s, d)
		}
	}

	diffObjects := make([]*DifficultyObject, 0, len(sorted)-1)

	for i := 1; i < len(sorted); i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("create difficulty objects: %w", err)
		}

		var lastLast objects.IHitObject
		if i > 1 {
			lastLast = sorted[i-2]
		}

		diffObjects = append(diffObjects, NewDifficultyObject(sorted[i], lastLast, sorted[i-1], d, &diffObjects, i-1))
	}

	return diffObjects, nil
}
