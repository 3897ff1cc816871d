package mutils

import (
	"math"

	"golang.org/x/exp/constraints"
)

func Clamp[T constraints.Integer | constraints.Float](x, minV, maxV T) T {
	return min(maxV, max(minV, x))
}

func Lerp[T constraints.Float](min, max, t T) T {
	return min + (max-min)*t
}

// ReverseLerp returns where x lies between start and end, clamped to [0, 1].
func ReverseLerp[T constraints.Float](x, start, end T) T {
	if start == end {
		return 0
	}

	return Clamp((x-start)/(end-start), 0, 1)
}

func Logistic(x, midpointOffset, multiplier, maxValue float64) float64 {
	return maxValue / (1 + math.Exp(multiplier*(midpointOffset-x)))
}

// PowerMean is the p-norm of the given values: (sum v^p)^(1/p).
func PowerMean(p float64, values ...float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += math.Pow(v, p)
	}

	return math.Pow(sum, 1.0/p)
}
