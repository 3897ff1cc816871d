// Package deviation estimates the spread of a player's hit errors from judgement counts.
//
// Hit errors are modelled as a zero-mean normal distribution. A count in category k
// means the error fell between Bounds[k-1] and Bounds[k], and the deviation is the
// maximum likelihood fit of those interval counts.
package deviation

import (
	"context"
	"errors"
	"fmt"
	"math"
)

const (
	MinDeviation = 1e-3

	// MaxDeviation bounds the estimate, which is an unstable rate of 10000
	MaxDeviation = 1000.0

	// pseudoCount is added to the second category so a perfect play still has a finite estimate
	pseudoCount = 0.5

	tolerance     = 1e-7
	maxIterations = 100
)

var (
	ErrInvalidCounts  = errors.New("invalid judgement counts")
	ErrInvalidWindows = errors.New("invalid hit windows")
)

// UnstableRate converts a deviation to unstable rate
func UnstableRate(deviation float64) float64 {
	return deviation * 10
}

// Estimate returns the deviation (ms) that best explains counts under windows.
// It returns nil when one object or less was judged, or when no judgement carries timing information.
// The estimate is clamped to [MinDeviation, MaxDeviation].
func Estimate(ctx context.Context, counts []int, windows Windows) (*float64, error) {
	if err := validate(counts, windows); err != nil {
		return nil, err
	}

	total := 0
	timed := 0

	for k, c := range counts {
		total += c

		if k < len(windows.Bounds) || windows.MissTimed {
			timed += c
		}
	}

	if total <= 1 || timed == 0 {
		return nil, nil
	}

	weights := make([]float64, len(counts))
	for k, c := range counts {
		weights[k] = float64(c)
	}

	if len(windows.Bounds) > 1 {
		weights[1] += pseudoCount
	}

	m := model{weights: weights, windows: windows}

	deviation, err := m.solve(ctx)
	if err != nil {
		return nil, err
	}

	return &deviation, nil
}

// EstimateUnstableRate is Estimate converted to unstable rate
func EstimateUnstableRate(ctx context.Context, counts []int, windows Windows) (*float64, error) {
	deviation, err := Estimate(ctx, counts, windows)
	if err != nil || deviation == nil {
		return nil, err
	}

	ur := UnstableRate(*deviation)

	return &ur, nil
}

func validate(counts []int, windows Windows) error {
	if len(windows.Bounds) == 0 {
		return fmt.Errorf("%w: no windows", ErrInvalidWindows)
	}

	for i, b := range windows.Bounds {
		if b <= 0 || (i > 0 && b <= windows.Bounds[i-1]) {
			return fmt.Errorf("%w: bounds must be positive and ascending, got %v", ErrInvalidWindows, windows.Bounds)
		}
	}

	if len(counts) != windows.Categories() {
		return fmt.Errorf("%w: expected %d categories, got %d", ErrInvalidCounts, windows.Categories(), len(counts))
	}

	for _, c := range counts {
		if c < 0 {
			return fmt.Errorf("%w: negative count in %v", ErrInvalidCounts, counts)
		}
	}

	return nil
}

type model struct {
	weights []float64
	windows Windows
}

// solve bisects on the sign of the log-likelihood gradient, which is positive below the estimate
func (m model) solve(ctx context.Context) (float64, error) {
	lo, hi := MinDeviation, MaxDeviation

	if m.gradient(hi) > 0 {
		return hi, nil
	}

	if m.gradient(lo) < 0 {
		return lo, nil
	}

	for i := 0; i < maxIterations && hi-lo > tolerance; i++ {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("estimate deviation: %w", err)
		}

		mid := (lo + hi) / 2

		if m.gradient(mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}

	return (lo + hi) / 2, nil
}

// gradient is the derivative of the log-likelihood with respect to the deviation
func (m model) gradient(deviation float64) float64 {
	bounds := m.windows.Bounds
	last := len(bounds)

	g := 0.0
	timedWeight := 0.0

	for k, w := range m.weights {
		if w == 0 || (k == last && !m.windows.MissTimed) {
			continue
		}

		var p, dp float64

		switch k {
		case 0:
			p = math.Erf(bounds[0] / (deviation * math.Sqrt2))
			dp = -density(bounds[0], deviation)
		case last:
			p = math.Erfc(bounds[last-1] / (deviation * math.Sqrt2))
			dp = density(bounds[last-1], deviation)
		default:
			// erfc differences keep precision when both bounds are far in the tail
			p = math.Erfc(bounds[k-1]/(deviation*math.Sqrt2)) - math.Erfc(bounds[k]/(deviation*math.Sqrt2))
			dp = density(bounds[k-1], deviation) - density(bounds[k], deviation)
		}

		// the category can't be reached yet, so the deviation has to grow
		if p <= 0 {
			return math.Inf(1)
		}

		g += w * dp / p
		timedWeight += w
	}

	if !m.windows.MissTimed {
		// probabilities are conditional on the object being hit
		g += timedWeight * density(bounds[last-1], deviation) / math.Erf(bounds[last-1]/(deviation*math.Sqrt2))
	}

	return g
}

// density is the derivative of P(|X| > h) with respect to the deviation d for X ~ N(0, d²)
func density(h, d float64) float64 {
	return math.Sqrt(2/math.Pi) * h / (d * d) * math.Exp(-h*h/(2*d*d))
}
