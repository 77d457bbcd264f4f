package features

import "math"

// clamp bounds v into [min, max]. NaN and infinities collapse to the neutral
// midpoint so a bad upstream aggregate can never poison a vector.
func clamp(v, min, max float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return (min + max) / 2
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// safeRatio divides a by b, returning 0 when b is zero.
func safeRatio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// positionScore maps a league position to [0,1] where 1 is first place.
// Unknown positions (0) map to 0.5.
func positionScore(position, tableSize int) float64 {
	if position <= 0 || tableSize <= 1 {
		return 0.5
	}
	return clamp(1-float64(position-1)/float64(tableSize-1), 0, 1)
}

// formScore maps last-five form points (0..15) to [0,1].
func formScore(points int) float64 {
	return clamp(float64(points)/15.0, 0, 1)
}
