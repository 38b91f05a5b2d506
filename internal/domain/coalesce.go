package domain

import "math"

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// SafeFloat coerces NaN and ±Inf to 0. Every numeric signal entering the
// blender passes through here first.
func SafeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// SafeNonNeg coerces NaN, ±Inf and negative values to 0.
func SafeNonNeg(v float64) float64 {
	v = SafeFloat(v)
	if v < 0 {
		return 0
	}
	return v
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v into [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}
