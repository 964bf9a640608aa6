package util

import "math"

// Percentage watched/total*100，截断到 [0, 100]
func Percentage(watched, total float64) float64 {
	if total <= 0 || math.IsNaN(watched) || math.IsNaN(total) {
		return 0
	}
	return Clamp(watched*100/total, 0, 100)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
