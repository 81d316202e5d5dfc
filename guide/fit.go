package guide

import "time"

// FitRate computes the playback rate that makes a clip finish within a
// time budget. The clip is sped up so its effective duration ends at
// target*safety (slightly early), clamped to [1.0, maxRate] so speech
// stays intelligible and is never slowed down.
func FitRate(clip, target time.Duration, safety, maxRate float64) float64 {
	if clip <= 0 || target <= 0 {
		return 1.0
	}
	if safety <= 0 || safety > 1 {
		safety = 0.85
	}
	if maxRate < 1 {
		maxRate = 1
	}
	budget := time.Duration(float64(target) * safety)
	if budget <= 0 || clip <= budget {
		return 1.0
	}
	rate := float64(clip) / float64(budget)
	if rate > maxRate {
		return maxRate
	}
	return rate
}
