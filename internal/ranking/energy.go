package ranking

// circadianBaseline is the fixed energy curve used when little or no
// behavioral history exists, indexed by hour of day on a 0–100 scale.
// The shape follows the common alertness pattern: a climb through the
// morning to a late-morning peak, a post-lunch dip, a modest afternoon
// recovery, and a steady decline into the night.
var circadianBaseline = [24]float64{
	25, // 00
	20, // 01
	15, // 02
	15, // 03
	20, // 04
	30, // 05
	45, // 06
	55, // 07
	65, // 08
	75, // 09
	80, // 10 — peak
	78, // 11
	65, // 12
	55, // 13 — post-lunch dip
	60, // 14
	65, // 15
	62, // 16
	58, // 17
	55, // 18
	50, // 19
	45, // 20
	40, // 21
	35, // 22
	30, // 23
}

// predictEnergy blends the historical completion rate for the hour with
// the circadian baseline. The historical side only earns weight as
// samples accumulate: weight = min(samples/BlendSamples, BlendCap), so
// a cold-start engine returns the baseline exactly. Result is clamped
// to [0, 100].
func predictEnergy(w Weights, hour int, hourRate float64, samples int) float64 {
	if hour < 0 {
		hour = 0
	}
	hour %= 24

	base := circadianBaseline[hour]
	weight := float64(samples) / w.BlendSamples
	if weight > w.BlendCap {
		weight = w.BlendCap
	}
	energy := weight*(hourRate*100) + (1-weight)*base
	return clamp(energy, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
