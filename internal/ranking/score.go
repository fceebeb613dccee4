package ranking

import (
	"math"
	"time"

	"github.com/papapumpkin/orrery/internal/task"
)

// Reason thresholds for the explanatory strings. These only gate which
// reasons appear; they never affect the numbers.
const (
	reasonProbabilityFloor = 0.7
	reasonEnergyMatchFloor = 0.8
	reasonDeferFloor       = 3
)

// RankedTask is one scored entry in a ranking result. Produced fresh
// per call, never stored.
type RankedTask struct {
	Task        task.Facts `json:"task"`
	Probability float64    `json:"probability"` // [0.10, 0.95]
	Score       float64    `json:"score"`       // [0, 100]
	Reasons     []string   `json:"reasons"`
}

// energyMatch returns how closely the task's declared energy level fits
// the user's current energy, 1 for a perfect match down to 0.
func energyMatch(f task.Facts, uc UserContext) float64 {
	diff := math.Abs(f.Energy.Norm() - uc.Energy/100)
	if diff > 1 {
		diff = 1
	}
	return 1 - diff
}

// deadline buckets.
type urgency int

const (
	urgencyNone urgency = iota
	urgencyToday
	urgencySoon
	urgencyOverdue
)

func deadlineUrgency(f task.Facts, now time.Time) urgency {
	if f.Deadline == nil {
		return urgencyNone
	}
	until := f.Deadline.Sub(now)
	switch {
	case until < 0:
		return urgencyOverdue
	case until <= 4*time.Hour:
		return urgencySoon
	case until <= 24*time.Hour:
		return urgencyToday
	default:
		return urgencyNone
	}
}

// completionProbability estimates how likely the user is to finish the
// task if they start it now. The estimate starts neutral and moves with
// the energy match, historical completion rates for the task's kind and
// the current hour, the task's defer streak, its size, and deadline
// pressure. The result is clamped away from both certainties.
func completionProbability(w Weights, f task.Facts, uc UserContext, kindRate, hourRate float64) float64 {
	p := 0.5

	p += energyMatch(f, uc) * w.EnergyMatchBonus
	p += (kindRate - 0.5) * w.KindRateSpan
	p += (hourRate - 0.5) * w.HourRateSpan

	penalty := w.DeferPenaltyStep * float64(f.DeferCount)
	if penalty > w.DeferPenaltyCap {
		penalty = w.DeferPenaltyCap
	}
	p -= penalty

	if f.Quick() {
		p += w.QuickBonus
	}

	switch deadlineUrgency(f, uc.Now) {
	case urgencyOverdue, urgencySoon:
		p += w.DueSoonBonus
	case urgencyToday:
		p += w.DueTodayBonus
	}

	return clamp(p, w.ProbabilityFloor, w.ProbabilityCeil)
}

// priorityScore converts the probability into a sortable 0–100 score
// with deadline, energy-match, quick-win, and momentum bonuses layered
// on top.
func priorityScore(w Weights, f task.Facts, uc UserContext, prob float64) float64 {
	s := w.ScoreBase * prob

	switch deadlineUrgency(f, uc.Now) {
	case urgencyOverdue:
		s += w.OverdueScoreBonus
	case urgencySoon:
		s += w.DueSoonScoreBonus
	case urgencyToday:
		s += w.DueTodayScoreBonus
	}

	s += energyMatch(f, uc) * w.EnergyMatchScale

	// Distinct from the probability-side quick bonus: rewards low-effort
	// action specifically during low-energy periods.
	if f.Quick() && uc.Energy < w.QuickWinEnergyBelow {
		s += w.QuickWinBonus
	}

	if uc.Productivity == LevelHigh || uc.Productivity == LevelPeak {
		s += w.MomentumBonus
	}

	return clamp(s, 0, 100)
}

// reasons builds the ordered human-readable justification list for a
// scored task. Purely explanatory.
func reasons(w Weights, f task.Facts, uc UserContext, prob float64) []string {
	var out []string
	if prob >= reasonProbabilityFloor {
		out = append(out, "High completion likelihood now")
	}
	if energyMatch(f, uc) >= reasonEnergyMatchFloor {
		out = append(out, "Matches current energy")
	}
	if f.Quick() && uc.Energy < w.QuickWinEnergyBelow {
		out = append(out, "Quick win")
	}
	switch deadlineUrgency(f, uc.Now) {
	case urgencyOverdue:
		out = append(out, "Overdue")
	case urgencySoon, urgencyToday:
		out = append(out, "Due soon")
	}
	if f.DeferCount >= reasonDeferFloor {
		out = append(out, "Been deferred multiple times")
	}
	return out
}
