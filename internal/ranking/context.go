package ranking

import (
	"time"

	"github.com/papapumpkin/orrery/internal/calendar"
)

// Level is the coarse four-band classification of the user's current
// capacity to act.
type Level string

// Productivity bands, lowest capacity first.
const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
	LevelPeak   Level = "peak"
)

// UserContext is the ephemeral context snapshot a ranking pass runs
// against. It is computed fresh per request and never persisted.
type UserContext struct {
	Now     time.Time    `json:"now"`
	Hour    int          `json:"hour"`
	Weekday time.Weekday `json:"weekday"`
	Weekend bool         `json:"weekend"`

	// Counts over the trailing two hours and the current calendar day.
	RecentCompleted int `json:"recent_completed"`
	RecentDeferred  int `json:"recent_deferred"`
	CompletedToday  int `json:"completed_today"`
	DeferredToday   int `json:"deferred_today"`

	Energy       float64         `json:"energy"` // 0–100
	Productivity Level           `json:"productivity"`
	Calendar     calendar.Signal `json:"calendar"`
}

// recentWindow is the lookback used for the short-term completion
// ratio feeding the productivity level.
const recentWindow = 2 * time.Hour

// productivityLevel combines normalized energy with the recent
// completion ratio and maps the blend onto four bands.
func productivityLevel(w Weights, energy float64, recentCompleted, recentDeferred int) Level {
	ratio := 0.5
	if total := recentCompleted + recentDeferred; total > 0 {
		ratio = float64(recentCompleted) / float64(total)
	}
	combined := w.ProductivityEnergyWeight*(energy/100) + w.ProductivityRecentWeight*ratio

	switch {
	case combined >= 0.8:
		return LevelPeak
	case combined >= 0.6:
		return LevelHigh
	case combined >= 0.4:
		return LevelMedium
	default:
		return LevelLow
	}
}
