package ranking

// Weights holds every tuning constant in the scoring model. The values
// are empirically chosen rather than derived, so they are exposed as
// configuration instead of being baked into the formulas; config can
// override any of them at startup or on hot reload.
type Weights struct {
	// Energy prediction: historical blend weight grows with sample
	// count, min(samples/BlendSamples, BlendCap).
	BlendSamples float64 `mapstructure:"blend_samples"`
	BlendCap     float64 `mapstructure:"blend_cap"`

	// Productivity level blend.
	ProductivityEnergyWeight float64 `mapstructure:"productivity_energy_weight"`
	ProductivityRecentWeight float64 `mapstructure:"productivity_recent_weight"`

	// Completion probability terms.
	EnergyMatchBonus float64 `mapstructure:"energy_match_bonus"` // up to this much for a perfect match
	KindRateSpan     float64 `mapstructure:"kind_rate_span"`     // (rate-0.5)*span → ±span/2
	HourRateSpan     float64 `mapstructure:"hour_rate_span"`
	DeferPenaltyStep float64 `mapstructure:"defer_penalty_step"`
	DeferPenaltyCap  float64 `mapstructure:"defer_penalty_cap"`
	QuickBonus       float64 `mapstructure:"quick_bonus"`
	DueSoonBonus     float64 `mapstructure:"due_soon_bonus"`  // within 4h
	DueTodayBonus    float64 `mapstructure:"due_today_bonus"` // within 24h
	ProbabilityFloor float64 `mapstructure:"probability_floor"`
	ProbabilityCeil  float64 `mapstructure:"probability_ceil"`

	// Priority score terms.
	ScoreBase           float64 `mapstructure:"score_base"` // multiplied by probability
	OverdueScoreBonus   float64 `mapstructure:"overdue_score_bonus"`
	DueSoonScoreBonus   float64 `mapstructure:"due_soon_score_bonus"`
	DueTodayScoreBonus  float64 `mapstructure:"due_today_score_bonus"`
	EnergyMatchScale    float64 `mapstructure:"energy_match_scale"`
	QuickWinBonus       float64 `mapstructure:"quick_win_bonus"`
	QuickWinEnergyBelow float64 `mapstructure:"quick_win_energy_below"`
	MomentumBonus       float64 `mapstructure:"momentum_bonus"`

	// Notification gating.
	FatigueCap      int     `mapstructure:"fatigue_cap"` // same-day completions+defers
	NotifyThreshold float64 `mapstructure:"notify_threshold"`
}

// DefaultWeights returns the production tuning values.
func DefaultWeights() Weights {
	return Weights{
		BlendSamples: 100,
		BlendCap:     0.7,

		ProductivityEnergyWeight: 0.6,
		ProductivityRecentWeight: 0.4,

		EnergyMatchBonus: 0.2,
		KindRateSpan:     0.4,
		HourRateSpan:     0.3,
		DeferPenaltyStep: 0.03,
		DeferPenaltyCap:  0.2,
		QuickBonus:       0.1,
		DueSoonBonus:     0.15,
		DueTodayBonus:    0.08,
		ProbabilityFloor: 0.10,
		ProbabilityCeil:  0.95,

		ScoreBase:           50,
		OverdueScoreBonus:   30,
		DueSoonScoreBonus:   25,
		DueTodayScoreBonus:  15,
		EnergyMatchScale:    10,
		QuickWinBonus:       10,
		QuickWinEnergyBelow: 60,
		MomentumBonus:       5,

		FatigueCap:      8,
		NotifyThreshold: 0.5,
	}
}
