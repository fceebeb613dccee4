// Package config loads runtime configuration from .orrery.yaml,
// ORRERY_* env vars, and CLI flags, with built-in defaults for anything
// unset. The scoring weights live here too: they are empirically tuned
// values, so the config file is the place to retune them.
package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/papapumpkin/orrery/internal/ranking"
)

// Config holds all runtime configuration for an orrery session.
type Config struct {
	StorePath     string          `mapstructure:"store_path"`
	MySQLDSN      string          `mapstructure:"mysql_dsn"`
	TelemetryPath string          `mapstructure:"telemetry_path"`
	Verbose       bool            `mapstructure:"verbose"`
	Weights       ranking.Weights `mapstructure:"weights"`
}

// Load reads configuration from viper, applying built-in defaults for
// any values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("store_path", ".orrery/orrery.db")
	viper.SetDefault("mysql_dsn", "")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("verbose", false)
	setWeightDefaults(ranking.DefaultWeights())

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}

// Watch re-reads the config file whenever it changes and hands the
// fresh Config to onChange. Used to hot-reload scoring weights without
// restarting.
func Watch(onChange func(Config)) {
	viper.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return
		}
		onChange(cfg)
	})
	viper.WatchConfig()
}

// setWeightDefaults registers every tuning value under the weights.*
// keys so a config file can override any subset.
func setWeightDefaults(w ranking.Weights) {
	viper.SetDefault("weights.blend_samples", w.BlendSamples)
	viper.SetDefault("weights.blend_cap", w.BlendCap)
	viper.SetDefault("weights.productivity_energy_weight", w.ProductivityEnergyWeight)
	viper.SetDefault("weights.productivity_recent_weight", w.ProductivityRecentWeight)
	viper.SetDefault("weights.energy_match_bonus", w.EnergyMatchBonus)
	viper.SetDefault("weights.kind_rate_span", w.KindRateSpan)
	viper.SetDefault("weights.hour_rate_span", w.HourRateSpan)
	viper.SetDefault("weights.defer_penalty_step", w.DeferPenaltyStep)
	viper.SetDefault("weights.defer_penalty_cap", w.DeferPenaltyCap)
	viper.SetDefault("weights.quick_bonus", w.QuickBonus)
	viper.SetDefault("weights.due_soon_bonus", w.DueSoonBonus)
	viper.SetDefault("weights.due_today_bonus", w.DueTodayBonus)
	viper.SetDefault("weights.probability_floor", w.ProbabilityFloor)
	viper.SetDefault("weights.probability_ceil", w.ProbabilityCeil)
	viper.SetDefault("weights.score_base", w.ScoreBase)
	viper.SetDefault("weights.overdue_score_bonus", w.OverdueScoreBonus)
	viper.SetDefault("weights.due_soon_score_bonus", w.DueSoonScoreBonus)
	viper.SetDefault("weights.due_today_score_bonus", w.DueTodayScoreBonus)
	viper.SetDefault("weights.energy_match_scale", w.EnergyMatchScale)
	viper.SetDefault("weights.quick_win_bonus", w.QuickWinBonus)
	viper.SetDefault("weights.quick_win_energy_below", w.QuickWinEnergyBelow)
	viper.SetDefault("weights.momentum_bonus", w.MomentumBonus)
	viper.SetDefault("weights.fatigue_cap", w.FatigueCap)
	viper.SetDefault("weights.notify_threshold", w.NotifyThreshold)
}
