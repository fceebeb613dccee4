package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"github.com/papapumpkin/orrery/internal/ranking"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg := Load()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"StorePath", cfg.StorePath, ".orrery/orrery.db"},
		{"MySQLDSN", cfg.MySQLDSN, ""},
		{"TelemetryPath", cfg.TelemetryPath, ""},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_WeightsDefaultToProduction(t *testing.T) {
	resetViper()

	cfg := Load()
	if cfg.Weights != ranking.DefaultWeights() {
		t.Errorf("Weights = %+v, want DefaultWeights", cfg.Weights)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "store_path",
			envKey: "ORRERY_STORE_PATH",
			envVal: "/tmp/orrery.db",
			field:  func(c Config) any { return c.StorePath },
			want:   "/tmp/orrery.db",
		},
		{
			name:   "mysql_dsn",
			envKey: "ORRERY_MYSQL_DSN",
			envVal: "root@tcp(127.0.0.1:3306)/orrery",
			field:  func(c Config) any { return c.MySQLDSN },
			want:   "root@tcp(127.0.0.1:3306)/orrery",
		},
		{
			name:   "verbose",
			envKey: "ORRERY_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			viper.SetEnvPrefix("ORRERY")
			viper.AutomaticEnv()

			os.Setenv(tt.envKey, tt.envVal)
			defer os.Unsetenv(tt.envKey)

			cfg := Load()
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_WeightOverride(t *testing.T) {
	resetViper()
	viper.Set("weights.quick_bonus", 0.25)
	viper.Set("weights.fatigue_cap", 12)

	cfg := Load()
	if cfg.Weights.QuickBonus != 0.25 {
		t.Errorf("QuickBonus = %v, want 0.25", cfg.Weights.QuickBonus)
	}
	if cfg.Weights.FatigueCap != 12 {
		t.Errorf("FatigueCap = %d, want 12", cfg.Weights.FatigueCap)
	}
	// Unset weights keep their defaults.
	if cfg.Weights.MomentumBonus != ranking.DefaultWeights().MomentumBonus {
		t.Errorf("MomentumBonus = %v, want default", cfg.Weights.MomentumBonus)
	}
}
