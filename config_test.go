package markup

import (
	"errors"
	"testing"
	"time"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestValidate(t *testing.T) {
	if err := (Config{}).Validate(); err != nil {
		t.Fatalf("zero config must validate, got %v", err)
	}
	err := Config{Detection: DetectionConfig{CacheTTL: -time.Minute}}.Validate()
	if !errors.Is(err, ErrCacheTTLInvalid) {
		t.Fatalf("expected ErrCacheTTLInvalid, got %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Rollout.Percentage != 100 {
		t.Fatalf("expected full rollout, got %d", cfg.Rollout.Percentage)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg := ConfigFromEnv(envMap(nil))
	if cfg.Rollout.Percentage != 100 {
		t.Fatalf("expected unset percentage to mean 100, got %d", cfg.Rollout.Percentage)
	}
	if cfg.Rollout.DisableADF || cfg.Rollout.EnableADF {
		t.Fatalf("expected flags off by default")
	}
	if cfg.Detection.CacheTTL != 0 {
		t.Fatalf("expected zero TTL (default applies downstream), got %v", cfg.Detection.CacheTTL)
	}
}

func TestConfigFromEnvNilGetenv(t *testing.T) {
	cfg := ConfigFromEnv(nil)
	if cfg.Rollout.Percentage != 100 {
		t.Fatalf("expected defaults with nil getenv, got %d", cfg.Rollout.Percentage)
	}
}

func TestConfigFromEnvFullSet(t *testing.T) {
	cfg := ConfigFromEnv(envMap(map[string]string{
		EnvADFDisabled:       "true",
		EnvADFEnabled:        "1",
		EnvRolloutPercentage: "25",
		EnvIncludeUsers:      "alice, bob ,",
		EnvExcludeUsers:      "mallory",
		EnvCloudSuffixes:     ".corp.example.com, .cloud.example.org",
		EnvDetectionCacheTTL: "15m",
		EnvLogLevel:          "debug",
		EnvLogFormat:         "json",
	}))

	if !cfg.Rollout.DisableADF || !cfg.Rollout.EnableADF {
		t.Fatalf("expected both flags parsed, got %+v", cfg.Rollout)
	}
	if cfg.Rollout.Percentage != 25 {
		t.Fatalf("expected percentage 25, got %d", cfg.Rollout.Percentage)
	}
	if len(cfg.Rollout.IncludeUsers) != 2 || cfg.Rollout.IncludeUsers[1] != "bob" {
		t.Fatalf("expected trimmed include list, got %v", cfg.Rollout.IncludeUsers)
	}
	if len(cfg.Rollout.ExcludeUsers) != 1 {
		t.Fatalf("expected one excluded user, got %v", cfg.Rollout.ExcludeUsers)
	}
	if len(cfg.Detection.CloudSuffixes) != 2 {
		t.Fatalf("expected two suffixes, got %v", cfg.Detection.CloudSuffixes)
	}
	if cfg.Detection.CacheTTL != 15*time.Minute {
		t.Fatalf("expected 15m TTL, got %v", cfg.Detection.CacheTTL)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestConfigFromEnvTTLVariants(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"2h", 2 * time.Hour},
		{"900", 900 * time.Second},
		{"garbage", 0},
		{"-5m", 0},
		{"", 0},
	}
	for _, tc := range tests {
		cfg := ConfigFromEnv(envMap(map[string]string{EnvDetectionCacheTTL: tc.raw}))
		if cfg.Detection.CacheTTL != tc.want {
			t.Fatalf("TTL %q parsed to %v, want %v", tc.raw, cfg.Detection.CacheTTL, tc.want)
		}
	}
}

func TestConfigFromEnvPercentageClamping(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"0", 0},
		{"150", 100},
		{"-1", 0},
		{"abc", 100},
	}
	for _, tc := range tests {
		cfg := ConfigFromEnv(envMap(map[string]string{EnvRolloutPercentage: tc.raw}))
		if cfg.Rollout.Percentage != tc.want {
			t.Fatalf("percentage %q parsed to %d, want %d", tc.raw, cfg.Rollout.Percentage, tc.want)
		}
	}
}
