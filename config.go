package markup

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-markup/internal/router"
)

// ErrCacheTTLInvalid indicates a negative detection-cache TTL.
var ErrCacheTTLInvalid = errors.New("markup config: detection cache TTL must be zero or positive")

// Config aggregates rollout, detection, and logging options for the
// conversion engine. The zero value is valid but keeps every caller on
// the legacy format; use DefaultConfig for a fully rolled out setup.
type Config struct {
	Rollout   RolloutConfig
	Detection DetectionConfig
	Logging   LoggingConfig
}

// DefaultConfig returns the recommended production defaults: structured
// format fully rolled out, default cloud suffixes, one-hour detection
// cache.
func DefaultConfig() Config {
	return Config{
		Rollout: RolloutConfig{Percentage: 100},
	}
}

// RolloutConfig gates the structured-document format per caller. It is
// re-exported at the facade so hosts never import internal packages.
type RolloutConfig = router.RolloutConfig

// DetectionConfig captures deployment-detection options.
type DetectionConfig struct {
	// CloudSuffixes overrides the known cloud-hosting domain suffixes.
	CloudSuffixes []string
	// CacheTTL bounds how long classifications are cached; zero selects
	// the default of one hour.
	CacheTTL time.Duration
}

// LoggingConfig selects the logger backend configuration used when the
// host does not supply its own provider.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
}

// Validate reports configuration faults that must fail fast at startup.
// Out-of-range rollout percentages are not faults; they clamp.
func (c Config) Validate() error {
	if c.Detection.CacheTTL < 0 {
		return ErrCacheTTLInvalid
	}
	return nil
}

// Environment variables recognized by ConfigFromEnv.
const (
	EnvADFDisabled       = "GOMARKUP_ADF_DISABLED"
	EnvADFEnabled        = "GOMARKUP_ADF_ENABLED"
	EnvRolloutPercentage = "GOMARKUP_ADF_ROLLOUT_PERCENTAGE"
	EnvIncludeUsers      = "GOMARKUP_ADF_INCLUDE_USERS"
	EnvExcludeUsers      = "GOMARKUP_ADF_EXCLUDE_USERS"
	EnvCloudSuffixes     = "GOMARKUP_CLOUD_SUFFIXES"
	EnvDetectionCacheTTL = "GOMARKUP_DETECTION_CACHE_TTL"
	EnvLogLevel          = "GOMARKUP_LOG_LEVEL"
	EnvLogFormat         = "GOMARKUP_LOG_FORMAT"
)

// ConfigFromEnv builds a Config from environment-style lookups. Invalid
// values degrade to their defaults rather than failing: rollout
// percentages clamp, unparseable TTLs fall back to the default window.
func ConfigFromEnv(getenv func(string) string) Config {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}

	cfg := Config{
		Rollout: RolloutConfig{
			DisableADF:   parseBool(getenv(EnvADFDisabled)),
			EnableADF:    parseBool(getenv(EnvADFEnabled)),
			Percentage:   router.ParsePercentage(getenv(EnvRolloutPercentage)),
			IncludeUsers: splitList(getenv(EnvIncludeUsers)),
			ExcludeUsers: splitList(getenv(EnvExcludeUsers)),
		},
		Detection: DetectionConfig{
			CloudSuffixes: splitList(getenv(EnvCloudSuffixes)),
		},
		Logging: LoggingConfig{
			Level:  getenv(EnvLogLevel),
			Format: getenv(EnvLogFormat),
		},
	}

	if raw := strings.TrimSpace(getenv(EnvDetectionCacheTTL)); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil && ttl > 0 {
			cfg.Detection.CacheTTL = ttl
		} else if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			cfg.Detection.CacheTTL = time.Duration(seconds) * time.Second
		}
	}

	return cfg
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
