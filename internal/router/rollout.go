package router

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-markup/internal/deploy"
	"github.com/goliatone/go-markup/internal/identity"
)

// Format identifies the output representation a conversion produced.
type Format string

const (
	// FormatADF is the structured document format for cloud deployments.
	FormatADF Format = "adf"
	// FormatStorage is the legacy HTML-like storage markup.
	FormatStorage Format = "storage"
	// FormatWiki is the legacy line-oriented wiki markup.
	FormatWiki Format = "wiki"
	// FormatPlainText is the guaranteed fallback carrying the input verbatim.
	FormatPlainText Format = "plain"
)

// ParseFormat normalizes a format string; anything unrecognized returns
// the empty Format, meaning "no forced override".
func ParseFormat(raw string) Format {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "adf", "structured":
		return FormatADF
	case "storage":
		return FormatStorage
	case "wiki":
		return FormatWiki
	case "plain", "text":
		return FormatPlainText
	default:
		return ""
	}
}

// RolloutConfig gates which callers receive the structured document format
// ahead of full availability. The zero value keeps every caller on the
// legacy path; environment-driven configuration defaults to a full
// rollout via ParsePercentage.
type RolloutConfig struct {
	// DisableADF forces the legacy path for every caller.
	DisableADF bool
	// EnableADF forces the structured path for every caller.
	EnableADF bool
	// Percentage is the staged rollout value in [0, 100]; values outside
	// the range are clamped.
	Percentage int
	// IncludeUsers always receive the structured format.
	IncludeUsers []string
	// ExcludeUsers always receive the legacy format.
	ExcludeUsers []string
}

// ParsePercentage interprets an environment-style rollout percentage.
// Non-numeric input means fully rolled out (100); numeric input is
// clamped into [0, 100]. Invalid configuration degrades, it never fails.
func ParsePercentage(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 100
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 100
	}
	return clampPercentage(value)
}

func clampPercentage(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

// Decide resolves the output format for one conversion. The boolean
// reports whether rollout configuration participated in the decision.
//
// Precedence, highest first: forced format, global disable, global
// enable, per-caller exclude, per-caller include, deterministic
// percentage. Non-cloud deployments always take the legacy path and
// never consult rollout configuration.
func Decide(classification deploy.Type, forced Format, cfg RolloutConfig, callerID string) (Format, bool) {
	if forced != "" {
		return forced, false
	}
	if classification != deploy.TypeCloud {
		return FormatWiki, false
	}

	if cfg.DisableADF {
		return FormatWiki, true
	}
	if cfg.EnableADF {
		return FormatADF, true
	}
	if containsFold(cfg.ExcludeUsers, callerID) {
		return FormatWiki, true
	}
	if containsFold(cfg.IncludeUsers, callerID) {
		return FormatADF, true
	}

	if identity.RolloutBucket(callerID) < clampPercentage(cfg.Percentage) {
		return FormatADF, true
	}
	return FormatWiki, true
}

func containsFold(list []string, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, candidate := range list {
		if strings.EqualFold(strings.TrimSpace(candidate), value) {
			return true
		}
	}
	return false
}
