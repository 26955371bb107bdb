package router

import (
	"testing"

	"github.com/goliatone/go-markup/internal/deploy"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"adf", FormatADF},
		{"structured", FormatADF},
		{"STORAGE", FormatStorage},
		{" wiki ", FormatWiki},
		{"plain", FormatPlainText},
		{"text", FormatPlainText},
		{"", ""},
		{"xml", ""},
	}
	for _, tc := range tests {
		if got := ParseFormat(tc.in); got != tc.want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParsePercentage(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 100},
		{"not a number", 100},
		{"50", 50},
		{" 25 ", 25},
		{"-10", 0},
		{"150", 100},
		{"0", 0},
	}
	for _, tc := range tests {
		if got := ParsePercentage(tc.in); got != tc.want {
			t.Fatalf("ParsePercentage(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestDecideForcedFormatWinsEverywhere(t *testing.T) {
	cfg := RolloutConfig{DisableADF: true}
	for _, classification := range []deploy.Type{deploy.TypeCloud, deploy.TypeServer, deploy.TypeUnknown} {
		format, applied := Decide(classification, FormatStorage, cfg, "alice")
		if format != FormatStorage {
			t.Fatalf("expected forced storage for %s, got %s", classification, format)
		}
		if applied {
			t.Fatalf("forced format must not count as a rollout decision")
		}
	}
}

func TestDecideNonCloudAlwaysLegacy(t *testing.T) {
	// Fully enabled rollout must not leak ADF to non-cloud deployments.
	cfg := RolloutConfig{EnableADF: true, Percentage: 100}
	for _, classification := range []deploy.Type{deploy.TypeServer, deploy.TypeUnknown} {
		format, applied := Decide(classification, "", cfg, "alice")
		if format != FormatWiki {
			t.Fatalf("expected wiki for %s, got %s", classification, format)
		}
		if applied {
			t.Fatalf("rollout must not apply off-cloud")
		}
	}
}

func TestDecidePrecedence(t *testing.T) {
	tests := []struct {
		name        string
		cfg         RolloutConfig
		caller      string
		want        Format
		wantApplied bool
	}{
		{
			name: "disable beats enable",
			cfg:  RolloutConfig{DisableADF: true, EnableADF: true, Percentage: 100},
			want: FormatWiki, wantApplied: true,
		},
		{
			name:   "enable beats exclude",
			cfg:    RolloutConfig{EnableADF: true, ExcludeUsers: []string{"alice"}},
			caller: "alice",
			want:   FormatADF, wantApplied: true,
		},
		{
			name: "exclude beats include",
			cfg: RolloutConfig{
				Percentage:   100,
				IncludeUsers: []string{"alice"},
				ExcludeUsers: []string{"alice"},
			},
			caller: "alice",
			want:   FormatWiki, wantApplied: true,
		},
		{
			name:   "include beats zero percentage",
			cfg:    RolloutConfig{Percentage: 0, IncludeUsers: []string{"alice"}},
			caller: "alice",
			want:   FormatADF, wantApplied: true,
		},
		{
			name:   "include is case-insensitive",
			cfg:    RolloutConfig{Percentage: 0, IncludeUsers: []string{"ALICE"}},
			caller: "alice",
			want:   FormatADF, wantApplied: true,
		},
		{
			name:   "zero percentage means legacy",
			cfg:    RolloutConfig{Percentage: 0},
			caller: "alice",
			want:   FormatWiki, wantApplied: true,
		},
		{
			name:   "full percentage means structured",
			cfg:    RolloutConfig{Percentage: 100},
			caller: "alice",
			want:   FormatADF, wantApplied: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			format, applied := Decide(deploy.TypeCloud, "", tc.cfg, tc.caller)
			if format != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, format)
			}
			if applied != tc.wantApplied {
				t.Fatalf("expected applied=%v, got %v", tc.wantApplied, applied)
			}
		})
	}
}

func TestDecidePercentageIsDeterministicPerCaller(t *testing.T) {
	cfg := RolloutConfig{Percentage: 50}
	first, _ := Decide(deploy.TypeCloud, "", cfg, "some-caller")
	for i := 0; i < 10; i++ {
		format, _ := Decide(deploy.TypeCloud, "", cfg, "some-caller")
		if format != first {
			t.Fatalf("expected stable decision for the same caller, got %s then %s", first, format)
		}
	}
}

func TestDecideClampsOutOfRangePercentage(t *testing.T) {
	format, _ := Decide(deploy.TypeCloud, "", RolloutConfig{Percentage: 250}, "alice")
	if format != FormatADF {
		t.Fatalf("expected over-range percentage to clamp to 100, got %s", format)
	}
	format, _ = Decide(deploy.TypeCloud, "", RolloutConfig{Percentage: -5}, "alice")
	if format != FormatWiki {
		t.Fatalf("expected under-range percentage to clamp to 0, got %s", format)
	}
}

func TestDecideAnonymousCallerIsStable(t *testing.T) {
	cfg := RolloutConfig{Percentage: 50}
	first, _ := Decide(deploy.TypeCloud, "", cfg, "")
	second, _ := Decide(deploy.TypeCloud, "", cfg, "")
	if first != second {
		t.Fatalf("expected anonymous callers to decide deterministically")
	}
}
