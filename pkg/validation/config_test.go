package validation

import (
	"testing"
	"time"
)

func TestValidateSessionTTL(t *testing.T) {
	tests := []struct {
		name       string
		ttl        time.Duration
		expectWarn bool
	}{
		{"Default thirty minutes", 30 * time.Minute, false},
		{"Exactly the minimum", time.Minute, false},
		{"Too short", 10 * time.Second, true},
		{"Zero", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warning := ValidateSessionTTL(tt.ttl)
			hasWarning := warning != ""
			if hasWarning != tt.expectWarn {
				t.Errorf("ValidateSessionTTL() warning = %t, expected %t", hasWarning, tt.expectWarn)
			}
		})
	}
}

func TestValidateRateLimit(t *testing.T) {
	tests := []struct {
		name              string
		enabled           bool
		requestsPerMinute int
		burst             int
		expectedWarnings  int
	}{
		{"Defaults", true, 120, 20, 0},
		{"Disabled", false, 120, 20, 1},
		{"Burst below per-second rate", true, 600, 5, 1},
		{"Very low rate", true, 5, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := ValidateRateLimit(tt.enabled, tt.requestsPerMinute, tt.burst)
			if len(warnings) != tt.expectedWarnings {
				t.Errorf("ValidateRateLimit() returned %d warnings, expected %d: %v",
					len(warnings), tt.expectedWarnings, warnings)
			}
		})
	}
}
