// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"time"
)

// MinSessionTTL is the shortest idle session lifetime that does not risk
// dropping a result between two submissions.
const MinSessionTTL = time.Minute

// ValidateSessionTTL warns about session lifetimes short enough to lose a
// displayed result while the user is still editing the form.
func ValidateSessionTTL(ttl time.Duration) string {
	if ttl < MinSessionTTL {
		return fmt.Sprintf("Session TTL %s is shorter than %s - results may disappear between submissions",
			ttl, MinSessionTTL)
	}
	return ""
}

// ValidateRateLimit checks the token bucket settings and returns warnings.
func ValidateRateLimit(enabled bool, requestsPerMinute, burst int) []string {
	if !enabled {
		return []string{"Rate limiting is disabled"}
	}

	var warnings []string
	if burst < requestsPerMinute/60 {
		warnings = append(warnings, fmt.Sprintf("Rate limit burst %d is below the per-second rate of %d requests per minute",
			burst, requestsPerMinute))
	}
	if requestsPerMinute < 10 {
		warnings = append(warnings, fmt.Sprintf("Rate limit of %d requests per minute may block normal form use",
			requestsPerMinute))
	}
	return warnings
}
