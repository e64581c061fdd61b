// Package duration parses the manifest duration syntax: an integer
// followed by one of s, m, h. Adapted and trimmed from
// bnema-gordon/pkg/duration, which also accepts d/w/M/y and compound
// strings ("1d12h") — devobox's manifests only ever need the three
// engine-healthcheck units, so the human-calendar units and compound
// parsing are dropped.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var pattern = regexp.MustCompile(`^(-?\d+)(s|m|h)$`)

var unitMultipliers = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
}

// Parse parses a single integer+unit duration string. Negative values
// are rejected; "0s" (and "0m"/"0h") are valid.
func Parse(s string) (time.Duration, error) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid duration %q: expected an integer followed by s, m, or h", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid duration %q: negative durations are not allowed", s)
	}
	return time.Duration(n) * unitMultipliers[m[2]], nil
}
