// Package util contains misc internal utilities.
package util

import (
	"math"
	"strings"
	"time"
)

// AllElementsNumbers returns true if every rune in s is a digit or a decimal
// point.  An empty string is not a number.
func AllElementsNumbers(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// SecsToDuration converts a float64 number of seconds to a time.Duration
func SecsToDuration(secs float64) time.Duration {
	return time.Duration(math.Round(secs * 1e9))
}

// ParseExposure parses a duration in any format understood by
// time.ParseDuration.  Bare numbers are taken to be seconds.
func ParseExposure(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if AllElementsNumbers(s) {
		s += "s"
	}
	return time.ParseDuration(s)
}
