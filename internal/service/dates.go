package service

import (
	"fmt"
	"time"
)

const dateOnly = "2006-01-02"

// ParseDate accepts an RFC 3339 timestamp, with or without fractional seconds, or a calendar date
// meaning midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(dateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%q is neither an RFC 3339 timestamp nor a YYYY-MM-DD date", s)
}

// AnalyticsKey is the cache key of a sales analytics result. The inputs are used verbatim.
func AnalyticsKey(startDate, endDate string) string {
	return fmt.Sprintf("analytics:%s:%s", startDate, endDate)
}
