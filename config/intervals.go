package config

import "time"

// Interval strings use one canonical casing. Note 1M is monthly while 1m
// would be one minute; input validation is case sensitive on purpose.
var intervals = []string{"5m", "30m", "1h", "4h", "1d", "1w", "1M"}

// cacheTTL maps an interval to the TTL used when caching candle payloads
// fetched on behalf of user-facing compare requests.
var cacheTTL = map[string]time.Duration{
	"5m":  5 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"1d":  24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
	"1M":  7 * 24 * time.Hour,
}

// timeRanges maps interval identifiers to their display names, served by
// the static config endpoint for the frontend.
var timeRanges = map[string]string{
	"5m":  "5 minutes",
	"30m": "30 minutes",
	"1h":  "Hourly",
	"4h":  "4 Hours",
	"1d":  "Daily",
	"1w":  "Weekly",
	"1M":  "Monthly",
}

// Intervals returns the canonical interval whitelist.
func Intervals() []string {
	out := make([]string, len(intervals))
	copy(out, intervals)
	return out
}

// IsValidInterval validates an interval against the whitelist.
func IsValidInterval(interval string) bool {
	for _, iv := range intervals {
		if iv == interval {
			return true
		}
	}
	return false
}

// CacheTTLForInterval returns the per-interval cache TTL for on-demand
// compare payloads. Batch payload TTL comes from BatchSettings instead.
func CacheTTLForInterval(interval string) time.Duration {
	if ttl, ok := cacheTTL[interval]; ok {
		return ttl
	}
	return time.Hour
}

// TimeRanges returns display names for the supported intervals.
func TimeRanges() map[string]string {
	out := make(map[string]string, len(timeRanges))
	for k, v := range timeRanges {
		out[k] = v
	}
	return out
}
