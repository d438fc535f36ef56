package usage

import (
	"math"
	"time"
)

// Recency age thresholds in seconds.
const (
	hour  = 3600
	day   = 86400
	week  = 604800
	month = 2592000
)

// Recency scores how recently an application was used. It is
// non-increasing in ageSecs and always within [0.1, 1.0].
func Recency(ageSecs uint64) float64 {
	age := float64(ageSecs)
	switch {
	case ageSecs < hour:
		return 1.0
	case ageSecs < day:
		return 0.8 + 0.2*(1-age/day)
	case ageSecs < week:
		return 0.5 + 0.3*(1-age/week)
	case ageSecs < month:
		return 0.2 + 0.3*(1-age/month)
	default:
		return 0.1
	}
}

// Frequency scores how often an application was used: ln(count)/10,
// capped at 1. A single use scores zero.
func Frequency(useCount uint32) float64 {
	if useCount <= 1 {
		return 0
	}
	return math.Min(1.0, math.Log(float64(useCount))/10.0)
}

// Boost blends recency (70%) and frequency (30%) for s as seen at now.
func Boost(s Stats, now time.Time) float64 {
	return 0.7*Recency(s.Age(now)) + 0.3*Frequency(s.UseCount)
}

// Age returns the seconds elapsed between LastUsed and now. A LastUsed in
// the future counts as age zero.
func (s Stats) Age(now time.Time) uint64 {
	n := now.Unix()
	if n < 0 || uint64(n) <= s.LastUsed {
		return 0
	}
	return uint64(n) - s.LastUsed
}

// Classify labels a record by how regularly it is launched.
func Classify(s Stats, now time.Time) string {
	if s.UseCount == 0 {
		return "never"
	}

	days := s.Age(now) / day
	switch {
	case days <= 1 && s.UseCount >= 5:
		return "daily"
	case days <= 7:
		return "weekly"
	case days <= 30:
		return "monthly"
	default:
		return "rarely"
	}
}
