package render

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
)

// Tier is the four-level positivity indicator derived from a story's
// mean_score.
type Tier int

const (
	TierNone Tier = iota
	TierLow
	TierMedium
	TierHigh
)

// TierFor maps a mean_score to its indicator tier.
func TierFor(score float64) Tier {
	switch {
	case math.IsNaN(score):
		return TierNone
	case score >= 0.7:
		return TierHigh
	case score >= 0.4:
		return TierMedium
	case score >= 0.2:
		return TierLow
	default:
		return TierNone
	}
}

// Labels used when a time cannot be placed.
const (
	LabelJustNow     = "Just now"
	LabelUnknownDate = "Unknown date"
)

// RelativeTime buckets the age of t relative to now into a human label.
// A zero t yields LabelUnknownDate; times in the future read as LabelJustNow.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return LabelUnknownDate
	}

	seconds := int64(now.Sub(t) / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24
	weeks := days / 7
	months := days / 30

	switch {
	case seconds < 60:
		return LabelJustNow
	case minutes < 60:
		return plural(minutes, "minute")
	case hours < 24:
		return plural(hours, "hour")
	case days < 7:
		return plural(days, "day")
	case weeks < 4:
		return plural(weeks, "week")
	default:
		return plural(months, "month")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// sanitize strips control characters so story text cannot move the cursor or
// inject escape sequences, and collapses runs of whitespace.
func sanitize(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(cleaned), " ")
}
