package contract

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relativeTimeRe captures "N [units] ago", e.g. "2 years ago" or "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// lookbackDurationRe captures "N [units]".
var lookbackDurationRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?$`)

// ParseRelativeTime converts strings like "2 years ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid relative time value: %s", matches[1])
	}

	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	default:
		return now.Add(-time.Duration(value) * unitDuration(matches[2])), nil
	}
}

// ParseLookbackDuration converts strings like "3 months" or "720h" into a single time.Duration.
// Go duration syntax is tried first, then the human-readable "N [units]" form.
func ParseLookbackDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if duration, err := time.ParseDuration(s); err == nil {
		if duration <= 0 {
			return 0, errors.New("duration must be positive")
		}
		return duration, nil
	}

	s = strings.ToLower(s)
	matches := lookbackDurationRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid lookback duration format: %s", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid lookback value: %s", matches[1])
	}
	unit := unitDuration(matches[2])
	if value == 0 {
		return 0, errors.New("zero duration is not useful")
	}
	if value > int(math.MaxInt64/int64(unit)) {
		return 0, fmt.Errorf("lookback duration is too large: %s", s)
	}
	return time.Duration(value) * unit, nil
}

// unitDuration maps a unit name to its length. Months are 30 days and years are 365.
func unitDuration(unit string) time.Duration {
	const day = 24 * time.Hour
	switch unit {
	case "year":
		return 365 * day
	case "month":
		return 30 * day
	case "week":
		return 7 * day
	case "day":
		return day
	case "hour":
		return time.Hour
	default:
		return time.Minute
	}
}

// CalculateDaysBetween returns the whole days from start to end, never negative.
func CalculateDaysBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start) / (24 * time.Hour))
}

// DayStart truncates a time to midnight UTC of its calendar day.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
