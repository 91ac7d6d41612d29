package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, common filing date layouts, and unix
// seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		time.RFC1123,
		time.RFC1123Z,
		"2006-01-02",
		"2006-01-02 15:04:05",
		"01/02/2006",
		"20060102",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// FormatYYYYMMDD renders a date in the upstream feed's window-parameter format.
func FormatYYYYMMDD(t time.Time) string {
	return t.Format("20060102")
}

// ParseRange converts a compact range token ("5d", "2w", "1m", "1q", "1y")
// into a duration. Months are 30 days, quarters 91, years 365.
func ParseRange(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid range %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid range %q", s)
	}
	day := 24 * time.Hour
	switch s[len(s)-1] {
	case 'd':
		return time.Duration(n) * day, nil
	case 'w':
		return time.Duration(n) * 7 * day, nil
	case 'm':
		return time.Duration(n) * 30 * day, nil
	case 'q':
		return time.Duration(n) * 91 * day, nil
	case 'y':
		return time.Duration(n) * 365 * day, nil
	}
	return 0, fmt.Errorf("invalid range unit in %q", s)
}

// QuarterEnd maps a filing date to the end of the preceding completed
// calendar quarter. A date falling exactly on a quarter-end day counts as
// completing that quarter: 2024-06-30 -> 2024-06-30, 2024-08-15 -> 2024-06-30,
// 2024-01-05 -> 2023-12-31.
func QuarterEnd(t time.Time) time.Time {
	t = t.UTC()
	year := t.Year()
	ends := []time.Time{
		time.Date(year-1, time.December, 31, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.March, 31, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.June, 30, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.September, 30, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	day := time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	last := ends[0]
	for _, q := range ends {
		if !q.After(day) {
			last = q
		}
	}
	return last
}
