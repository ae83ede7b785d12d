package engagement

import (
	"time"
)

// dayKeyLayout is the canonical calendar day format: YYYY-MM-DD.
const dayKeyLayout = "2006-01-02"

// DayKey maps a wall-clock instant to its calendar day in loc.
// A nil loc means UTC.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dayKeyLayout)
}

// ParseDayKey parses a day-key. The result is midnight UTC of that date.
func ParseDayKey(key string) (time.Time, bool) {
	t, err := time.Parse(dayKeyLayout, key)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DaysBetween returns the number of calendar days from a to b.
// ok is false if either key is malformed.
func DaysBetween(a, b string) (days int, ok bool) {
	ta, ok := ParseDayKey(a)
	if !ok {
		return 0, false
	}
	tb, ok := ParseDayKey(b)
	if !ok {
		return 0, false
	}
	// Both are UTC midnights, so the difference is a whole number of days.
	return int(tb.Sub(ta).Hours() / 24), true
}

// ElapsedMillis returns b - a in milliseconds.
func ElapsedMillis(a, b time.Time) int64 {
	return b.Sub(a).Milliseconds()
}
