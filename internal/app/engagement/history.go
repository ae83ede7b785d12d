package engagement

// HistoryLimits bounds each history log. The oldest entries are evicted first.
type HistoryLimits struct {
	Meals   int `toml:"meals"`
	Journal int `toml:"journal"`
	Chat    int `toml:"chat"`
	HP      int `toml:"hp"`
}

// DefaultHistoryLimits returns the ring-buffer sizes used on first start.
func DefaultHistoryLimits() HistoryLimits {
	return HistoryLimits{
		Meals:   50,
		Journal: 100,
		Chat:    50,
		HP:      30,
	}
}

// withDefaults fills zero or negative limits from the defaults.
func (l HistoryLimits) withDefaults() HistoryLimits {
	d := DefaultHistoryLimits()
	if l.Meals <= 0 {
		l.Meals = d.Meals
	}
	if l.Journal <= 0 {
		l.Journal = d.Journal
	}
	if l.Chat <= 0 {
		l.Chat = d.Chat
	}
	if l.HP <= 0 {
		l.HP = d.HP
	}
	return l
}

// appendBounded appends v and keeps only the newest limit entries.
func appendBounded[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if limit > 0 && len(s) > limit {
		trimmed := make([]T, limit)
		copy(trimmed, s[len(s)-limit:])
		return trimmed
	}
	return s
}

// trimBounded drops the oldest entries beyond limit.
func trimBounded[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return append([]T(nil), s[len(s)-limit:]...)
	}
	return s
}
