package engagement

import (
	"github.com/lifequest/lifequest/internal/domain"
)

// StreakFreezeItem is the consumable that bridges exactly one missed day.
const StreakFreezeItem = "streak_freeze"

// UpdateStreak records qualifying activity for today.
// Same day: no-op. Yesterday: extend. Any larger gap or first activity: reset to 1,
// unless exactly one day was missed and a streak freeze is in the inventory.
// Returns true when the state changed.
func (e *Engine) UpdateStreak() bool {
	if !e.recordActivity(e.Today()) {
		return false
	}
	e.commit()
	return true
}

// recordActivity applies the streak transition for the given day-key.
func (e *Engine) recordActivity(today string) bool {
	s := &e.state
	gap, ok := DaysBetween(s.LastActiveDate, today)
	if ok && gap <= 0 {
		// Same day, or the clock moved backwards across midnight.
		return false
	}

	switch {
	case ok && gap == 1:
		s.Streak++
		e.emit(domain.EventStreakExtended, today, s.Streak)

	case ok && gap == 2 && e.consumeItem(StreakFreezeItem):
		s.Streak++
		e.emit(domain.EventStreakFrozen, today, s.Streak)

	default:
		if s.Streak > 0 {
			e.emit(domain.EventStreakReset, today, s.Streak)
		}
		s.Streak = 1
	}

	if s.Streak > s.LongestStreak {
		s.LongestStreak = s.Streak
	}
	s.DaysActive++
	s.LastActiveDate = today
	s.HPHistory = appendBounded(s.HPHistory, domain.HPPoint{Date: today, HP: s.HP}, e.limits.HP)
	return true
}
