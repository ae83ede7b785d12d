package engagement_test

import (
	"testing"
	"time"

	"github.com/lifequest/lifequest/internal/app/engagement"
	"github.com/lifequest/lifequest/internal/domain"
)

func TestStreak_FirstActivity(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 1))

	if !e.UpdateStreak() {
		t.Fatal("first activity should change state")
	}
	s := e.State()
	if s.Streak != 1 || s.LongestStreak != 1 {
		t.Errorf("expected 1/1, got %d/%d", s.Streak, s.LongestStreak)
	}
	if s.DaysActive != 1 {
		t.Errorf("expected 1 active day, got %d", s.DaysActive)
	}
	if s.LastActiveDate != "2024-01-01" {
		t.Errorf("expected last active 2024-01-01, got %s", s.LastActiveDate)
	}
	if len(s.HPHistory) != 1 || s.HPHistory[0].HP != engagement.DefaultHP {
		t.Errorf("expected one hp sample, got %+v", s.HPHistory)
	}
}

func TestStreak_ConsecutiveDay(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 2))
	restore(t, e, `{"streak":5,"lastActiveDate":"2024-01-01"}`)

	if !e.UpdateStreak() {
		t.Fatal("next-day activity should extend the streak")
	}
	s := e.State()
	if s.Streak != 6 {
		t.Errorf("expected streak 6, got %d", s.Streak)
	}
	if s.LongestStreak != 6 {
		t.Errorf("expected longest 6, got %d", s.LongestStreak)
	}
	if s.LastActiveDate != "2024-01-02" {
		t.Errorf("expected last active 2024-01-02, got %s", s.LastActiveDate)
	}
}

func TestStreak_GapResets(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 5))
	restore(t, e, `{"streak":5,"lastActiveDate":"2024-01-01"}`)

	var resets int
	e.Subscribe(func(ev domain.Event) {
		if ev.Type == domain.EventStreakReset {
			resets++
		}
	})

	e.UpdateStreak()
	s := e.State()
	if s.Streak != 1 {
		t.Errorf("expected streak reset to 1, got %d", s.Streak)
	}
	if s.LongestStreak != 5 {
		t.Errorf("longest streak must survive a reset, got %d", s.LongestStreak)
	}
	if resets != 1 {
		t.Errorf("expected one streak_reset event, got %d", resets)
	}
}

func TestStreak_SameDayIsNoop(t *testing.T) {
	clock := newClock(2024, 1, 2)
	e := newEngine(t, clock)
	restore(t, e, `{"streak":5,"lastActiveDate":"2024-01-01"}`)

	e.UpdateStreak()
	clock.Advance(6 * time.Hour)
	if e.UpdateStreak() {
		t.Error("second update on the same day should be a no-op")
	}
	s := e.State()
	if s.Streak != 6 || s.DaysActive != 1 {
		t.Errorf("expected streak 6 and 1 active day, got %d and %d", s.Streak, s.DaysActive)
	}
}

func TestStreak_ClockBackwardsIsNoop(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 4))
	restore(t, e, `{"streak":3,"lastActiveDate":"2024-01-05"}`)

	if e.UpdateStreak() {
		t.Error("an earlier day must not touch the streak")
	}
	if s := e.State(); s.Streak != 3 || s.LastActiveDate != "2024-01-05" {
		t.Errorf("state changed: streak %d last %s", s.Streak, s.LastActiveDate)
	}
}

func TestStreak_FreezeBridgesOneMissedDay(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 3))
	restore(t, e, `{"streak":5,"lastActiveDate":"2024-01-01","inventory":["streak_freeze"]}`)

	var frozen []domain.Event
	e.Subscribe(func(ev domain.Event) {
		if ev.Type == domain.EventStreakFrozen {
			frozen = append(frozen, ev)
		}
	})

	e.UpdateStreak()
	s := e.State()
	if s.Streak != 6 {
		t.Errorf("expected freeze to keep streak at 6, got %d", s.Streak)
	}
	if len(s.Inventory) != 0 {
		t.Errorf("freeze should be consumed, inventory %v", s.Inventory)
	}
	if len(frozen) != 1 || frozen[0].Amount != 6 {
		t.Errorf("expected one streak_frozen event with amount 6, got %+v", frozen)
	}
}

func TestStreak_FreezeDoesNotCoverTwoMissedDays(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 4))
	restore(t, e, `{"streak":5,"lastActiveDate":"2024-01-01","inventory":["streak_freeze"]}`)

	e.UpdateStreak()
	s := e.State()
	if s.Streak != 1 {
		t.Errorf("expected reset to 1, got %d", s.Streak)
	}
	if len(s.Inventory) != 1 {
		t.Errorf("freeze must not be consumed on a reset, inventory %v", s.Inventory)
	}
}

func TestStreak_MissedDayWithoutFreezeResets(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 3))
	restore(t, e, `{"streak":5,"lastActiveDate":"2024-01-01"}`)

	e.UpdateStreak()
	if s := e.State(); s.Streak != 1 {
		t.Errorf("expected reset to 1, got %d", s.Streak)
	}
}

func TestStreak_LocalMidnight(t *testing.T) {
	// 02:00 UTC on Jan 2 is still Jan 1 five hours west of Greenwich.
	clock := &testClock{t: time.Date(2024, 1, 2, 2, 0, 0, 0, time.UTC)}
	e := newEngine(t, clock, engagement.WithLocation(time.FixedZone("EST", -5*3600)))
	restore(t, e, `{"streak":2,"lastActiveDate":"2024-01-01"}`)

	if e.UpdateStreak() {
		t.Error("same local day should be a no-op")
	}
	clock.Advance(4 * time.Hour)
	if !e.UpdateStreak() {
		t.Error("next local day should extend")
	}
	if s := e.State(); s.Streak != 3 {
		t.Errorf("expected streak 3, got %d", s.Streak)
	}
}

func TestStreak_HPHistoryBounded(t *testing.T) {
	clock := newClock(2024, 1, 1)
	e := newEngine(t, clock, engagement.WithHistoryLimits(engagement.HistoryLimits{HP: 3}))

	for i := 0; i < 5; i++ {
		e.UpdateStreak()
		clock.Advance(24 * time.Hour)
	}
	s := e.State()
	if len(s.HPHistory) != 3 {
		t.Fatalf("expected 3 hp samples, got %d", len(s.HPHistory))
	}
	if s.HPHistory[0].Date != "2024-01-03" || s.HPHistory[2].Date != "2024-01-05" {
		t.Errorf("expected newest samples kept, got %+v", s.HPHistory)
	}
	if s.Streak != 5 {
		t.Errorf("expected streak 5, got %d", s.Streak)
	}
}
