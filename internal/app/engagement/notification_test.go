package engagement_test

import (
	"errors"
	"testing"
	"time"

	"github.com/lifequest/lifequest/internal/app/engagement"
	"github.com/lifequest/lifequest/internal/domain"
)

func TestNotify_QueuesNotifiableEvents(t *testing.T) {
	db := testDB(t)
	svc := engagement.NewNotificationService(db, engagement.NotificationPolicy{}, time.UTC)

	queued, err := svc.Notify(domain.Event{Type: domain.EventLevelUp, Amount: 3})
	if err != nil || !queued {
		t.Fatalf("level up should be queued: %v", err)
	}
	queued, err = svc.Notify(domain.Event{Type: domain.EventMealLogged})
	if err != nil || queued {
		t.Errorf("meal_logged is not user-facing: queued=%v err=%v", queued, err)
	}

	pending, err := svc.Pending(10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending, got %d", len(pending))
	}
	if pending[0].Title != "Level up!" || pending[0].Body != "You reached level 3." {
		t.Errorf("unexpected toast: %+v", pending[0])
	}
}

func TestNotify_AchievementUsesName(t *testing.T) {
	db := testDB(t)
	svc := engagement.NewNotificationService(db, engagement.NotificationPolicy{}, nil)

	svc.Notify(domain.Event{Type: domain.EventAchievementUnlocked, Subject: "first_meal"})
	pending, _ := svc.Pending(10)
	if len(pending) != 1 || pending[0].Body != "First Bite is yours." {
		t.Errorf("unexpected toast: %+v", pending)
	}
}

func TestNotify_DailyCap(t *testing.T) {
	db := testDB(t)
	svc := engagement.NewNotificationService(db, engagement.NotificationPolicy{MaxPerDay: 2}, time.UTC)

	ev := domain.Event{Type: domain.EventQuestCompleted, Amount: 20}
	for i := 0; i < 2; i++ {
		if ok, err := svc.Notify(ev); err != nil || !ok {
			t.Fatalf("notification %d should be queued: %v", i, err)
		}
	}
	if ok, _ := svc.Notify(ev); ok {
		t.Error("third notification should be suppressed by the daily cap")
	}
}

func TestMarkShown(t *testing.T) {
	db := testDB(t)
	svc := engagement.NewNotificationService(db, engagement.NotificationPolicy{}, time.UTC)

	svc.Notify(domain.Event{Type: domain.EventStreakFrozen, Amount: 4})
	pending, _ := svc.Pending(10)
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending, got %d", len(pending))
	}

	if err := svc.MarkShown(pending[0].ID); err != nil {
		t.Fatalf("mark shown: %v", err)
	}
	if rest, _ := svc.Pending(10); len(rest) != 0 {
		t.Errorf("expected none pending, got %d", len(rest))
	}
	if err := svc.MarkShown("missing"); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Errorf("expected ErrNotificationNotFound, got %v", err)
	}
}

func TestNotificationListener_WiredToEngine(t *testing.T) {
	db := testDB(t)
	svc := engagement.NewNotificationService(db, engagement.NotificationPolicy{}, time.UTC)
	e := newEngine(t, newClock(2024, 1, 1), engagement.WithListener(svc.Listener()))

	e.AddXP(250)
	q := e.GenerateDailyQuests()[0]
	e.CompleteQuest(q.ID)

	pending, err := svc.Pending(10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected level up and quest toasts, got %d", len(pending))
	}
	if pending[0].Type != domain.EventLevelUp || pending[1].Type != domain.EventQuestCompleted {
		t.Errorf("unexpected order: %s, %s", pending[0].Type, pending[1].Type)
	}
}
