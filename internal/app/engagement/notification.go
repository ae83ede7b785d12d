package engagement

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/lifequest/lifequest/internal/domain"
)

// NotificationStore persists user-facing notifications.
type NotificationStore interface {
	InsertNotification(n domain.Notification) error
	ListPendingNotifications(limit int) ([]domain.Notification, error)
	MarkNotificationShown(id string) error
	NotificationCountSince(t time.Time) (int, error)
}

// NotificationPolicy caps how many toasts are queued per day. Zero means no cap.
type NotificationPolicy struct {
	MaxPerDay int `toml:"max_per_day"`
}

// NotificationService turns engine events into queued toasts for the UI.
type NotificationService struct {
	store  NotificationStore
	policy NotificationPolicy
	now    func() time.Time
	loc    *time.Location
}

// NewNotificationService creates a notification service.
func NewNotificationService(store NotificationStore, policy NotificationPolicy, loc *time.Location) *NotificationService {
	if loc == nil {
		loc = time.UTC
	}
	return &NotificationService{store: store, policy: policy, now: time.Now, loc: loc}
}

// Listener returns the engine listener that feeds this service.
func (n *NotificationService) Listener() Listener {
	return func(ev domain.Event) {
		if _, err := n.Notify(ev); err != nil {
			log.Printf("[engagement] notify %s: %v", ev.Type, err)
		}
	}
}

// Notify queues a notification for ev if it is notifiable and the daily cap allows.
// Returns false when the event was skipped or suppressed.
func (n *NotificationService) Notify(ev domain.Event) (bool, error) {
	if !ev.Notifiable() {
		return false, nil
	}
	if n.policy.MaxPerDay > 0 {
		now := n.now().In(n.loc)
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, n.loc)
		count, err := n.store.NotificationCountSince(midnight)
		if err != nil {
			return false, fmt.Errorf("count today: %w", err)
		}
		if count >= n.policy.MaxPerDay {
			return false, nil
		}
	}

	title, body := describe(ev)
	notif := domain.Notification{
		ID:        uuid.NewString(),
		Type:      ev.Type,
		Title:     title,
		Body:      body,
		CreatedAt: n.now(),
	}
	if err := n.store.InsertNotification(notif); err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	return true, nil
}

// Pending returns unshown notifications.
func (n *NotificationService) Pending(limit int) ([]domain.Notification, error) {
	return n.store.ListPendingNotifications(limit)
}

// MarkShown marks a notification as shown.
func (n *NotificationService) MarkShown(id string) error {
	return n.store.MarkNotificationShown(id)
}

// describe renders the toast text for an event.
func describe(ev domain.Event) (string, string) {
	switch ev.Type {
	case domain.EventLevelUp:
		return "Level up!", fmt.Sprintf("You reached level %d.", ev.Amount)
	case domain.EventQuestCompleted:
		return "Quest complete", fmt.Sprintf("+%d XP earned.", ev.Amount)
	case domain.EventAchievementUnlocked:
		name := ev.Subject
		if def, ok := Achievement(ev.Subject); ok {
			name = def.Name
		}
		return "Achievement unlocked", fmt.Sprintf("%s is yours.", name)
	case domain.EventStreakFrozen:
		return "Streak saved", fmt.Sprintf("A streak freeze kept your %d-day streak alive.", ev.Amount)
	}
	return string(ev.Type), ""
}
