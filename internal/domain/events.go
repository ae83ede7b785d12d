package domain

import "time"

// EventType categorizes engine events.
type EventType string

const (
	EventLevelUp             EventType = "level_up"
	EventQuestCompleted      EventType = "quest_completed"
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventItemPurchased       EventType = "item_purchased"
	EventTokensSpent         EventType = "tokens_spent"
	EventTokensRefilled      EventType = "tokens_refilled"
	EventTokensBought        EventType = "tokens_bought"
	EventMealLogged          EventType = "meal_logged"
	EventStreakExtended      EventType = "streak_extended"
	EventStreakReset         EventType = "streak_reset"
	EventStreakFrozen        EventType = "streak_frozen"
	EventProgressReset       EventType = "progress_reset"
)

// Event is emitted by the engine after a state transition worth surfacing.
// Subject is the quest, achievement or item id where one applies.
type Event struct {
	Type    EventType `json:"type"`
	Subject string    `json:"subject,omitempty"`
	Amount  int       `json:"amount,omitempty"`
	At      time.Time `json:"at"`
}

// Notifiable reports whether the event deserves a user-facing toast.
func (e Event) Notifiable() bool {
	switch e.Type {
	case EventLevelUp, EventQuestCompleted, EventAchievementUnlocked, EventStreakFrozen:
		return true
	}
	return false
}

// Notification is a user-facing message derived from an event.
type Notification struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	Shown     bool      `json:"shown"`
}
