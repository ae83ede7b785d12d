package engagement

import (
	"strings"

	"github.com/google/uuid"

	"github.com/lifequest/lifequest/internal/domain"
)

// Rewards for everyday activity.
const (
	MealXP      = 10
	MealCoins   = 5
	MealMana    = 5
	JournalXP   = 5
	JournalMana = 10
)

// LogMeal applies one analyzed meal as a single compound action:
// hp and mana move through the clamping setters, history grows, XP and coins
// are granted, meal quests advance and the streak updates.
func (e *Engine) LogMeal(text string, hpImpact int, advice string) domain.MealEntry {
	now := e.now()
	today := DayKey(now, e.loc)

	entry := domain.MealEntry{
		ID:       e.newID(),
		Date:     today,
		LoggedAt: now,
		Text:     strings.TrimSpace(text),
		HPImpact: hpImpact,
		Advice:   CleanAIText(advice),
	}

	e.setHP(satAdd(e.state.HP, hpImpact))
	e.setMana(e.state.Mana + MealMana)
	e.state.MealHistory = appendBounded(e.state.MealHistory, entry, e.limits.Meals)
	e.state.MealsLogged++
	e.emit(domain.EventMealLogged, entry.ID, hpImpact)
	e.addXP(MealXP)
	e.addCoins(MealCoins)

	e.advanceQuests(domain.MetricMeals, 1, false)
	if hpImpact > 0 {
		e.advanceQuests(domain.MetricHealthyMeals, 1, false)
	}
	e.recordActivity(today)

	e.commit()
	return entry
}

// RecordSteps reports today's step count. Step quests track the best value.
func (e *Engine) RecordSteps(steps int) {
	if steps <= 0 {
		return
	}
	if steps > e.state.BestSteps {
		e.state.BestSteps = steps
	}
	e.advanceQuests(domain.MetricSteps, steps, true)
	e.recordActivity(e.Today())
	e.commit()
}

// AddJournalEntry stores a reflection; writing restores mana.
func (e *Engine) AddJournalEntry(text, mood string) domain.JournalEntry {
	now := e.now()
	today := DayKey(now, e.loc)

	entry := domain.JournalEntry{
		ID:        e.newID(),
		Date:      today,
		CreatedAt: now,
		Text:      strings.TrimSpace(text),
		Mood:      mood,
	}
	e.state.Journal = appendBounded(e.state.Journal, entry, e.limits.Journal)
	e.setMana(e.state.Mana + JournalMana)
	e.addXP(JournalXP)
	e.advanceQuests(domain.MetricJournal, 1, false)
	e.recordActivity(today)

	e.commit()
	return entry
}

// AddChatMessage appends one line of the coach conversation.
// Assistant text is cleaned; user messages count toward chat quests.
func (e *Engine) AddChatMessage(role domain.ChatRole, text string) domain.ChatMessage {
	if role == domain.RoleAssistant {
		text = CleanAIText(text)
	} else {
		role = domain.RoleUser
		text = strings.TrimSpace(text)
	}
	msg := domain.ChatMessage{Role: role, Text: text, SentAt: e.now()}
	e.state.ChatHistory = appendBounded(e.state.ChatHistory, msg, e.limits.Chat)
	if role == domain.RoleUser {
		e.advanceQuests(domain.MetricChat, 1, false)
	}
	e.commit()
	return msg
}

// CleanAIText trims whitespace and one layer of wrapping quotes.
func CleanAIText(s string) string {
	s = strings.TrimSpace(s)
	for _, pair := range [][2]string{{`"`, `"`}, {`'`, `'`}, {"“", "”"}, {"`", "`"}} {
		if len(s) >= len(pair[0])+len(pair[1]) && strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) {
			return strings.TrimSpace(s[len(pair[0]) : len(s)-len(pair[1])])
		}
	}
	return s
}

// newID draws a UUID from the engine's random source.
func (e *Engine) newID() string {
	id, err := uuid.NewRandomFromReader(e.rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
