package engagement

import (
	"math/rand"
	"strings"

	"github.com/lifequest/lifequest/internal/domain"
)

// DailyQuestCount is how many daily quests are drawn per day.
const DailyQuestCount = 3

// dailyPool is the set of possible daily quest templates.
var dailyPool = []domain.QuestTemplate{
	{Key: "log_meals_3", Title: "Log 3 meals", Type: domain.QuestDaily, Metric: domain.MetricMeals, Target: 3, RewardXP: 30, RewardCoins: 10, Icon: "🍽️"},
	{Key: "healthy_meal", Title: "Eat a meal that heals you", Type: domain.QuestDaily, Metric: domain.MetricHealthyMeals, Target: 1, RewardXP: 25, RewardCoins: 10, Icon: "🥗"},
	{Key: "walk_5000", Title: "Walk 5,000 steps", Type: domain.QuestDaily, Metric: domain.MetricSteps, Target: 5000, RewardXP: 40, RewardCoins: 15, Icon: "🚶"},
	{Key: "walk_10000", Title: "Walk 10,000 steps", Type: domain.QuestDaily, Metric: domain.MetricSteps, Target: 10000, RewardXP: 70, RewardCoins: 25, Icon: "🏃"},
	{Key: "journal_once", Title: "Write a journal entry", Type: domain.QuestDaily, Metric: domain.MetricJournal, Target: 1, RewardXP: 20, RewardCoins: 5, Icon: "📓"},
	{Key: "ask_coach", Title: "Ask the coach a question", Type: domain.QuestDaily, Metric: domain.MetricChat, Target: 1, RewardXP: 15, RewardCoins: 5, Icon: "💬"},
	{Key: "water_8", Title: "Drink 8 glasses of water", Type: domain.QuestDaily, Metric: domain.MetricWater, Target: 8, RewardXP: 30, RewardCoins: 10, Icon: "💧"},
	{Key: "stretch", Title: "Stretch for 10 minutes", Type: domain.QuestDaily, Metric: domain.MetricManual, Target: 1, RewardXP: 20, RewardCoins: 5, Icon: "🧘"},
}

// expeditionPool holds long-running quests the user starts on purpose.
var expeditionPool = []domain.QuestTemplate{
	{Key: "meal_marathon", Title: "Log 30 meals", Type: domain.QuestExpedition, Metric: domain.MetricMeals, Target: 30, RewardXP: 300, RewardCoins: 100, Icon: "🗺️"},
	{Key: "green_path", Title: "Eat 15 healing meals", Type: domain.QuestExpedition, Metric: domain.MetricHealthyMeals, Target: 15, RewardXP: 250, RewardCoins: 80, Icon: "🌿"},
	{Key: "scribe", Title: "Write 10 journal entries", Type: domain.QuestExpedition, Metric: domain.MetricJournal, Target: 10, RewardXP: 200, RewardCoins: 60, Icon: "🪶"},
	{Key: "long_walk", Title: "Reach 20,000 steps in a day", Type: domain.QuestExpedition, Metric: domain.MetricSteps, Target: 20000, RewardXP: 250, RewardCoins: 90, Icon: "⛰️"},
}

// DailyPool returns a copy of the daily quest templates.
func DailyPool() []domain.QuestTemplate {
	return append([]domain.QuestTemplate(nil), dailyPool...)
}

// ExpeditionPool returns a copy of the expedition templates.
func ExpeditionPool() []domain.QuestTemplate {
	return append([]domain.QuestTemplate(nil), expeditionPool...)
}

// GenerateDailyQuests draws today's quests once per day.
// If any quest already carries today's prefix, returns today's quests unchanged.
// Completed daily quests from earlier days are pruned; expeditions and
// unfinished dailies are kept after the new set.
func (e *Engine) GenerateDailyQuests() []domain.Quest {
	today := e.Today()
	if existing := e.questsForDay(today); len(existing) > 0 {
		return existing
	}

	selected := pickQuests(e.rng, dailyPool, DailyQuestCount)
	fresh := make([]domain.Quest, 0, len(selected)+len(e.state.Quests))
	for _, tmpl := range selected {
		fresh = append(fresh, e.instantiate(tmpl, today+"-"+e.shortID()))
	}
	for _, q := range e.state.Quests {
		if q.Type != domain.QuestDaily || !q.Completed {
			fresh = append(fresh, q)
		}
	}
	e.state.Quests = fresh
	e.commit()

	return e.questsForDay(today)
}

// TodayQuests returns the daily quests generated today.
func (e *Engine) TodayQuests() []domain.Quest {
	return e.questsForDay(e.Today())
}

// questsForDay filters the collection by day-key prefix.
func (e *Engine) questsForDay(day string) []domain.Quest {
	prefix := day + "-"
	var out []domain.Quest
	for _, q := range e.state.Quests {
		if q.Type == domain.QuestDaily && strings.HasPrefix(q.ID, prefix) {
			out = append(out, q)
		}
	}
	return out
}

// StartExpedition adds the expedition with the given template key.
// Returns false if the key is unknown or the same expedition is still open.
func (e *Engine) StartExpedition(key string) (domain.Quest, bool) {
	var tmpl *domain.QuestTemplate
	for i := range expeditionPool {
		if expeditionPool[i].Key == key {
			tmpl = &expeditionPool[i]
			break
		}
	}
	if tmpl == nil {
		return domain.Quest{}, false
	}
	for _, q := range e.state.Quests {
		if q.Type == domain.QuestExpedition && q.Key == key && !q.Completed {
			return domain.Quest{}, false
		}
	}

	q := e.instantiate(*tmpl, "exp-"+key+"-"+e.shortID())
	e.state.Quests = append(e.state.Quests, q)
	e.commit()
	return q, true
}

// UpdateQuestProgress sets absolute progress, clamped to [0, target].
// Missing or completed quests are left alone.
func (e *Engine) UpdateQuestProgress(id string, progress int) bool {
	i := e.questIndex(id)
	if i < 0 || e.state.Quests[i].Completed {
		return false
	}
	q := &e.state.Quests[i]
	q.Progress = clamp(progress, 0, q.Target)
	e.commit()
	return true
}

// AdvanceQuests adds delta to every open quest tracking metric.
// Returns the ids of quests that reached their target and can be completed.
func (e *Engine) AdvanceQuests(metric domain.QuestMetric, delta int) []string {
	ready := e.advanceQuests(metric, delta, false)
	e.commit()
	return ready
}

// advanceQuests moves progress forward. With absolute set, delta is the new
// progress value if it is higher than the current one.
func (e *Engine) advanceQuests(metric domain.QuestMetric, delta int, absolute bool) []string {
	var ready []string
	for i := range e.state.Quests {
		q := &e.state.Quests[i]
		if q.Completed || q.Metric != metric {
			continue
		}
		next := satAdd(q.Progress, delta)
		if absolute {
			next = max(q.Progress, delta)
		}
		q.Progress = clamp(next, 0, q.Target)
		if q.Progress >= q.Target {
			ready = append(ready, q.ID)
		}
	}
	return ready
}

// CompleteQuest marks a quest completed and grants its reward exactly once.
// Returns false if the quest is missing or already completed.
func (e *Engine) CompleteQuest(id string) bool {
	i := e.questIndex(id)
	if i < 0 || e.state.Quests[i].Completed {
		return false
	}
	q := &e.state.Quests[i]
	q.Completed = true
	q.Progress = q.Target
	rewardXP, rewardCoins := q.RewardXP, q.RewardCoins

	e.state.QuestsCompleted++
	e.emit(domain.EventQuestCompleted, id, rewardXP)
	e.addXP(rewardXP)
	e.addCoins(rewardCoins)
	e.commit()
	return true
}

func (e *Engine) questIndex(id string) int {
	for i, q := range e.state.Quests {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) instantiate(tmpl domain.QuestTemplate, id string) domain.Quest {
	return domain.Quest{
		ID:          id,
		Key:         tmpl.Key,
		Title:       tmpl.Title,
		Type:        tmpl.Type,
		Metric:      tmpl.Metric,
		Progress:    0,
		Target:      tmpl.Target,
		RewardXP:    tmpl.RewardXP,
		RewardCoins: tmpl.RewardCoins,
		Completed:   false,
		Icon:        tmpl.Icon,
	}
}

// shortID is the first block of a UUID drawn from the engine's random source,
// so seeded engines produce reproducible ids.
func (e *Engine) shortID() string {
	return e.newID()[:8]
}

// pickQuests shuffles a copy of pool and returns the first n templates.
func pickQuests(r *rand.Rand, pool []domain.QuestTemplate, n int) []domain.QuestTemplate {
	shuffled := make([]domain.QuestTemplate, len(pool))
	copy(shuffled, pool)
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
