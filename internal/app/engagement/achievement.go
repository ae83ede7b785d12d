package engagement

import (
	"github.com/lifequest/lifequest/internal/domain"
)

// Stats builds the snapshot fed to achievement predicates.
func (e *Engine) Stats() domain.UserStats {
	s := e.state
	return domain.UserStats{
		MealsLogged:     s.MealsLogged,
		QuestsCompleted: s.QuestsCompleted,
		DaysActive:      s.DaysActive,
		Level:           s.Level,
		Streak:          s.Streak,
		LongestStreak:   s.LongestStreak,
		BestSteps:       s.BestSteps,
		JournalEntries:  len(s.Journal),
		ChatMessages:    len(s.ChatHistory),
		ItemsOwned:      len(s.Inventory),
		Coins:           s.Coins,
	}
}

// CheckAchievements evaluates every achievement against one stats snapshot and
// unlocks the ones whose predicate now holds. Returns the newly unlocked ids
// (empty when nothing new qualifies). Unlocks are never revoked.
// Rewards granted here are visible to the next call, not this one.
func (e *Engine) CheckAchievements() []string {
	stats := e.Stats()

	var unlocked []string
	for _, def := range AllAchievements() {
		if e.state.HasAchievement(def.ID) {
			continue
		}
		if def.Predicate == nil || !def.Predicate(stats) {
			continue
		}
		e.state.UnlockedAchievements = append(e.state.UnlockedAchievements, def.ID)
		e.emit(domain.EventAchievementUnlocked, def.ID, def.RewardXP)
		e.addXP(def.RewardXP)
		e.addCoins(def.RewardCoins)
		unlocked = append(unlocked, def.ID)
	}

	if len(unlocked) > 0 {
		e.commit()
	}
	return unlocked
}

// Achievement looks up a definition by id.
func Achievement(id string) (domain.AchievementDef, bool) {
	for _, def := range AllAchievements() {
		if def.ID == id {
			return def, true
		}
	}
	return domain.AchievementDef{}, false
}

// ─── Achievement Definitions ────────────────────────────────────────────────

// AllAchievements returns the full achievement catalog.
func AllAchievements() []domain.AchievementDef {
	return []domain.AchievementDef{
		// ── Getting Started ────────────────────────────────────────────
		{
			ID: "first_meal", Name: "First Bite", Category: domain.CatGettingStarted,
			Description: "Log your first meal", Icon: "🍎", RewardXP: 20, RewardCoins: 10,
			Predicate: func(s domain.UserStats) bool { return s.MealsLogged >= 1 },
		},
		{
			ID: "first_quest", Name: "Adventurer", Category: domain.CatGettingStarted,
			Description: "Complete a quest", Icon: "🎯", RewardXP: 20, RewardCoins: 10,
			Predicate: func(s domain.UserStats) bool { return s.QuestsCompleted >= 1 },
		},
		{
			ID: "first_entry", Name: "Dear Diary", Category: domain.CatGettingStarted,
			Description: "Write a journal entry", Icon: "📓", RewardXP: 15, RewardCoins: 5,
			Predicate: func(s domain.UserStats) bool { return s.JournalEntries >= 1 },
		},
		{
			ID: "first_chat", Name: "Seeker", Category: domain.CatGettingStarted,
			Description: "Talk to the coach", Icon: "💬", RewardXP: 15, RewardCoins: 5,
			Predicate: func(s domain.UserStats) bool { return s.ChatMessages >= 1 },
		},

		// ── Nutrition ──────────────────────────────────────────────────
		{
			ID: "meals_10", Name: "Regular", Category: domain.CatNutrition,
			Description: "Log 10 meals", Icon: "🥪", RewardXP: 50, RewardCoins: 25,
			Predicate: func(s domain.UserStats) bool { return s.MealsLogged >= 10 },
		},
		{
			ID: "meals_50", Name: "Chronicler", Category: domain.CatNutrition,
			Description: "Log 50 meals", Icon: "📜", RewardXP: 150, RewardCoins: 75,
			Predicate: func(s domain.UserStats) bool { return s.MealsLogged >= 50 },
		},
		{
			ID: "meals_200", Name: "Gourmet Sage", Category: domain.CatNutrition,
			Description: "Log 200 meals", Icon: "👨‍🍳", RewardXP: 500, RewardCoins: 200,
			Predicate: func(s domain.UserStats) bool { return s.MealsLogged >= 200 },
		},

		// ── Streaks ────────────────────────────────────────────────────
		{
			ID: "streak_3", Name: "Warming Up", Category: domain.CatStreaks,
			Description: "Reach a 3-day streak", Icon: "🔥", RewardXP: 30, RewardCoins: 15,
			Predicate: func(s domain.UserStats) bool { return s.Streak >= 3 },
		},
		{
			ID: "streak_7", Name: "Week Warrior", Category: domain.CatStreaks,
			Description: "Reach a 7-day streak", Icon: "⚔️", RewardXP: 100, RewardCoins: 50,
			Predicate: func(s domain.UserStats) bool { return s.Streak >= 7 },
		},
		{
			ID: "streak_30", Name: "Monthly Monk", Category: domain.CatStreaks,
			Description: "Reach a 30-day streak", Icon: "🏯", RewardXP: 500, RewardCoins: 200,
			Predicate: func(s domain.UserStats) bool { return s.Streak >= 30 },
		},
		{
			ID: "days_100", Name: "Centurion", Category: domain.CatStreaks,
			Description: "Be active on 100 different days", Icon: "🏛️", RewardXP: 800, RewardCoins: 300,
			Predicate: func(s domain.UserStats) bool { return s.DaysActive >= 100 },
		},

		// ── Quests ─────────────────────────────────────────────────────
		{
			ID: "quests_10", Name: "Questing Knight", Category: domain.CatQuests,
			Description: "Complete 10 quests", Icon: "🛡️", RewardXP: 80, RewardCoins: 40,
			Predicate: func(s domain.UserStats) bool { return s.QuestsCompleted >= 10 },
		},
		{
			ID: "quests_50", Name: "Hero of the Realm", Category: domain.CatQuests,
			Description: "Complete 50 quests", Icon: "👑", RewardXP: 300, RewardCoins: 150,
			Predicate: func(s domain.UserStats) bool { return s.QuestsCompleted >= 50 },
		},

		// ── Mastery ────────────────────────────────────────────────────
		{
			ID: "steps_10k", Name: "Trailblazer", Category: domain.CatMastery,
			Description: "Walk 10,000 steps in one day", Icon: "🥾", RewardXP: 60, RewardCoins: 30,
			Predicate: func(s domain.UserStats) bool { return s.BestSteps >= 10000 },
		},
		{
			ID: "level_5", Name: "Apprentice", Category: domain.CatMastery,
			Description: "Reach level 5", Icon: "🌱", RewardXP: 0, RewardCoins: 50,
			Predicate: func(s domain.UserStats) bool { return s.Level >= 5 },
		},
		{
			ID: "level_10", Name: "Adept", Category: domain.CatMastery,
			Description: "Reach level 10", Icon: "🌳", RewardXP: 0, RewardCoins: 150,
			Predicate: func(s domain.UserStats) bool { return s.Level >= 10 },
		},
		{
			ID: "collector", Name: "Collector", Category: domain.CatMastery,
			Description: "Own 3 shop items", Icon: "🎒", RewardXP: 40, RewardCoins: 0,
			Predicate: func(s domain.UserStats) bool { return s.ItemsOwned >= 3 },
		},
	}
}
