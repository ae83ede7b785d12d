// Package domain holds the pure LifeQuest types.
// The progression engine turns health activity (meals, steps, journal entries,
// quests) into vitals, experience, streaks, achievements and two currencies.
package domain

import "time"

// ─── Profile ────────────────────────────────────────────────────────────────

// PackageTier is the user's subscription package. It decides the AI token cap.
type PackageTier string

const (
	TierFree PackageTier = "free"
	TierPlus PackageTier = "plus"
	TierPro  PackageTier = "pro"
)

// Profile is the user's identity. It survives a progress reset.
type Profile struct {
	Name      string      `json:"name"`
	Avatar    string      `json:"avatar,omitempty"`
	Goal      string      `json:"goal,omitempty"`
	Tier      PackageTier `json:"tier"`
	Onboarded bool        `json:"onboarded"`
}

// ─── Quest Types ────────────────────────────────────────────────────────────

// QuestType separates rotating daily quests from persistent expeditions.
type QuestType string

const (
	QuestDaily      QuestType = "daily"
	QuestExpedition QuestType = "expedition"
)

// QuestMetric names the activity counter a quest tracks.
type QuestMetric string

const (
	MetricMeals        QuestMetric = "meals"
	MetricHealthyMeals QuestMetric = "healthy_meals"
	MetricSteps        QuestMetric = "steps"
	MetricJournal      QuestMetric = "journal"
	MetricChat         QuestMetric = "chat"
	MetricWater        QuestMetric = "water"
	MetricManual       QuestMetric = "manual"
)

// Quest is a bounded-progress task with a reward.
// Daily quest IDs are prefixed with the day-key they were generated on.
type Quest struct {
	ID          string      `json:"id"`
	Key         string      `json:"key,omitempty"` // template key
	Title       string      `json:"title"`
	Type        QuestType   `json:"type"`
	Metric      QuestMetric `json:"metric,omitempty"`
	Progress    int         `json:"progress"`
	Target      int         `json:"target"`
	RewardXP    int         `json:"rewardXP"`
	RewardCoins int         `json:"rewardCoins"`
	Completed   bool        `json:"completed"`
	Icon        string      `json:"icon,omitempty"`
}

// ProgressPct returns completion percentage (0-100).
func (q Quest) ProgressPct() float64 {
	if q.Target <= 0 {
		return 100.0
	}
	pct := float64(q.Progress) / float64(q.Target) * 100.0
	if pct > 100.0 {
		pct = 100.0
	}
	return pct
}

// QuestTemplate defines one entry of a quest pool.
type QuestTemplate struct {
	Key         string      `json:"key"`
	Title       string      `json:"title"`
	Type        QuestType   `json:"type"`
	Metric      QuestMetric `json:"metric"`
	Target      int         `json:"target"`
	RewardXP    int         `json:"rewardXP"`
	RewardCoins int         `json:"rewardCoins"`
	Icon        string      `json:"icon"`
}

// ─── Achievement Types ──────────────────────────────────────────────────────

// AchievementCategory groups achievements by theme.
type AchievementCategory string

const (
	CatGettingStarted AchievementCategory = "getting_started"
	CatNutrition      AchievementCategory = "nutrition"
	CatStreaks        AchievementCategory = "streaks"
	CatQuests         AchievementCategory = "quests"
	CatMastery        AchievementCategory = "mastery"
)

// AchievementDef defines a single achievement's requirements.
type AchievementDef struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Category    AchievementCategory  `json:"category"`
	Icon        string               `json:"icon"`
	RewardXP    int                  `json:"rewardXP"`
	RewardCoins int                  `json:"rewardCoins"`
	Predicate   func(UserStats) bool `json:"-"`
}

// UserStats is a snapshot of lifetime counters fed to achievement predicates.
type UserStats struct {
	MealsLogged     int `json:"mealsLogged"`
	QuestsCompleted int `json:"questsCompleted"`
	DaysActive      int `json:"daysActive"`
	Level           int `json:"level"`
	Streak          int `json:"streak"`
	LongestStreak   int `json:"longestStreak"`
	BestSteps       int `json:"bestSteps"`
	JournalEntries  int `json:"journalEntries"`
	ChatMessages    int `json:"chatMessages"`
	ItemsOwned      int `json:"itemsOwned"`
	Coins           int `json:"coins"`
}

// ─── History Entries ────────────────────────────────────────────────────────

// MealEntry is one logged meal with its AI analysis.
type MealEntry struct {
	ID       string    `json:"id"`
	Date     string    `json:"date"`
	LoggedAt time.Time `json:"loggedAt"`
	Text     string    `json:"text"`
	HPImpact int       `json:"hpImpact"`
	Advice   string    `json:"advice,omitempty"`
}

// JournalEntry is a free-form reflection.
type JournalEntry struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	Text      string    `json:"text"`
	Mood      string    `json:"mood,omitempty"`
}

// ChatRole is the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one line of the AI coach conversation.
type ChatMessage struct {
	Role   ChatRole  `json:"role"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
}

// HPPoint records hp on a day the streak advanced.
type HPPoint struct {
	Date string `json:"date"`
	HP   int    `json:"hp"`
}

// ─── Progression State ──────────────────────────────────────────────────────

// ProgressionState is the single aggregate owned by the engagement engine.
// Level is a cache of LevelFromXP(XP) and is never set on its own.
type ProgressionState struct {
	Profile Profile `json:"profile"`

	HP   int `json:"hp"`
	Mana int `json:"mana"`

	XP    int `json:"xp"`
	Level int `json:"level"`

	Streak         int    `json:"streak"`
	LongestStreak  int    `json:"longestStreak"`
	DaysActive     int    `json:"daysActive"`
	LastActiveDate string `json:"lastActiveDate"`

	Quests          []Quest `json:"quests"`
	QuestsCompleted int     `json:"questsCompleted"`
	MealsLogged     int     `json:"mealsLogged"`
	BestSteps       int     `json:"bestSteps"`

	UnlockedAchievements []string `json:"unlockedAchievements"`

	Coins     int               `json:"coins"`
	Inventory []string          `json:"inventory"`
	Equipped  map[string]string `json:"equipped"`

	AITokens        int       `json:"aiTokens"`
	MaxAITokens     int       `json:"maxAiTokens"`
	LastTokenRefill time.Time `json:"lastTokenRefill"`

	MealHistory []MealEntry    `json:"mealHistory"`
	Journal     []JournalEntry `json:"journal"`
	ChatHistory []ChatMessage  `json:"chatHistory"`
	HPHistory   []HPPoint      `json:"hpHistory"`
}

// Clone returns a deep copy so callers can never alias engine internals.
// Collections are never nil, so they encode as [] rather than null.
func (s ProgressionState) Clone() ProgressionState {
	c := s
	c.Quests = cloneSlice(s.Quests)
	c.UnlockedAchievements = cloneSlice(s.UnlockedAchievements)
	c.Inventory = cloneSlice(s.Inventory)
	c.Equipped = make(map[string]string, len(s.Equipped))
	for k, v := range s.Equipped {
		c.Equipped[k] = v
	}
	c.MealHistory = cloneSlice(s.MealHistory)
	c.Journal = cloneSlice(s.Journal)
	c.ChatHistory = cloneSlice(s.ChatHistory)
	c.HPHistory = cloneSlice(s.HPHistory)
	return c
}

func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// HasAchievement reports whether id is already unlocked.
func (s ProgressionState) HasAchievement(id string) bool {
	for _, a := range s.UnlockedAchievements {
		if a == id {
			return true
		}
	}
	return false
}

// ─── Shop ───────────────────────────────────────────────────────────────────

// ItemCategory groups shop items. Equippable categories hold one item each.
type ItemCategory string

const (
	ItemTheme      ItemCategory = "theme"
	ItemFrame      ItemCategory = "frame"
	ItemConsumable ItemCategory = "consumable"
)

// ShopItem is one entry of the shop catalog.
type ShopItem struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Category   ItemCategory `json:"category"`
	Cost       int          `json:"cost"`
	Repeatable bool         `json:"repeatable"`
	Icon       string       `json:"icon,omitempty"`
}

// Equippable reports whether the item can occupy an equipment slot.
func (i ShopItem) Equippable() bool {
	return i.Category == ItemTheme || i.Category == ItemFrame
}
