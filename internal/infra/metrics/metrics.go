// Package metrics provides Prometheus metrics for LifeQuest.
// Counters follow engine events; gauges mirror the latest progression state.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lifequest/lifequest/internal/domain"
)

// ─── Progression ────────────────────────────────────────────────────────────

// LevelUps tracks level-up events.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lifequest",
	Name:      "level_ups_total",
	Help:      "Total level-up events.",
})

// Level tracks the current level.
var Level = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "lifequest",
	Name:      "level",
	Help:      "Current player level.",
})

// XP tracks cumulative experience.
var XP = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "lifequest",
	Name:      "xp",
	Help:      "Cumulative experience points.",
})

// Vitals tracks hp and mana (0-100).
var Vitals = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "lifequest",
	Name:      "vitals",
	Help:      "Current vital value by kind (hp, mana).",
}, []string{"kind"})

// Streak tracks the current daily streak.
var Streak = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "lifequest",
	Name:      "streak_days",
	Help:      "Current consecutive active days.",
})

// StreakChanges tracks streak transitions by outcome.
var StreakChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lifequest",
	Name:      "streak_changes_total",
	Help:      "Streak transitions by outcome (extended, frozen, reset).",
}, []string{"outcome"})

// ─── Activity ───────────────────────────────────────────────────────────────

// MealsLogged tracks meals by effect on hp.
var MealsLogged = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lifequest",
	Name:      "meals_logged_total",
	Help:      "Total meals logged by effect (healing, neutral, harmful).",
}, []string{"effect"})

// QuestsCompleted tracks completed quests.
var QuestsCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lifequest",
	Name:      "quests_completed_total",
	Help:      "Total completed quests.",
})

// AchievementsUnlocked tracks unlocks by achievement id.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lifequest",
	Name:      "achievements_unlocked_total",
	Help:      "Total achievement unlocks.",
}, []string{"achievement"})

// ─── Economy ────────────────────────────────────────────────────────────────

// Coins tracks the current coin balance.
var Coins = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "lifequest",
	Name:      "coins_balance",
	Help:      "Current coin balance.",
})

// CoinsSpent tracks coins spent in the shop.
var CoinsSpent = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lifequest",
	Name:      "coins_spent_total",
	Help:      "Total coins spent on shop items.",
})

// ItemsPurchased tracks shop purchases by item.
var ItemsPurchased = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lifequest",
	Name:      "items_purchased_total",
	Help:      "Total shop purchases.",
}, []string{"item"})

// AITokens tracks the current AI token balance.
var AITokens = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "lifequest",
	Name:      "ai_tokens_balance",
	Help:      "Current AI token balance.",
})

// AITokenFlow tracks token movements by direction.
var AITokenFlow = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lifequest",
	Name:      "ai_tokens_total",
	Help:      "AI tokens moved, by direction (spent, refilled, bought).",
}, []string{"direction"})

// ─── Storage ────────────────────────────────────────────────────────────────

// SnapshotWriteLatency tracks how long write-through persistence takes.
var SnapshotWriteLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "lifequest",
	Name:      "snapshot_write_seconds",
	Help:      "Snapshot write-through latency in seconds.",
	Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
})

// SnapshotWriteErrors tracks failed snapshot writes.
var SnapshotWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lifequest",
	Name:      "snapshot_write_errors_total",
	Help:      "Total failed snapshot writes.",
})

// ─── API ────────────────────────────────────────────────────────────────────

// RequestLatency tracks API request duration by route pattern.
var RequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "lifequest",
	Name:      "http_request_duration_seconds",
	Help:      "API request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "method", "code"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "lifequest",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})

// ─── Recording ──────────────────────────────────────────────────────────────

// RecordEvent updates counters for one engine event.
// It has the shape of an engine listener.
func RecordEvent(ev domain.Event) {
	switch ev.Type {
	case domain.EventLevelUp:
		LevelUps.Inc()
	case domain.EventQuestCompleted:
		QuestsCompleted.Inc()
	case domain.EventAchievementUnlocked:
		AchievementsUnlocked.WithLabelValues(ev.Subject).Inc()
	case domain.EventItemPurchased:
		ItemsPurchased.WithLabelValues(ev.Subject).Inc()
		CoinsSpent.Add(float64(ev.Amount))
	case domain.EventMealLogged:
		MealsLogged.WithLabelValues(mealEffect(ev.Amount)).Inc()
	case domain.EventTokensSpent:
		AITokenFlow.WithLabelValues("spent").Add(float64(ev.Amount))
	case domain.EventTokensRefilled:
		AITokenFlow.WithLabelValues("refilled").Add(float64(ev.Amount))
	case domain.EventTokensBought:
		AITokenFlow.WithLabelValues("bought").Add(float64(ev.Amount))
	case domain.EventStreakExtended:
		StreakChanges.WithLabelValues("extended").Inc()
	case domain.EventStreakFrozen:
		StreakChanges.WithLabelValues("frozen").Inc()
	case domain.EventStreakReset:
		StreakChanges.WithLabelValues("reset").Inc()
	}
}

// ObserveState sets every gauge from a state snapshot.
func ObserveState(s domain.ProgressionState) {
	Level.Set(float64(s.Level))
	XP.Set(float64(s.XP))
	Vitals.WithLabelValues("hp").Set(float64(s.HP))
	Vitals.WithLabelValues("mana").Set(float64(s.Mana))
	Streak.Set(float64(s.Streak))
	Coins.Set(float64(s.Coins))
	AITokens.Set(float64(s.AITokens))
}

func mealEffect(hpImpact int) string {
	switch {
	case hpImpact > 0:
		return "healing"
	case hpImpact < 0:
		return "harmful"
	}
	return "neutral"
}
