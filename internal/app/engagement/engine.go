// Package engagement implements the LifeQuest progression engine.
// It owns vitals, XP and level, streaks, quest rotation, achievements and the
// coin and AI-token economies. The engine is synchronous and not safe for
// concurrent use: callers serialize mutations.
package engagement

import (
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/lifequest/lifequest/internal/domain"
)

// Vitals bounds and first-use defaults.
const (
	MinVital    = 0
	MaxVital    = 100
	DefaultHP   = 75
	DefaultMana = 40
)

// Persister mirrors the full state after every mutation.
// Writes are full overwrites, so a lost race resolves to last-write-wins.
type Persister interface {
	Persist(snapshot []byte) error
}

// PersistFunc adapts a function to Persister.
type PersistFunc func(snapshot []byte) error

// Persist calls f.
func (f PersistFunc) Persist(snapshot []byte) error { return f(snapshot) }

// Listener receives events after the mutation that produced them is persisted.
type Listener func(domain.Event)

// Engine is the authoritative progression state machine for one user.
type Engine struct {
	state domain.ProgressionState

	now       func() time.Time
	loc       *time.Location
	rng       *rand.Rand
	catalog   Catalog
	tierCaps  map[domain.PackageTier]int
	limits    HistoryLimits
	refill    time.Duration
	persister Persister
	listeners []Listener

	pending []domain.Event
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects the wall clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the timezone used to derive day-keys.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithRand injects the random source used for quest selection and ids.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithCatalog replaces the default shop catalog.
func WithCatalog(c Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithTierCaps replaces the package tier → max AI tokens table.
func WithTierCaps(caps map[domain.PackageTier]int) Option {
	return func(e *Engine) { e.tierCaps = caps }
}

// WithHistoryLimits sets the ring-buffer sizes of the history logs.
func WithHistoryLimits(l HistoryLimits) Option {
	return func(e *Engine) { e.limits = l.withDefaults() }
}

// WithRefillPeriod overrides the AI token refill period.
func WithRefillPeriod(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.refill = d
		}
	}
}

// WithPersister enables write-through persistence.
func WithPersister(p Persister) Option {
	return func(e *Engine) { e.persister = p }
}

// WithListener subscribes l to engine events.
func WithListener(l Listener) Option {
	return func(e *Engine) { e.listeners = append(e.listeners, l) }
}

// New creates an engine holding first-use defaults.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:      time.Now,
		loc:      time.UTC,
		catalog:  DefaultCatalog(),
		tierCaps: DefaultTierCaps(),
		limits:   DefaultHistoryLimits(),
		refill:   RefillPeriod,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(e.now().UnixNano()))
	}
	e.state = e.defaultState(domain.Profile{Tier: domain.TierFree})
	return e
}

// Subscribe adds a listener after construction.
func (e *Engine) Subscribe(l Listener) {
	e.listeners = append(e.listeners, l)
}

// State returns a deep copy of the current aggregate.
func (e *Engine) State() domain.ProgressionState {
	return e.state.Clone()
}

// Today returns the current day-key.
func (e *Engine) Today() string {
	return DayKey(e.now(), e.loc)
}

// defaultState builds the first-use aggregate around profile.
func (e *Engine) defaultState(profile domain.Profile) domain.ProgressionState {
	if profile.Tier == "" {
		profile.Tier = domain.TierFree
	}
	tokenCap := e.capForTier(profile.Tier)
	return domain.ProgressionState{
		Profile:              profile,
		HP:                   DefaultHP,
		Mana:                 DefaultMana,
		XP:                   0,
		Level:                1,
		Quests:               []domain.Quest{},
		UnlockedAchievements: []string{},
		Inventory:            []string{},
		Equipped:             map[string]string{},
		AITokens:             tokenCap,
		MaxAITokens:          tokenCap,
		LastTokenRefill:      e.now(),
		MealHistory:          []domain.MealEntry{},
		Journal:              []domain.JournalEntry{},
		ChatHistory:          []domain.ChatMessage{},
		HPHistory:            []domain.HPPoint{},
	}
}

// ─── Profile & Vitals ───────────────────────────────────────────────────────

// SetProfile replaces the profile. A tier change re-derives the token cap.
func (e *Engine) SetProfile(p domain.Profile) {
	if p.Tier == "" {
		p.Tier = e.state.Profile.Tier
	}
	e.state.Profile = p
	e.applyTier(p.Tier)
	e.commit()
}

// SetHP stores hp clamped to [0,100].
func (e *Engine) SetHP(hp int) {
	e.setHP(hp)
	e.commit()
}

// SetMana stores mana clamped to [0,100].
func (e *Engine) SetMana(mana int) {
	e.setMana(mana)
	e.commit()
}

// AdjustVitals applies deltas to hp and mana through the clamping setters.
func (e *Engine) AdjustVitals(hpDelta, manaDelta int) {
	e.setHP(satAdd(e.state.HP, hpDelta))
	e.setMana(satAdd(e.state.Mana, manaDelta))
	e.commit()
}

func (e *Engine) setHP(hp int) {
	e.state.HP = clamp(hp, MinVital, MaxVital)
}

func (e *Engine) setMana(mana int) {
	e.state.Mana = clamp(mana, MinVital, MaxVital)
}

// ─── XP & Level ─────────────────────────────────────────────────────────────

// AddXP grants experience and reports whether the level went up.
// Non-positive amounts are ignored: XP only moves forward.
func (e *Engine) AddXP(amount int) bool {
	if amount <= 0 {
		return false
	}
	up := e.addXP(amount)
	e.commit()
	return up
}

// addXP re-derives the level inside the same mutation.
func (e *Engine) addXP(amount int) bool {
	if amount <= 0 {
		return false
	}
	old := e.state.Level
	e.state.XP = satAdd(e.state.XP, amount)
	e.state.Level = LevelFromXP(e.state.XP)
	if e.state.Level > old {
		e.emit(domain.EventLevelUp, "", e.state.Level)
		return true
	}
	return false
}

// LevelProgress returns the current level, progress percent and next threshold.
func (e *Engine) LevelProgress() (level int, pct float64, nextXP int) {
	level = e.state.Level
	return level, XPProgressPercent(e.state.XP, level), XPForNextLevel(level)
}

// ─── Events & Persistence ───────────────────────────────────────────────────

func (e *Engine) emit(t domain.EventType, subject string, amount int) {
	e.pending = append(e.pending, domain.Event{
		Type:    t,
		Subject: subject,
		Amount:  amount,
		At:      e.now(),
	})
}

// commit writes the snapshot through and then dispatches pending events.
func (e *Engine) commit() {
	if e.persister != nil {
		data, err := e.Snapshot()
		if err != nil {
			log.Printf("[engagement] encode snapshot: %v", err)
		} else if err := e.persister.Persist(data); err != nil {
			log.Printf("[engagement] persist snapshot: %v", err)
		}
	}

	events := e.pending
	e.pending = nil
	for _, ev := range events {
		for _, l := range e.listeners {
			l(ev)
		}
	}
}

// satAdd adds without wrapping: results past the int range stick at its ends.
func satAdd(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
