package engagement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/lifequest/lifequest/internal/domain"
)

// ExportVersion tags export files so future readers can migrate them.
const ExportVersion = 1

// exportEnvelope is the downloadable export file.
type exportEnvelope struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	domain.ProgressionState
}

// ExportData returns a pretty-printed JSON dump of the full state.
func (e *Engine) ExportData() ([]byte, error) {
	data, err := json.MarshalIndent(exportEnvelope{
		Version:          ExportVersion,
		ExportedAt:       e.now(),
		ProgressionState: e.state.Clone(),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// Snapshot returns the compact persistence form of the state.
func (e *Engine) Snapshot() ([]byte, error) {
	return json.Marshal(e.state.Clone())
}

// ImportData applies the recognized top-level keys of a JSON export on top of
// the current state. Values pass through the same clamps as the mutators.
// On any error the state is left untouched.
func (e *Engine) ImportData(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	next, err := e.applySnapshot(e.state, raw)
	if err != nil {
		return err
	}
	e.state = next
	e.commit()
	return nil
}

// Restore hydrates the engine from a persisted snapshot. Missing fields take
// first-use defaults; unknown fields are ignored.
func (e *Engine) Restore(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	next, err := e.applySnapshot(e.defaultState(domain.Profile{}), raw)
	if err != nil {
		return err
	}
	e.state = next
	return nil
}

// ResetProgress clears every progression field and keeps the profile.
func (e *Engine) ResetProgress() {
	e.state = e.defaultState(e.state.Profile)
	e.emit(domain.EventProgressReset, "", 0)
	e.commit()
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, domain.ErrInvalidImport
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
	}
	return raw, nil
}

// applySnapshot overlays raw on a copy of base and re-establishes invariants.
func (e *Engine) applySnapshot(base domain.ProgressionState, raw map[string]json.RawMessage) (domain.ProgressionState, error) {
	next := base.Clone()
	d := snapshotDecoder{raw: raw}

	var profile domain.Profile
	if d.field("profile", &profile) {
		if profile.Tier == "" {
			profile.Tier = domain.TierFree
		}
		next.Profile = profile
	}

	var n int
	if d.number("hp", &n) {
		next.HP = clamp(n, MinVital, MaxVital)
	}
	if d.number("mana", &n) {
		next.Mana = clamp(n, MinVital, MaxVital)
	}
	if d.number("xp", &n) {
		next.XP = max(n, 0)
	}
	next.Level = LevelFromXP(next.XP)

	if d.number("streak", &n) {
		next.Streak = max(n, 0)
	}
	if d.number("longestStreak", &n) {
		next.LongestStreak = max(n, 0)
	}
	next.LongestStreak = max(next.LongestStreak, next.Streak)
	if d.number("daysActive", &n) {
		next.DaysActive = max(n, 0)
	}
	var day string
	if d.field("lastActiveDate", &day) {
		if _, ok := ParseDayKey(day); !ok {
			day = ""
		}
		next.LastActiveDate = day
	}

	var quests []domain.Quest
	if d.field("quests", &quests) {
		next.Quests = sanitizeQuests(quests)
	}
	if d.number("questsCompleted", &n) {
		next.QuestsCompleted = max(n, 0)
	}
	if d.number("mealsLogged", &n) {
		next.MealsLogged = max(n, 0)
	}
	if d.number("bestSteps", &n) {
		next.BestSteps = max(n, 0)
	}

	var ids []string
	if d.field("unlockedAchievements", &ids) {
		next.UnlockedAchievements = dedupe(ids)
	}

	if d.number("coins", &n) {
		next.Coins = max(n, 0)
	}
	var inventory []string
	if d.field("inventory", &inventory) {
		next.Inventory = e.knownItems(inventory)
	}
	var equipped map[string]string
	if d.field("equipped", &equipped) {
		next.Equipped = equipped
	}
	next.Equipped = e.validEquipment(next.Equipped, next.Inventory)

	// The cap always follows the tier; a stored maxAiTokens is informational.
	next.MaxAITokens = e.capForTier(next.Profile.Tier)
	if d.number("aiTokens", &n) {
		next.AITokens = n
	}
	next.AITokens = clamp(next.AITokens, 0, next.MaxAITokens)
	if v, ok := raw["lastTokenRefill"]; ok {
		if t, ok := decodeTimestamp(v); ok {
			next.LastTokenRefill = t
		}
	}

	var meals []domain.MealEntry
	if d.field("mealHistory", &meals) {
		next.MealHistory = trimBounded(meals, e.limits.Meals)
	}
	var journal []domain.JournalEntry
	if d.field("journal", &journal) {
		next.Journal = trimBounded(journal, e.limits.Journal)
	}
	var chat []domain.ChatMessage
	if d.field("chatHistory", &chat) {
		next.ChatHistory = trimBounded(chat, e.limits.Chat)
	}
	var hp []domain.HPPoint
	if d.field("hpHistory", &hp) {
		for i := range hp {
			hp[i].HP = clamp(hp[i].HP, MinVital, MaxVital)
		}
		next.HPHistory = trimBounded(hp, e.limits.HP)
	}

	if d.err != nil {
		return base, d.err
	}
	return next, nil
}

// snapshotDecoder remembers the first field error so applySnapshot reads flat.
type snapshotDecoder struct {
	raw map[string]json.RawMessage
	err error
}

func (d *snapshotDecoder) field(key string, dst any) bool {
	if d.err != nil {
		return false
	}
	v, ok := d.raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return false
	}
	if err := json.Unmarshal(v, dst); err != nil {
		d.err = fmt.Errorf("%w: %s: %v", domain.ErrSnapshotCorrupt, key, err)
		return false
	}
	return true
}

// number decodes a numeric field. Fractional values from older clients are rounded.
func (d *snapshotDecoder) number(key string, dst *int) bool {
	var f float64
	if !d.field(key, &f) {
		return false
	}
	*dst = int(math.Round(f))
	return true
}

// decodeTimestamp accepts RFC 3339 strings and legacy epoch milliseconds.
func decodeTimestamp(v json.RawMessage) (time.Time, bool) {
	var t time.Time
	if err := json.Unmarshal(v, &t); err == nil {
		return t, true
	}
	var ms int64
	if err := json.Unmarshal(v, &ms); err == nil && ms > 0 {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

func sanitizeQuests(in []domain.Quest) []domain.Quest {
	out := make([]domain.Quest, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, q := range in {
		if q.ID == "" || seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		if q.Type != domain.QuestExpedition {
			q.Type = domain.QuestDaily
		}
		q.Target = max(q.Target, 1)
		q.Progress = clamp(q.Progress, 0, q.Target)
		q.RewardXP = max(q.RewardXP, 0)
		q.RewardCoins = max(q.RewardCoins, 0)
		out = append(out, q)
	}
	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// knownItems drops inventory entries the catalog does not know.
func (e *Engine) knownItems(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := e.catalog.Item(id); ok {
			out = append(out, id)
		}
	}
	return out
}

// validEquipment keeps slots holding an owned, equippable item of that category.
func (e *Engine) validEquipment(equipped map[string]string, inventory []string) map[string]string {
	owned := make(map[string]bool, len(inventory))
	for _, id := range inventory {
		owned[id] = true
	}
	out := make(map[string]string, len(equipped))
	for slot, id := range equipped {
		item, ok := e.catalog.Item(id)
		if !ok || !owned[id] || !item.Equippable() || string(item.Category) != slot {
			continue
		}
		out[slot] = id
	}
	return out
}
