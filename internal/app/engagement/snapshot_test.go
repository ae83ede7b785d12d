package engagement_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/lifequest/lifequest/internal/app/engagement"
	"github.com/lifequest/lifequest/internal/domain"
)

// busyEngine returns an engine with every collection populated.
func busyEngine(t *testing.T, clock *testClock) *engagement.Engine {
	t.Helper()
	e := newEngine(t, clock)
	e.SetProfile(domain.Profile{Name: "Ada", Goal: "energy", Tier: domain.TierPlus, Onboarded: true})
	e.AddCoins(500)
	e.GenerateDailyQuests()
	e.StartExpedition("scribe")
	e.LogMeal("porridge", 8, "good fiber")
	e.AddJournalEntry("day one", "hopeful")
	e.AddChatMessage(domain.RoleUser, "hello")
	e.PurchaseItem("theme_forest")
	e.EquipItem("theme_forest")
	e.SpendAIToken(3)
	e.CheckAchievements()
	return e
}

func snapshot(t *testing.T, e *engagement.Engine) []byte {
	t.Helper()
	data, err := e.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return data
}

func TestExportImport_RoundTrip(t *testing.T) {
	clock := newClock(2024, 1, 1)
	src := busyEngine(t, clock)

	data, err := src.ExportData()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := newEngine(t, clock)
	if err := dst.ImportData(data); err != nil {
		t.Fatalf("import: %v", err)
	}

	if want, got := snapshot(t, src), snapshot(t, dst); !bytes.Equal(want, got) {
		t.Errorf("round trip mismatch\nwant %s\ngot  %s", want, got)
	}
}

func TestExportData_Envelope(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 1))
	data, err := e.ExportData()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var env map[string]any
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if env["version"] != float64(engagement.ExportVersion) {
		t.Errorf("expected version %d, got %v", engagement.ExportVersion, env["version"])
	}
	if env["exportedAt"] != "2024-01-01T12:00:00Z" {
		t.Errorf("unexpected exportedAt %v", env["exportedAt"])
	}
	if env["hp"] != float64(engagement.DefaultHP) {
		t.Errorf("state fields should be inlined, hp=%v", env["hp"])
	}
	if !bytes.Contains(data, []byte("\n  \"")) {
		t.Error("export should be indented")
	}
}

func TestImportData_InvalidLeavesStateUnchanged(t *testing.T) {
	e := busyEngine(t, newClock(2024, 1, 1))
	before := snapshot(t, e)

	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"not json", "definitely not json", domain.ErrInvalidImport},
		{"array", "[1,2,3]", domain.ErrInvalidImport},
		{"empty", "   ", domain.ErrInvalidImport},
		{"truncated", `{"hp": 10`, domain.ErrInvalidImport},
		{"wrong type", `{"hp": 10, "coins": "lots"}`, domain.ErrSnapshotCorrupt},
		{"bad quests", `{"quests": {"id": "x"}}`, domain.ErrSnapshotCorrupt},
	}
	for _, c := range cases {
		err := e.ImportData([]byte(c.input))
		if !errors.Is(err, c.want) {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, err)
		}
		if after := snapshot(t, e); !bytes.Equal(before, after) {
			t.Errorf("%s: state changed on a rejected import", c.name)
		}
	}
}

func TestImportData_ClampsAndDerives(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 1))
	err := e.ImportData([]byte(`{
		"hp": 250,
		"mana": -3,
		"xp": 1000,
		"level": 99,
		"streak": 4,
		"longestStreak": 2,
		"lastActiveDate": "yesterday",
		"coins": 12.6,
		"aiTokens": 400,
		"inventory": ["theme_ocean", "mystery_box"],
		"equipped": {"theme": "theme_ocean", "frame": "frame_gold"},
		"unlockedAchievements": ["first_meal", "first_meal"],
		"quests": [
			{"id": "a", "progress": 9, "target": 3},
			{"id": "a", "progress": 1, "target": 3},
			{"id": "", "progress": 1, "target": 3}
		]
	}`))
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	s := e.State()
	if s.HP != 100 || s.Mana != 0 {
		t.Errorf("vitals not clamped: %d/%d", s.HP, s.Mana)
	}
	if s.Level != 6 {
		t.Errorf("level must be derived from xp, got %d", s.Level)
	}
	if s.LongestStreak != 4 {
		t.Errorf("longest streak must cover current streak, got %d", s.LongestStreak)
	}
	if s.LastActiveDate != "" {
		t.Errorf("malformed day-key should be dropped, got %q", s.LastActiveDate)
	}
	if s.Coins != 13 {
		t.Errorf("fractional coins should round, got %d", s.Coins)
	}
	if s.AITokens != 25 {
		t.Errorf("tokens must clamp to the cap, got %d", s.AITokens)
	}
	if len(s.Inventory) != 1 || s.Inventory[0] != "theme_ocean" {
		t.Errorf("unknown items should be dropped, got %v", s.Inventory)
	}
	if len(s.Equipped) != 1 || s.Equipped["theme"] != "theme_ocean" {
		t.Errorf("unowned equipment should be dropped, got %v", s.Equipped)
	}
	if len(s.UnlockedAchievements) != 1 {
		t.Errorf("achievements should be deduplicated, got %v", s.UnlockedAchievements)
	}
	if len(s.Quests) != 1 || s.Quests[0].Progress != 3 || s.Quests[0].Type != domain.QuestDaily {
		t.Errorf("unexpected sanitized quests: %+v", s.Quests)
	}
}

func TestImportData_PartialKeepsOtherFields(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 1))
	e.AddCoins(70)

	if err := e.ImportData([]byte(`{"hp": 20, "unknownField": true}`)); err != nil {
		t.Fatalf("import: %v", err)
	}
	s := e.State()
	if s.HP != 20 || s.Coins != 70 {
		t.Errorf("expected hp 20 and coins kept at 70, got %d and %d", s.HP, s.Coins)
	}
}

func TestRestore_LegacyTimestamp(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 2))
	restore(t, e, `{"lastTokenRefill": 1704110400000, "aiTokens": 0}`)

	want := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := e.State().LastTokenRefill; !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got := e.AITokens(); got != 25 {
		t.Errorf("24h after the legacy refill, expected 25 tokens, got %d", got)
	}
}

func TestRestore_StartsFromDefaults(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 1))
	e.AddCoins(99)

	restore(t, e, `{"xp": 120}`)
	s := e.State()
	if s.Coins != 0 {
		t.Errorf("restore should not overlay the live state, coins %d", s.Coins)
	}
	if s.HP != engagement.DefaultHP || s.Level != 2 {
		t.Errorf("expected defaults plus xp, got hp %d level %d", s.HP, s.Level)
	}
}

func TestResetProgress_KeepsProfile(t *testing.T) {
	e := busyEngine(t, newClock(2024, 1, 1))

	var reset bool
	e.Subscribe(func(ev domain.Event) {
		if ev.Type == domain.EventProgressReset {
			reset = true
		}
	})
	e.ResetProgress()

	s := e.State()
	if s.Profile.Name != "Ada" || s.Profile.Tier != domain.TierPlus {
		t.Errorf("profile should survive reset, got %+v", s.Profile)
	}
	if s.XP != 0 || s.Coins != 0 || len(s.Quests) != 0 || len(s.Inventory) != 0 {
		t.Error("progress should be cleared")
	}
	if s.MaxAITokens != 60 || s.AITokens != 60 {
		t.Errorf("tokens should reset to the plus cap, got %d/%d", s.AITokens, s.MaxAITokens)
	}
	if !reset {
		t.Error("expected a progress_reset event")
	}
}

func TestPersister_SQLiteRoundTrip(t *testing.T) {
	db := testDB(t)
	clock := newClock(2024, 1, 1)

	persist := engagement.PersistFunc(func(b []byte) error { return db.SaveSnapshot("default", b) })
	e := newEngine(t, clock, engagement.WithPersister(persist))
	e.LogMeal("soup", 6, "")
	e.AddCoins(30)

	data, err := db.LoadSnapshot("default")
	if err != nil || data == nil {
		t.Fatalf("load snapshot: %v (nil=%v)", err, data == nil)
	}

	reloaded := newEngine(t, clock)
	if err := reloaded.Restore(data); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !bytes.Equal(snapshot(t, e), snapshot(t, reloaded)) {
		t.Error("reloaded state differs from the persisted one")
	}
}

func TestImportData_TokenCapFollowsTier(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 1))

	if err := e.ImportData([]byte(`{"maxAiTokens": 1000000, "aiTokens": 1000000}`)); err != nil {
		t.Fatalf("import: %v", err)
	}
	s := e.State()
	if s.Profile.Tier != domain.TierFree || s.MaxAITokens != 25 || s.AITokens != 25 {
		t.Errorf("expected free 25/25, got %s %d/%d", s.Profile.Tier, s.AITokens, s.MaxAITokens)
	}

	restore(t, e, `{"profile": {"tier": "pro"}, "maxAiTokens": 7, "aiTokens": 100}`)
	s = e.State()
	if s.MaxAITokens != 150 || s.AITokens != 100 {
		t.Errorf("stored cap should be replaced by the pro cap, got %d/%d", s.AITokens, s.MaxAITokens)
	}
}
