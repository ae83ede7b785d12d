package engagement_test

import (
	"testing"

	"github.com/lifequest/lifequest/internal/app/engagement"
	"github.com/lifequest/lifequest/internal/domain"
)

func TestLogMeal(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 1))
	exp, _ := e.StartExpedition("meal_marathon")
	green, _ := e.StartExpedition("green_path")

	entry := e.LogMeal("  grilled salmon  ", 10, `"Great protein choice."`)
	if entry.Text != "grilled salmon" {
		t.Errorf("expected trimmed text, got %q", entry.Text)
	}
	if entry.Advice != "Great protein choice." {
		t.Errorf("expected cleaned advice, got %q", entry.Advice)
	}
	if entry.Date != "2024-01-01" || entry.ID == "" {
		t.Errorf("unexpected entry: %+v", entry)
	}

	s := e.State()
	if s.HP != engagement.DefaultHP+10 {
		t.Errorf("expected hp %d, got %d", engagement.DefaultHP+10, s.HP)
	}
	if s.Mana != engagement.DefaultMana+engagement.MealMana {
		t.Errorf("expected mana %d, got %d", engagement.DefaultMana+engagement.MealMana, s.Mana)
	}
	if s.XP != engagement.MealXP || s.Coins != engagement.MealCoins {
		t.Errorf("expected %d xp and %d coins, got %d and %d", engagement.MealXP, engagement.MealCoins, s.XP, s.Coins)
	}
	if s.MealsLogged != 1 || len(s.MealHistory) != 1 {
		t.Errorf("expected one logged meal, got %d (%d in history)", s.MealsLogged, len(s.MealHistory))
	}
	if s.Streak != 1 || s.LastActiveDate != "2024-01-01" {
		t.Errorf("meal should count as activity, streak %d last %s", s.Streak, s.LastActiveDate)
	}
	if got := findQuest(t, e, exp.ID); got.Progress != 1 {
		t.Errorf("meal quest should advance, got %d", got.Progress)
	}
	if got := findQuest(t, e, green.ID); got.Progress != 1 {
		t.Errorf("healthy meal quest should advance, got %d", got.Progress)
	}
}

func TestLogMeal_UnhealthyMeal(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 1))
	green, _ := e.StartExpedition("green_path")

	e.LogMeal("three donuts", -100, "")
	if hp := e.State().HP; hp != 0 {
		t.Errorf("hp should clamp at 0, got %d", hp)
	}
	if got := findQuest(t, e, green.ID); got.Progress != 0 {
		t.Errorf("a harmful meal must not count as healthy, got %d", got.Progress)
	}
}

func TestLogMeal_SingleCommit(t *testing.T) {
	var writes int
	var events []domain.EventType
	e := newEngine(t, newClock(2024, 1, 1),
		engagement.WithPersister(engagement.PersistFunc(func([]byte) error { writes++; return nil })),
		engagement.WithListener(func(ev domain.Event) { events = append(events, ev.Type) }),
	)

	e.LogMeal("toast", 2, "")
	if writes != 1 {
		t.Errorf("expected one write for a compound action, got %d", writes)
	}
	if len(events) != 1 || events[0] != domain.EventMealLogged {
		t.Errorf("expected [meal_logged], got %v", events)
	}
}

func TestLogMeal_HistoryBounded(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 1), engagement.WithHistoryLimits(engagement.HistoryLimits{Meals: 2}))

	e.LogMeal("a", 1, "")
	e.LogMeal("b", 1, "")
	e.LogMeal("c", 1, "")

	s := e.State()
	if len(s.MealHistory) != 2 {
		t.Fatalf("expected 2 meals kept, got %d", len(s.MealHistory))
	}
	if s.MealHistory[0].Text != "b" || s.MealHistory[1].Text != "c" {
		t.Errorf("expected oldest evicted, got %+v", s.MealHistory)
	}
	if s.MealsLogged != 3 {
		t.Errorf("lifetime counter must not be trimmed, got %d", s.MealsLogged)
	}
}

func TestRecordSteps(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 1))
	walk, _ := e.StartExpedition("long_walk")

	e.RecordSteps(12000)
	e.RecordSteps(8000)
	e.RecordSteps(-5)

	s := e.State()
	if s.BestSteps != 12000 {
		t.Errorf("expected best 12000, got %d", s.BestSteps)
	}
	if got := findQuest(t, e, walk.ID); got.Progress != 12000 {
		t.Errorf("step quest should keep the best count, got %d", got.Progress)
	}
	if s.Streak != 1 {
		t.Errorf("steps count as activity, streak %d", s.Streak)
	}
}

func TestAddJournalEntry(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 1))
	scribe, _ := e.StartExpedition("scribe")

	entry := e.AddJournalEntry(" slept well ", "calm")
	if entry.Text != "slept well" || entry.Mood != "calm" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	s := e.State()
	if s.Mana != engagement.DefaultMana+engagement.JournalMana {
		t.Errorf("expected mana %d, got %d", engagement.DefaultMana+engagement.JournalMana, s.Mana)
	}
	if s.XP != engagement.JournalXP {
		t.Errorf("expected xp %d, got %d", engagement.JournalXP, s.XP)
	}
	if got := findQuest(t, e, scribe.ID); got.Progress != 1 {
		t.Errorf("journal quest should advance, got %d", got.Progress)
	}
}

func TestAddChatMessage(t *testing.T) {
	e := newEngine(t, newClock(2024, 1, 1))

	e.AddChatMessage(domain.RoleUser, "  what should I eat?  ")
	reply := e.AddChatMessage(domain.RoleAssistant, "“Try lentils.”")
	odd := e.AddChatMessage("system", "hello")

	if reply.Text != "Try lentils." {
		t.Errorf("expected cleaned reply, got %q", reply.Text)
	}
	if odd.Role != domain.RoleUser {
		t.Errorf("unknown roles should be stored as user, got %s", odd.Role)
	}
	s := e.State()
	if len(s.ChatHistory) != 3 || s.ChatHistory[0].Text != "what should I eat?" {
		t.Errorf("unexpected chat history: %+v", s.ChatHistory)
	}
}

func TestCleanAIText(t *testing.T) {
	cases := map[string]string{
		`  plain  `:       "plain",
		`"quoted"`:        "quoted",
		`'single'`:        "single",
		"“curly”":         "curly",
		"`tick`":          "tick",
		`""double""`:      `"double"`,
		`"unbalanced`:     `"unbalanced`,
		`"`:               `"`,
		`  " padded "  `: "padded",
	}
	for in, want := range cases {
		if got := engagement.CleanAIText(in); got != want {
			t.Errorf("CleanAIText(%q): expected %q, got %q", in, want, got)
		}
	}
}
