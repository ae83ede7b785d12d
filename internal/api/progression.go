package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lifequest/lifequest/internal/app/engagement"
	"github.com/lifequest/lifequest/internal/domain"
)

// maxImportBytes caps the body size accepted by /import.
const maxImportBytes = 4 << 20

// decodeBody decodes a JSON request body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// ─── State & Profile ────────────────────────────────────────────────────────

// stateResponse is the full dashboard payload.
type stateResponse struct {
	State         domain.ProgressionState `json:"state"`
	LevelProgress float64                 `json:"levelProgress"`
	NextLevelXP   int                     `json:"nextLevelXP"`
	NextRefillMs  int64                   `json:"nextRefillMs"`
	Unlocks       []string                `json:"unlocks,omitempty"`
}

func buildState(e *engagement.Engine) stateResponse {
	e.AITokens() // lazy refill before reporting
	level, pct, next := e.LevelProgress()
	return stateResponse{
		State:         e.State(),
		LevelProgress: pct,
		NextLevelXP:   next,
		NextRefillMs:  e.TimeUntilNextRefill().Milliseconds(),
		Unlocks:       engagement.UnlocksForLevel(level),
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var resp stateResponse
	s.mutate(func(e *engagement.Engine) { resp = buildState(e) })
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var p domain.Profile
	if err := decodeBody(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var out domain.Profile
	s.mutate(func(e *engagement.Engine) {
		e.SetProfile(p)
		out = e.State().Profile
	})
	writeJSON(w, http.StatusOK, out)
}

type tierRequest struct {
	Tier domain.PackageTier `json:"tier"`
}

func (s *Server) handleTier(w http.ResponseWriter, r *http.Request) {
	var req tierRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	switch req.Tier {
	case domain.TierFree, domain.TierPlus, domain.TierPro:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown tier %q", req.Tier))
		return
	}

	var resp map[string]any
	s.mutate(func(e *engagement.Engine) {
		e.SetTier(req.Tier)
		st := e.State()
		resp = map[string]any{"tier": st.Profile.Tier, "aiTokens": st.AITokens, "maxAiTokens": st.MaxAITokens}
	})
	writeJSON(w, http.StatusOK, resp)
}

// vitalsRequest sets absolute values and/or applies deltas.
type vitalsRequest struct {
	HP        *int `json:"hp"`
	Mana      *int `json:"mana"`
	HPDelta   int  `json:"hpDelta"`
	ManaDelta int  `json:"manaDelta"`
}

func (s *Server) handleVitals(w http.ResponseWriter, r *http.Request) {
	var req vitalsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var hp, mana int
	s.mutate(func(e *engagement.Engine) {
		if req.HP != nil {
			e.SetHP(*req.HP)
		}
		if req.Mana != nil {
			e.SetMana(*req.Mana)
		}
		if req.HPDelta != 0 || req.ManaDelta != 0 {
			e.AdjustVitals(req.HPDelta, req.ManaDelta)
		}
		st := e.State()
		hp, mana = st.HP, st.Mana
	})
	writeJSON(w, http.StatusOK, map[string]int{"hp": hp, "mana": mana})
}

// ─── Activity ───────────────────────────────────────────────────────────────

type mealRequest struct {
	Text     string `json:"text"`
	HPImpact int    `json:"hpImpact"`
	Advice   string `json:"advice"`
}

func (s *Server) handleMeal(w http.ResponseWriter, r *http.Request) {
	var req mealRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	var entry domain.MealEntry
	var unlocked []string
	s.mutate(func(e *engagement.Engine) {
		entry = e.LogMeal(req.Text, req.HPImpact, req.Advice)
		unlocked = e.CheckAchievements()
	})
	writeJSON(w, http.StatusCreated, map[string]any{"meal": entry, "unlocked": nonNil(unlocked)})
}

type stepsRequest struct {
	Steps int `json:"steps"`
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	var req stepsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Steps < 0 {
		writeError(w, http.StatusBadRequest, "steps must not be negative")
		return
	}

	var best int
	var unlocked []string
	s.mutate(func(e *engagement.Engine) {
		e.RecordSteps(req.Steps)
		unlocked = e.CheckAchievements()
		best = e.State().BestSteps
	})
	writeJSON(w, http.StatusOK, map[string]any{"bestSteps": best, "unlocked": nonNil(unlocked)})
}

type journalRequest struct {
	Text string `json:"text"`
	Mood string `json:"mood"`
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	var entry domain.JournalEntry
	var unlocked []string
	s.mutate(func(e *engagement.Engine) {
		entry = e.AddJournalEntry(req.Text, req.Mood)
		unlocked = e.CheckAchievements()
	})
	writeJSON(w, http.StatusCreated, map[string]any{"entry": entry, "unlocked": nonNil(unlocked)})
}

type chatRequest struct {
	Role domain.ChatRole `json:"role"`
	Text string          `json:"text"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	var msg domain.ChatMessage
	var unlocked []string
	s.mutate(func(e *engagement.Engine) {
		msg = e.AddChatMessage(req.Role, req.Text)
		unlocked = e.CheckAchievements()
	})
	writeJSON(w, http.StatusCreated, map[string]any{"message": msg, "unlocked": nonNil(unlocked)})
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	var resp map[string]any
	s.mutate(func(e *engagement.Engine) {
		changed := e.UpdateStreak()
		unlocked := e.CheckAchievements()
		st := e.State()
		resp = map[string]any{
			"changed":       changed,
			"streak":        st.Streak,
			"longestStreak": st.LongestStreak,
			"unlocked":      nonNil(unlocked),
		}
	})
	writeJSON(w, http.StatusOK, resp)
}

// ─── Quests ─────────────────────────────────────────────────────────────────

func (s *Server) handleGenerateQuests(w http.ResponseWriter, r *http.Request) {
	var quests []domain.Quest
	s.mutate(func(e *engagement.Engine) { quests = e.GenerateDailyQuests() })
	writeJSON(w, http.StatusOK, map[string]any{"quests": nonNil(quests)})
}

func (s *Server) handleTodayQuests(w http.ResponseWriter, r *http.Request) {
	var quests []domain.Quest
	s.read(func(e *engagement.Engine) { quests = e.TodayQuests() })
	writeJSON(w, http.StatusOK, map[string]any{"quests": nonNil(quests)})
}

type progressRequest struct {
	Progress int `json:"progress"`
}

func (s *Server) handleQuestProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req progressRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var ok bool
	s.mutate(func(e *engagement.Engine) { ok = e.UpdateQuestProgress(id, req.Progress) })
	if !ok {
		writeRejected(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleCompleteQuest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var ok bool
	var resp map[string]any
	s.mutate(func(e *engagement.Engine) {
		ok = e.CompleteQuest(id)
		if !ok {
			return
		}
		unlocked := e.CheckAchievements()
		st := e.State()
		resp = map[string]any{
			"ok":       true,
			"xp":       st.XP,
			"level":    st.Level,
			"coins":    st.Coins,
			"unlocked": nonNil(unlocked),
		}
	})
	if !ok {
		writeRejected(w)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExpeditions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"expeditions": engagement.ExpeditionPool()})
}

func (s *Server) handleStartExpedition(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var q domain.Quest
	var ok bool
	s.mutate(func(e *engagement.Engine) { q, ok = e.StartExpedition(key) })
	if !ok {
		writeRejected(w)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// ─── Achievements ───────────────────────────────────────────────────────────

// achievementView is one catalog entry with its unlock state.
type achievementView struct {
	domain.AchievementDef
	Unlocked bool `json:"unlocked"`
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	var st domain.ProgressionState
	s.read(func(e *engagement.Engine) { st = e.State() })

	defs := engagement.AllAchievements()
	out := make([]achievementView, 0, len(defs))
	for _, def := range defs {
		out = append(out, achievementView{AchievementDef: def, Unlocked: st.HasAchievement(def.ID)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"achievements": out,
		"unlocked":     len(st.UnlockedAchievements),
		"total":        len(defs),
	})
}

func (s *Server) handleCheckAchievements(w http.ResponseWriter, r *http.Request) {
	var unlocked []string
	s.mutate(func(e *engagement.Engine) { unlocked = e.CheckAchievements() })
	writeJSON(w, http.StatusOK, map[string]any{"unlocked": nonNil(unlocked)})
}

// ─── Shop ───────────────────────────────────────────────────────────────────

// shopItemView is one catalog item with ownership flags.
type shopItemView struct {
	domain.ShopItem
	Owned    int  `json:"owned"`
	Equipped bool `json:"equipped"`
}

func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	var items []domain.ShopItem
	var st domain.ProgressionState
	s.read(func(e *engagement.Engine) {
		items = e.ShopItems()
		st = e.State()
	})

	owned := make(map[string]int, len(st.Inventory))
	for _, id := range st.Inventory {
		owned[id]++
	}
	out := make([]shopItemView, 0, len(items))
	for _, it := range items {
		out = append(out, shopItemView{
			ShopItem: it,
			Owned:    owned[it.ID],
			Equipped: st.Equipped[string(it.Category)] == it.ID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "coins": st.Coins})
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var ok bool
	var coins int
	var unlocked []string
	s.mutate(func(e *engagement.Engine) {
		ok = e.PurchaseItem(id)
		if ok {
			unlocked = e.CheckAchievements()
		}
		coins = e.State().Coins
	})
	if !ok {
		writeRejected(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "coins": coins, "unlocked": nonNil(unlocked)})
}

func (s *Server) handleEquip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var ok bool
	var equipped map[string]string
	s.mutate(func(e *engagement.Engine) {
		ok = e.EquipItem(id)
		equipped = e.State().Equipped
	})
	if !ok {
		writeRejected(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "equipped": equipped})
}

// ─── AI Tokens ──────────────────────────────────────────────────────────────

type tokenView struct {
	AITokens     int   `json:"aiTokens"`
	MaxAITokens  int   `json:"maxAiTokens"`
	NextRefillMs int64 `json:"nextRefillMs"`
	Coins        int   `json:"coins"`
}

func viewTokens(e *engagement.Engine) tokenView {
	balance := e.AITokens()
	st := e.State()
	return tokenView{
		AITokens:     balance,
		MaxAITokens:  st.MaxAITokens,
		NextRefillMs: e.TimeUntilNextRefill().Milliseconds(),
		Coins:        st.Coins,
	}
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	var v tokenView
	s.mutate(func(e *engagement.Engine) { v = viewTokens(e) })
	writeJSON(w, http.StatusOK, v)
}

type spendRequest struct {
	Amount int `json:"amount"`
}

func (s *Server) handleSpendTokens(w http.ResponseWriter, r *http.Request) {
	req := spendRequest{Amount: 1}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var ok bool
	var v tokenView
	s.mutate(func(e *engagement.Engine) {
		ok = e.SpendAIToken(req.Amount)
		v = viewTokens(e)
	})
	if !ok {
		writeRejected(w)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type buyRequest struct {
	Amount   int `json:"amount"`
	CoinCost int `json:"coinCost"`
}

func (s *Server) handleBuyTokens(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var ok bool
	var v tokenView
	s.mutate(func(e *engagement.Engine) {
		ok = e.BuyAITokens(req.Amount, req.CoinCost)
		v = viewTokens(e)
	})
	if !ok {
		writeRejected(w)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// ─── Export / Import / Reset ────────────────────────────────────────────────

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var data []byte
	var day string
	var err error
	s.read(func(e *engagement.Engine) {
		data, err = e.ExportData()
		day = e.Today()
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	name := fmt.Sprintf("lifequest-%s.json", day)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	var resp stateResponse
	s.mutate(func(e *engagement.Engine) {
		if err = e.ImportData(data); err == nil {
			resp = buildState(e)
		}
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var resp stateResponse
	s.mutate(func(e *engagement.Engine) {
		e.ResetProgress()
		resp = buildState(e)
	})
	writeJSON(w, http.StatusOK, resp)
}

// ─── Notifications & Events ─────────────────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	pending, err := s.notifications.Pending(queryInt(r, "limit", 20))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": nonNil(pending)})
}

func (s *Server) handleNotificationShown(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.notifications.MarkShown(id); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.events.ListEvents(queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]any{"events": nonNil(events)}
	if typ := r.URL.Query().Get("type"); typ != "" {
		n, err := s.events.CountEvents(domain.EventType(typ))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["count"] = n
	}
	writeJSON(w, http.StatusOK, resp)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
