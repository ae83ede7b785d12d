// Package api provides the HTTP server for LifeQuest.
// It exposes the progression engine's mutator API as JSON over chi.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lifequest/lifequest/internal/app/engagement"
	"github.com/lifequest/lifequest/internal/domain"
	"github.com/lifequest/lifequest/internal/infra/metrics"
)

// EventLog reads back recorded engine events.
type EventLog interface {
	ListEvents(limit int) ([]domain.Event, error)
	CountEvents(t domain.EventType) (int, error)
}

// HealthChecker reports whether the daemon and its store are healthy.
type HealthChecker interface {
	Ping() error
}

// Server is the LifeQuest HTTP API server.
// The engine is not goroutine-safe, so every handler holds mu while it runs.
type Server struct {
	mu     sync.Mutex
	engine *engagement.Engine

	notifications  *engagement.NotificationService
	events         EventLog
	health         HealthChecker
	metricsEnabled bool
	corsOrigins    []string
	onChange       func(domain.ProgressionState)
}

// NewServer creates a new API server around eng.
func NewServer(eng *engagement.Engine) *Server {
	return &Server{engine: eng, corsOrigins: []string{"*"}}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetNotifications mounts the notification queue endpoints.
func (s *Server) SetNotifications(n *engagement.NotificationService) { s.notifications = n }

// SetEventLog mounts the event history endpoint.
func (s *Server) SetEventLog(l EventLog) { s.events = l }

// SetHealthCheck makes /health run the checks in h.
func (s *Server) SetHealthCheck(h HealthChecker) { s.health = h }

// SetCORSOrigins sets the allowed origins. An empty list or "*" allows all.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

// OnStateChange registers fn to observe the state after every mutating request.
func (s *Server) OnStateChange(fn func(domain.ProgressionState)) { s.onChange = fn }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.corsMiddleware)
	r.Use(instrument)

	r.Get("/health", s.handleHealth)

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Put("/profile", s.handleProfile)
		r.Put("/tier", s.handleTier)
		r.Post("/vitals", s.handleVitals)

		r.Post("/meals", s.handleMeal)
		r.Post("/steps", s.handleSteps)
		r.Post("/journal", s.handleJournal)
		r.Post("/chat", s.handleChat)
		r.Post("/streak", s.handleStreak)

		r.Post("/quests/generate", s.handleGenerateQuests)
		r.Get("/quests/today", s.handleTodayQuests)
		r.Post("/quests/{id}/progress", s.handleQuestProgress)
		r.Post("/quests/{id}/complete", s.handleCompleteQuest)
		r.Get("/expeditions", s.handleExpeditions)
		r.Post("/expeditions/{key}", s.handleStartExpedition)

		r.Get("/achievements", s.handleAchievements)
		r.Post("/achievements/check", s.handleCheckAchievements)

		r.Get("/shop", s.handleShop)
		r.Post("/shop/{id}/purchase", s.handlePurchase)
		r.Post("/shop/{id}/equip", s.handleEquip)

		r.Get("/tokens", s.handleTokens)
		r.Post("/tokens/spend", s.handleSpendTokens)
		r.Post("/tokens/buy", s.handleBuyTokens)

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Post("/reset", s.handleReset)

		if s.notifications != nil {
			r.Get("/notifications", s.handleNotifications)
			r.Post("/notifications/{id}/shown", s.handleNotificationShown)
		}
		if s.events != nil {
			r.Get("/events", s.handleEvents)
		}
	})

	return r
}

// ─── Engine access ──────────────────────────────────────────────────────────

// read runs fn under the engine lock.
func (s *Server) read(fn func(e *engagement.Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.engine)
}

// mutate runs fn under the engine lock and then publishes the new state.
func (s *Server) mutate(fn func(e *engagement.Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.engine)
	if s.onChange != nil {
		s.onChange(s.engine.State())
	}
}

// ─── Health ─────────────────────────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(); err != nil {
			metrics.HealthCheckStatus.WithLabelValues("overall").Set(0)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
		metrics.HealthCheckStatus.WithLabelValues("overall").Set(1)
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeRejected reports an operation the engine declined without changing state.
func writeRejected(w http.ResponseWriter) {
	writeJSON(w, http.StatusConflict, map[string]bool{"ok": false})
}

// queryInt parses an integer query parameter, falling back to def.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// corsMiddleware adds CORS headers for the web client.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin(r.Header.Get("Origin")))
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	if len(s.corsOrigins) == 0 {
		return "*"
	}
	for _, o := range s.corsOrigins {
		if o == "*" {
			return "*"
		}
		if o == origin {
			return origin
		}
	}
	return ""
}

// instrument records request latency by route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.RequestLatency.
			WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
