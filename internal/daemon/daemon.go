package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lifequest/lifequest/internal/api"
	"github.com/lifequest/lifequest/internal/app/engagement"
	"github.com/lifequest/lifequest/internal/domain"
	"github.com/lifequest/lifequest/internal/health"
	"github.com/lifequest/lifequest/internal/infra/metrics"
	"github.com/lifequest/lifequest/internal/infra/sqlite"
)

// Daemon is the core LifeQuest runtime. It wires together all services.
type Daemon struct {
	Config        Config
	DB            *sqlite.DB
	Engine        *engagement.Engine
	Notifications *engagement.NotificationService
	Health        *health.Checker
	Server        *api.Server
	cancel        context.CancelFunc
	logFile       *os.File
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, _ := cfg.Engine.Location()
	refill, _ := cfg.Engine.Refill()

	logFile, err := setupLogging(cfg.Logging)
	if err != nil {
		return nil, err
	}
	started := false
	defer func() {
		if !started {
			teardownLogging(logFile)
		}
	}()

	home := lifequestHome()
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sqlite.Open(home)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	notif := engagement.NewNotificationService(db, cfg.Notifications, loc)

	eng := engagement.New(
		engagement.WithLocation(loc),
		engagement.WithRefillPeriod(refill),
		engagement.WithHistoryLimits(cfg.Engine.History),
		engagement.WithPersister(timedPersister{inner: db.Persister(cfg.Engine.Profile)}),
		engagement.WithListener(metrics.RecordEvent),
		engagement.WithListener(notif.Listener()),
		engagement.WithListener(eventLogger(db)),
	)

	if err := restoreState(db, eng, cfg.Engine.Profile); err != nil {
		db.Close()
		return nil, err
	}
	metrics.ObserveState(eng.State())

	checker := health.NewChecker(db, home, cfg.Engine.Profile)

	srv := api.NewServer(eng)
	srv.SetNotifications(notif)
	srv.SetEventLog(db)
	srv.SetHealthCheck(checker)
	srv.SetCORSOrigins(cfg.API.CORSOrigins)
	srv.OnStateChange(metrics.ObserveState)
	if cfg.API.Metrics {
		srv.EnableMetrics()
	}

	started = true
	return &Daemon{
		Config:        cfg,
		DB:            db,
		Engine:        eng,
		Notifications: notif,
		Health:        checker,
		Server:        srv,
		logFile:       logFile,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Printf("LifeQuest serving on http://%s\n", addr)
	fmt.Printf("  Profile: %s (data in %s)\n", d.Config.Engine.Profile, lifequestHome())
	if d.Config.API.Metrics {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
	teardownLogging(d.logFile)
	d.logFile = nil
}

// ─── Wiring Helpers ─────────────────────────────────────────────────────────

// restoreState hydrates eng from the stored snapshot. A snapshot that no
// longer decodes is moved aside under "<profile>.corrupt" and the engine
// starts fresh rather than refusing to boot.
func restoreState(db *sqlite.DB, eng *engagement.Engine, profile string) error {
	data, err := db.LoadSnapshot(profile)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if data == nil {
		return nil
	}
	if err := eng.Restore(data); err != nil {
		if !errors.Is(err, domain.ErrSnapshotCorrupt) && !errors.Is(err, domain.ErrInvalidImport) {
			return fmt.Errorf("restore snapshot: %w", err)
		}
		log.Printf("[daemon] WARNING: snapshot %q unreadable (%v), starting fresh", profile, err)
		if berr := db.SaveSnapshot(profile+".corrupt", data); berr != nil {
			return fmt.Errorf("back up corrupt snapshot: %w", berr)
		}
		if derr := db.DeleteSnapshot(profile); derr != nil {
			return fmt.Errorf("discard corrupt snapshot: %w", derr)
		}
	}
	return nil
}

// timedPersister records write latency and failures around a Persister.
type timedPersister struct {
	inner engagement.Persister
}

func (p timedPersister) Persist(snapshot []byte) error {
	start := time.Now()
	err := p.inner.Persist(snapshot)
	metrics.SnapshotWriteLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SnapshotWriteErrors.Inc()
	}
	return err
}

// eventLogger appends every engine event to the SQLite event log.
func eventLogger(db *sqlite.DB) engagement.Listener {
	return func(ev domain.Event) {
		if err := db.AppendEvent(ev); err != nil {
			log.Printf("[daemon] event log %s: %v", ev.Type, err)
		}
	}
}

// setupLogging points the standard logger at the configured file and adds
// source locations at debug level.
func setupLogging(cfg LoggingConfig) (*os.File, error) {
	if cfg.Level == "debug" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	if cfg.File == "" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}

// teardownLogging undoes setupLogging.
func teardownLogging(f *os.File) {
	log.SetFlags(log.LstdFlags)
	if f != nil {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}
}
