// Package sqlite provides SQLite-based persistent storage for LifeQuest.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Opaque progression snapshots, one per profile key
		`CREATE TABLE IF NOT EXISTS snapshots (
			key        TEXT PRIMARY KEY,
			data       TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,

		// Queued toasts derived from engine events
		`CREATE TABLE IF NOT EXISTS notifications (
			id         TEXT PRIMARY KEY,
			type       TEXT NOT NULL,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			shown      BOOLEAN DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notif_created ON notifications(created_at)`,

		// Append-only audit trail of engine events
		`CREATE TABLE IF NOT EXISTS event_log (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			type    TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			amount  INTEGER NOT NULL DEFAULT 0,
			at      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_event_log_at ON event_log(at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Snapshots ──────────────────────────────────────────────────────────────

// SaveSnapshot overwrites the snapshot stored under key.
func (d *DB) SaveSnapshot(key string, data []byte) error {
	_, err := d.db.Exec(
		`INSERT INTO snapshots (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`,
		key, string(data), time.Now().UnixMilli(),
	)
	return err
}

// LoadSnapshot returns the snapshot stored under key.
// Returns nil, nil if there is none yet.
func (d *DB) LoadSnapshot(key string) ([]byte, error) {
	var data string
	err := d.db.QueryRow(`SELECT data FROM snapshots WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

// SnapshotUpdatedAt returns when key was last written, or the zero time.
func (d *DB) SnapshotUpdatedAt(key string) (time.Time, error) {
	var ms int64
	err := d.db.QueryRow(`SELECT updated_at FROM snapshots WHERE key = ?`, key).Scan(&ms)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}

// DeleteSnapshot removes the snapshot stored under key.
func (d *DB) DeleteSnapshot(key string) error {
	_, err := d.db.Exec(`DELETE FROM snapshots WHERE key = ?`, key)
	return err
}

// SnapshotPersister writes engine snapshots under a fixed key.
type SnapshotPersister struct {
	db  *DB
	key string
}

// Persister returns a write-through sink for the snapshot stored under key.
func (d *DB) Persister(key string) *SnapshotPersister {
	return &SnapshotPersister{db: d, key: key}
}

// Persist overwrites the stored snapshot.
func (p *SnapshotPersister) Persist(snapshot []byte) error {
	return p.db.SaveSnapshot(p.key, snapshot)
}
