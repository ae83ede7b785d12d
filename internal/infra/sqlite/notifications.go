package sqlite

import (
	"database/sql"
	"time"

	"github.com/lifequest/lifequest/internal/domain"
)

// ─── Notifications ──────────────────────────────────────────────────────────

// InsertNotification queues a notification.
func (d *DB) InsertNotification(n domain.Notification) error {
	_, err := d.db.Exec(
		`INSERT INTO notifications (id, type, title, body, created_at, shown)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Type), n.Title, n.Body, n.CreatedAt.UnixMilli(), n.Shown,
	)
	return err
}

// NotificationCountSince returns how many notifications were created at or after t.
func (d *DB) NotificationCountSince(t time.Time) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM notifications WHERE created_at >= ?`, t.UnixMilli(),
	).Scan(&count)
	return count, err
}

// ListPendingNotifications returns unshown notifications, oldest first.
func (d *DB) ListPendingNotifications(limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(
		`SELECT id, type, title, body, created_at, shown
		 FROM notifications WHERE shown = 0 ORDER BY created_at ASC, rowid ASC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// MarkNotificationShown marks a notification as shown.
func (d *DB) MarkNotificationShown(id string) error {
	result, err := d.db.Exec(`UPDATE notifications SET shown = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// ─── Event Log ──────────────────────────────────────────────────────────────

// AppendEvent records an engine event.
func (d *DB) AppendEvent(ev domain.Event) error {
	_, err := d.db.Exec(
		`INSERT INTO event_log (type, subject, amount, at) VALUES (?, ?, ?, ?)`,
		string(ev.Type), ev.Subject, ev.Amount, ev.At.UnixMilli(),
	)
	return err
}

// ListEvents returns the most recent events, newest first.
func (d *DB) ListEvents(limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.Query(
		`SELECT type, subject, amount, at FROM event_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var ev domain.Event
		var typ string
		var at int64
		if err := rows.Scan(&typ, &ev.Subject, &ev.Amount, &at); err != nil {
			return nil, err
		}
		ev.Type = domain.EventType(typ)
		ev.At = time.UnixMilli(at)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// CountEvents returns how many events of type t were recorded.
func (d *DB) CountEvents(t domain.EventType) (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM event_log WHERE type = ?`, string(t)).Scan(&count)
	return count, err
}

// ─── Scanners ───────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanNotification(s scanner) (*domain.Notification, error) {
	var n domain.Notification
	var typ string
	var createdAt int64
	err := s.Scan(&n.ID, &typ, &n.Title, &n.Body, &createdAt, &n.Shown)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	n.Type = domain.EventType(typ)
	n.CreatedAt = time.UnixMilli(createdAt)
	return &n, nil
}
