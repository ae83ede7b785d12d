package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lifequest/lifequest/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, "state.db")); os.IsNotExist(err) {
		t.Error("state.db should exist")
	}
}

func TestOpen_Ping(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		db, err := Open(dir)
		if err != nil {
			t.Fatalf("Open() #%d error: %v", i, err)
		}
		db.Close()
	}
}

// ─── Snapshots ──────────────────────────────────────────────────────────────

func TestSnapshot_SaveLoad(t *testing.T) {
	db := newTestDB(t)

	if err := db.SaveSnapshot("default", []byte(`{"hp":80}`)); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}
	got, err := db.LoadSnapshot("default")
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if string(got) != `{"hp":80}` {
		t.Errorf("LoadSnapshot() = %s", got)
	}
}

func TestSnapshot_Overwrite(t *testing.T) {
	db := newTestDB(t)

	db.SaveSnapshot("default", []byte(`{"hp":80}`))
	db.SaveSnapshot("default", []byte(`{"hp":20}`))

	got, _ := db.LoadSnapshot("default")
	if string(got) != `{"hp":20}` {
		t.Errorf("expected last write to win, got %s", got)
	}
	updated, err := db.SnapshotUpdatedAt("default")
	if err != nil || updated.IsZero() {
		t.Errorf("SnapshotUpdatedAt() = %v, %v", updated, err)
	}
}

func TestSnapshot_Missing(t *testing.T) {
	db := newTestDB(t)

	got, err := db.LoadSnapshot("nobody")
	if err != nil || got != nil {
		t.Errorf("LoadSnapshot() on missing key = %v, %v; want nil, nil", got, err)
	}
	updated, err := db.SnapshotUpdatedAt("nobody")
	if err != nil || !updated.IsZero() {
		t.Errorf("SnapshotUpdatedAt() on missing key = %v, %v", updated, err)
	}
}

func TestSnapshot_Delete(t *testing.T) {
	db := newTestDB(t)
	db.SaveSnapshot("default", []byte(`{}`))

	if err := db.DeleteSnapshot("default"); err != nil {
		t.Fatalf("DeleteSnapshot() error: %v", err)
	}
	if got, _ := db.LoadSnapshot("default"); got != nil {
		t.Errorf("snapshot still present: %s", got)
	}
}

// ─── Notifications ──────────────────────────────────────────────────────────

func TestNotifications_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"n1", "n2", "n3"} {
		err := db.InsertNotification(domain.Notification{
			ID:        id,
			Type:      domain.EventQuestCompleted,
			Title:     "Quest complete",
			Body:      "+10 XP earned.",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("InsertNotification(%s) error: %v", id, err)
		}
	}

	pending, err := db.ListPendingNotifications(2)
	if err != nil {
		t.Fatalf("ListPendingNotifications() error: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != "n1" || pending[1].ID != "n2" {
		t.Fatalf("expected oldest two, got %+v", pending)
	}
	if pending[0].Type != domain.EventQuestCompleted || !pending[0].CreatedAt.Equal(base) {
		t.Errorf("fields not round-tripped: %+v", pending[0])
	}

	if err := db.MarkNotificationShown("n1"); err != nil {
		t.Fatalf("MarkNotificationShown() error: %v", err)
	}
	pending, _ = db.ListPendingNotifications(10)
	if len(pending) != 2 || pending[0].ID != "n2" {
		t.Errorf("expected n2 and n3 pending, got %+v", pending)
	}

	if err := db.MarkNotificationShown("nope"); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Errorf("expected ErrNotificationNotFound, got %v", err)
	}
}

func TestNotificationCountSince(t *testing.T) {
	db := newTestDB(t)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	db.InsertNotification(domain.Notification{ID: "old", Type: domain.EventLevelUp, CreatedAt: day.Add(-time.Hour)})
	db.InsertNotification(domain.Notification{ID: "new", Type: domain.EventLevelUp, CreatedAt: day.Add(time.Hour)})

	n, err := db.NotificationCountSince(day)
	if err != nil {
		t.Fatalf("NotificationCountSince() error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 since midnight, got %d", n)
	}
}

// ─── Event Log ──────────────────────────────────────────────────────────────

func TestEventLog(t *testing.T) {
	db := newTestDB(t)
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	db.AppendEvent(domain.Event{Type: domain.EventItemPurchased, Subject: "theme_forest", Amount: 150, At: at})
	db.AppendEvent(domain.Event{Type: domain.EventLevelUp, Amount: 2, At: at.Add(time.Second)})
	db.AppendEvent(domain.Event{Type: domain.EventLevelUp, Amount: 3, At: at.Add(2 * time.Second)})

	events, err := db.ListEvents(2)
	if err != nil {
		t.Fatalf("ListEvents() error: %v", err)
	}
	if len(events) != 2 || events[0].Amount != 3 || events[1].Amount != 2 {
		t.Errorf("expected newest first, got %+v", events)
	}

	n, err := db.CountEvents(domain.EventLevelUp)
	if err != nil || n != 2 {
		t.Errorf("CountEvents(level_up) = %d, %v", n, err)
	}
	all, _ := db.ListEvents(0)
	if len(all) != 3 || all[2].Subject != "theme_forest" || !all[2].At.Equal(at) {
		t.Errorf("unexpected full log: %+v", all)
	}
}

func TestPersister_WritesUnderKey(t *testing.T) {
	db := newTestDB(t)
	p := db.Persister("alice")

	if err := p.Persist([]byte(`{"coins":5}`)); err != nil {
		t.Fatalf("Persist() error: %v", err)
	}
	got, _ := db.LoadSnapshot("alice")
	if string(got) != `{"coins":5}` {
		t.Errorf("LoadSnapshot(alice) = %s", got)
	}
	if other, _ := db.LoadSnapshot("bob"); other != nil {
		t.Errorf("unexpected snapshot under bob: %s", other)
	}
}
