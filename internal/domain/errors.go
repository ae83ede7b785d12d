package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Only malformed external data is an error. Rejected operations report false.

var (
	// Snapshot errors
	ErrInvalidImport    = errors.New("import data is not a JSON object")
	ErrSnapshotCorrupt  = errors.New("snapshot field has an unexpected shape")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")
)
