package storage

import (
	"context"
	"time"

	"pinbot/internal/pin"
)

// Store is the persistence API used by the pin service and the router.
type Store interface {
	// LoadTasks reads every persisted task. Job handles are never
	// persisted; the caller re-registers jobs for non-paused tasks.
	LoadTasks(ctx context.Context) ([]pin.Task, error)
	// SaveTasks replaces the full persisted set with the given one.
	SaveTasks(ctx context.Context, tasks []pin.Task) error
	// AppendAudit records an operator action (best-effort).
	AppendAudit(ctx context.Context, e AuditEntry) error
	Close() error
}

// Config configures storage.
//
// Driver values:
//   - "sqlite" (or "sqlite3"): SQLite database file
//   - "file": JSON snapshot + jsonl audit log
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// AuditEntry records one lifecycle command (add/rm/pause/resume).
// Keep it compact and schema-stable.
type AuditEntry struct {
	At      time.Time `json:"at"`
	ActorID int64     `json:"actor_id"`
	ChatID  int64     `json:"chat_id"`
	Action  string    `json:"action"`
	TaskID  int64     `json:"task_id,omitempty"`
	OK      bool      `json:"ok"`
	Error   string    `json:"err,omitempty"`
}
