package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"pinbot/internal/pin"
	logx "pinbot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for sqlite driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadTasks reads the snapshot in id order. New ids always exceed every
// existing id, so id order is creation order and listing order survives
// restarts.
func (s *sqliteStore) LoadTasks(ctx context.Context) ([]pin.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT task_id, chat_id, message_id, operation, cron, comment, target_chat_id, silent, paused
		 FROM pin_tasks ORDER BY task_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pin.Task
	for rows.Next() {
		var (
			t      pin.Task
			op     string
			target sql.NullInt64
			silent int
			paused int
		)
		if err := rows.Scan(&t.ID, &t.ChatID, &t.MessageID, &op, &t.Cron, &t.Comment, &target, &silent, &paused); err != nil {
			return nil, err
		}
		t.Op = pin.Op(op)
		if target.Valid {
			t.TargetChatID = target.Int64
		} else {
			t.TargetChatID = t.ChatID
		}
		t.Silent = silent != 0
		t.Paused = paused != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveTasks replaces the whole snapshot in one transaction, so a crash
// mid-save rolls back to the previous set instead of losing it.
func (s *sqliteStore) SaveTasks(ctx context.Context, tasks []pin.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pin_tasks`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pin_tasks(task_id, chat_id, message_id, operation, cron, comment, target_chat_id, silent, paused)
		 VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range tasks {
		var target any
		if t.TargetChatID != 0 {
			target = t.TargetChatID
		}
		if _, err := stmt.ExecContext(ctx,
			t.ID, t.ChatID, t.MessageID, string(t.Op), t.Cron, t.Comment, target, boolInt(t.Silent), boolInt(t.Paused),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) AppendAudit(ctx context.Context, e AuditEntry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit(at, actor_id, chat_id, action, task_id, ok, err)
		 VALUES(?,?,?,?,?,?,?)`,
		e.At.Format(time.RFC3339Nano), e.ActorID, e.ChatID, e.Action, nullInt64(e.TaskID), boolInt(e.OK), nullStr(e.Error),
	)
	return err
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func nullInt64(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
