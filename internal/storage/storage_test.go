package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pinbot/internal/pin"
	logx "pinbot/pkg/logx"
)

func openTestStore(t *testing.T, driver string) Store {
	t.Helper()
	ext := ".db"
	if driver == "file" {
		ext = ".json"
	}
	st, err := Open(Config{Driver: driver, Path: filepath.Join(t.TempDir(), "tasks"+ext)}, logx.Nop())
	if err != nil {
		t.Fatalf("Open(%s): %v", driver, err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func sampleTasks() []pin.Task {
	return []pin.Task{
		{ID: 1, ChatID: -100123, MessageID: 55, Op: pin.OpPin, Cron: "0 0 9 * * 1-5", Comment: "standup", TargetChatID: -100123, Silent: true},
		{ID: 3, ChatID: -100123, MessageID: 56, Op: pin.OpUnpin, Cron: "0 0 18 * * 1-5", TargetChatID: -100456, Paused: true},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"sqlite", "file"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			st := openTestStore(t, driver)
			ctx := context.Background()

			got, err := st.LoadTasks(ctx)
			if err != nil {
				t.Fatalf("LoadTasks(empty): %v", err)
			}
			if len(got) != 0 {
				t.Fatalf("fresh store returned %d tasks", len(got))
			}

			want := sampleTasks()
			if err := st.SaveTasks(ctx, want); err != nil {
				t.Fatalf("SaveTasks: %v", err)
			}
			// Saving a loaded snapshot must be a fixpoint.
			for i := 0; i < 3; i++ {
				got, err = st.LoadTasks(ctx)
				if err != nil {
					t.Fatalf("LoadTasks #%d: %v", i, err)
				}
				if len(got) != len(want) {
					t.Fatalf("loaded %d tasks, want %d", len(got), len(want))
				}
				for j := range want {
					if got[j] != want[j] {
						t.Fatalf("task[%d] = %+v, want %+v", j, got[j], want[j])
					}
				}
				if err := st.SaveTasks(ctx, got); err != nil {
					t.Fatalf("re-SaveTasks: %v", err)
				}
			}
		})
	}
}

func TestStoreReplaceAll(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"sqlite", "file"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			st := openTestStore(t, driver)
			ctx := context.Background()

			if err := st.SaveTasks(ctx, sampleTasks()); err != nil {
				t.Fatalf("SaveTasks: %v", err)
			}
			// The new snapshot fully replaces the old one, including ids
			// absent from the new set.
			next := []pin.Task{{ID: 9, ChatID: 10, MessageID: 1, Op: pin.OpPin, Cron: "0 * * * * *", TargetChatID: 10}}
			if err := st.SaveTasks(ctx, next); err != nil {
				t.Fatalf("SaveTasks(replace): %v", err)
			}
			got, err := st.LoadTasks(ctx)
			if err != nil {
				t.Fatalf("LoadTasks: %v", err)
			}
			if len(got) != 1 || got[0].ID != 9 {
				t.Fatalf("snapshot after replace = %+v", got)
			}

			if err := st.SaveTasks(ctx, nil); err != nil {
				t.Fatalf("SaveTasks(nil): %v", err)
			}
			got, err = st.LoadTasks(ctx)
			if err != nil {
				t.Fatalf("LoadTasks: %v", err)
			}
			if len(got) != 0 {
				t.Fatalf("snapshot after clearing = %+v", got)
			}
		})
	}
}

func TestStorePreservesOrder(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"sqlite", "file"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			st := openTestStore(t, driver)
			ctx := context.Background()

			// Registry order is ascending id order (a new id always exceeds
			// every existing one); load order must match it.
			want := []pin.Task{
				{ID: 2, ChatID: 1, MessageID: 1, Op: pin.OpPin, Cron: "0 * * * * *", TargetChatID: 1},
				{ID: 5, ChatID: 1, MessageID: 2, Op: pin.OpPin, Cron: "0 * * * * *", TargetChatID: 1},
				{ID: 8, ChatID: 1, MessageID: 3, Op: pin.OpPin, Cron: "0 * * * * *", TargetChatID: 1},
			}
			if err := st.SaveTasks(ctx, want); err != nil {
				t.Fatalf("SaveTasks: %v", err)
			}
			got, err := st.LoadTasks(ctx)
			if err != nil {
				t.Fatalf("LoadTasks: %v", err)
			}
			for i := range want {
				if got[i].ID != want[i].ID {
					t.Fatalf("order[%d] = %d, want %d", i, got[i].ID, want[i].ID)
				}
			}
		})
	}
}

func TestSQLiteZeroTargetFallsBackToChat(t *testing.T) {
	t.Parallel()
	st := openTestStore(t, "sqlite")
	ctx := context.Background()

	// A zero target is stored as NULL and resolved to the source chat on
	// load.
	in := []pin.Task{{ID: 1, ChatID: 77, MessageID: 1, Op: pin.OpPin, Cron: "0 * * * * *"}}
	if err := st.SaveTasks(ctx, in); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}
	got, err := st.LoadTasks(ctx)
	if err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	if got[0].TargetChatID != 77 {
		t.Fatalf("TargetChatID = %d, want fallback 77", got[0].TargetChatID)
	}
}

func TestStoreAppendAudit(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"sqlite", "file"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			st := openTestStore(t, driver)
			ctx := context.Background()

			entries := []AuditEntry{
				{ActorID: 1, ChatID: 10, Action: "add", TaskID: 1, OK: true},
				{ActorID: 1, ChatID: 10, Action: "rm", TaskID: 99, OK: false, Error: "task not found"},
			}
			for _, e := range entries {
				if err := st.AppendAudit(ctx, e); err != nil {
					t.Fatalf("AppendAudit: %v", err)
				}
			}
		})
	}
}

func TestFileStoreAuditLines(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	st, err := Open(Config{Driver: "file", Path: filepath.Join(dir, "tasks.json")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := st.AppendAudit(ctx, AuditEntry{ActorID: 1, Action: "add", OK: true}); err != nil {
			t.Fatalf("AppendAudit: %v", err)
		}
	}

	b, err := os.ReadFile(filepath.Join(dir, "tasks.audit.jsonl"))
	if err != nil {
		t.Fatalf("read audit file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 {
		t.Fatalf("audit file has %d lines, want 3", len(lines))
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "postgres", Path: "x"}, logx.Nop()); err == nil {
		t.Fatal("unknown driver accepted")
	}
	if _, err := Open(Config{Driver: "file"}, logx.Nop()); err == nil {
		t.Fatal("file driver without path accepted")
	}
}
