package pin

import (
	"context"
	"fmt"
	"sync"
	"time"

	logx "pinbot/pkg/logx"
)

// Store is the persistence port the service needs. Every mutation is
// followed by a full snapshot save (replace-all); there is no
// incremental update path to get subtly wrong.
type Store interface {
	LoadTasks(ctx context.Context) ([]Task, error)
	SaveTasks(ctx context.Context, tasks []Task) error
}

// NewTask carries user input for Add. Zero TargetChatID means "same chat
// the command was issued in".
type NewTask struct {
	ChatID       int64
	MessageID    int
	Op           Op
	Cron         string
	Comment      string
	TargetChatID int64
	Silent       bool
}

// Service composes the registry, store, cron wrapper and executor behind
// one mutex. Commands arrive from Telegram handler goroutines, so
// mutations must be serialized against each other and against the
// snapshot saves they trigger.
//
// Single-instance lifecycle: constructed once at process start, Start()
// rehydrates and schedules, Stop() cancels all jobs.
type Service struct {
	mu    sync.Mutex
	reg   *Registry
	store Store
	cron  *Cron
	exec  *Executor
	log   logx.Logger

	runCtx    context.Context
	runCancel context.CancelFunc
}

func NewService(store Store, cron *Cron, exec *Executor, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		reg:   NewRegistry(),
		store: store,
		cron:  cron,
		exec:  exec,
		log:   log,
	}
}

// Start rehydrates the registry from the store and registers a job for
// every non-paused task. An unavailable store means starting empty: the
// bot stays up, later mutations surface their own persistence errors.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runCtx, s.runCancel = context.WithCancel(context.WithoutCancel(ctx))

	tasks, err := s.store.LoadTasks(ctx)
	if err != nil {
		s.log.Error("task load failed; starting with empty registry", logx.Err(err))
		tasks = nil
	}

	dirty := false
	for _, t := range tasks {
		if t.TargetChatID == 0 {
			t.TargetChatID = t.ChatID
		}
		s.reg.Add(t)
		if t.Paused {
			continue
		}
		if err := s.registerLocked(t); err != nil {
			// A spec that no longer parses must not drop the task; park it
			// paused so the user can fix and resume.
			s.log.Error("task re-registration failed; pausing", logx.Int64("task", t.ID), logx.String("spec", t.Cron), logx.Err(err))
			t.Paused = true
			s.reg.Update(t)
			dirty = true
		}
	}
	if dirty {
		if err := s.store.SaveTasks(ctx, s.reg.Tasks()); err != nil {
			s.log.Error("task save failed", logx.Err(err))
		}
	}

	s.cron.Start()
	s.log.Info("pin scheduler started", logx.Int("tasks", s.reg.Len()))
}

// Stop cancels all jobs and waits for in-flight firings.
func (s *Service) Stop() {
	s.mu.Lock()
	cancel := s.runCancel
	s.runCancel = nil
	s.mu.Unlock()
	s.cron.Stop()
	if cancel != nil {
		cancel()
	}
	s.log.Info("pin scheduler stopped")
}

// Add validates, assigns an id, inserts, schedules and persists a task.
//
// A spec with the right field count that the cron parser still rejects
// does not lose the record: the task is kept paused and the error
// surfaces to the caller, so it is never neither scheduled nor paused.
func (s *Service) Add(ctx context.Context, in NewTask) (Task, error) {
	t := Task{
		ChatID:       in.ChatID,
		MessageID:    in.MessageID,
		Op:           in.Op,
		Cron:         in.Cron,
		Comment:      in.Comment,
		TargetChatID: in.TargetChatID,
		Silent:       in.Silent,
	}
	if t.TargetChatID == 0 {
		t.TargetChatID = t.ChatID
	}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.reg.NextID()

	regErr := s.registerLocked(t)
	if regErr != nil {
		t.Paused = true
	}
	s.reg.Add(t)

	if err := s.store.SaveTasks(ctx, s.reg.Tasks()); err != nil {
		s.log.Error("task save failed", logx.Int64("task", t.ID), logx.Err(err))
		if regErr == nil {
			return t, fmt.Errorf("task %d scheduled but not persisted: %w", t.ID, err)
		}
	}
	if regErr != nil {
		return t, fmt.Errorf("task %d stored paused: %w", t.ID, regErr)
	}

	s.log.Info("task added", logx.Int64("task", t.ID), logx.String("spec", t.Cron), logx.String("op", string(t.Op)))
	return t, nil
}

// Remove cancels the task's job (if scheduled), deletes it and persists
// the new snapshot.
func (s *Service) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reg.Get(id); !ok {
		return ErrTaskNotFound
	}
	s.cron.Cancel(id)
	s.reg.Remove(id)

	if err := s.store.SaveTasks(ctx, s.reg.Tasks()); err != nil {
		s.log.Error("task save failed", logx.Int64("task", id), logx.Err(err))
		return fmt.Errorf("task %d removed but not persisted: %w", id, err)
	}
	s.log.Info("task removed", logx.Int64("task", id))
	return nil
}

// Pause cancels the job and marks the task paused. Pausing an already
// paused task is a no-op.
func (s *Service) Pause(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.reg.Get(id)
	if !ok {
		return ErrTaskNotFound
	}
	if t.Paused {
		return nil
	}

	s.cron.Cancel(id)
	t.Paused = true
	s.reg.Update(t)

	if err := s.store.SaveTasks(ctx, s.reg.Tasks()); err != nil {
		s.log.Error("task save failed", logx.Int64("task", id), logx.Err(err))
		return fmt.Errorf("task %d paused but not persisted: %w", id, err)
	}
	s.log.Info("task paused", logx.Int64("task", id))
	return nil
}

// Resume re-registers the job and clears the paused flag. If
// registration fails the task stays paused and the error surfaces.
func (s *Service) Resume(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.reg.Get(id)
	if !ok {
		return ErrTaskNotFound
	}
	if !t.Paused {
		return nil
	}

	t.Paused = false
	if err := s.registerLocked(t); err != nil {
		return err
	}
	s.reg.Update(t)

	if err := s.store.SaveTasks(ctx, s.reg.Tasks()); err != nil {
		s.log.Error("task save failed", logx.Int64("task", id), logx.Err(err))
		return fmt.Errorf("task %d resumed but not persisted: %w", id, err)
	}
	s.log.Info("task resumed", logx.Int64("task", id))
	return nil
}

// List returns tasks for a chat (or all tasks) in insertion order.
func (s *Service) List(chatID int64, all bool) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.ListForChat(chatID, all)
}

// Get returns the task by id.
func (s *Service) Get(id int64) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Get(id)
}

// Next returns the next firing time for the task, zero when paused.
func (s *Service) Next(id int64) time.Time {
	return s.cron.Next(id)
}

// Scheduled reports whether the task currently has a live job.
func (s *Service) Scheduled(id int64) bool {
	return s.cron.Registered(id)
}

// registerLocked installs the cron job for t. The callback re-reads the
// record at fire time so pause/remove between firings always wins, and
// runs under the service's run context so shutdown cancels in-flight
// Telegram calls.
func (s *Service) registerLocked(t Task) error {
	id := t.ID
	return s.cron.Register(id, t.Cron, func() {
		s.mu.Lock()
		cur, ok := s.reg.Get(id)
		ctx := s.runCtx
		s.mu.Unlock()
		if !ok || cur.Paused {
			return
		}
		if ctx == nil {
			ctx = context.Background()
		}
		s.exec.Fire(ctx, cur)
	})
}
