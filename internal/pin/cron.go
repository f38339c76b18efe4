package pin

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Cron wraps robfig/cron behind the small surface the pin service needs:
// register a 6-field spec under a task id, cancel it, and ask for the
// next firing time. Live cron entry ids are kept here, keyed by task id,
// never on the Task record.
type Cron struct {
	parser cron.Parser

	mu      sync.Mutex
	c       *cron.Cron
	entries map[int64]cron.EntryID
}

// NewCron builds a scheduler evaluating 6-field specs (with seconds) in
// the given location. No descriptors ("@daily") and no optional seconds:
// the persisted format is exactly one shape.
func NewCron(loc *time.Location) *Cron {
	if loc == nil {
		loc = time.Local
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &Cron{
		parser:  parser,
		c:       cron.New(cron.WithParser(parser), cron.WithLocation(loc)),
		entries: map[int64]cron.EntryID{},
	}
}

func (s *Cron) Start() { s.c.Start() }

// Stop cancels all jobs and waits for in-flight firings to finish.
func (s *Cron) Stop() {
	s.mu.Lock()
	s.entries = map[int64]cron.EntryID{}
	c := s.c
	s.mu.Unlock()
	<-c.Stop().Done()
}

// Register parses spec and installs a recurring job for the task id,
// replacing any job already registered under that id. A spec the parser
// rejects yields ErrInvalidCron and leaves nothing scheduled.
func (s *Cron) Register(id int64, spec string, job func()) error {
	if err := ValidateSpec(spec); err != nil {
		return err
	}
	sched, err := s.parser.Parse(spec)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCron, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.entries[id]; ok {
		s.c.Remove(old)
	}
	s.entries[id] = s.c.Schedule(sched, cron.FuncJob(job))
	return nil
}

// Cancel stops future firings for the task id. Idempotent: cancelling an
// unknown or already-cancelled id is a no-op. A firing already in
// progress is not interrupted.
func (s *Cron) Cancel(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eid, ok := s.entries[id]
	if !ok {
		return
	}
	delete(s.entries, id)
	s.c.Remove(eid)
}

// Registered reports whether the task id has a live job.
func (s *Cron) Registered(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// Next returns the next firing time for the task id, or zero if it has
// no live job (paused, removed, or scheduler not started).
func (s *Cron) Next(id int64) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	eid, ok := s.entries[id]
	if !ok {
		return time.Time{}
	}
	return s.c.Entry(eid).Next
}
