package pin

import (
	"errors"
	"testing"
	"time"
)

func TestCronRegisterRejectsBadSpecs(t *testing.T) {
	t.Parallel()
	s := NewCron(time.UTC)

	// Syntactically 6 fields but out of range: the parser is the
	// authority on semantic validity.
	err := s.Register(1, "70 70 70 70 70 70", func() {})
	if !errors.Is(err, ErrInvalidCron) {
		t.Fatalf("Register(out-of-range) error = %v, want ErrInvalidCron", err)
	}
	if s.Registered(1) {
		t.Fatal("failed Register left a live entry")
	}

	if err := s.Register(1, "0 9 * * *", func() {}); !errors.Is(err, ErrInvalidCron) {
		t.Fatalf("Register(5 fields) error = %v, want ErrInvalidCron", err)
	}
}

func TestCronRegisterCancel(t *testing.T) {
	t.Parallel()
	s := NewCron(time.UTC)

	if err := s.Register(1, "0 0 9 * * *", func() {}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !s.Registered(1) {
		t.Fatal("Registered(1) = false after Register")
	}

	// Re-registering the same id replaces the job instead of stacking.
	if err := s.Register(1, "0 30 9 * * *", func() {}); err != nil {
		t.Fatalf("re-Register: %v", err)
	}

	s.Cancel(1)
	if s.Registered(1) {
		t.Fatal("Registered(1) = true after Cancel")
	}
	// Idempotent: cancelling again (or an unknown id) is a no-op.
	s.Cancel(1)
	s.Cancel(999)
}

func TestCronNext(t *testing.T) {
	t.Parallel()
	s := NewCron(time.UTC)
	if err := s.Register(1, "0 0 9 * * *", func() {}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := s.Next(1); !got.IsZero() {
		t.Fatalf("Next before Start = %v, want zero", got)
	}
	if got := s.Next(404); !got.IsZero() {
		t.Fatalf("Next(unknown) = %v, want zero", got)
	}
}

func TestCronFiresAndCancelStopsFiring(t *testing.T) {
	t.Parallel()
	s := NewCron(time.UTC)

	fired := make(chan struct{}, 4)
	if err := s.Register(1, "* * * * * *", func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	s.Start()
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("every-second job did not fire within 3s")
	}

	s.Cancel(1)
	// Drain anything enqueued before the cancel took effect, then verify
	// silence.
	for {
		select {
		case <-fired:
			continue
		default:
		}
		break
	}
	select {
	case <-fired:
		t.Fatal("job fired after Cancel")
	case <-time.After(1500 * time.Millisecond):
	}
}
