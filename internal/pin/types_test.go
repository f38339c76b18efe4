package pin

import (
	"errors"
	"testing"
)

func TestValidateSpec(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		spec string
		ok   bool
	}{
		{name: "6 fields", spec: "0 0 9 * * *", ok: true},
		{name: "6 fields, out of range values pass the count check", spec: "70 70 70 70 70 70", ok: true},
		{name: "5 fields", spec: "0 9 * * *", ok: false},
		{name: "7 fields", spec: "0 0 9 * * * 2024", ok: false},
		{name: "empty", spec: "", ok: false},
		{name: "extra whitespace is tolerated", spec: "  0  0 9 * * *  ", ok: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSpec(tt.spec)
			if tt.ok && err != nil {
				t.Fatalf("ValidateSpec(%q) = %v, want nil", tt.spec, err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatalf("ValidateSpec(%q) = nil, want error", tt.spec)
				}
				if !errors.Is(err, ErrInvalidCron) {
					t.Fatalf("error = %v, want ErrInvalidCron", err)
				}
			}
		})
	}
}

func TestParseOp(t *testing.T) {
	t.Parallel()
	if op, err := ParseOp(" Pin "); err != nil || op != OpPin {
		t.Fatalf("ParseOp(Pin) = %v, %v", op, err)
	}
	if op, err := ParseOp("unpin"); err != nil || op != OpUnpin {
		t.Fatalf("ParseOp(unpin) = %v, %v", op, err)
	}
	if _, err := ParseOp("repin"); !errors.Is(err, ErrInvalidOp) {
		t.Fatalf("ParseOp(repin) error = %v, want ErrInvalidOp", err)
	}
}

func TestTaskTarget(t *testing.T) {
	t.Parallel()
	if got := (Task{ChatID: 10}).Target(); got != 10 {
		t.Fatalf("Target fallback = %d, want 10", got)
	}
	if got := (Task{ChatID: 10, TargetChatID: 42}).Target(); got != 42 {
		t.Fatalf("Target = %d, want 42", got)
	}
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()
	base := Task{Op: OpPin, MessageID: 1, Cron: "0 0 9 * * *"}
	if err := base.Validate(); err != nil {
		t.Fatalf("Validate = %v, want nil", err)
	}

	bad := base
	bad.Op = "move"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidOp) {
		t.Fatalf("bad op error = %v, want ErrInvalidOp", err)
	}

	bad = base
	bad.MessageID = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("zero message id accepted")
	}

	bad = base
	bad.Cron = "* * * * *"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCron) {
		t.Fatalf("5-field cron error = %v, want ErrInvalidCron", err)
	}
}
