package pin

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTaskNotFound = errors.New("pin task not found")
	ErrInvalidCron  = errors.New("invalid cron expression")
	ErrInvalidOp    = errors.New("operation must be pin or unpin")
)

// Op is the action a task performs when it fires.
type Op string

const (
	OpPin   Op = "pin"
	OpUnpin Op = "unpin"
)

// ParseOp parses a user-supplied operation token.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pin":
		return OpPin, nil
	case "unpin":
		return OpUnpin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOp, s)
	}
}

// Task is one scheduled pin/unpin action. It is a plain persisted value;
// runtime scheduling state lives in the Cron wrapper, keyed by ID.
type Task struct {
	ID        int64  `json:"task_id"`
	ChatID    int64  `json:"chat_id"`
	MessageID int    `json:"message_id"`
	Op        Op     `json:"operation"`
	Cron      string `json:"cron"` // 6 space-separated fields (with seconds)
	Comment   string `json:"comment"`
	// TargetChatID is the chat the action executes against. Filled with
	// ChatID at creation when the user doesn't supply one; Target() keeps
	// the fallback for records loaded from older snapshots.
	TargetChatID int64 `json:"target_chat_id"`
	Silent       bool  `json:"silent"`
	Paused       bool  `json:"paused"`
}

// Target returns the chat the task executes against.
func (t Task) Target() int64 {
	if t.TargetChatID != 0 {
		return t.TargetChatID
	}
	return t.ChatID
}

// cronFieldCount is the required number of space-separated cron fields:
// seconds, minutes, hours, day-of-month, month, day-of-week.
const cronFieldCount = 6

// ValidateSpec checks the field count only. Semantic validity (ranges,
// names) is the cron parser's call at registration time.
func ValidateSpec(spec string) error {
	if n := len(strings.Fields(spec)); n != cronFieldCount {
		return fmt.Errorf("%w: want %d fields, got %d", ErrInvalidCron, cronFieldCount, n)
	}
	return nil
}

// Validate checks everything that must hold before a task is persisted
// or scheduled.
func (t Task) Validate() error {
	if t.Op != OpPin && t.Op != OpUnpin {
		return fmt.Errorf("%w: %q", ErrInvalidOp, t.Op)
	}
	if t.MessageID <= 0 {
		return fmt.Errorf("message id must be positive, got %d", t.MessageID)
	}
	return ValidateSpec(t.Cron)
}
