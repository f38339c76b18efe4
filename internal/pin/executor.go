package pin

import (
	"context"
	"runtime/debug"
	"time"

	logx "pinbot/pkg/logx"
)

// Messenger is the capability the executor needs from the messaging
// client. The Telegram adapter implements it in production.
type Messenger interface {
	// MessageExists reports whether the message can still be acted on in
	// the chat. A (false, nil) result means "verifiably gone".
	MessageExists(ctx context.Context, chatID int64, messageID int) (bool, error)
	Pin(ctx context.Context, chatID int64, messageID int, silent bool) error
	Unpin(ctx context.Context, chatID int64, silent bool) error
}

// Executor is the body of the cron callback. It performs the task's
// action against the Messenger and absorbs every failure: a firing may be
// skipped or fail, but it never panics out of the cron goroutine, never
// deregisters the job, and never mutates task state.
type Executor struct {
	msg     Messenger
	log     logx.Logger
	timeout time.Duration
}

const defaultFireTimeout = 30 * time.Second

func NewExecutor(msg Messenger, timeout time.Duration, log logx.Logger) *Executor {
	if timeout <= 0 {
		timeout = defaultFireTimeout
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Executor{msg: msg, log: log, timeout: timeout}
}

// Fire runs one firing of the task.
func (e *Executor) Fire(ctx context.Context, t Task) {
	log := e.log.With(logx.Int64("task", t.ID), logx.String("op", string(t.Op)), logx.Int64("chat", t.Target()))

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic in pin firing", logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
		}
	}()

	if e.msg == nil {
		log.Warn("no messaging client; skipping firing")
		return
	}

	fctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	chatID := t.Target()
	switch t.Op {
	case OpPin:
		ok, err := e.msg.MessageExists(fctx, chatID, t.MessageID)
		if err != nil {
			log.Warn("message lookup failed; skipping firing", logx.Int("msg", t.MessageID), logx.Err(err))
			return
		}
		if !ok {
			// The message may reappear or the user may replace the task;
			// keep the schedule alive and just skip this firing.
			log.Warn("message gone; skipping pin", logx.Int("msg", t.MessageID))
			return
		}
		if err := e.msg.Pin(fctx, chatID, t.MessageID, t.Silent); err != nil {
			log.Warn("pin failed", logx.Int("msg", t.MessageID), logx.Err(err))
			return
		}
	case OpUnpin:
		// No existence check: unpinning a gone pin is a safe no-op at the
		// collaborator level.
		if err := e.msg.Unpin(fctx, chatID, t.Silent); err != nil {
			log.Warn("unpin failed", logx.Err(err))
			return
		}
	default:
		log.Error("unknown operation; skipping firing")
		return
	}

	log.Debug("firing completed")
}
