// Package router dispatches /pin commands to the pin service and replies
// synchronously with the outcome. Recurring-firing failures never reach
// chat; only lifecycle commands get replies.
package router

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"pinbot/internal/pin"
	"pinbot/internal/storage"
	kit "pinbot/internal/transport"
	logx "pinbot/pkg/logx"
)

type Router struct {
	adapter kit.Adapter
	svc     *pin.Service
	store   storage.Store
	log     logx.Logger
	owners  []int64
}

func New(adapter kit.Adapter, svc *pin.Service, store storage.Store, owners []int64, log logx.Logger) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Router{adapter: adapter, svc: svc, store: store, log: log, owners: owners}
}

// Run consumes updates until ctx is done.
func (r *Router) Run(ctx context.Context, updates <-chan kit.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case up := <-updates:
			if up.Message == nil {
				continue
			}
			r.dispatch(ctx, up.Message)
		}
	}
}

const handleTimeout = 15 * time.Second

func (r *Router) dispatch(ctx context.Context, m *kit.Message) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("panic in command handler", logx.Any("panic", rec), logx.String("stack", string(debug.Stack())))
		}
	}()

	text := strings.TrimSpace(m.Text)
	if !strings.HasPrefix(text, "/pin") {
		return
	}
	// "/pin@botname list" is how groups address commands.
	head, rest, _ := strings.Cut(text, " ")
	if cmd, _, _ := strings.Cut(head, "@"); cmd != "/pin" {
		return
	}

	if !r.isOwner(m.FromID) {
		r.log.Debug("command from non-owner ignored", logx.Int64("from", m.FromID), logx.Int64("chat", m.ChatID))
		return
	}

	hctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	sub, args, _ := strings.Cut(strings.TrimSpace(rest), " ")
	args = strings.TrimSpace(args)
	switch sub {
	case "add":
		r.handleAdd(hctx, m, args)
	case "list":
		r.handleList(hctx, m, args)
	case "rm":
		r.handleRemove(hctx, m, args)
	case "pause":
		r.handlePause(hctx, m, args)
	case "resume":
		r.handleResume(hctx, m, args)
	default:
		r.reply(hctx, m, usageText)
	}
}

func (r *Router) isOwner(userID int64) bool {
	if len(r.owners) == 0 {
		return true
	}
	for _, id := range r.owners {
		if id == userID {
			return true
		}
	}
	return false
}

func (r *Router) reply(ctx context.Context, m *kit.Message, text string) {
	if _, err := r.adapter.SendText(ctx, kit.ChatTarget{ChatID: m.ChatID}, text, nil); err != nil {
		r.log.Warn("reply failed", logx.Int64("chat", m.ChatID), logx.Err(err))
	}
}

// audit records a lifecycle command outcome; failures are log-only.
func (r *Router) audit(ctx context.Context, m *kit.Message, action string, taskID int64, cmdErr error) {
	e := storage.AuditEntry{
		At:      time.Now(),
		ActorID: m.FromID,
		ChatID:  m.ChatID,
		Action:  action,
		TaskID:  taskID,
		OK:      cmdErr == nil,
	}
	if cmdErr != nil {
		e.Error = cmdErr.Error()
	}
	if err := r.store.AppendAudit(ctx, e); err != nil {
		r.log.Debug("audit append failed", logx.String("action", action), logx.Err(err))
	}
}

const usageText = `pin scheduler commands:
/pin add <cron> | <message_id> | <operation> | <comment> [| <target_chat_id>] [| silent]
/pin list [all]
/pin rm <id>
/pin pause <id>
/pin resume <id>

cron has 6 fields: sec min hour dom month dow (e.g. "0 0 9 * * *")
operation is pin or unpin`
