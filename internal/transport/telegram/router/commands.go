package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pinbot/internal/pin"
	kit "pinbot/internal/transport"
)

func (r *Router) handleAdd(ctx context.Context, m *kit.Message, args string) {
	parsed, err := parseAddArgs(args)
	if err != nil {
		r.reply(ctx, m, "add failed: "+err.Error()+"\n\n"+usageText)
		return
	}

	task, err := r.svc.Add(ctx, pin.NewTask{
		ChatID:       m.ChatID,
		MessageID:    parsed.MessageID,
		Op:           parsed.Op,
		Cron:         parsed.Cron,
		Comment:      parsed.Comment,
		TargetChatID: parsed.TargetChatID,
		Silent:       parsed.Silent,
	})
	r.audit(ctx, m, "add", task.ID, err)
	if err != nil {
		r.reply(ctx, m, "add failed: "+err.Error())
		return
	}
	r.reply(ctx, m, fmt.Sprintf("task #%d scheduled\n%s", task.ID, pin.Describe(task, false)))
}

func (r *Router) handleList(ctx context.Context, m *kit.Message, args string) {
	all := strings.EqualFold(strings.TrimSpace(args), "all")
	tasks := r.svc.List(m.ChatID, all)
	if len(tasks) == 0 {
		r.reply(ctx, m, "no pin tasks")
		return
	}
	var b strings.Builder
	for _, t := range tasks {
		b.WriteString(pin.Describe(t, all))
		if next := r.svc.Next(t.ID); !next.IsZero() {
			fmt.Fprintf(&b, " next=%s", next.Format("2006-01-02 15:04:05"))
		}
		b.WriteByte('\n')
	}
	r.reply(ctx, m, strings.TrimRight(b.String(), "\n"))
}

func (r *Router) handleRemove(ctx context.Context, m *kit.Message, args string) {
	id, err := parseTaskID(args)
	if err != nil {
		r.reply(ctx, m, "rm failed: "+err.Error())
		return
	}
	err = r.svc.Remove(ctx, id)
	r.audit(ctx, m, "rm", id, err)
	switch {
	case errors.Is(err, pin.ErrTaskNotFound):
		r.reply(ctx, m, fmt.Sprintf("task #%d not found", id))
	case err != nil:
		r.reply(ctx, m, "rm failed: "+err.Error())
	default:
		r.reply(ctx, m, fmt.Sprintf("task #%d removed", id))
	}
}

func (r *Router) handlePause(ctx context.Context, m *kit.Message, args string) {
	id, err := parseTaskID(args)
	if err != nil {
		r.reply(ctx, m, "pause failed: "+err.Error())
		return
	}
	err = r.svc.Pause(ctx, id)
	r.audit(ctx, m, "pause", id, err)
	switch {
	case errors.Is(err, pin.ErrTaskNotFound):
		r.reply(ctx, m, fmt.Sprintf("task #%d not found", id))
	case err != nil:
		r.reply(ctx, m, "pause failed: "+err.Error())
	default:
		r.reply(ctx, m, fmt.Sprintf("task #%d paused", id))
	}
}

func (r *Router) handleResume(ctx context.Context, m *kit.Message, args string) {
	id, err := parseTaskID(args)
	if err != nil {
		r.reply(ctx, m, "resume failed: "+err.Error())
		return
	}
	err = r.svc.Resume(ctx, id)
	r.audit(ctx, m, "resume", id, err)
	switch {
	case errors.Is(err, pin.ErrTaskNotFound):
		r.reply(ctx, m, fmt.Sprintf("task #%d not found", id))
	case err != nil:
		r.reply(ctx, m, "resume failed: "+err.Error())
	default:
		r.reply(ctx, m, fmt.Sprintf("task #%d resumed", id))
	}
}
