package pin

import (
	"fmt"
	"strings"
)

// Registry is the authoritative in-memory task set for the current
// process. It is not goroutine-safe; the Service serializes access.
type Registry struct {
	byID  map[int64]Task
	order []int64 // insertion order, drives listing and persistence
}

func NewRegistry() *Registry {
	return &Registry{byID: map[int64]Task{}}
}

// Add inserts the task if its id is not already present (idempotent by id).
func (r *Registry) Add(t Task) {
	if _, ok := r.byID[t.ID]; ok {
		return
	}
	r.byID[t.ID] = t
	r.order = append(r.order, t.ID)
}

// Remove deletes the task and reports whether it existed.
func (r *Registry) Remove(id int64) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Registry) Get(id int64) (Task, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Update replaces an existing task in place (same id, same position).
func (r *Registry) Update(t Task) bool {
	if _, ok := r.byID[t.ID]; !ok {
		return false
	}
	r.byID[t.ID] = t
	return true
}

// NextID returns max(existing ids)+1, or 1 when the registry is empty.
func (r *Registry) NextID() int64 {
	var max int64
	for id := range r.byID {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func (r *Registry) Len() int { return len(r.byID) }

// Tasks returns all tasks in insertion order.
func (r *Registry) Tasks() []Task {
	out := make([]Task, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// ListForChat returns tasks in insertion order. When all is false the
// result is filtered to tasks targeting the given chat.
func (r *Registry) ListForChat(chatID int64, all bool) []Task {
	out := make([]Task, 0, len(r.order))
	for _, id := range r.order {
		t := r.byID[id]
		if !all && t.Target() != chatID {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Describe renders the one-line summary used by /pin list.
// showAll additionally prints the target chat id.
func Describe(t Task, showAll bool) string {
	var b strings.Builder
	state := "running"
	if t.Paused {
		state = "paused"
	}
	fmt.Fprintf(&b, "#%d [%s] %s", t.ID, t.Cron, state)
	if showAll {
		fmt.Fprintf(&b, " chat=%d", t.Target())
	}
	fmt.Fprintf(&b, " %s msg=%d", t.Op, t.MessageID)
	if t.Silent {
		b.WriteString(" silent")
	}
	if strings.TrimSpace(t.Comment) != "" {
		b.WriteString(" - ")
		b.WriteString(t.Comment)
	}
	return b.String()
}
