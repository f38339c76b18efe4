// Package pin implements the recurring pin/unpin task scheduler.
//
// A Task is a persisted record describing one recurring action ("pin
// message X in chat Y on cron schedule S"). The Service owns the
// in-memory Registry, persists every mutation as a full snapshot through
// a storage.Store-shaped port, and keeps a live cron job per non-paused
// task. When a job fires, the Executor performs the action against the
// Messenger port (the Telegram adapter in production).
//
// Live job handles never live on the Task record: the Cron wrapper tracks
// them in its own map keyed by task id, so records stay plain persisted
// values.
package pin
