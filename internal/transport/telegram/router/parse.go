package router

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pinbot/internal/pin"
)

var errUsage = errors.New("bad arguments")

// AddArgs is the parsed form of
//
//	add <cron> | <message_id> | <operation> | <comment> [| <target_chat_id>] [| silent]
//
// The cron expression contains spaces, so fields are pipe-separated.
type AddArgs struct {
	Cron         string
	MessageID    int
	Op           pin.Op
	Comment      string
	TargetChatID int64
	Silent       bool
}

func parseAddArgs(raw string) (AddArgs, error) {
	parts := strings.Split(raw, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 4 || len(parts) > 6 {
		return AddArgs{}, fmt.Errorf("%w: want 4-6 pipe-separated fields, got %d", errUsage, len(parts))
	}

	var out AddArgs
	out.Cron = parts[0]
	if err := pin.ValidateSpec(out.Cron); err != nil {
		return AddArgs{}, err
	}

	msgID, err := strconv.Atoi(parts[1])
	if err != nil || msgID <= 0 {
		return AddArgs{}, fmt.Errorf("%w: message id must be a positive integer, got %q", errUsage, parts[1])
	}
	out.MessageID = msgID

	op, err := pin.ParseOp(parts[2])
	if err != nil {
		return AddArgs{}, err
	}
	out.Op = op

	out.Comment = parts[3]

	// Optional trailing fields: a target chat id, a "silent" flag, or both
	// in that order.
	rest := parts[4:]
	if len(rest) > 0 && !strings.EqualFold(rest[0], "silent") {
		target, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return AddArgs{}, fmt.Errorf("%w: target chat id must be an integer, got %q", errUsage, rest[0])
		}
		out.TargetChatID = target
		rest = rest[1:]
	}
	if len(rest) > 0 {
		if !strings.EqualFold(rest[0], "silent") {
			return AddArgs{}, fmt.Errorf("%w: unexpected trailing field %q", errUsage, rest[0])
		}
		out.Silent = true
		rest = rest[1:]
	}
	if len(rest) > 0 {
		return AddArgs{}, fmt.Errorf("%w: unexpected trailing field %q", errUsage, rest[0])
	}
	return out, nil
}

func parseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: task id must be a positive integer, got %q", errUsage, raw)
	}
	return id, nil
}
