package storage

import (
	"errors"
	"strings"

	logx "pinbot/pkg/logx"
)

// Open initializes the configured store. Unlike most bot state, pin
// tasks must survive restarts, so there is no "disabled" driver.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "file":
		return openFile(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + cfg.Driver)
	}
}
