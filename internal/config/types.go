package config

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Storage  StorageConfig  `json:"storage"`
	Pin      PinConfig      `json:"pin,omitempty"`
}

type TelegramConfig struct {
	Token        string  `json:"token"`
	OwnerUserIDs []int64 `json:"owner_user_ids"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`
	// RatePerSec caps outbound Bot API calls. 0 means the default (20).
	RatePerSec int `json:"rate_per_sec,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls pin task persistence.
//
// Driver values:
//   - "sqlite": SQLite database file (default)
//   - "file":   JSON snapshot + jsonl audit log
type StorageConfig struct {
	Driver string `json:"driver"`
	Path   string `json:"path"`
	// BusyTimeout is a Go duration string (sqlite only); "0s" keeps the default.
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// PinConfig controls the pin task scheduler.
type PinConfig struct {
	// Timezone is the IANA zone cron schedules are evaluated in,
	// e.g. "Asia/Jakarta". Empty means the process-local zone.
	Timezone string `json:"timezone,omitempty"`
	// FireTimeout bounds a single firing's Telegram calls.
	// Go duration string; "0s" falls back to the default (30s).
	FireTimeout string `json:"fire_timeout,omitempty"`
}
