package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	logx "pinbot/pkg/logx"
)

const jsonSample = `{
  "telegram": {
    "token": "123:abc",
    "owner_user_ids": [111, 222],
    "rate_per_sec": 10
  },
  "logging": {
    "level": "debug",
    "console": true,
    "file": {"enabled": true, "path": "/tmp/pinbot.log"}
  },
  "storage": {
    "driver": "sqlite",
    "path": "/tmp/pinbot.db",
    "busy_timeout": "5s"
  },
  "pin": {
    "timezone": "Asia/Jakarta",
    "fire_timeout": "45s"
  }
}`

const yamlSample = `telegram:
  token: "123:abc"
  owner_user_ids:
    - 111
    - 222
logging:
  level: info
  console: true
  file:
    enabled: false
    path: ""
storage:
  driver: file
  path: ./data/tasks.json
pin:
  timezone: UTC
`

func TestParseJSON(t *testing.T) {
	t.Parallel()
	cfg, err := Parse("config.json", []byte(jsonSample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if len(cfg.Telegram.OwnerUserIDs) != 2 || cfg.Telegram.OwnerUserIDs[1] != 222 {
		t.Fatalf("owners = %v", cfg.Telegram.OwnerUserIDs)
	}
	if !cfg.Logging.File.Enabled || cfg.Logging.Level != "debug" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.BusyTimeout != "5s" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if cfg.Pin.Timezone != "Asia/Jakarta" || cfg.Pin.FireTimeout != "45s" {
		t.Fatalf("pin = %+v", cfg.Pin)
	}
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	cfg, err := Parse("config.yaml", []byte(yamlSample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Storage.Driver != "file" || cfg.Storage.Path != "./data/tasks.json" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if cfg.Pin.Timezone != "UTC" {
		t.Fatalf("pin = %+v", cfg.Pin)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	// A typo must fail loudly, not be silently dropped.
	if _, err := Parse("config.json", []byte(`{"telegram": {"tokne": "x"}}`)); err == nil {
		t.Fatal("unknown field accepted")
	}
	if _, err := Parse("config.yaml", []byte("telegram:\n  tokne: x\n")); err == nil {
		t.Fatal("unknown YAML field accepted")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	t.Parallel()
	if _, err := Parse("config.json", []byte(`{"telegram":`)); err == nil {
		t.Fatal("truncated JSON accepted")
	}
	if _, err := Parse("config.yaml", []byte("telegram: [unclosed\n")); err == nil {
		t.Fatal("malformed YAML accepted")
	}
}

func TestManagerLoadAndGet(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(jsonSample), 0o600); err != nil {
		t.Fatal(err)
	}

	m := NewManager(path, logx.Nop())
	if m.Get() != nil {
		t.Fatal("Get before Load returned a config")
	}
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Get() != cfg {
		t.Fatal("Get did not return the loaded config")
	}
}

func TestManagerLoadMissingFile(t *testing.T) {
	t.Parallel()
	m := NewManager(filepath.Join(t.TempDir(), "nope.json"), logx.Nop())
	if _, err := m.Load(); err == nil {
		t.Fatal("Load of missing file succeeded")
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want time.Duration
		ok   bool
	}{
		{"", 0, true},
		{"  ", 0, true},
		{"5s", 5 * time.Second, true},
		{"2m30s", 2*time.Minute + 30*time.Second, true},
		{"-1s", 0, false},
		{"5", 0, false},
		{"soon", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseDurationField("x", tt.raw)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseDurationField(%q) = %v, %v; want %v", tt.raw, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseDurationField(%q) = %v, want error", tt.raw, got)
		}
	}
}

func TestParseDurationOrDefault(t *testing.T) {
	t.Parallel()
	if got, err := ParseDurationOrDefault("x", "", 30*time.Second); err != nil || got != 30*time.Second {
		t.Fatalf("empty = %v, %v; want default", got, err)
	}
	if got, err := ParseDurationOrDefault("x", "10s", 30*time.Second); err != nil || got != 10*time.Second {
		t.Fatalf("10s = %v, %v", got, err)
	}
	if _, err := ParseDurationOrDefault("x", "later", 30*time.Second); err == nil {
		t.Fatal("invalid duration accepted")
	}
}
