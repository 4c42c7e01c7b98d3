package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "dev" || cfg.HTTPAddr != ":8080" || cfg.StorageMode != "memory" {
		t.Fatalf("unexpected base config: %+v", cfg)
	}
	if cfg.OutboxPollInterval != 500*time.Millisecond {
		t.Fatalf("OutboxPollInterval = %v", cfg.OutboxPollInterval)
	}
	if cfg.ShortNoticeLead != 2*time.Hour {
		t.Fatalf("ShortNoticeLead = %v", cfg.ShortNoticeLead)
	}
	if len(cfg.RetryBackoff) != 3 || cfg.RetryBackoff[2] != 30*time.Second {
		t.Fatalf("RetryBackoff = %v", cfg.RetryBackoff)
	}
	if cfg.DayOpenHour != 6 || cfg.DayCloseHour != 22 || cfg.SlotMinutes != 60 {
		t.Fatalf("unexpected window config: %+v", cfg)
	}
	if cfg.RegularQuota != 2 || cfg.ShortNoticeQuota != 1 {
		t.Fatalf("unexpected quota config: %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RETRY_BACKOFF", "2s, 10s")
	t.Setenv("DAY_OPEN_HOUR", "8")
	t.Setenv("SHORT_NOTICE_LEAD", "45m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "prod" {
		t.Fatalf("Env = %q", cfg.Env)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if len(cfg.RetryBackoff) != 2 || cfg.RetryBackoff[1] != 10*time.Second {
		t.Fatalf("RetryBackoff = %v", cfg.RetryBackoff)
	}
	if cfg.DayOpenHour != 8 {
		t.Fatalf("DayOpenHour = %d", cfg.DayOpenHour)
	}
	if cfg.ShortNoticeLead != 45*time.Minute {
		t.Fatalf("ShortNoticeLead = %v", cfg.ShortNoticeLead)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"mongo without uri", "STORAGE_MODE", "mongo"},
		{"unknown storage mode", "STORAGE_MODE", "postgres"},
		{"bad poll interval", "OUTBOX_POLL_INTERVAL", "soon"},
		{"bad backoff entry", "RETRY_BACKOFF", "1s,never"},
		{"bad hour", "DAY_OPEN_HOUR", "noon"},
		{"closed before open", "DAY_CLOSE_HOUR", "5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load accepted %s=%s", tc.key, tc.value)
			}
		})
	}
}
