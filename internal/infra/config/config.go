package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	HTTPAddr           string
	StorageMode        string
	MongoURI           string
	MongoDB            string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	Timezone           string
	DayOpenHour        int
	DayCloseHour       int
	SlotMinutes        int
	RegularQuota       int
	ShortNoticeQuota   int
	ShortNoticeLead    time.Duration
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		StorageMode:      strings.ToLower(getEnv("STORAGE_MODE", "memory")),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "courtside"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		Timezone:         getEnv("TIMEZONE", "Europe/Berlin"),
	}
	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	poll, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.OutboxPollInterval = poll

	lead, err := parseDurationEnv("SHORT_NOTICE_LEAD", 2*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.ShortNoticeLead = lead

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	if cfg.DayOpenHour, err = parseIntEnv("DAY_OPEN_HOUR", 6); err != nil {
		return Config{}, err
	}
	if cfg.DayCloseHour, err = parseIntEnv("DAY_CLOSE_HOUR", 22); err != nil {
		return Config{}, err
	}
	if cfg.SlotMinutes, err = parseIntEnv("SLOT_MINUTES", 60); err != nil {
		return Config{}, err
	}
	if cfg.RegularQuota, err = parseIntEnv("REGULAR_QUOTA", 2); err != nil {
		return Config{}, err
	}
	if cfg.ShortNoticeQuota, err = parseIntEnv("SHORT_NOTICE_QUOTA", 1); err != nil {
		return Config{}, err
	}

	switch cfg.StorageMode {
	case "memory":
	case "mongo":
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE_MODE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_MODE %q", cfg.StorageMode)
	}
	if cfg.DayCloseHour <= cfg.DayOpenHour {
		return Config{}, fmt.Errorf("DAY_CLOSE_HOUR must be after DAY_OPEN_HOUR")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	var v int
	if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%d", &v); err != nil {
		return 0, fmt.Errorf("invalid %s integer: %q", key, raw)
	}
	return v, nil
}
