package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"foyer/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Snapshot persistence
	DataBackend  string
	SnapshotPath string
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Advisor
	GeminiAPIKey string
	GeminiModel  string

	// Dashboard
	RecentSort  string
	RecentLimit int

	// Worker
	BackupDir      string
	BackupInterval time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", "file"),
		SnapshotPath: getEnv("SNAPSHOT_PATH", "./data/foyer.json"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/foyer.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "foyer"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "foyer_changes"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", ""),

		RecentSort:  getEnv("RECENT_SORT", string(core.SortInsertion)),
		RecentLimit: getEnvInt("RECENT_LIMIT", core.DefaultRecentLimit),

		BackupDir:      getEnv("BACKUP_DIR", "./data/backups"),
		BackupInterval: getEnvDuration("BACKUP_INTERVAL", 15*time.Minute),
	}

	return cfg
}

// SummaryOptions translates the dashboard knobs into core options.
func (c *Config) SummaryOptions() core.SummaryOptions {
	return core.SummaryOptions{
		RecentSort:  core.SortStrategy(c.RecentSort),
		RecentLimit: c.RecentLimit,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"file", "sqlite", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "file" {
		if c.SnapshotPath == "" {
			errs = append(errs, "snapshot path cannot be empty when using file backend")
		} else if err := ensureDir(filepath.Dir(c.SnapshotPath)); err != nil {
			errs = append(errs, fmt.Sprintf("cannot create snapshot directory: %v", err))
		}
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if err := ensureDir(filepath.Dir(c.SQLiteDBPath)); err != nil {
			errs = append(errs, fmt.Sprintf("cannot create SQLite database directory: %v", err))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if !core.SortStrategy(c.RecentSort).Validate() {
		errs = append(errs, fmt.Sprintf("invalid recent sort '%s': must be '%s' or '%s'", c.RecentSort, core.SortInsertion, core.SortByDate))
	}
	if c.RecentLimit < 1 || c.RecentLimit > 1000 {
		errs = append(errs, fmt.Sprintf("invalid recent limit %d: must be between 1 and 1000", c.RecentLimit))
	}

	if c.BackupInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid backup interval %v: must be at least 1 second", c.BackupInterval))
	} else if c.BackupInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid backup interval %v: must be at most 24 hours", c.BackupInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func ensureDir(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
