package sqlite

import (
	"fmt"
	"time"
)

const (
	defaultBusyTimeout = 5000
	defaultDBFile      = "dedup.db"
)

// Config holds the SQLite dedup store configuration.
type Config struct {
	// Path is the database file path. Defaults to {DataDir}/dedup.db.
	Path string `yaml:"path"`

	// WAL enables WAL journal mode for concurrent reads. Defaults to true.
	WAL *bool `yaml:"wal"`

	// BusyTimeout is the milliseconds to wait on a busy lock. Defaults to 5000.
	BusyTimeout int `yaml:"busy_timeout"`

	// Lifetime is how long an update id stays deduplicated.
	Lifetime time.Duration `yaml:"lifetime"`

	// PurgeSchedule is a 5-field cron expression for expired-row purging.
	PurgeSchedule string `yaml:"purge_schedule"`
}

func (c *Config) defaults() {
	if c.WAL == nil {
		t := true
		c.WAL = &t
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = defaultBusyTimeout
	}
	if c.Lifetime <= 0 {
		c.Lifetime = 24 * time.Hour
	}
	if c.PurgeSchedule == "" {
		c.PurgeSchedule = "*/15 * * * *"
	}
}

func (c *Config) walEnabled() bool {
	return c.WAL == nil || *c.WAL
}

func (c *Config) validate() error {
	if c.BusyTimeout < 0 {
		return fmt.Errorf("sqlite: busy_timeout must be non-negative, got %d", c.BusyTimeout)
	}
	if c.Lifetime < time.Second {
		return fmt.Errorf("sqlite: lifetime must be at least 1s, got %s", c.Lifetime)
	}
	return nil
}
