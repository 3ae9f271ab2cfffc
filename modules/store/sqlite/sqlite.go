// Package sqlite implements a persistent SQLite-backed update deduplication
// store. It uses modernc.org/sqlite (pure Go, no CGO) with WAL mode, and a
// cron job that purges expired rows. Use it instead of the in-memory LRU
// store when deduplication must survive restarts.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/busgrid/tgbridge/internal/core"
	"github.com/busgrid/tgbridge/internal/cron"
	"github.com/busgrid/tgbridge/internal/dedup"
	"gopkg.in/yaml.v3"

	_ "modernc.org/sqlite" // SQLite driver registration
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ dedup.Store       = (*dedupStore)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Module wires the SQLite dedup store and its purge scheduler into the app
// lifecycle.
type Module struct {
	config    Config
	db        *sql.DB
	logger    *slog.Logger
	store     *dedupStore
	scheduler *cron.Scheduler
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "store.sqlite",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("sqlite: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger

	if m.config.Path == "" {
		m.config.Path = filepath.Join(ctx.DataDir, defaultDBFile)
	}

	if dir := filepath.Dir(m.config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", m.config.Path)
	if err != nil {
		return fmt.Errorf("sqlite: open %s: %w", m.config.Path, err)
	}

	// SQLite handles one writer at a time; limit pool to 1 connection
	// so PRAGMAs apply consistently.
	db.SetMaxOpenConns(1)

	if m.config.walEnabled() {
		if _, err := db.ExecContext(context.TODO(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return fmt.Errorf("sqlite: enable WAL: %w", err)
		}
	}

	if _, err := db.ExecContext(context.TODO(), fmt.Sprintf("PRAGMA busy_timeout=%d", m.config.BusyTimeout)); err != nil {
		_ = db.Close()
		return fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return err
	}

	m.db = db
	m.store = &dedupStore{db: db, lifetime: m.config.Lifetime}

	m.scheduler = cron.NewScheduler(ctx.Logger)
	if err := m.scheduler.RegisterJob(&purgeJob{
		store:    m.store,
		logger:   ctx.Logger,
		schedule: m.config.PurgeSchedule,
	}); err != nil {
		_ = db.Close()
		return err
	}

	ctx.RegisterService("dedup.store", dedup.Store(m.store))

	m.logger.Info("sqlite dedup store provisioned",
		"path", m.config.Path,
		"wal", m.config.walEnabled(),
		"lifetime", m.config.Lifetime,
	)

	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}

	if err := m.db.PingContext(context.TODO()); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}

	var n int
	if err := m.db.QueryRowContext(context.TODO(), "SELECT count(*) FROM seen_updates").Scan(&n); err != nil {
		return fmt.Errorf("sqlite: seen_updates not available: %w", err)
	}

	return nil
}

// Start implements core.Starter.
func (m *Module) Start() error {
	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	if m.scheduler != nil {
		_ = m.scheduler.Stop(ctx)
	}
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Store returns the dedup store implementation.
func (m *Module) Store() dedup.Store {
	return m.store
}
