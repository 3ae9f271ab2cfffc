// Package lrustore provides an in-memory update deduplication store backed by
// an expirable LRU cache. Entries age out after the configured lifetime, so
// the store needs no background purging. This is the default store; the
// sqlite store survives restarts at the cost of disk I/O.
package lrustore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/busgrid/tgbridge/internal/core"
	"github.com/busgrid/tgbridge/internal/dedup"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// Config holds LRU store settings.
type Config struct {
	// MaxEntries bounds memory use. Oldest entries are evicted past the cap
	// even before their lifetime expires.
	MaxEntries int `yaml:"max_entries"`

	// Lifetime is how long an update id stays deduplicated.
	Lifetime time.Duration `yaml:"lifetime"`
}

func (c *Config) defaults() {
	if c.MaxEntries <= 0 {
		c.MaxEntries = 100_000
	}
	if c.Lifetime <= 0 {
		c.Lifetime = 24 * time.Hour
	}
}

func (c *Config) validate() error {
	if c.Lifetime < time.Second {
		return errors.New("lrustore: lifetime must be at least 1s")
	}
	return nil
}

// Module wires the LRU store into the app lifecycle.
type Module struct {
	config Config
	logger *slog.Logger
	store  *Store
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "store.lru",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return err
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger
	m.store = NewStore(m.config.MaxEntries, m.config.Lifetime)
	ctx.RegisterService("dedup.store", dedup.Store(m.store))
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	return m.config.validate()
}

// Store is the expirable-LRU dedup store.
type Store struct {
	cache *expirable.LRU[string, time.Time]
}

// NewStore creates a store evicting entries after ttl or past maxEntries.
func NewStore(maxEntries int, ttl time.Duration) *Store {
	return &Store{
		cache: expirable.NewLRU[string, time.Time](maxEntries, nil, ttl),
	}
}

// Seen implements dedup.Store.
func (s *Store) Seen(_ context.Context, id string) (bool, error) {
	_, ok := s.cache.Get(id)
	return ok, nil
}

// MarkSeen implements dedup.Store.
func (s *Store) MarkSeen(_ context.Context, id string) error {
	s.cache.Add(id, time.Now())
	return nil
}

var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ dedup.Store       = (*Store)(nil)
)
