// Package membus provides the in-process message bus module. It backs the
// "bus.sink" and "bus.source" services that transports publish to and consume
// from. Deployments that bridge to an external broker replace this module.
package membus

import (
	"context"
	"log/slog"

	"github.com/busgrid/tgbridge/internal/bus"
	"github.com/busgrid/tgbridge/internal/core"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// Config holds bus sizing knobs.
type Config struct {
	QueueSize int `yaml:"queue_size"`
	TapSize   int `yaml:"tap_size"`
}

func (c *Config) defaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = 100
	}
	if c.TapSize <= 0 {
		c.TapSize = 64
	}
}

// Module wires a Bus into the app lifecycle.
type Module struct {
	config Config
	logger *slog.Logger
	bus    *Bus
	cancel context.CancelFunc
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "bus.memory",
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
	m.bus = NewBus(m.config.QueueSize, m.config.TapSize)

	ctx.RegisterService("bus.sink", bus.Sink(m.bus))
	ctx.RegisterService("bus.source", bus.Source(m.bus))
	ctx.RegisterService("bus.memory", m.bus)
	return nil
}

// Start implements core.Starter. It launches the outbound delivery pump.
func (m *Module) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.bus.pump(ctx)
	m.logger.Info("message bus started",
		"queue_size", m.config.QueueSize, "tap_size", m.config.TapSize)
	return nil
}

// Stop implements core.Stopper.
func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.bus != nil {
		m.bus.Close()
	}
	return nil
}

var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
	_ bus.Sink          = (*Bus)(nil)
	_ bus.Source        = (*Bus)(nil)
)
