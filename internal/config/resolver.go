package config

import "slices"

// Resolve returns a sorted list of module IDs from the configuration.
// The deterministic order doubles as the load order: bus.* sorts before
// gateway.*, store.* and transport.*, so the services a transport binds at
// Start are registered before it loads.
func Resolve(cfg *Config) []string {
	ids := make([]string, 0, len(cfg.Modules))
	for id := range cfg.Modules {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
