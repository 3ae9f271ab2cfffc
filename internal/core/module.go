package core

// ModuleID uniquely identifies a module, namespaced by kind
// (e.g. "transport.telegram", "store.sqlite", "gateway.http").
type ModuleID string

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	// ID is the unique module identifier.
	ID ModuleID

	// New returns a fresh, unconfigured instance of the module.
	New func() Module
}

// Module is the minimal interface every module implements.
// Lifecycle hooks (Configurable, Provisioner, Validator, Starter, Stopper)
// are optional and discovered via type assertion.
type Module interface {
	ModuleInfo() ModuleInfo
}
