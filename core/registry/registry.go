// Package registry holds the modules that make up a docbase application.
// Modules are kept in registration order, which is the order their settings
// schemas are composed in.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/artpar/docbase/core/resolve"
)

// ErrDuplicateModule is returned when a module name is registered twice.
var ErrDuplicateModule = errors.New("module already registered")

// Module is one independently deployed component of the application.
type Module struct {
	// Name is the unique module name (e.g., "core", "billing").
	Name string

	// SettingSchema contributes this module's keys to the settings
	// schema. Nil means the module has no settings.
	SettingSchema resolve.Source

	// Permissions lists capability tokens the module requires.
	Permissions []string
}

// Registry manages registered modules.
type Registry struct {
	mu sync.RWMutex

	// modules by name
	modules map[string]Module

	// names in registration order
	order []string
}

// New creates a new registry.
func New() *Registry {
	return &Registry{
		modules: make(map[string]Module),
	}
}

// Register adds a module. Names must be non-empty and unique.
func (r *Registry) Register(mod Module) error {
	return r.RegisterAll(mod)
}

// RegisterAll adds modules in order. Either every module is registered or,
// if any name is empty or taken, none is.
func (r *Registry) RegisterAll(mods ...Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(mods))
	for _, mod := range mods {
		if mod.Name == "" {
			return errors.New("module name is required")
		}
		if _, exists := r.modules[mod.Name]; exists || seen[mod.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateModule, mod.Name)
		}
		seen[mod.Name] = true
	}

	for _, mod := range mods {
		r.modules[mod.Name] = mod
		r.order = append(r.order, mod.Name)
	}
	return nil
}

// MustRegister is like Register but panics on error.
// It is meant for wiring built-in modules at startup.
func (r *Registry) MustRegister(mods ...Module) {
	for _, mod := range mods {
		if err := r.Register(mod); err != nil {
			panic(err)
		}
	}
}

// Get returns a registered module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mod, ok := r.modules[name]
	return mod, ok
}

// Modules returns all registered modules in registration order.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mods := make([]Module, 0, len(r.order))
	for _, name := range r.order {
		mods = append(mods, r.modules[name])
	}
	return mods
}

// Names returns the registered module names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// Permissions returns the union of all modules' permissions, first
// occurrence order, without duplicates.
func (r *Registry) Permissions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var perms []string
	for _, name := range r.order {
		for _, p := range r.modules[name].Permissions {
			if seen[p] {
				continue
			}
			seen[p] = true
			perms = append(perms, p)
		}
	}
	return perms
}
