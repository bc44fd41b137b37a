package registry

import (
	"fmt"
	"log/slog"
)

// Plugin is a named, versioned bundle of component definitions that can be
// toggled as a unit.
type Plugin struct {
	Name       string
	Version    string
	Components []*Definition
	Initialize func() error
	Cleanup    func() error
}

// PluginManager layers plugins on top of a Registry, tracking which types
// each plugin contributed so they can be removed together.
type PluginManager struct {
	registry    *Registry
	plugins     map[string]*Plugin
	contributed map[string][]string // plugin name -> component types
	logger      *slog.Logger
}

// NewPluginManager creates a manager bound to the given registry.
func NewPluginManager(reg *Registry, logger *slog.Logger) *PluginManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PluginManager{
		registry:    reg,
		plugins:     make(map[string]*Plugin),
		contributed: make(map[string][]string),
		logger:      logger,
	}
}

// Register installs a plugin: runs its Initialize hook, then forwards each
// contained component definition to the registry. A duplicate plugin name
// is an error and leaves the registry untouched.
func (m *PluginManager) Register(p *Plugin) error {
	if _, exists := m.plugins[p.Name]; exists {
		return fmt.Errorf("plugin %q already registered", p.Name)
	}
	if p.Initialize != nil {
		if err := p.Initialize(); err != nil {
			return fmt.Errorf("initializing plugin %q: %w", p.Name, err)
		}
	}

	types := make([]string, 0, len(p.Components))
	for _, def := range p.Components {
		m.registry.Register(def)
		types = append(types, def.Type)
	}
	m.plugins[p.Name] = p
	m.contributed[p.Name] = types
	m.logger.Info("plugin registered", "plugin", p.Name, "version", p.Version, "components", len(types))
	return nil
}

// Unregister removes a plugin: runs its Cleanup hook and unregisters every
// component type it contributed.
func (m *PluginManager) Unregister(name string) error {
	p, exists := m.plugins[name]
	if !exists {
		return fmt.Errorf("plugin %q is not registered", name)
	}
	if p.Cleanup != nil {
		if err := p.Cleanup(); err != nil {
			return fmt.Errorf("cleaning up plugin %q: %w", name, err)
		}
	}
	for _, typ := range m.contributed[name] {
		m.registry.Unregister(typ)
	}
	delete(m.plugins, name)
	delete(m.contributed, name)
	m.logger.Info("plugin unregistered", "plugin", name)
	return nil
}

// Plugins returns the names of all installed plugins.
func (m *PluginManager) Plugins() []string {
	out := make([]string, 0, len(m.plugins))
	for name := range m.plugins {
		out = append(out, name)
	}
	return out
}
