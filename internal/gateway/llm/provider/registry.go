package provider

import (
	"fmt"
	"sync"

	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/spi"
)

var (
	mu         sync.RWMutex
	factories  = map[string]spi.PluginFactory{}
)

// Register installs a provider plugin factory under name. Called from each
// provider package's init().
func Register(name string, factory spi.PluginFactory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("provider: %q already registered", name))
	}
	factories[name] = factory
}

// Get instantiates the named provider plugin.
func Get(name string) (spi.ProviderPlugin, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider: unknown plugin %q", name)
	}
	return factory(), nil
}

// Names lists every registered provider name, for /v1/models and admin
// introspection.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}
