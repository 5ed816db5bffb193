package factory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"NetZoneFlow/internal/config"
	"NetZoneFlow/internal/log"
	"NetZoneFlow/internal/model"
)

// ErrUnknownSender is returned by Create for a collector type nobody registered.
var ErrUnknownSender = errors.New("unknown sender type")

// SenderFactory builds a sender from the collector configuration.
type SenderFactory func(cfg config.CollectorConfig) (model.Sender, error)

var (
	mu sync.RWMutex
	// registry holds the mapping of collector types to their factory functions.
	registry = make(map[string]SenderFactory)
)

// RegisterSender registers a collector type. Registering a name twice panics.
func RegisterSender(name string, factory SenderFactory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("sender type '%s' already registered", name))
	}
	registry[name] = factory
}

// Create builds the sender selected by cfg.Type.
func Create(cfg config.CollectorConfig) (model.Sender, error) {
	mu.RLock()
	factory, ok := registry[cfg.Type]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: '%s' (known: %v)", ErrUnknownSender, cfg.Type, Registered())
	}

	log.GetLogger().WithField("type", cfg.Type).Debug("creating sender")
	sender, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating sender type '%s': %w", cfg.Type, err)
	}
	return sender, nil
}

// Registered returns the registered collector types in sorted order.
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
