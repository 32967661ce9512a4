package provider

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/storage"
)

var (
	ErrUnknownProvider       = errors.New("unknown provider")
	ErrProviderAlreadyExists = errors.New("provider already registered")
	ErrEmptyProviderName     = errors.New("provider name cannot be empty")
)

// EmptyRunConfigurationName is registered in every Registry.
const EmptyRunConfigurationName = "empty"

// Registry maps provider names to factories. Run data providers and run
// configuration providers live in separate namespaces.
type Registry struct {
	mu               sync.RWMutex
	dataProviders    map[string]Factory
	runConfProviders map[string]RunConfigurationFactory
}

// NewRegistry creates a registry holding the empty run configuration provider.
func NewRegistry() *Registry {
	r := &Registry{
		dataProviders:    make(map[string]Factory),
		runConfProviders: make(map[string]RunConfigurationFactory),
	}
	r.runConfProviders[EmptyRunConfigurationName] = emptyFactory
	return r
}

// DefaultRegistry is filled at startup by the binary.
var DefaultRegistry = NewRegistry()

func (r *Registry) RegisterDataProvider(name string, factory Factory) error {
	key, err := checkName(name)
	if err != nil {
		return err
	}
	if factory == nil {
		return fmt.Errorf("factory for provider %s cannot be nil", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.dataProviders[key]; exists {
		return fmt.Errorf("%w: %s", ErrProviderAlreadyExists, key)
	}
	r.dataProviders[key] = factory
	return nil
}

// NewDataProvider creates the run data provider registered under name.
func (r *Registry) NewDataProvider(name string, s storage.DataStorage, conf *config.Configuration, logger *slog.Logger) (RunDataProvider, error) {
	key, _ := checkName(name)

	r.mu.RLock()
	factory, exists := r.dataProviders[key]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	p, err := factory(s, conf, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %s: %w", key, err)
	}
	return p, nil
}

func (r *Registry) RegisterRunConfigurationProvider(name string, factory RunConfigurationFactory) error {
	key, err := checkName(name)
	if err != nil {
		return err
	}
	if factory == nil {
		return fmt.Errorf("factory for run configuration provider %s cannot be nil", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runConfProviders[key]; exists {
		return fmt.Errorf("%w: %s", ErrProviderAlreadyExists, key)
	}
	r.runConfProviders[key] = factory
	return nil
}

// NewRunConfigurationProvider creates the run configuration provider
// registered under name.
func (r *Registry) NewRunConfigurationProvider(name string, conf *config.Configuration, logger *slog.Logger) (RunConfigurationProvider, error) {
	key, _ := checkName(name)

	r.mu.RLock()
	factory, exists := r.runConfProviders[key]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: run configuration provider %s", ErrUnknownProvider, name)
	}
	p, err := factory(conf, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create run configuration provider %s: %w", key, err)
	}
	return p, nil
}

func (r *Registry) DataProviderNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.dataProviders)
}

func (r *Registry) RunConfigurationProviderNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.runConfProviders)
}

func RegisterDataProvider(name string, factory Factory) error {
	return DefaultRegistry.RegisterDataProvider(name, factory)
}

func RegisterRunConfigurationProvider(name string, factory RunConfigurationFactory) error {
	return DefaultRegistry.RegisterRunConfigurationProvider(name, factory)
}

func checkName(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "", ErrEmptyProviderName
	}
	return key, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
