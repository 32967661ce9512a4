package processor

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/GenomiqueENS/aozan-sub001/config"
)

var (
	ErrUnknownProcessor       = errors.New("unknown data processor")
	ErrProcessorAlreadyExists = errors.New("data processor already registered")
	ErrEmptyProcessorName     = errors.New("data processor name cannot be empty")
)

// Registry maps processor names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry is filled at startup by the binary.
var DefaultRegistry = NewRegistry()

// Register adds a factory. Names are case-insensitive.
func (r *Registry) Register(name string, factory Factory) error {
	key := normalize(name)
	if key == "" {
		return ErrEmptyProcessorName
	}
	if factory == nil {
		return fmt.Errorf("factory for data processor %s cannot be nil", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("%w: %s", ErrProcessorAlreadyExists, key)
	}
	r.factories[key] = factory
	return nil
}

// New creates the processor registered under name.
func (r *Registry) New(name string, conf *config.Configuration, logger *slog.Logger) (DataProcessor, error) {
	key := normalize(name)

	r.mu.RLock()
	factory, exists := r.factories[key]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProcessor, name)
	}

	p, err := factory(conf, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create data processor %s: %w", key, err)
	}
	if p == nil {
		return nil, fmt.Errorf("factory for data processor %s returned nil", key)
	}
	return p, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func Register(name string, factory Factory) error {
	return DefaultRegistry.Register(name, factory)
}

func New(name string, conf *config.Configuration, logger *slog.Logger) (DataProcessor, error) {
	return DefaultRegistry.New(name, conf, logger)
}

func Names() []string {
	return DefaultRegistry.Names()
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
