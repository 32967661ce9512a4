package storage

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrUnknownStorage = errors.New("unknown data storage")
	ErrEmptyName      = errors.New("storage name cannot be empty")
)

// Registry maps recipe-level storage names to storages. It is filled while a
// recipe is built and only read afterwards, so it is not synchronized.
type Registry struct {
	storages map[string]DataStorage
}

func NewRegistry() *Registry {
	return &Registry{storages: make(map[string]DataStorage)}
}

// Add registers s under name, replacing any previous entry.
func (r *Registry) Add(name string, s DataStorage) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	if s.Path == "" {
		return fmt.Errorf("storage %s has no path", name)
	}
	r.storages[name] = s
	return nil
}

// Get returns the storage registered under name.
func (r *Registry) Get(name string) (DataStorage, error) {
	key, err := checkName(name)
	if err != nil {
		return DataStorage{}, err
	}
	s, ok := r.storages[key]
	if !ok {
		return DataStorage{}, fmt.Errorf("%w: %s", ErrUnknownStorage, key)
	}
	return s, nil
}

func (r *Registry) Exists(name string) bool {
	key, err := checkName(name)
	if err != nil {
		return false
	}
	_, ok := r.storages[key]
	return ok
}

// Remove deletes name and reports whether it was registered.
func (r *Registry) Remove(name string) bool {
	key, err := checkName(name)
	if err != nil {
		return false
	}
	_, ok := r.storages[key]
	delete(r.storages, key)
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.storages))
	for name := range r.storages {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}
