// Package storage describes the filesystem roots runs are read from and
// written to, and the checks processors run against them before touching data.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

var ErrNotEnoughSpace = errors.New("not enough space")

// DataStorage is a root directory on a machine.
type DataStorage struct {
	Machine      string `json:"machine"`
	Path         string `json:"path"`
	MinimalSpace uint64 `json:"minimal_space,omitempty"`
	ReadOnly     bool   `json:"read_only,omitempty"`
}

// New creates a storage rooted at path. The path is cleaned.
func New(machine, path string) DataStorage {
	return DataStorage{Machine: machine, Path: filepath.Clean(path)}
}

// IsWritable reports whether processors may write to the storage.
func (s DataStorage) IsWritable() bool {
	return !s.ReadOnly
}

// NewLocation returns the location of name under the storage root.
func (s DataStorage) NewLocation(name string) DataLocation {
	return DataLocation{Storage: s, Path: filepath.Join(s.Path, name)}
}

// SamePath reports whether both storages point to the same root.
func (s DataStorage) SamePath(other DataStorage) bool {
	return filepath.Clean(s.Path) == filepath.Clean(other.Path)
}

func (s DataStorage) statfs() (*unix.Statfs_t, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(s.Path, &st); err != nil {
		return nil, fmt.Errorf("failed to stat filesystem of %s: %w", s.Path, err)
	}
	return &st, nil
}

// TotalSpace returns the size in bytes of the filesystem holding the storage.
func (s DataStorage) TotalSpace() (uint64, error) {
	st, err := s.statfs()
	if err != nil {
		return 0, err
	}
	return st.Blocks * uint64(st.Bsize), nil
}

// UsableSpace returns the bytes available to unprivileged writers.
func (s DataStorage) UsableSpace() (uint64, error) {
	st, err := s.statfs()
	if err != nil {
		return 0, err
	}
	return st.Bavail * uint64(st.Bsize), nil
}

// IsEnoughSpace reports whether size more bytes fit on the storage while
// keeping MinimalSpace free. Non-positive sizes always fit.
func (s DataStorage) IsEnoughSpace(size int64) (bool, error) {
	if size <= 0 {
		return true, nil
	}
	usable, err := s.UsableSpace()
	if err != nil {
		return false, err
	}
	return usable > uint64(size)+s.MinimalSpace, nil
}

// CheckIfEnoughSpace returns an ErrNotEnoughSpace error prefixed with
// description when size bytes do not fit.
func (s DataStorage) CheckIfEnoughSpace(size int64, description string) error {
	ok, err := s.IsEnoughSpace(size)
	if err != nil {
		return err
	}
	if !ok {
		usable, _ := s.UsableSpace()
		return fmt.Errorf("%s: %w on %s (required %s, available %s, reserved %s)",
			description, ErrNotEnoughSpace, s,
			humanize.IBytes(uint64(size)), humanize.IBytes(usable), humanize.IBytes(s.MinimalSpace))
	}
	return nil
}

// ToJSON serializes the storage so it can travel inside a configuration.
func (s DataStorage) ToJSON() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal storage: %w", err)
	}
	return string(b), nil
}

// FromJSON restores a storage serialized with ToJSON.
func FromJSON(data string) (DataStorage, error) {
	var s DataStorage
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return DataStorage{}, fmt.Errorf("failed to unmarshal storage: %w", err)
	}
	if s.Path == "" {
		return DataStorage{}, fmt.Errorf("storage has no path")
	}
	return s, nil
}

func (s DataStorage) String() string {
	if s.Machine == "" {
		return s.Path
	}
	return s.Machine + ":" + s.Path
}
