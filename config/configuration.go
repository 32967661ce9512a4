// Package config provides the hierarchical string key/value store used at
// every scope of a recipe. A Configuration reads through to its parent when a
// key is missing, so narrower scopes are built by wrapping a wider one and
// merging the narrower layer on top.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingKey   = errors.New("missing configuration key")
	ErrInvalidValue = errors.New("invalid configuration value")
)

// ParseError reports a key whose value is present but cannot be converted to
// the requested type.
type ParseError struct {
	Key   string
	Value string
	Kind  string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s %q is not a valid %s", ErrInvalidValue, e.Key, e.Value, e.Kind)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidValue}
	}
	return []error{ErrInvalidValue, e.Err}
}

// Configuration is an ordered string store with an optional parent.
type Configuration struct {
	parent  *Configuration
	keys    []string
	entries map[string]string
}

// New creates an empty configuration reading through to parent, which may be nil.
func New(parent *Configuration) *Configuration {
	return &Configuration{
		parent:  parent,
		entries: make(map[string]string),
	}
}

// FromMap creates a parentless configuration holding m. Keys are inserted in
// sorted order so the result does not depend on map iteration.
func FromMap(m map[string]string) *Configuration {
	c := New(nil)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		c.Set(k, m[k])
	}
	return c
}

// Parent returns the configuration this one reads through to.
func (c *Configuration) Parent() *Configuration {
	return c.parent
}

// Get returns the value of key, looking in the parent chain when the key is
// not set locally.
func (c *Configuration) Get(key string) (string, bool) {
	key = strings.TrimSpace(key)
	for cur := c; cur != nil; cur = cur.parent {
		if v, ok := cur.entries[key]; ok {
			return v, true
		}
	}
	return "", false
}

// Contains reports whether key resolves anywhere in the chain.
func (c *Configuration) Contains(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// GetString returns the value of key or def when the key is absent.
func (c *Configuration) GetString(key, def string) string {
	if v, ok := c.Get(key); ok {
		return v
	}
	return def
}

// Require returns the value of key or an ErrMissingKey error.
func (c *Configuration) Require(key string) (string, error) {
	v, ok := c.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingKey, strings.TrimSpace(key))
	}
	return v, nil
}

// Int returns key as an int, or def when absent.
func (c *Configuration) Int(key string, def int) (int, error) {
	v, ok := c.Get(key)
	if !ok {
		return def, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &ParseError{Key: key, Value: v, Kind: "integer", Err: err}
	}
	return i, nil
}

// Int64 returns key as an int64, or def when absent.
func (c *Configuration) Int64(key string, def int64) (int64, error) {
	v, ok := c.Get(key)
	if !ok {
		return def, nil
	}
	i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, &ParseError{Key: key, Value: v, Kind: "long integer", Err: err}
	}
	return i, nil
}

// Float64 returns key as a float64, or def when absent.
func (c *Configuration) Float64(key string, def float64) (float64, error) {
	v, ok := c.Get(key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, &ParseError{Key: key, Value: v, Kind: "number", Err: err}
	}
	return f, nil
}

// Duration returns key as a time.Duration ("36h", "90m"), or def when absent.
func (c *Configuration) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := c.Get(key)
	if !ok {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, &ParseError{Key: key, Value: v, Kind: "duration", Err: err}
	}
	return d, nil
}

// Bool returns key as a bool, or def when absent.
func (c *Configuration) Bool(key string, def bool) (bool, error) {
	v, ok := c.Get(key)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, &ParseError{Key: key, Value: v, Kind: "boolean", Err: err}
	}
	return b, nil
}

// Path returns key as a cleaned filesystem path, or def when absent. A blank
// value is malformed.
func (c *Configuration) Path(key string, def string) (string, error) {
	v, ok := c.Get(key)
	if !ok {
		return def, nil
	}
	p := strings.TrimSpace(v)
	if p == "" {
		return "", &ParseError{Key: key, Value: v, Kind: "path"}
	}
	return filepath.Clean(p), nil
}

// Set stores value under the trimmed key in this configuration.
func (c *Configuration) Set(key, value string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	if _, exists := c.entries[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.entries[key] = value
}

// SetIfNotExists stores value only when key resolves nowhere in the chain.
func (c *Configuration) SetIfNotExists(key, value string) {
	if c.Contains(key) {
		return
	}
	c.Set(key, value)
}

// SetBool stores a boolean value.
func (c *Configuration) SetBool(key string, value bool) {
	c.Set(key, strconv.FormatBool(value))
}

// SetInt64 stores an integer value.
func (c *Configuration) SetInt64(key string, value int64) {
	c.Set(key, strconv.FormatInt(value, 10))
}

// Merge copies every entry visible from other into c. Values from other win
// on collisions. A nil other is a no-op.
func (c *Configuration) Merge(other *Configuration) {
	if other == nil {
		return
	}
	for _, k := range other.Keys() {
		v, _ := other.Get(k)
		c.Set(k, v)
	}
}

// ParseAndSet parses a "key=value" assignment and stores it. Strings without
// '=' are ignored.
func (c *Configuration) ParseAndSet(s string) {
	key, value, found := strings.Cut(s, "=")
	if !found {
		return
	}
	c.Set(strings.TrimSpace(key), strings.TrimSpace(value))
}

// Keys returns every key visible from c, parent keys first, each once.
func (c *Configuration) Keys() []string {
	var chain []*Configuration
	for cur := c; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}

	seen := make(map[string]struct{})
	var keys []string
	for i := len(chain) - 1; i >= 0; i-- {
		for _, k := range chain[i].keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

// ToMap flattens the chain into a new map; child values win.
func (c *Configuration) ToMap() map[string]string {
	m := make(map[string]string)
	for _, k := range c.Keys() {
		v, _ := c.Get(k)
		m[k] = v
	}
	return m
}

// Len returns the number of keys visible from c.
func (c *Configuration) Len() int {
	return len(c.Keys())
}

// Copy returns a parentless configuration holding every entry visible from c.
func (c *Configuration) Copy() *Configuration {
	cp := New(nil)
	cp.Merge(c)
	return cp
}

func (c *Configuration) String() string {
	var sb strings.Builder
	sb.WriteString("Configuration{")
	for i, k := range c.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		v, _ := c.Get(k)
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(v)
	}
	sb.WriteString("}")
	return sb.String()
}
