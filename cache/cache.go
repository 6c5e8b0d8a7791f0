// Package cache persists a source-text → translation mapping as a JSON
// file. It is a write-through memo: once a key is present the provider is
// never asked for it again, even across separate runs.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Store is the lookup interface the translation client depends on.
// Tests substitute an in-memory implementation.
type Store interface {
	// Get returns the cached translation for key, if present.
	Get(key string) (string, bool)
	// Put inserts a translation and persists it immediately.
	Put(key, value string) error
}

// Cache is the file-backed Store. Every Put rewrites the whole file, so
// an interrupted run keeps everything translated so far. A single process
// instance at a time is assumed; there is no cross-process locking.
type Cache struct {
	path    string
	entries map[string]string
}

// Load reads the cache file at path. A missing file yields an empty
// cache. A corrupt file also yields an empty cache — losing the memo is
// recoverable, aborting the run over it is not — and the returned warning
// tells the operator what happened.
func Load(path string) (c *Cache, warn error) {
	c = &Cache{path: path, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, fmt.Errorf("reading cache %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		c.entries = make(map[string]string)
		return c, fmt.Errorf("cache %s is corrupt, starting empty: %w", path, err)
	}
	return c, nil
}

// Get returns the cached translation for key. Keys are exact source
// text; there is no normalization or fuzzy matching.
func (c *Cache) Get(key string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Put inserts key → value and rewrites the cache file.
func (c *Cache) Put(key, value string) error {
	c.entries[key] = value
	return c.flush()
}

// Len returns the number of cached translations.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Keys returns the cached source texts in sorted order.
func (c *Cache) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Cache) flush() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}
	}
	if err := os.WriteFile(c.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing cache %s: %w", c.path, err)
	}
	return nil
}
