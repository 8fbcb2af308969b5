package config

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Cache is the run-wide scratch space. It records which working-copy
// directories were classified raw so the copier can treat them as opaque.
type Cache struct {
	mu      sync.Mutex
	rawDirs map[string]struct{}
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{rawDirs: make(map[string]struct{})}
}

// MarkRawDir registers path as a raw directory.
func (c *Cache) MarkRawDir(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rawDirs[filepath.Clean(path)] = struct{}{}
}

// IsRawDir reports whether path was registered as a raw directory.
func (c *Cache) IsRawDir(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rawDirs[filepath.Clean(path)]
	return ok
}

// RenameRawDir moves the registration of from, and of anything registered
// below it, to to.
func (c *Cache) RenameRawDir(from, to string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	from = filepath.Clean(from)
	to = filepath.Clean(to)
	prefix := from + string(filepath.Separator)

	for path := range c.rawDirs {
		switch {
		case path == from:
			delete(c.rawDirs, path)
			c.rawDirs[to] = struct{}{}
		case strings.HasPrefix(path, prefix):
			delete(c.rawDirs, path)
			c.rawDirs[filepath.Join(to, strings.TrimPrefix(path, prefix))] = struct{}{}
		}
	}
}

// RawDirs returns the registered raw directories in sorted order.
func (c *Cache) RawDirs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	dirs := make([]string, 0, len(c.rawDirs))
	for path := range c.rawDirs {
		dirs = append(dirs, path)
	}
	sort.Strings(dirs)
	return dirs
}
