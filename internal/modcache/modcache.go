// Package modcache provides the warm module cache shared by all jobs of a run.
package modcache

import (
	"os"
	"sync"
	"time"
)

// Module is a loaded source file
type Module struct {
	Path     string
	Contents []byte
	ModTime  time.Time
	Size     int64
}

// Stats counts cache lookups
type Stats struct {
	Hits   int
	Misses int
}

// Cache maps absolute source paths to their loaded contents. An entry is
// reused only while the file's size and modification time are unchanged.
//
// Jobs run one at a time, but the bundler may load files of a single job
// from several goroutines, so access is serialized with a mutex.
type Cache struct {
	mu      sync.Mutex
	modules map[string]*Module
	stats   Stats
}

// New creates an empty cache
func New() *Cache {
	return &Cache{modules: make(map[string]*Module)}
}

// Load returns the contents of path, reading it from disk on a miss or when
// the file changed since it was cached
func (c *Cache) Load(path string) (*Module, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	cached, ok := c.modules[path]
	if ok && cached.Size == info.Size() && cached.ModTime.Equal(info.ModTime()) {
		c.stats.Hits++
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mod := &Module{
		Path:     path,
		Contents: contents,
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}

	c.mu.Lock()
	c.modules[path] = mod
	c.stats.Misses++
	c.mu.Unlock()

	return mod, nil
}

// Len returns the number of cached modules
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.modules)
}

// Stats returns the hit and miss counters
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
