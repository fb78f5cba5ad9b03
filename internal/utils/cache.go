package utils

import (
	"os"
	"sync"
	"time"
)

// fileStamp identifies one version of a file on disk
type fileStamp struct {
	modTime time.Time
	size    int64
}

type cacheEntry[V any] struct {
	value V
	stamp fileStamp
}

// FileCache caches values derived from files and drops an entry once its
// file changes on disk
type FileCache[V any] struct {
	mu    sync.RWMutex
	items map[string]cacheEntry[V]
	hits  int
	miss  int
}

// NewFileCache creates an empty cache
func NewFileCache[V any]() *FileCache[V] {
	return &FileCache[V]{items: make(map[string]cacheEntry[V])}
}

func stampOf(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}, nil
}

// Get returns the value cached for path if the file is unchanged
func (c *FileCache[V]) Get(path string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, ok := c.items[path]
	if !ok {
		c.miss++
		return zero, false
	}
	stamp, err := stampOf(path)
	if err != nil || !stamp.modTime.Equal(entry.stamp.modTime) || stamp.size != entry.stamp.size {
		delete(c.items, path)
		c.miss++
		return zero, false
	}
	c.hits++
	return entry.value, true
}

// Put caches value for path, stamped with the file's current state
func (c *FileCache[V]) Put(path string, value V) error {
	stamp, err := stampOf(path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items[path] = cacheEntry[V]{value: value, stamp: stamp}
	c.mu.Unlock()
	return nil
}

// Delete drops the entry for path
func (c *FileCache[V]) Delete(path string) {
	c.mu.Lock()
	delete(c.items, path)
	c.mu.Unlock()
}

// Len returns the number of cached entries
func (c *FileCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns hit and miss counts
func (c *FileCache[V]) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.miss
}
