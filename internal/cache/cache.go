// Package cache maps the object ids used in a recording to the database rows
// created for them, so state rows can be linked without a lookup per update.
package cache

import "sync"

// ObjectCache maps recording object ids to their database IDs for the current recording
type ObjectCache struct {
	mu      sync.RWMutex
	objects map[uint64]uint
}

// NewObjectCache creates a new ObjectCache
func NewObjectCache() *ObjectCache {
	return &ObjectCache{
		objects: make(map[uint64]uint),
	}
}

// Get retrieves the row ID for an object id
func (c *ObjectCache) Get(objectID uint64) (uint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.objects[objectID]
	return id, ok
}

// Set stores the row ID for an object id, replacing the row of a removed
// object whose id was reused
func (c *ObjectCache) Set(objectID uint64, rowID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[objectID] = rowID
}

// Delete forgets an object id
func (c *ObjectCache) Delete(objectID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, objectID)
}

// Len returns the number of cached objects
func (c *ObjectCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.objects)
}

// Reset clears all cached objects (called on recording start)
func (c *ObjectCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects = make(map[uint64]uint)
}
