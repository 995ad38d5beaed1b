package dashboard

import (
	"sort"
	"sync"

	"freight-app/shipment"
)

// Cache is the working set of shipments the dashboard renders from. It is the
// single place mutations land, whether they come from the initial fetch, a
// push event or the echo of a local edit. Entries are kept sorted by
// created_at descending (newest first, ties keep insertion order) and keyed
// by id so a merge never produces duplicates.
type Cache struct {
	mu      sync.Mutex
	entries []shipment.Shipment
	index   map[string]int
}

func NewCache() *Cache {
	return &Cache{index: make(map[string]int)}
}

// ReplaceAll discards the current contents and loads the given records,
// used after a full fetch.
func (c *Cache) ReplaceAll(raws []shipment.Raw) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = c.entries[:0]
	c.index = make(map[string]int, len(raws))
	for _, raw := range raws {
		if raw.ID == "" {
			continue
		}
		if _, dup := c.index[raw.ID]; dup {
			continue
		}
		c.index[raw.ID] = len(c.entries)
		c.entries = append(c.entries, shipment.Normalize(raw))
	}
	c.resort()
}

// Upsert merges the record into the cache. When the id is already present the
// existing entry is patched field by field (absent fields are preserved),
// otherwise the record is inserted at the head. The sort order is
// re-established either way.
func (c *Cache) Upsert(raw shipment.Raw) {
	if raw.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[raw.ID]; ok {
		raw.ApplyTo(&c.entries[i])
	} else {
		c.entries = append([]shipment.Shipment{shipment.Normalize(raw)}, c.entries...)
	}
	c.resort()
}

// Remove deletes the entry with that id. Removing an unknown id is a no-op.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	c.resort()
}

// Clear drops everything, used on logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.index = make(map[string]int)
}

// Snapshot returns a copy of the current contents in sort order. Callers must
// not mutate shipments in place; edits go through Upsert.
func (c *Cache) Snapshot() []shipment.Shipment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]shipment.Shipment, len(c.entries))
	copy(out, c.entries)
	return out
}

// Get returns the entry with that id, if present.
func (c *Cache) Get(id string) (shipment.Shipment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[id]; ok {
		return c.entries[i], true
	}
	return shipment.Shipment{}, false
}

// Len returns the number of cached shipments.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// resort re-establishes the created_at descending invariant and rebuilds the
// id index. Caller holds the lock.
func (c *Cache) resort() {
	sort.SliceStable(c.entries, func(i, j int) bool {
		return c.entries[i].CreatedAt.After(c.entries[j].CreatedAt)
	})
	c.index = make(map[string]int, len(c.entries))
	for i := range c.entries {
		c.index[c.entries[i].ID] = i
	}
}
