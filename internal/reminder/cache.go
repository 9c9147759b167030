package reminder

import (
	"slices"
	"sync"

	"gitlab.com/yelinaung/billkeeper/internal/models"
)

// Cache holds the in-memory obligation list read by the scheduler on every
// tick. It is refreshed from the store after each mutation so the tick loop
// itself never touches the database.
type Cache struct {
	mu          sync.RWMutex
	obligations []models.Obligation
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

// List returns a copy of the cached obligations.
func (c *Cache) List() []models.Obligation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.obligations)
}

// Replace swaps in a fresh obligation list.
func (c *Cache) Replace(obligations []models.Obligation) {
	c.mu.Lock()
	c.obligations = obligations
	c.mu.Unlock()
}

// Len returns the number of cached obligations.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.obligations)
}
