// Package ledger implements the transaction bookkeeping core: per-chat
// running totals behind a write-through cache over durable storage.
package ledger

import (
	"sync"

	"github.com/shopspring/decimal"
)

// TotalsCache memoizes per-chat running totals so repeated total lookups
// skip the storage round trip. It is a derived view of storage, never
// authoritative on its own; entries are lost on restart and rebuilt lazily.
type TotalsCache struct {
	mu     sync.RWMutex
	totals map[int64]decimal.Decimal
}

// NewTotalsCache returns an empty cache.
func NewTotalsCache() *TotalsCache {
	return &TotalsCache{totals: make(map[int64]decimal.Decimal)}
}

// Get returns the cached total for a chat and whether an entry was present.
func (c *TotalsCache) Get(chatID int64) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total, ok := c.totals[chatID]
	return total, ok
}

// Set overwrites the cached total for a chat unconditionally.
func (c *TotalsCache) Set(chatID int64, total decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totals[chatID] = total
}

// Clear drops every entry. The next lookup per chat falls back to storage.
func (c *TotalsCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totals = make(map[int64]decimal.Decimal)
}

// Len reports the number of cached entries.
func (c *TotalsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.totals)
}
