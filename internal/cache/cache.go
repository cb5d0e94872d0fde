package cache

import (
	"context"
	"sync"
	"time"

	"skmart/backend/internal/domain"
)

// CartCache keeps each terminal's open cart between requests.
type CartCache interface {
	Get(ctx context.Context, terminalID string) (domain.Cart, bool, error)
	Set(ctx context.Context, cart domain.Cart, ttl time.Duration) error
	Delete(ctx context.Context, terminalID string) error
}

type memoryEntry struct {
	cart      domain.Cart
	expiresAt time.Time
}

// MemoryCartCache is the process-local cart store used when Redis is not
// configured.
type MemoryCartCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCartCache() *MemoryCartCache {
	return &MemoryCartCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCartCache) Get(_ context.Context, terminalID string) (domain.Cart, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[terminalID]
	if !ok {
		return domain.Cart{}, false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.entries, terminalID)
		return domain.Cart{}, false, nil
	}
	return cloneCart(entry.cart), true, nil
}

func (c *MemoryCartCache) Set(_ context.Context, cart domain.Cart, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := memoryEntry{cart: cloneCart(cart)}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries[cart.TerminalID] = entry
	return nil
}

func (c *MemoryCartCache) Delete(_ context.Context, terminalID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, terminalID)
	return nil
}

func cloneCart(cart domain.Cart) domain.Cart {
	out := cart
	out.Lines = append([]domain.CartLine{}, cart.Lines...)
	return out
}
