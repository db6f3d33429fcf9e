package cart

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Key is the storage key the counter lives under, as a decimal string.
const Key = "cartCount"

// Storage is a per-visitor string key/value store.
type Storage interface {
	Get(ctx context.Context, visitor, key string) (string, bool, error)
	Set(ctx context.Context, visitor, key, value string) error
}

// Counter is the add-to-cart counter. Every change is written through to
// Storage immediately.
type Counter struct {
	mu      sync.Mutex
	storage Storage
}

func NewCounter(s Storage) *Counter {
	return &Counter{storage: s}
}

// Value reads the stored count. A missing or unparsable value reads as 0.
func (c *Counter) Value(ctx context.Context, visitor string) (int, error) {
	raw, ok, err := c.storage.Get(ctx, visitor, Key)
	if err != nil {
		return 0, fmt.Errorf("read cart: %w", err)
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, nil
	}
	return n, nil
}

func (c *Counter) Increment(ctx context.Context, visitor string) (int, error) {
	return c.update(ctx, visitor, func(n int) int { return n + 1 })
}

// Decrement never goes below zero but always persists.
func (c *Counter) Decrement(ctx context.Context, visitor string) (int, error) {
	return c.update(ctx, visitor, func(n int) int {
		if n > 0 {
			return n - 1
		}
		return 0
	})
}

func (c *Counter) update(ctx context.Context, visitor string, fn func(int) int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.Value(ctx, visitor)
	if err != nil {
		return 0, err
	}
	n = fn(n)
	if err := c.storage.Set(ctx, visitor, Key, strconv.Itoa(n)); err != nil {
		return 0, fmt.Errorf("write cart: %w", err)
	}
	return n, nil
}

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (m *MemoryStorage) Get(_ context.Context, visitor, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[visitor+"\x00"+key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, visitor, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[visitor+"\x00"+key] = value
	return nil
}
