// Package cache provides in-process and fault-tolerant domain.Cache implementations.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// MemoryConfig sizes the in-process cache.
type MemoryConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

// Memory implements domain.Cache with dgraph-io/ristretto for
// single-instance deployments. Cost is the value size in bytes.
type Memory struct {
	c *ristretto.Cache
}

// NewMemory creates a Memory cache. Zero config fields take defaults
// (10k tracked keys, 64MB).
func NewMemory(cfg MemoryConfig) (*Memory, error) {
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = 1e4
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = 64 << 20
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = 64
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("creating ristretto cache: %w", err)
	}

	return &Memory{c: c}, nil
}

// Get returns the cached bytes or nil.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, ok := m.c.Get(key)
	if !ok {
		return nil, nil
	}
	data, _ := v.([]byte)

	return data, nil
}

// Set stores value for ttl. Writes are applied before Set returns.
// Ristretto may refuse an item under memory pressure; that is not an error.
func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.c.SetWithTTL(key, value, int64(len(value)), ttl)
	m.c.Wait()

	return nil
}

// Delete removes key.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.c.Del(key)
	m.c.Wait()

	return nil
}

// Close releases the cache's background goroutines.
func (m *Memory) Close() {
	m.c.Close()
}
