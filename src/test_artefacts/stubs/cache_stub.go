package stubs

import (
	"context"
	"sync"
)

// CacheStub is an in-memory key/value cache with injectable failures.
type CacheStub struct {
	mu          sync.Mutex
	values      map[string]string
	Invalidated []string
	GetErr      error
	SetErr      error
}

func NewCacheStub() *CacheStub {
	return &CacheStub{values: map[string]string{}}
}

func (c *CacheStub) GetKey(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.GetErr != nil {
		return "", false, c.GetErr
	}
	value, ok := c.values[key]
	return value, ok, nil
}

func (c *CacheStub) SetKey(_ context.Context, key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.SetErr != nil {
		return c.SetErr
	}
	c.values[key] = value
	return nil
}

func (c *CacheStub) InvalidateKeys(_ context.Context, keys []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.values, key)
	}
	c.Invalidated = append(c.Invalidated, keys...)
	return nil
}

func (c *CacheStub) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.values[key]
	return ok
}
