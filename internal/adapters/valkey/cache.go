package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/geoengine/internal/core/domain"
)

const keyPrefix = "geoengine:"

// Cache implements ports.CacheService using Valkey (Redis-compatible).
// Keys are namespaced under "geoengine:".
type Cache struct {
	client valkey.Client
}

// New creates a new Valkey cache client.
func New(addr string) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Cache{client: client}, nil
}

// Get retrieves a value by key. A missing key yields domain.ErrNotFound.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Do(ctx, c.client.B().Get().Key(keyPrefix+key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Set stores a value with a TTL in seconds; ttlSeconds <= 0 stores without expiry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	if ttlSeconds <= 0 {
		return c.client.Do(ctx, c.client.B().Set().Key(keyPrefix+key).Value(valkey.BinaryString(value)).Build()).Error()
	}
	return c.client.Do(ctx,
		c.client.B().Set().Key(keyPrefix+key).Value(valkey.BinaryString(value)).Ex(time.Duration(ttlSeconds)*time.Second).Build(),
	).Error()
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Do(ctx, c.client.B().Del().Key(keyPrefix+key).Build()).Error()
}

// Ping checks the server for readiness probes.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (c *Cache) Close() {
	c.client.Close()
}
