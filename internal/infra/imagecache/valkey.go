// Package imagecache keeps rendered PNGs keyed by record id so repeated
// visualize requests skip the decode and render work.
package imagecache

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/shadowcast/internal/domain/visualize"
)

// ValkeyCache persists rendered images in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyCache constructs a new cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string, ttl time.Duration) *ValkeyCache {
	if prefix == "" {
		prefix = "shadowcast"
	}
	return &ValkeyCache{client: client, prefix: prefix, ttl: ttl}
}

// Get implements visualize.ImageCache.
func (c *ValkeyCache) Get(ctx context.Context, recordID string) ([]byte, bool, error) {
	cmd := c.client.B().Get().Key(c.entryKey(recordID)).Build()
	payload, err := c.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

// Put implements visualize.ImageCache.
func (c *ValkeyCache) Put(ctx context.Context, recordID string, png []byte) error {
	builder := c.client.B().Set().Key(c.entryKey(recordID)).Value(valkey.BinaryString(png))
	var cmd valkey.Completed
	if ttl := clampTTL(c.ttl); ttl > 0 {
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) entryKey(recordID string) string {
	return fmt.Sprintf("%s:png:%s", c.prefix, recordID)
}

// clampTTL rounds sub-second TTLs up because SET EX takes whole seconds.
func clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}

var _ visualize.ImageCache = (*ValkeyCache)(nil)
