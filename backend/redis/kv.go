package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/rueidis"

	"github.com/arvencloud/vectorstore/backend"
)

// ErrKeyNotFound reports a missing key on Get.
var ErrKeyNotFound = errors.New("redis: key not found")

// Get retrieves a raw value by key. Used by the embedding cache; not part
// of backend.Client.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := c.b().Get().Key(key).Build()
	data, err := c.do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrKeyNotFound
		}
		return nil, &backend.Error{Op: "GET", Err: err}
	}
	return data, nil
}

// Set stores a raw value at the given key.
func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	cmd := c.b().Set().Key(key).Value(string(value)).Build()
	if err := c.do(ctx, cmd).Error(); err != nil {
		return &backend.Error{Op: "SET", Err: err}
	}
	return nil
}

// SetWithTTL stores a raw value that expires after ttl.
func (c *Client) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := c.b().Set().Key(key).Value(string(value)).ExSeconds(int64(ttl.Seconds())).Build()
	if err := c.do(ctx, cmd).Error(); err != nil {
		return &backend.Error{Op: "SET", Err: err}
	}
	return nil
}
