// Package redis implements backend.Client on Redis 8+ using the RediSearch
// (FT) module: rows are hashes, the vector index is an FT index over the
// embedding field, and KNN search runs through FT.SEARCH.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/arvencloud/vectorstore/backend"
)

// Compile-time check: Client implements backend.Client.
var _ backend.Client = (*Client)(nil)

// Config holds connection parameters and the (database, collection) binding.
type Config struct {
	Addrs    []string
	Username string
	Password string

	// Database and Collection form the key namespace this client is bound
	// to for its lifetime.
	Database   string
	Collection string
}

// Client implements backend.Client via rueidis.
type Client struct {
	client rueidis.Client
	keys   keyspace
}

// New creates a Redis-backed client bound to one (database, collection) pair.
func New(cfg Config) (*Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("database and collection are required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Client{
		client: client,
		keys:   keyspace{database: cfg.Database, collection: cfg.Collection},
	}, nil
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	cmd := c.b().Ping().Build()
	if err := c.do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the server responds or timeout expires.
func (c *Client) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for backend: %w", ctx.Err())
		case <-ticker.C:
			if err := c.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close shuts down the client.
func (c *Client) Close() {
	c.client.Close()
}

func (c *Client) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return c.client.Do(ctx, cmd)
}

func (c *Client) b() rueidis.Builder {
	return c.client.B()
}

// keyspace derives the Redis keys owned by one (database, collection) pair.
type keyspace struct {
	database   string
	collection string
}

func (k keyspace) metaKey() string {
	return fmt.Sprintf("%s:%s:meta", k.database, k.collection)
}

func (k keyspace) docPrefix() string {
	return fmt.Sprintf("%s:%s:doc:", k.database, k.collection)
}

func (k keyspace) docKey(id string) string {
	return k.docPrefix() + id
}

func (k keyspace) indexName() string {
	return fmt.Sprintf("%s:%s:idx", k.database, k.collection)
}

// isRedisErr checks if err is a Redis server error containing substr
// (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
