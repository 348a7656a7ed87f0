package redis

import (
	"context"
	"fmt"
)

// LoadCollection verifies the collection is servable. Redis serves hashes
// and FT indexes from memory as soon as they exist, so load reduces to a
// readiness probe: the index must be present.
func (c *Client) LoadCollection(ctx context.Context) error {
	desc, err := c.DescribeIndex(ctx)
	if err != nil {
		return err
	}
	if desc == nil {
		return fmt.Errorf("index %s does not exist", c.keys.indexName())
	}
	return nil
}

// ReleaseCollection is an acknowledged no-op: Redis has no unloaded state
// for an existing index. The call still flows through the lifecycle so
// engines with real load/release semantics can be substituted.
func (c *Client) ReleaseCollection(_ context.Context) error {
	return nil
}
