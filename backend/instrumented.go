package backend

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InstrumentedClient wraps a Client and records per-operation request counts
// and durations. Collectors are passed explicitly; nil collectors disable
// the corresponding series.
type InstrumentedClient struct {
	inner    Client
	requests *prometheus.CounterVec   // labels: op, status
	duration *prometheus.HistogramVec // labels: op
}

// NewInstrumented wraps a Client with Prometheus instrumentation.
func NewInstrumented(inner Client, requests *prometheus.CounterVec, duration *prometheus.HistogramVec) *InstrumentedClient {
	return &InstrumentedClient{inner: inner, requests: requests, duration: duration}
}

func (c *InstrumentedClient) observe(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.requests != nil {
		c.requests.WithLabelValues(op, status).Inc()
	}
	if c.duration != nil {
		c.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	}
	return err
}

// HasCollection implements Client.
func (c *InstrumentedClient) HasCollection(ctx context.Context) (bool, error) {
	var ok bool
	err := c.observe("has-collection", func() error {
		var err error
		ok, err = c.inner.HasCollection(ctx)
		return err
	})
	return ok, err
}

// CreateCollection implements Client.
func (c *InstrumentedClient) CreateCollection(ctx context.Context, schema *Schema) error {
	return c.observe("create-collection", func() error {
		return c.inner.CreateCollection(ctx, schema)
	})
}

// DescribeIndex implements Client.
func (c *InstrumentedClient) DescribeIndex(ctx context.Context) (*IndexDescription, error) {
	var desc *IndexDescription
	err := c.observe("describe-index", func() error {
		var err error
		desc, err = c.inner.DescribeIndex(ctx)
		return err
	})
	return desc, err
}

// CreateIndex implements Client.
func (c *InstrumentedClient) CreateIndex(ctx context.Context, spec *IndexSpec) error {
	return c.observe("create-index", func() error {
		return c.inner.CreateIndex(ctx, spec)
	})
}

// LoadCollection implements Client.
func (c *InstrumentedClient) LoadCollection(ctx context.Context) error {
	return c.observe("load-collection", func() error {
		return c.inner.LoadCollection(ctx)
	})
}

// ReleaseCollection implements Client.
func (c *InstrumentedClient) ReleaseCollection(ctx context.Context) error {
	return c.observe("release-collection", func() error {
		return c.inner.ReleaseCollection(ctx)
	})
}

// DropCollection implements Client.
func (c *InstrumentedClient) DropCollection(ctx context.Context) error {
	return c.observe("drop-collection", func() error {
		return c.inner.DropCollection(ctx)
	})
}

// DropIndex implements Client.
func (c *InstrumentedClient) DropIndex(ctx context.Context) error {
	return c.observe("drop-index", func() error {
		return c.inner.DropIndex(ctx)
	})
}

// Insert implements Client.
func (c *InstrumentedClient) Insert(ctx context.Context, batch *ColumnarBatch) (*MutationResult, error) {
	var res *MutationResult
	err := c.observe("insert", func() error {
		var err error
		res, err = c.inner.Insert(ctx, batch)
		return err
	})
	return res, err
}

// Flush implements Client.
func (c *InstrumentedClient) Flush(ctx context.Context) error {
	return c.observe("flush", func() error {
		return c.inner.Flush(ctx)
	})
}

// Delete implements Client.
func (c *InstrumentedClient) Delete(ctx context.Context, ids []string) (*MutationResult, error) {
	var res *MutationResult
	err := c.observe("delete", func() error {
		var err error
		res, err = c.inner.Delete(ctx, ids)
		return err
	})
	return res, err
}

// Search implements Client.
func (c *InstrumentedClient) Search(ctx context.Context, req *SearchRequest) ([]SearchHit, error) {
	var hits []SearchHit
	err := c.observe("search", func() error {
		var err error
		hits, err = c.inner.Search(ctx, req)
		return err
	})
	return hits, err
}

// Close implements Client.
func (c *InstrumentedClient) Close() { c.inner.Close() }

// Compile-time check: InstrumentedClient implements Client.
var _ Client = (*InstrumentedClient)(nil)
