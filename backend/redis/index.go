package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/arvencloud/vectorstore/backend"
)

// CreateIndex creates the FT index over the embedding field. The id field is
// indexed as TAG alongside it so delete-by-id filters can use the index.
// FT.CREATE builds asynchronously on existing data, which matches the
// fire-and-forget contract of IndexSpec.Async.
func (c *Client) CreateIndex(ctx context.Context, spec *backend.IndexSpec) error {
	args, err := buildCreateIndexArgs(c.keys, spec)
	if err != nil {
		return err
	}

	cmd := c.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := c.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return &backend.Error{Op: "FT.CREATE", Err: err}
	}
	return nil
}

// DescribeIndex probes the FT index via FT.INFO. Returns (nil, nil) when no
// index exists.
func (c *Client) DescribeIndex(ctx context.Context) (*backend.IndexDescription, error) {
	cmd := c.b().Arbitrary("FT.INFO").Args(c.keys.indexName()).Build()
	if err := c.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return nil, nil
		}
		return nil, &backend.Error{Op: "FT.INFO", Err: err}
	}
	// FT.INFO replies do not echo the creation metric/algorithm in a stable
	// shape across versions; existence plus the bound field is what the
	// lifecycle needs.
	return &backend.IndexDescription{Field: backend.FieldEmbedding}, nil
}

// DropIndex removes the FT index. Missing index is not an error.
func (c *Client) DropIndex(ctx context.Context) error {
	cmd := c.b().Arbitrary("FT.DROPINDEX").Args(c.keys.indexName()).Build()
	if err := c.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return nil
		}
		return &backend.Error{Op: "FT.DROPINDEX", Err: err}
	}
	return nil
}

func buildCreateIndexArgs(keys keyspace, spec *backend.IndexSpec) ([]string, error) {
	if spec.Field == "" {
		return nil, errors.New("index field is required")
	}
	if spec.Dim <= 0 {
		return nil, errors.New("vector DIM must be positive")
	}

	vectorArgs, err := buildVectorArgs(spec)
	if err != nil {
		return nil, err
	}

	args := []string{
		keys.indexName(),
		"ON", "HASH",
		"PREFIX", "1", keys.docPrefix(),
		"SCHEMA",
		backend.FieldID, "TAG",
		spec.Field,
	}
	return append(args, vectorArgs...), nil
}

func buildVectorArgs(spec *backend.IndexSpec) ([]string, error) {
	var attrs []string

	switch spec.Kind {
	case backend.IndexHNSW:
		attrs = hnswAttrs(spec.Params)
	case backend.IndexFlat:
		attrs = flatAttrs(spec.Params)
	default:
		return nil, errors.New("unsupported index kind: " + string(spec.Kind))
	}

	switch spec.Metric {
	case backend.MetricIP, backend.MetricL2:
	default:
		return nil, errors.New("unsupported metric: " + string(spec.Metric))
	}

	base := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(spec.Dim),
		"DISTANCE_METRIC", string(spec.Metric),
	}
	attrs = append(base, attrs...)

	args := make([]string, 0, 3+len(attrs))
	args = append(args, "VECTOR", string(spec.Kind), strconv.Itoa(len(attrs)))
	return append(args, attrs...), nil
}

func hnswAttrs(params map[string]int) []string {
	var attrs []string
	if m, ok := params["M"]; ok && m > 0 {
		attrs = append(attrs, "M", strconv.Itoa(m))
	}
	if ef, ok := params["EF_CONSTRUCTION"]; ok && ef > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(ef))
	}
	return attrs
}

func flatAttrs(params map[string]int) []string {
	var attrs []string
	if bs, ok := params["BLOCK_SIZE"]; ok && bs > 0 {
		attrs = append(attrs, "BLOCK_SIZE", strconv.Itoa(bs))
	}
	return attrs
}
