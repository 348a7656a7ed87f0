package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/arvencloud/vectorstore/backend"
)

// HasCollection reports whether the collection metadata hash exists.
func (c *Client) HasCollection(ctx context.Context) (bool, error) {
	cmd := c.b().Exists().Key(c.keys.metaKey()).Build()
	count, err := c.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &backend.Error{Op: "EXISTS", Err: err}
	}
	return count > 0, nil
}

// CreateCollection stores the collection metadata hash. Rows and the vector
// index get their own keys; the metadata hash is the collection's existence
// marker and records the schema for later inspection.
func (c *Client) CreateCollection(ctx context.Context, schema *backend.Schema) error {
	if err := schema.Validate(); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	fields, err := schemaToHash(schema)
	if err != nil {
		return err
	}

	cmd := c.b().Hset().Key(c.keys.metaKey()).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	if err := c.do(ctx, cmd.Build()).Error(); err != nil {
		return &backend.Error{Op: "HSET", Err: err}
	}
	return nil
}

// DropCollection removes the metadata hash and every row key. The vector
// index is dropped separately via DropIndex.
func (c *Client) DropCollection(ctx context.Context) error {
	keys, err := c.scan(ctx, c.keys.docPrefix()+"*")
	if err != nil {
		return err
	}
	keys = append(keys, c.keys.metaKey())

	cmd := c.b().Del().Key(keys...).Build()
	if err := c.do(ctx, cmd).Error(); err != nil {
		return &backend.Error{Op: "DEL", Err: err}
	}
	return nil
}

func (c *Client) scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := c.b().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := c.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &backend.Error{Op: "SCAN", Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

// fieldRow is the JSON-serializable representation of a schema field for
// the metadata hash.
type fieldRow struct {
	Name       string `json:"name"`
	Kind       int    `json:"kind"`
	MaxLength  int    `json:"max_length,omitempty"`
	Dim        int    `json:"dim,omitempty"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
}

func schemaToHash(schema *backend.Schema) (map[string]string, error) {
	rows := make([]fieldRow, len(schema.Fields))
	for i, f := range schema.Fields {
		rows[i] = fieldRow{
			Name:       f.Name,
			Kind:       int(f.Kind),
			MaxLength:  f.MaxLength,
			Dim:        f.Dim,
			PrimaryKey: f.PrimaryKey,
		}
	}
	fieldsJSON, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal schema fields: %w", err)
	}

	return map[string]string{
		"description": schema.Description,
		"fields_json": string(fieldsJSON),
		"consistency": string(schema.Consistency),
		"shard_num":   strconv.Itoa(schema.ShardNum),
		"created_at":  strconv.FormatInt(time.Now().Unix(), 10),
	}, nil
}
