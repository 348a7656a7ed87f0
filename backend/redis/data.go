package redis

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/arvencloud/vectorstore/backend"
)

// Insert writes the columnar batch as one hash per row in a single DoMulti
// round-trip. Row keys derive from the id column, so re-inserting an id
// overwrites the row.
func (c *Client) Insert(ctx context.Context, batch *backend.ColumnarBatch) (*backend.MutationResult, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	if batch.Len() == 0 {
		return &backend.MutationResult{Succeeded: true}, nil
	}

	cmds := make([]rueidis.Completed, batch.Len())
	for i := range batch.IDs {
		metaJSON, err := json.Marshal(batch.Metadata[i])
		if err != nil {
			return nil, fmt.Errorf("marshal metadata for %s: %w", batch.IDs[i], err)
		}

		cmds[i] = c.b().Hset().Key(c.keys.docKey(batch.IDs[i])).FieldValue().
			FieldValue(backend.FieldID, batch.IDs[i]).
			FieldValue(backend.FieldContent, batch.Contents[i]).
			FieldValue(backend.FieldMetadata, string(metaJSON)).
			FieldValue(backend.FieldEmbedding, vectorToBytes(batch.Embeddings[i])).
			Build()
	}

	results := c.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return nil, &backend.Error{Op: "HSET", Err: fmt.Errorf("row %s: %w", batch.IDs[i], err)}
		}
	}

	return &backend.MutationResult{InsertCount: int64(batch.Len()), Succeeded: true}, nil
}

// Flush issues a WAIT fence. Redis hash writes are synchronously indexed,
// so the fence only orders replication acknowledgment.
func (c *Client) Flush(ctx context.Context) error {
	cmd := c.b().Arbitrary("WAIT").Args("0", "0").Build()
	if err := c.do(ctx, cmd).Error(); err != nil {
		return &backend.Error{Op: "WAIT", Err: err}
	}
	return nil
}

// Delete selects the rows whose id column matches one of ids via an FT tag
// filter, then deletes the matched keys. The reported DeleteCount is the
// number of keys actually removed, which may be lower than len(ids).
func (c *Client) Delete(ctx context.Context, ids []string) (*backend.MutationResult, error) {
	if len(ids) == 0 {
		return &backend.MutationResult{Succeeded: true}, nil
	}

	filter := buildIDFilter(ids)
	args := []string{
		c.keys.indexName(), filter,
		"NOCONTENT",
		"LIMIT", "0", strconv.Itoa(len(ids)),
		"DIALECT", "2",
	}

	cmd := c.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := c.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &backend.Error{Op: "FT.SEARCH", Err: err}
	}

	// NOCONTENT reply: [total, key1, key2, ...]
	keys := make([]string, 0, len(raw))
	for i := 1; i < len(raw); i++ {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		return &backend.MutationResult{DeleteCount: 0, Succeeded: true}, nil
	}

	delCmd := c.b().Del().Key(keys...).Build()
	deleted, err := c.do(ctx, delCmd).AsInt64()
	if err != nil {
		return nil, &backend.Error{Op: "DEL", Err: err}
	}

	return &backend.MutationResult{DeleteCount: deleted, Succeeded: true}, nil
}

// buildIDFilter renders the engine-native filter expression selecting rows
// whose id is in ids: @doc_id:{a|b|c} with tag escaping.
func buildIDFilter(ids []string) string {
	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = tagEscaper.Replace(id)
	}
	return fmt.Sprintf("@%s:{%s}", backend.FieldID, strings.Join(escaped, "|"))
}

// tagEscaper escapes RediSearch tag syntax characters in id values.
var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

// vectorToBytes serializes []float32 to a binary string (4 bytes per float,
// little-endian), the FT vector wire format.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
