package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/arvencloud/vectorstore/backend"
)

// Search runs a KNN query via FT.SEARCH and returns hits best-first with
// the metric-native distance attached.
func (c *Client) Search(ctx context.Context, req *backend.SearchRequest) ([]backend.SearchHit, error) {
	args, scoreField, err := buildSearchArgs(c.keys, req)
	if err != nil {
		return nil, err
	}

	cmd := c.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := c.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &backend.Error{Op: "FT.SEARCH", Err: err}
	}

	return parseSearchResult(raw, scoreField, req.Metric)
}

// buildSearchArgs renders the FT.SEARCH KNN command. The engine reports the
// distance in a __<field>_score attribute, which is requested alongside the
// output fields and used to sort.
func buildSearchArgs(keys keyspace, req *backend.SearchRequest) (args []string, scoreField string, err error) {
	if len(req.Vector) == 0 {
		return nil, "", fmt.Errorf("vector is required")
	}
	if req.TopK <= 0 {
		return nil, "", fmt.Errorf("topK must be positive")
	}
	field := req.VectorField
	if field == "" {
		field = backend.FieldEmbedding
	}
	scoreField = "__" + field + "_score"

	queryStr := fmt.Sprintf("*=>[KNN %d @%s $BLOB]", req.TopK, field)

	args = []string{keys.indexName(), queryStr}

	returnFields := append([]string{}, req.OutputFields...)
	returnFields = append(returnFields, scoreField)
	args = append(args, "RETURN", strconv.Itoa(len(returnFields)))
	args = append(args, returnFields...)

	args = append(args,
		"SORTBY", scoreField,
		"LIMIT", "0", strconv.Itoa(req.TopK),
		"PARAMS", "2", "BLOB", vectorToBytes(req.Vector),
		"DIALECT", "2",
	)
	return args, scoreField, nil
}

func parseSearchResult(raw []rueidis.RedisMessage, scoreField string, metric backend.Metric) ([]backend.SearchHit, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	hits := make([]backend.SearchHit, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		hit := backend.SearchHit{Fields: parseFieldPairs(fields)}

		if scoreStr, ok := hit.Fields[scoreField]; ok {
			if score, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				hit.Distance = nativeDistance(score, metric)
			}
			delete(hit.Fields, scoreField)
		}

		hits = append(hits, hit)
	}

	return hits, nil
}

// nativeDistance converts the engine's score attribute into the metric's
// native value. For L2 the engine already reports the distance. For IP the
// engine reports 1 - ip so smaller sorts first; the raw inner product is
// restored here.
func nativeDistance(score float64, metric backend.Metric) float64 {
	if metric == backend.MetricIP {
		return 1 - score
	}
	return score
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}
