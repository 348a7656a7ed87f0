package vectorstore

import (
	"context"
	"math"

	"github.com/arvencloud/vectorstore/backend"
	"github.com/arvencloud/vectorstore/internal/relevance"
)

// DefaultTopK is the number of results a search returns when WithTopK is
// not supplied.
const DefaultTopK = 4

type searchSettings struct {
	topK      int
	threshold float64
}

// SearchOption adjusts a single SimilaritySearch call.
type SearchOption func(*searchSettings)

// WithTopK sets the maximum number of documents to return.
func WithTopK(k int) SearchOption {
	return func(s *searchSettings) { s.topK = k }
}

// WithScoreThreshold drops results whose relevance score falls below t.
// Relevance is always on a higher-is-better scale regardless of the
// configured metric. The default threshold of 0 keeps everything.
func WithScoreThreshold(t float64) SearchOption {
	return func(s *searchSettings) { s.threshold = t }
}

// SimilaritySearch embeds the query and returns up to topK documents
// ordered most similar first. Each result's metadata carries the stored
// distance under DistanceKey (1 - relevance, so lower is closer); any
// caller-provided value under that key is overwritten.
func (s *Store) SimilaritySearch(ctx context.Context, query string, opts ...SearchOption) ([]Document, error) {
	settings := searchSettings{topK: DefaultTopK, threshold: 0}
	for _, opt := range opts {
		opt(&settings)
	}

	if query == "" {
		return nil, &ValidationError{Op: "search", Reason: "query must not be empty"}
	}
	if settings.topK <= 0 {
		return nil, &ValidationError{Op: "search", Reason: "topK must be positive"}
	}
	if math.IsNaN(settings.threshold) {
		return nil, &ValidationError{Op: "search", Reason: "score threshold must not be NaN"}
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &EmbeddingError{Op: "embed", Err: err}
	}

	hits, err := s.client.Search(ctx, &backend.SearchRequest{
		Vector:       narrowVector(vec),
		VectorField:  backend.FieldEmbedding,
		TopK:         settings.topK,
		Metric:       s.cfg.Metric,
		OutputFields: []string{backend.FieldID, backend.FieldContent, backend.FieldMetadata},
		Consistency:  s.cfg.Consistency,
	})
	if err != nil {
		return nil, &StoreError{Op: "search", Err: err}
	}

	docs := make([]Document, 0, len(hits))
	for _, hit := range hits {
		score := relevance.Score(hit.Distance, s.cfg.Metric)
		if score < settings.threshold {
			continue
		}
		doc, err := decodeRow(hit.Fields)
		if err != nil {
			return nil, &StoreError{Op: "search", Err: err}
		}
		if doc.Metadata == nil {
			doc.Metadata = make(map[string]any, 1)
		}
		doc.Metadata[DistanceKey] = relevance.StoredDistance(score)
		docs = append(docs, doc)
	}
	return docs, nil
}
