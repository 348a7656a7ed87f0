package vectorstore

import (
	"context"

	"github.com/arvencloud/vectorstore/backend"
)

// Backend column names for the fixed collection schema.
const (
	// FieldID is the caller-assigned primary key column.
	FieldID = backend.FieldID
	// FieldContent is the raw text column.
	FieldContent = backend.FieldContent
	// FieldMetadata is the JSON metadata column.
	FieldMetadata = backend.FieldMetadata
	// FieldEmbedding is the float vector column.
	FieldEmbedding = backend.FieldEmbedding
)

// DistanceKey is the reserved metadata key under which search results carry
// the normalized distance (0 = identical, growing with dissimilarity).
// Caller-supplied metadata using this key is overwritten on search results;
// this is accepted behavior and not configurable.
const DistanceKey = "distance"

// Document is one (id, content, metadata, embedding) row in a collection.
// The embedding is computed by the store's Embedder during Add, never
// supplied by the caller. A stored document is immutable; changing it means
// Delete followed by a fresh Add.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]any
	Embedding []float64
}

// Embedder turns text into a fixed-dimension vector. Implementations live
// in embedding/; any failure is propagated to the caller as an
// EmbeddingError, never swallowed.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}
