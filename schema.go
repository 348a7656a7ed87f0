package vectorstore

import "github.com/arvencloud/vectorstore/backend"

// Bounds of the fixed collection schema.
const (
	// idMaxLength bounds the caller-assigned identifier (UUID-sized).
	idMaxLength = 36
	// contentMaxLength bounds the raw text content.
	contentMaxLength = 65535
	// shardNum is the shard count requested at collection creation.
	shardNum = 2
)

// collectionSchema is the static four-column schema every store provisions:
// caller-assigned id, text content, JSON metadata, and the embedding vector.
func (c Config) collectionSchema() *backend.Schema {
	return &backend.Schema{
		Description: "vector store collection",
		Consistency: c.Consistency,
		ShardNum:    shardNum,
		Fields: []backend.FieldSpec{
			{Name: FieldID, Kind: backend.FieldVarChar, MaxLength: idMaxLength, PrimaryKey: true},
			{Name: FieldContent, Kind: backend.FieldVarChar, MaxLength: contentMaxLength},
			{Name: FieldMetadata, Kind: backend.FieldJSON},
			{Name: FieldEmbedding, Kind: backend.FieldFloatVector, Dim: c.EmbeddingDim},
		},
	}
}

// indexSpec is the vector index requested on the embedding column. The
// build is asynchronous; the load step is what gates searchability.
func (c Config) indexSpec() *backend.IndexSpec {
	return &backend.IndexSpec{
		Field:  FieldEmbedding,
		Kind:   c.IndexKind,
		Metric: c.Metric,
		Dim:    c.EmbeddingDim,
		Params: c.IndexParams,
		Async:  true,
	}
}
