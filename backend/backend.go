// Package backend defines the contract a vector database engine must satisfy
// to serve as the storage layer of a vectorstore.Store. A Client is bound to
// exactly one (database, collection) pair for its lifetime; all operations
// are synchronous remote calls with no retries.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Canonical column names of the fixed document layout. Engines that
// materialize rows themselves (rather than receiving named columns on the
// wire) store documents under these names.
const (
	FieldID        = "doc_id"
	FieldContent   = "content"
	FieldMetadata  = "metadata"
	FieldEmbedding = "embedding"
)

// Metric identifies the distance function used to compare embeddings.
type Metric string

const (
	// MetricIP is inner product: larger native values mean more similar.
	MetricIP Metric = "IP"
	// MetricL2 is squared Euclidean distance: smaller native values mean
	// more similar.
	MetricL2 Metric = "L2"
)

// IndexKind selects the vector index algorithm.
type IndexKind string

const (
	// IndexFlat is brute-force exact search.
	IndexFlat IndexKind = "FLAT"
	// IndexHNSW is the HNSW graph index.
	IndexHNSW IndexKind = "HNSW"
)

// ConsistencyLevel is the read-after-write guarantee requested from the
// engine. Stores always request the strongest level; the constant exists so
// the requested level is visible on the wire types.
type ConsistencyLevel string

// ConsistencyStrong is the strongest consistency level an engine offers.
const ConsistencyStrong ConsistencyLevel = "strong"

// FieldKind enumerates the column types of the fixed collection schema.
type FieldKind int

const (
	// FieldVarChar is a bounded-length string column.
	FieldVarChar FieldKind = iota
	// FieldJSON is a structured JSON column.
	FieldJSON
	// FieldFloatVector is a fixed-dimension float vector column.
	FieldFloatVector
)

// FieldSpec describes one column of a collection schema.
type FieldSpec struct {
	Name       string
	Kind       FieldKind
	MaxLength  int  // VarChar only
	Dim        int  // FloatVector only
	PrimaryKey bool // caller-assigned, never auto-generated
}

// Schema is the static description of a collection's columns.
type Schema struct {
	Description string
	Fields      []FieldSpec
	Consistency ConsistencyLevel
	ShardNum    int
}

// Validate checks that the schema is well-formed.
func (s *Schema) Validate() error {
	if len(s.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	primaries := 0
	seen := make(map[string]bool, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true
		if f.PrimaryKey {
			primaries++
		}
		if f.Kind == FieldFloatVector && f.Dim <= 0 {
			return errors.New("vector field requires positive dim")
		}
	}
	if primaries != 1 {
		return errors.New("exactly one primary key field is required")
	}
	return nil
}

// IndexSpec describes the vector index to create on the embedding column.
// Params is an opaque integer-valued build-parameter blob handed to the
// engine (HNSW M / EF_CONSTRUCTION, FLAT BLOCK_SIZE, ...).
type IndexSpec struct {
	Field  string
	Kind   IndexKind
	Metric Metric
	Dim    int
	Params map[string]int
	Async  bool // request asynchronous build; readiness is the load step's concern
}

// IndexDescription is the engine's view of an existing index.
type IndexDescription struct {
	Field  string
	Kind   IndexKind
	Metric Metric
}

// ColumnarBatch is the column-oriented insert payload: four parallel slices
// of equal length, index i across all of them forming one row.
type ColumnarBatch struct {
	IDs        []string
	Contents   []string
	Metadata   []map[string]any
	Embeddings [][]float32
}

// Len returns the number of rows in the batch.
func (b *ColumnarBatch) Len() int { return len(b.IDs) }

// Validate checks the parallel-slice invariant.
func (b *ColumnarBatch) Validate() error {
	n := len(b.IDs)
	if len(b.Contents) != n || len(b.Metadata) != n || len(b.Embeddings) != n {
		return fmt.Errorf("columnar batch slices must have equal length: ids=%d contents=%d metadata=%d embeddings=%d",
			n, len(b.Contents), len(b.Metadata), len(b.Embeddings))
	}
	return nil
}

// MutationResult reports the outcome of an insert or delete call.
type MutationResult struct {
	InsertCount int64
	DeleteCount int64
	// Succeeded is the engine's own status for the call, independent of
	// whether the counts matched the caller's expectation.
	Succeeded bool
}

// SearchRequest asks for the TopK nearest rows to Vector.
type SearchRequest struct {
	Vector       []float32
	VectorField  string
	TopK         int
	Metric       Metric
	OutputFields []string
	Consistency  ConsistencyLevel
}

// SearchHit is one ranked row: the requested output fields in the engine's
// string representation plus the metric-native distance. Hits arrive sorted
// best-first by the engine.
type SearchHit struct {
	Fields   map[string]string
	Distance float64
}

// Client is the set of primitive remote calls a vector database engine
// exposes. Every method may fail with an engine error; callers perform no
// retries. Implementations must be safe for concurrent use.
//
//nolint:interfacebloat // lifecycle, data and search primitives of one engine
type Client interface {
	// HasCollection reports whether the bound collection exists.
	HasCollection(ctx context.Context) (bool, error)
	// CreateCollection provisions the collection with the given schema.
	CreateCollection(ctx context.Context, schema *Schema) error
	// DescribeIndex returns the vector index metadata, or (nil, nil) when
	// no index exists yet.
	DescribeIndex(ctx context.Context) (*IndexDescription, error)
	// CreateIndex requests an index on the embedding column. With
	// IndexSpec.Async the engine may build it in the background.
	CreateIndex(ctx context.Context, spec *IndexSpec) error
	// LoadCollection brings the collection into serving state. Search is
	// only valid after a successful load.
	LoadCollection(ctx context.Context) error
	// ReleaseCollection drops the collection from serving state.
	ReleaseCollection(ctx context.Context) error
	// DropCollection removes the collection and all of its rows.
	DropCollection(ctx context.Context) error
	// DropIndex removes the vector index.
	DropIndex(ctx context.Context) error

	// Insert writes a columnar batch as len(batch.IDs) rows.
	Insert(ctx context.Context, batch *ColumnarBatch) (*MutationResult, error)
	// Flush requests a durability/visibility fence for prior writes.
	Flush(ctx context.Context) error
	// Delete removes the rows whose identifier is in ids, via an
	// engine-native filter expression over the id column. The reported
	// DeleteCount may legitimately be lower than len(ids).
	Delete(ctx context.Context, ids []string) (*MutationResult, error)
	// Search returns the TopK nearest rows, best-first, with native
	// distances attached.
	Search(ctx context.Context, req *SearchRequest) ([]SearchHit, error)

	// Close releases client resources. It does not release the collection.
	Close()
}

// Error wraps an engine error with the wire-level operation name.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }

// Unwrap returns the engine error.
func (e *Error) Unwrap() error { return e.Err }
