package vectorstore

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"testing"

	"github.com/arvencloud/vectorstore/backend"
)

// mockEmbedder returns canned vectors per text.
type mockEmbedder struct {
	fn    func(ctx context.Context, text string) ([]float64, error)
	calls int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	m.calls++
	return m.fn(ctx, text)
}

// constEmbedder returns the same dim-sized vector for every text.
func constEmbedder(dim int) *mockEmbedder {
	return &mockEmbedder{
		fn: func(_ context.Context, _ string) ([]float64, error) {
			return make([]float64, dim), nil
		},
	}
}

// storedRow is a row held by the in-memory backend.
type storedRow struct {
	id        string
	content   string
	metadata  string
	embedding []float32
}

// memBackend is an in-memory backend.Client with per-call overrides and
// call counting. Search brute-forces the configured metric over all rows.
type memBackend struct {
	hasCollection bool
	hasIndex      bool
	loaded        bool
	released      int
	flushes       int
	rows          []storedRow

	calls map[string]int

	hasCollectionErr error
	createErr        error
	describeErr      error
	createIndexErr   error
	loadErr          error
	insertErr        error
	flushErr         error
	deleteErr        error
	searchErr        error

	deleteResult *backend.MutationResult
}

func newMemBackend() *memBackend {
	return &memBackend{calls: map[string]int{}}
}

func (m *memBackend) count(op string) { m.calls[op]++ }

func (m *memBackend) HasCollection(context.Context) (bool, error) {
	m.count("has-collection")
	return m.hasCollection, m.hasCollectionErr
}

func (m *memBackend) CreateCollection(_ context.Context, schema *backend.Schema) error {
	m.count("create-collection")
	if m.createErr != nil {
		return m.createErr
	}
	if err := schema.Validate(); err != nil {
		return err
	}
	m.hasCollection = true
	return nil
}

func (m *memBackend) DescribeIndex(context.Context) (*backend.IndexDescription, error) {
	m.count("describe-index")
	if m.describeErr != nil {
		return nil, m.describeErr
	}
	if !m.hasIndex {
		return nil, nil
	}
	return &backend.IndexDescription{Field: backend.FieldEmbedding}, nil
}

func (m *memBackend) CreateIndex(_ context.Context, _ *backend.IndexSpec) error {
	m.count("create-index")
	if m.createIndexErr != nil {
		return m.createIndexErr
	}
	m.hasIndex = true
	return nil
}

func (m *memBackend) LoadCollection(context.Context) error {
	m.count("load-collection")
	if m.loadErr != nil {
		return m.loadErr
	}
	m.loaded = true
	return nil
}

func (m *memBackend) ReleaseCollection(context.Context) error {
	m.count("release-collection")
	m.released++
	m.loaded = false
	return nil
}

func (m *memBackend) DropCollection(context.Context) error {
	m.count("drop-collection")
	m.hasCollection = false
	m.rows = nil
	return nil
}

func (m *memBackend) DropIndex(context.Context) error {
	m.count("drop-index")
	m.hasIndex = false
	return nil
}

func (m *memBackend) Insert(_ context.Context, batch *backend.ColumnarBatch) (*backend.MutationResult, error) {
	m.count("insert")
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	for i := range batch.IDs {
		m.rows = append(m.rows, storedRow{
			id:        batch.IDs[i],
			content:   batch.Contents[i],
			metadata:  marshalMeta(batch.Metadata[i]),
			embedding: batch.Embeddings[i],
		})
	}
	return &backend.MutationResult{InsertCount: int64(batch.Len()), Succeeded: true}, nil
}

func (m *memBackend) Flush(context.Context) error {
	m.count("flush")
	m.flushes++
	return m.flushErr
}

func (m *memBackend) Delete(_ context.Context, ids []string) (*backend.MutationResult, error) {
	m.count("delete")
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	if m.deleteResult != nil {
		return m.deleteResult, nil
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var kept []storedRow
	var deleted int64
	for _, row := range m.rows {
		if _, ok := want[row.id]; ok {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	return &backend.MutationResult{DeleteCount: deleted, Succeeded: true}, nil
}

func (m *memBackend) Search(_ context.Context, req *backend.SearchRequest) ([]backend.SearchHit, error) {
	m.count("search")
	if m.searchErr != nil {
		return nil, m.searchErr
	}

	hits := make([]backend.SearchHit, 0, len(m.rows))
	for _, row := range m.rows {
		hits = append(hits, backend.SearchHit{
			Fields: map[string]string{
				backend.FieldID:       row.id,
				backend.FieldContent:  row.content,
				backend.FieldMetadata: row.metadata,
			},
			Distance: nativeDist(req.Vector, row.embedding, req.Metric),
		})
	}

	// Most similar first: ascending distance for L2, descending for IP.
	sort.SliceStable(hits, func(i, j int) bool {
		if req.Metric == backend.MetricIP {
			return hits[i].Distance > hits[j].Distance
		}
		return hits[i].Distance < hits[j].Distance
	})

	if len(hits) > req.TopK {
		hits = hits[:req.TopK]
	}
	return hits, nil
}

func (m *memBackend) Close() { m.count("close") }

var _ backend.Client = (*memBackend)(nil)

func nativeDist(a, b []float32, metric backend.Metric) float64 {
	var acc float64
	for i := range a {
		if metric == backend.MetricIP {
			acc += float64(a[i]) * float64(b[i])
		} else {
			d := float64(a[i]) - float64(b[i])
			acc += d * d
		}
	}
	if metric == backend.MetricIP {
		return acc
	}
	return math.Sqrt(acc)
}

func marshalMeta(m map[string]any) string {
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// makeStore wires a Store onto the in-memory backend.
func makeStore(t *testing.T, client backend.Client, embedder Embedder, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithBackend(client), WithEmbeddingDim(3)}, opts...)
	s, err := New(embedder, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}
