package redis

import (
	"reflect"
	"testing"

	"github.com/arvencloud/vectorstore/backend"
)

var testKeys = keyspace{database: "default", collection: "vector_store"}

func TestBuildCreateIndexArgs_HNSW(t *testing.T) {
	spec := &backend.IndexSpec{
		Field:  backend.FieldEmbedding,
		Kind:   backend.IndexHNSW,
		Metric: backend.MetricL2,
		Dim:    1536,
		Params: map[string]int{"M": 16, "EF_CONSTRUCTION": 200},
	}

	args, err := buildCreateIndexArgs(testKeys, spec)
	if err != nil {
		t.Fatalf("buildCreateIndexArgs: %v", err)
	}

	want := []string{
		"default:vector_store:idx",
		"ON", "HASH",
		"PREFIX", "1", "default:vector_store:doc:",
		"SCHEMA",
		"doc_id", "TAG",
		"embedding", "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32",
		"DIM", "1536",
		"DISTANCE_METRIC", "L2",
		"M", "16",
		"EF_CONSTRUCTION", "200",
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args mismatch:\ngot:  %v\nwant: %v", args, want)
	}
}

func TestBuildCreateIndexArgs_Flat(t *testing.T) {
	spec := &backend.IndexSpec{
		Field:  backend.FieldEmbedding,
		Kind:   backend.IndexFlat,
		Metric: backend.MetricIP,
		Dim:    4,
	}

	args, err := buildCreateIndexArgs(testKeys, spec)
	if err != nil {
		t.Fatalf("buildCreateIndexArgs: %v", err)
	}

	want := []string{
		"default:vector_store:idx",
		"ON", "HASH",
		"PREFIX", "1", "default:vector_store:doc:",
		"SCHEMA",
		"doc_id", "TAG",
		"embedding", "VECTOR", "FLAT", "6",
		"TYPE", "FLOAT32",
		"DIM", "4",
		"DISTANCE_METRIC", "IP",
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args mismatch:\ngot:  %v\nwant: %v", args, want)
	}
}

func TestBuildCreateIndexArgs_Rejections(t *testing.T) {
	tests := []struct {
		name string
		spec *backend.IndexSpec
	}{
		{"missing field", &backend.IndexSpec{Kind: backend.IndexHNSW, Metric: backend.MetricL2, Dim: 4}},
		{"zero dim", &backend.IndexSpec{Field: "v", Kind: backend.IndexHNSW, Metric: backend.MetricL2}},
		{"unknown kind", &backend.IndexSpec{Field: "v", Kind: "IVF_PQ", Metric: backend.MetricL2, Dim: 4}},
		{"unknown metric", &backend.IndexSpec{Field: "v", Kind: backend.IndexHNSW, Metric: "COSINE", Dim: 4}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := buildCreateIndexArgs(testKeys, tc.spec); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
