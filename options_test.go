package vectorstore

import (
	"testing"

	"github.com/arvencloud/vectorstore/backend"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.DatabaseName != DefaultDatabaseName {
		t.Errorf("database = %q, want %q", cfg.DatabaseName, DefaultDatabaseName)
	}
	if cfg.CollectionName != DefaultCollectionName {
		t.Errorf("collection = %q, want %q", cfg.CollectionName, DefaultCollectionName)
	}
	if cfg.EmbeddingDim != DefaultEmbeddingDim {
		t.Errorf("dim = %d, want %d", cfg.EmbeddingDim, DefaultEmbeddingDim)
	}
	if cfg.Metric != backend.MetricL2 {
		t.Errorf("metric = %q, want L2", cfg.Metric)
	}
	if cfg.Consistency != backend.ConsistencyStrong {
		t.Errorf("consistency = %q, want strong", cfg.Consistency)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestConfigValidate_DimBounds(t *testing.T) {
	for _, dim := range []int{1, 768, MaxEmbeddingDim} {
		cfg := defaultConfig()
		cfg.EmbeddingDim = dim
		if err := cfg.Validate(); err != nil {
			t.Errorf("dim %d should be valid: %v", dim, err)
		}
	}
	for _, dim := range []int{0, -1, MaxEmbeddingDim + 1, 10000} {
		cfg := defaultConfig()
		cfg.EmbeddingDim = dim
		if err := cfg.Validate(); err == nil {
			t.Errorf("dim %d should be rejected", dim)
		}
	}
}

func TestConfigValidate_Metric(t *testing.T) {
	for _, m := range []backend.Metric{backend.MetricIP, backend.MetricL2} {
		cfg := defaultConfig()
		cfg.Metric = m
		if err := cfg.Validate(); err != nil {
			t.Errorf("metric %q should be valid: %v", m, err)
		}
	}
	for _, m := range []backend.Metric{"COSINE", "HAMMING", ""} {
		cfg := defaultConfig()
		cfg.Metric = m
		if err := cfg.Validate(); err == nil {
			t.Errorf("metric %q should be rejected", m)
		}
	}
}

func TestOptions_Apply(t *testing.T) {
	s := settings{cfg: defaultConfig()}

	WithDatabaseName("tenant1")(&s)
	WithCollectionName("articles")(&s)
	WithEmbeddingDim(768)(&s)
	WithMetric(backend.MetricIP)(&s)
	WithIndexKind(backend.IndexFlat)(&s)
	WithRedis("localhost:6379", "localhost:6380")(&s)
	WithRedisAuth("svc", "secret")(&s)

	if s.cfg.DatabaseName != "tenant1" {
		t.Errorf("database = %q", s.cfg.DatabaseName)
	}
	if s.cfg.CollectionName != "articles" {
		t.Errorf("collection = %q", s.cfg.CollectionName)
	}
	if s.cfg.EmbeddingDim != 768 {
		t.Errorf("dim = %d", s.cfg.EmbeddingDim)
	}
	if s.cfg.Metric != backend.MetricIP {
		t.Errorf("metric = %q", s.cfg.Metric)
	}
	if s.cfg.IndexKind != backend.IndexFlat {
		t.Errorf("kind = %q", s.cfg.IndexKind)
	}
	if len(s.redis.Addrs) != 2 {
		t.Errorf("addrs = %v", s.redis.Addrs)
	}
	if s.redis.Username != "svc" || s.redis.Password != "secret" {
		t.Errorf("auth = %q/%q", s.redis.Username, s.redis.Password)
	}
}

func TestCollectionSchema(t *testing.T) {
	cfg := defaultConfig()
	schema := cfg.collectionSchema()

	if err := schema.Validate(); err != nil {
		t.Fatalf("schema invalid: %v", err)
	}
	if len(schema.Fields) != 4 {
		t.Fatalf("fields = %d, want 4", len(schema.Fields))
	}

	var vector *backend.FieldSpec
	for i := range schema.Fields {
		if schema.Fields[i].Name == backend.FieldEmbedding {
			vector = &schema.Fields[i]
		}
	}
	if vector == nil {
		t.Fatal("schema must contain the embedding field")
	}
	if vector.Dim != cfg.EmbeddingDim {
		t.Errorf("vector dim = %d, want %d", vector.Dim, cfg.EmbeddingDim)
	}
}

func TestIndexSpec(t *testing.T) {
	cfg := defaultConfig()
	spec := cfg.indexSpec()

	if spec.Field != backend.FieldEmbedding {
		t.Errorf("field = %q, want %q", spec.Field, backend.FieldEmbedding)
	}
	if spec.Metric != cfg.Metric {
		t.Errorf("metric = %q, want %q", spec.Metric, cfg.Metric)
	}
	if spec.Dim != cfg.EmbeddingDim {
		t.Errorf("dim = %d, want %d", spec.Dim, cfg.EmbeddingDim)
	}
}
