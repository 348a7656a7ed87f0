package vectorstore

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arvencloud/vectorstore/backend"
	"github.com/arvencloud/vectorstore/backend/redis"
)

// Defaults mirroring the common OpenAI embedding shape and a
// general-purpose index.
const (
	// DefaultDatabaseName is the database a store uses unless configured.
	DefaultDatabaseName = "default"
	// DefaultCollectionName is the collection a store uses unless configured.
	DefaultCollectionName = "vector_store"
	// DefaultEmbeddingDim matches OpenAI text embeddings.
	DefaultEmbeddingDim = 1536
	// MaxEmbeddingDim is the upper bound on configurable dimensions.
	MaxEmbeddingDim = 2048
)

// Config is the immutable per-store configuration. All fields are fixed at
// New time; a store talks to exactly one (database, collection) pair for
// its lifetime. The consistency level is always the strongest available
// and is not configurable.
type Config struct {
	DatabaseName   string
	CollectionName string
	EmbeddingDim   int
	IndexKind      backend.IndexKind
	Metric         backend.Metric
	IndexParams    map[string]int
	Consistency    backend.ConsistencyLevel
}

// Validate checks the configuration bounds at construction time.
func (c *Config) Validate() error {
	if c.DatabaseName == "" {
		return fmt.Errorf("database name must not be empty")
	}
	if c.CollectionName == "" {
		return fmt.Errorf("collection name must not be empty")
	}
	if c.EmbeddingDim < 1 || c.EmbeddingDim > MaxEmbeddingDim {
		return fmt.Errorf("embedding dimension must be within [1, %d], got %d", MaxEmbeddingDim, c.EmbeddingDim)
	}
	switch c.Metric {
	case backend.MetricIP, backend.MetricL2:
	default:
		return fmt.Errorf("only the IP and L2 metrics are supported, got %q", c.Metric)
	}
	switch c.IndexKind {
	case backend.IndexFlat, backend.IndexHNSW:
	default:
		return fmt.Errorf("unsupported index kind %q", c.IndexKind)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		DatabaseName:   DefaultDatabaseName,
		CollectionName: DefaultCollectionName,
		EmbeddingDim:   DefaultEmbeddingDim,
		IndexKind:      backend.IndexHNSW,
		Metric:         backend.MetricL2,
		IndexParams:    map[string]int{"M": 16, "EF_CONSTRUCTION": 200},
		Consistency:    backend.ConsistencyStrong,
	}
}

// settings collects everything New needs before wiring.
type settings struct {
	cfg    Config
	client backend.Client
	redis  *redis.Config
	logger *zap.Logger
}

// Option configures a Store at construction.
type Option func(*settings)

// WithDatabaseName sets the database name.
func WithDatabaseName(name string) Option {
	return func(s *settings) { s.cfg.DatabaseName = name }
}

// WithCollectionName sets the collection name.
func WithCollectionName(name string) Option {
	return func(s *settings) { s.cfg.CollectionName = name }
}

// WithEmbeddingDim sets the embedding dimension D. Valid range is
// [1, MaxEmbeddingDim].
func WithEmbeddingDim(dim int) Option {
	return func(s *settings) { s.cfg.EmbeddingDim = dim }
}

// WithIndexKind sets the vector index kind.
func WithIndexKind(kind backend.IndexKind) Option {
	return func(s *settings) { s.cfg.IndexKind = kind }
}

// WithMetric sets the distance metric. Only backend.MetricIP and
// backend.MetricL2 are accepted.
func WithMetric(metric backend.Metric) Option {
	return func(s *settings) { s.cfg.Metric = metric }
}

// WithIndexParams sets the opaque index build parameters.
func WithIndexParams(params map[string]int) Option {
	return func(s *settings) { s.cfg.IndexParams = params }
}

// WithRedis connects the store to a Redis 8+ backend at the given
// addresses, bound to the configured database and collection names.
func WithRedis(addrs ...string) Option {
	return func(s *settings) {
		if s.redis == nil {
			s.redis = &redis.Config{}
		}
		s.redis.Addrs = addrs
	}
}

// WithRedisAuth sets credentials for the Redis backend.
func WithRedisAuth(username, password string) Option {
	return func(s *settings) {
		if s.redis == nil {
			s.redis = &redis.Config{}
		}
		s.redis.Username = username
		s.redis.Password = password
	}
}

// WithBackend plugs in an already-constructed backend client. The client
// must be bound to the same (database, collection) pair as the store
// configuration. Takes precedence over WithRedis.
func WithBackend(client backend.Client) Option {
	return func(s *settings) { s.client = client }
}

// WithLogger sets the store logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}
