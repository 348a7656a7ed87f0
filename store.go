// Package vectorstore persists documents as (id, content, metadata,
// embedding) rows in a vector database collection and retrieves the top-K
// semantically nearest documents to a query. The backend engine is
// pluggable behind backend.Client; embeddings come from a pluggable
// Embedder. A Store is safe for concurrent use: data operations issue
// independent remote calls with no in-process locking, and the backend is
// the arbitration point for concurrent reads and writes.
package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arvencloud/vectorstore/backend"
	"github.com/arvencloud/vectorstore/backend/redis"
	"github.com/arvencloud/vectorstore/internal/lifecycle"
)

// Store is the vector store facade.
type Store struct {
	client   backend.Client
	embedder Embedder
	cfg      Config
	manager  *lifecycle.Manager
	logger   *zap.Logger
}

// New creates a Store. A backend must be supplied via WithRedis or
// WithBackend; the embedder must not be nil.
func New(embedder Embedder, opts ...Option) (*Store, error) {
	if embedder == nil {
		return nil, errors.New("vectorstore: embedder is required")
	}

	s := settings{cfg: defaultConfig()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("vectorstore: invalid config: %w", err)
	}

	client := s.client
	if client == nil {
		if s.redis == nil {
			return nil, errors.New("vectorstore: backend is required (use WithRedis or WithBackend)")
		}
		s.redis.Database = s.cfg.DatabaseName
		s.redis.Collection = s.cfg.CollectionName
		var err error
		client, err = redis.New(*s.redis)
		if err != nil {
			return nil, fmt.Errorf("vectorstore: %w", err)
		}
	}

	manager := lifecycle.New(client, s.cfg.collectionSchema(), s.cfg.indexSpec(), s.logger)

	return &Store{
		client:   client,
		embedder: embedder,
		cfg:      s.cfg,
		manager:  manager,
		logger:   s.logger,
	}, nil
}

// Config returns a copy of the immutable store configuration.
func (s *Store) Config() Config { return s.cfg }

// Start provisions the collection, its index, and its loaded state. The
// running flag is set on every exit path, even when provisioning failed;
// see lifecycle.Manager.Start.
func (s *Store) Start(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return storeError("start", err)
	}
	return nil
}

// Stop releases the collection from serving memory best-effort and clears
// the running flag. Failures are logged, never returned, so shutdown
// always completes.
func (s *Store) Stop(ctx context.Context) {
	s.manager.Stop(ctx)
}

// IsRunning reports the lifecycle running flag. Data operations are not
// gated on it; callers wanting stricter sequencing add their own
// synchronization.
func (s *Store) IsRunning() bool {
	return s.manager.Running()
}

// Close releases backend client resources. It does not release the
// collection; call Stop first.
func (s *Store) Close() {
	s.client.Close()
}

// Add embeds and inserts the documents as one batch, then requests a flush
// so subsequently issued searches observe the rows (best-effort; actual
// visibility latency is governed by the backend's consistency model).
// The call is all-or-nothing: an embedding failure on any document aborts
// the whole batch before anything is sent.
func (s *Store) Add(ctx context.Context, docs []Document) error {
	if docs == nil {
		return &ValidationError{Op: "add", Reason: "documents must not be nil"}
	}

	embeddings := make([][]float64, len(docs))
	for i, doc := range docs {
		vec, err := s.embedder.Embed(ctx, doc.Content)
		if err != nil {
			return &EmbeddingError{Op: "embed", Err: err}
		}
		if len(vec) != s.cfg.EmbeddingDim {
			return &EmbeddingError{
				Op:  "embed",
				Err: fmt.Errorf("provider returned %d dimensions, store expects %d", len(vec), s.cfg.EmbeddingDim),
			}
		}
		embeddings[i] = vec
	}

	batch := encodeColumns(docs, embeddings)
	if _, err := s.client.Insert(ctx, batch); err != nil {
		return &StoreError{Op: "insert", Err: err}
	}

	if err := s.client.Flush(ctx); err != nil {
		s.logger.Warn("flush after insert failed", zap.Error(err))
	}
	return nil
}

// Delete removes the rows whose identifier is in ids. The returned bool is
// the backend's own success status for the call. A delete count lower than
// len(ids) is reported as a warning, not an error: absent ids are a
// legitimate outcome.
func (s *Store) Delete(ctx context.Context, ids []string) (bool, error) {
	if ids == nil {
		return false, &ValidationError{Op: "delete", Reason: "id list must not be nil"}
	}

	res, err := s.client.Delete(ctx, ids)
	if err != nil {
		return false, &StoreError{Op: "delete", Err: err}
	}

	if res.DeleteCount != int64(len(ids)) {
		s.logger.Warn("deleted fewer entries than requested",
			zap.Int64("deleted", res.DeleteCount),
			zap.Int("requested", len(ids)),
		)
	}
	return res.Succeeded, nil
}

// Drop releases the collection, drops its index, and removes the
// collection with all rows. Explicit, destructive teardown; unlike Stop,
// failures are surfaced.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.client.ReleaseCollection(ctx); err != nil {
		return storeError("release-collection", err)
	}
	if err := s.client.DropIndex(ctx); err != nil {
		return storeError("drop-index", err)
	}
	if err := s.client.DropCollection(ctx); err != nil {
		return storeError("drop-collection", err)
	}
	return nil
}

// storeError wraps err as a StoreError, lifting the lifecycle step name
// into the operation when present.
func storeError(op string, err error) error {
	var step *lifecycle.StepError
	if errors.As(err, &step) {
		return &StoreError{Op: step.Step, Err: step.Err}
	}
	return &StoreError{Op: op, Err: err}
}
