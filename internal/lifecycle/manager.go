// Package lifecycle provisions a collection, its vector index, and its
// loaded state, and tears the loaded state down on shutdown.
package lifecycle

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/arvencloud/vectorstore/backend"
)

// Lifecycle step names, used as operation names on surfaced errors.
const (
	StepCreateCollection = "create-collection"
	StepCreateIndex      = "create-index"
	StepLoadCollection   = "load-collection"
)

// StepError reports which lifecycle step failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }

// Unwrap returns the backend error.
func (e *StepError) Unwrap() error { return e.Err }

// provisioner is the consumer interface onto the backend (ISP).
type provisioner interface {
	HasCollection(ctx context.Context) (bool, error)
	CreateCollection(ctx context.Context, schema *backend.Schema) error
	DescribeIndex(ctx context.Context) (*backend.IndexDescription, error)
	CreateIndex(ctx context.Context, spec *backend.IndexSpec) error
	LoadCollection(ctx context.Context) error
	ReleaseCollection(ctx context.Context) error
}

// Manager ensures the collection is servable before the first search and
// releases it on shutdown. The running flag is per-Manager state: two
// stores bound to different collections never share it.
type Manager struct {
	client  provisioner
	schema  *backend.Schema
	index   *backend.IndexSpec
	logger  *zap.Logger
	running atomic.Bool
}

// New creates a lifecycle manager. A nil logger disables logging.
func New(client provisioner, schema *backend.Schema, index *backend.IndexSpec, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{client: client, schema: schema, index: index, logger: logger}
}

// Start runs EnsureReady and marks the manager running on every exit path,
// success or failure alike. A failed start therefore still reads as
// "running" while partially provisioned; callers decide whether the error
// is fatal.
func (m *Manager) Start(ctx context.Context) error {
	defer m.running.Store(true)
	return m.EnsureReady(ctx)
}

// Stop releases the collection best-effort and clears the running flag on
// every exit path. Release failures are logged, never surfaced, so
// shutdown always completes.
func (m *Manager) Stop(ctx context.Context) {
	defer m.running.Store(false)

	if err := m.release(ctx); err != nil {
		m.logger.Warn("release collection failed during stop", zap.Error(err))
	}
}

// Running reports the running flag.
func (m *Manager) Running() bool {
	return m.running.Load()
}

// EnsureReady idempotently walks the collection to the Loaded state:
// create the collection if absent, create the vector index if absent,
// then load. Safe to call repeatedly and from a cold start; any remote
// failure aborts and is surfaced wrapped with the failing step's name.
func (m *Manager) EnsureReady(ctx context.Context) error {
	if err := m.ensureCollection(ctx); err != nil {
		return &StepError{Step: StepCreateCollection, Err: err}
	}
	if err := m.ensureIndex(ctx); err != nil {
		return &StepError{Step: StepCreateIndex, Err: err}
	}
	// Load is requested even when the collection pre-existed: serving
	// memory state is not implied by existence.
	if err := m.client.LoadCollection(ctx); err != nil {
		return &StepError{Step: StepLoadCollection, Err: err}
	}
	return nil
}

func (m *Manager) ensureCollection(ctx context.Context) error {
	exists, err := m.client.HasCollection(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	m.logger.Info("creating collection")
	return m.client.CreateCollection(ctx, m.schema)
}

func (m *Manager) ensureIndex(ctx context.Context) error {
	desc, err := m.client.DescribeIndex(ctx)
	if err != nil {
		return err
	}
	if desc != nil {
		return nil
	}

	m.logger.Info("creating vector index",
		zap.String("field", m.index.Field),
		zap.String("kind", string(m.index.Kind)),
		zap.String("metric", string(m.index.Metric)),
	)
	return m.client.CreateIndex(ctx, m.index)
}

// release checks existence first so teardown of a never-created collection
// is a no-op.
func (m *Manager) release(ctx context.Context) error {
	exists, err := m.client.HasCollection(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return m.client.ReleaseCollection(ctx)
}
