package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/arvencloud/vectorstore/backend"
)

// fakeProvisioner tracks calls and simulates existing state.
type fakeProvisioner struct {
	hasCollection bool
	hasIndex      bool

	hasCollectionErr error
	createErr        error
	describeErr      error
	createIndexErr   error
	loadErr          error
	releaseErr       error

	calls []string
}

func (f *fakeProvisioner) record(op string) { f.calls = append(f.calls, op) }

func (f *fakeProvisioner) HasCollection(context.Context) (bool, error) {
	f.record("has-collection")
	return f.hasCollection, f.hasCollectionErr
}

func (f *fakeProvisioner) CreateCollection(context.Context, *backend.Schema) error {
	f.record("create-collection")
	if f.createErr != nil {
		return f.createErr
	}
	f.hasCollection = true
	return nil
}

func (f *fakeProvisioner) DescribeIndex(context.Context) (*backend.IndexDescription, error) {
	f.record("describe-index")
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	if !f.hasIndex {
		return nil, nil
	}
	return &backend.IndexDescription{Field: backend.FieldEmbedding}, nil
}

func (f *fakeProvisioner) CreateIndex(context.Context, *backend.IndexSpec) error {
	f.record("create-index")
	if f.createIndexErr != nil {
		return f.createIndexErr
	}
	f.hasIndex = true
	return nil
}

func (f *fakeProvisioner) LoadCollection(context.Context) error {
	f.record("load-collection")
	return f.loadErr
}

func (f *fakeProvisioner) ReleaseCollection(context.Context) error {
	f.record("release-collection")
	return f.releaseErr
}

func (f *fakeProvisioner) countOf(op string) int {
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func makeManager(t *testing.T, p provisioner) *Manager {
	t.Helper()
	schema := &backend.Schema{
		Fields: []backend.FieldSpec{
			{Name: backend.FieldID, Kind: backend.FieldVarChar, MaxLength: 36, PrimaryKey: true},
			{Name: backend.FieldEmbedding, Kind: backend.FieldFloatVector, Dim: 4},
		},
	}
	spec := &backend.IndexSpec{Field: backend.FieldEmbedding, Kind: backend.IndexHNSW, Metric: backend.MetricL2, Dim: 4}
	return New(p, schema, spec, nil)
}

func TestEnsureReady_ColdStart(t *testing.T) {
	fake := &fakeProvisioner{}
	m := makeManager(t, fake)

	if err := m.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}

	want := []string{"has-collection", "create-collection", "describe-index", "create-index", "load-collection"}
	if len(fake.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", fake.calls, want)
	}
	for i, op := range want {
		if fake.calls[i] != op {
			t.Errorf("calls[%d] = %q, want %q", i, fake.calls[i], op)
		}
	}
}

func TestEnsureReady_Idempotent(t *testing.T) {
	fake := &fakeProvisioner{}
	m := makeManager(t, fake)

	for i := 0; i < 3; i++ {
		if err := m.EnsureReady(context.Background()); err != nil {
			t.Fatalf("EnsureReady #%d: %v", i+1, err)
		}
	}

	if n := fake.countOf("create-collection"); n != 1 {
		t.Errorf("create-collection calls = %d, want 1", n)
	}
	if n := fake.countOf("create-index"); n != 1 {
		t.Errorf("create-index calls = %d, want 1", n)
	}
	// Load runs on every pass.
	if n := fake.countOf("load-collection"); n != 3 {
		t.Errorf("load-collection calls = %d, want 3", n)
	}
}

func TestEnsureReady_SkipsExisting(t *testing.T) {
	fake := &fakeProvisioner{hasCollection: true, hasIndex: true}
	m := makeManager(t, fake)

	if err := m.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}

	if n := fake.countOf("create-collection"); n != 0 {
		t.Errorf("create-collection calls = %d, want 0", n)
	}
	if n := fake.countOf("create-index"); n != 0 {
		t.Errorf("create-index calls = %d, want 0", n)
	}
	if n := fake.countOf("load-collection"); n != 1 {
		t.Errorf("load-collection calls = %d, want 1", n)
	}
}

func TestEnsureReady_StepNames(t *testing.T) {
	boom := errors.New("backend refused")

	tests := []struct {
		name     string
		mutate   func(*fakeProvisioner)
		wantStep string
	}{
		{"existence check", func(f *fakeProvisioner) { f.hasCollectionErr = boom }, StepCreateCollection},
		{"collection create", func(f *fakeProvisioner) { f.createErr = boom }, StepCreateCollection},
		{"index probe", func(f *fakeProvisioner) { f.describeErr = boom }, StepCreateIndex},
		{"index create", func(f *fakeProvisioner) { f.createIndexErr = boom }, StepCreateIndex},
		{"load", func(f *fakeProvisioner) { f.loadErr = boom }, StepLoadCollection},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeProvisioner{}
			tc.mutate(fake)
			m := makeManager(t, fake)

			err := m.EnsureReady(context.Background())
			if err == nil {
				t.Fatal("expected failure")
			}

			var step *StepError
			if !errors.As(err, &step) {
				t.Fatalf("error type = %T, want *StepError", err)
			}
			if step.Step != tc.wantStep {
				t.Errorf("step = %q, want %q", step.Step, tc.wantStep)
			}
			if !errors.Is(err, boom) {
				t.Error("cause must be preserved")
			}
		})
	}
}

func TestStart_SetsRunningOnSuccessAndFailure(t *testing.T) {
	ok := &fakeProvisioner{}
	m := makeManager(t, ok)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !m.Running() {
		t.Error("running must be set after successful Start")
	}

	bad := &fakeProvisioner{loadErr: errors.New("load failed")}
	m2 := makeManager(t, bad)
	if err := m2.Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail")
	}
	if !m2.Running() {
		t.Error("running must be set even after failed Start")
	}
}

func TestStop_ClearsRunningDespiteReleaseFailure(t *testing.T) {
	fake := &fakeProvisioner{hasCollection: true, releaseErr: errors.New("release failed")}
	m := makeManager(t, fake)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	m.Stop(context.Background())

	if m.Running() {
		t.Error("running must be cleared even when release fails")
	}
	if n := fake.countOf("release-collection"); n != 1 {
		t.Errorf("release calls = %d, want 1", n)
	}
}

func TestStop_SkipsReleaseForMissingCollection(t *testing.T) {
	fake := &fakeProvisioner{}
	m := makeManager(t, fake)

	m.Stop(context.Background())

	if n := fake.countOf("release-collection"); n != 0 {
		t.Errorf("release calls = %d, want 0", n)
	}
	if m.Running() {
		t.Error("running must be false after Stop")
	}
}
