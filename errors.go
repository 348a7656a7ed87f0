package vectorstore

import "fmt"

// ValidationError reports a missing or unusable required argument. It is
// returned before any remote call is issued.
type ValidationError struct {
	Op     string // store operation: add, delete, search
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("vectorstore: %s: %s", e.Op, e.Reason)
}

// EmbeddingError wraps a failure of the embedding provider. The underlying
// provider error is carried verbatim.
type EmbeddingError struct {
	Op  string
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("vectorstore: %s: %v", e.Op, e.Err)
}

// Unwrap returns the provider error.
func (e *EmbeddingError) Unwrap() error { return e.Err }

// StoreError wraps a backend remote-call failure with the name of the
// failed operation (create-collection, create-index, load-collection,
// insert, delete, search, ...).
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vectorstore: %s: %v", e.Op, e.Err)
}

// Unwrap returns the backend error.
func (e *StoreError) Unwrap() error { return e.Err }
