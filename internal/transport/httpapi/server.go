// Package httpapi exposes the vector store over a small JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	vectorstore "github.com/arvencloud/vectorstore"
)

// Error codes returned in JSON error responses.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeEmbeddingFailed  = "embedding_provider_error"
	CodeStoreFailed      = "store_error"
	CodeNotReady         = "not_ready"
)

// documentStore is the consumer interface for the vector store (ISP).
type documentStore interface {
	Add(ctx context.Context, docs []vectorstore.Document) error
	Delete(ctx context.Context, ids []string) (bool, error)
	SimilaritySearch(ctx context.Context, query string, opts ...vectorstore.SearchOption) ([]vectorstore.Document, error)
	IsRunning() bool
}

// Server handles the document and search endpoints.
type Server struct {
	store  documentStore
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(store documentStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: store, logger: logger}
}

// Routes registers the API endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/documents", s.AddDocuments)
	r.Delete("/api/v1/documents", s.DeleteDocuments)
	r.Post("/api/v1/search", s.Search)
	r.Get("/health", s.Health)
}

// DocumentPayload is the wire form of a document.
type DocumentPayload struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AddDocumentsRequest is the body of POST /api/v1/documents.
type AddDocumentsRequest struct {
	Documents []DocumentPayload `json:"documents"`
}

// DeleteDocumentsRequest is the body of DELETE /api/v1/documents.
type DeleteDocumentsRequest struct {
	IDs []string `json:"ids"`
}

// DeleteDocumentsResponse reports the backend's delete status.
type DeleteDocumentsResponse struct {
	Succeeded bool `json:"succeeded"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query          string   `json:"query"`
	TopK           *int     `json:"top_k,omitempty"`
	ScoreThreshold *float64 `json:"score_threshold,omitempty"`
}

// SearchResponse is the body returned by POST /api/v1/search.
type SearchResponse struct {
	Documents []DocumentPayload `json:"documents"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AddDocuments handles POST /api/v1/documents.
func (s *Server) AddDocuments(w http.ResponseWriter, r *http.Request) {
	var req AddDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "documents is required")
		return
	}

	docs := make([]vectorstore.Document, len(req.Documents))
	for i, p := range req.Documents {
		if p.ID == "" {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "document id is required")
			return
		}
		docs[i] = vectorstore.Document{ID: p.ID, Content: p.Content, Metadata: p.Metadata}
	}

	if err := s.store.Add(r.Context(), docs); err != nil {
		s.handleStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// DeleteDocuments handles DELETE /api/v1/documents.
func (s *Server) DeleteDocuments(w http.ResponseWriter, r *http.Request) {
	var req DeleteDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	succeeded, err := s.store.Delete(r.Context(), req.IDs)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DeleteDocumentsResponse{Succeeded: succeeded})
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var opts []vectorstore.SearchOption
	if req.TopK != nil {
		opts = append(opts, vectorstore.WithTopK(*req.TopK))
	}
	if req.ScoreThreshold != nil {
		opts = append(opts, vectorstore.WithScoreThreshold(*req.ScoreThreshold))
	}

	docs, err := s.store.SimilaritySearch(r.Context(), req.Query, opts...)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}

	items := make([]DocumentPayload, len(docs))
	for i, d := range docs {
		items[i] = DocumentPayload{ID: d.ID, Content: d.Content, Metadata: d.Metadata}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Documents: items})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if !s.store.IsRunning() {
		writeError(w, http.StatusServiceUnavailable, CodeNotReady, "store is not running")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStoreError maps store error types to HTTP statuses.
func (s *Server) handleStoreError(w http.ResponseWriter, err error) {
	var valErr *vectorstore.ValidationError
	if errors.As(err, &valErr) {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, valErr.Error())
		return
	}

	var embErr *vectorstore.EmbeddingError
	if errors.As(err, &embErr) {
		s.logger.Error("embedding provider error", zap.Error(err))
		writeError(w, http.StatusBadGateway, CodeEmbeddingFailed, "embedding provider error")
		return
	}

	s.logger.Error("store error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeStoreFailed, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
