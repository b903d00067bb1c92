package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragtools/internal/domain"
	"github.com/kailas-cloud/ragtools/internal/domain/chunk"
	logpkg "github.com/kailas-cloud/ragtools/internal/logger"
	"github.com/kailas-cloud/ragtools/internal/metrics"
	chunkinguc "github.com/kailas-cloud/ragtools/internal/usecase/chunking"
	healthuc "github.com/kailas-cloud/ragtools/internal/usecase/health"
	websearchuc "github.com/kailas-cloud/ragtools/internal/usecase/websearch"
)

// DefaultUploadLimit caps multipart uploads to POST /v1/chunks.
const DefaultUploadLimit int64 = 32 << 20

// ErrorCode is a machine-readable error identifier returned in error bodies.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest      ErrorCode = "bad_request"
	ErrorCodeUnauthorized    ErrorCode = "unauthorized"
	ErrorCodeReadError       ErrorCode = "read_error"
	ErrorCodePayloadTooLarge ErrorCode = "payload_too_large"
	ErrorCodeProviderError   ErrorCode = "search_provider_error"
	ErrorCodeSearchDisabled  ErrorCode = "search_disabled"
	ErrorCodeInternalError   ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ChunkResponse is one chunk in a POST /v1/chunks response.
type ChunkResponse struct {
	Kind     string `json:"kind"`
	Position int    `json:"position"`
	Source   string `json:"source"`
	Text     string `json:"text"`
}

// ChunkListResponse is the POST /v1/chunks response.
type ChunkListResponse struct {
	Source string          `json:"source"`
	Count  int             `json:"count"`
	Chunks []ChunkResponse `json:"chunks"`
}

// SearchRequest is the POST /v1/search body.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResponse is the POST /v1/search response. Result is always set, even on provider failure.
type SearchResponse struct {
	Result  string `json:"result"`
	Enabled bool   `json:"enabled"`
}

// SearchResultResponse is one result in a POST /v1/search/results response.
type SearchResultResponse struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SearchResultsResponse is the POST /v1/search/results response.
type SearchResultsResponse struct {
	Count   int                    `json:"count"`
	Results []SearchResultResponse `json:"results"`
}

// HealthResponse is the GET /health response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the chunking and web search use cases over HTTP.
type Server struct {
	chunks        *chunkinguc.Service
	search        *websearchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	uploadLimit   int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	chunks *chunkinguc.Service,
	search *websearchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		chunks:      chunks,
		search:      search,
		health:      health,
		logger:      logger,
		uploadLimit: DefaultUploadLimit,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrRead, http.StatusUnprocessableEntity, ErrorCodeReadError),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrSearchProviderError, http.StatusBadGateway, ErrorCodeProviderError),
		sentinelHandler(domain.ErrSearchDisabled, http.StatusServiceUnavailable, ErrorCodeSearchDisabled),
	}
	return s
}

// WithUploadLimit overrides the maximum upload size in bytes.
func (s *Server) WithUploadLimit(limit int64) *Server {
	if limit > 0 {
		s.uploadLimit = limit
	}
	return s
}

// Router builds the chi router with the full middleware stack.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/chunks", s.CreateChunks)
		r.Post("/search", s.Search)
		r.Post("/search/results", s.SearchResults)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
	return r
}

// CreateChunks handles POST /v1/chunks. The table is uploaded as the multipart field "file";
// the format comes from the file extension, or from the content when the extension is unknown.
func (s *Server) CreateChunks(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploadLimit)
	if err := r.ParseMultipartForm(s.uploadLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", s.uploadLimit))
			return
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid multipart body: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "multipart field \"file\" is required")
		return
	}
	defer func() { _ = file.Close() }()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "uploaded file must have a name")
		return
	}

	dir, err := os.MkdirTemp("", "ragtools-upload-*")
	if err != nil {
		s.handleDomainError(w, r, fmt.Errorf("create upload dir: %w", err))
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, name)
	if err := saveUpload(path, file); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	chunks, err := s.chunks.ProcessFile(r.Context(), path)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := ChunkListResponse{
		Source: strings.TrimSuffix(name, filepath.Ext(name)),
		Count:  len(chunks),
		Chunks: make([]ChunkResponse, len(chunks)),
	}
	for i, c := range chunks {
		resp.Chunks[i] = chunkToResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.handleDomainError(w, r, fmt.Errorf("%w: query is required", domain.ErrInvalidInput))
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Result:  s.search.Search(r.Context(), req.Query),
		Enabled: s.search.Enabled(),
	})
}

// SearchResults handles POST /v1/search/results. Unlike Search it reports the
// disabled state and provider failures as HTTP errors.
func (s *Server) SearchResults(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := s.search.Results(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := SearchResultsResponse{
		Count:   len(results),
		Results: make([]SearchResultResponse, len(results)),
	}
	for i := range results {
		resp.Results[i] = SearchResultResponse{
			Title:   results[i].Title(),
			URL:     results[i].URL(),
			Content: results[i].Content(),
			Score:   results[i].Score(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close upload file: %w", err)
	}
	return nil
}

func chunkToResponse(c chunk.Chunk) ChunkResponse {
	return ChunkResponse{
		Kind:     string(c.Kind()),
		Position: c.Position(),
		Source:   c.Source(),
		Text:     c.Text(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing
// internals such as server-side file paths.
func safeDomainMessage(err error) string {
	// Input errors describe the caller's own request.
	if errors.Is(err, domain.ErrInvalidInput) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrUnsupportedFormat,
		domain.ErrEmptySource,
		domain.ErrRaggedTable,
		domain.ErrRead,
		domain.ErrSearchProviderError,
		domain.ErrSearchDisabled,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContext(r.Context())
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
