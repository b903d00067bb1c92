package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/ragtools/internal/domain"
	"github.com/kailas-cloud/ragtools/internal/domain/search/result"
	"github.com/kailas-cloud/ragtools/internal/repository/tabular"
	chunkinguc "github.com/kailas-cloud/ragtools/internal/usecase/chunking"
	healthuc "github.com/kailas-cloud/ragtools/internal/usecase/health"
	websearchuc "github.com/kailas-cloud/ragtools/internal/usecase/websearch"
)

// --- Mocks ---

type mockSearcher struct {
	results []result.Result
	err     error
	calls   int
}

func (m *mockSearcher) Search(_ context.Context, _ string, _ int) ([]result.Result, error) {
	m.calls++
	return m.results, m.err
}

type mockHealth struct{ err error }

func (m *mockHealth) HealthCheck(_ context.Context) error { return m.err }

// --- Helpers ---

func newTestServer(apiKey string, searcher *mockSearcher) http.Handler {
	search := websearchuc.New(websearchuc.Config{APIKey: apiKey}, searcher, nil)
	srv := NewServer(
		chunkinguc.New(tabular.New(), nil),
		search,
		healthuc.New(nil, nil),
		nil,
	)
	return srv.Router(nil)
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return errResp
}

// --- Tests ---

func TestCreateChunks_CSV(t *testing.T) {
	h := newTestServer("", &mockSearcher{})
	body, ct := multipartBody(t, "file", "meds.csv", "Drug Name,Dose\nA,10mg\nB,\nA,5mg\n")

	req := httptest.NewRequest(http.MethodPost, "/v1/chunks", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp ChunkListResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Source != "meds" || resp.Count != 5 || len(resp.Chunks) != 5 {
		t.Fatalf("unexpected response: source=%q count=%d chunks=%d", resp.Source, resp.Count, len(resp.Chunks))
	}
	if resp.Chunks[0].Kind != "header" || resp.Chunks[4].Kind != "summary" {
		t.Errorf("unexpected chunk kinds: %q .. %q", resp.Chunks[0].Kind, resp.Chunks[4].Kind)
	}
	if !strings.Contains(resp.Chunks[0].Text, "- **Source**: meds.csv\n") {
		t.Errorf("header should name the uploaded file: %q", resp.Chunks[0].Text)
	}
	if strings.Contains(resp.Chunks[2].Text, "Dose") {
		t.Errorf("empty cell should be omitted from row 2: %q", resp.Chunks[2].Text)
	}
	if !strings.Contains(resp.Chunks[4].Text, "- **Unique Drug Name**: A, B\n") {
		t.Errorf("summary should list unique drugs: %q", resp.Chunks[4].Text)
	}
}

func TestCreateChunks_UnsupportedFormat_422(t *testing.T) {
	h := newTestServer("", &mockSearcher{})
	body, ct := multipartBody(t, "file", "notes.docx", "whatever")

	req := httptest.NewRequest(http.MethodPost, "/v1/chunks", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	errResp := decodeError(t, rr)
	if errResp.Code != ErrorCodeReadError {
		t.Errorf("error code: got %s, want %s", errResp.Code, ErrorCodeReadError)
	}
	if errResp.Message != domain.ErrUnsupportedFormat.Error() {
		t.Errorf("message = %q", errResp.Message)
	}
}

func TestCreateChunks_MalformedCSV_422(t *testing.T) {
	h := newTestServer("", &mockSearcher{})
	body, ct := multipartBody(t, "file", "bad.csv", "a,b\n1,2,3\n")

	req := httptest.NewRequest(http.MethodPost, "/v1/chunks", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "ragtools-upload") {
		t.Errorf("error body leaks server paths: %s", rr.Body.String())
	}
}

func TestCreateChunks_DotDotName_400(t *testing.T) {
	h := newTestServer("", &mockSearcher{})
	body, ct := multipartBody(t, "file", "..", "a\n1\n")

	req := httptest.NewRequest(http.MethodPost, "/v1/chunks", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if errResp := decodeError(t, rr); errResp.Code != ErrorCodeBadRequest {
		t.Errorf("error code = %s", errResp.Code)
	}
}

func TestCreateChunks_LogsWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	srv := NewServer(
		chunkinguc.New(tabular.New(), nil),
		websearchuc.New(websearchuc.Config{}, nil, nil),
		healthuc.New(nil, nil),
		zap.New(core),
	)
	body, ct := multipartBody(t, "file", "notes.docx", "whatever")

	req := httptest.NewRequest(http.MethodPost, "/v1/chunks", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	srv.Router(nil).ServeHTTP(rr, req)

	entries := logs.FilterMessage("domain error").All()
	if len(entries) != 1 {
		t.Fatalf("expected one domain error entry, got %d", len(entries))
	}
	if id, ok := entries[0].ContextMap()["request_id"].(string); !ok || id == "" {
		t.Errorf("domain error entry lacks request_id: %v", entries[0].ContextMap())
	}
}

func TestCreateChunks_MissingFile_400(t *testing.T) {
	h := newTestServer("", &mockSearcher{})
	body, ct := multipartBody(t, "other", "meds.csv", "a\n1\n")

	req := httptest.NewRequest(http.MethodPost, "/v1/chunks", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateChunks_NotMultipart_400(t *testing.T) {
	h := newTestServer("", &mockSearcher{})

	req := httptest.NewRequest(http.MethodPost, "/v1/chunks", strings.NewReader(`{"path":"/etc/passwd"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateChunks_TooLarge_413(t *testing.T) {
	srv := NewServer(
		chunkinguc.New(tabular.New(), nil),
		websearchuc.New(websearchuc.Config{}, nil, nil),
		healthuc.New(nil, nil),
		nil,
	).WithUploadLimit(64)
	body, ct := multipartBody(t, "file", "big.csv", "a\n"+strings.Repeat("1\n", 200))

	req := httptest.NewRequest(http.MethodPost, "/v1/chunks", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	srv.Router(nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
}

func TestSearch_Results(t *testing.T) {
	searcher := &mockSearcher{results: []result.Result{result.New("Flu", "https://a.example", "info", 0.9)}}
	h := newTestServer("tvly-key", searcher)

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"'flu'"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Enabled {
		t.Error("expected enabled=true")
	}
	if resp.Result != "title: Flu - url: https://a.example - content: info - score: 0.9" {
		t.Errorf("result = %q", resp.Result)
	}
}

func TestSearch_Disabled(t *testing.T) {
	searcher := &mockSearcher{}
	h := newTestServer("", searcher)

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"flu"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Enabled || resp.Result != websearchuc.DisabledMessage {
		t.Errorf("unexpected response: %+v", resp)
	}
	if searcher.calls != 0 {
		t.Errorf("expected zero provider calls, got %d", searcher.calls)
	}
}

func TestSearch_ProviderErrorStill200(t *testing.T) {
	h := newTestServer("tvly-key", &mockSearcher{err: errors.New("boom")})

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"flu"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Error retrieving web search results: boom") {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestSearch_BadRequests(t *testing.T) {
	h := newTestServer("tvly-key", &mockSearcher{})

	for _, body := range []string{`not json`, `{"query":"   "}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(body))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %q: got %d, want 400", body, rr.Code)
		}
	}
}

func TestSearchResults_OK(t *testing.T) {
	searcher := &mockSearcher{results: []result.Result{
		result.New("Flu", "https://a.example", "info", 0.9),
		result.New("Cold", "https://b.example", "more", 0.4),
	}}
	h := newTestServer("tvly-key", searcher)

	req := httptest.NewRequest(http.MethodPost, "/v1/search/results", strings.NewReader(`{"query":"flu"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp SearchResultsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := SearchResultResponse{Title: "Cold", URL: "https://b.example", Content: "more", Score: 0.4}
	if resp.Count != 2 || resp.Results[1] != want {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestSearchResults_Errors(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		body     string
		searcher *mockSearcher
		status   int
		code     ErrorCode
	}{
		{"disabled", "", `{"query":"flu"}`, &mockSearcher{}, http.StatusServiceUnavailable, ErrorCodeSearchDisabled},
		{"blank query", "tvly-key", `{"query":"  "}`, &mockSearcher{}, http.StatusBadRequest, ErrorCodeBadRequest},
		{"provider failure", "tvly-key", `{"query":"flu"}`, &mockSearcher{err: errors.New("boom")},
			http.StatusBadGateway, ErrorCodeProviderError},
		{"bad json", "tvly-key", `nope`, &mockSearcher{}, http.StatusBadRequest, ErrorCodeBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestServer(tc.key, tc.searcher)
			req := httptest.NewRequest(http.MethodPost, "/v1/search/results", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
			if errResp := decodeError(t, rr); errResp.Code != tc.code {
				t.Errorf("error code = %s, want %s", errResp.Code, tc.code)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		checker    healthuc.SearchChecker
		wantStatus int
		wantSearch string
	}{
		{"disabled", nil, http.StatusOK, "disabled"},
		{"ok", &mockHealth{}, http.StatusOK, "ok"},
		{"error", &mockHealth{err: errors.New("down")}, http.StatusServiceUnavailable, "error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := NewServer(
				chunkinguc.New(tabular.New(), nil),
				websearchuc.New(websearchuc.Config{}, nil, nil),
				healthuc.New(tc.checker, nil),
				nil,
			)
			req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
			rr := httptest.NewRecorder()
			srv.Router([]string{"secret"}).ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Checks["search"] != tc.wantSearch {
				t.Errorf("search check = %q, want %q", resp.Checks["search"], tc.wantSearch)
			}
		})
	}
}

func TestRouter_AuthAndRequestID(t *testing.T) {
	srv := NewServer(
		chunkinguc.New(tabular.New(), nil),
		websearchuc.New(websearchuc.Config{}, nil, nil),
		healthuc.New(nil, nil),
		nil,
	)
	h := srv.Router([]string{"secret"})

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"flu"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"flu"}`))
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestRouter_NotFoundJSON(t *testing.T) {
	h := newTestServer("", &mockSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/v1/unknown", http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if errResp := decodeError(t, rr); errResp.Code != ErrorCodeInternalError {
		t.Errorf("error code = %s", errResp.Code)
	}
}

func TestSafeDomainMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.NewReadError("/tmp/x/a.csv", domain.ErrEmptySource), domain.ErrEmptySource.Error()},
		{domain.NewReadError("/tmp/x/a.csv", errors.New("open /tmp/x/a.csv: denied")), domain.ErrRead.Error()},
		{fmt.Errorf("%w: query is required", domain.ErrInvalidInput), "invalid input: query is required"},
		{fmt.Errorf("%w: 401 bad key", domain.ErrSearchProviderError), domain.ErrSearchProviderError.Error()},
		{errors.New("secret internals"), "internal error"},
	}
	for _, tc := range tests {
		if got := safeDomainMessage(tc.err); got != tc.want {
			t.Errorf("safeDomainMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
