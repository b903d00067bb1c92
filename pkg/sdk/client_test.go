package ragtools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestNew_DefaultsSearchDisabled(t *testing.T) {
	client, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.WebSearch().Enabled() {
		t.Error("search should be disabled without a key")
	}
	if got := client.WebSearch().Search(context.Background(), "q"); got != "Web search is disabled. Tavily API key not configured." {
		t.Errorf("Search() = %q", got)
	}
	if h := client.Health(context.Background()); h.Checks["search"] != "disabled" || h.Status != "ok" {
		t.Errorf("Health() = %+v", h)
	}
}

func TestClient_ChunkerEndToEnd(t *testing.T) {
	path := writeCSV(t, "meds.csv", "Drug Name,Symptom,Note\nA,fever,-\nB,cough,ok\nA,,-\n")

	client, err := New(WithNAValues("-"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	chunks, err := client.Chunker().Process(context.Background(), path)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(chunks) != 5 {
		t.Fatalf("expected 5 chunks, got %d", len(chunks))
	}
	if chunks[0].Kind != ChunkHeader || chunks[4].Kind != ChunkSummary {
		t.Errorf("unexpected kinds %q..%q", chunks[0].Kind, chunks[4].Kind)
	}
	if strings.Contains(chunks[1].Text, "Note") {
		t.Errorf("custom NA value should be omitted: %q", chunks[1].Text)
	}
	if !strings.Contains(chunks[4].Text, "- **Unique Drug Name**: A, B\n") {
		t.Errorf("summary = %q", chunks[4].Text)
	}
	if !strings.Contains(chunks[4].Text, "- **Condition columns**: Symptom\n") {
		t.Errorf("summary = %q", chunks[4].Text)
	}
}

func TestClient_ChunkerMissingFile(t *testing.T) {
	client, _ := New()
	_, err := client.Chunker().Process(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, ErrRead) {
		t.Fatalf("expected ErrRead, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestClient_WebSearchEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tvly-test" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		var body struct {
			Query      string `json:"query"`
			MaxResults int    `json:"max_results"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Query != "fever symptoms" || body.MaxResults != 2 {
			t.Errorf("unexpected body: %+v", body)
		}
		_, _ = w.Write([]byte(`{"results":[{"title":"Fever","url":"https://a.example","content":"c","score":0.75}]}`))
	}))
	defer server.Close()

	client, err := New(WithTavily("tvly-test"), WithTavilyBaseURL(server.URL), WithMaxResults(2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := client.WebSearch().Search(context.Background(), `"fever symptoms"`)
	if got != "title: Fever - url: https://a.example - content: c - score: 0.75" {
		t.Errorf("Search() = %q", got)
	}
}

func TestClient_WebSearchProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":{"error":"Unauthorized"}}`))
	}))
	defer server.Close()

	client, _ := New(WithTavily("tvly-test"), WithTavilyBaseURL(server.URL))
	got := client.WebSearch().Search(context.Background(), "q")
	if !strings.HasPrefix(got, "Error retrieving web search results: search API error 401: Unauthorized") {
		t.Errorf("Search() = %q", got)
	}
}
