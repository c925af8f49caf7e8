package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/msalah0e/ontoscope/internal/model"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second, UserAgent: "ontoscope/test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestNew_Validation(t *testing.T) {
	for _, base := range []string{"", "   ", "ftp://example.com", "://bad"} {
		if _, err := New(Options{BaseURL: base}); err == nil {
			t.Errorf("expected error for base URL %q", base)
		}
	}
}

func TestSearch_QueryParameters(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		writeJSON(w, []model.SearchResult{{ElementName: "gene", Description: "a unit"}})
	}))

	results, err := c.Search(context.Background(), model.Query{
		Text:       "  gene ",
		OntologyID: "onto_1",
		Type:       model.TypeConcept,
		Page:       2,
	}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ElementName != "gene" {
		t.Fatalf("unexpected results %+v", results)
	}

	if got.URL.Path != "/api/search" {
		t.Errorf("expected /api/search, got %s", got.URL.Path)
	}
	q := got.URL.Query()
	want := map[string]string{"q": "gene", "ontology_id": "onto_1", "element_type": "Concept", "page": "2", "per_page": "10"}
	for k, v := range want {
		if q.Get(k) != v {
			t.Errorf("param %s: expected %q, got %q", k, v, q.Get(k))
		}
	}
	if ua := got.Header.Get("User-Agent"); ua != "ontoscope/test" {
		t.Errorf("unexpected User-Agent %q", ua)
	}
}

func TestSearch_OmitsEmptyFilters(t *testing.T) {
	var rawQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		writeJSON(w, []model.SearchResult{})
	}))

	if _, err := c.Search(context.Background(), model.Query{Text: "x"}, 0); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if strings.Contains(rawQuery, "ontology_id") || strings.Contains(rawQuery, "element_type") {
		t.Errorf("empty filters should be omitted: %s", rawQuery)
	}
	if !strings.Contains(rawQuery, "page=1") {
		t.Errorf("page should default to 1: %s", rawQuery)
	}
}

func TestSearch_NonArrayIsProtocolError(t *testing.T) {
	for _, body := range []string{`{"results":[]}`, `null`, `"gene"`} {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, body)
		}))
		_, err := c.Search(context.Background(), model.Query{Text: "gene"}, 10)
		if !errors.Is(err, ErrProtocol) {
			t.Errorf("body %s: expected protocol error, got %v", body, err)
		}
	}
}

func TestSearch_BlankIsValidationError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("blank query must not reach the backend")
	}))
	_, err := c.Search(context.Background(), model.Query{Text: "   "}, 10)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if msg := UserMessage("search", err); msg != BlankQuery {
		t.Errorf("UserMessage = %q, want %q", msg, BlankQuery)
	}
}

func TestNew_DefaultLoggerDiscards(t *testing.T) {
	c, err := New(Options{BaseURL: "http://example.test/api"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.log == nil {
		t.Fatal("client without a logger")
	}
	c.log.Error("dropped")
}

func TestSearch_ServerErrorIsTransport(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	_, err := c.Search(context.Background(), model.Query{Text: "gene"}, 10)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != 500 {
		t.Errorf("expected status 500 in error, got %v", err)
	}
}

func TestSearch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Search(context.Background(), model.Query{Text: "gene"}, 10); !errors.Is(err, ErrTransport) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestElementDetail_Defaults(t *testing.T) {
	var path string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		io.WriteString(w, `{"Name":"cell cycle","Contexts":[{"element":"cell cycle","position":3}]}`)
	}))

	d, err := c.ElementDetail(context.Background(), "cell cycle")
	if err != nil {
		t.Fatalf("ElementDetail: %v", err)
	}
	if path != "/api/elements/details/cell%20cycle" {
		t.Errorf("unexpected path %s", path)
	}
	if d.Name != "cell cycle" || d.Type != "" || d.Description != "" {
		t.Errorf("unexpected detail %+v", d)
	}
	if d.Positions == nil {
		t.Error("Positions should default to an empty slice")
	}
	if len(d.Contexts) != 1 || d.Contexts[0].Before == nil || d.Contexts[0].After == nil {
		t.Errorf("context tokens should default to empty slices: %+v", d.Contexts)
	}
}

func TestElementDetail_NotFound(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())
	if _, err := c.ElementDetail(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestElementRelations_404IsEmpty(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())

	rels, err := c.ElementRelations(context.Background(), "X")
	if err != nil {
		t.Fatalf("404 should not be an error, got %v", err)
	}
	if rels == nil || len(rels) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", rels)
	}
}

func TestElementRelations_PathEscaping(t *testing.T) {
	var path string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		writeJSON(w, []model.Relation{{Source: "a/b", Type: "is_a", Target: "c"}})
	}))

	rels, err := c.ElementRelations(context.Background(), "a/b")
	if err != nil {
		t.Fatalf("ElementRelations: %v", err)
	}
	if path != "/api/elements/relations/a%2Fb" {
		t.Errorf("slash in name must be escaped, got %s", path)
	}
	if len(rels) != 1 || rels[0].Target != "c" {
		t.Errorf("unexpected relations %+v", rels)
	}
}

func TestElementRelations_ServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	if _, err := c.ElementRelations(context.Background(), "X"); !errors.Is(err, ErrTransport) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestOntologies_WithMetadata(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ontologies", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{"id": "o1", "name": "Genes"},
			{"id": "o2", "name": "Cells"},
			{"id": "o3", "name": "Known", "Source": map[string]any{"source_file": "known.txt"}},
		})
	})
	mux.HandleFunc("/api/ontologies/o1/metadata", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"source_file": "genes.txt", "sha256_hash": "abc"})
	})
	mux.HandleFunc("/api/ontologies/o2/metadata", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/ontologies/o3/metadata", func(w http.ResponseWriter, r *http.Request) {
		t.Error("ontologies with a Source must not be re-fetched")
	})
	c := newTestClient(t, mux)
	var logs syncBuffer
	c.log = slog.New(slog.NewTextHandler(&logs, nil))

	list, err := c.Ontologies(context.Background(), true, 2)
	if err != nil {
		t.Fatalf("Ontologies: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 ontologies, got %d", len(list))
	}
	if list[0].Source == nil || list[0].Source.SourceFile != "genes.txt" {
		t.Errorf("o1 should be enriched, got %+v", list[0].Source)
	}
	if list[1].Source != nil {
		t.Errorf("failed enrichment should leave Source nil, got %+v", list[1].Source)
	}
	if warned := strings.Count(logs.String(), "ontology metadata unavailable"); warned != 1 || !strings.Contains(logs.String(), "ontology=o2") {
		t.Errorf("expected one warning for o2, got %q", logs.String())
	}

	files, groups := GroupBySource(list)
	if len(files) != 2 || files[0] != "genes.txt" || files[1] != "known.txt" {
		t.Errorf("unexpected source files %v", files)
	}
	if len(groups["genes.txt"]) != 1 {
		t.Errorf("unexpected groups %+v", groups)
	}
}

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	onto := filepath.Join(dir, "genes.tsv")
	meta := filepath.Join(dir, "genes.meta.json")
	os.WriteFile(onto, []byte("gene\tConcept\t1\n"), 0o644)
	os.WriteFile(meta, []byte(`{"source_file":"genes.txt"}`), 0o644)

	var mu sync.Mutex
	var loaded []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ontologies/load", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		f, hdr, err := r.FormFile("ontology_file")
		if err != nil {
			t.Fatalf("missing ontology_file: %v", err)
		}
		f.Close()
		if _, _, err := r.FormFile("metadata_file"); err != nil {
			t.Errorf("missing metadata_file: %v", err)
		}
		if _, _, err := r.FormFile("context_file"); err == nil {
			t.Error("context_file should be absent")
		}
		mu.Lock()
		loaded = append(loaded, hdr.Filename)
		mu.Unlock()
		writeJSON(w, map[string]string{"message": "Ontology loaded"})
	})
	mux.HandleFunc("/api/ontologies", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		var list []model.Ontology
		for i, name := range loaded {
			list = append(list, model.Ontology{ID: string(rune('a' + i)), Name: name})
		}
		writeJSON(w, list)
	})
	c := newTestClient(t, mux)

	before, err := c.Ontologies(context.Background(), false, 0)
	if err != nil || len(before) != 0 {
		t.Fatalf("expected empty list before upload, got %v %v", before, err)
	}

	res, err := c.Upload(context.Background(), UploadRequest{OntologyFile: onto, MetadataFile: meta})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.Message != "Ontology loaded" {
		t.Errorf("unexpected message %q", res.Message)
	}

	after, err := c.Ontologies(context.Background(), false, 0)
	if err != nil {
		t.Fatalf("Ontologies: %v", err)
	}
	if len(after) != 1 || after[0].Name != "genes.tsv" {
		t.Errorf("expected the uploaded ontology to be listed, got %+v", after)
	}
}

func TestUpload_Validation(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid upload must not reach the backend")
	}))

	tests := []UploadRequest{
		{MetadataFile: "meta.json"},
		{OntologyFile: "onto.tsv"},
		{OntologyFile: filepath.Join(t.TempDir(), "missing.tsv"), MetadataFile: "meta.json"},
	}
	for _, req := range tests {
		if _, err := c.Upload(context.Background(), req); !errors.Is(err, ErrValidation) {
			t.Errorf("%+v: expected validation error, got %v", req, err)
		}
	}
}

func TestViewSourceURL(t *testing.T) {
	c, err := New(Options{BaseURL: "http://localhost:8080/api/"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := c.ViewSourceURL("docs/genes a.txt")
	want := "http://localhost:8080/api/view-source?path=docs%2Fgenes+a.txt"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ValidationError("search", BlankQuery), BlankQuery},
		{protocolErr("search", errors.New("x")), "The server sent an unexpected response while loading search results."},
		{transportErr("search", 500, nil), "An error occurred while loading search results."},
		{notFoundErr("details"), "Nothing found while loading search results."},
	}
	for _, tt := range tests {
		if got := UserMessage("search results", tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []model.SearchResult{})
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, RateLimit: 20, Burst: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.Search(context.Background(), model.Query{Text: "x"}, 0); err != nil {
			t.Fatalf("Search: %v", err)
		}
	}
	// Burst 1 at 20/s: the 2nd and 3rd requests wait ~50ms each.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected throttling, 3 requests took %v", elapsed)
	}
}
