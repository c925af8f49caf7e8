package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/msalah0e/ontoscope/internal/api"
	"github.com/msalah0e/ontoscope/internal/graph"
	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/state"
	"github.com/msalah0e/ontoscope/internal/surface"
)

// backend is a fake ontology API holding the gene fixture.
func backend(t *testing.T) (*api.Client, *searchLog) {
	t.Helper()
	log := &searchLog{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		log.add(q)
		var out []model.SearchResult
		switch q {
		case "gene":
			out = []model.SearchResult{
				{ElementName: "gene", Description: "unit of heredity"},
				{ElementName: "A", Description: "second hit", Source: &model.FileMetadata{SourceFile: "genes.txt"}},
				{ElementName: "genotype", Description: "genetic makeup"},
			}
		case "B":
			out = []model.SearchResult{{ElementName: "B"}}
		}
		json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("/api/elements/details/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/api/elements/details/")
		json.NewEncoder(w).Encode(map[string]any{"Name": name, "Type": "Concept", "Description": name + " described"})
	})
	mux.HandleFunc("/api/elements/relations/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/api/elements/relations/")
		if name != "A" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode([]model.Relation{
			{Source: "A", Type: "is_a", Target: "B"},
			{Source: "A", Type: "part_of", Target: "C"},
			{Source: "B", Type: "is_a", Target: "C"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := api.New(api.Options{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	return c, log
}

type searchLog struct {
	mu      sync.Mutex
	queries []string
}

func (l *searchLog) add(q string) {
	l.mu.Lock()
	l.queries = append(l.queries, q)
	l.mu.Unlock()
}

func (l *searchLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.queries...)
}

func newSession(t *testing.T) (*Session, *surface.Recorder, *searchLog) {
	t.Helper()
	client, log := backend(t)
	rec := &surface.Recorder{}
	s := New(context.Background(), client, rec, Options{Debounce: 20 * time.Millisecond, PerPage: 10, Timeout: time.Second})
	t.Cleanup(s.Close)
	return s, rec, log
}

func TestGeneScenario(t *testing.T) {
	s, rec, _ := newSession(t)

	var updated []model.SearchResult
	var selected string
	s.OnResultsUpdated(func(r []model.SearchResult) { updated = r })
	s.OnElementSelected(func(name string) { selected = name })

	s.PerformSearch("gene")
	s.Wait()

	if len(updated) != 3 {
		t.Fatalf("expected 3 results, got %d", len(updated))
	}
	if err := s.SelectIndex(1); err != nil {
		t.Fatalf("SelectIndex: %v", err)
	}
	s.Wait()

	if selected != "A" {
		t.Errorf("expected A to be selected, got %q", selected)
	}
	v, ok := rec.LastDetail()
	if !ok || v.Detail.Name != "A" || len(v.Relations) != 3 {
		t.Fatalf("unexpected detail %+v", v)
	}
	if v.Source == nil || v.Source.SourceFile != "genes.txt" {
		t.Errorf("provenance of the hit should reach the view, got %+v", v.Source)
	}

	g, ok := rec.LastGraph()
	if !ok {
		t.Fatal("graph not rendered")
	}
	if len(g.Nodes) != 3 || len(g.Edges) != 3 {
		t.Errorf("expected 3 nodes and 3 edges, got %d/%d", len(g.Nodes), len(g.Edges))
	}
	for _, name := range []string{"A", "B", "C"} {
		if _, ok := g.Node(graph.IDFor(name)); !ok {
			t.Errorf("node %s missing", name)
		}
	}

	snap := s.State()
	if snap.Phase != state.DetailShown || snap.Selected != "A" || snap.Loading {
		t.Errorf("unexpected state %+v", snap)
	}
	if rec.Count("ShowLoading") != rec.Count("HideLoading") {
		t.Errorf("loading shown %d times, hidden %d", rec.Count("ShowLoading"), rec.Count("HideLoading"))
	}
}

func TestNavigationLoop(t *testing.T) {
	s, rec, log := newSession(t)

	s.SetFilters("o1", model.TypeConcept)
	s.PerformSearch("gene")
	s.Wait()
	s.Select("A")
	s.Wait()

	if !s.ActivateNode(string(graph.IDFor("B"))) {
		t.Fatal("activating B should search")
	}
	s.Wait()

	if text, _ := rec.Last("SetQueryText"); text != "B" {
		t.Errorf("query text should show B, got %v", text)
	}
	queries := log.all()
	if queries[len(queries)-1] != "B" {
		t.Errorf("expected a search for B, got %v", queries)
	}
	q := s.State().Query
	if q.OntologyID != "o1" || q.Type != model.TypeConcept {
		t.Errorf("filters should survive navigation, got %+v", q)
	}
	v, _ := rec.LastResults()
	if v.Query.Text != "B" || len(v.Results) != 1 {
		t.Errorf("unexpected results %+v", v)
	}

	if s.ActivateTerm("  <br> ") {
		t.Error("blank term should be ignored")
	}
}

func TestType_Debounced(t *testing.T) {
	s, _, log := newSession(t)

	for _, text := range []string{"g", "ge", "gen", "gene"} {
		s.Type(text)
	}
	s.Wait()

	queries := log.all()
	if len(queries) != 1 || queries[0] != "gene" {
		t.Errorf("expected one search for gene, got %v", queries)
	}
}

func TestRelations404IsEmptyGraph(t *testing.T) {
	s, rec, _ := newSession(t)

	s.Load("genotype")
	s.Wait()

	g, ok := rec.LastGraph()
	if !ok || len(g.Nodes) != 1 || len(g.Edges) != 0 {
		t.Errorf("expected a focus-only graph, got %+v", g)
	}
	if rec.Count("ShowError") != 0 {
		t.Error("missing relations are not an error")
	}
}

func TestPaging(t *testing.T) {
	s, _, _ := newSession(t)
	s.PerformSearch("gene")
	s.Wait()

	if !s.NextPage() {
		t.Fatal("NextPage should submit")
	}
	s.Wait()
	if s.Results().Query.Page != 2 {
		t.Errorf("expected page 2, got %d", s.Results().Query.Page)
	}
	if !s.PrevPage() {
		t.Fatal("PrevPage should submit from page 2")
	}
	s.Wait()
	if s.Results().Query.Page != 1 {
		t.Errorf("expected page 1, got %d", s.Results().Query.Page)
	}
}

func TestClose(t *testing.T) {
	s, _, log := newSession(t)
	s.Type("gene")
	s.Close()
	time.Sleep(40 * time.Millisecond)

	if n := len(log.all()); n != 0 {
		t.Errorf("closing should drop the pending search, got %d", n)
	}
	if s.Duration() <= 0 {
		t.Error("duration should be positive")
	}
}
