package results

import (
	"sync"
	"testing"

	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/state"
	"github.com/msalah0e/ontoscope/internal/surface"
)

type fakeLoader struct {
	mu     sync.Mutex
	loaded []string
}

func (f *fakeLoader) LoadResult(r model.SearchResult) {
	f.mu.Lock()
	f.loaded = append(f.loaded, r.ElementName)
	f.mu.Unlock()
}

type fakePager struct {
	queries []model.Query
}

func (f *fakePager) SubmitNow(q model.Query) { f.queries = append(f.queries, q) }

func newModel() (*Model, *surface.Recorder, *state.UIState) {
	rec := &surface.Recorder{}
	st := state.New()
	return New(st, surface.NewSerial(rec)), rec, st
}

var geneResults = []model.SearchResult{
	{ElementName: "gene", Description: "unit"},
	{ElementName: "genome", Description: "all genes"},
	{ElementName: "genotype", Description: "makeup"},
}

func TestSetResults(t *testing.T) {
	m, rec, st := newModel()

	var got []model.SearchResult
	m.OnResultsUpdated(func(r []model.SearchResult) { got = r })

	m.SetResults(model.Query{Text: "gene", Page: 1}, geneResults)

	v, ok := rec.LastResults()
	if !ok || v.State != surface.Populated || len(v.Results) != 3 {
		t.Fatalf("unexpected render %+v", v)
	}
	if len(got) != 3 {
		t.Errorf("subscriber should see 3 results, got %d", len(got))
	}
	if st.Phase() != state.Results {
		t.Errorf("expected Results phase, got %v", st.Phase())
	}
}

func TestSetResults_EmptyDiffersFromNotSearched(t *testing.T) {
	m, rec, _ := newModel()

	if m.View().State != surface.NotSearched {
		t.Fatalf("new model should be not-searched")
	}
	m.SetResults(model.Query{Text: "zzz"}, nil)
	v, _ := rec.LastResults()
	if v.State != surface.Empty {
		t.Errorf("expected Empty, got %v", v.State)
	}
	if v.Results == nil {
		t.Error("empty results should be a non-nil slice")
	}

	m.Clear()
	v, _ = rec.LastResults()
	if v.State != surface.NotSearched {
		t.Errorf("Clear should return to not-searched, got %v", v.State)
	}
}

func TestSelect(t *testing.T) {
	m, rec, st := newModel()
	loader := &fakeLoader{}
	m.SetLoader(loader)

	var selected []string
	m.OnElementSelected(func(name string) { selected = append(selected, name) })

	m.SetResults(model.Query{Text: "gene"}, geneResults)
	if err := m.Select("gene"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := m.SelectIndex(1); err != nil {
		t.Fatalf("SelectIndex: %v", err)
	}

	v, _ := rec.LastResults()
	if v.Selected != "genome" {
		t.Errorf("exactly the last selection should be marked, got %q", v.Selected)
	}
	if st.Selected() != "genome" {
		t.Errorf("state should record genome, got %q", st.Selected())
	}
	if len(selected) != 2 || selected[1] != "genome" {
		t.Errorf("unexpected selection events %v", selected)
	}
	if len(loader.loaded) != 2 || loader.loaded[1] != "genome" {
		t.Errorf("unexpected loads %v", loader.loaded)
	}
}

func TestSelect_Unknown(t *testing.T) {
	m, rec, _ := newModel()
	loader := &fakeLoader{}
	m.SetLoader(loader)
	m.SetResults(model.Query{Text: "gene"}, geneResults)
	m.Select("gene")
	renders := rec.Count("RenderResults")

	if err := m.Select("cell"); err == nil {
		t.Fatal("expected error for a name outside the results")
	}
	if err := m.SelectIndex(7); err == nil {
		t.Fatal("expected error for an out of range index")
	}
	if rec.Count("RenderResults") != renders {
		t.Error("a failed selection must not render")
	}
	if m.View().Selected != "gene" {
		t.Errorf("selection should be unchanged, got %q", m.View().Selected)
	}
	if len(loader.loaded) != 1 {
		t.Errorf("a failed selection must not load, got %v", loader.loaded)
	}
}

func TestSetResults_ClearsSelection(t *testing.T) {
	m, rec, _ := newModel()
	m.SetResults(model.Query{Text: "gene"}, geneResults)
	m.Select("genome")

	m.SetResults(model.Query{Text: "genome"}, geneResults[1:])
	v, _ := rec.LastResults()
	if v.Selected != "" {
		t.Errorf("new result set should clear selection, got %q", v.Selected)
	}
}

func TestUnsubscribe(t *testing.T) {
	m, _, _ := newModel()
	calls := 0
	m.OnResultsUpdated(func([]model.SearchResult) { calls++ })
	m.OnResultsUpdated(func([]model.SearchResult) { calls += 10 })
	m.SetResults(model.Query{Text: "gene"}, geneResults)
	if calls != 10 {
		t.Errorf("only the latest subscriber should fire, calls=%d", calls)
	}

	m.OnResultsUpdated(nil)
	m.SetResults(model.Query{Text: "gene"}, geneResults)
	if calls != 10 {
		t.Errorf("nil should unsubscribe, calls=%d", calls)
	}
}

func TestPaging(t *testing.T) {
	m, _, _ := newModel()
	pager := &fakePager{}
	m.SetPager(pager)

	if m.NextPage() {
		t.Fatal("paging before a search should do nothing")
	}

	m.SetResults(model.Query{Text: "gene", Type: model.TypeConcept, Page: 1}, geneResults)
	if m.PrevPage() {
		t.Error("no previous page before page 1")
	}
	if !m.NextPage() {
		t.Fatal("NextPage should submit")
	}
	q := pager.queries[0]
	if q.Page != 2 || q.Text != "gene" || q.Type != model.TypeConcept {
		t.Errorf("unexpected paged query %+v", q)
	}
}
