// Package results holds the current result set of a session: its selection,
// its page, and the subscriptions fired when either changes.
package results

import (
	"fmt"
	"sync"

	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/state"
	"github.com/msalah0e/ontoscope/internal/surface"
)

// Loader fetches the detail of a selected result.
type Loader interface {
	LoadResult(r model.SearchResult)
}

// Pager re-issues a query immediately.
type Pager interface {
	SubmitNow(q model.Query)
}

// Model is safe for concurrent use. Every change to the view happens inside
// the surface's Serial.
type Model struct {
	st  *state.UIState
	ser *surface.Serial

	mu   sync.Mutex
	view surface.ResultsView

	subMu      sync.Mutex
	loader     Loader
	pager      Pager
	onResults  func([]model.SearchResult)
	onSelected func(string)
}

// New returns a model in the not-searched state.
func New(st *state.UIState, ser *surface.Serial) *Model {
	return &Model{st: st, ser: ser}
}

// SetLoader wires the detail loader triggered by Select.
func (m *Model) SetLoader(l Loader) {
	m.subMu.Lock()
	m.loader = l
	m.subMu.Unlock()
}

// SetPager wires the query dispatcher used by NextPage and PrevPage.
func (m *Model) SetPager(p Pager) {
	m.subMu.Lock()
	m.pager = p
	m.subMu.Unlock()
}

// OnResultsUpdated replaces the results subscriber. nil unsubscribes.
func (m *Model) OnResultsUpdated(fn func([]model.SearchResult)) {
	m.subMu.Lock()
	m.onResults = fn
	m.subMu.Unlock()
}

// OnElementSelected replaces the selection subscriber. nil unsubscribes.
func (m *Model) OnElementSelected(fn func(string)) {
	m.subMu.Lock()
	m.onSelected = fn
	m.subMu.Unlock()
}

// View returns the current snapshot.
func (m *Model) View() surface.ResultsView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// SetResults replaces the whole set for q, clears the selection and renders.
func (m *Model) SetResults(q model.Query, results []model.SearchResult) {
	m.ser.Do(func(s surface.Surface) {
		m.ShowLocked(s, q, results)
	})
	m.NotifyResults(results)
}

// ShowLocked is SetResults for callers already inside the Serial. It does
// not notify subscribers; call NotifyResults once the Serial is released.
func (m *Model) ShowLocked(s surface.Surface, q model.Query, results []model.SearchResult) {
	v := surface.ResultsView{State: surface.Populated, Query: q, Results: results}
	if len(results) == 0 {
		v.State = surface.Empty
		v.Results = []model.SearchResult{}
	}
	m.mu.Lock()
	m.view = v
	m.mu.Unlock()
	m.st.ResultsShown()
	s.RenderResults(v)
}

// ClearLocked returns the view to not-searched, inside the Serial.
func (m *Model) ClearLocked(s surface.Surface) {
	m.mu.Lock()
	m.view = surface.ResultsView{State: surface.NotSearched}
	m.mu.Unlock()
	m.st.Select("")
	s.RenderResults(surface.ResultsView{State: surface.NotSearched})
}

// Clear returns the view to not-searched.
func (m *Model) Clear() {
	m.ser.Do(m.ClearLocked)
}

// NotifyResults fires the results subscriber. Must be called outside the Serial.
func (m *Model) NotifyResults(results []model.SearchResult) {
	m.subMu.Lock()
	fn := m.onResults
	m.subMu.Unlock()
	if fn != nil {
		fn(results)
	}
}

// Select marks the result named name, fires the selection subscriber and
// loads its detail. An unknown name changes nothing.
func (m *Model) Select(name string) error {
	var (
		picked model.SearchResult
		err    error
	)
	m.ser.Do(func(s surface.Surface) {
		m.mu.Lock()
		r, ok := m.view.Find(name)
		if !ok {
			m.mu.Unlock()
			err = fmt.Errorf("%q is not in the current results", name)
			return
		}
		picked = r
		m.view.Selected = name
		v := m.view
		m.mu.Unlock()

		m.st.Select(name)
		s.RenderResults(v)
	})
	if err != nil {
		return err
	}

	m.subMu.Lock()
	fn, loader := m.onSelected, m.loader
	m.subMu.Unlock()
	if fn != nil {
		fn(name)
	}
	if loader != nil {
		loader.LoadResult(picked)
	}
	return nil
}

// SelectIndex selects the i-th result of the current set.
func (m *Model) SelectIndex(i int) error {
	m.mu.Lock()
	if i < 0 || i >= len(m.view.Results) {
		n := len(m.view.Results)
		m.mu.Unlock()
		return fmt.Errorf("result %d out of range (have %d)", i+1, n)
	}
	name := m.view.Results[i].ElementName
	m.mu.Unlock()
	return m.Select(name)
}

// NextPage re-submits the current query for the following page. It reports
// false when nothing has been searched.
func (m *Model) NextPage() bool {
	return m.turn(1)
}

// PrevPage re-submits the current query for the previous page. It reports
// false on the first page.
func (m *Model) PrevPage() bool {
	return m.turn(-1)
}

func (m *Model) turn(delta int) bool {
	m.mu.Lock()
	v := m.view
	m.mu.Unlock()

	if v.State == surface.NotSearched || v.Query.Blank() {
		return false
	}
	q := v.Query.Normalized()
	q.Page += delta
	if q.Page < 1 {
		return false
	}

	m.subMu.Lock()
	p := m.pager
	m.subMu.Unlock()
	if p == nil {
		return false
	}
	p.SubmitNow(q)
	return true
}
