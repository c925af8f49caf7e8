// Package session wires one exploration session: state, query controller,
// results, detail coordinator, navigation loop and overlay, all rendering
// into a single surface.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/msalah0e/ontoscope/internal/detail"
	"github.com/msalah0e/ontoscope/internal/graph"
	"github.com/msalah0e/ontoscope/internal/logging"
	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/navigate"
	"github.com/msalah0e/ontoscope/internal/overlay"
	"github.com/msalah0e/ontoscope/internal/query"
	"github.com/msalah0e/ontoscope/internal/results"
	"github.com/msalah0e/ontoscope/internal/state"
	"github.com/msalah0e/ontoscope/internal/surface"
)

// Backend is the part of the API client a session uses.
type Backend interface {
	query.Searcher
	detail.Fetcher
}

// Options configures a Session.
type Options struct {
	ID       string // empty = a new short id; match the logger's session attribute
	Debounce time.Duration
	PerPage  int
	Timeout  time.Duration
	Overlay  overlay.Options
	Logger   *slog.Logger
}

// Session tracks a single exploration run.
type Session struct {
	ID        string
	StartedAt time.Time

	cancel context.CancelFunc
	log    *slog.Logger

	state   *state.UIState
	results *results.Model
	query   *query.Controller
	detail  *detail.Coordinator
	nav     *navigate.Loop
	overlay *overlay.Overlay
}

// New starts an idle session rendering into s.
func New(ctx context.Context, backend Backend, s surface.Surface, opts Options) *Session {
	id := opts.ID
	if id == "" {
		id = logging.NewSessionID()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	ctx, cancel := context.WithCancel(ctx)
	st := state.New()
	st.Reset()
	ser := surface.NewSerial(s)

	view := results.New(st, ser)
	ctrl := query.New(ctx, backend, st, ser, view, query.Options{
		Debounce: opts.Debounce,
		PerPage:  opts.PerPage,
		Timeout:  opts.Timeout,
		Logger:   logger,
	})
	coord := detail.New(ctx, backend, st, ser, opts.Timeout, logger)
	view.SetLoader(coord)
	view.SetPager(ctrl)

	sess := &Session{
		ID:        id,
		StartedAt: time.Now(),
		cancel:    cancel,
		log:       logger,
		state:     st,
		results:   view,
		query:     ctrl,
		detail:    coord,
		nav:       navigate.New(st, ser, ctrl),
		overlay:   overlay.New(st, opts.Overlay),
	}
	logger.Debug("session started")
	return sess
}

// ─── Shell entry points ───

// PerformSearch searches for text now, keeping the current filters.
func (s *Session) PerformSearch(text string) {
	s.query.SubmitNow(s.state.Query().WithText(text))
}

// Search runs q now as given, page included.
func (s *Session) Search(q model.Query) {
	s.query.SubmitNow(q)
}

// Type records a keystroke-level change of the query text. The search runs
// once typing pauses.
func (s *Session) Type(text string) {
	s.query.Submit(s.state.Query().WithText(text))
}

// SetFilters changes the ontology and type filters for later searches.
func (s *Session) SetFilters(ontologyID string, t model.ElementType) {
	q := s.state.Query()
	q.OntologyID = ontologyID
	q.Type = t
	s.state.SetQuery(q)
}

// OnResultsUpdated replaces the results subscriber. nil unsubscribes.
func (s *Session) OnResultsUpdated(fn func([]model.SearchResult)) {
	s.results.OnResultsUpdated(fn)
}

// OnElementSelected replaces the selection subscriber. nil unsubscribes.
func (s *Session) OnElementSelected(fn func(string)) {
	s.results.OnElementSelected(fn)
}

// ─── Browsing ───

// Select picks a result by name and loads its detail.
func (s *Session) Select(name string) error {
	return s.results.Select(name)
}

// SelectIndex picks the i-th result and loads its detail.
func (s *Session) SelectIndex(i int) error {
	return s.results.SelectIndex(i)
}

// Load fetches the detail of name without it being a result, as `show` does.
func (s *Session) Load(name string) {
	s.detail.Load(name)
}

// NextPage and PrevPage re-run the current query on the adjacent page.
func (s *Session) NextPage() bool { return s.results.NextPage() }
func (s *Session) PrevPage() bool { return s.results.PrevPage() }

// ActivateTerm searches for a highlighted term.
func (s *Session) ActivateTerm(raw string) bool {
	return s.nav.OnTermActivated(raw)
}

// ActivateNode searches for a node of the graph currently shown.
func (s *Session) ActivateNode(id string) bool {
	_, g, ok := s.detail.Current()
	if !ok {
		return false
	}
	return s.nav.OnNodeActivated(g, graph.NodeID(id))
}

// Current returns the element view and graph currently shown.
func (s *Session) Current() (model.ElementView, *graph.Model, bool) {
	return s.detail.Current()
}

// Results returns the current results snapshot.
func (s *Session) Results() surface.ResultsView {
	return s.results.View()
}

// Overlay returns the session's metadata overlay.
func (s *Session) Overlay() *overlay.Overlay {
	return s.overlay
}

// State returns a snapshot of the session state.
func (s *Session) State() state.Snapshot {
	return s.state.Snapshot()
}

// ─── Lifecycle ───

// Wait blocks until pending searches and detail loads have settled.
func (s *Session) Wait() {
	s.query.Wait()
	s.detail.Wait()
}

// Duration returns how long the session has been running.
func (s *Session) Duration() time.Duration {
	return time.Since(s.StartedAt)
}

// Close stops the debouncer, cancels outstanding requests and waits for
// them to settle.
func (s *Session) Close() {
	s.query.Close()
	s.cancel()
	s.Wait()
	s.log.Debug("session closed", "duration", s.Duration().Round(time.Millisecond))
}
