// Package state holds the single-owner UI state of an exploration session.
//
// Only the query controller, detail coordinator, navigation loop and overlay
// mutate it, each through its own methods. The loading indicator is a
// reference count shared by searches and detail loads.
package state

import (
	"sync"

	"github.com/msalah0e/ontoscope/internal/model"
)

// Phase is the session's position in the search/detail state machine.
type Phase int

const (
	Idle Phase = iota
	Searching
	Results
	LoadingDetail
	DetailShown
	Error
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Results:
		return "results"
	case LoadingDetail:
		return "loading-detail"
	case DetailShown:
		return "detail-shown"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// stable reports whether the phase is one an error may return to.
func (p Phase) stable() bool {
	return p == Idle || p == Results || p == DetailShown
}

// Snapshot is a copy of the state at one instant.
type Snapshot struct {
	Query         model.Query
	SearchToken   uint64
	DetailToken   uint64
	DetailTarget  string
	Selected      string
	Loading       bool
	InFlight      int
	Phase         Phase
	StablePhase   Phase
	TooltipTarget string
}

// UIState is safe for concurrent use.
type UIState struct {
	mu sync.Mutex

	query        model.Query
	searchToken  uint64
	detailToken  uint64
	detailTarget string
	selected     string
	inflight     int
	phase        Phase
	stablePhase  Phase
	tooltip      string
}

// New returns an idle state.
func New() *UIState {
	return &UIState{}
}

// Reset returns the state to idle. Outstanding tokens become stale.
func (s *UIState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = model.Query{}
	s.searchToken++
	s.detailToken++
	s.detailTarget = ""
	s.selected = ""
	s.inflight = 0
	s.phase = Idle
	s.stablePhase = Idle
	s.tooltip = ""
}

// ─── Search ───

// Query returns the most recently recorded query.
func (s *UIState) Query() model.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// SetQuery records q as the current query without dispatching anything.
func (s *UIState) SetQuery(q model.Query) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// BeginSearch records q and returns the token of the new dispatch.
func (s *UIState) BeginSearch(q model.Query) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
	s.searchToken++
	s.phase = Searching
	return s.searchToken
}

// SupersedeSearches makes every in-flight search stale without starting a new one.
func (s *UIState) SupersedeSearches() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchToken++
	return s.searchToken
}

// IsLatestSearch reports whether token belongs to the newest dispatch.
func (s *UIState) IsLatestSearch(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token == s.searchToken
}

// ResultsShown moves the machine to Results. A new result set drops the selection.
func (s *UIState) ResultsShown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
	s.setStable(Results)
}

// ─── Detail ───

// BeginLoad records name as the newest detail target and returns its token.
func (s *UIState) BeginLoad(name string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailToken++
	s.detailTarget = name
	s.phase = LoadingDetail
	return s.detailToken
}

// IsLatestLoad reports whether token belongs to the newest detail load.
func (s *UIState) IsLatestLoad(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token == s.detailToken
}

// DetailShown moves the machine to DetailShown.
func (s *UIState) DetailShown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStable(DetailShown)
}

// Select records name as the selected element.
func (s *UIState) Select(name string) {
	s.mu.Lock()
	s.selected = name
	s.mu.Unlock()
}

// Selected returns the selected element name, or "".
func (s *UIState) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// ─── Errors ───

// Fail enters Error and returns the phase the machine will recover to.
func (s *UIState) Fail() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = Error
	return s.stablePhase
}

// Recover leaves Error for the last stable phase. Other phases are untouched.
func (s *UIState) Recover() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == Error {
		s.phase = s.stablePhase
	}
	return s.phase
}

// Settle returns a transient phase to the last stable one. Used when the
// operation that entered it was superseded and nothing newer is running.
func (s *UIState) Settle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == 0 && !s.phase.stable() {
		s.phase = s.stablePhase
	}
}

// Phase returns the current phase.
func (s *UIState) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *UIState) setStable(p Phase) {
	s.stablePhase = p
	s.phase = p
}

// ─── Loading indicator ───

// Acquire counts one more operation in flight. It reports true when the
// indicator has to become visible.
func (s *UIState) Acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight++
	return s.inflight == 1
}

// Release counts one operation as settled. It reports true when the last
// operation finished and the indicator has to be hidden.
func (s *UIState) Release() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == 0 {
		return false
	}
	s.inflight--
	return s.inflight == 0
}

// Loading reports whether any operation is in flight.
func (s *UIState) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// ─── Tooltip ───

// SetTooltipTarget records the element the overlay is attached to ("" when hidden).
func (s *UIState) SetTooltipTarget(target string) {
	s.mu.Lock()
	s.tooltip = target
	s.mu.Unlock()
}

// Snapshot copies the whole state.
func (s *UIState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Query:         s.query,
		SearchToken:   s.searchToken,
		DetailToken:   s.detailToken,
		DetailTarget:  s.detailTarget,
		Selected:      s.selected,
		Loading:       s.inflight > 0,
		InFlight:      s.inflight,
		Phase:         s.phase,
		StablePhase:   s.stablePhase,
		TooltipTarget: s.tooltip,
	}
}
