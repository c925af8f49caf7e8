package state

import (
	"sync"
	"testing"

	"github.com/msalah0e/ontoscope/internal/model"
)

func TestNew_Idle(t *testing.T) {
	s := New()
	snap := s.Snapshot()
	if snap.Phase != Idle {
		t.Errorf("expected idle phase, got %s", snap.Phase)
	}
	if snap.Loading {
		t.Error("new state should not be loading")
	}
}

func TestSearchTokens(t *testing.T) {
	s := New()

	first := s.BeginSearch(model.Query{Text: "gene"})
	second := s.BeginSearch(model.Query{Text: "genes"})

	if second <= first {
		t.Fatalf("tokens must increase: %d then %d", first, second)
	}
	if s.IsLatestSearch(first) {
		t.Error("older token should be stale")
	}
	if !s.IsLatestSearch(second) {
		t.Error("newest token should be latest")
	}
	if got := s.Query().Text; got != "genes" {
		t.Errorf("expected current query 'genes', got %q", got)
	}

	s.SupersedeSearches()
	if s.IsLatestSearch(second) {
		t.Error("superseded token should be stale")
	}
}

func TestLoadTokens(t *testing.T) {
	s := New()
	a := s.BeginLoad("A")
	b := s.BeginLoad("B")

	if s.IsLatestLoad(a) {
		t.Error("load for A should be stale after B")
	}
	if !s.IsLatestLoad(b) {
		t.Error("load for B should be latest")
	}
	if got := s.Snapshot().DetailTarget; got != "B" {
		t.Errorf("expected detail target B, got %q", got)
	}
}

func TestLoadingRefcount(t *testing.T) {
	s := New()

	if !s.Acquire() {
		t.Error("first Acquire should show the indicator")
	}
	if s.Acquire() {
		t.Error("second Acquire should not re-show the indicator")
	}
	if s.Release() {
		t.Error("first Release should keep the indicator while one op is in flight")
	}
	if !s.Loading() {
		t.Error("expected loading with one op in flight")
	}
	if !s.Release() {
		t.Error("last Release should hide the indicator")
	}
	if s.Release() {
		t.Error("Release at zero should be a no-op")
	}
	if s.Loading() {
		t.Error("expected not loading")
	}
}

func TestLoadingRefcount_Concurrent(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	var mu sync.Mutex
	shows, hides := 0, 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Acquire() {
				mu.Lock()
				shows++
				mu.Unlock()
			}
			if s.Release() {
				mu.Lock()
				hides++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if shows != hides {
		t.Errorf("every show needs a matching hide: %d shows, %d hides", shows, hides)
	}
	if s.Loading() {
		t.Error("indicator left active after all ops settled")
	}
}

func TestPhaseMachine(t *testing.T) {
	s := New()

	s.BeginSearch(model.Query{Text: "gene"})
	if s.Phase() != Searching {
		t.Fatalf("expected searching, got %s", s.Phase())
	}
	s.ResultsShown()
	if s.Phase() != Results {
		t.Fatalf("expected results, got %s", s.Phase())
	}

	s.BeginLoad("A")
	if s.Phase() != LoadingDetail {
		t.Fatalf("expected loading-detail, got %s", s.Phase())
	}
	if back := s.Fail(); back != Results {
		t.Errorf("error should return to results, got %s", back)
	}
	if s.Phase() != Error {
		t.Errorf("expected error phase, got %s", s.Phase())
	}
	if s.Recover() != Results {
		t.Errorf("expected recovery to results, got %s", s.Phase())
	}

	s.BeginLoad("A")
	s.DetailShown()
	s.BeginSearch(model.Query{Text: "x"})
	s.Fail()
	if s.Recover() != DetailShown {
		t.Errorf("failed search after detail should return to detail-shown, got %s", s.Phase())
	}
}

func TestResultsShown_ClearsSelection(t *testing.T) {
	s := New()
	s.Select("A")
	s.ResultsShown()
	if got := s.Selected(); got != "" {
		t.Errorf("expected selection cleared, got %q", got)
	}
}

func TestSettle(t *testing.T) {
	s := New()
	s.BeginSearch(model.Query{Text: "a"})
	s.Acquire()
	s.Settle()
	if s.Phase() != Searching {
		t.Error("Settle must not leave a phase while operations are in flight")
	}
	s.Release()
	s.Settle()
	if s.Phase() != Idle {
		t.Errorf("expected idle after settle, got %s", s.Phase())
	}
}

func TestReset(t *testing.T) {
	s := New()
	tok := s.BeginSearch(model.Query{Text: "a"})
	s.Acquire()
	s.SetTooltipTarget("A")
	s.Reset()

	snap := s.Snapshot()
	if snap.Phase != Idle || snap.Loading || snap.TooltipTarget != "" {
		t.Errorf("expected clean idle state, got %+v", snap)
	}
	if s.IsLatestSearch(tok) {
		t.Error("tokens issued before Reset should be stale")
	}
}
