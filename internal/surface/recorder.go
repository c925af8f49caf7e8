package surface

import (
	"sync"

	"github.com/msalah0e/ontoscope/internal/graph"
	"github.com/msalah0e/ontoscope/internal/model"
)

// Call is one recorded surface call.
type Call struct {
	Method string
	Arg    any
}

// Recorder is a Surface that records every call, for pipeline tests.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) record(method string, arg any) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Method: method, Arg: arg})
	r.mu.Unlock()
}

func (r *Recorder) RenderResults(v ResultsView) { r.record("RenderResults", v) }
func (r *Recorder) RenderDetail(v model.ElementView) { r.record("RenderDetail", v) }
func (r *Recorder) RenderGraph(g *graph.Model) { r.record("RenderGraph", g) }
func (r *Recorder) ShowLoading() { r.record("ShowLoading", nil) }
func (r *Recorder) HideLoading() { r.record("HideLoading", nil) }
func (r *Recorder) ShowError(msg string) { r.record("ShowError", msg) }
func (r *Recorder) ShowPrompt(msg string) { r.record("ShowPrompt", msg) }
func (r *Recorder) SetQueryText(text string) { r.record("SetQueryText", text) }

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many times method was called.
func (r *Recorder) Count(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Last returns the argument of the latest call to method.
func (r *Recorder) Last(method string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.calls) - 1; i >= 0; i-- {
		if r.calls[i].Method == method {
			return r.calls[i].Arg, true
		}
	}
	return nil, false
}

// LastResults returns the latest rendered results view.
func (r *Recorder) LastResults() (ResultsView, bool) {
	v, ok := r.Last("RenderResults")
	if !ok {
		return ResultsView{}, false
	}
	return v.(ResultsView), true
}

// LastDetail returns the latest rendered detail.
func (r *Recorder) LastDetail() (model.ElementView, bool) {
	v, ok := r.Last("RenderDetail")
	if !ok {
		return model.ElementView{}, false
	}
	return v.(model.ElementView), true
}

// LastGraph returns the latest rendered graph.
func (r *Recorder) LastGraph() (*graph.Model, bool) {
	v, ok := r.Last("RenderGraph")
	if !ok {
		return nil, false
	}
	return v.(*graph.Model), true
}

// Reset drops the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}
