// Package query debounces user queries, dispatches them to the backend and
// applies a response only while it belongs to the newest dispatch.
package query

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/msalah0e/ontoscope/internal/api"
	"github.com/msalah0e/ontoscope/internal/debounce"
	"github.com/msalah0e/ontoscope/internal/logging"
	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/results"
	"github.com/msalah0e/ontoscope/internal/state"
	"github.com/msalah0e/ontoscope/internal/surface"
)

// BlankPrompt is shown when a query has no searchable text.
const BlankPrompt = api.BlankQuery

// Searcher runs one search against the backend.
type Searcher interface {
	Search(ctx context.Context, q model.Query, perPage int) ([]model.SearchResult, error)
}

// Options configures a Controller.
type Options struct {
	Debounce time.Duration
	PerPage  int
	Timeout  time.Duration // per request, 0 = none beyond the client's own
	Logger   *slog.Logger
}

// Controller is safe for concurrent use.
type Controller struct {
	ctx     context.Context
	client  Searcher
	st      *state.UIState
	ser     *surface.Serial
	view    *results.Model
	deb     *debounce.Debouncer
	perPage int
	timeout time.Duration
	log     *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	gen     uint64 // invalidates debounced submits that were cancelled
	pending bool
	busy    int
	closed  bool
}

// New returns a Controller rendering into view. Requests derive from ctx.
func New(ctx context.Context, client Searcher, st *state.UIState, ser *surface.Serial, view *results.Model, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Controller{
		ctx:     ctx,
		client:  client,
		st:      st,
		ser:     ser,
		view:    view,
		deb:     debounce.New(opts.Debounce),
		perPage: opts.PerPage,
		timeout: opts.Timeout,
		log:     logger,
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Submit schedules q once the quiet interval passes without another Submit.
// A blank query is handled at once.
func (c *Controller) Submit(q model.Query) {
	q = q.Normalized()
	if q.Blank() {
		c.blank(q)
		return
	}

	// The debouncer is armed under c.mu so timers are replaced in gen order.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.gen++
	gen := c.gen
	c.pending = c.deb.Trigger(func() { c.fire(gen, q) })
	c.cond.Broadcast()
}

// SubmitNow cancels any pending Submit and dispatches q immediately.
func (c *Controller) SubmitNow(q model.Query) {
	q = q.Normalized()
	if q.Blank() {
		c.blank(q)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.deb.Cancel()
	c.pending = false
	c.busy++
	c.mu.Unlock()

	go func() {
		defer c.done()
		c.dispatch(q)
	}()
}

// Wait blocks until no submit is pending and no dispatch is in flight.
func (c *Controller) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pending || c.busy > 0 {
		c.cond.Wait()
	}
}

// Close drops any pending submit and rejects later ones. In-flight
// dispatches still settle.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.gen++
	c.deb.Stop()
	c.pending = false
	c.cond.Broadcast()
	c.mu.Unlock()
}

func (c *Controller) fire(gen uint64, q model.Query) {
	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		return
	}
	c.pending = false
	c.busy++
	c.mu.Unlock()

	defer c.done()
	c.dispatch(q)
}

func (c *Controller) done() {
	c.mu.Lock()
	c.busy--
	c.cond.Broadcast()
	c.mu.Unlock()
}

// blank cancels pending work, makes in-flight responses stale and shows the
// no-results state with an inline prompt.
func (c *Controller) blank(q model.Query) {
	c.mu.Lock()
	c.gen++
	c.deb.Cancel()
	if c.pending {
		c.pending = false
		c.cond.Broadcast()
	}
	c.mu.Unlock()

	c.st.SupersedeSearches()
	c.ser.Do(func(s surface.Surface) {
		c.view.ShowLocked(s, q, nil)
		s.ShowPrompt(BlankPrompt)
	})
	c.st.SetQuery(q)
}

func (c *Controller) dispatch(q model.Query) {
	token := c.st.BeginSearch(q)
	c.log.Debug("search dispatched", "query", q.Text, "page", q.Page, "token", token)

	c.ser.Do(func(s surface.Surface) {
		if c.st.Acquire() {
			s.ShowLoading()
		}
	})

	ctx := c.ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	res, err := c.client.Search(ctx, q, c.perPage)

	applied := false
	c.ser.Do(func(s surface.Surface) {
		defer func() {
			if c.st.Release() {
				s.HideLoading()
			}
		}()

		if !c.st.IsLatestSearch(token) {
			c.log.Debug("stale search response dropped", "query", q.Text, "token", token)
			return
		}
		if err != nil {
			c.fail(s, q, err)
			return
		}
		c.view.ShowLocked(s, q, res)
		applied = true
	})
	c.st.Settle()

	if applied {
		c.log.Debug("search applied", "query", q.Text, "results", len(res))
		c.view.NotifyResults(res)
	}
}

func (c *Controller) fail(s surface.Surface, q model.Query, err error) {
	if errors.Is(err, api.ErrValidation) {
		s.ShowPrompt(api.UserMessage("search results", err))
		return
	}
	c.log.Warn("search failed", "query", q.Text, "error", err)
	c.st.Fail()
	c.view.ClearLocked(s)
	s.ShowError(api.UserMessage("search results", err))
	c.st.Recover()
}
