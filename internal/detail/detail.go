// Package detail loads an element's detail and relations together and
// renders them, with the relation graph, as one view.
package detail

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/msalah0e/ontoscope/internal/api"
	"github.com/msalah0e/ontoscope/internal/graph"
	"github.com/msalah0e/ontoscope/internal/logging"
	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/state"
	"github.com/msalah0e/ontoscope/internal/surface"
)

// Fetcher reads element records from the backend.
type Fetcher interface {
	ElementDetail(ctx context.Context, name string) (model.ElementDetail, error)
	ElementRelations(ctx context.Context, name string) ([]model.Relation, error)
}

// Coordinator is safe for concurrent use.
type Coordinator struct {
	ctx     context.Context
	client  Fetcher
	st      *state.UIState
	ser     *surface.Serial
	timeout time.Duration
	log     *slog.Logger

	wg sync.WaitGroup

	mu      sync.Mutex
	current model.ElementView
	graph   *graph.Model
}

// New returns a Coordinator. Requests derive from ctx and get timeout each.
func New(ctx context.Context, client Fetcher, st *state.UIState, ser *surface.Serial, timeout time.Duration, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Coordinator{ctx: ctx, client: client, st: st, ser: ser, timeout: timeout, log: logger}
}

// Load fetches name in the background. A newer Load supersedes it.
func (c *Coordinator) Load(name string) {
	c.LoadResult(model.SearchResult{ElementName: name})
}

// LoadResult is Load for a search hit; its provenance is carried into the view.
func (c *Coordinator) LoadResult(r model.SearchResult) {
	token := c.st.BeginLoad(r.ElementName)
	c.ser.Do(func(s surface.Surface) {
		if c.st.Acquire() {
			s.ShowLoading()
		}
	})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.load(token, r)
	}()
}

// Wait blocks until every Load has settled.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Current returns the rendered view and its graph. ok is false before the
// first successful load.
func (c *Coordinator) Current() (view model.ElementView, g *graph.Model, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.graph, c.graph != nil
}

func (c *Coordinator) load(token uint64, r model.SearchResult) {
	name := r.ElementName
	released := false
	defer func() {
		if !released {
			c.ser.Do(c.release)
		}
		c.st.Settle()
	}()

	ctx := c.ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var (
		d    model.ElementDetail
		rels []model.Relation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d, err = c.client.ElementDetail(gctx, name)
		return err
	})
	g.Go(func() error {
		var err error
		rels, err = c.client.ElementRelations(gctx, name)
		if err != nil {
			if gctx.Err() == nil {
				c.log.Warn("relations unavailable", "element", name, "error", err)
			}
			rels = []model.Relation{}
		}
		return nil
	})
	err := g.Wait()

	c.ser.Do(func(s surface.Surface) {
		released = true
		defer c.release(s)

		if !c.st.IsLatestLoad(token) {
			c.log.Debug("stale detail dropped", "element", name, "token", token)
			return
		}
		if err != nil {
			c.log.Warn("detail failed", "element", name, "error", err)
			c.st.Fail()
			s.ShowError(api.UserMessage("element details", err))
			c.st.Recover()
			return
		}

		view := model.ElementView{Detail: d, Relations: rels, Source: r.Source}
		gm := graph.Build(d, rels)

		c.mu.Lock()
		c.current, c.graph = view, gm
		c.mu.Unlock()

		s.RenderDetail(view)
		s.RenderGraph(gm)
		c.st.DetailShown()
		c.log.Debug("detail shown", "element", name, "relations", len(rels))
	})
}

func (c *Coordinator) release(s surface.Surface) {
	if c.st.Release() {
		s.HideLoading()
	}
}
