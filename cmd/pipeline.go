package cmd

import (
	"context"
	"errors"
	"sync"

	"github.com/msalah0e/ontoscope/internal/api"
	"github.com/msalah0e/ontoscope/internal/overlay"
	"github.com/msalah0e/ontoscope/internal/session"
	"github.com/msalah0e/ontoscope/internal/surface"
	"github.com/spf13/cobra"
)

func newClient() (*api.Client, error) {
	return api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout.Duration,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		UserAgent: "ontoscope/" + version,
		Logger:    logger,
	})
}

func newSession(ctx context.Context, backend session.Backend, s surface.Surface) *session.Session {
	return session.New(ctx, backend, s, session.Options{
		ID:       sessionID,
		Debounce: cfg.Search.Debounce.Duration,
		PerPage:  cfg.Search.PerPage,
		Timeout:  cfg.API.Timeout.Duration,
		Overlay: overlay.Options{
			Box:    overlay.Size{W: cfg.Overlay.Width, H: cfg.Overlay.Height},
			Offset: overlay.Point{X: cfg.Overlay.OffsetX, Y: cfg.Overlay.OffsetY},
			Margin: cfg.Overlay.Margin,
		},
		Logger: logger,
	})
}

// userErr logs err and returns the message the user sees for it.
func userErr(op string, err error) error {
	logger.Debug("request failed", "op", op, "error", err)
	return errors.New(api.UserMessage(op, err))
}

// errReported means the surface already showed the user what went wrong.
var errReported = errors.New("request failed")

// cliSurface is the printer plus a record of whether anything failed, so
// one-shot commands can exit non-zero.
type cliSurface struct {
	*surface.Printer

	once bool // print the results table only the first time

	mu     sync.Mutex
	failed bool
	shown  bool
}

func newCLISurface(cmd *cobra.Command) *cliSurface {
	p := surface.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	p.Progress = verbose
	return &cliSurface{Printer: p}
}

func (c *cliSurface) RenderResults(v surface.ResultsView) {
	c.mu.Lock()
	skip := c.once && c.shown
	c.shown = true
	c.mu.Unlock()
	if !skip {
		c.Printer.RenderResults(v)
	}
}

func (c *cliSurface) ShowError(msg string) {
	c.mark()
	c.Printer.ShowError(msg)
}

func (c *cliSurface) ShowPrompt(msg string) {
	c.mark()
	c.Printer.ShowPrompt(msg)
}

func (c *cliSurface) mark() {
	c.mu.Lock()
	c.failed = true
	c.mu.Unlock()
}

func (c *cliSurface) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed {
		return errReported
	}
	return nil
}
