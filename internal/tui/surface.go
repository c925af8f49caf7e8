package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/msalah0e/ontoscope/internal/graph"
	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/surface"
)

// Messages carrying surface calls into the bubbletea event loop.
type (
	resultsMsg   struct{ view surface.ResultsView }
	detailMsg    struct{ view model.ElementView }
	graphMsg     struct{ graph *graph.Model }
	loadingMsg   struct{ on bool }
	errorMsg     struct{ text string }
	promptMsg    struct{ text string }
	queryTextMsg struct{ text string }
)

// Sender delivers messages to a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Surface forwards every call to the program as a message, so rendering
// always happens on the event loop.
type Surface struct {
	mu     sync.Mutex
	sender Sender
}

// NewSurface returns a Surface that drops calls until Attach.
func NewSurface() *Surface {
	return &Surface{}
}

// Attach starts delivering to s.
func (x *Surface) Attach(s Sender) {
	x.mu.Lock()
	x.sender = s
	x.mu.Unlock()
}

func (x *Surface) send(msg tea.Msg) {
	x.mu.Lock()
	s := x.sender
	x.mu.Unlock()
	if s != nil {
		s.Send(msg)
	}
}

func (x *Surface) RenderResults(v surface.ResultsView) { x.send(resultsMsg{v}) }
func (x *Surface) RenderDetail(v model.ElementView) { x.send(detailMsg{v}) }
func (x *Surface) RenderGraph(g *graph.Model) { x.send(graphMsg{g}) }
func (x *Surface) ShowLoading() { x.send(loadingMsg{true}) }
func (x *Surface) HideLoading() { x.send(loadingMsg{false}) }
func (x *Surface) ShowError(msg string) { x.send(errorMsg{msg}) }
func (x *Surface) ShowPrompt(msg string) { x.send(promptMsg{msg}) }
func (x *Surface) SetQueryText(text string) { x.send(queryTextMsg{text}) }
