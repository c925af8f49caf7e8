// Package navigate turns activated graph nodes and highlighted terms back
// into searches.
package navigate

import (
	"html"
	"regexp"
	"strings"

	"github.com/msalah0e/ontoscope/internal/graph"
	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/state"
	"github.com/msalah0e/ontoscope/internal/surface"
)

// Submitter dispatches a query immediately.
type Submitter interface {
	SubmitNow(q model.Query)
}

var (
	breakTag = regexp.MustCompile(`(?i)<br\s*/?>`)
	anyTag   = regexp.MustCompile(`<[^>]*>`)
)

// trimSet is stripped from both ends of an activated term.
const trimSet = " \t\r\n\"'`“”‘’«»()[]{}<>"

// CleanTerm extracts a searchable name from an activated label: markup is
// removed, line breaks (<br> or a literal \n) split the label and the first
// non-empty line is kept without surrounding quotes or brackets.
func CleanTerm(raw string) string {
	s := breakTag.ReplaceAllString(raw, "\n")
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	for _, line := range strings.Split(s, "\n") {
		if name := strings.Trim(line, trimSet); name != "" {
			return strings.Join(strings.Fields(name), " ")
		}
	}
	return ""
}

// Loop re-enters the query controller from activations.
type Loop struct {
	st  *state.UIState
	ser *surface.Serial
	sub Submitter
}

// New returns a Loop submitting through sub.
func New(st *state.UIState, ser *surface.Serial, sub Submitter) *Loop {
	return &Loop{st: st, ser: ser, sub: sub}
}

// OnTermActivated searches for the term in raw, keeping the current filters.
// It reports false, doing nothing, when raw holds no name.
func (l *Loop) OnTermActivated(raw string) bool {
	name := CleanTerm(raw)
	if name == "" {
		return false
	}
	q := l.st.Query().WithText(name)
	l.ser.Do(func(s surface.Surface) {
		s.SetQueryText(name)
	})
	l.sub.SubmitNow(q)
	return true
}

// OnNodeActivated searches for the element behind a graph node.
func (l *Loop) OnNodeActivated(g *graph.Model, id graph.NodeID) bool {
	if g == nil {
		return false
	}
	name, ok := g.NameOf(id)
	if !ok {
		return false
	}
	return l.OnTermActivated(name)
}
