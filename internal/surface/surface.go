// Package surface defines the rendering capability the exploration pipeline
// drives, and the serialized access every component renders through.
package surface

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/msalah0e/ontoscope/internal/graph"
	"github.com/msalah0e/ontoscope/internal/model"
)

// Surface is implemented by every front-end. Calls never overlap; they come
// from one Serial at a time. Implementations must not call back into the
// session synchronously.
type Surface interface {
	RenderResults(v ResultsView)
	RenderDetail(v model.ElementView)
	RenderGraph(g *graph.Model)
	ShowLoading()
	HideLoading()
	ShowError(msg string)
	ShowPrompt(msg string)
	SetQueryText(text string)
}

// ResultsState distinguishes a view that never searched from one whose
// search came back empty.
type ResultsState int

const (
	NotSearched ResultsState = iota
	Empty
	Populated
)

func (s ResultsState) String() string {
	switch s {
	case NotSearched:
		return "not-searched"
	case Empty:
		return "empty"
	default:
		return "populated"
	}
}

// ResultsView is an immutable snapshot of the results list.
type ResultsView struct {
	State    ResultsState
	Query    model.Query
	Results  []model.SearchResult
	Selected string
}

// SelectedIndex returns the position of the selected result, or -1.
func (v ResultsView) SelectedIndex() int {
	if v.Selected == "" {
		return -1
	}
	for i, r := range v.Results {
		if r.ElementName == v.Selected {
			return i
		}
	}
	return -1
}

// Find returns the result named name.
func (v ResultsView) Find(name string) (model.SearchResult, bool) {
	for _, r := range v.Results {
		if r.ElementName == name {
			return r, true
		}
	}
	return model.SearchResult{}, false
}

// Serial serializes access to a Surface. The decision to render (token
// checks, loading refcount) is taken inside the same Do as the render.
type Serial struct {
	mu sync.Mutex
	s  Surface
}

// NewSerial wraps s.
func NewSerial(s Surface) *Serial {
	return &Serial{s: s}
}

// Do runs fn with exclusive access to the surface. fn must not call Do.
func (x *Serial) Do(fn func(s Surface)) {
	x.mu.Lock()
	defer x.mu.Unlock()
	fn(x.s)
}

// Segment is a piece of context text, marked when it matches the element name.
type Segment struct {
	Text string
	Mark bool
}

// Highlight splits text around case-insensitive occurrences of term.
// Matching folds case rune by rune, so offsets stay on rune boundaries even
// when a case mapping changes the encoded length.
func Highlight(text, term string) []Segment {
	if term == "" || text == "" {
		return []Segment{{Text: text}}
	}
	n := utf8.RuneCountInString(term)

	var out []Segment
	plain := 0
	for i := 0; i < len(text); {
		end := i
		for k := 0; k < n && end < len(text); k++ {
			_, size := utf8.DecodeRuneInString(text[end:])
			end += size
		}
		if strings.EqualFold(text[i:end], term) {
			if plain < i {
				out = append(out, Segment{Text: text[plain:i]})
			}
			out = append(out, Segment{Text: text[i:end], Mark: true})
			i, plain = end, end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	if plain < len(text) {
		out = append(out, Segment{Text: text[plain:]})
	}
	return out
}
