package surface

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/msalah0e/ontoscope/internal/graph"
	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/ui"
)

// GraphFormat selects how a Printer writes the relation graph.
type GraphFormat string

const (
	GraphTree    GraphFormat = "tree"
	GraphDOT     GraphFormat = "dot"
	GraphMermaid GraphFormat = "mermaid"
	GraphJSON    GraphFormat = "json"
	GraphNone    GraphFormat = "none"
)

// ParseGraphFormat validates a --format value.
func ParseGraphFormat(s string) (GraphFormat, error) {
	switch f := GraphFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case GraphTree, GraphDOT, GraphMermaid, GraphJSON, GraphNone:
		return f, nil
	case "":
		return GraphTree, nil
	default:
		return "", fmt.Errorf("unknown graph format %q (want tree, dot, mermaid or json)", s)
	}
}

// Printer is the line-oriented Surface used by one-shot commands.
type Printer struct {
	Out      io.Writer
	Err      io.Writer
	Graph    GraphFormat
	Detail   bool // print the detail pane
	Contexts int  // contexts shown per element, 0 = all
	Progress bool // report loading on Err
}

// NewPrinter returns a Printer writing results and detail to out and
// diagnostics to errOut.
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{Out: out, Err: errOut, Graph: GraphTree, Detail: true}
}

func (p *Printer) RenderResults(v ResultsView) {
	switch v.State {
	case NotSearched:
		return
	case Empty:
		fmt.Fprintf(p.Out, "  %s\n", ui.Subtle.Sprintf("No results for %q.", v.Query.Text))
		return
	}

	rows := make([][]string, len(v.Results))
	for i, r := range v.Results {
		marker := strconv.Itoa(i + 1)
		if r.ElementName == v.Selected {
			marker = "›"
		}
		rows[i] = []string{marker, r.ElementName, r.ElementType, ui.Truncate(r.Description, 60)}
	}
	ui.FTable(p.Out, []string{"#", "ELEMENT", "TYPE", "DESCRIPTION"}, rows)
	fmt.Fprintf(p.Out, "\n  %s\n", ui.Subtle.Sprintf("page %d · %d result(s) for %q", v.Query.Page, len(v.Results), v.Query.Text))
}

func (p *Printer) RenderDetail(v model.ElementView) {
	if !p.Detail {
		return
	}
	d := v.Detail
	fmt.Fprintf(p.Out, "  %s", ui.Brand.Sprint(d.Name))
	if d.Type != "" {
		fmt.Fprintf(p.Out, " %s", ui.Subtle.Sprintf("(%s)", d.Type))
	}
	fmt.Fprintln(p.Out)
	if d.Description != "" {
		fmt.Fprintf(p.Out, "  %s\n", d.Description)
	}
	if len(d.Positions) > 0 {
		pos := make([]string, len(d.Positions))
		for i, n := range d.Positions {
			pos[i] = strconv.Itoa(n)
		}
		fmt.Fprintf(p.Out, "  %s %s\n", ui.Subtle.Sprint("positions"), strings.Join(pos, ", "))
	}

	contexts := d.Contexts
	if p.Contexts > 0 && len(contexts) > p.Contexts {
		contexts = contexts[:p.Contexts]
	}
	if len(contexts) > 0 {
		fmt.Fprintf(p.Out, "\n  %s\n", ui.Info.Sprint("Contexts"))
		for _, c := range contexts {
			fmt.Fprintf(p.Out, "  %s %s %s %s\n",
				ui.Subtle.Sprintf("%5d", c.Position),
				p.marked(strings.Join(c.Before, " "), d.Name),
				ui.Warn.Sprintf("[%s]", c.Element),
				p.marked(strings.Join(c.After, " "), d.Name))
		}
		if hidden := len(d.Contexts) - len(contexts); hidden > 0 {
			fmt.Fprintf(p.Out, "  %s\n", ui.Subtle.Sprintf("… %d more", hidden))
		}
	}

	if v.Source != nil {
		fmt.Fprintf(p.Out, "\n  %s\n", ui.Info.Sprint("Source"))
		for _, line := range v.Source.Lines() {
			fmt.Fprintf(p.Out, "  %-14s %s\n", ui.Subtle.Sprint(line[0]), line[1])
		}
	}
	fmt.Fprintln(p.Out)
}

func (p *Printer) marked(text, term string) string {
	var b strings.Builder
	for _, seg := range Highlight(text, term) {
		if seg.Mark {
			b.WriteString(ui.Warn.Sprint(seg.Text))
		} else {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

func (p *Printer) RenderGraph(g *graph.Model) {
	switch p.Graph {
	case GraphNone:
	case GraphDOT:
		fmt.Fprint(p.Out, g.DOT())
	case GraphMermaid:
		fmt.Fprint(p.Out, g.Mermaid())
	case GraphJSON:
		data, err := g.JSON()
		if err != nil {
			p.ShowError(err.Error())
			return
		}
		fmt.Fprintln(p.Out, string(data))
	default:
		if len(g.Edges) == 0 {
			fmt.Fprintf(p.Out, "  %s\n", ui.Subtle.Sprint("No relations."))
			return
		}
		fmt.Fprintf(p.Out, "  %s\n", ui.Info.Sprint("Relations"))
		fmt.Fprint(p.Out, graph.RenderTree(g,
			func(s string) string { return ui.Brand.Sprint(s) },
			func(s string) string { return ui.Subtle.Sprint(s) },
			func(s string) string { return ui.Info.Sprint(s) },
		))
		st := g.GetStats()
		fmt.Fprintf(p.Out, "  %s\n", ui.Subtle.Sprintf("%d node(s) · %d relation(s) · %d relation type(s)", st.Nodes, st.Edges, st.Types))
	}
}

func (p *Printer) ShowLoading() {
	if p.Progress {
		fmt.Fprintf(p.Err, "  %s\n", ui.Subtle.Sprint("loading…"))
	}
}

func (p *Printer) HideLoading() {}

func (p *Printer) ShowError(msg string) {
	fmt.Fprintf(p.Err, "  %s %s\n", ui.StatusIcon(false), ui.Bad.Sprint(msg))
}

func (p *Printer) ShowPrompt(msg string) {
	fmt.Fprintf(p.Err, "  %s %s\n", ui.WarnIcon(), msg)
}

func (p *Printer) SetQueryText(text string) {
	if p.Progress {
		fmt.Fprintf(p.Err, "  %s %s\n", ui.Subtle.Sprint("search"), text)
	}
}
