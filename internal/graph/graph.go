package graph

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/msalah0e/ontoscope/internal/model"
)

// NodeID identifies a node. It is derived from the element name alone.
type NodeID string

// Node is one distinct element name in the graph.
type Node struct {
	ID    NodeID `json:"id"`
	Name  string `json:"name"`
	Focus bool   `json:"focus,omitempty"`
}

// Edge is one relation entry. Parallel edges between the same pair are kept.
type Edge struct {
	From  NodeID `json:"from"`
	To    NodeID `json:"to"`
	Label string `json:"label"`
}

// Model is the node/edge list handed to a rendering surface.
type Model struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	index map[NodeID]int
}

// Stats holds summary counts.
type Stats struct {
	Nodes int
	Edges int
	Types int
}

// ─── Identity ───

const idPrefix = "n_"

// IDFor maps a name to its node id. ASCII letters and digits are kept, every
// other rune (the underscore included) becomes _<hex codepoint>_, so two
// distinct names can never share an id. Case is preserved.
func IDFor(name string) NodeID {
	var b strings.Builder
	b.Grow(len(idPrefix) + len(name))
	b.WriteString(idPrefix)
	for _, r := range name {
		if isIDRune(r) {
			b.WriteRune(r)
			continue
		}
		fmt.Fprintf(&b, "_%x_", r)
	}
	return NodeID(b.String())
}

// ParseNodeID recovers the name an id was derived from.
func ParseNodeID(id NodeID) (string, error) {
	s := string(id)
	if !strings.HasPrefix(s, idPrefix) {
		return "", fmt.Errorf("node id %q: missing %q prefix", id, idPrefix)
	}
	s = s[len(idPrefix):]

	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		if c != '_' {
			if !isIDRune(rune(c)) {
				return "", fmt.Errorf("node id %q: unexpected byte %q", id, c)
			}
			b.WriteByte(c)
			i++
			continue
		}
		end := strings.IndexByte(s[i+1:], '_')
		if end <= 0 {
			return "", fmt.Errorf("node id %q: unterminated escape", id)
		}
		cp, err := strconv.ParseUint(s[i+1:i+1+end], 16, 32)
		if err != nil || !utf8.ValidRune(rune(cp)) {
			return "", fmt.Errorf("node id %q: bad escape %q", id, s[i+1:i+1+end])
		}
		b.WriteRune(rune(cp))
		i += end + 2
	}
	return b.String(), nil
}

func isIDRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// ─── Builder ───

// Build turns the focus element and its relations into a graph. Nodes appear
// in first-seen order starting with the focus; one edge per relation. The
// result depends only on the inputs.
func Build(focus model.ElementDetail, relations []model.Relation) *Model {
	g := &Model{
		Nodes: make([]Node, 0, 1+len(relations)),
		Edges: make([]Edge, 0, len(relations)),
		index: make(map[NodeID]int, 1+len(relations)),
	}
	g.add(focus.Name, true)

	for _, r := range relations {
		from := g.add(r.Source, false)
		to := g.add(r.Target, false)
		g.Edges = append(g.Edges, Edge{From: from, To: to, Label: r.Type})
	}
	return g
}

func (g *Model) add(name string, focus bool) NodeID {
	id := IDFor(name)
	if _, ok := g.index[id]; ok {
		return id
	}
	g.index[id] = len(g.Nodes)
	g.Nodes = append(g.Nodes, Node{ID: id, Name: name, Focus: focus})
	return id
}

// ─── Queries ───

// Node returns the node with the given id.
func (g *Model) Node(id NodeID) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	if g.index == nil {
		for _, n := range g.Nodes {
			if n.ID == id {
				return n, true
			}
		}
		return Node{}, false
	}
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// NameOf is the click-to-name lookup for rendering surfaces.
func (g *Model) NameOf(id NodeID) (string, bool) {
	n, ok := g.Node(id)
	return n.Name, ok
}

// Focus returns the focus node.
func (g *Model) Focus() (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	for _, n := range g.Nodes {
		if n.Focus {
			return n, true
		}
	}
	return Node{}, false
}

// Outgoing returns edges leaving id, in relation order.
func (g *Model) Outgoing(id NodeID) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// Incoming returns edges entering id, in relation order.
func (g *Model) Incoming(id NodeID) []Edge {
	var in []Edge
	for _, e := range g.Edges {
		if e.To == id {
			in = append(in, e)
		}
	}
	return in
}

// GetStats returns summary counts.
func (g *Model) GetStats() Stats {
	labels := make(map[string]bool)
	for _, e := range g.Edges {
		labels[e.Label] = true
	}
	return Stats{Nodes: len(g.Nodes), Edges: len(g.Edges), Types: len(labels)}
}

func (g *Model) reindex() {
	g.index = make(map[NodeID]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.index[n.ID] = i
	}
}

// ─── Export ───

// JSON returns the graph as pretty-printed JSON.
func (g *Model) JSON() ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// DOT returns the graph in Graphviz DOT format.
func (g *Model) DOT() string {
	var b strings.Builder
	b.WriteString("digraph ontoscope {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded];\n\n")

	for _, n := range g.Nodes {
		if n.Focus {
			b.WriteString(fmt.Sprintf("  %s [label=%q, style=\"rounded,filled\", fillcolor=\"#fed9a6\"];\n", n.ID, n.Name))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s [label=%q];\n", n.ID, n.Name))
	}

	b.WriteString("\n")
	for _, e := range g.Edges {
		b.WriteString(fmt.Sprintf("  %s -> %s [label=%q];\n", e.From, e.To, e.Label))
	}

	b.WriteString("}\n")
	return b.String()
}

// Mermaid returns the graph as a Mermaid flowchart.
func (g *Model) Mermaid() string {
	var b strings.Builder
	b.WriteString("flowchart LR\n")

	for _, n := range g.Nodes {
		b.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", n.ID, mermaidEscape(n.Name)))
	}
	for _, e := range g.Edges {
		if e.Label == "" {
			b.WriteString(fmt.Sprintf("  %s --> %s\n", e.From, e.To))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s -->|\"%s\"| %s\n", e.From, mermaidEscape(e.Label), e.To))
	}
	if focus, ok := g.Focus(); ok {
		b.WriteString("  classDef focus fill:#fed9a6,stroke:#333,stroke-width:2px\n")
		b.WriteString(fmt.Sprintf("  class %s focus\n", focus.ID))
	}
	return b.String()
}

func mermaidEscape(s string) string {
	return strings.NewReplacer(`"`, "#quot;", "<", "#lt;", ">", "#gt;").Replace(s)
}

// ─── Visualization ───

// RenderTree produces a terminal tree view of the focus and its connections:
// incoming relations above the focus, outgoing below, and edges between two
// other nodes at the end.
func RenderTree(g *Model, brandFn, subtleFn, infoFn func(string) string) string {
	focus, ok := g.Focus()
	if !ok {
		return ""
	}

	var b strings.Builder

	incoming := g.Incoming(focus.ID)
	outgoing := g.Outgoing(focus.ID)

	for i, e := range incoming {
		if e.From == focus.ID {
			continue
		}
		prefix := "  ├── "
		if i == len(incoming)-1 && len(outgoing) == 0 {
			prefix = "  └── "
		}
		name, _ := g.NameOf(e.From)
		b.WriteString(fmt.Sprintf("%s%s %s %s\n", prefix, brandFn(name), subtleFn("──"), subtleFn(e.Label)))
		b.WriteString("  │\n")
	}

	b.WriteString(fmt.Sprintf("  ● %s\n", brandFn(focus.Name)))

	if len(outgoing) > 0 {
		b.WriteString("  │\n")
	}
	for i, e := range outgoing {
		prefix := "  ├── "
		if i == len(outgoing)-1 {
			prefix = "  └── "
		}
		name, _ := g.NameOf(e.To)
		b.WriteString(fmt.Sprintf("%s%s %s %s\n", prefix, subtleFn(e.Label), subtleFn("──"), brandFn(name)))
	}

	var others []Edge
	for _, e := range g.Edges {
		if e.From != focus.ID && e.To != focus.ID {
			others = append(others, e)
		}
	}
	if len(others) > 0 {
		b.WriteString("\n")
		for _, e := range others {
			from, _ := g.NameOf(e.From)
			to, _ := g.NameOf(e.To)
			b.WriteString(fmt.Sprintf("  %s %s %s\n", infoFn(from), subtleFn("─"+e.Label+"→"), infoFn(to)))
		}
	}

	return b.String()
}
