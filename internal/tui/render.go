package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/msalah0e/ontoscope/internal/graph"
	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/overlay"
	"github.com/msalah0e/ontoscope/internal/surface"
)

// renderDetail draws the detail pane: header, description, contexts with the
// element name highlighted, the relation tree and the activatable terms.
func renderDetail(v *model.ElementView, g *graph.Model, terms []term, active int, termsFocused bool, width int) string {
	if v == nil {
		return subtleStyle.Render("Select a result to see its detail.")
	}
	d := v.Detail

	var b strings.Builder
	b.WriteString(titleStyle.Render(d.Name))
	if d.Type != "" {
		b.WriteString(" " + subtleStyle.Render("("+d.Type+")"))
	}
	b.WriteString("\n")
	if d.Description != "" {
		b.WriteString(lipgloss.NewStyle().Width(width).Render(d.Description))
		b.WriteString("\n")
	}

	if len(d.Contexts) > 0 {
		b.WriteString("\n" + cursorStyle.Render("Contexts") + "\n")
		for _, c := range d.Contexts {
			line := fmt.Sprintf("%s %s %s %s",
				subtleStyle.Render(fmt.Sprintf("%5d", c.Position)),
				highlight(strings.Join(c.Before, " "), d.Name),
				markStyle.Render("["+c.Element+"]"),
				highlight(strings.Join(c.After, " "), d.Name))
			b.WriteString(lipgloss.NewStyle().Width(width).Render(line))
			b.WriteString("\n")
		}
	}

	if g != nil {
		b.WriteString("\n" + cursorStyle.Render("Relations") + "\n")
		if len(g.Edges) == 0 {
			b.WriteString(subtleStyle.Render("No relations.") + "\n")
		} else {
			b.WriteString(graph.RenderTree(g,
				func(s string) string { return termStyle.Render(s) },
				func(s string) string { return subtleStyle.Render(s) },
				func(s string) string { return selectedStyle.Render(s) },
			))
		}
	}

	if len(terms) > 0 {
		b.WriteString("\n" + cursorStyle.Render("Explore") + "\n")
		parts := make([]string, len(terms))
		for i, t := range terms {
			if termsFocused && i == active {
				parts[i] = activeTermStyle.Render(t.label)
			} else {
				parts[i] = termStyle.Render(t.label)
			}
		}
		b.WriteString(lipgloss.NewStyle().Width(width).Render(strings.Join(parts, "  ")))
		b.WriteString("\n")
	}
	return b.String()
}

func highlight(text, name string) string {
	var b strings.Builder
	for _, seg := range surface.Highlight(text, name) {
		if seg.Mark {
			b.WriteString(markStyle.Render(seg.Text))
		} else {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// renderOverlay draws the metadata box sized to the placement.
func renderOverlay(p overlay.Placement) string {
	innerW := p.Size.W - 4 // border and padding
	if innerW < 8 {
		innerW = 8
	}
	var lines []string
	lines = append(lines, titleStyle.Render(ansi.Truncate(p.Target, innerW, "…")))
	for _, kv := range p.Metadata.Lines() {
		line := fmt.Sprintf("%s %s", subtleStyle.Render(kv[0]+":"), kv[1])
		lines = append(lines, ansi.Truncate(line, innerW, "…"))
	}
	if maxLines := p.Size.H - 2; maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return overlayStyle.Width(innerW + 2).Render(strings.Join(lines, "\n"))
}

// placeOverlay draws box over base with its top-left cell at (x, y). Rows
// under the box lose their styling outside it.
func placeOverlay(base, box string, x, y int) string {
	baseLines := strings.Split(base, "\n")
	boxLines := strings.Split(box, "\n")

	for i, bl := range boxLines {
		row := y + i
		if row < 0 || row >= len(baseLines) {
			continue
		}
		plain := []rune(ansi.Strip(baseLines[row]))
		for len(plain) < x {
			plain = append(plain, ' ')
		}
		w := ansi.StringWidth(bl)
		var rest string
		if x+w < len(plain) {
			rest = string(plain[x+w:])
		}
		baseLines[row] = string(plain[:x]) + bl + rest
	}
	return strings.Join(baseLines, "\n")
}
