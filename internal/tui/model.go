// Package tui is the interactive terminal explorer.
//
// The bubbletea Model owns everything on screen. Session calls run one at a
// time on a queue the model owns, in the order Update issued them, so the
// event loop never waits on the session. The session's renders come back as
// messages through Surface.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msalah0e/ontoscope/internal/graph"
	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/overlay"
	"github.com/msalah0e/ontoscope/internal/surface"
	"github.com/msalah0e/ontoscope/internal/ui"
)

// Explorer is the session API the explorer drives.
type Explorer interface {
	PerformSearch(text string)
	Type(text string)
	SelectIndex(i int) error
	NextPage() bool
	PrevPage() bool
	ActivateTerm(raw string) bool
	ActivateNode(id string) bool
	Overlay() *overlay.Overlay
}

type focusArea int

const (
	focusInput focusArea = iota
	focusResults
	focusTerms
)

const (
	listWidth    = 34
	headerHeight = 2
	footerHeight = 2
)

// term is an activatable label in the detail pane: a graph node or a
// highlighted context element.
type term struct {
	label string
	node  graph.NodeID
}

// Options configures the explorer.
type Options struct {
	InitialQuery string
	Emoji        bool
}

// Model is the bubbletea model of the explorer.
type Model struct {
	sess  Explorer
	opts  Options
	calls *callQueue

	input textinput.Model
	spin  spinner.Model
	vp    viewport.Model

	width, height int
	ready         bool
	focus         focusArea

	results surface.ResultsView
	cursor  int

	detail  *model.ElementView
	graph   *graph.Model
	terms    []term
	termIdx  int
	termsFor string // element and graph focus the terms were built for

	hovering bool // overlay shown by the mouse

	loading bool
	status  string
	isError bool

	lastTyped string
	quitting  bool
}

// New returns the explorer model for sess.
func New(sess Explorer, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "search elements"
	ti.Prompt = "› "
	ti.CharLimit = 256
	ti.Width = 40
	ti.SetValue(opts.InitialQuery)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		sess:      sess,
		opts:      opts,
		calls:     newCallQueue(),
		input:     ti,
		spin:      sp,
		lastTyped: opts.InitialQuery,
	}
}

// Close stops the session call queue once queued calls have run.
func (m Model) Close() {
	m.calls.close()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if q := strings.TrimSpace(m.opts.InitialQuery); q != "" {
		cmds = append(cmds, m.search(q))
	}
	return tea.Batch(cmds...)
}

// ─── Session commands ───

func (m Model) search(text string) tea.Cmd {
	sess := m.sess
	return m.calls.push(func() tea.Msg {
		sess.PerformSearch(text)
		return nil
	})
}

func (m Model) typed(text string) tea.Cmd {
	sess := m.sess
	return m.calls.push(func() tea.Msg {
		sess.Type(text)
		return nil
	})
}

func (m Model) selectIndex(i int) tea.Cmd {
	sess := m.sess
	return m.calls.push(func() tea.Msg {
		if err := sess.SelectIndex(i); err != nil {
			return errorMsg{err.Error()}
		}
		return nil
	})
}

func (m Model) page(next bool) tea.Cmd {
	sess := m.sess
	return m.calls.push(func() tea.Msg {
		var ok bool
		if next {
			ok = sess.NextPage()
		} else {
			ok = sess.PrevPage()
		}
		if !ok {
			return promptMsg{"No other page."}
		}
		return nil
	})
}

func (m Model) activate(t term) tea.Cmd {
	sess := m.sess
	return m.calls.push(func() tea.Msg {
		if t.node != "" {
			sess.ActivateNode(string(t.node))
		} else {
			sess.ActivateTerm(t.label)
		}
		return nil
	})
}

// ─── Update ───

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case resultsMsg:
		m.results = msg.view
		m.cursor = 0
		if i := msg.view.SelectedIndex(); i >= 0 {
			m.cursor = i
		}
		m.sess.Overlay().Hide()
		m.hovering = false
		return m, nil

	case detailMsg:
		v := msg.view
		if m.detail == nil || m.detail.Detail.Name != v.Detail.Name {
			m.graph = nil
		}
		m.detail = &v
		m.rebuildTerms()
		m.refreshDetail()
		return m, nil

	case graphMsg:
		m.graph = msg.graph
		m.rebuildTerms()
		m.refreshDetail()
		return m, nil

	case loadingMsg:
		m.loading = msg.on
		if msg.on {
			m.status = ""
			return m, m.spin.Tick
		}
		return m, nil

	case errorMsg:
		m.status, m.isError = msg.text, true
		return m, nil

	case promptMsg:
		m.status, m.isError = msg.text, false
		return m, nil

	case queryTextMsg:
		m.input.SetValue(msg.text)
		m.input.CursorEnd()
		m.lastTyped = msg.text
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		m.hover(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		m.setFocus((m.focus + 1) % 3)
		return m, nil
	case "shift+tab":
		m.setFocus((m.focus + 2) % 3)
		return m, nil
	case "esc":
		m.sess.Overlay().Hide()
		m.status = ""
		return m, nil
	}

	switch m.focus {
	case focusResults:
		return m.handleResultsKey(msg)
	case focusTerms:
		return m.handleTermsKey(msg)
	}

	if msg.Type == tea.KeyEnter {
		return m, m.search(m.input.Value())
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != m.lastTyped {
		m.lastTyped = v
		return m, tea.Batch(cmd, m.typed(v))
	}
	return m, cmd
}

func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.results.Results)
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.followCursor()
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
			m.followCursor()
		}
	case "enter":
		if n > 0 {
			return m, m.selectIndex(m.cursor)
		}
	case "n", "right":
		return m, m.page(true)
	case "p", "left":
		return m, m.page(false)
	case "i":
		m.toggleOverlay()
	}
	return m, nil
}

func (m Model) handleTermsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "right", "l", "down", "j":
		if len(m.terms) > 0 {
			m.termIdx = (m.termIdx + 1) % len(m.terms)
			m.refreshDetail()
		}
		return m, nil
	case "left", "h", "up", "k":
		if len(m.terms) > 0 {
			m.termIdx = (m.termIdx + len(m.terms) - 1) % len(m.terms)
			m.refreshDetail()
		}
		return m, nil
	case "enter":
		if m.termIdx < len(m.terms) {
			return m, m.activate(m.terms[m.termIdx])
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	if f != focusResults {
		m.sess.Overlay().Hide()
	}
	m.refreshDetail()
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	paneW := w - listWidth - 3
	if paneW < 10 {
		paneW = 10
	}
	paneH := h - headerHeight - footerHeight
	if paneH < 3 {
		paneH = 3
	}
	if !m.ready {
		m.vp = viewport.New(paneW, paneH)
		m.ready = true
	} else {
		m.vp.Width = paneW
		m.vp.Height = paneH
	}
	m.input.Width = w - 12
	m.sess.Overlay().Resize(overlay.Size{W: w, H: h})
	m.refreshDetail()
}

// anchor is the screen cell right after the result under the cursor.
func (m Model) anchor() overlay.Point {
	name := ""
	if m.cursor < len(m.results.Results) {
		name = m.results.Results[m.cursor].ElementName
	}
	x := 4 + lipgloss.Width(ui.Truncate(name, listWidth-4))
	return overlay.Point{X: x, Y: headerHeight + m.cursor}
}

func (m *Model) followCursor() {
	ov := m.sess.Overlay()
	if cur := ov.Current(); cur.Visible {
		m.showOverlay()
	}
}

func (m *Model) toggleOverlay() {
	m.hovering = false
	if m.sess.Overlay().Current().Visible {
		m.sess.Overlay().Hide()
		return
	}
	m.showOverlay()
}

func (m *Model) showOverlay() {
	if m.cursor >= len(m.results.Results) {
		return
	}
	r := m.results.Results[m.cursor]
	if r.Source == nil {
		m.sess.Overlay().Hide()
		m.status, m.isError = "No source metadata for "+r.ElementName+".", false
		return
	}
	m.sess.Overlay().Show(r.ElementName, m.anchor(), *r.Source)
}

// hover shows the source metadata of the result under the pointer and keeps
// the box next to the pointer while it moves over the same result.
func (m *Model) hover(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionMotion {
		return
	}
	ov := m.sess.Overlay()
	row := msg.Y - headerHeight
	var r *model.SearchResult
	if msg.X < listWidth && row >= 0 && row < len(m.results.Results) {
		r = &m.results.Results[row]
	}
	if r == nil || r.Source == nil {
		if m.hovering {
			ov.Hide()
			m.hovering = false
		}
		return
	}

	at := overlay.Point{X: msg.X, Y: msg.Y}
	if cur := ov.Current(); cur.Visible && cur.Target == r.ElementName {
		ov.Reposition(at)
	} else {
		ov.Show(r.ElementName, at, *r.Source)
	}
	m.hovering = true
}

// rebuildTerms keeps the selected term only while the terms describe the
// same element and graph.
func (m *Model) rebuildTerms() {
	var current string
	if m.termIdx < len(m.terms) {
		current = m.terms[m.termIdx].label
	}
	key := m.termsKey()
	if key != m.termsFor {
		current = ""
	}
	m.termsFor = key
	m.terms = nil
	seen := map[string]bool{}

	if m.graph != nil {
		for _, n := range m.graph.Nodes {
			if n.Focus || seen[n.Name] {
				continue
			}
			seen[n.Name] = true
			m.terms = append(m.terms, term{label: n.Name, node: n.ID})
		}
	}
	if m.detail != nil {
		for _, c := range m.detail.Detail.Contexts {
			if c.Element == "" || seen[c.Element] || c.Element == m.detail.Detail.Name {
				continue
			}
			seen[c.Element] = true
			m.terms = append(m.terms, term{label: c.Element})
		}
	}

	m.termIdx = 0
	for i, t := range m.terms {
		if t.label == current {
			m.termIdx = i
		}
	}
}

func (m *Model) termsKey() string {
	var key string
	if m.detail != nil {
		key = m.detail.Detail.Name
	}
	if m.graph != nil {
		if f, ok := m.graph.Focus(); ok {
			key += "\x00" + f.Name
		}
	}
	return key
}

func (m *Model) refreshDetail() {
	if !m.ready {
		return
	}
	m.vp.SetContent(renderDetail(m.detail, m.graph, m.terms, m.termIdx, m.focus == focusTerms, m.vp.Width))
}

// ─── View ───

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Width(listWidth).Height(m.vp.Height).Render(m.renderList()),
		" ",
		m.vp.View(),
	)
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	screen := b.String()
	if p := m.sess.Overlay().Current(); p.Visible {
		screen = placeOverlay(screen, renderOverlay(p), p.X, p.Y)
	}
	return screen
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("ontoscope")
	if m.opts.Emoji {
		title = "🔭 " + title
	}
	spin := " "
	if m.loading {
		spin = m.spin.View()
	}
	return fmt.Sprintf("%s %s %s\n", title, spin, m.input.View())
}

func (m Model) renderList() string {
	v := m.results
	switch v.State {
	case surface.NotSearched:
		return subtleStyle.Render("Type to search.")
	case surface.Empty:
		return subtleStyle.Render(fmt.Sprintf("No results for %q.", v.Query.Text))
	}

	var b strings.Builder
	for i, r := range v.Results {
		name := ui.Truncate(r.ElementName, listWidth-4)
		prefix := "  "
		if i == m.cursor && m.focus == focusResults {
			prefix = cursorStyle.Render("› ")
		}
		switch {
		case r.ElementName == v.Selected:
			name = selectedStyle.Render("● " + name)
		default:
			name = "  " + name
		}
		b.WriteString(prefix + name + "\n")
	}
	b.WriteString(subtleStyle.Render(fmt.Sprintf("\npage %d · %d result(s)", v.Query.Page, len(v.Results))))
	return b.String()
}

func (m Model) renderFooter() string {
	line := ""
	switch {
	case m.status != "" && m.isError:
		line = errorStyle.Render(m.status)
	case m.status != "":
		line = promptStyle.Render(m.status)
	}

	var help string
	switch m.focus {
	case focusInput:
		help = "enter search · tab results · ctrl+c quit"
	case focusResults:
		help = "↑/↓ move · enter open · n/p page · i source · tab terms · q quit"
	case focusTerms:
		help = "←/→ term · enter search term · pgup/pgdn scroll · tab input · q quit"
	}
	return line + "\n" + helpStyle.Render(help)
}
