package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"github.com/nutcas3/api-docs-tui/internal/apidoc"
)

type rowKind int

const (
	rowHeader rowKind = iota
	rowRequests
	rowResponses
)

// row is one cursor stop: a section header or one of its tab bars.
type row struct {
	section int
	kind    rowKind
}

// zoneTarget is what a mouse click on a marked zone activates.
type zoneTarget struct {
	section int
	bar     *tabBar
	key     string
}

type docChangedMsg struct{}

type watchErrMsg struct{ err error }

type Options struct {
	DocPath string
	Watcher *apidoc.Watcher
}

type Model struct {
	view          *docView
	docPath       string
	watcher       *apidoc.Watcher
	configManager *ConfigManager
	log           *zap.Logger
	client        *http.Client

	styles   Styles
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	filter   textinput.Model
	zones    *zone.Manager
	zoneID   string

	markdown      *glamour.TermRenderer
	markdownWidth int
	markdownCache map[string]string

	visible     []int
	rows        []row
	rowLines    []int
	zoneTargets map[string]zoneTarget
	cursor      int

	filtering   bool
	sending     string
	status      string
	statusErr   bool
	width       int
	height      int
	showHelp    bool
	showHistory bool
}

func newModel(doc *apidoc.Document, cm *ConfigManager, log *zap.Logger, opts Options) (Model, error) {
	theme := "mocha"
	expanded := false
	if cm != nil {
		theme = cm.Config.Theme
		expanded = cm.Config.StartExpanded
	}
	if log == nil {
		log = zap.NewNop()
	}

	view, err := buildDocView(doc, expanded)
	if err != nil {
		return Model{}, err
	}

	styles := NewStyles(theme)

	filter := textinput.New()
	filter.Prompt = "/"
	filter.Placeholder = "filter endpoints"

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Status

	h := help.New()
	h.Styles.ShortDesc = styles.Help
	h.Styles.FullDesc = styles.Help
	h.Styles.ShortSeparator = styles.Help
	h.Styles.FullSeparator = styles.Help

	zones := zone.New()

	m := Model{
		view:          view,
		docPath:       opts.DocPath,
		watcher:       opts.Watcher,
		configManager: cm,
		log:           log,
		client:        newHTTPClient(cm),
		styles:        styles,
		viewport:      viewport.New(0, 0),
		spinner:       s,
		help:          h,
		filter:        filter,
		zones:         zones,
		zoneID:        zones.NewPrefix(),
		markdownCache: make(map[string]string),
	}
	m.applyFilter()
	m.log.Info("document opened",
		zap.String("title", doc.Title),
		zap.Int("endpoints", len(doc.Endpoints)),
		zap.Int("groups", len(view.selector.IDs())))
	return m, nil
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return waitForChange(m.watcher)
	}
	return nil
}

func waitForChange(w *apidoc.Watcher) tea.Cmd {
	return func() tea.Msg {
		if err := w.Wait(context.Background()); err != nil {
			return watchErrMsg{err: err}
		}
		return docChangedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width

	case tea.KeyMsg:
		if m.filtering {
			cmd = m.updateFilter(msg)
			cmds = append(cmds, cmd)
			break
		}
		quit, keyCmd := m.handleKey(msg)
		if quit {
			return m, keyCmd
		}
		cmds = append(cmds, keyCmd)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
			m.handleClick(msg)
		}
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	case Response:
		m.handleResponse(msg)

	case docChangedMsg:
		m.reload()
		if m.watcher != nil {
			cmds = append(cmds, waitForChange(m.watcher))
		}

	case watchErrMsg:
		m.log.Warn("watch stopped", zap.Error(msg.err))
		m.setError(fmt.Sprintf("watch stopped: %v", msg.err))

	case spinner.TickMsg:
		if m.sending != "" {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.refresh()
	return m, tea.Batch(cmds...)
}

// handleKey dispatches a key press outside filter mode. quit is true when
// the returned command ends the program.
func (m *Model) handleKey(msg tea.KeyMsg) (quit bool, cmd tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		if m.watcher != nil {
			_ = m.watcher.Close()
		}
		return true, tea.Quit

	case key.Matches(msg, keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, keys.Tab):
		m.jumpSection(1)

	case key.Matches(msg, keys.ShiftTab):
		m.jumpSection(-1)

	case key.Matches(msg, keys.Toggle):
		if r, ok := m.currentRow(); ok {
			m.toggleSection(r.section)
		}

	case key.Matches(msg, keys.ToggleAll):
		m.toggleAll()

	case key.Matches(msg, keys.Left):
		m.stepTab(-1)

	case key.Matches(msg, keys.Right):
		m.stepTab(1)

	case key.Matches(msg, keys.Pick):
		n, _ := strconv.Atoi(msg.String())
		m.pickTab(n - 1)

	case key.Matches(msg, keys.Filter):
		m.filtering = true
		return false, m.filter.Focus()

	case key.Matches(msg, keys.ClearInput):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.applyFilter()
		}

	case key.Matches(msg, keys.Send):
		return false, m.trySend()

	case key.Matches(msg, keys.Copy):
		m.copyExample()

	case key.Matches(msg, keys.NextEnv):
		m.nextEnv()

	case key.Matches(msg, keys.History):
		m.showHistory = !m.showHistory

	case key.Matches(msg, keys.ToggleHelp):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp

	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return false, cmd
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return nil
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return cmd
}

// applyFilter recomputes which sections are listed. Matches keep fuzzy
// score order; an empty query lists everything in document order.
func (m *Model) applyFilter() {
	query := strings.TrimSpace(m.filter.Value())
	m.visible = nil
	if query == "" {
		for i := range m.view.sections {
			m.visible = append(m.visible, i)
		}
	} else {
		titles := make([]string, len(m.view.sections))
		for i, s := range m.view.sections {
			titles[i] = s.endpoint.Title() + " " + s.endpoint.ID
		}
		for _, match := range fuzzy.Find(query, titles) {
			m.visible = append(m.visible, match.Index)
		}
	}
	m.rows = nil
	m.cursor = 0
	m.buildRows()
}

// buildRows recomputes the cursor stops, keeping the cursor on the same row
// when that row still exists.
func (m *Model) buildRows() {
	prev, had := m.currentRow()
	m.rows = nil
	for _, si := range m.visible {
		m.rows = append(m.rows, row{section: si, kind: rowHeader})
		if m.view.sections[si].open() {
			m.rows = append(m.rows,
				row{section: si, kind: rowRequests},
				row{section: si, kind: rowResponses})
		}
	}
	if had {
		for i, r := range m.rows {
			if r == prev {
				m.cursor = i
				return
			}
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) currentRow() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) currentSection() *section {
	r, ok := m.currentRow()
	if !ok {
		return nil
	}
	return m.view.sections[r.section]
}

func (m *Model) focusRow(section int, kind rowKind) {
	for i, r := range m.rows {
		if r.section == section && r.kind == kind {
			m.cursor = i
			return
		}
	}
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
}

func (m *Model) jumpSection(delta int) {
	r, ok := m.currentRow()
	if !ok {
		return
	}
	pos := 0
	for i, si := range m.visible {
		if si == r.section {
			pos = i
			break
		}
	}
	n := len(m.visible)
	next := m.visible[((pos+delta)%n+n)%n]
	m.focusRow(next, rowHeader)
}

func (m *Model) toggleSection(i int) {
	s := m.view.sections[i]
	s.collapse.Toggle()
	m.log.Debug("section toggled", zap.String("endpoint", s.endpoint.ID), zap.Bool("open", s.open()))
	m.buildRows()
	m.focusRow(i, rowHeader)
}

// toggleAll opens every listed section unless all of them are open already.
func (m *Model) toggleAll() {
	open := false
	for _, si := range m.visible {
		if !m.view.sections[si].open() {
			open = true
			break
		}
	}
	focus := -1
	if r, ok := m.currentRow(); ok {
		focus = r.section
	}
	for _, si := range m.visible {
		m.view.sections[si].collapse.SetOpen(open)
	}
	m.buildRows()
	if focus >= 0 {
		m.focusRow(focus, rowHeader)
	}
}

// currentBar is the tab bar under the cursor, nil on a header row.
func (m *Model) currentBar() *tabBar {
	r, ok := m.currentRow()
	if !ok {
		return nil
	}
	s := m.view.sections[r.section]
	switch r.kind {
	case rowRequests:
		return s.requests
	case rowResponses:
		return s.responses
	}
	return nil
}

// selectTab is the click handler of a tab: it routes through the selector
// so the group invariant is maintained in one place.
func (m *Model) selectTab(bar *tabBar, key string) {
	m.view.selector.Select(bar.group.ID(), key)
	m.log.Debug("tab selected", zap.String("group", bar.group.ID()), zap.String("key", key))
}

func (m *Model) stepTab(delta int) {
	bar := m.currentBar()
	if bar == nil {
		return
	}
	m.view.selector.Step(bar.group.ID(), delta)
	m.log.Debug("tab selected", zap.String("group", bar.group.ID()), zap.String("key", bar.group.Selected()))
}

func (m *Model) pickTab(i int) {
	bar := m.currentBar()
	if bar == nil {
		return
	}
	if i < 0 || i >= bar.group.Len() {
		return
	}
	m.selectTab(bar, bar.group.Keys()[i])
}

func (m *Model) handleClick(msg tea.MouseMsg) {
	for id, target := range m.zoneTargets {
		z := m.zones.Get(id)
		if z == nil || !z.InBounds(msg) {
			continue
		}
		m.activate(target)
		return
	}
}

func (m *Model) activate(target zoneTarget) {
	if target.bar == nil {
		m.toggleSection(target.section)
		return
	}
	m.selectTab(target.bar, target.key)
	kind := rowRequests
	if target.bar == m.view.sections[target.section].responses {
		kind = rowResponses
	}
	m.focusRow(target.section, kind)
}

func (m *Model) trySend() tea.Cmd {
	s := m.currentSection()
	if s == nil || m.sending != "" {
		return nil
	}
	req := buildRequest(m.view.doc, s.endpoint, m.configManager)
	m.sending = s.endpoint.ID
	m.setStatus(fmt.Sprintf("sending %s %s", req.Method, req.URL))
	m.log.Info("sending request", zap.String("endpoint", s.endpoint.ID),
		zap.String("method", req.Method), zap.String("url", req.URL))

	autoFormat := m.configManager == nil || m.configManager.Config.AutoFormatJSON
	return tea.Batch(m.spinner.Tick, sendRequest(m.client, req, autoFormat))
}

// handleResponse stores a try-it result and, when its status code matches a
// documented response, selects that response tab.
func (m *Model) handleResponse(resp Response) {
	m.sending = ""
	s, _ := m.view.section(resp.EndpointID)
	if resp.Error != nil {
		m.log.Warn("request failed", zap.String("endpoint", resp.EndpointID), zap.Error(resp.Error))
		m.setError(fmt.Sprintf("request failed: %v", resp.Error))
	} else {
		m.log.Info("response received", zap.String("endpoint", resp.EndpointID),
			zap.Int("status", resp.StatusCode), zap.Duration("elapsed", resp.ResponseTime))
		m.setStatus(fmt.Sprintf("%s in %s", resp.Status, resp.ResponseTime.Round(time.Millisecond)))
	}
	if s == nil {
		return
	}
	s.live = &resp
	if s.responses.group.Has(resp.StatusKey()) {
		m.selectTab(s.responses, resp.StatusKey())
	}
	if !s.open() {
		s.collapse.SetOpen(true)
		m.buildRows()
	}

	if m.configManager != nil && m.configManager.Config.SaveHistory {
		item := buildRequest(m.view.doc, s.endpoint, m.configManager)
		item.StatusCode = resp.StatusCode
		if err := m.configManager.addToHistory(item); err != nil {
			m.log.Warn("history not saved", zap.Error(err))
		}
	}
}

func (m *Model) copyExample() {
	s := m.currentSection()
	if s == nil {
		return
	}
	bar := m.currentBar()
	if bar == nil {
		bar = s.requests
	}
	pane := bar.shown()
	if pane == nil {
		return
	}
	if err := clipboard.WriteAll(pane.example.Body); err != nil {
		m.log.Warn("clipboard write failed", zap.Error(err))
		m.setError(fmt.Sprintf("copy failed: %v", err))
		return
	}
	m.setStatus(fmt.Sprintf("copied %s example", pane.example.Title()))
}

func (m *Model) nextEnv() {
	if m.configManager == nil {
		return
	}
	name, err := m.configManager.NextEnv()
	if err != nil {
		m.setError(err.Error())
		return
	}
	m.log.Info("environment switched", zap.String("env", name))
	m.setStatus("environment: " + name)
}

// reload re-reads the document after a change on disk. The cursor stays on
// the same endpoint row when it still exists. A broken document keeps the
// current view and reports the error.
func (m *Model) reload() {
	if m.docPath == "" {
		return
	}
	doc, err := apidoc.Load(m.docPath)
	if err != nil {
		m.log.Warn("reload failed", zap.Error(err))
		m.setError(fmt.Sprintf("reload failed: %v", err))
		return
	}
	expanded := m.configManager != nil && m.configManager.Config.StartExpanded
	view, err := buildDocView(doc, expanded)
	if err != nil {
		m.setError(fmt.Sprintf("reload failed: %v", err))
		return
	}
	prev, had := m.currentRow()
	prevID := ""
	if had {
		prevID = m.view.sections[prev.section].endpoint.ID
	}
	view.restore(m.view)
	m.view = view
	m.applyFilter()
	if _, i := view.section(prevID); had && i >= 0 {
		m.focusRow(i, prev.kind)
	}
	m.log.Info("document reloaded", zap.Int("endpoints", len(doc.Endpoints)))
	m.setStatus("reloaded " + m.docPath)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

// renderMarkdown renders through glamour, caching per text for the current
// wrap width.
func (m *Model) renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	if m.markdown == nil || m.markdownWidth != width {
		style := "dark"
		if !m.styles.Dark() {
			style = "light"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.log.Warn("markdown renderer unavailable", zap.Error(err))
			return md
		}
		m.markdown = r
		m.markdownWidth = width
		m.markdownCache = make(map[string]string)
	}
	if out, ok := m.markdownCache[md]; ok {
		return out
	}
	out, err := m.markdown.Render(md)
	if err != nil {
		return md
	}
	out = strings.Trim(out, "\n")
	m.markdownCache[md] = out
	return out
}

// refresh re-renders the document into the viewport and keeps the cursor row
// on screen.
func (m *Model) refresh() {
	if m.width == 0 {
		return
	}
	m.viewport.Height = max(m.height-lipgloss.Height(m.headerView())-lipgloss.Height(m.footerView()), 1)

	content, lines, targets := m.renderDocument()
	m.rowLines = lines
	m.zoneTargets = targets
	m.viewport.SetContent(content)

	if m.cursor < len(m.rowLines) {
		line := m.rowLines[m.cursor]
		if line < m.viewport.YOffset {
			m.viewport.SetYOffset(line)
		} else if line >= m.viewport.YOffset+m.viewport.Height {
			m.viewport.SetYOffset(line - m.viewport.Height + 1)
		}
	}
}
