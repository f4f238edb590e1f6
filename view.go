package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	indent        = "    "
	maxLiveLines  = 20
	historyRows   = 10
	cursorMarker  = "> "
	noCursorSpace = "  "
)

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.viewport.View(),
		m.footerView(),
	)
	return m.zones.Scan(view)
}

func (m Model) headerView() string {
	doc := m.view.doc

	title := doc.Title
	if title == "" {
		title = "API Reference"
	}
	parts := []string{m.styles.Header.Render(title)}
	if doc.Version != "" {
		parts = append(parts, m.styles.Subtle.Render("v"+doc.Version))
	}
	if m.configManager != nil {
		env := m.configManager.getCurrentEnvironment()
		parts = append(parts, m.styles.Subtle.Render("env: "+env.Name))
	}
	line := strings.Join(parts, " ")

	if m.filtering || m.filter.Value() != "" {
		filter := m.filter.View()
		if !m.filtering {
			filter = m.styles.Subtle.Render("/" + m.filter.Value())
		}
		line = lipgloss.JoinVertical(lipgloss.Left, line, filter)
	}
	return line
}

func (m Model) footerView() string {
	var b strings.Builder

	if m.showHistory {
		b.WriteString(m.historyView())
		b.WriteString("\n")
	}

	switch {
	case m.sending != "":
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), m.status))
	case m.statusErr:
		b.WriteString(m.styles.Error.Render(m.status))
	default:
		b.WriteString(m.styles.Status.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Model) historyView() string {
	content := "No history items"
	if m.configManager != nil {
		if items := m.configManager.RecentHistory(historyRows); len(items) > 0 {
			var sb strings.Builder
			sb.WriteString("Recent Requests:")
			for i, item := range items {
				sb.WriteString(fmt.Sprintf("\n%d. %s %s %s", i+1, m.statusText(item.StatusCode), item.Method, item.URL))
			}
			if s := m.currentSection(); s != nil {
				if sent := m.configManager.FindHistoryByEndpoint(s.endpoint.ID); len(sent) > 0 {
					sb.WriteString(fmt.Sprintf("\n\n%s: %d sent, last %s", s.endpoint.ID, len(sent), m.statusText(sent[0].StatusCode)))
				}
			}
			content = sb.String()
		}
	}
	return m.styles.Pane.Width(max(m.width-4, 10)).Render(content)
}

func (m Model) statusText(code int) string {
	if code <= 0 {
		return "---"
	}
	return m.styles.StatusCodeStyle(code).Render(fmt.Sprintf("%d", code))
}

// renderDocument lays out every listed section. It returns the content, the
// content line of each cursor row, and the clickable zones.
func (m *Model) renderDocument() (string, []int, map[string]zoneTarget) {
	var lines []string
	rowLines := make([]int, len(m.rows))
	targets := make(map[string]zoneTarget)

	add := func(block string) {
		lines = append(lines, strings.Split(block, "\n")...)
	}
	markRow := func(r row) string {
		for i, cand := range m.rows {
			if cand == r {
				rowLines[i] = len(lines)
				if i == m.cursor {
					return m.styles.Cursor.Render(cursorMarker)
				}
			}
		}
		return noCursorSpace
	}

	paneWidth := max(m.width-len(indent)-2, 20)

	if desc := m.renderMarkdown(m.view.doc.Description, m.width-2); desc != "" {
		add(desc)
		add("")
	}

	if len(m.visible) == 0 {
		add(m.styles.Subtle.Render("No endpoints match " + m.filter.Value()))
	}

	for _, si := range m.visible {
		s := m.view.sections[si]
		ep := s.endpoint

		prefix := markRow(row{section: si, kind: rowHeader})
		marker := "▸"
		titleStyle := m.styles.Section
		if s.header.activated {
			marker = "▾"
			titleStyle = m.styles.SectionOpen
		}
		title := fmt.Sprintf("%s %s %s", marker,
			m.styles.MethodStyle(ep.Method).Render(ep.Method),
			titleStyle.Render(ep.Path))
		if ep.Name != "" {
			title += "  " + m.styles.Subtle.Render(ep.Name)
		}
		id := m.zoneID + "hdr:" + ep.ID
		targets[id] = zoneTarget{section: si}
		add(prefix + m.zones.Mark(id, title))

		if !s.body.visible {
			continue
		}

		if desc := m.renderMarkdown(ep.Description, paneWidth); desc != "" {
			add(indentBlock(desc))
		}

		for _, bar := range []struct {
			label string
			kind  rowKind
			tabs  *tabBar
		}{
			{"Request", rowRequests, s.requests},
			{"Responses", rowResponses, s.responses},
		} {
			add(indent + m.styles.Subtle.Render(bar.label))
			prefix := markRow(row{section: si, kind: bar.kind})
			tabs := m.renderTabBar(si, bar.tabs, targets)
			pane := bar.tabs.shown()
			if pane != nil && pane.example.Language != "" {
				tabs += "  " + m.styles.Subtle.Render(pane.example.Language)
			}
			add(prefix + noCursorSpace + tabs)
			if pane != nil {
				body := strings.TrimRight(pane.example.Body, "\n")
				if body == "" {
					body = m.styles.Subtle.Render("(empty)")
				}
				add(indentBlock(m.styles.Pane.Width(paneWidth).Render(body)))
			}
		}

		if m.sending == ep.ID {
			add(indent + m.spinner.View() + " Sending request...")
		} else if s.live != nil {
			add(indentBlock(m.renderLive(*s.live, paneWidth)))
		}
		add("")
	}

	return strings.Join(lines, "\n"), rowLines, targets
}

// renderTabBar draws the labels of one group; the active one is highlighted.
func (m *Model) renderTabBar(section int, bar *tabBar, targets map[string]zoneTarget) string {
	keys := bar.group.Keys()
	tabs := make([]string, len(bar.links))
	for i, link := range bar.links {
		style := m.styles.InactiveTab
		if link.active {
			style = m.styles.ActiveTab
		}
		id := fmt.Sprintf("%stab:%s:%s", m.zoneID, bar.group.ID(), keys[i])
		targets[id] = zoneTarget{section: section, bar: bar, key: keys[i]}
		tabs[i] = m.zones.Mark(id, style.Render(link.label))
	}
	return strings.Join(tabs, " ")
}

func (m *Model) renderLive(resp Response, width int) string {
	if resp.Error != nil {
		return m.styles.Live.Width(width).Render(m.styles.Error.Render(fmt.Sprintf("Error: %s", resp.Error)))
	}

	var sb strings.Builder
	sb.WriteString(m.styles.StatusCodeStyle(resp.StatusCode).Render(resp.Status))
	sb.WriteString(m.styles.Subtle.Render(fmt.Sprintf("  %s %s  %s", resp.Method, resp.URL, resp.ResponseTime.Round(time.Millisecond))))

	body := strings.TrimRight(resp.FormattedBody, "\n")
	if body != "" {
		bodyLines := strings.Split(body, "\n")
		if len(bodyLines) > maxLiveLines {
			more := len(bodyLines) - maxLiveLines
			bodyLines = append(bodyLines[:maxLiveLines], m.styles.Subtle.Render(fmt.Sprintf("… %d more lines", more)))
		}
		sb.WriteString("\n\n")
		sb.WriteString(strings.Join(bodyLines, "\n"))
	}
	return m.styles.Live.Width(width).Render(sb.String())
}

func indentBlock(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = indent + l
	}
	return strings.Join(lines, "\n")
}
