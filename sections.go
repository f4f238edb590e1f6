package main

import (
	"fmt"

	"github.com/nutcas3/api-docs-tui/internal/apidoc"
	"github.com/nutcas3/api-docs-tui/internal/selector"
)

// tabLink is a tab label, the Control half of a selector pair.
type tabLink struct {
	label  string
	active bool
}

func (t *tabLink) SetActive(active bool) { t.active = active }

// tabPane is an example body, the Panel half of a selector pair.
type tabPane struct {
	example apidoc.Example
	visible bool
}

func (p *tabPane) SetVisible(visible bool) { p.visible = visible }

type tabBar struct {
	group *selector.Group
	links []*tabLink
	panes []*tabPane
}

func newTabBar(groupID string, examples []apidoc.Example) *tabBar {
	bar := &tabBar{
		links: make([]*tabLink, len(examples)),
		panes: make([]*tabPane, len(examples)),
	}
	pairs := make([]selector.Pair, len(examples))
	for i, ex := range examples {
		bar.links[i] = &tabLink{label: ex.Title()}
		bar.panes[i] = &tabPane{example: ex}
		pairs[i] = selector.Pair{Key: ex.Key, Control: bar.links[i], Panel: bar.panes[i]}
	}
	bar.group = selector.NewGroup(groupID, pairs)
	return bar
}

// shown is the pane currently visible, nil before initialization.
func (b *tabBar) shown() *tabPane {
	for _, p := range b.panes {
		if p.visible {
			return p
		}
	}
	return nil
}

// sectionHeader is the clickable endpoint title; it carries the activated marker.
type sectionHeader struct {
	activated bool
}

func (h *sectionHeader) SetActive(active bool) { h.activated = active }

type sectionBody struct {
	visible bool
}

func (b *sectionBody) SetVisible(visible bool) { b.visible = visible }

type section struct {
	endpoint  apidoc.Endpoint
	header    *sectionHeader
	body      *sectionBody
	collapse  *selector.Collapsible
	requests  *tabBar
	responses *tabBar
	live      *Response
}

func (s *section) open() bool { return s.collapse.Open() }

// docView is the rendered document: one section per endpoint, every tab bar
// registered as a selector group.
type docView struct {
	doc      *apidoc.Document
	sections []*section
	selector *selector.Selector
}

// buildDocView assembles the sections and initializes each group with its
// default example, so every bar shows exactly one pane from the first frame.
func buildDocView(doc *apidoc.Document, expanded bool) (*docView, error) {
	v := &docView{
		doc:      doc,
		sections: make([]*section, 0, len(doc.Endpoints)),
		selector: selector.New(),
	}
	for _, ep := range doc.Endpoints {
		s := &section{
			endpoint:  ep,
			header:    &sectionHeader{},
			body:      &sectionBody{},
			requests:  newTabBar(ep.RequestGroupID(), ep.Requests),
			responses: newTabBar(ep.ResponseGroupID(), ep.Responses),
		}
		s.collapse = selector.NewCollapsible(s.header, s.body)
		s.collapse.SetOpen(expanded)

		for _, bar := range []*tabBar{s.requests, s.responses} {
			if err := v.selector.Add(bar.group); err != nil {
				return nil, fmt.Errorf("endpoint %s: %w", ep.ID, err)
			}
		}
		v.selector.Initialize(ep.RequestGroupID(), ep.RequestDefault())
		v.selector.Initialize(ep.ResponseGroupID(), ep.ResponseDefault())

		v.sections = append(v.sections, s)
	}
	return v, nil
}

// restore carries open sections, selected tabs and live responses over from
// a previous view of the same document. Keys that no longer exist keep the
// new defaults.
func (v *docView) restore(prev *docView) {
	if prev == nil {
		return
	}
	old := make(map[string]*section, len(prev.sections))
	for _, s := range prev.sections {
		old[s.endpoint.ID] = s
	}
	for _, s := range v.sections {
		p, ok := old[s.endpoint.ID]
		if !ok {
			continue
		}
		s.collapse.SetOpen(p.open())
		s.live = p.live
		for _, id := range []string{s.endpoint.RequestGroupID(), s.endpoint.ResponseGroupID()} {
			if g, ok := prev.selector.Group(id); ok {
				v.selector.Select(id, g.Selected())
			}
		}
	}
}

func (v *docView) section(endpointID string) (*section, int) {
	for i, s := range v.sections {
		if s.endpoint.ID == endpointID {
			return s, i
		}
	}
	return nil, -1
}
