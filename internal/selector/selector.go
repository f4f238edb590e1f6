// Package selector keeps groups of mutually exclusive panels in sync with
// the controls that pick them, plus the standalone collapsible toggle.
//
// The host owns the elements. It resolves group membership up front and hands
// the pairs in; the selector only writes the visible/active attributes.
package selector

import (
	"errors"
	"fmt"
)

var ErrDuplicateGroup = errors.New("group already registered")

// Panel is a region whose visibility the selector drives.
type Panel interface {
	SetVisible(visible bool)
}

// Control is the clickable element paired with a Panel.
type Control interface {
	SetActive(active bool)
}

// Pair binds a Control to the Panel it reveals under a key unique within its group.
type Pair struct {
	Key     string
	Control Control
	Panel   Panel
}

// Group is an ordered set of pairs of which at most one is shown.
type Group struct {
	id       string
	pairs    []Pair
	index    map[string]int
	selected string
}

// NewGroup builds a group from already-resolved pairs. Later pairs with a
// key already seen are ignored.
func NewGroup(id string, pairs []Pair) *Group {
	g := &Group{
		id:    id,
		pairs: make([]Pair, 0, len(pairs)),
		index: make(map[string]int, len(pairs)),
	}
	for _, p := range pairs {
		if _, dup := g.index[p.Key]; dup {
			continue
		}
		g.index[p.Key] = len(g.pairs)
		g.pairs = append(g.pairs, p)
	}
	return g
}

func (g *Group) ID() string { return g.id }

func (g *Group) Len() int { return len(g.pairs) }

// Selected returns the key of the shown pair, or "" before the first selection.
func (g *Group) Selected() string { return g.selected }

// Has reports whether key names a pair of this group.
func (g *Group) Has(key string) bool {
	_, ok := g.index[key]
	return ok
}

// Keys returns pair keys in group order.
func (g *Group) Keys() []string {
	keys := make([]string, len(g.pairs))
	for i, p := range g.pairs {
		keys[i] = p.Key
	}
	return keys
}

// Select shows the pair under key and hides every other one. All other pairs
// are switched off before the target is switched on, so two panels are never
// visible together. Unknown keys leave the group untouched.
func (g *Group) Select(key string) {
	target, ok := g.index[key]
	if !ok {
		return
	}
	for i, p := range g.pairs {
		if i == target {
			continue
		}
		p.Panel.SetVisible(false)
		p.Control.SetActive(false)
	}
	p := g.pairs[target]
	p.Panel.SetVisible(true)
	p.Control.SetActive(true)
	g.selected = key
}

// Step selects the pair delta positions away from the current one, wrapping
// at both ends. Before the first selection it starts from the first pair.
func (g *Group) Step(delta int) {
	n := len(g.pairs)
	if n == 0 {
		return
	}
	cur, ok := g.index[g.selected]
	if !ok {
		cur = 0
		delta = 0
	}
	next := ((cur+delta)%n + n) % n
	g.Select(g.pairs[next].Key)
}

// Selector is a registry of independent groups addressed by id.
type Selector struct {
	groups map[string]*Group
	order  []string
}

func New() *Selector {
	return &Selector{groups: make(map[string]*Group)}
}

// Add registers g. Group ids are unique within a selector.
func (s *Selector) Add(g *Group) error {
	if _, exists := s.groups[g.id]; exists {
		return fmt.Errorf("%s: %w", g.id, ErrDuplicateGroup)
	}
	s.groups[g.id] = g
	s.order = append(s.order, g.id)
	return nil
}

// Group looks up a registered group.
func (s *Selector) Group(id string) (*Group, bool) {
	g, ok := s.groups[id]
	return g, ok
}

// IDs returns registered group ids in registration order.
func (s *Selector) IDs() []string {
	return append([]string(nil), s.order...)
}

// Select shows panelKey in the named group. Unknown groups are ignored.
func (s *Selector) Select(groupID, panelKey string) {
	if g, ok := s.groups[groupID]; ok {
		g.Select(panelKey)
	}
}

// Step moves the selection of the named group delta pairs, wrapping at both
// ends. Unknown groups are ignored.
func (s *Selector) Step(groupID string, delta int) {
	if g, ok := s.groups[groupID]; ok {
		g.Step(delta)
	}
}

// Initialize establishes the default selection of a group. It must run once
// per group before the first user interaction.
func (s *Selector) Initialize(groupID, defaultPanelKey string) {
	s.Select(groupID, defaultPanelKey)
}
