package selector

// Collapsible flips a single panel between shown and hidden. Its control
// carries the "activated" marker while the panel is shown.
type Collapsible struct {
	control Control
	panel   Panel
	open    bool
}

// NewCollapsible hides panel and clears the control marker.
func NewCollapsible(control Control, panel Panel) *Collapsible {
	c := &Collapsible{control: control, panel: panel}
	c.apply()
	return c
}

// Toggle handles one activation gesture.
func (c *Collapsible) Toggle() {
	c.open = !c.open
	c.apply()
}

// SetOpen forces the state, for expand-all and restoring after a reload.
func (c *Collapsible) SetOpen(open bool) {
	if c.open == open {
		return
	}
	c.open = open
	c.apply()
}

func (c *Collapsible) Open() bool { return c.open }

func (c *Collapsible) apply() {
	c.panel.SetVisible(c.open)
	c.control.SetActive(c.open)
}
