package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type flag struct{ on bool }

func (f *flag) SetVisible(v bool) { f.on = v }
func (f *flag) SetActive(v bool)  { f.on = v }

func TestCollapsible_TwoGestures(t *testing.T) {
	header, body := &flag{on: true}, &flag{on: true}
	c := NewCollapsible(header, body)

	assert.False(t, body.on, "panel starts hidden")
	assert.False(t, header.on)

	c.Toggle()
	assert.True(t, body.on)
	assert.True(t, header.on, "control carries the activated marker")
	assert.True(t, c.Open())

	c.Toggle()
	assert.False(t, body.on)
	assert.False(t, header.on)
	assert.False(t, c.Open())
}

func TestCollapsible_SetOpen(t *testing.T) {
	header, body := &flag{}, &flag{}
	c := NewCollapsible(header, body)

	c.SetOpen(true)
	assert.True(t, body.on)
	c.SetOpen(true)
	assert.True(t, body.on)
	c.SetOpen(false)
	assert.False(t, body.on)
	assert.False(t, header.on)
}
