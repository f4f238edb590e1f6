package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// page is a fake host document. It records every write and tracks the peak
// number of simultaneously visible panels per group.
type page struct {
	visible map[string]bool
	active  map[string]bool
	writes  []string
	peak    map[string]int
}

func newPage() *page {
	return &page{
		visible: map[string]bool{},
		active:  map[string]bool{},
		peak:    map[string]int{},
	}
}

type fakePanel struct {
	p     *page
	group string
	key   string
}

func (f fakePanel) SetVisible(v bool) {
	id := f.group + "/" + f.key
	f.p.visible[id] = v
	if v {
		f.p.writes = append(f.p.writes, "show "+id)
	} else {
		f.p.writes = append(f.p.writes, "hide "+id)
	}
	n := 0
	for k, on := range f.p.visible {
		if on && len(k) > len(f.group) && k[:len(f.group)+1] == f.group+"/" {
			n++
		}
	}
	if n > f.p.peak[f.group] {
		f.p.peak[f.group] = n
	}
}

type fakeControl struct {
	p  *page
	id string
}

func (f fakeControl) SetActive(v bool) { f.p.active[f.id] = v }

func (p *page) group(id string, keys ...string) *Group {
	pairs := make([]Pair, len(keys))
	for i, k := range keys {
		pairs[i] = Pair{
			Key:     k,
			Control: fakeControl{p: p, id: id + "/" + k},
			Panel:   fakePanel{p: p, group: id, key: k},
		}
	}
	return NewGroup(id, pairs)
}

func (p *page) shown(group string, keys ...string) []string {
	var out []string
	for _, k := range keys {
		if p.visible[group+"/"+k] {
			out = append(out, k)
		}
	}
	return out
}

func TestSelector_ResponseExample(t *testing.T) {
	p := newPage()
	s := New()
	require.NoError(t, s.Add(p.group("response", "200", "404", "500")))

	s.Initialize("response", "200")
	assert.Equal(t, []string{"200"}, p.shown("response", "200", "404", "500"))

	s.Select("response", "404")
	assert.Equal(t, []string{"404"}, p.shown("response", "200", "404", "500"))
	assert.True(t, p.active["response/404"])
	assert.False(t, p.active["response/200"])
	assert.False(t, p.active["response/500"])

	g, ok := s.Group("response")
	require.True(t, ok)
	assert.Equal(t, "404", g.Selected())
}

func TestSelector_ExactlyOneVisibleAfterEverySelect(t *testing.T) {
	keys := []string{"curl", "json", "go", "python"}
	p := newPage()
	s := New()
	require.NoError(t, s.Add(p.group("request", keys...)))
	s.Initialize("request", "curl")

	for _, k := range []string{"go", "go", "curl", "python", "json", "curl"} {
		s.Select("request", k)
		assert.Equal(t, []string{k}, p.shown("request", keys...), "after select %q", k)
		for _, other := range keys {
			assert.Equal(t, p.visible["request/"+other], p.active["request/"+other],
				"control %q mirrors panel after select %q", other, k)
		}
	}
	assert.Equal(t, 1, p.peak["request"], "two panels were visible at once")
}

func TestSelector_DeactivatesBeforeActivating(t *testing.T) {
	p := newPage()
	s := New()
	require.NoError(t, s.Add(p.group("g", "a", "b", "c")))
	s.Initialize("g", "a")
	p.writes = nil

	s.Select("g", "b")
	require.NotEmpty(t, p.writes)
	assert.Equal(t, "show g/b", p.writes[len(p.writes)-1])
	for _, w := range p.writes[:len(p.writes)-1] {
		assert.Contains(t, w, "hide")
	}
}

func TestSelector_Idempotent(t *testing.T) {
	p := newPage()
	s := New()
	require.NoError(t, s.Add(p.group("g", "a", "b")))
	s.Initialize("g", "a")

	s.Select("g", "b")
	visOnce := copyMap(p.visible)
	actOnce := copyMap(p.active)

	s.Select("g", "b")
	assert.Equal(t, visOnce, p.visible)
	assert.Equal(t, actOnce, p.active)
}

func TestSelector_GroupsAreIndependent(t *testing.T) {
	p := newPage()
	s := New()
	require.NoError(t, s.Add(p.group("request", "curl", "json")))
	require.NoError(t, s.Add(p.group("response", "200", "404")))
	s.Initialize("request", "curl")
	s.Initialize("response", "200")

	before := copyMap(p.visible)
	s.Select("request", "json")

	assert.Equal(t, before["response/200"], p.visible["response/200"])
	assert.Equal(t, before["response/404"], p.visible["response/404"])
	assert.Equal(t, []string{"json"}, p.shown("request", "curl", "json"))
}

func TestSelector_UnknownKeyOrGroupIsNoop(t *testing.T) {
	p := newPage()
	s := New()
	require.NoError(t, s.Add(p.group("g", "a", "b")))
	s.Initialize("g", "a")
	before := copyMap(p.visible)

	s.Select("g", "missing")
	s.Select("nope", "a")

	assert.Equal(t, before, p.visible)
	g, _ := s.Group("g")
	assert.Equal(t, "a", g.Selected())
}

func TestSelector_AddDuplicate(t *testing.T) {
	p := newPage()
	s := New()
	require.NoError(t, s.Add(p.group("g", "a")))
	err := s.Add(p.group("g", "b"))
	assert.ErrorIs(t, err, ErrDuplicateGroup)
	assert.Equal(t, []string{"g"}, s.IDs())
}

func TestGroup_Step(t *testing.T) {
	p := newPage()
	g := p.group("g", "a", "b", "c")

	t.Run("starts from first pair", func(t *testing.T) {
		g.Step(1)
		assert.Equal(t, "a", g.Selected())
	})

	t.Run("moves forward and wraps", func(t *testing.T) {
		g.Step(1)
		assert.Equal(t, "b", g.Selected())
		g.Step(2)
		assert.Equal(t, "a", g.Selected())
	})

	t.Run("moves backward and wraps", func(t *testing.T) {
		g.Step(-1)
		assert.Equal(t, "c", g.Selected())
		assert.Equal(t, []string{"c"}, p.shown("g", "a", "b", "c"))
	})
}

func TestSelector_Step(t *testing.T) {
	p := newPage()
	s := New()
	require.NoError(t, s.Add(p.group("req", "curl", "json")))
	require.NoError(t, s.Add(p.group("resp", "200", "404")))
	s.Initialize("req", "curl")
	s.Initialize("resp", "200")

	s.Step("req", 1)
	assert.Equal(t, []string{"json"}, p.shown("req", "curl", "json"))
	assert.Equal(t, []string{"200"}, p.shown("resp", "200", "404"), "other groups are untouched")

	s.Step("missing", 1)
	assert.Equal(t, []string{"json"}, p.shown("req", "curl", "json"))
	assert.Equal(t, 1, p.peak["req"])
}

func TestNewGroup_DropsDuplicateKeys(t *testing.T) {
	p := newPage()
	g := p.group("g", "a", "b", "a")
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"a", "b"}, g.Keys())
	assert.True(t, g.Has("b"))
	assert.False(t, g.Has("c"))
}

func copyMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
