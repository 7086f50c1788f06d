package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubObject struct {
	id      uint64
	name    string
	visible bool
}

func (o *stubObject) ID() uint64 { return o.id }
func (o *stubObject) SetID(id uint64) { o.id = id }
func (o *stubObject) Name() string { return o.name }
func (o *stubObject) Visible() bool { return o.visible }
func (o *stubObject) SetVisible(v bool) { o.visible = v }

func TestSceneAddAssignsIDsInOrder(t *testing.T) {
	a, b := &stubObject{name: "a"}, &stubObject{name: "b"}
	s := NewScene("main", WithObjects(a))
	s.Add(b)

	assert.Equal(t, uint64(1), a.ID())
	assert.Equal(t, uint64(2), b.ID())
	assert.Equal(t, uint64(2), s.Add(b), "re-adding is a no-op")
	assert.Equal(t, 2, s.Count())

	objs := s.Objects()
	require.Len(t, objs, 2)
	assert.Equal(t, "a", objs[0].Name())
	assert.Same(t, b, s.Get(2))
}

func TestSceneRemoveAndClear(t *testing.T) {
	a, b, c := &stubObject{}, &stubObject{}, &stubObject{id: 10}
	s := NewScene("main", WithObjects(a, b, c))
	assert.Equal(t, uint64(10), c.ID())

	s.Remove(a.ID())
	s.Remove(99)
	assert.Nil(t, s.Get(a.ID()))
	assert.Equal(t, []Object{b, c}, s.Objects())

	d := &stubObject{}
	s.Add(d)
	assert.Equal(t, uint64(11), d.ID(), "IDs continue past explicit ones")

	s.Clear()
	assert.Zero(t, s.Count())
}
