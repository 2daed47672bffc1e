package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	l := New("Base", TypeSolidColor)

	assert.NotEqual(t, [16]byte{}, [16]byte(l.UID))
	assert.Equal(t, 1.0, l.Opacity)
	assert.Equal(t, 1.0, l.Alpha)
	assert.True(t, l.Enabled)
	assert.False(t, l.IsLinked())
	assert.Equal(t, 1.0, l.Factor())
}

func TestKnown(t *testing.T) {
	for _, tag := range []TypeTag{
		TypeFolder, TypeSolidColor, TypeImage, TypeGradient,
		TypeTexture, TypeAdjustment, TypeNodeGroup,
	} {
		assert.True(t, Known(tag), string(tag))
	}
	assert.False(t, Known("hologram"))
}

func TestChannel_WalkAndFind(t *testing.T) {
	inner := New("Inner", TypeSolidColor)
	folder := New("Folder", TypeFolder)
	folder.Children = []*Layer{inner}
	top := New("Top", TypeImage)

	c := &Channel{Name: "Color", Layers: []*Layer{folder, top}}

	var order []string
	c.Walk(func(l *Layer) bool {
		order = append(order, l.Name)
		return true
	})
	assert.Equal(t, []string{"Folder", "Inner", "Top"}, order)

	require.NotNil(t, c.Find(inner.UID))
	assert.Same(t, inner, c.Find(inner.UID))
	assert.Nil(t, c.Find(New("elsewhere", TypeImage).UID))
}

func TestChannel_WalkEarlyStop(t *testing.T) {
	c := &Channel{Layers: []*Layer{
		New("a", TypeSolidColor),
		New("b", TypeSolidColor),
	}}
	var seen int
	c.Walk(func(*Layer) bool {
		seen++
		return false
	})
	assert.Equal(t, 1, seen)
}

func TestGroup_Channel(t *testing.T) {
	g := &Group{Name: "Main", Channels: []*Channel{
		{Name: "Color"},
		{Name: "Height"},
	}}
	require.NotNil(t, g.Channel("Height"))
	assert.Nil(t, g.Channel("Normal"))
}
