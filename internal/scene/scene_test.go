package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"world-assembler/internal/primitive"
)

func TestCloneSharesMeshesCopiesMaterials(t *testing.T) {
	n := NewMeshNode("a", primitive.Box(1, 1, 1), Material{Color: mgl32.Vec3{1, 0, 0}})
	n.Add(NewMeshNode("b", primitive.Quad(), Material{}))

	c := n.Clone()
	require.Len(t, c.Children, 1)
	assert.Same(t, n.Mesh, c.Mesh)
	assert.Same(t, n.Children[0].Mesh, c.Children[0].Mesh)

	c.Mat.Color = mgl32.Vec3{0, 1, 0}
	c.Children[0].Position = mgl32.Vec3{5, 0, 0}
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, n.Mat.Color)
	assert.Equal(t, mgl32.Vec3{}, n.Children[0].Position)
}

func TestWalkAccumulatesTransforms(t *testing.T) {
	root := NewNode("root")
	root.Position = mgl32.Vec3{10, 0, 0}
	child := NewMeshNode("child", primitive.Quad(), Material{})
	child.Position = mgl32.Vec3{0, 5, 0}
	root.Add(child)

	var got mgl32.Vec3
	root.Walk(func(n *Node, world mgl32.Mat4) {
		if n.Name == "child" {
			got = mgl32.TransformCoordinate(mgl32.Vec3{}, world)
		}
	})
	assert.Equal(t, mgl32.Vec3{10, 5, 0}, got)
}

func TestWalkSkipsInvisibleSubtrees(t *testing.T) {
	root := NewNode("root")
	hidden := NewNode("hidden")
	hidden.Visible = false
	hidden.Add(NewMeshNode("inner", primitive.Quad(), Material{}))
	root.Add(hidden, NewMeshNode("shown", primitive.Quad(), Material{}))

	var names []string
	root.Walk(func(n *Node, _ mgl32.Mat4) { names = append(names, n.Name) })
	assert.Equal(t, []string{"root", "shown"}, names)
}

func TestWorldBounds(t *testing.T) {
	root := NewNode("root")
	box := NewMeshNode("box", primitive.Box(2, 2, 2), Material{})
	box.Position = mgl32.Vec3{10, 0, 0}
	root.Add(box)

	min, max, ok := root.WorldBounds()
	require.True(t, ok)
	assert.Equal(t, float32(9), min.X())
	assert.Equal(t, float32(11), max.X())

	empty := NewNode("empty")
	_, _, ok = empty.WorldBounds()
	assert.False(t, ok)
}

func TestFrameGroundClamps(t *testing.T) {
	s := New()

	s.FrameGround(20)
	near := s.Camera.Position.Len()
	s.FrameGround(400)
	far := s.Camera.Position.Len()
	assert.Greater(t, far, near)

	s.FrameGround(10000)
	assert.Equal(t, far, s.Camera.Position.Len(), "distance is clamped")
	assert.Equal(t, mgl32.Vec3{}, s.Camera.Target)
}

func TestClearKeepsRenderState(t *testing.T) {
	s := New()
	s.Sky.Tint = mgl32.Vec3{1, 0, 0}
	s.Root.Add(NewNode("junk"))
	s.Clear()
	assert.Empty(t, s.Root.Children)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, s.Sky.Tint)
}
