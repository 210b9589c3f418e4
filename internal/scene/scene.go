// Package scene is the render-API-agnostic scene graph the assembly engine
// produces. The host walks the graph and draws it; nothing here touches a
// rendering backend.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"world-assembler/internal/geom"
)

// Material describes how a node's mesh should be shaded. TextureRef is an
// abstract reference resolved by the host (e.g. a tiling pattern name).
type Material struct {
	Color            mgl32.Vec3
	Emission         mgl32.Vec3
	EmissionStrength float32
	Metallic         float32
	Smoothness       float32
	TextureRef       string
}

// Node is one element of the scene graph. Mesh may be nil for pure grouping
// nodes. Rotation is Euler degrees (X pitch, Y yaw, Z roll). Meshes are
// shared, read-only data; cloning a node never copies mesh storage.
type Node struct {
	Name     string
	Mesh     *geom.Mesh
	Mat      Material
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
	Visible  bool
	Children []*Node
}

// NewNode returns a visible node with identity transform.
func NewNode(name string) *Node {
	return &Node{Name: name, Scale: mgl32.Vec3{1, 1, 1}, Visible: true}
}

// NewMeshNode returns a visible node carrying the given mesh and material.
func NewMeshNode(name string, mesh *geom.Mesh, mat Material) *Node {
	n := NewNode(name)
	n.Mesh = mesh
	n.Mat = mat
	return n
}

// Add appends children and returns the node for chaining.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// LocalTransform returns the node's TRS matrix.
func (n *Node) LocalTransform() mgl32.Mat4 {
	return geom.TRS(n.Position, n.Rotation, n.Scale)
}

// Clone returns a deep copy of the node tree. Meshes are shared (they are
// read-only after creation); materials and transforms are copied so each
// instance can be tinted and placed independently.
func (n *Node) Clone() *Node {
	c := *n
	c.Children = make([]*Node, len(n.Children))
	for i, ch := range n.Children {
		c.Children[i] = ch.Clone()
	}
	return &c
}

// Walk visits every visible node depth-first with its accumulated world
// transform.
func (n *Node) Walk(fn func(*Node, mgl32.Mat4)) {
	n.walk(mgl32.Ident4(), fn)
}

func (n *Node) walk(parent mgl32.Mat4, fn func(*Node, mgl32.Mat4)) {
	if !n.Visible {
		return
	}
	world := parent.Mul4(n.LocalTransform())
	fn(n, world)
	for _, ch := range n.Children {
		ch.walk(world, fn)
	}
}

// WorldBounds returns the axis-aligned bounds of all visible meshes in the
// tree, in the node's own space. ok is false when the tree holds no geometry.
func (n *Node) WorldBounds() (min, max mgl32.Vec3, ok bool) {
	n.Walk(func(node *Node, world mgl32.Mat4) {
		if node.Mesh == nil {
			return
		}
		for _, p := range node.Mesh.Positions {
			w := mgl32.TransformCoordinate(p, world)
			if !ok {
				min, max, ok = w, w, true
				continue
			}
			for a := 0; a < 3; a++ {
				if w[a] < min[a] {
					min[a] = w[a]
				}
				if w[a] > max[a] {
					max[a] = w[a]
				}
			}
		}
	})
	return min, max, ok
}
