package geom

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// IndexFormat selects the index width used when a mesh is uploaded or encoded.
// Index16 is the default; Index32 is required for meshes with more than
// MaxIndex16Vertices vertices and must be chosen explicitly by the builder.
type IndexFormat int

const (
	Index16 IndexFormat = iota
	Index32
)

// MaxIndex16Vertices is the largest vertex count addressable with 16-bit indices.
const MaxIndex16Vertices = 65535

// Mesh is an indexed triangle mesh. Positions and Normals are parallel arrays;
// Indices holds 3 entries per triangle with CCW winding. UVs are optional
// (either empty or parallel to Positions).
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
	Format    IndexFormat
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// IsEmpty reports whether the mesh has no geometry.
func (m *Mesh) IsEmpty() bool { return len(m.Positions) == 0 || len(m.Indices) == 0 }

// PickFormat returns the index format a mesh with the given vertex count needs.
func PickFormat(vertexCount int) IndexFormat {
	if vertexCount > MaxIndex16Vertices {
		return Index32
	}
	return Index16
}

// Validate checks the mesh invariants: parallel position/normal arrays, index
// count divisible by 3, every index in range, and an index format wide enough
// for the vertex count.
func (m *Mesh) Validate() error {
	if len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("geom: %d normals for %d positions", len(m.Normals), len(m.Positions))
	}
	if len(m.UVs) != 0 && len(m.UVs) != len(m.Positions) {
		return fmt.Errorf("geom: %d uvs for %d positions", len(m.UVs), len(m.Positions))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("geom: index count %d not divisible by 3", len(m.Indices))
	}
	n := uint32(len(m.Positions))
	for _, i := range m.Indices {
		if i >= n {
			return fmt.Errorf("geom: index %d out of range (%d vertices)", i, n)
		}
	}
	if m.Format == Index16 && len(m.Positions) > MaxIndex16Vertices {
		return fmt.Errorf("geom: %d vertices exceed 16-bit index range", len(m.Positions))
	}
	return nil
}

// Bounds returns the axis-aligned bounding box. ok is false for an empty mesh.
func (m *Mesh) Bounds() (min, max mgl32.Vec3, ok bool) {
	if len(m.Positions) == 0 {
		return min, max, false
	}
	min, max = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for a := 0; a < 3; a++ {
			if p[a] < min[a] {
				min[a] = p[a]
			}
			if p[a] > max[a] {
				max[a] = p[a]
			}
		}
	}
	return min, max, true
}

// RecomputeNormals rebuilds per-vertex normals from face geometry: each face
// normal (area-weighted via the unnormalized cross product) is accumulated on
// its three vertices, then the sums are normalized. Degenerate triangles
// contribute nothing.
func (m *Mesh) RecomputeNormals() {
	normals := make([]mgl32.Vec3, len(m.Positions))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		a, b, c := m.Positions[i0], m.Positions[i1], m.Positions[i2]
		fn := b.Sub(a).Cross(c.Sub(a))
		normals[i0] = normals[i0].Add(fn)
		normals[i1] = normals[i1].Add(fn)
		normals[i2] = normals[i2].Add(fn)
	}
	for i, n := range normals {
		if l := n.Len(); l > 1e-12 {
			normals[i] = n.Mul(1 / l)
		} else {
			normals[i] = mgl32.Vec3{0, 1, 0}
		}
	}
	m.Normals = normals
}

// Transform applies the matrix to all positions and its rotation part to all
// normals (renormalized, so uniform scale is safe).
func (m *Mesh) Transform(mat mgl32.Mat4) {
	rot := mat.Mat3()
	for i, p := range m.Positions {
		m.Positions[i] = mgl32.TransformCoordinate(p, mat)
	}
	for i, n := range m.Normals {
		v := rot.Mul3x1(n)
		if l := v.Len(); l > 1e-12 {
			v = v.Mul(1 / l)
		}
		m.Normals[i] = v
	}
}

// Append adds all geometry of other, transformed by mat, to m. Index format
// widens automatically when the combined vertex count requires it.
func (m *Mesh) Append(other *Mesh, mat mgl32.Mat4) {
	base := uint32(len(m.Positions))
	rot := mat.Mat3()
	for _, p := range other.Positions {
		m.Positions = append(m.Positions, mgl32.TransformCoordinate(p, mat))
	}
	for _, n := range other.Normals {
		v := rot.Mul3x1(n)
		if l := v.Len(); l > 1e-12 {
			v = v.Mul(1 / l)
		}
		m.Normals = append(m.Normals, v)
	}
	if len(m.UVs) > 0 || len(other.UVs) > 0 {
		// Keep UVs parallel; pad whichever side is missing them.
		for len(m.UVs) < int(base) {
			m.UVs = append(m.UVs, mgl32.Vec2{})
		}
		if len(other.UVs) == len(other.Positions) {
			m.UVs = append(m.UVs, other.UVs...)
		} else {
			for range other.Positions {
				m.UVs = append(m.UVs, mgl32.Vec2{})
			}
		}
	}
	for _, i := range other.Indices {
		m.Indices = append(m.Indices, base+i)
	}
	m.Format = PickFormat(len(m.Positions))
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Positions: append([]mgl32.Vec3(nil), m.Positions...),
		Normals:   append([]mgl32.Vec3(nil), m.Normals...),
		Indices:   append([]uint32(nil), m.Indices...),
		Format:    m.Format,
	}
	if len(m.UVs) > 0 {
		c.UVs = append([]mgl32.Vec2(nil), m.UVs...)
	}
	return c
}

// TRS builds a translate * rotate(Z,Y,X Euler degrees) * scale matrix.
// Rotation order matches the object documents: Y (yaw), then X (pitch),
// then Z (roll) applied in local space.
func TRS(position, rotationDeg, scale mgl32.Vec3) mgl32.Mat4 {
	sx, sy, sz := scale.X(), scale.Y(), scale.Z()
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	if sz == 0 {
		sz = 1
	}
	t := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	ry := mgl32.HomogRotate3DY(degToRad(rotationDeg.Y()))
	rx := mgl32.HomogRotate3DX(degToRad(rotationDeg.X()))
	rz := mgl32.HomogRotate3DZ(degToRad(rotationDeg.Z()))
	s := mgl32.Scale3D(sx, sy, sz)
	return t.Mul4(ry).Mul4(rx).Mul4(rz).Mul4(s)
}

func degToRad(d float32) float32 {
	return d * math32.Pi / 180
}
