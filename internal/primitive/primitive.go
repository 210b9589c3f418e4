// Package primitive generates parametric meshes. All generators are pure
// functions of their parameters; resolution arguments are clamped to safe
// ranges so a bad document cannot cause unbounded output.
package primitive

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"world-assembler/internal/geom"
)

// Resolution clamp ranges.
const (
	coneMinSides = 8
	coneMaxSides = 64

	torusMinMajorSegments = 12
	torusMaxMajorSegments = 128
	torusMinMinorSegments = 8
	torusMaxMinorSegments = 64

	sphereMinRings  = 4
	sphereMaxRings  = 64
	sphereMinSlices = 6
	sphereMaxSlices = 64

	cylinderMinSlices = 6
	cylinderMaxSlices = 64
)

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Cone builds a cone of radius 0.5 with its base on Y=0 and apex at Y=1.
// Vertices: one apex, one base center, and sides ring vertices; triangulated
// as a side fan plus a base fan. Normals are recomputed from the faces rather
// than authored, so the silhouette stays faceted at low side counts.
func Cone(sides int) *geom.Mesh {
	sides = clampInt(sides, coneMinSides, coneMaxSides)
	m := &geom.Mesh{
		Positions: make([]mgl32.Vec3, 0, sides+2),
		Indices:   make([]uint32, 0, sides*6),
	}
	const (
		apex       = uint32(0)
		baseCenter = uint32(1)
	)
	m.Positions = append(m.Positions, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 0})
	for i := 0; i < sides; i++ {
		a := 2 * math32.Pi * float32(i) / float32(sides)
		m.Positions = append(m.Positions, mgl32.Vec3{0.5 * math32.Cos(a), 0, 0.5 * math32.Sin(a)})
	}
	ring := func(i int) uint32 { return uint32(2 + i%sides) }
	for i := 0; i < sides; i++ {
		// Ring runs clockwise seen from +Y, so apex/ring[i+1]/ring[i] is CCW
		// from outside; the base fan winds the other way to face down.
		m.Indices = append(m.Indices, apex, ring(i+1), ring(i))
		m.Indices = append(m.Indices, baseCenter, ring(i), ring(i+1))
	}
	m.Format = geom.PickFormat(len(m.Positions))
	m.RecomputeNormals()
	return m
}

// Torus builds a torus around the Y axis using the standard tube
// parametrization: for each major segment the tube circle is spanned by the
// radial direction and +Y. The seam is duplicated so UVs run cleanly in
// [0,1]: uv = (i/majorSegments, j/minorSegments).
func Torus(majorRadius, minorRadius float32, majorSegments, minorSegments int) *geom.Mesh {
	majorSegments = clampInt(majorSegments, torusMinMajorSegments, torusMaxMajorSegments)
	minorSegments = clampInt(minorSegments, torusMinMinorSegments, torusMaxMinorSegments)
	if majorRadius <= 0 {
		majorRadius = 1
	}
	if minorRadius <= 0 {
		minorRadius = 0.25
	}

	cols := majorSegments + 1
	rows := minorSegments + 1
	m := &geom.Mesh{
		Positions: make([]mgl32.Vec3, 0, cols*rows),
		Normals:   make([]mgl32.Vec3, 0, cols*rows),
		UVs:       make([]mgl32.Vec2, 0, cols*rows),
		Indices:   make([]uint32, 0, majorSegments*minorSegments*6),
	}
	for i := 0; i < cols; i++ {
		u := 2 * math32.Pi * float32(i) / float32(majorSegments)
		radial := mgl32.Vec3{math32.Cos(u), 0, math32.Sin(u)}
		up := mgl32.Vec3{0, 1, 0}
		center := radial.Mul(majorRadius)
		for j := 0; j < rows; j++ {
			v := 2 * math32.Pi * float32(j) / float32(minorSegments)
			n := radial.Mul(math32.Cos(v)).Add(up.Mul(math32.Sin(v)))
			m.Positions = append(m.Positions, center.Add(n.Mul(minorRadius)))
			m.Normals = append(m.Normals, n)
			m.UVs = append(m.UVs, mgl32.Vec2{
				float32(i) / float32(majorSegments),
				float32(j) / float32(minorSegments),
			})
		}
	}
	for i := 0; i < majorSegments; i++ {
		for j := 0; j < minorSegments; j++ {
			a := uint32(i*rows + j)
			b := uint32((i+1)*rows + j)
			m.Indices = append(m.Indices, a, a+1, b, a+1, b+1, b)
		}
	}
	m.Format = geom.PickFormat(len(m.Positions))
	return m
}

// Quad builds a 1x1 flat quad on the XZ plane, centered at the origin,
// facing +Y.
func Quad() *geom.Mesh {
	m := &geom.Mesh{
		Positions: []mgl32.Vec3{
			{-0.5, 0, -0.5}, {-0.5, 0, 0.5}, {0.5, 0, 0.5}, {0.5, 0, -0.5},
		},
		Normals: []mgl32.Vec3{
			{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0},
		},
		UVs: []mgl32.Vec2{
			{0, 0}, {0, 1}, {1, 1}, {1, 0},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
	return m
}

// Box builds an axis-aligned box centered at the origin with authored face
// normals (24 vertices so faces stay flat).
func Box(w, h, d float32) *geom.Mesh {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	if d <= 0 {
		d = 1
	}
	hx, hy, hz := w/2, h/2, d/2
	type face struct {
		n    mgl32.Vec3
		a, b mgl32.Vec3 // in-plane axes, scaled to half extents
	}
	faces := []face{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -hz}, mgl32.Vec3{0, hy, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, hz}, mgl32.Vec3{0, hy, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{hx, 0, 0}, mgl32.Vec3{0, 0, -hz}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{hx, 0, 0}, mgl32.Vec3{0, 0, hz}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{hx, 0, 0}, mgl32.Vec3{0, hy, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-hx, 0, 0}, mgl32.Vec3{0, hy, 0}},
	}
	m := &geom.Mesh{
		Positions: make([]mgl32.Vec3, 0, 24),
		Normals:   make([]mgl32.Vec3, 0, 24),
		UVs:       make([]mgl32.Vec2, 0, 24),
		Indices:   make([]uint32, 0, 36),
	}
	for _, f := range faces {
		c := mgl32.Vec3{f.n[0] * hx, f.n[1] * hy, f.n[2] * hz}
		base := uint32(len(m.Positions))
		m.Positions = append(m.Positions,
			c.Sub(f.a).Sub(f.b), c.Add(f.a).Sub(f.b), c.Add(f.a).Add(f.b), c.Sub(f.a).Add(f.b))
		m.Normals = append(m.Normals, f.n, f.n, f.n, f.n)
		m.UVs = append(m.UVs, mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, mgl32.Vec2{1, 1}, mgl32.Vec2{0, 1})
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// Sphere builds a UV sphere centered at the origin.
func Sphere(radius float32, rings, slices int) *geom.Mesh {
	if radius <= 0 {
		radius = 0.5
	}
	rings = clampInt(rings, sphereMinRings, sphereMaxRings)
	slices = clampInt(slices, sphereMinSlices, sphereMaxSlices)

	cols := slices + 1
	m := &geom.Mesh{}
	for r := 0; r <= rings; r++ {
		phi := math32.Pi * float32(r) / float32(rings)
		y := math32.Cos(phi)
		rad := math32.Sin(phi)
		for s := 0; s < cols; s++ {
			theta := 2 * math32.Pi * float32(s) / float32(slices)
			n := mgl32.Vec3{rad * math32.Cos(theta), y, rad * math32.Sin(theta)}
			m.Positions = append(m.Positions, n.Mul(radius))
			m.Normals = append(m.Normals, n)
			m.UVs = append(m.UVs, mgl32.Vec2{float32(s) / float32(slices), float32(r) / float32(rings)})
		}
	}
	for r := 0; r < rings; r++ {
		for s := 0; s < slices; s++ {
			a := uint32(r*cols + s)
			b := uint32((r+1)*cols + s)
			m.Indices = append(m.Indices, a, a+1, b, a+1, b+1, b)
		}
	}
	m.Format = geom.PickFormat(len(m.Positions))
	return m
}

// Cylinder builds a capped cylinder with its base on Y=0 and top at Y=height.
func Cylinder(radius, height float32, slices int) *geom.Mesh {
	if radius <= 0 {
		radius = 0.5
	}
	if height <= 0 {
		height = 1
	}
	slices = clampInt(slices, cylinderMinSlices, cylinderMaxSlices)

	m := &geom.Mesh{}
	// Side: duplicated seam column for clean UVs, authored radial normals.
	cols := slices + 1
	for s := 0; s < cols; s++ {
		theta := 2 * math32.Pi * float32(s) / float32(slices)
		n := mgl32.Vec3{math32.Cos(theta), 0, math32.Sin(theta)}
		m.Positions = append(m.Positions, n.Mul(radius), n.Mul(radius).Add(mgl32.Vec3{0, height, 0}))
		m.Normals = append(m.Normals, n, n)
		u := float32(s) / float32(slices)
		m.UVs = append(m.UVs, mgl32.Vec2{u, 0}, mgl32.Vec2{u, 1})
	}
	for s := 0; s < slices; s++ {
		a := uint32(s * 2)
		m.Indices = append(m.Indices, a, a+1, a+2, a+2, a+1, a+3)
	}
	// Caps: fan around dedicated center vertices.
	capStart := uint32(len(m.Positions))
	m.Positions = append(m.Positions, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, height, 0})
	m.Normals = append(m.Normals, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 1, 0})
	m.UVs = append(m.UVs, mgl32.Vec2{0.5, 0.5}, mgl32.Vec2{0.5, 0.5})
	for s := 0; s < slices; s++ {
		theta0 := 2 * math32.Pi * float32(s) / float32(slices)
		theta1 := 2 * math32.Pi * float32(s+1) / float32(slices)
		p0 := mgl32.Vec3{radius * math32.Cos(theta0), 0, radius * math32.Sin(theta0)}
		p1 := mgl32.Vec3{radius * math32.Cos(theta1), 0, radius * math32.Sin(theta1)}
		b := uint32(len(m.Positions))
		m.Positions = append(m.Positions,
			p0, p1,
			p0.Add(mgl32.Vec3{0, height, 0}), p1.Add(mgl32.Vec3{0, height, 0}))
		m.Normals = append(m.Normals,
			mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, -1, 0},
			mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 0})
		m.UVs = append(m.UVs, mgl32.Vec2{}, mgl32.Vec2{}, mgl32.Vec2{}, mgl32.Vec2{})
		m.Indices = append(m.Indices, capStart, b, b+1)       // bottom, faces -Y
		m.Indices = append(m.Indices, capStart+1, b+3, b+2)   // top, faces +Y
	}
	m.Format = geom.PickFormat(len(m.Positions))
	return m
}
