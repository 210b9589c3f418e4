package stl

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"world-assembler/internal/geom"
)

// header is written into the 80-byte comment field of binary exports.
const header = "world-assembler binary stl"

// Encode serializes the mesh as binary STL. Indexed triangles are flattened
// into independent 50-byte records; the per-record normal is the normal of
// the triangle's first vertex, falling back to a face normal when the mesh
// carries none.
func Encode(m *geom.Mesh) []byte {
	tris := m.TriangleCount()
	out := make([]byte, minLen+tris*recordLen)
	copy(out, header)
	binary.LittleEndian.PutUint32(out[headerLen:], uint32(tris))

	off := minLen
	for t := 0; t < tris; t++ {
		i0, i1, i2 := m.Indices[t*3], m.Indices[t*3+1], m.Indices[t*3+2]
		a, b, c := m.Positions[i0], m.Positions[i1], m.Positions[i2]
		var n mgl32.Vec3
		if int(i0) < len(m.Normals) {
			n = m.Normals[i0]
		}
		if n.Len() < 1e-12 {
			n = b.Sub(a).Cross(c.Sub(a))
			if l := n.Len(); l > 1e-12 {
				n = n.Mul(1 / l)
			}
		}
		writeVec3(out[off:], n)
		writeVec3(out[off+12:], a)
		writeVec3(out[off+24:], b)
		writeVec3(out[off+36:], c)
		// 2 attribute bytes stay zero.
		off += recordLen
	}
	return out
}

func writeVec3(b []byte, v mgl32.Vec3) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(v[2]))
}
