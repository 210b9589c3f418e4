package stl

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"world-assembler/internal/geom"
)

// binaryFixture builds a binary STL buffer with the given declared count and
// the given number of actual records, each a degenerate-but-parseable
// triangle with distinct coordinates.
func binaryFixture(declared uint32, records int) []byte {
	out := make([]byte, minLen+records*recordLen)
	binary.LittleEndian.PutUint32(out[headerLen:], declared)
	off := minLen
	for t := 0; t < records; t++ {
		writeVec3(out[off:], mgl32.Vec3{0, 0, 1})
		writeVec3(out[off+12:], mgl32.Vec3{float32(t), 0, 0})
		writeVec3(out[off+24:], mgl32.Vec3{float32(t) + 1, 0, 0})
		writeVec3(out[off+36:], mgl32.Vec3{float32(t), 1, 0})
		off += recordLen
	}
	return out
}

func TestDecodeBinary(t *testing.T) {
	m, err := Decode(binaryFixture(3, 3), Options{})
	require.NoError(t, err)
	assert.Equal(t, 9, m.VertexCount())
	assert.Equal(t, 3, m.TriangleCount())
	assert.Equal(t, geom.Index16, m.Format)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, m.Normals[0])
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, m.Positions[3])
}

func TestDecodeTooShort(t *testing.T) {
	_, err := Decode([]byte("solid tiny\nendsolid tiny\n"), Options{})
	require.ErrorIs(t, err, ErrTooShort)
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode(binaryFixture(10, 2), Options{})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeTrailingGarbage(t *testing.T) {
	data := append(binaryFixture(2, 2), []byte("garbage after the records")...)
	m, err := Decode(data, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, m.TriangleCount())
}

// A binary file whose comment header happens to start with "solid" must
// still decode as binary when the length matches the declared count exactly.
func TestDecodeBinaryWithSolidHeader(t *testing.T) {
	data := binaryFixture(2, 2)
	copy(data, "solid looking header")
	m, err := Decode(data, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, m.TriangleCount())
}

const asciiFixture = `solid tri
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 1 0
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex oops not-a-number 0
      vertex 0 0 1
    endloop
  endfacet
endsolid tri
`

func TestDecodeASCII(t *testing.T) {
	m, err := Decode([]byte(asciiFixture), Options{})
	require.NoError(t, err)
	// Six valid vertices survive (the malformed line is skipped), giving two
	// triangles.
	assert.Equal(t, 2, m.TriangleCount())
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, m.Normals[0])
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, m.Normals[3])
}

func TestDecodeASCIIDropsIncompleteTriangle(t *testing.T) {
	src := `solid partial
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 5 5 5
    endloop
  endfacet
endsolid partial
`
	m, err := Decode([]byte(src), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, m.TriangleCount())
	assert.Equal(t, 3, m.VertexCount())
}

func TestDecodeASCIINoVertices(t *testing.T) {
	src := "solid empty\n" + strings.Repeat("  \n", 40) + "endsolid empty\n"
	_, err := Decode([]byte(src), Options{})
	require.ErrorIs(t, err, ErrNoVertices)
}

func TestDecodeSwapYZ(t *testing.T) {
	data := binaryFixture(1, 1)
	m, err := Decode(data, Options{SwapYZ: true})
	require.NoError(t, err)
	// Normal (0,0,1) becomes (0,1,0); vertex (t,1,0) becomes (t,0,1).
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, m.Normals[0])
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, m.Positions[2])
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src, err := Decode(binaryFixture(4, 4), Options{})
	require.NoError(t, err)

	out, err := Decode(Encode(src), Options{})
	require.NoError(t, err)
	require.Equal(t, src.TriangleCount(), out.TriangleCount())
	assert.Equal(t, src.Positions, out.Positions)
	assert.Equal(t, src.Normals, out.Normals)
}
