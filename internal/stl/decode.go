// Package stl decodes and encodes the two STL variants (binary and ASCII).
// These are the only mesh byte formats the engine consumes; detection between
// the two is heuristic because ASCII files may start with arbitrary solid
// names and binary files may start with bytes that spell "solid".
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"world-assembler/internal/geom"
)

const (
	headerLen = 80
	// countLen is the little-endian uint32 triangle count after the header.
	countLen = 4
	// recordLen is one binary triangle record: normal + 3 vertices (float32
	// triples) + 2 attribute bytes.
	recordLen = 50
	minLen    = headerLen + countLen
)

var (
	// ErrTooShort is returned for buffers shorter than the minimum binary
	// header + count (84 bytes).
	ErrTooShort = errors.New("stl: buffer too short")
	// ErrTruncated is returned when a binary body is shorter than its
	// declared triangle count requires.
	ErrTruncated = errors.New("stl: truncated binary body")
	// ErrNoVertices is returned when an ASCII body yields fewer than 3
	// usable vertices.
	ErrNoVertices = errors.New("stl: no vertices")
)

// Options controls decoding.
type Options struct {
	// SwapYZ remaps positions and normals (x,y,z) -> (x,z,y). Set when the
	// source uses Z-up (OpenSCAD exports) and the consumer uses Y-up.
	SwapYZ bool
}

// Decode parses data as binary or ASCII STL and returns the mesh. Vertices
// are emitted unshared (3 per triangle, no welding). Errors carry a short
// diagnostic only; Decode never panics on malformed input.
func Decode(data []byte, opts Options) (*geom.Mesh, error) {
	if len(data) < minLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooShort, len(data))
	}
	declared := binary.LittleEndian.Uint32(data[headerLen : headerLen+countLen])
	expected := int64(minLen) + int64(declared)*recordLen
	if expected == int64(len(data)) {
		return decodeBinary(data, declared, opts)
	}
	if len(data) >= 5 && strings.EqualFold(string(data[:5]), "solid") {
		return decodeASCII(data, opts)
	}
	return decodeBinary(data, declared, opts)
}

func decodeBinary(data []byte, declared uint32, opts Options) (*geom.Mesh, error) {
	expected := int64(minLen) + int64(declared)*recordLen
	if expected > int64(len(data)) {
		return nil, fmt.Errorf("%w: header declares %d triangles, need %d bytes, have %d",
			ErrTruncated, declared, expected, len(data))
	}
	// Trailing garbage after the declared records is tolerated; conversely a
	// count that overshoots the buffer was rejected above, so recompute the
	// usable count from the bytes actually present.
	count := int((int64(len(data)) - minLen) / recordLen)
	if int64(declared) < int64(count) {
		count = int(declared)
	}

	m := &geom.Mesh{
		Positions: make([]mgl32.Vec3, 0, count*3),
		Normals:   make([]mgl32.Vec3, 0, count*3),
		Indices:   make([]uint32, 0, count*3),
	}
	off := minLen
	for t := 0; t < count; t++ {
		n := readVec3(data[off:])
		v0 := readVec3(data[off+12:])
		v1 := readVec3(data[off+24:])
		v2 := readVec3(data[off+36:])
		off += recordLen
		if opts.SwapYZ {
			n = swapYZ(n)
			v0, v1, v2 = swapYZ(v0), swapYZ(v1), swapYZ(v2)
		}
		base := uint32(len(m.Positions))
		m.Positions = append(m.Positions, v0, v1, v2)
		m.Normals = append(m.Normals, n, n, n)
		m.Indices = append(m.Indices, base, base+1, base+2)
	}
	m.Format = geom.PickFormat(len(m.Positions))
	return m, nil
}

func decodeASCII(data []byte, opts Options) (*geom.Mesh, error) {
	m := &geom.Mesh{}
	cur := mgl32.Vec3{0, 1, 0}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "facet":
			// "facet normal nx ny nz"; malformed numbers keep the previous
			// normal rather than aborting the parse.
			if len(fields) >= 5 && fields[1] == "normal" {
				if v, ok := parseVec3(fields[2:5]); ok {
					cur = v
				}
			}
		case "vertex":
			if len(fields) < 4 {
				continue
			}
			v, ok := parseVec3(fields[1:4])
			if !ok {
				continue
			}
			m.Positions = append(m.Positions, v)
			m.Normals = append(m.Normals, cur)
		}
	}
	if len(m.Positions) < 3 {
		return nil, fmt.Errorf("%w: %d valid vertices", ErrNoVertices, len(m.Positions))
	}
	// Vertices arrive in facet order; leftover vertices that do not complete
	// a triangle are dropped.
	tris := len(m.Positions) / 3
	m.Positions = m.Positions[:tris*3]
	m.Normals = m.Normals[:tris*3]
	if opts.SwapYZ {
		for i := range m.Positions {
			m.Positions[i] = swapYZ(m.Positions[i])
			m.Normals[i] = swapYZ(m.Normals[i])
		}
	}
	m.Indices = make([]uint32, tris*3)
	for i := range m.Indices {
		m.Indices[i] = uint32(i)
	}
	m.Format = geom.PickFormat(len(m.Positions))
	return m, nil
}

func readVec3(b []byte) mgl32.Vec3 {
	return mgl32.Vec3{
		math.Float32frombits(binary.LittleEndian.Uint32(b)),
		math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

func parseVec3(tok []string) (mgl32.Vec3, bool) {
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(tok[i], 32)
		if err != nil {
			return v, false
		}
		v[i] = float32(f)
	}
	return v, true
}

func swapYZ(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v[0], v[2], v[1]}
}
