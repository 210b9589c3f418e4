// Package terrain synthesizes the ground mesh from seeded coherent noise and
// exposes the same height function for object placement, so placed objects
// agree with the rendered surface.
package terrain

import (
	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"

	"world-assembler/internal/geom"
	"world-assembler/internal/plan"
)

// The Perlin permutation is built once with a fixed seed; the world seed
// enters only through sample-domain offsets (below). Different world seeds
// then decorrelate without rebuilding the permutation table, and HeightAt
// stays a pure function.
const (
	noiseAlpha    = 2
	noiseBeta     = 2
	noiseOctaves  = 3
	noisePermSeed = 1337
)

// Per-seed domain offsets: two distinct irrational-like constants so the X
// and Z shifts never coincide.
const (
	seedOffsetX = 0.7131
	seedOffsetZ = 1.9113
)

var noiseGen = perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, noisePermSeed)

// HeightAt returns the terrain height at world (x, z) for the given ground
// parameters and seed. Deterministic: identical arguments always produce the
// identical value. Output spans roughly [-HeightScale, HeightScale].
func HeightAt(g plan.Ground, seed int64, x, z float32) float32 {
	ns := g.NoiseScale
	if ns <= 0 {
		ns = plan.MinNoiseScale
	}
	nx := float64(x)/float64(ns) + float64(seed)*seedOffsetX
	nz := float64(z)/float64(ns) + float64(seed)*seedOffsetZ
	return float32(noiseGen.Noise2D(nx, nz)) * g.HeightScale
}

// BuildGround lays a (grid+1) x (grid+1) vertex lattice over
// [-size/2, size/2] on X and Z, samples HeightAt per vertex, and triangulates
// each cell with consistent winding. Normals are derived from the resulting
// surface. The mesh heights agree exactly with independent HeightAt calls at
// the same lattice coordinates.
func BuildGround(g plan.Ground, seed int64) *geom.Mesh {
	grid := g.Grid
	if grid < plan.MinGrid {
		grid = plan.MinGrid
	}
	if grid > plan.MaxGrid {
		grid = plan.MaxGrid
	}
	n := grid + 1
	half := g.Size / 2

	m := &geom.Mesh{
		Positions: make([]mgl32.Vec3, 0, n*n),
		UVs:       make([]mgl32.Vec2, 0, n*n),
		Indices:   make([]uint32, 0, grid*grid*6),
		Format:    geom.PickFormat(n * n),
	}
	for j := 0; j < n; j++ {
		z := -half + g.Size*float32(j)/float32(grid)
		for i := 0; i < n; i++ {
			x := -half + g.Size*float32(i)/float32(grid)
			m.Positions = append(m.Positions, mgl32.Vec3{x, HeightAt(g, seed, x, z), z})
			m.UVs = append(m.UVs, mgl32.Vec2{float32(i) / float32(grid), float32(j) / float32(grid)})
		}
	}
	for j := 0; j < grid; j++ {
		for i := 0; i < grid; i++ {
			a := uint32(j*n + i)
			b := a + uint32(n)
			// Two CCW triangles per cell seen from +Y.
			m.Indices = append(m.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	m.RecomputeNormals()
	return m
}
