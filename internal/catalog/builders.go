package catalog

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"world-assembler/internal/primitive"
	"world-assembler/internal/scene"
)

// builders is the static table of procedural prefabs. Ids with more than one
// entry pick a variant via the caller's seeded rng. All builders produce
// geometry with its base at Y=0 so ground-relative placement works uniformly.
var builders = map[string][]BuilderFunc{
	"tower":   {buildTower},
	"house":   {buildHouse},
	"ruins":   {buildRuins},
	"camp":    {buildCamp},
	"portal":  {buildPortal},
	"tree":    {buildTreeRound, buildTreeConifer},
	"rock":    {buildRockBoulder, buildRockSlab, buildRockSpire},
	"crystal": {buildCrystal},
	"lamp":    {buildLamp},
}

var (
	stoneMat  = scene.Material{Color: mgl32.Vec3{0.55, 0.53, 0.5}}
	woodMat   = scene.Material{Color: mgl32.Vec3{0.45, 0.3, 0.18}}
	leafMat   = scene.Material{Color: mgl32.Vec3{0.22, 0.5, 0.24}}
	metalMat  = scene.Material{Color: mgl32.Vec3{0.6, 0.62, 0.68}, Metallic: 0.8, Smoothness: 0.7}
	canvasMat = scene.Material{Color: mgl32.Vec3{0.78, 0.72, 0.6}}
)

func emissive(color mgl32.Vec3, strength float32) scene.Material {
	return scene.Material{Color: color, Emission: color, EmissionStrength: strength}
}

// jitter returns 1 +/- amount, driven by rng, for mild per-instance variety.
func jitter(rng *rand.Rand, amount float32) float32 {
	return 1 + (rng.Float32()*2-1)*amount
}

// buildTower: tall cylindrical tower with a conical roof and a window band.
func buildTower(rng *rand.Rand) *scene.Node {
	h := 7 * jitter(rng, 0.15)
	root := scene.NewNode("tower")

	shaft := scene.NewMeshNode("shaft", primitive.Cylinder(1.1, h, 20), stoneMat)
	roof := scene.NewMeshNode("roof", primitive.Cone(16), stoneMat)
	roof.Mat.Color = mgl32.Vec3{0.4, 0.25, 0.25}
	roof.Position = mgl32.Vec3{0, h, 0}
	roof.Scale = mgl32.Vec3{3, 2.2, 3}
	band := scene.NewMeshNode("window-band", primitive.Torus(1.12, 0.12, 24, 8), emissive(mgl32.Vec3{1, 0.85, 0.4}, 1.5))
	band.Position = mgl32.Vec3{0, h * 0.8, 0}

	return root.Add(shaft, roof, band)
}

// buildHouse: small hut, box walls with a gabled (cone-squashed) roof.
func buildHouse(rng *rand.Rand) *scene.Node {
	w := 3 * jitter(rng, 0.2)
	root := scene.NewNode("house")

	walls := scene.NewMeshNode("walls", primitive.Box(w, 2, w*0.8), canvasMat)
	walls.Position = mgl32.Vec3{0, 1, 0}
	roof := scene.NewMeshNode("roof", primitive.Cone(8), woodMat)
	roof.Position = mgl32.Vec3{0, 2, 0}
	roof.Scale = mgl32.Vec3{w * 1.5, 1.4, w * 1.2}
	door := scene.NewMeshNode("door", primitive.Box(0.7, 1.3, 0.1), woodMat)
	door.Position = mgl32.Vec3{0, 0.65, w * 0.4}

	return root.Add(walls, roof, door)
}

// buildRuins: broken arch (two pillars, fallen lintel) plus rubble.
func buildRuins(rng *rand.Rand) *scene.Node {
	root := scene.NewNode("ruins")

	left := scene.NewMeshNode("pillar-l", primitive.Box(0.7, 3, 0.7), stoneMat)
	left.Position = mgl32.Vec3{-1.4, 1.5, 0}
	right := scene.NewMeshNode("pillar-r", primitive.Box(0.7, 2.1, 0.7), stoneMat)
	right.Position = mgl32.Vec3{1.4, 1.05, 0}
	right.Rotation = mgl32.Vec3{0, 0, 8}
	lintel := scene.NewMeshNode("lintel", primitive.Box(2.6, 0.5, 0.7), stoneMat)
	lintel.Position = mgl32.Vec3{0.4, 0.3, 1.1}
	lintel.Rotation = mgl32.Vec3{0, 25, 0}
	root.Add(left, right, lintel)

	for i := 0; i < 4; i++ {
		s := 0.3 + rng.Float32()*0.4
		rubble := scene.NewMeshNode("rubble", primitive.Box(s, s, s), stoneMat)
		rubble.Position = mgl32.Vec3{(rng.Float32()*2 - 1) * 2, s / 2, (rng.Float32()*2 - 1) * 2}
		rubble.Rotation = mgl32.Vec3{0, rng.Float32() * 90, 0}
		root.Add(rubble)
	}
	return root
}

// buildCamp: tent (cone) plus a glowing campfire ring.
func buildCamp(rng *rand.Rand) *scene.Node {
	root := scene.NewNode("camp")

	tent := scene.NewMeshNode("tent", primitive.Cone(10), canvasMat)
	tent.Scale = mgl32.Vec3{2.4, 1.8 * jitter(rng, 0.1), 2.4}
	tent.Position = mgl32.Vec3{-1.2, 0, 0}
	ring := scene.NewMeshNode("fire-ring", primitive.Torus(0.5, 0.1, 16, 8), stoneMat)
	ring.Position = mgl32.Vec3{1.3, 0.1, 0}
	fire := scene.NewMeshNode("fire", primitive.Cone(8), emissive(mgl32.Vec3{1, 0.45, 0.1}, 2.5))
	fire.Scale = mgl32.Vec3{0.6, 0.8, 0.6}
	fire.Position = mgl32.Vec3{1.3, 0.05, 0}

	return root.Add(tent, ring, fire)
}

// buildPortal: glowing ring standing upright on a stone base.
func buildPortal(rng *rand.Rand) *scene.Node {
	root := scene.NewNode("portal")

	base := scene.NewMeshNode("base", primitive.Box(2.4, 0.4, 1), stoneMat)
	base.Position = mgl32.Vec3{0, 0.2, 0}
	ring := scene.NewMeshNode("ring", primitive.Torus(1.5, 0.18, 32, 12), emissive(mgl32.Vec3{0.45, 0.75, 1}, 3+rng.Float32()))
	ring.Position = mgl32.Vec3{0, 2, 0}
	ring.Rotation = mgl32.Vec3{90, 0, 0}

	return root.Add(base, ring)
}

// buildTreeRound: trunk + spherical canopy.
func buildTreeRound(rng *rand.Rand) *scene.Node {
	h := 2.2 * jitter(rng, 0.25)
	root := scene.NewNode("tree")

	trunk := scene.NewMeshNode("trunk", primitive.Cylinder(0.22, h, 8), woodMat)
	canopy := scene.NewMeshNode("canopy", primitive.Sphere(1.1*jitter(rng, 0.2), 10, 12), leafMat)
	canopy.Position = mgl32.Vec3{0, h + 0.7, 0}

	return root.Add(trunk, canopy)
}

// buildTreeConifer: trunk + stacked cones.
func buildTreeConifer(rng *rand.Rand) *scene.Node {
	h := 1.4 * jitter(rng, 0.2)
	root := scene.NewNode("tree")

	trunk := scene.NewMeshNode("trunk", primitive.Cylinder(0.18, h, 8), woodMat)
	root.Add(trunk)
	for i := 0; i < 3; i++ {
		tier := scene.NewMeshNode("tier", primitive.Cone(10), leafMat)
		s := 2.2 - float32(i)*0.55
		tier.Scale = mgl32.Vec3{s, 1.2, s}
		tier.Position = mgl32.Vec3{0, h + float32(i)*0.8, 0}
		root.Add(tier)
	}
	return root
}

// Rock variants: squashed spheres and boxes in stone gray.
func buildRockBoulder(rng *rand.Rand) *scene.Node {
	n := scene.NewMeshNode("rock", primitive.Sphere(0.8, 6, 8), stoneMat)
	n.Scale = mgl32.Vec3{jitter(rng, 0.3), 0.7 * jitter(rng, 0.3), jitter(rng, 0.3)}
	n.Position = mgl32.Vec3{0, 0.45, 0}
	root := scene.NewNode("rock")
	return root.Add(n)
}

func buildRockSlab(rng *rand.Rand) *scene.Node {
	n := scene.NewMeshNode("rock", primitive.Box(1.6*jitter(rng, 0.2), 0.5, 1.1), stoneMat)
	n.Position = mgl32.Vec3{0, 0.25, 0}
	n.Rotation = mgl32.Vec3{0, rng.Float32() * 180, 0}
	root := scene.NewNode("rock")
	return root.Add(n)
}

func buildRockSpire(rng *rand.Rand) *scene.Node {
	n := scene.NewMeshNode("rock", primitive.Cone(9), stoneMat)
	n.Scale = mgl32.Vec3{1.1, 1.6 * jitter(rng, 0.25), 1.1}
	root := scene.NewNode("rock")
	return root.Add(n)
}

// buildCrystal: glowing spire cluster.
func buildCrystal(rng *rand.Rand) *scene.Node {
	root := scene.NewNode("crystal")
	glow := emissive(mgl32.Vec3{0.6, 0.35, 0.95}, 2.5)
	main := scene.NewMeshNode("spire", primitive.Cone(8), glow)
	main.Scale = mgl32.Vec3{0.8, 2.4 * jitter(rng, 0.2), 0.8}
	side := scene.NewMeshNode("shard", primitive.Cone(8), glow)
	side.Scale = mgl32.Vec3{0.45, 1.1, 0.45}
	side.Position = mgl32.Vec3{0.6, 0, 0.2}
	side.Rotation = mgl32.Vec3{0, 0, -15}
	return root.Add(main, side)
}

// buildLamp: sci-fi lamp post with an emissive head.
func buildLamp(rng *rand.Rand) *scene.Node {
	root := scene.NewNode("lamp")
	post := scene.NewMeshNode("post", primitive.Cylinder(0.1, 3, 8), metalMat)
	head := scene.NewMeshNode("head", primitive.Sphere(0.35, 8, 10), emissive(mgl32.Vec3{1, 0.95, 0.75}, 3))
	head.Position = mgl32.Vec3{0, 3.2, 0}
	return root.Add(post, head)
}

// buildFallback: unknown catalog ids degrade to this generic crate.
func buildFallback(rng *rand.Rand) *scene.Node {
	root := scene.NewNode("fallback")
	crate := scene.NewMeshNode("crate", primitive.Box(1, 1, 1), scene.Material{Color: mgl32.Vec3{0.6, 0.5, 0.4}})
	crate.Position = mgl32.Vec3{0, 0.5, 0}
	return root.Add(crate)
}
