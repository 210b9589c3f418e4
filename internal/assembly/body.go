package assembly

import (
	"github.com/go-gl/mathgl/mgl32"

	"world-assembler/internal/primitive"
	"world-assembler/internal/scene"
)

// avatarRig holds the persistent avatar nodes so repeated assembly calls can
// reuse the base body when the archetype is unchanged. A zero rig means no
// avatar has been assembled into the current scene.
type avatarRig struct {
	arch     Archetype
	built    bool
	root     *scene.Node // attached under the scene root
	body     *scene.Node // procedural body group (hidden when a mesh override applies)
	head     *scene.Node // attachment point for "head" parts
	parts    *scene.Node // rebuilt from the spec's part list each call
	meshRoot *scene.Node // decoded mesh override, nil until applied
}

// bipedProportions parameterizes the shared body builder so archetypes stay
// data, not copies of the construction code. Units are fractions of a
// 1-unit-tall body; the rig root is scaled to the spec height afterwards.
type bipedProportions struct {
	headRadius float32
	torsoW     float32
	torsoH     float32
	torsoD     float32
	limbRadius float32
	legH       float32
	armH       float32
}

var standardBiped = bipedProportions{
	headRadius: 0.11,
	torsoW:     0.26,
	torsoH:     0.34,
	torsoD:     0.15,
	limbRadius: 0.045,
	legH:       0.42,
	armH:       0.32,
}

// buildBody constructs the procedural base body for an archetype. The body
// spans Y in [0,1] with feet at 0; head center lands near Y=0.9.
func buildBody(arch Archetype, l look) (body, head *scene.Node) {
	p := standardBiped
	switch arch {
	case ArchetypeNavi:
		p.torsoW *= 0.8
		p.legH *= 1.12
		p.armH *= 1.12
	case ArchetypeDragon:
		p.torsoW *= 1.15
		p.torsoD *= 1.4
	}

	body = scene.NewNode("body")
	hipY := p.legH
	shoulderY := hipY + p.torsoH

	// Legs.
	for i, x := range []float32{-p.torsoW / 3, p.torsoW / 3} {
		leg := scene.NewMeshNode([]string{"leg-l", "leg-r"}[i], primitive.Cylinder(p.limbRadius, p.legH, 10), l.secondary)
		leg.Position = mgl32.Vec3{x, 0, 0}
		body.Add(leg)
	}
	// Torso.
	var torso *scene.Node
	if arch == ArchetypeRobot {
		torso = scene.NewMeshNode("torso", primitive.Box(p.torsoW, p.torsoH, p.torsoD), l.primary)
	} else {
		torso = scene.NewMeshNode("torso", primitive.Box(p.torsoW*0.95, p.torsoH, p.torsoD), l.primary)
	}
	torso.Position = mgl32.Vec3{0, hipY + p.torsoH/2, 0}
	body.Add(torso)
	// Arms.
	for i, x := range []float32{-(p.torsoW/2 + p.limbRadius*1.5), p.torsoW/2 + p.limbRadius*1.5} {
		arm := scene.NewMeshNode([]string{"arm-l", "arm-r"}[i], primitive.Cylinder(p.limbRadius, p.armH, 10), l.secondary)
		arm.Position = mgl32.Vec3{x, shoulderY - p.armH, 0}
		body.Add(arm)
	}
	// Head: grouping node so parts can attach at the head origin.
	head = scene.NewNode("head")
	head.Position = mgl32.Vec3{0, shoulderY + p.headRadius*1.2, 0}
	var skull *scene.Node
	if arch == ArchetypeRobot {
		skull = scene.NewMeshNode("skull", primitive.Box(p.headRadius*2, p.headRadius*2, p.headRadius*2), l.primary)
	} else {
		skull = scene.NewMeshNode("skull", primitive.Sphere(p.headRadius, 10, 12), l.primary)
	}
	head.Add(skull)
	body.Add(head)

	// Archetype-specific features on top of the shared biped.
	switch arch {
	case ArchetypeRobot:
		antenna := scene.NewMeshNode("antenna", primitive.Cylinder(0.008, 0.12, 6), l.secondary)
		antenna.Position = mgl32.Vec3{0, p.headRadius, 0}
		head.Add(antenna)
	case ArchetypeDragon:
		snout := scene.NewMeshNode("snout", primitive.Cone(8), l.secondary)
		snout.Scale = mgl32.Vec3{0.12, 0.14, 0.12}
		snout.Rotation = mgl32.Vec3{90, 0, 0}
		snout.Position = mgl32.Vec3{0, 0, p.headRadius}
		head.Add(snout)
		body.Add(wingPair(l.secondary, shoulderY, 0.3))
		tail := scene.NewMeshNode("tail", primitive.Cone(8), l.primary)
		tail.Scale = mgl32.Vec3{0.1, 0.35, 0.1}
		tail.Rotation = mgl32.Vec3{-120, 0, 0}
		tail.Position = mgl32.Vec3{0, hipY, -p.torsoD}
		body.Add(tail)
	case ArchetypeAngel:
		body.Add(wingPair(l.secondary, shoulderY, 0.34))
		halo := scene.NewMeshNode("halo", primitive.Torus(p.headRadius*1.3, 0.012, 20, 8),
			scene.Material{Color: mgl32.Vec3{1, 0.95, 0.6}, Emission: mgl32.Vec3{1, 0.95, 0.6}, EmissionStrength: 2})
		halo.Position = mgl32.Vec3{0, p.headRadius * 2, 0}
		head.Add(halo)
	case ArchetypeWizard:
		hat := scene.NewMeshNode("hat", primitive.Cone(12), l.secondary)
		hat.Scale = mgl32.Vec3{p.headRadius * 3.2, p.headRadius * 3, p.headRadius * 3.2}
		hat.Position = mgl32.Vec3{0, p.headRadius * 0.8, 0}
		head.Add(hat)
	}
	return body, head
}

// wingPair builds two mirrored flat quad wings at shoulder height.
func wingPair(mat scene.Material, shoulderY, span float32) *scene.Node {
	pair := scene.NewNode("wings")
	for i, side := range []float32{-1, 1} {
		wing := scene.NewMeshNode([]string{"wing-l", "wing-r"}[i], primitive.Quad(), mat)
		wing.Scale = mgl32.Vec3{span, 1, span * 1.6}
		wing.Rotation = mgl32.Vec3{0, 0, side * 75}
		wing.Position = mgl32.Vec3{side * span * 0.55, shoulderY, -0.05}
		pair.Add(wing)
	}
	return pair
}
