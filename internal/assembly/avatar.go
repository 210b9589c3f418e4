package assembly

import (
	"context"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"world-assembler/internal/geom"
	"world-assembler/internal/plan"
	"world-assembler/internal/primitive"
	"world-assembler/internal/scene"
)

// AssembleAvatar builds or updates the avatar in the pipeline's scene. The
// base body is rebuilt only when the derived archetype changes; attached
// parts are cleared and rebuilt from the spec's part list on every call. A
// mesh override (format "stl") is fetched asynchronously and swapped in by
// Tick; until then — and after any fetch or decode failure — the procedural
// body stays visible, so the avatar is never empty.
func (p *Pipeline) AssembleAvatar(ctx context.Context, av *plan.Avatar) {
	p.avatarVersion++
	p.state = StateResolving

	arch := deriveArchetype(av.Tags, av.Parts)
	primary := plan.HexColorOr(av.PrimaryColor, mgl32.Vec3{0, 0.82, 1})
	secondary := plan.HexColorOr(av.SecondaryColor, mgl32.Vec3{1, 1, 1})
	glow := hasGlowTag(av.Tags)
	l := lookFor(arch, primary, secondary, glow)

	if p.rig.root == nil {
		p.rig.root = scene.NewNode("avatar")
		p.scn.Root.Add(p.rig.root)
	}
	if !p.rig.built || p.rig.arch != arch {
		// Archetype changed (or first call): rebuild the base body. The
		// common case of an unchanged archetype skips all geometry work.
		if p.rig.body != nil {
			p.rig.root.Children = removeChild(p.rig.root.Children, p.rig.body)
		}
		body, head := buildBody(arch, l)
		p.rig.body = body
		p.rig.head = head
		p.rig.arch = arch
		p.rig.built = true
		p.rig.root.Add(body)
	} else {
		// Same archetype: refresh the look in place.
		applyLook(p.rig.body, l)
	}
	p.rig.root.Scale = mgl32.Vec3{av.Height, av.Height, av.Height}

	p.state = StatePlacing
	p.rebuildParts(av, l)

	if av.Mesh != nil {
		p.applyMeshOverride(ctx, av)
	} else {
		// No override: drop any previously applied mesh, show the body.
		if p.rig.meshRoot != nil {
			p.rig.root.Children = removeChild(p.rig.root.Children, p.rig.meshRoot)
			p.rig.meshRoot = nil
		}
		p.appliedMeshKey = ""
		p.rig.body.Visible = true
		p.rig.parts.Visible = true
	}

	p.state = StateDone
	p.logf("avatar %q assembled: archetype=%s parts=%d", av.Name, arch, len(av.Parts))
}

// applyLook retints the base body without rebuilding geometry. Primary goes
// to torso and skull, secondary to limbs and accessories, mirroring
// buildBody's assignment.
func applyLook(body *scene.Node, l look) {
	var visit func(n *scene.Node)
	visit = func(n *scene.Node) {
		switch n.Name {
		case "torso", "skull":
			n.Mat = l.primary
		case "leg-l", "leg-r", "arm-l", "arm-r", "antenna", "hat", "snout", "wing-l", "wing-r":
			n.Mat = l.secondary
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(body)
}

// rebuildParts clears and rebuilds the attached-part nodes from the spec.
// When the spec has no parts but carries glow/horn-like tags, a small
// deterministic fallback set is synthesized so the spec still changes the
// avatar visibly.
func (p *Pipeline) rebuildParts(av *plan.Avatar, l look) {
	if p.rig.parts != nil {
		p.rig.root.Children = removeChild(p.rig.root.Children, p.rig.parts)
	}
	p.rig.parts = scene.NewNode("parts")
	p.rig.root.Add(p.rig.parts)

	parts := av.Parts
	if len(parts) == 0 {
		parts = fallbackParts(av)
	}
	for _, part := range parts {
		node := buildPart(part, l)
		attach := p.rig.parts
		if part.Attach == "head" && p.rig.head != nil {
			// Parts anchor at the head origin but live under the parts
			// group so a rebuild never touches the body.
			node.Position = node.Position.Add(p.rig.head.Position)
		}
		attach.Add(node)
	}
	p.rig.parts.Visible = p.rig.body.Visible
}

// fallbackParts synthesizes parts from tags alone: glow yields a halo, horn
// tags yield a pair of head cones. Deterministic by construction.
func fallbackParts(av *plan.Avatar) []plan.AvatarPart {
	var out []plan.AvatarPart
	if hasGlowTag(av.Tags) {
		out = append(out, plan.AvatarPart{
			ID: "halo", Attach: "head", Primitive: "torus",
			Position: [3]float32{0, 0.2, 0}, Scale: [3]float32{1, 1, 1},
			Color: av.SecondaryColor, EmissionColor: av.SecondaryColor, EmissionStrength: 2,
		})
	}
	for _, t := range av.Tags {
		if strings.Contains(strings.ToLower(t), "horn") {
			out = append(out,
				plan.AvatarPart{ID: "horn-l", Attach: "head", Primitive: "cone",
					Position: [3]float32{-0.08, 0.08, 0}, Rotation: [3]float32{0, 0, 20},
					Scale: [3]float32{0.05, 0.14, 0.05}, Color: av.SecondaryColor},
				plan.AvatarPart{ID: "horn-r", Attach: "head", Primitive: "cone",
					Position: [3]float32{0.08, 0.08, 0}, Rotation: [3]float32{0, 0, -20},
					Scale: [3]float32{0.05, 0.14, 0.05}, Color: av.SecondaryColor},
			)
			break
		}
	}
	return out
}

// buildPart maps one AvatarPart to geometry. Ids containing "staff", "halo"
// or "wing" trigger composite builders; otherwise the named primitive is
// used, defaulting to a box for unknown primitive names.
func buildPart(part plan.AvatarPart, l look) *scene.Node {
	mat := scene.Material{Color: plan.HexColorOr(part.Color, l.secondary.Color)}
	if part.EmissionStrength > 0 {
		mat.Emission = plan.HexColorOr(part.EmissionColor, mat.Color)
		mat.EmissionStrength = part.EmissionStrength
	}

	var node *scene.Node
	id := strings.ToLower(part.ID)
	switch {
	case strings.Contains(id, "staff"):
		node = buildStaff(part.ID, mat)
	case strings.Contains(id, "halo"):
		node = scene.NewMeshNode(part.ID, primitive.Torus(0.14, 0.015, 20, 8), mat)
		if node.Mat.EmissionStrength == 0 {
			node.Mat.Emission = node.Mat.Color
			node.Mat.EmissionStrength = 1.5
		}
	case strings.Contains(id, "wing"):
		node = wingPair(mat, 0, 0.3)
		node.Name = part.ID
	default:
		node = scene.NewMeshNode(part.ID, primitiveMesh(part.Primitive), mat)
	}
	node.Position = node.Position.Add(mgl32.Vec3{part.Position[0], part.Position[1], part.Position[2]})
	node.Rotation = mgl32.Vec3{part.Rotation[0], part.Rotation[1], part.Rotation[2]}
	node.Scale = mgl32.Vec3{part.Scale[0], part.Scale[1], part.Scale[2]}
	return node
}

// buildStaff: shaft plus a small glowing ring head.
func buildStaff(name string, mat scene.Material) *scene.Node {
	root := scene.NewNode(name)
	shaft := scene.NewMeshNode("shaft", primitive.Cylinder(0.015, 0.6, 8), mat)
	head := scene.NewMeshNode("head", primitive.Torus(0.05, 0.012, 16, 8), scene.Material{
		Color: mat.Color, Emission: mat.Color, EmissionStrength: 2,
	})
	head.Position = mgl32.Vec3{0, 0.64, 0}
	return root.Add(shaft, head)
}

func primitiveMesh(kind string) *geom.Mesh {
	switch kind {
	case "cone":
		return primitive.Cone(16)
	case "torus":
		return primitive.Torus(0.5, 0.15, 24, 12)
	case "quad", "plane":
		return primitive.Quad()
	case "sphere":
		return primitive.Sphere(0.5, 12, 16)
	case "cylinder":
		return primitive.Cylinder(0.5, 1, 16)
	default: // "cube", "box", unknown
		return primitive.Box(1, 1, 1)
	}
}
