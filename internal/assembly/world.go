package assembly

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"world-assembler/internal/plan"
	"world-assembler/internal/scene"
	"world-assembler/internal/terrain"
)

// AssembleWorld clears the scene and rebuilds it from the plan: sky/fog
// render state, ground geometry, then each object in document order. The
// plan's seed seeds one RNG consumed in placement order, so variant choices
// are reproducible for a given plan. Per-object failures degrade to partial
// output; AssembleWorld itself always produces a scene.
func (p *Pipeline) AssembleWorld(w *plan.World) *scene.Scene {
	p.worldVersion++
	v := p.worldVersion
	p.state = StateResolving

	p.scn.Clear()
	p.pending = p.pending[:0]
	// Avatar nodes lived in the cleared graph; in-flight avatar fetches are
	// now stale too.
	p.avatarVersion++
	p.rig = avatarRig{}
	p.appliedMeshKey = ""

	p.scn.Sky = scene.Sky{
		Tint:                plan.HexColorOr(w.Sky.SkyTint, mgl32.Vec3{0.4, 0.53, 0.73}),
		GroundColor:         plan.HexColorOr(w.Sky.GroundColor, mgl32.Vec3{0.3, 0.42, 0.23}),
		AtmosphereThickness: w.Sky.AtmosphereThickness,
		SunSize:             w.Sky.SunSize,
	}
	p.scn.Fog = scene.Fog{
		Enabled: w.Fog.Enabled,
		Color:   plan.HexColorOr(w.Fog.Color, p.scn.Sky.Tint),
		Density: w.Fog.Density,
	}

	ground := scene.NewMeshNode("ground", terrain.BuildGround(w.Ground, w.Seed), scene.Material{
		Color: plan.HexColorOr(w.Ground.Color, mgl32.Vec3{0.29, 0.42, 0.23}),
	})
	p.scn.Root.Add(ground)

	p.state = StatePlacing
	rng := rand.New(rand.NewSource(w.Seed))
	for _, obj := range w.Objects {
		h := p.resolver.Resolve(obj.Prefab, rng)
		inst := h.Instantiate()
		tintObject(inst, obj)

		group := scene.NewNode(obj.ID)
		group.Position = mgl32.Vec3{
			obj.Position[0],
			terrain.HeightAt(w.Ground, w.Seed, obj.Position[0], obj.Position[2]) + obj.Position[1],
			obj.Position[2],
		}
		group.Rotation = mgl32.Vec3{obj.Rotation[0], obj.Rotation[1], obj.Rotation[2]}
		group.Scale = mgl32.Vec3{obj.Scale[0], obj.Scale[1], obj.Scale[2]}
		group.Add(inst)
		p.scn.Root.Add(group)

		if tmpl := h.Template(); tmpl != nil {
			if !tmpl.Ready() {
				p.pending = append(p.pending, pendingSlot{
					version:     v,
					tmpl:        tmpl,
					group:       group,
					placeholder: inst,
					obj:         obj,
				})
			} else if n, err := tmpl.Result(); err != nil || n == nil {
				// Template failed on an earlier assembly; same outcome as
				// a failed pending load, the placement stays empty.
				p.logf("asset %s failed for %s: %v", tmpl.Name, obj.ID, err)
				group.Children = removeChild(group.Children, inst)
			}
		}
	}

	p.scn.FrameGround(w.Ground.Size)
	p.state = StateDone
	p.logf("world %q assembled: %d objects, %d pending assets", w.Name, len(w.Objects), len(p.pending))
	return p.scn
}

// tintObject applies the placement's color and emission overrides to the
// instantiated node tree. Non-emissive mesh nodes take the object color so
// authored glow parts (portal rings, campfires) keep their own look;
// a nonzero emission override makes the whole instance glow.
func tintObject(root *scene.Node, obj plan.Object) {
	color, colorErr := plan.ParseHexColor(obj.Color)
	emission, emissionErr := plan.ParseHexColor(obj.EmissionColor)
	applyEmission := obj.EmissionStrength > 0 && emissionErr == nil

	var visit func(n *scene.Node)
	visit = func(n *scene.Node) {
		if n.Mesh != nil {
			if colorErr == nil && n.Mat.EmissionStrength == 0 {
				n.Mat.Color = color
			}
			if applyEmission {
				n.Mat.Emission = emission
				n.Mat.EmissionStrength = obj.EmissionStrength
			}
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(root)
}
