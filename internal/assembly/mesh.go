package assembly

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"world-assembler/internal/fetch"
	"world-assembler/internal/plan"
	"world-assembler/internal/scene"
	"world-assembler/internal/stl"
)

// meshKey derives the cache identity of a mesh override from its content
// hashes. Two specs referencing the same bytes share a key regardless of URI,
// so re-assembling an unchanged avatar never refetches.
func meshKey(m *plan.AvatarMesh) string {
	if len(m.Parts) == 0 {
		if m.SHA256 != "" {
			return m.SHA256
		}
		return m.URI
	}
	var b strings.Builder
	for _, part := range m.Parts {
		b.WriteString(part.ID)
		b.WriteByte(':')
		if part.SHA256 != "" {
			b.WriteString(part.SHA256)
		} else {
			b.WriteString(part.URI)
		}
		b.WriteByte(';')
	}
	return b.String()
}

// applyMeshOverride starts the asynchronous fetch of an avatar mesh override.
// The procedural body stays visible until the result is applied by Tick.
func (p *Pipeline) applyMeshOverride(ctx context.Context, av *plan.Avatar) {
	key := meshKey(av.Mesh)
	if key == p.appliedMeshKey && p.rig.meshRoot != nil {
		// Same content already applied: keep it, keep the body hidden.
		p.rig.body.Visible = false
		p.rig.parts.Visible = false
		return
	}
	if p.fetch == nil {
		p.logf("avatar mesh override skipped: no fetcher configured")
		return
	}
	version := p.avatarVersion
	mesh := *av.Mesh
	primary := plan.HexColorOr(av.PrimaryColor, mgl32.Vec3{0, 0.82, 1})
	secondary := plan.HexColorOr(av.SecondaryColor, mgl32.Vec3{1, 1, 1})

	p.inflight++
	go func() {
		root, err := fetchAvatarMesh(ctx, p.fetch, &mesh, primary, secondary)
		p.results <- meshResult{version: version, key: key, root: root, err: err}
	}()
}

// fetchAvatarMesh downloads and decodes every part of a mesh override and
// assembles them into one node, normalized so the body spans unit height with
// its lowest point at Y=0 (the rig root's scale turns that into the avatar's
// height). Generators emit Z-up STL, so decoding swaps Y and Z.
func fetchAvatarMesh(ctx context.Context, f Fetcher, m *plan.AvatarMesh, primary, secondary mgl32.Vec3) (*scene.Node, error) {
	parts := m.Parts
	if len(parts) == 0 {
		parts = []plan.AvatarMeshPart{{ID: "body", URI: m.URI, SHA256: m.SHA256}}
	}
	// Body first: its bounds set the uniform scale and ground offset every
	// other part inherits.
	order := make([]plan.AvatarMeshPart, 0, len(parts))
	for _, part := range parts {
		if part.ID == "body" {
			order = append(order, part)
		}
	}
	for _, part := range parts {
		if part.ID != "body" {
			order = append(order, part)
		}
	}

	root := scene.NewNode("avatar-mesh")
	scale := float32(1)
	offsetY := float32(0)
	for i, part := range order {
		data, err := f.Bytes(ctx, part.URI)
		if err != nil {
			return nil, fmt.Errorf("assembly: mesh part %s: %w", part.ID, err)
		}
		if err := fetch.VerifySHA256(data, part.SHA256); err != nil {
			return nil, fmt.Errorf("assembly: mesh part %s: %w", part.ID, err)
		}
		mesh, err := stl.Decode(data, stl.Options{SwapYZ: true})
		if err != nil {
			return nil, fmt.Errorf("assembly: mesh part %s: %w", part.ID, err)
		}
		if i == 0 {
			if min, max, ok := mesh.Bounds(); ok {
				span := max.Y() - min.Y()
				if span > 0 {
					scale = 1 / span
				}
				offsetY = -min.Y() * scale
			}
		}
		mat := scene.Material{Color: partColor(part.Material, primary, secondary)}
		if part.Material == "emissive" {
			mat.Emission = mat.Color
			mat.EmissionStrength = 1.5
		}
		node := scene.NewMeshNode(part.ID, mesh, mat)
		node.Scale = mgl32.Vec3{scale, scale, scale}
		node.Position = mgl32.Vec3{0, offsetY, 0}
		root.Add(node)
	}
	return root, nil
}

func partColor(hint string, primary, secondary mgl32.Vec3) mgl32.Vec3 {
	switch hint {
	case "secondary":
		return secondary
	case "emissive":
		return primary
	default: // "primary" and unhinted
		return primary
	}
}

// applyMeshResult installs a finished mesh fetch. Stale results (a newer
// assembly call bumped the version) are dropped; failures log and leave the
// procedural avatar in place.
func (p *Pipeline) applyMeshResult(res meshResult) {
	if res.version != p.avatarVersion {
		return
	}
	if res.err != nil {
		p.logf("avatar mesh override failed, keeping procedural body: %v", res.err)
		return
	}
	if p.rig.meshRoot != nil {
		p.rig.root.Children = removeChild(p.rig.root.Children, p.rig.meshRoot)
	}
	p.rig.meshRoot = res.root
	p.rig.root.Add(res.root)
	p.appliedMeshKey = res.key
	p.rig.body.Visible = false
	p.rig.parts.Visible = false
}
