// Package render draws assembled scenes with raylib. All GPU work lives
// here and in the host binary; the engine packages never import raylib.
package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"world-assembler/internal/geom"
	"world-assembler/internal/scene"
)

// uploaded is one mesh's GPU copy plus the CPU slices backing its pointers
// (kept so the GC never frees them while raylib holds the address).
type uploaded struct {
	mesh      rl.Mesh
	vertices  []float32
	normals   []float32
	texcoords []float32
}

// Renderer uploads meshes lazily and draws scene graphs. GPU resources are
// allocated on first use so the window/OpenGL context exists by then.
type Renderer struct {
	cache    map[*geom.Mesh]*uploaded
	shader   rl.Shader
	mtl      rl.Material
	ready    bool
	viewPos  [3]float32
	lightDir [3]float32

	locEmission []int32 // [emissionColor, emissionStrength]
}

// New returns a renderer with nothing uploaded. The lit shader and material
// are created on the first DrawScene call.
func New() *Renderer {
	return &Renderer{
		cache:    make(map[*geom.Mesh]*uploaded),
		lightDir: [3]float32{0.5, 1, 0.5},
	}
}

func (r *Renderer) ensure() {
	if r.ready {
		return
	}
	r.shader = rl.LoadShaderFromMemory(litVS, litFS)
	r.mtl = rl.LoadMaterialDefault()
	if rl.IsShaderValid(r.shader) {
		r.mtl.Shader = r.shader
		r.locEmission = []int32{
			rl.GetShaderLocation(r.shader, "emissionColor"),
			rl.GetShaderLocation(r.shader, "emissionStrength"),
		}
	}
	r.ready = true
}

// upload flattens a mesh into a triangle soup and uploads it. Raylib meshes
// index with uint16, which the 32-bit index mode can exceed, so indices are
// expanded instead of passed through.
func (r *Renderer) upload(m *geom.Mesh) *uploaded {
	if u, ok := r.cache[m]; ok {
		return u
	}
	n := len(m.Indices)
	u := &uploaded{
		vertices:  make([]float32, 0, n*3),
		normals:   make([]float32, 0, n*3),
		texcoords: make([]float32, 0, n*2),
	}
	for _, idx := range m.Indices {
		p := m.Positions[idx]
		u.vertices = append(u.vertices, p.X(), p.Y(), p.Z())
		if int(idx) < len(m.Normals) {
			nm := m.Normals[idx]
			u.normals = append(u.normals, nm.X(), nm.Y(), nm.Z())
		} else {
			u.normals = append(u.normals, 0, 1, 0)
		}
		if int(idx) < len(m.UVs) {
			uv := m.UVs[idx]
			u.texcoords = append(u.texcoords, uv.X(), uv.Y())
		} else {
			u.texcoords = append(u.texcoords, 0, 0)
		}
	}
	u.mesh = rl.Mesh{VertexCount: int32(n), TriangleCount: int32(n / 3)}
	if n > 0 {
		u.mesh.Vertices = &u.vertices[0]
		u.mesh.Normals = &u.normals[0]
		u.mesh.Texcoords = &u.texcoords[0]
	}
	rl.UploadMesh(&u.mesh, false)
	r.cache[m] = u
	return u
}

// SetView sets camera position and direction-to-light for this frame. Call
// once per frame before DrawScene so shading tracks the camera.
func (r *Renderer) SetView(viewPos, lightDir [3]float32) {
	r.viewPos = viewPos
	r.lightDir = lightDir
}

// ClearColor picks the frame clear color: fog color when fog is on,
// otherwise the sky tint.
func ClearColor(s *scene.Scene) rl.Color {
	if s.Fog.Enabled {
		return toColor(s.Fog.Color)
	}
	return toColor(s.Sky.Tint)
}

// Camera converts the scene's suggested framing to a raylib camera.
func Camera(s *scene.Scene) rl.Camera3D {
	return rl.Camera3D{
		Position:   toVec3(s.Camera.Position),
		Target:     toVec3(s.Camera.Target),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       s.Camera.FovY,
		Projection: rl.CameraPerspective,
	}
}

// DrawScene walks the scene graph and draws every visible mesh node with its
// accumulated transform. Must be called between BeginMode3D and EndMode3D.
func (r *Renderer) DrawScene(s *scene.Scene) {
	r.ensure()
	r.setFrameUniforms(s)
	s.Root.Walk(func(n *scene.Node, world mgl32.Mat4) {
		if n.Mesh == nil || len(n.Mesh.Indices) == 0 {
			return
		}
		u := r.upload(n.Mesh)
		if albedo := r.mtl.GetMap(rl.MapAlbedo); albedo != nil {
			albedo.Color = toColor(n.Mat.Color)
		}
		r.setEmission(n.Mat)
		rl.DrawMesh(u.mesh, r.mtl, toMatrix(world))
	})
}

// Unload releases every uploaded mesh. Call when the scene is rebuilt from a
// new plan; templates keep their geom.Mesh, so a later draw re-uploads.
func (r *Renderer) Unload() {
	for _, u := range r.cache {
		rl.UnloadMesh(&u.mesh)
	}
	r.cache = make(map[*geom.Mesh]*uploaded)
}

func (r *Renderer) setEmission(mat scene.Material) {
	if !rl.IsShaderValid(r.shader) || len(r.locEmission) != 2 {
		return
	}
	col := [3]float32{mat.Emission.X(), mat.Emission.Y(), mat.Emission.Z()}
	if loc := r.locEmission[0]; loc >= 0 {
		rl.SetShaderValueV(r.shader, loc, col[:], rl.ShaderUniformVec3, 1)
	}
	if loc := r.locEmission[1]; loc >= 0 {
		rl.SetShaderValue(r.shader, loc, []float32{mat.EmissionStrength}, rl.ShaderUniformFloat)
	}
}

// setFrameUniforms sets viewPos, lightDir, ambient, light color/intensity,
// and specular on the lit shader (cgo-safe: local arrays).
func (r *Renderer) setFrameUniforms(s *scene.Scene) {
	if !rl.IsShaderValid(r.shader) {
		return
	}
	viewPos := [3]float32{r.viewPos[0], r.viewPos[1], r.viewPos[2]}
	lightDir := [3]float32{r.lightDir[0], r.lightDir[1], r.lightDir[2]}
	amb := [4]float32{s.Ambient.X(), s.Ambient.Y(), s.Ambient.Z(), 1}
	lightColor := [3]float32{defaultLightColor[0], defaultLightColor[1], defaultLightColor[2]}
	if loc := rl.GetShaderLocation(r.shader, "viewPos"); loc >= 0 {
		rl.SetShaderValueV(r.shader, loc, viewPos[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(r.shader, "lightDir"); loc >= 0 {
		rl.SetShaderValueV(r.shader, loc, lightDir[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(r.shader, "ambient"); loc >= 0 {
		rl.SetShaderValueV(r.shader, loc, amb[:], rl.ShaderUniformVec4, 1)
	}
	if loc := rl.GetShaderLocation(r.shader, "lightColor"); loc >= 0 {
		rl.SetShaderValueV(r.shader, loc, lightColor[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(r.shader, "lightIntensity"); loc >= 0 {
		rl.SetShaderValue(r.shader, loc, []float32{defaultLightIntensity}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(r.shader, "specularPower"); loc >= 0 {
		rl.SetShaderValue(r.shader, loc, []float32{defaultSpecularPower}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(r.shader, "specularStrength"); loc >= 0 {
		rl.SetShaderValue(r.shader, loc, []float32{defaultSpecularStrength}, rl.ShaderUniformFloat)
	}
}

func toVec3(v mgl32.Vec3) rl.Vector3 { return rl.NewVector3(v.X(), v.Y(), v.Z()) }

func toColor(v mgl32.Vec3) rl.Color {
	return rl.NewColor(channel(v.X()), channel(v.Y()), channel(v.Z()), 255)
}

func channel(f float32) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}

// toMatrix converts a column-major mgl32 matrix; raylib's Mi field names use
// the same column-major indices.
func toMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}
