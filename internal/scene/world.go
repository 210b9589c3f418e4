package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Sky is the render state derived from a world plan's sky block.
type Sky struct {
	Tint                mgl32.Vec3
	GroundColor         mgl32.Vec3
	AtmosphereThickness float32
	SunSize             float32
}

// Fog is the render state derived from a world plan's fog block.
type Fog struct {
	Enabled bool
	Color   mgl32.Vec3
	Density float32
}

// Camera is a suggested framing for the host; hosts with their own camera
// controls may ignore it.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	FovY     float32
}

// Camera framing: distance grows with ground size, clamped so tiny worlds
// don't put the camera inside geometry and huge ones stay in view.
const (
	frameDistanceFactor = 0.9
	frameMinDistance    = 25
	frameMaxDistance    = 320
	frameElevation      = 0.55
)

// Scene is the assembled output for one world plan or avatar spec. Root is
// exclusively owned by the pipeline that built it.
type Scene struct {
	Root    *Node
	Sky     Sky
	Fog     Fog
	Ambient mgl32.Vec3
	Camera  Camera
}

// New returns an empty scene with a default camera.
func New() *Scene {
	s := &Scene{Root: NewNode("root")}
	s.Camera = Camera{Position: mgl32.Vec3{10, 10, 10}, FovY: 45}
	s.Ambient = mgl32.Vec3{0.2, 0.22, 0.26}
	return s
}

// Clear drops all assembled nodes, keeping render state and camera.
func (s *Scene) Clear() {
	s.Root = NewNode("root")
}

// FrameGround recomputes the camera as a monotonic function of the ground
// size, clamped to [frameMinDistance, frameMaxDistance].
func (s *Scene) FrameGround(size float32) {
	d := size * frameDistanceFactor
	if d < frameMinDistance {
		d = frameMinDistance
	}
	if d > frameMaxDistance {
		d = frameMaxDistance
	}
	s.Camera.Position = mgl32.Vec3{d * frameElevation, d * frameElevation, d * frameElevation}
	s.Camera.Target = mgl32.Vec3{0, 0, 0}
	s.Camera.FovY = 45
}
