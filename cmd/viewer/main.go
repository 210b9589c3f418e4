// Command viewer assembles a world plan and draws it with raylib: scene
// graph, sky tint, editor grid, and the scene's suggested camera framing.
//
//	R   reassemble with a fresh seed
//	G   toggle grid
//	F   toggle FPS overlay
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"world-assembler/internal/assembly"
	"world-assembler/internal/catalog"
	"world-assembler/internal/env"
	"world-assembler/internal/fetch"
	"world-assembler/internal/hostconfig"
	"world-assembler/internal/logger"
	"world-assembler/internal/plan"
	"world-assembler/internal/render"
)

func main() {
	_ = env.Load(".env")

	planPath := flag.String("plan", "", "world plan JSON file (omit for the built-in demo plan)")
	defsDir := flag.String("defs", "assets/catalog", "catalog definition directory (YAML)")
	flag.Parse()

	w, err := loadPlan(*planPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "viewer:", err)
		os.Exit(1)
	}

	log := logger.New()
	base := env.String("ASSEMBLER_ADMIN_BASE", "")
	var fetcher assembly.Fetcher
	var loader catalog.Loader
	if base != "" {
		client := fetch.New(base, env.Duration("ASSEMBLER_FETCH_TIMEOUT", fetch.DefaultTimeout))
		fetcher = client
		loader = assembly.AssetLoader{Fetch: client}
	}
	resolver := catalog.NewResolver(loader)
	if defs, err := catalog.LoadDefs(*defsDir); err == nil {
		resolver.SetDefs(defs)
	}
	pipeline := assembly.New(log, resolver, fetcher)

	prefs, _ := hostconfig.Load()
	r := render.New()
	scn := pipeline.AssembleWorld(w)
	camera := render.Camera(scn)

	update := func() {
		pipeline.Tick()
		if rl.IsKeyPressed(rl.KeyR) {
			w.Seed = rand.Int63n(1 << 31)
			r.Unload()
			scn = pipeline.AssembleWorld(w)
			camera = render.Camera(scn)
		}
		if rl.IsKeyPressed(rl.KeyG) {
			prefs.GridVisible = !prefs.GridVisible
		}
		if rl.IsKeyPressed(rl.KeyF) {
			prefs.ShowFPS = !prefs.ShowFPS
		}
		rl.UpdateCamera(&camera, rl.CameraOrbital)
	}

	draw := func() {
		rl.ClearBackground(render.ClearColor(scn))

		rl.BeginMode3D(camera)
		r.SetView(
			[3]float32{camera.Position.X, camera.Position.Y, camera.Position.Z},
			[3]float32{0.5, 1, 0.5},
		)
		r.DrawScene(scn)
		if prefs.GridVisible {
			rl.DrawGrid(int32(w.Ground.Size/2), 2)
		}
		rl.EndMode3D()

		if prefs.ShowFPS {
			rl.DrawFPS(10, 10)
		}
		rl.DrawText(w.Name, 10, int32(rl.GetScreenHeight())-26, 18, rl.RayWhite)
	}

	render.Run("world viewer", prefs.WindowW, prefs.WindowH, update, draw)
	_ = hostconfig.Save(prefs)
}

func loadPlan(path string) (*plan.World, error) {
	if path == "" {
		return demoPlan(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return plan.ParseWorld(data)
}

// demoPlan is a small self-contained plan so the viewer runs without input
// files or an asset host.
func demoPlan() *plan.World {
	w := &plan.World{
		Name: "demo valley",
		Seed: 42,
		Ground: plan.Ground{
			Size:        120,
			Grid:        64,
			Color:       "#4A7023",
			HeightScale: 6,
			NoiseScale:  14,
		},
		Sky: plan.Sky{SkyTint: "#87B5E0"},
		Objects: []plan.Object{
			{ID: "tower-0", Prefab: "tower", Position: [3]float32{0, 0, 0}},
			{ID: "house-0", Prefab: "house", Position: [3]float32{14, 0, 6}},
			{ID: "tree-0", Prefab: "tree", Position: [3]float32{-10, 0, 8}},
			{ID: "tree-1", Prefab: "tree", Position: [3]float32{-16, 0, -4}},
			{ID: "rock-0", Prefab: "rock", Position: [3]float32{6, 0, -12}},
			{ID: "lamp-0", Prefab: "lamp", Position: [3]float32{4, 0, 4}},
			{ID: "crystal-0", Prefab: "crystal", Position: [3]float32{-4, 0, -18}, EmissionColor: "#7FD4FF", EmissionStrength: 3},
		},
	}
	w.Normalize()
	return w
}
