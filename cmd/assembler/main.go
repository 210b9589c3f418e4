// Command assembler is the headless host: it assembles world plan and avatar
// spec documents into scene graphs, prints a summary, and can export the
// assembled geometry as binary STL.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"world-assembler/internal/assembly"
	"world-assembler/internal/catalog"
	"world-assembler/internal/commands"
	"world-assembler/internal/env"
	"world-assembler/internal/fetch"
	"world-assembler/internal/geom"
	"world-assembler/internal/logger"
	"world-assembler/internal/plan"
	"world-assembler/internal/scene"
	"world-assembler/internal/stl"
)

func main() {
	_ = env.Load(".env")

	reg := commands.NewRegistry()

	worldFlags := flag.NewFlagSet("world", flag.ContinueOnError)
	worldPlan := worldFlags.String("plan", "", "world plan JSON file")
	worldExport := worldFlags.String("export", "", "write assembled geometry to this binary STL file")
	worldDefs := worldFlags.String("defs", "assets/catalog", "catalog definition directory (YAML)")
	reg.Register("world", "assemble a world plan", worldFlags, func() error {
		return runWorld(*worldPlan, *worldExport, *worldDefs)
	})

	avatarFlags := flag.NewFlagSet("avatar", flag.ContinueOnError)
	avatarSpec := avatarFlags.String("spec", "", "avatar spec JSON file")
	avatarExport := avatarFlags.String("export", "", "write assembled geometry to this binary STL file")
	reg.Register("avatar", "assemble an avatar spec", avatarFlags, func() error {
		return runAvatar(*avatarSpec, *avatarExport)
	})

	if len(os.Args) < 2 {
		usage(reg)
		os.Exit(2)
	}
	if err := reg.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "assembler:", err)
		os.Exit(1)
	}
}

func usage(reg *commands.Registry) {
	fmt.Fprintln(os.Stderr, "usage: assembler <command> [flags]")
	for _, name := range reg.Names() {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", name, reg.Summary(name))
	}
}

// newPipeline builds the shared pipeline stack. base "" means no asset host:
// external assets degrade to their failure paths (logged, placeholder or
// removed) and mesh overrides stay procedural.
func newPipeline(defsDir string) *assembly.Pipeline {
	log := logger.New()
	base := env.String("ASSEMBLER_ADMIN_BASE", "")
	timeout := env.Duration("ASSEMBLER_FETCH_TIMEOUT", fetch.DefaultTimeout)

	var fetcher assembly.Fetcher
	var loader catalog.Loader
	if base != "" {
		client := fetch.New(base, timeout)
		fetcher = client
		loader = assembly.AssetLoader{Fetch: client}
	}
	resolver := catalog.NewResolver(loader)
	if defsDir != "" {
		defs, err := catalog.LoadDefs(defsDir)
		if err != nil {
			log.Logf("catalog defs: %v", err)
		} else {
			resolver.SetDefs(defs)
		}
	}
	return assembly.New(log, resolver, fetcher)
}

func runWorld(planPath, exportPath, defsDir string) error {
	if planPath == "" {
		return fmt.Errorf("world: -plan is required")
	}
	data, err := os.ReadFile(planPath)
	if err != nil {
		return err
	}
	w, err := plan.ParseWorld(data)
	if err != nil {
		return err
	}

	p := newPipeline(defsDir)
	scn := p.AssembleWorld(w)
	timeout := env.Duration("ASSEMBLER_FETCH_TIMEOUT", fetch.DefaultTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := p.Wait(ctx); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	printSummary(w.Name, scn, p.State())
	if exportPath != "" {
		return exportSTL(scn, exportPath)
	}
	return nil
}

func runAvatar(specPath, exportPath string) error {
	if specPath == "" {
		return fmt.Errorf("avatar: -spec is required")
	}
	data, err := os.ReadFile(specPath)
	if err != nil {
		return err
	}
	av, err := plan.ParseAvatar(data)
	if err != nil {
		return err
	}

	p := newPipeline("")
	timeout := env.Duration("ASSEMBLER_FETCH_TIMEOUT", fetch.DefaultTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	p.AssembleAvatar(ctx, av)
	if err := p.Wait(ctx); err != nil {
		return fmt.Errorf("avatar: %w", err)
	}
	printSummary(av.Name, p.Scene(), p.State())
	if exportPath != "" {
		return exportSTL(p.Scene(), exportPath)
	}
	return nil
}

func printSummary(name string, scn *scene.Scene, state assembly.State) {
	nodes, tris := 0, 0
	scn.Root.Walk(func(n *scene.Node, _ mgl32.Mat4) {
		nodes++
		if n.Mesh != nil {
			tris += len(n.Mesh.Indices) / 3
		}
	})
	fmt.Printf("%s: %s, %d nodes, %d triangles\n", name, state, nodes, tris)
	if min, max, ok := scn.Root.WorldBounds(); ok {
		fmt.Printf("bounds: (%.1f %.1f %.1f) .. (%.1f %.1f %.1f)\n",
			min.X(), min.Y(), min.Z(), max.X(), max.Y(), max.Z())
	}
}

// exportSTL flattens every visible mesh into one world-space mesh and writes
// it as binary STL.
func exportSTL(scn *scene.Scene, path string) error {
	merged := &geom.Mesh{}
	scn.Root.Walk(func(n *scene.Node, world mgl32.Mat4) {
		if n.Mesh != nil {
			merged.Append(n.Mesh, world)
		}
	})
	if len(merged.Indices) == 0 {
		return fmt.Errorf("export: scene has no geometry")
	}
	return os.WriteFile(path, stl.Encode(merged), 0644)
}
