// Package plan holds the declarative input documents the engine consumes: a
// world plan (ground/sky/fog + typed object placements) and an avatar spec.
// Parsing is tolerant: out-of-range numbers are clamped to the documented
// ranges rather than rejected, since the documents are authored by external
// generators and a near-miss should still assemble.
package plan

import (
	"encoding/json"
	"fmt"
)

// Ground clamp ranges.
const (
	MinGroundSize  = 20
	MaxGroundSize  = 400
	MinGrid        = 16
	MaxGrid        = 256
	MaxHeightScale = 40
	MinNoiseScale  = 0.5
	MaxNoiseScale  = 40
)

// Document-level limits.
const (
	MaxObjects          = 400
	MaxTags             = 16
	MaxAvatarParts      = 8
	MaxEmissionStrength = 10
	MaxSeed             = 1<<31 - 1
)

// World is a complete world plan.
type World struct {
	Version   string   `json:"version"`
	Name      string   `json:"name"`
	Seed      int64    `json:"seed"`
	BiomeTags []string `json:"biome_tags"`
	Ground    Ground   `json:"ground"`
	Sky       Sky      `json:"sky"`
	Fog       Fog      `json:"fog"`
	Objects   []Object `json:"objects"`
}

// Ground describes the terrain patch: a size x size square centered at the
// origin, grid cells per edge, noise-driven heights.
type Ground struct {
	Size        float32 `json:"size"`
	Grid        int     `json:"grid"`
	HeightScale float32 `json:"height_scale"`
	NoiseScale  float32 `json:"noise_scale"`
	Color       string  `json:"color"`
}

// Sky carries render-state parameters only; no geometry is produced from it.
type Sky struct {
	SkyTint             string  `json:"sky_tint"`
	GroundColor         string  `json:"ground_color"`
	AtmosphereThickness float32 `json:"atmosphere_thickness"`
	SunSize             float32 `json:"sun_size"`
}

// Fog carries render-state parameters only.
type Fog struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	Density float32 `json:"density"`
}

// Object is one placement in a world plan. Position Y is relative to the
// ground surface sampled at the object's X/Z.
type Object struct {
	ID               string     `json:"id"`
	Prefab           string     `json:"prefab"`
	Position         [3]float32 `json:"position"`
	Rotation         [3]float32 `json:"rotation"`
	Scale            [3]float32 `json:"scale"`
	Color            string     `json:"color"`
	EmissionColor    string     `json:"emission_color"`
	EmissionStrength float32    `json:"emission_strength"`
}

// ParseWorld decodes and normalizes a world plan document.
func ParseWorld(data []byte) (*World, error) {
	var w World
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	w.Normalize()
	return &w, nil
}

// Normalize clamps all numeric fields to their documented ranges and fills
// defaults so downstream components never see out-of-range parameters.
func (w *World) Normalize() {
	if w.Name == "" {
		w.Name = "Untitled"
	}
	if w.Seed < 0 {
		w.Seed = -w.Seed
	}
	if w.Seed > MaxSeed {
		w.Seed = w.Seed % (MaxSeed + 1)
	}
	w.Ground.normalize()
	if w.Sky.SkyTint == "" {
		w.Sky.SkyTint = "#6688BB"
	}
	if w.Sky.GroundColor == "" {
		w.Sky.GroundColor = w.Ground.Color
	}
	w.Sky.AtmosphereThickness = clamp32(w.Sky.AtmosphereThickness, 0.5, 4)
	w.Sky.SunSize = clamp32(w.Sky.SunSize, 0.01, 1)
	w.Fog.Density = clamp32(w.Fog.Density, 0, 0.05)
	if len(w.Objects) > MaxObjects {
		w.Objects = w.Objects[:MaxObjects]
	}
	for i := range w.Objects {
		w.Objects[i].normalize(i)
	}
}

func (g *Ground) normalize() {
	g.Size = clamp32(g.Size, MinGroundSize, MaxGroundSize)
	if g.Grid < MinGrid {
		g.Grid = MinGrid
	}
	if g.Grid > MaxGrid {
		g.Grid = MaxGrid
	}
	g.HeightScale = clamp32(g.HeightScale, 0, MaxHeightScale)
	g.NoiseScale = clamp32(g.NoiseScale, MinNoiseScale, MaxNoiseScale)
	if g.Color == "" {
		g.Color = "#4A6A3A"
	}
}

func (o *Object) normalize(index int) {
	if o.ID == "" {
		o.ID = fmt.Sprintf("obj-%d", index)
	}
	for a := 0; a < 3; a++ {
		if o.Scale[a] == 0 {
			o.Scale[a] = 1
		}
	}
	o.EmissionStrength = clamp32(o.EmissionStrength, 0, MaxEmissionStrength)
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
