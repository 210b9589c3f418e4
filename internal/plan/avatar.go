package plan

import (
	"encoding/json"
	"fmt"
)

// Avatar defaults applied when the document leaves a field blank.
const (
	DefaultAvatarName     = "Traveler"
	DefaultPrimaryColor   = "#00D1FF"
	DefaultSecondaryColor = "#FFFFFF"
	MinAvatarHeight       = 0.5
	MaxAvatarHeight       = 2.0
)

// Avatar is a complete avatar spec.
type Avatar struct {
	Version        string       `json:"version"`
	Name           string       `json:"name"`
	PrimaryColor   string       `json:"primary_color"`
	SecondaryColor string       `json:"secondary_color"`
	Height         float32      `json:"height"`
	Tags           []string     `json:"tags"`
	Parts          []AvatarPart `json:"parts"`
	Mesh           *AvatarMesh  `json:"mesh,omitempty"`
}

// AvatarPart is one attached part: a primitive (or a special composite id)
// placed relative to its attachment point.
type AvatarPart struct {
	ID               string     `json:"id"`
	Attach           string     `json:"attach"` // "head" or "body"
	Primitive        string     `json:"primitive"`
	Position         [3]float32 `json:"position"`
	Rotation         [3]float32 `json:"rotation"`
	Scale            [3]float32 `json:"scale"`
	Color            string     `json:"color"`
	EmissionColor    string     `json:"emission_color"`
	EmissionStrength float32    `json:"emission_strength"`
}

// AvatarMesh is an optional externally generated mesh that replaces the
// procedural avatar. Only format "stl" is honored; any other value means
// "no override". Parts, when present, are fetched individually and the part
// with id "body" designates the combined mesh used for height scaling.
type AvatarMesh struct {
	Format string           `json:"format"`
	URI    string           `json:"uri"`
	SHA256 string           `json:"sha256"`
	Parts  []AvatarMeshPart `json:"parts"`
}

// AvatarMeshPart is one named sub-mesh with its own content address and a
// material hint ("primary", "secondary", or "emissive").
type AvatarMeshPart struct {
	ID       string `json:"id"`
	URI      string `json:"uri"`
	SHA256   string `json:"sha256"`
	Material string `json:"material"`
}

// ParseAvatar decodes and normalizes an avatar spec document.
func ParseAvatar(data []byte) (*Avatar, error) {
	var a Avatar
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	a.Normalize()
	return &a, nil
}

// Normalize fills defaults and clamps fields to their documented ranges.
func (a *Avatar) Normalize() {
	if a.Name == "" {
		a.Name = DefaultAvatarName
	}
	if a.PrimaryColor == "" {
		a.PrimaryColor = DefaultPrimaryColor
	}
	if a.SecondaryColor == "" {
		a.SecondaryColor = DefaultSecondaryColor
	}
	if a.Height == 0 {
		a.Height = 1
	}
	a.Height = clamp32(a.Height, MinAvatarHeight, MaxAvatarHeight)
	if len(a.Tags) > MaxTags {
		a.Tags = a.Tags[:MaxTags]
	}
	if len(a.Parts) > MaxAvatarParts {
		a.Parts = a.Parts[:MaxAvatarParts]
	}
	for i := range a.Parts {
		p := &a.Parts[i]
		if p.ID == "" {
			p.ID = fmt.Sprintf("part-%d", i)
		}
		if p.Attach != "head" && p.Attach != "body" {
			p.Attach = "body"
		}
		for axis := 0; axis < 3; axis++ {
			if p.Scale[axis] == 0 {
				p.Scale[axis] = 1
			}
		}
		p.EmissionStrength = clamp32(p.EmissionStrength, 0, MaxEmissionStrength)
	}
	if a.Mesh != nil && a.Mesh.Format != "stl" {
		// Unsupported formats are treated as "no override" so the
		// procedural avatar stays visible.
		a.Mesh = nil
	}
}

// HasTag reports whether the avatar carries the tag (case-sensitive match is
// enough: generators emit lowercase tags).
func (a *Avatar) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
