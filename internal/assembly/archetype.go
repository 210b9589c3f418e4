package assembly

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"world-assembler/internal/plan"
	"world-assembler/internal/scene"
)

// Archetype is the base body family an avatar spec maps onto.
type Archetype int

const (
	ArchetypeHumanoid Archetype = iota
	ArchetypeRobot
	ArchetypeDragon
	ArchetypeAngel
	ArchetypeWizard
	ArchetypeNavi
)

func (a Archetype) String() string {
	switch a {
	case ArchetypeRobot:
		return "robot"
	case ArchetypeDragon:
		return "dragon"
	case ArchetypeAngel:
		return "angel"
	case ArchetypeWizard:
		return "wizard"
	case ArchetypeNavi:
		return "navi"
	}
	return "humanoid"
}

// archetypeRules is an ordered table of (keywords, archetype); the first rule
// whose keyword matches wins. Adding an archetype is a new row, not a new
// branch.
var archetypeRules = []struct {
	keywords  []string
	archetype Archetype
}{
	{[]string{"robot", "android", "cyborg", "mech"}, ArchetypeRobot},
	{[]string{"dragon", "drake", "wyvern"}, ArchetypeDragon},
	{[]string{"angel", "seraph"}, ArchetypeAngel},
	{[]string{"wizard", "mage", "sorcer"}, ArchetypeWizard},
	{[]string{"navi", "na'vi"}, ArchetypeNavi},
}

// deriveArchetype maps a spec to an archetype: explicit tags are checked
// first (in rule priority order), then part-id substrings; no match falls
// back to the default humanoid.
func deriveArchetype(tags []string, parts []plan.AvatarPart) Archetype {
	for _, rule := range archetypeRules {
		for _, t := range tags {
			lt := strings.ToLower(t)
			for _, kw := range rule.keywords {
				if strings.Contains(lt, kw) {
					return rule.archetype
				}
			}
		}
	}
	for _, rule := range archetypeRules {
		for _, part := range parts {
			id := strings.ToLower(part.ID)
			for _, kw := range rule.keywords {
				if strings.Contains(id, kw) {
					return rule.archetype
				}
			}
		}
	}
	return ArchetypeHumanoid
}

// glowTags mark specs that should get an emissive look even without
// explicit emission values on their parts.
var glowTags = []string{"glow", "neon", "emissive", "bioluminescent"}

func hasGlowTag(tags []string) bool {
	for _, t := range tags {
		lt := strings.ToLower(t)
		for _, g := range glowTags {
			if strings.Contains(lt, g) {
				return true
			}
		}
	}
	return false
}

// look is the material set applied to an avatar's base body.
type look struct {
	primary   scene.Material
	secondary scene.Material
}

// lookFor chooses base materials by archetype and glow tags. Robots go
// metallic, wizards get a cloth texture reference, glow tags add an emissive
// rim in the secondary color.
func lookFor(arch Archetype, primary, secondary mgl32.Vec3, glow bool) look {
	l := look{
		primary:   scene.Material{Color: primary, Smoothness: 0.4},
		secondary: scene.Material{Color: secondary, Smoothness: 0.4},
	}
	switch arch {
	case ArchetypeRobot:
		l.primary.Metallic = 0.9
		l.primary.Smoothness = 0.8
		l.primary.TextureRef = "panel"
		l.secondary.Metallic = 0.9
	case ArchetypeWizard:
		l.primary.TextureRef = "cloth"
	case ArchetypeAngel:
		l.secondary.EmissionStrength = 1
		l.secondary.Emission = secondary
	}
	if glow {
		l.secondary.Emission = secondary
		if l.secondary.EmissionStrength < 2 {
			l.secondary.EmissionStrength = 2
		}
	}
	return l
}
