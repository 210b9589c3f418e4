package plan

import (
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

// ParseHexColor parses "#RRGGBB" into linear-ish RGB components in [0,1].
func ParseHexColor(s string) (mgl32.Vec3, error) {
	if len(s) != 7 || s[0] != '#' {
		return mgl32.Vec3{}, fmt.Errorf("plan: bad color %q", s)
	}
	var c mgl32.Vec3
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(s[1+i*2:3+i*2], 16, 8)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("plan: bad color %q", s)
		}
		c[i] = float32(v) / 255
	}
	return c, nil
}

// HexColorOr parses s, falling back to def on any malformed input. Authoring
// mistakes in color fields degrade to the fallback instead of failing the
// whole assembly.
func HexColorOr(s string, def mgl32.Vec3) mgl32.Vec3 {
	c, err := ParseHexColor(s)
	if err != nil {
		return def
	}
	return c
}
