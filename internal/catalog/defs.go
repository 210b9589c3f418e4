package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var errNoLoader = errors.New("catalog: no asset loader configured")

// Def is the YAML definition file for one catalog id (e.g.
// assets/catalog/rock.yaml). It overrides the built-in defaults: the external
// asset name, a base color, and a uniform placement scale. Missing files fall
// back to the built-ins, so the directory is optional.
type Def struct {
	Asset string     `yaml:"asset,omitempty"`
	Color string     `yaml:"color,omitempty"`
	Scale [3]float32 `yaml:"scale,omitempty"`
}

// LoadDefs reads every *.yaml file in dir; the file base name is the catalog
// id. A missing directory returns an empty map and no error.
func LoadDefs(dir string) (map[string]Def, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Def{}, nil
		}
		return nil, fmt.Errorf("catalog: %w", err)
	}
	defs := make(map[string]Def)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		var d Def
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("catalog: %s: %w", name, err)
		}
		defs[strings.TrimSuffix(name, ".yaml")] = d
	}
	return defs, nil
}

// externalAssets maps catalog ids to the asset names fetched from the host.
// These are the prefabs with no procedural builder.
var externalAssets = map[string]string{
	"alien":     "alien",
	"astronaut": "astronaut",
	"barrel":    "barrel",
	"van":       "van",
	"ambulance": "ambulance",
}
