package assembly

import (
	"context"
	"fmt"

	"world-assembler/internal/geom"
	"world-assembler/internal/stl"
)

// AssetLoader serves catalog external assets from a Fetcher. Asset names map
// to "assets/<name>.stl" on the host; the generator exports Z-up, so decoded
// meshes are swapped to Y-up.
type AssetLoader struct {
	Fetch Fetcher
}

// LoadAsset retrieves and decodes one named asset. Called from catalog
// template goroutines, so it uses a background context; the fetch client's
// own timeout bounds the request.
func (l AssetLoader) LoadAsset(name string) (*geom.Mesh, error) {
	data, err := l.Fetch.Bytes(context.Background(), "assets/"+name+".stl")
	if err != nil {
		return nil, fmt.Errorf("assembly: asset %s: %w", name, err)
	}
	m, err := stl.Decode(data, stl.Options{SwapYZ: true})
	if err != nil {
		return nil, fmt.Errorf("assembly: asset %s: %w", name, err)
	}
	return m, nil
}
