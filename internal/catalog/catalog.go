// Package catalog resolves abstract object ids ("tower", "rock", "alien")
// to concrete construction strategies: a procedural builder, or a cached
// externally loaded asset template. Templates are loaded at most once per
// process and never evicted; the catalog is a small closed set.
package catalog

import (
	"math/rand"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"world-assembler/internal/geom"
	"world-assembler/internal/plan"
	"world-assembler/internal/primitive"
	"world-assembler/internal/scene"
)

// Loader retrieves an external asset's mesh by name. Implemented by the
// assembly layer on top of the fetch client; tests substitute an in-memory
// loader.
type Loader interface {
	LoadAsset(name string) (*geom.Mesh, error)
}

// BuilderFunc builds one variant of a procedural prefab. The rng drives
// variant-internal variation and must be the caller's seeded stream so
// repeated resolution is reproducible.
type BuilderFunc func(rng *rand.Rand) *scene.Node

// Template is a shared, read-only asset loaded from the host. It may still
// be loading; Ready reports completion and Result returns the outcome.
type Template struct {
	Name string

	done chan struct{}
	node *scene.Node
	err  error
}

// Ready reports whether loading has finished (successfully or not).
func (t *Template) Ready() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when loading finishes.
func (t *Template) Done() <-chan struct{} { return t.done }

// Result returns the loaded node and error. Only meaningful once Ready.
func (t *Template) Result() (*scene.Node, error) { return t.node, t.err }

// Handle is the result of resolving a catalog id: either an immediately
// built procedural node or a (possibly pending) external template.
type Handle struct {
	ID   string
	node *scene.Node
	tmpl *Template
}

// Pending reports whether the handle still waits on an external load.
func (h Handle) Pending() bool { return h.tmpl != nil && !h.tmpl.Ready() }

// Template returns the external template backing this handle, or nil for
// procedural results.
func (h Handle) Template() *Template { return h.tmpl }

// Instantiate returns a fresh node for this placement. Procedural and loaded
// results are cloned from their template (meshes shared, read-only); a
// pending or failed external load yields a neutral placeholder so assembly
// proceeds and the slot can be swapped later.
func (h Handle) Instantiate() *scene.Node {
	if h.node != nil {
		return h.node.Clone()
	}
	if h.tmpl != nil && h.tmpl.Ready() {
		if n, err := h.tmpl.Result(); err == nil && n != nil {
			return n.Clone()
		}
	}
	return Placeholder(h.ID)
}

// Placeholder is the neutral stand-in shape used while an external asset is
// loading (or after it failed).
func Placeholder(id string) *scene.Node {
	n := scene.NewMeshNode(id+"-placeholder", primitive.Box(0.8, 0.8, 0.8), scene.Material{
		Color: mgl32.Vec3{0.55, 0.55, 0.58},
	})
	n.Position = mgl32.Vec3{0, 0.4, 0}
	return n
}

// Resolver maps catalog ids to builders or asset templates.
type Resolver struct {
	loader Loader

	mu        sync.Mutex
	templates map[string]*Template

	defs map[string]Def
}

// NewResolver returns a resolver with the built-in catalog and no loaded
// definitions. loader may be nil, in which case external ids resolve to
// placeholders permanently (logged by the pipeline as load failures).
func NewResolver(loader Loader) *Resolver {
	return &Resolver{
		loader:    loader,
		templates: make(map[string]*Template),
		defs:      make(map[string]Def),
	}
}

// SetDefs installs catalog definition overrides (see LoadDefs).
func (r *Resolver) SetDefs(defs map[string]Def) {
	if defs != nil {
		r.defs = defs
	}
}

// Resolve maps a catalog id to an asset handle. Unknown ids degrade to a
// generic fallback shape; they never fail. Variant selection for ids with
// multiple procedural variants consumes exactly one value from rng.
func (r *Resolver) Resolve(id string, rng *rand.Rand) Handle {
	def, hasDef := r.defs[id]

	if variants, ok := builders[id]; ok {
		b := variants[0]
		if len(variants) > 1 {
			b = variants[rng.Intn(len(variants))]
		}
		node := b(rng)
		applyDef(node, def, hasDef)
		return Handle{ID: id, node: node}
	}

	asset := externalAssets[id]
	if hasDef && def.Asset != "" {
		asset = def.Asset
	}
	if asset != "" {
		return Handle{ID: id, tmpl: r.template(asset, def, hasDef)}
	}

	// Unknown id: generic fallback, not an error.
	return Handle{ID: id, node: buildFallback(rng)}
}

// template returns the cached template for an asset name, starting the load
// on first use.
func (r *Resolver) template(asset string, def Def, hasDef bool) *Template {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.templates[asset]; ok {
		return t
	}
	t := &Template{Name: asset, done: make(chan struct{})}
	r.templates[asset] = t
	go func() {
		defer close(t.done)
		if r.loader == nil {
			t.err = errNoLoader
			return
		}
		mesh, err := r.loader.LoadAsset(asset)
		if err != nil {
			t.err = err
			return
		}
		node := scene.NewMeshNode(asset, mesh, scene.Material{
			Color: plan.HexColorOr(def.Color, mgl32.Vec3{0.7, 0.7, 0.7}),
		})
		applyDef(node, def, hasDef)
		t.node = node
	}()
	return t
}

func applyDef(node *scene.Node, def Def, hasDef bool) {
	if !hasDef {
		return
	}
	if def.Color != "" && node.Mesh != nil {
		node.Mat.Color = plan.HexColorOr(def.Color, node.Mat.Color)
	}
	for a := 0; a < 3; a++ {
		if def.Scale[a] != 0 {
			node.Scale[a] = def.Scale[a]
		}
	}
}
