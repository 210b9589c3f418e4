package assembly

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"world-assembler/internal/catalog"
	"world-assembler/internal/plan"
	"world-assembler/internal/primitive"
	"world-assembler/internal/scene"
	"world-assembler/internal/stl"
	"world-assembler/internal/terrain"
)

// fakeFetcher serves canned byte payloads and counts requests per path.
type fakeFetcher struct {
	mu    sync.Mutex
	data  map[string][]byte
	calls map[string]int
	err   error
	delay time.Duration
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{data: map[string][]byte{}, calls: map[string]int{}}
}

func (f *fakeFetcher) Bytes(ctx context.Context, rel string) ([]byte, error) {
	f.mu.Lock()
	f.calls[rel]++
	data, ok := f.data[rel]
	err := f.err
	delay := f.delay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fetch: HTTP 404 for %s", rel)
	}
	return data, nil
}

func (f *fakeFetcher) callCount(rel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[rel]
}

func boxSTL() []byte {
	return stl.Encode(primitive.Box(1, 1, 1))
}

func newTestPipeline(f *fakeFetcher) *Pipeline {
	var loader catalog.Loader
	var fetcher Fetcher
	if f != nil {
		loader = AssetLoader{Fetch: f}
		fetcher = f
	}
	return New(nil, catalog.NewResolver(loader), fetcher)
}

func findNode(root *scene.Node, name string) *scene.Node {
	if root.Name == name {
		return root
	}
	for _, c := range root.Children {
		if n := findNode(c, name); n != nil {
			return n
		}
	}
	return nil
}

func testWorld() *plan.World {
	w := &plan.World{
		Name: "test",
		Seed: 42,
		Ground: plan.Ground{
			Size: 100, Grid: 64, HeightScale: 6, NoiseScale: 12, Color: "#4A7023",
		},
		Objects: []plan.Object{
			{ID: "rock-0", Prefab: "rock", Position: [3]float32{6, 0, -12}},
			{ID: "tower-0", Prefab: "tower", Position: [3]float32{0, 2, 0}},
		},
	}
	w.Normalize()
	return w
}

func wait(t *testing.T, p *Pipeline) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Wait(ctx))
}

func TestAssembleWorldPlacesObjectsOnTerrain(t *testing.T) {
	p := newTestPipeline(nil)
	w := testWorld()
	scn := p.AssembleWorld(w)
	wait(t, p)

	assert.Equal(t, StateDone, p.State())
	require.NotNil(t, findNode(scn.Root, "ground"))

	rock := findNode(scn.Root, "rock-0")
	require.NotNil(t, rock)
	wantY := terrain.HeightAt(w.Ground, w.Seed, 6, -12)
	assert.Equal(t, wantY, rock.Position.Y())

	// Position Y in the document is an offset above the surface.
	tower := findNode(scn.Root, "tower-0")
	require.NotNil(t, tower)
	assert.Equal(t, terrain.HeightAt(w.Ground, w.Seed, 0, 0)+2, tower.Position.Y())

	// Camera was framed from the ground size.
	assert.Greater(t, scn.Camera.Position.Len(), float32(0))
}

func TestAssembleWorldReproducible(t *testing.T) {
	fingerprint := func() []string {
		p := newTestPipeline(nil)
		w := testWorld()
		w.Objects = append(w.Objects,
			plan.Object{ID: "r1", Prefab: "rock"},
			plan.Object{ID: "t1", Prefab: "tree"},
			plan.Object{ID: "r2", Prefab: "rock"},
		)
		scn := p.AssembleWorld(w)
		var out []string
		var visit func(n *scene.Node)
		visit = func(n *scene.Node) {
			if n.Mesh != nil {
				out = append(out, fmt.Sprintf("%s:%d", n.Name, n.Mesh.VertexCount()))
			}
			for _, c := range n.Children {
				visit(c)
			}
		}
		visit(scn.Root)
		return out
	}
	assert.Equal(t, fingerprint(), fingerprint())
}

func TestAssembleWorldEmissionOverride(t *testing.T) {
	p := newTestPipeline(nil)
	w := testWorld()
	w.Objects = []plan.Object{{
		ID: "rock-0", Prefab: "rock",
		EmissionColor: "#FF0000", EmissionStrength: 4,
	}}
	scn := p.AssembleWorld(w)

	rock := findNode(scn.Root, "rock-0")
	require.NotNil(t, rock)
	found := false
	var visit func(n *scene.Node)
	visit = func(n *scene.Node) {
		if n.Mesh != nil {
			found = true
			assert.Equal(t, float32(4), n.Mat.EmissionStrength)
			assert.Equal(t, float32(1), n.Mat.Emission.X())
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(rock)
	assert.True(t, found)
}

func TestExternalAssetSwapsIn(t *testing.T) {
	f := newFakeFetcher()
	f.data["assets/alien.stl"] = boxSTL()
	p := newTestPipeline(f)

	w := testWorld()
	w.Objects = []plan.Object{
		{ID: "alien-0", Prefab: "alien"},
		{ID: "alien-1", Prefab: "alien"},
	}
	scn := p.AssembleWorld(w)

	// Before any Tick the placements hold placeholders.
	g0 := findNode(scn.Root, "alien-0")
	require.NotNil(t, g0)
	require.Len(t, g0.Children, 1)

	wait(t, p)

	for _, name := range []string{"alien-0", "alien-1"} {
		g := findNode(scn.Root, name)
		require.NotNil(t, g)
		require.Len(t, g.Children, 1, name)
		assert.Equal(t, "alien", g.Children[0].Name, name)
	}
	assert.Equal(t, 1, f.callCount("assets/alien.stl"), "template loads once per asset")
}

func TestExternalAssetFailureRemovesPlaceholder(t *testing.T) {
	f := newFakeFetcher()
	f.err = errors.New("asset host down")
	p := newTestPipeline(f)

	w := testWorld()
	w.Objects = []plan.Object{{ID: "van-0", Prefab: "van"}}
	scn := p.AssembleWorld(w)
	wait(t, p)

	g := findNode(scn.Root, "van-0")
	require.NotNil(t, g)
	assert.Empty(t, g.Children, "failed load leaves the placement empty")
}

func TestExternalAssetFailureStaysEmptyOnReassembly(t *testing.T) {
	f := newFakeFetcher()
	f.err = errors.New("asset host down")
	p := newTestPipeline(f)

	w := testWorld()
	w.Objects = []plan.Object{{ID: "alien-0", Prefab: "alien"}}
	p.AssembleWorld(w)
	wait(t, p)

	// The failed template is cached; a later assembly of the same prefab
	// must not resurrect the placeholder.
	scn := p.AssembleWorld(w)
	wait(t, p)

	g := findNode(scn.Root, "alien-0")
	require.NotNil(t, g)
	assert.Empty(t, g.Children, "cached failure leaves the placement empty")
}

func TestReassemblyDropsStalePlacements(t *testing.T) {
	f := newFakeFetcher()
	f.data["assets/alien.stl"] = boxSTL()
	f.delay = 50 * time.Millisecond
	p := newTestPipeline(f)

	w := testWorld()
	w.Objects = []plan.Object{{ID: "alien-0", Prefab: "alien"}}
	p.AssembleWorld(w)
	// Second assembly supersedes the first while its asset is in flight.
	scn := p.AssembleWorld(w)
	wait(t, p)

	g := findNode(scn.Root, "alien-0")
	require.NotNil(t, g)
	require.Len(t, g.Children, 1)
	assert.Equal(t, "alien", g.Children[0].Name)
}

func TestDeriveArchetype(t *testing.T) {
	cases := []struct {
		tags  []string
		parts []plan.AvatarPart
		want  Archetype
	}{
		{nil, nil, ArchetypeHumanoid},
		{[]string{"friendly", "robot"}, nil, ArchetypeRobot},
		{[]string{"ANDROID"}, nil, ArchetypeRobot},
		{[]string{"dragonkin"}, nil, ArchetypeDragon},
		{[]string{"seraph"}, nil, ArchetypeAngel},
		{[]string{"mage"}, nil, ArchetypeWizard},
		{[]string{"na'vi"}, nil, ArchetypeNavi},
		// Tags win over parts even when a part matches an earlier rule.
		{[]string{"wizard"}, []plan.AvatarPart{{ID: "robot-arm"}}, ArchetypeWizard},
		// No matching tag: part ids decide.
		{[]string{"tall"}, []plan.AvatarPart{{ID: "dragon-wings"}}, ArchetypeDragon},
		// Rule priority beats part order: robot outranks dragon.
		{nil, []plan.AvatarPart{{ID: "dragon-tail"}, {ID: "robot-arm"}}, ArchetypeRobot},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, deriveArchetype(c.tags, c.parts), "tags=%v parts=%v", c.tags, c.parts)
	}
}

func testAvatar() *plan.Avatar {
	a := &plan.Avatar{
		Name:   "Scout",
		Height: 1.7,
		Parts: []plan.AvatarPart{
			{ID: "visor", Attach: "head", Primitive: "cube", Scale: [3]float32{0.2, 0.05, 0.1}},
		},
	}
	a.Normalize()
	return a
}

func TestAssembleAvatarBuildsRig(t *testing.T) {
	p := newTestPipeline(nil)
	av := testAvatar()
	p.AssembleAvatar(context.Background(), av)
	wait(t, p)

	assert.Equal(t, StateDone, p.State())
	require.NotNil(t, p.rig.root)
	require.NotNil(t, p.rig.body)
	assert.True(t, p.rig.body.Visible)
	assert.Equal(t, av.Height, p.rig.root.Scale.Y())
	require.NotNil(t, findNode(p.rig.parts, "visor"))
}

func TestAssembleAvatarReusesBodyForSameArchetype(t *testing.T) {
	p := newTestPipeline(nil)
	av := testAvatar()
	p.AssembleAvatar(context.Background(), av)
	body := p.rig.body

	av.PrimaryColor = "#FF0000"
	p.AssembleAvatar(context.Background(), av)
	assert.Same(t, body, p.rig.body, "unchanged archetype keeps the body")

	av.Tags = []string{"robot"}
	p.AssembleAvatar(context.Background(), av)
	assert.NotSame(t, body, p.rig.body, "archetype change rebuilds the body")
	assert.Equal(t, ArchetypeRobot, p.rig.arch)
}

func TestAssembleAvatarGlowFallbackParts(t *testing.T) {
	p := newTestPipeline(nil)
	av := &plan.Avatar{Tags: []string{"glow"}}
	av.Normalize()
	p.AssembleAvatar(context.Background(), av)
	require.NotNil(t, findNode(p.rig.parts, "halo"))
}

func avatarWithMesh() *plan.Avatar {
	a := &plan.Avatar{
		Height: 1.8,
		Mesh:   &plan.AvatarMesh{Format: "stl", URI: "avatar/mesh.stl"},
	}
	a.Normalize()
	return a
}

func TestAvatarMeshOverrideApplied(t *testing.T) {
	f := newFakeFetcher()
	f.data["avatar/mesh.stl"] = boxSTL()
	p := newTestPipeline(f)

	av := avatarWithMesh()
	p.AssembleAvatar(context.Background(), av)
	assert.True(t, p.rig.body.Visible, "procedural body shows until the fetch lands")
	wait(t, p)

	require.NotNil(t, p.rig.meshRoot)
	assert.False(t, p.rig.body.Visible)
	assert.False(t, p.rig.parts.Visible)
	assert.NotEmpty(t, p.appliedMeshKey)

	// Re-assembling the same spec must not refetch.
	p.AssembleAvatar(context.Background(), av)
	wait(t, p)
	assert.Equal(t, 1, f.callCount("avatar/mesh.stl"))
	assert.False(t, p.rig.body.Visible)
}

func TestAvatarMeshOverrideFailureKeepsProceduralBody(t *testing.T) {
	f := newFakeFetcher()
	f.err = errors.New("no mesh for you")
	p := newTestPipeline(f)

	p.AssembleAvatar(context.Background(), avatarWithMesh())
	wait(t, p)

	assert.Nil(t, p.rig.meshRoot)
	assert.True(t, p.rig.body.Visible)
	assert.Empty(t, p.appliedMeshKey)
}

func TestAvatarMeshStaleResultDiscarded(t *testing.T) {
	f := newFakeFetcher()
	f.data["avatar/mesh.stl"] = boxSTL()
	f.delay = 50 * time.Millisecond
	p := newTestPipeline(f)

	p.AssembleAvatar(context.Background(), avatarWithMesh())

	// A newer assembly without an override supersedes the in-flight fetch.
	plain := testAvatar()
	p.AssembleAvatar(context.Background(), plain)
	wait(t, p)

	assert.Nil(t, p.rig.meshRoot)
	assert.True(t, p.rig.body.Visible)
}

func TestAvatarMeshMultiPartBodyFirst(t *testing.T) {
	f := newFakeFetcher()
	f.data["m/body.stl"] = boxSTL()
	f.data["m/hat.stl"] = boxSTL()
	p := newTestPipeline(f)

	a := &plan.Avatar{
		Height: 1.5,
		Mesh: &plan.AvatarMesh{
			Format: "stl",
			Parts: []plan.AvatarMeshPart{
				{ID: "hat", URI: "m/hat.stl", Material: "secondary"},
				{ID: "body", URI: "m/body.stl", Material: "primary"},
			},
		},
	}
	a.Normalize()
	p.AssembleAvatar(context.Background(), a)
	wait(t, p)

	require.NotNil(t, p.rig.meshRoot)
	require.Len(t, p.rig.meshRoot.Children, 2)
	assert.Equal(t, "body", p.rig.meshRoot.Children[0].Name, "body part is fetched and placed first")
}

func TestMeshKeyFromContentHashes(t *testing.T) {
	single := &plan.AvatarMesh{Format: "stl", URI: "/u", SHA256: "abc"}
	assert.Equal(t, "abc", meshKey(single))

	multi := &plan.AvatarMesh{Format: "stl", Parts: []plan.AvatarMeshPart{
		{ID: "body", SHA256: "b1"},
		{ID: "hat", SHA256: "h1"},
	}}
	k1 := meshKey(multi)
	multi.Parts[1].SHA256 = "h2"
	assert.NotEqual(t, k1, meshKey(multi), "any part hash change changes the key")
}
