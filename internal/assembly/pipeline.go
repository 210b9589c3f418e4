// Package assembly orchestrates plan/spec consumption: it resolves catalog
// ids, synthesizes terrain and primitives, positions results, and manages
// override semantics. All scene mutation happens on the single control
// thread that calls AssembleWorld/AssembleAvatar/Tick; asynchronous loads
// deliver into channels drained by Tick, guarded by a version stamp so a
// stale result is discarded instead of applied.
package assembly

import (
	"context"
	"time"

	"world-assembler/internal/catalog"
	"world-assembler/internal/logger"
	"world-assembler/internal/plan"
	"world-assembler/internal/scene"
)

// State is the coarse progress of the most recent assembly request. Failed
// is always recoverable: it means the request degraded to partial output,
// never that the pipeline is unusable.
type State int

const (
	StateIdle State = iota
	StateResolving
	StatePlacing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StatePlacing:
		return "placing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Fetcher retrieves raw bytes for a relative URI. Satisfied by fetch.Client;
// tests substitute in-memory implementations.
type Fetcher interface {
	Bytes(ctx context.Context, rel string) ([]byte, error)
}

// pendingSlot tracks a placement whose external template was still loading
// when the object was placed; Tick swaps the placeholder once the template
// resolves, unless a newer request superseded the placement.
type pendingSlot struct {
	version     uint64
	tmpl        *catalog.Template
	group       *scene.Node
	placeholder *scene.Node
	obj         plan.Object
}

// meshResult is the outcome of one asynchronous avatar mesh fetch.
type meshResult struct {
	version uint64
	key     string
	root    *scene.Node
	err     error
}

// Pipeline assembles world plans and avatar specs into a scene graph it
// exclusively owns. Not safe for concurrent use; the host drives it from a
// single control thread (its frame loop) and calls Tick to apply completed
// asynchronous work.
type Pipeline struct {
	log      *logger.Logger
	resolver *catalog.Resolver
	fetch    Fetcher

	scn   *scene.Scene
	state State

	// Version stamps per assembly target: async results carry the stamp they
	// were started under and are discarded when it no longer matches. World
	// placements and the avatar stamp independently so reassembling one never
	// cancels the other's in-flight work.
	worldVersion  uint64
	avatarVersion uint64

	pending  []pendingSlot
	results  chan meshResult
	inflight int

	appliedMeshKey string
	rig            avatarRig
}

// New returns a pipeline writing into a fresh scene. fetcher may be nil for
// hosts that never use external assets or mesh overrides.
func New(log *logger.Logger, resolver *catalog.Resolver, fetcher Fetcher) *Pipeline {
	return &Pipeline{
		log:      log,
		resolver: resolver,
		fetch:    fetcher,
		scn:      scene.New(),
		results:  make(chan meshResult, 8),
	}
}

// Scene returns the pipeline's scene graph. The pipeline owns it; hosts read
// it between assembly calls.
func (p *Pipeline) Scene() *scene.Scene { return p.scn }

// State returns the state of the most recent assembly request.
func (p *Pipeline) State() State { return p.state }

// Tick applies completed asynchronous work: resolved external asset
// templates are swapped into their placements and finished avatar mesh
// fetches are applied (or discarded when stale). Call once per host frame.
func (p *Pipeline) Tick() {
	for {
		select {
		case res := <-p.results:
			p.inflight--
			p.applyMeshResult(res)
		default:
			p.sweepPending()
			return
		}
	}
}

// Wait blocks until all asynchronous work started by earlier assembly calls
// has been applied or the context expires. Intended for headless hosts and
// tests; interactive hosts call Tick per frame instead.
func (p *Pipeline) Wait(ctx context.Context) error {
	for {
		p.Tick()
		if p.inflight == 0 && len(p.pending) == 0 {
			return nil
		}
		select {
		case res := <-p.results:
			p.inflight--
			p.applyMeshResult(res)
		case <-time.After(2 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// sweepPending swaps resolved templates into their placements. Slots from a
// superseded request are dropped without touching the scene.
func (p *Pipeline) sweepPending() {
	if len(p.pending) == 0 {
		return
	}
	keep := p.pending[:0]
	for _, slot := range p.pending {
		if slot.version != p.worldVersion {
			continue // superseded; placement no longer in the scene
		}
		if !slot.tmpl.Ready() {
			keep = append(keep, slot)
			continue
		}
		node, err := slot.tmpl.Result()
		if err != nil || node == nil {
			// Failure leaves the placement empty: logged, non-fatal.
			p.logf("asset %s failed for %s: %v", slot.tmpl.Name, slot.obj.ID, err)
			slot.group.Children = removeChild(slot.group.Children, slot.placeholder)
			continue
		}
		inst := node.Clone()
		tintObject(inst, slot.obj)
		slot.group.Children = removeChild(slot.group.Children, slot.placeholder)
		slot.group.Add(inst)
	}
	p.pending = keep
}

func removeChild(children []*scene.Node, target *scene.Node) []*scene.Node {
	out := children[:0]
	for _, c := range children {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.log != nil {
		p.log.Logf(format, args...)
	}
}
